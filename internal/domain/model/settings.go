package model

import "time"

// DefaultRetentionDays is the analytics retention used until an admin
// changes it.
const DefaultRetentionDays = 90

// Settings are the admin preferences. They are stored and returned but not
// acted on automatically.
type Settings struct {
	AutoApproveJobs        bool      `json:"autoApproveJobs"`
	EmailNotifications     bool      `json:"emailNotifications"`
	AnalyticsRetentionDays int       `json:"analyticsRetentionDays" validate:"min=1,max=3650"`
	UpdatedAt              time.Time `json:"updatedAt,omitzero"`
}

// DefaultSettings returns the preferences of a fresh board.
func DefaultSettings() Settings {
	return Settings{
		AutoApproveJobs:        false,
		EmailNotifications:     true,
		AnalyticsRetentionDays: DefaultRetentionDays,
	}
}
