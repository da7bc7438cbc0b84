package service

import (
	"context"

	"github.com/okian/apmboard/internal/apperr"
	"github.com/okian/apmboard/internal/domain/model"
)

// SettingsPatch is a partial settings update.
type SettingsPatch struct {
	AutoApproveJobs        *bool `json:"autoApproveJobs,omitempty"`
	EmailNotifications     *bool `json:"emailNotifications,omitempty"`
	AnalyticsRetentionDays *int  `json:"analyticsRetentionDays,omitempty"`
}

// Settings returns the admin preferences.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	return s.store.LoadSettings(ctx)
}

// UpdateSettings merges p into the stored preferences.
func (s *Service) UpdateSettings(ctx context.Context, p SettingsPatch) (model.Settings, error) {
	const op = "service.UpdateSettings"

	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if p.AutoApproveJobs != nil {
		settings.AutoApproveJobs = *p.AutoApproveJobs
	}
	if p.EmailNotifications != nil {
		settings.EmailNotifications = *p.EmailNotifications
	}
	if p.AnalyticsRetentionDays != nil {
		settings.AnalyticsRetentionDays = *p.AnalyticsRetentionDays
	}
	if err := settings.Validate(); err != nil {
		return model.Settings{}, apperr.New(apperr.KindValidation, op, err.Error(), err)
	}
	settings.UpdatedAt = model.Stamp(s.now())
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}
