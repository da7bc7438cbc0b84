package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Counters holds the per-job interaction totals.
type Counters struct {
	Views  int `json:"views"`
	Clicks int `json:"clicks"`
}

// JobPosting is a single job listing as persisted in the jobs collection.
type JobPosting struct {
	ID              string    `json:"id"`
	Company         string    `json:"company"`
	CompanyLogo     *string   `json:"companyLogo,omitempty"`
	Role            string    `json:"role"`
	Location        *string   `json:"location,omitempty"`
	Season          *string   `json:"season,omitempty"`
	Status          Status    `json:"status"`
	ApplicationLink string    `json:"applicationLink"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Analytics       Counters  `json:"analytics"`
}

// UnmarshalJSON decodes a job while tolerating loosely formatted dates.
// Imported records are accepted as-is, so an unreadable date becomes the
// zero time instead of failing the whole document.
func (j *JobPosting) UnmarshalJSON(data []byte) error {
	type plain JobPosting
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}{plain: (*plain)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	j.CreatedAt = parseLooseTime(aux.CreatedAt)
	j.UpdatedAt = parseLooseTime(aux.UpdatedAt)
	return nil
}

var looseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseLooseTime(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}
		}
		s = strings.TrimSpace(s)
		for _, layout := range looseLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
		return time.Time{}
	}
	ms, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

// Stamp normalizes t to the precision stored by the board.
func Stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// DaysAdded is the number of started days between createdAt and now. A job
// created this instant counts as added one day ago.
func DaysAdded(createdAt, now time.Time) int {
	diff := now.Sub(createdAt)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	if days == 0 {
		return 1
	}
	return days
}

// JobInput carries the fields accepted when creating a job.
type JobInput struct {
	Company         string  `json:"company" validate:"required"`
	CompanyLogo     *string `json:"companyLogo,omitempty"`
	Role            string  `json:"role" validate:"required"`
	Location        *string `json:"location,omitempty"`
	Season          *string `json:"season,omitempty"`
	Status          *Status `json:"status,omitempty" validate:"omitempty,job_status"`
	ApplicationLink string  `json:"applicationLink" validate:"required"`
}

// JobPatch is a partial update. A nil field leaves the stored value alone.
type JobPatch struct {
	Company         *string `json:"company,omitempty" validate:"omitnil,min=1"`
	CompanyLogo     *string `json:"companyLogo,omitempty"`
	Role            *string `json:"role,omitempty" validate:"omitnil,min=1"`
	Location        *string `json:"location,omitempty"`
	Season          *string `json:"season,omitempty"`
	Status          *Status `json:"status,omitempty" validate:"omitnil,job_status"`
	ApplicationLink *string `json:"applicationLink,omitempty" validate:"omitnil,min=1"`
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Company == nil && p.CompanyLogo == nil && p.Role == nil &&
		p.Location == nil && p.Season == nil && p.Status == nil && p.ApplicationLink == nil
}

// Apply merges p into j. Optional fields set to "" are cleared.
func (j *JobPosting) Apply(p JobPatch) {
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Role != nil {
		j.Role = *p.Role
	}
	if p.ApplicationLink != nil {
		j.ApplicationLink = *p.ApplicationLink
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.CompanyLogo != nil {
		j.CompanyLogo = Optional(*p.CompanyLogo)
	}
	if p.Location != nil {
		j.Location = Optional(*p.Location)
	}
	if p.Season != nil {
		j.Season = Optional(*p.Season)
	}
}

// Optional maps "" to nil.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences an optional field, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
