// Package analytics derives board statistics from the job collection and
// the event log. Every function is pure and recomputed per call.
package analytics

import (
	"sort"
	"time"

	"github.com/okian/apmboard/internal/domain/model"
)

const (
	defaultTopJobs        = 10
	defaultTopCompanies   = 10
	defaultRecentActivity = 20
	recentJobsLimit       = 5
)

// JobStat is a job with its derived performance figures.
type JobStat struct {
	model.JobPosting
	CTR       float64 `json:"ctr"`
	DaysAdded int     `json:"daysAdded"`
}

// CompanyStat aggregates every job of one company.
type CompanyStat struct {
	Company     string  `json:"company"`
	JobCount    int     `json:"jobCount"`
	TotalViews  int     `json:"totalViews"`
	TotalClicks int     `json:"totalClicks"`
	AvgCTR      float64 `json:"avgCTR"`
}

// StatusCounts splits the collection by status.
type StatusCounts struct {
	TotalJobs     int `json:"totalJobs"`
	OpenJobs      int `json:"openJobs"`
	ClosedJobs    int `json:"closedJobs"`
	YetToOpenJobs int `json:"yetToOpenJobs"`
}

// Summary is the analytics dashboard payload.
type Summary struct {
	StatusCounts
	TotalViews        int                    `json:"totalViews"`
	TotalClicks       int                    `json:"totalClicks"`
	ClickThroughRate  float64                `json:"clickThroughRate"`
	TopPerformingJobs []JobStat              `json:"topPerformingJobs"`
	TopCompanies      []CompanyStat          `json:"topCompanies"`
	CompanyStats      []CompanyStat          `json:"companyStats"`
	RecentActivity    []model.AnalyticsEvent `json:"recentActivity"`
}

// DashboardOverview is the admin landing page payload.
type DashboardOverview struct {
	StatusCounts
	TotalViews  int                `json:"totalViews"`
	TotalClicks int                `json:"totalClicks"`
	RecentJobs  []model.JobPosting `json:"recentJobs"`
}

// CTR is clicks/views as a percentage, 0 when there are no views.
func CTR(clicks, views int) float64 {
	if views <= 0 {
		return 0
	}
	return float64(clicks) / float64(views) * 100
}

// Summarize computes the analytics dashboard for jobs and events at now.
func Summarize(jobs []model.JobPosting, events []model.AnalyticsEvent, now time.Time, opts ...Option) Summary {
	cfg := summaryConfig{
		topJobs:        defaultTopJobs,
		topCompanies:   defaultTopCompanies,
		recentActivity: defaultRecentActivity,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	views, clicks := totals(jobs)
	companies := CompanyStats(jobs)
	return Summary{
		StatusCounts:      countStatuses(jobs),
		TotalViews:        views,
		TotalClicks:       clicks,
		ClickThroughRate:  CTR(clicks, views),
		TopPerformingJobs: TopJobs(jobs, now, cfg.topJobs),
		TopCompanies:      head(companies, cfg.topCompanies),
		CompanyStats:      companies,
		RecentActivity:    RecentActivity(events, cfg.recentActivity),
	}
}

// TopJobs returns up to limit jobs ordered by views, highest first. Ties
// keep collection order.
func TopJobs(jobs []model.JobPosting, now time.Time, limit int) []JobStat {
	out := make([]JobStat, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobStat{
			JobPosting: j,
			CTR:        CTR(j.Analytics.Clicks, j.Analytics.Views),
			DaysAdded:  model.DaysAdded(j.CreatedAt, now),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Analytics.Views > out[b].Analytics.Views
	})
	return head(out, limit)
}

// CompanyStats groups jobs by exact company name in first-seen order, then
// orders groups by total views. avgCTR is computed from the summed counters.
func CompanyStats(jobs []model.JobPosting) []CompanyStat {
	index := make(map[string]int)
	out := make([]CompanyStat, 0)
	for _, j := range jobs {
		i, ok := index[j.Company]
		if !ok {
			i = len(out)
			index[j.Company] = i
			out = append(out, CompanyStat{Company: j.Company})
		}
		out[i].JobCount++
		out[i].TotalViews += j.Analytics.Views
		out[i].TotalClicks += j.Analytics.Clicks
	}
	for i := range out {
		out[i].AvgCTR = CTR(out[i].TotalClicks, out[i].TotalViews)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TotalViews > out[b].TotalViews
	})
	return out
}

// RecentActivity returns the last limit events, newest first.
func RecentActivity(events []model.AnalyticsEvent, limit int) []model.AnalyticsEvent {
	start := 0
	if limit >= 0 && len(events) > limit {
		start = len(events) - limit
	}
	out := make([]model.AnalyticsEvent, 0, len(events)-start)
	for i := len(events) - 1; i >= start; i-- {
		out = append(out, events[i])
	}
	return out
}

// Overview computes the admin dashboard: status counts, totals and the
// most recently created jobs.
func Overview(jobs []model.JobPosting) DashboardOverview {
	views, clicks := totals(jobs)
	recent := make([]model.JobPosting, len(jobs))
	copy(recent, jobs)
	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].CreatedAt.After(recent[b].CreatedAt)
	})
	return DashboardOverview{
		StatusCounts: countStatuses(jobs),
		TotalViews:   views,
		TotalClicks:  clicks,
		RecentJobs:   head(recent, recentJobsLimit),
	}
}

// FilterEvents keeps events for jobID (when non-empty) and of eventType
// (only when it is view or click; anything else is ignored).
func FilterEvents(events []model.AnalyticsEvent, jobID, eventType string) []model.AnalyticsEvent {
	t := model.EventType(eventType)
	out := make([]model.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		if jobID != "" && e.JobID != jobID {
			continue
		}
		if t.Valid() && e.EventType != t {
			continue
		}
		out = append(out, e)
	}
	return out
}

func totals(jobs []model.JobPosting) (views, clicks int) {
	for _, j := range jobs {
		views += j.Analytics.Views
		clicks += j.Analytics.Clicks
	}
	return views, clicks
}

func countStatuses(jobs []model.JobPosting) StatusCounts {
	c := StatusCounts{TotalJobs: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case model.StatusOpen:
			c.OpenJobs++
		case model.StatusClosed:
			c.ClosedJobs++
		case model.StatusYetToOpen:
			c.YetToOpenJobs++
		}
	}
	return c
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
