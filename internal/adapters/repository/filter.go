package repository

import (
	"strings"

	"github.com/okian/apmboard/internal/domain/model"
)

// Query holds the optional list filters. Empty fields do not filter.
type Query struct {
	Status   string
	Company  string
	Search   string
	Location string
	Season   string
}

// Apply runs every non-empty filter of q over jobs, in order status,
// company, search, location, season.
func Apply(jobs []model.JobPosting, q Query) []model.JobPosting {
	out := jobs
	if q.Status != "" {
		out = FilterByStatus(out, model.Status(q.Status))
	}
	if q.Company != "" {
		out = FilterByCompany(out, q.Company)
	}
	if q.Search != "" {
		out = Search(out, q.Search)
	}
	if q.Location != "" {
		out = FilterByLocation(out, q.Location)
	}
	if q.Season != "" {
		out = FilterBySeason(out, q.Season)
	}
	if out == nil {
		return []model.JobPosting{}
	}
	return out
}

// FilterByStatus keeps jobs whose status equals status exactly.
func FilterByStatus(jobs []model.JobPosting, status model.Status) []model.JobPosting {
	return keep(jobs, func(j model.JobPosting) bool { return j.Status == status })
}

// FilterByCompany keeps jobs whose company contains company, ignoring case.
func FilterByCompany(jobs []model.JobPosting, company string) []model.JobPosting {
	needle := strings.ToLower(company)
	return keep(jobs, func(j model.JobPosting) bool { return contains(j.Company, needle) })
}

// Search keeps jobs whose role, company or location contains term,
// ignoring case.
func Search(jobs []model.JobPosting, term string) []model.JobPosting {
	needle := strings.ToLower(term)
	return keep(jobs, func(j model.JobPosting) bool {
		return contains(j.Role, needle) ||
			contains(j.Company, needle) ||
			contains(model.StringValue(j.Location), needle)
	})
}

// FilterByLocation keeps jobs whose location contains location, ignoring case.
func FilterByLocation(jobs []model.JobPosting, location string) []model.JobPosting {
	needle := strings.ToLower(location)
	return keep(jobs, func(j model.JobPosting) bool { return contains(model.StringValue(j.Location), needle) })
}

// FilterBySeason keeps jobs whose season equals season, ignoring case.
func FilterBySeason(jobs []model.JobPosting, season string) []model.JobPosting {
	return keep(jobs, func(j model.JobPosting) bool {
		return strings.EqualFold(model.StringValue(j.Season), season)
	})
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func keep(jobs []model.JobPosting, pred func(model.JobPosting) bool) []model.JobPosting {
	out := make([]model.JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if pred(j) {
			out = append(out, j)
		}
	}
	return out
}
