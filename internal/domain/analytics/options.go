package analytics

type summaryConfig struct {
	topJobs        int
	topCompanies   int
	recentActivity int
}

// Option tunes Summarize.
type Option func(*summaryConfig)

// WithTopJobs caps topPerformingJobs. Negative means no cap.
func WithTopJobs(n int) Option {
	return func(c *summaryConfig) { c.topJobs = n }
}

// WithTopCompanies caps topCompanies. Negative means no cap.
func WithTopCompanies(n int) Option {
	return func(c *summaryConfig) { c.topCompanies = n }
}

// WithRecentActivity caps recentActivity. Negative means no cap.
func WithRecentActivity(n int) Option {
	return func(c *summaryConfig) { c.recentActivity = n }
}
