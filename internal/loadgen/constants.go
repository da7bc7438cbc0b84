package loadgen

import "time"

// Event types understood by the tracking endpoint.
const (
	EventView  = "view"
	EventClick = "click"
)

// Generator constants.
const (
	clickRate  = 0.2
	userAgent  = "apmboard-loadgen/1.0"
	jobsPrefix = "Loadgen"
)

// Runner configuration constants.
const (
	DefaultTimeout       = 10 * time.Second
	PercentageMultiplier = 100
)
