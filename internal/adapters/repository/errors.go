package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound = errors.New("job not found")
)

const msgNotFound = "Job not found"
