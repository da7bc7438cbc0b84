package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrPanic      = errors.New("handler panic")
)

// Response messages.
const (
	msgInvalidBody = "Invalid JSON body"

	msgFetchJobs  = "Failed to fetch jobs"
	msgCreateJob  = "Failed to create job"
	msgFetchJob   = "Failed to fetch job"
	msgUpdateJob  = "Failed to update job"
	msgDeleteJob  = "Failed to delete job"
	msgJobDeleted = "Job deleted successfully"

	msgFetchAnalytics = "Failed to fetch analytics"
	msgTrack          = "Failed to track analytics"
	msgOverview       = "Failed to fetch dashboard stats"
	msgSettings       = "Failed to load settings"
	msgSaveSettings   = "Failed to save settings"

	msgBulk             = "Failed to perform bulk operation"
	msgActionRequired   = "Action is required"
	msgInvalidAction    = "Invalid action"
	msgBulkStatusInput  = "jobIds array and status are required for updateStatus"
	msgImportRequired   = "Data is required for import"
	msgImportInvalid    = "Failed to import data. Invalid format."
	msgImported         = "Data imported successfully"
	msgCleared          = "All data cleared successfully"
	msgRetentionInvalid = "retentionDays must be a positive number"

	msgInternal           = "Internal server error"
	msgStorageUnavailable = "storage unavailable"
)
