package entities

import "errors"

// Domain errors
var (
	// Document errors
	ErrFormNotFound    = errors.New("form not found")
	ErrPatientNotFound = errors.New("patient not found")

	// Summary errors
	ErrSummaryNotCached  = errors.New("no cached summary found")
	ErrSummaryGeneration = errors.New("summary generation failed")
)
