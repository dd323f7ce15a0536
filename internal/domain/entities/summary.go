package entities

import "fmt"

const summaryKeyPrefix = "summary"

// SummaryKey identifies one cacheable summary. It is only ever used as a
// lookup key; the cache never inspects the stored content to decide a match.
type SummaryKey struct {
	Actor     string
	PatientID int64
	FormID    int64
}

// NewSummaryKey builds a key for the given actor, patient and form
func NewSummaryKey(actor string, patientID, formID int64) SummaryKey {
	return SummaryKey{Actor: actor, PatientID: patientID, FormID: formID}
}

// String renders the cache key.
// Format: summary:{actor}:{patient_id}:{form_id}
func (k SummaryKey) String() string {
	return fmt.Sprintf("%s:%s:%d:%d", summaryKeyPrefix, k.Actor, k.PatientID, k.FormID)
}

// CachedSummary is the generated summary as stored in and served from the cache
type CachedSummary struct {
	Summary  string `json:"summary"`
	UserType Role   `json:"user_type"`
	FormID   int64  `json:"form_id"`
}
