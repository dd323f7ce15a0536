package errors

// ErrorCode is the machine-readable code carried in every error response
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000

	// Documents
	ErrorCode_FORM_NOT_FOUND    ErrorCode = 3000
	ErrorCode_PATIENT_NOT_FOUND ErrorCode = 3001

	// Summaries
	ErrorCode_SUMMARY_NOT_CACHED ErrorCode = 4000
	ErrorCode_AI_SUMMARY_FAILED  ErrorCode = 4001

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 6000
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 6001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:          "UNSPECIFIED",
	ErrorCode_HTTP_OK:              "HTTP_OK",
	ErrorCode_INTERNAL:             "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:     "INVALID_ARGUMENT",
	ErrorCode_UNAUTHENTICATED:      "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:   "AUTH_INVALID_TOKEN",
	ErrorCode_FORM_NOT_FOUND:       "FORM_NOT_FOUND",
	ErrorCode_PATIENT_NOT_FOUND:    "PATIENT_NOT_FOUND",
	ErrorCode_SUMMARY_NOT_CACHED:   "SUMMARY_NOT_CACHED",
	ErrorCode_AI_SUMMARY_FAILED:    "AI_SUMMARY_FAILED",
	ErrorCode_DB_CONNECTION_FAILED: "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:      "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
