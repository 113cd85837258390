package errors

// ErrorCode identifies a failure class in API responses.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1003
	ErrorCode_VALIDATION       ErrorCode = 1004
	ErrorCode_CANCELLED        ErrorCode = 1005

	ErrorCode_UNAUTHENTICATED          ErrorCode = 2000
	ErrorCode_AUTH_INVALID_CREDENTIALS ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED       ErrorCode = 2002
	ErrorCode_AUTH_SIGNED_OUT          ErrorCode = 2003

	ErrorCode_GATEWAY_UNREACHABLE ErrorCode = 3000
	ErrorCode_GATEWAY_REJECTED    ErrorCode = 3001

	ErrorCode_AI_ANALYSIS_FAILED ErrorCode = 4001
	ErrorCode_AI_PARSE_FAILED    ErrorCode = 4002

	ErrorCode_CLASSROOM_SESSION_INVALID ErrorCode = 5002
	ErrorCode_CLASSROOM_IMPORT_FAILED   ErrorCode = 5003

	ErrorCode_STORAGE_FAILED ErrorCode = 6000
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                   "HTTP_OK",
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:          "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                 "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:           "INVALID_PAYLOAD",
	ErrorCode_VALIDATION:                "VALIDATION",
	ErrorCode_CANCELLED:                 "CANCELLED",
	ErrorCode_UNAUTHENTICATED:           "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_CREDENTIALS:  "AUTH_INVALID_CREDENTIALS",
	ErrorCode_AUTH_TOKEN_EXPIRED:        "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_SIGNED_OUT:           "AUTH_SIGNED_OUT",
	ErrorCode_GATEWAY_UNREACHABLE:       "GATEWAY_UNREACHABLE",
	ErrorCode_GATEWAY_REJECTED:          "GATEWAY_REJECTED",
	ErrorCode_AI_ANALYSIS_FAILED:        "AI_ANALYSIS_FAILED",
	ErrorCode_AI_PARSE_FAILED:           "AI_PARSE_FAILED",
	ErrorCode_CLASSROOM_SESSION_INVALID: "CLASSROOM_SESSION_INVALID",
	ErrorCode_CLASSROOM_IMPORT_FAILED:   "CLASSROOM_IMPORT_FAILED",
	ErrorCode_STORAGE_FAILED:            "STORAGE_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
