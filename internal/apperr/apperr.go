package apperr

import "fmt"

const (
	CodeValidation       = "validation"
	CodeNotFound         = "not_found"
	CodeInvalidOrder     = "invalid_order"
	CodeExtractionFailed = "extraction_failed"
	CodeInternal         = "internal"
)

// Error is the application error taxonomy. Every failure that crosses the
// HTTP boundary is one of these; handlers map Status straight onto the
// response code and the rest into the JSON error envelope.
type Error struct {
	Code    string
	Message string
	Field   string
	Status  int
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func statusForCode(code string) int {
	switch code {
	case CodeValidation, CodeInvalidOrder:
		return 400
	case CodeNotFound:
		return 404
	case CodeExtractionFailed:
		return 502
	default:
		return 500
	}
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: statusForCode(code)}
}

func Validation(message string) *Error {
	return newError(CodeValidation, message)
}

// ValidationField names the offending field so the client can highlight it.
func ValidationField(field, message string) *Error {
	e := newError(CodeValidation, message)
	e.Field = field
	return e
}

func NotFound(message string) *Error {
	return newError(CodeNotFound, message)
}

func InvalidOrder(message string) *Error {
	return newError(CodeInvalidOrder, message)
}

func ExtractionFailed(message string) *Error {
	return newError(CodeExtractionFailed, message)
}

func Internal(message string) *Error {
	return newError(CodeInternal, message)
}
