package usecase

import "errors"

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeLeadConflict     = "LEAD_CONFLICT"
	CodeInvalidSignature = "PAYMENT_SIGNATURE_INVALID"
	CodeDatabase         = "DATABASE_ERROR"
	CodeIntegration      = "INTEGRATION_ERROR"
)

// DomainError is reported back to the caller as-is (bad input, missing lead,
// duplicate email).
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps infrastructure failures; callers get a generic message.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode extracts the code of a domain or technical error, "" otherwise.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func databaseError(message string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeDatabase, Message: message, Err: err}
}

func leadNotFound(id string) *DomainError {
	return &DomainError{
		Code:    CodeLeadNotFound,
		Message: "lead " + id + " not found",
	}
}
