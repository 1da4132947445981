package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrTrancheNotFound   = errors.New("disbursement not found")
	ErrLoanAlreadyExists = errors.New("loan already exists")
)

// Validation error codes
const (
	CodeAmountRequired           = "AMOUNT_REQUIRED"
	CodeExceedsRemainingBalance  = "EXCEEDS_REMAINING_BALANCE"
	CodeExceedsApprovedAmount    = "EXCEEDS_APPROVED_AMOUNT"
	CodeDateRequired             = "DATE_REQUIRED"
	CodeUtrInvalid               = "UTR_INVALID"
	CodeCommissionRequired       = "COMMISSION_REQUIRED"
	CodeCommissionPercentInvalid = "COMMISSION_PERCENT_REQUIRED"
	CodeGstInvalid               = "GST_INVALID"
)

// ValidationError is a rejected form submission. It is a value the caller
// surfaces on the offending field, not a fault: corrected input plus a fresh
// call recovers from every one of them.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Fields returns the field → message mapping expected by form callers.
func (e *ValidationError) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}

func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// BusinessError represents an infrastructure or lookup failure outside the
// validation taxonomy.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Business error codes
const (
	ErrCodeLoanNotFound      = "LOAN_NOT_FOUND"
	ErrCodeTrancheNotFound   = "TRANCHE_NOT_FOUND"
	ErrCodeLoanAlreadyExists = "LOAN_ALREADY_EXISTS"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeCacheError        = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanNumber),
		ErrLoanNotFound,
	)
}

func WrapTrancheNotFound(trancheID string) *BusinessError {
	return NewBusinessError(
		ErrCodeTrancheNotFound,
		fmt.Sprintf("Disbursement %s not found", trancheID),
		ErrTrancheNotFound,
	)
}

func WrapLoanAlreadyExists(loanNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan %s already exists", loanNumber),
		ErrLoanAlreadyExists,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
