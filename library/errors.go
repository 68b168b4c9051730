package library

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Circulation errors
	CodeMemberNotEligible Code = "MEMBER_NOT_ELIGIBLE"
	CodeReferenceOnly     Code = "REFERENCE_ONLY"
	CodeCopyUnavailable   Code = "COPY_UNAVAILABLE"
	CodeLoanLimitExceeded Code = "LOAN_LIMIT_EXCEEDED"
	CodeInvalidLoanState  Code = "INVALID_LOAN_STATE"
	CodeNoAvailableCopy   Code = "NO_AVAILABLE_COPY"

	// Catalog and registry errors
	CodeDuplicateBarcode    Code = "DUPLICATE_BARCODE"
	CodeDuplicateIdentifier Code = "DUPLICATE_IDENTIFIER"
	CodeNotFound            Code = "NOT_FOUND"

	// Generic errors
	CodeInvalidOperation       Code = "INVALID_OPERATION"
	CodeInvalidArgument        Code = "INVALID_ARGUMENT"
	CodeInsufficientPermission Code = "INSUFFICIENT_PERMISSION"
	CodeAuthentication         Code = "AUTHENTICATION_FAILED"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable message
	Metadata map[string]string // Additional context (ids, fields)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrMemberNotEligible      = &Error{Code: CodeMemberNotEligible, Message: "member not eligible"}
	ErrReferenceOnly          = &Error{Code: CodeReferenceOnly, Message: "copy is reference only"}
	ErrCopyUnavailable        = &Error{Code: CodeCopyUnavailable, Message: "copy unavailable"}
	ErrLoanLimitExceeded      = &Error{Code: CodeLoanLimitExceeded, Message: "loan limit exceeded"}
	ErrInvalidLoanState       = &Error{Code: CodeInvalidLoanState, Message: "invalid loan state"}
	ErrNoAvailableCopy        = &Error{Code: CodeNoAvailableCopy, Message: "no available copy"}
	ErrDuplicateBarcode       = &Error{Code: CodeDuplicateBarcode, Message: "duplicate barcode"}
	ErrDuplicateIdentifier    = &Error{Code: CodeDuplicateIdentifier, Message: "duplicate identifier"}
	ErrNotFound               = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidOperation       = &Error{Code: CodeInvalidOperation, Message: "invalid operation"}
	ErrInvalidArgument        = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrInsufficientPermission = &Error{Code: CodeInsufficientPermission, Message: "insufficient permission"}
	ErrAuthentication         = &Error{Code: CodeAuthentication, Message: "authentication failed"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func withMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func notFound(kind, id string) *Error {
	return withMetadata(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id), map[string]string{"kind": kind, "id": id})
}

// PermissionError is returned when a librarian attempts an operation below
// its required permission level.
type PermissionError struct {
	Operation Operation
	Required  Permission
	Actual    Permission
	StaffID   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s requires %s permission, librarian %s has %s", e.Operation, e.Required, e.StaffID, e.Actual)
}

// Is matches ErrInsufficientPermission.
func (e *PermissionError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == CodeInsufficientPermission
}

// CodeOf extracts the domain code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var pe *PermissionError
	if errors.As(err, &pe) {
		return CodeInsufficientPermission
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnknown
}
