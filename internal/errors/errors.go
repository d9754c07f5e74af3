package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// ConflictError reports a write rejected because the stored state moved on,
// either a stale record version or a backward status move.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

func IsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StorageError wraps a failed document or object store operation.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Cause)
	}
	return "storage " + e.Op
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func NewStorageError(op string, cause error) *StorageError {
	return &StorageError{Op: op, Cause: cause}
}

func IsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type SendError struct {
	Message string
	Cause   error
}

func (e *SendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

func NewSendError(message string, cause error) *SendError {
	return &SendError{Message: message, Cause: cause}
}

func IsSendError(err error) (*SendError, bool) {
	var se *SendError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func NewParseError(message string, cause error) *ParseError {
	return &ParseError{Message: message, Cause: cause}
}

func IsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// HTTPStatus maps an error to the response status and code reported to clients.
// Anything unrecognised is an internal error.
func HTTPStatus(err error) (int, string) {
	switch {
	case isType[*ValidationError](err):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case isType[*AuthError](err):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case isType[*NotFoundError](err):
		return http.StatusNotFound, "NOT_FOUND"
	case isType[*ConflictError](err):
		return http.StatusConflict, "CONFLICT"
	case isType[*SendError](err):
		return http.StatusBadGateway, "SEND_FAILED"
	case isType[*StorageError](err):
		return http.StatusBadGateway, "STORAGE_ERROR"
	case isType[*ParseError](err):
		return http.StatusUnprocessableEntity, "PARSE_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func isType[T error](err error) bool {
	var target T
	return stderrors.As(err, &target)
}
