package utils

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	_ = iota
	CANNOT_CONNECT_TO_MONGODB
	CANNOT_INSERT_LEAD_TO_MONGODB
	CANNOT_FIND_LEADS_IN_MONGODB
	CANNOT_UPDATE_LEAD_IN_MONGODB
	CANNOT_FIND_STAGES_IN_MONGODB
	CANNOT_INSERT_STAGE_TO_MONGODB
	CANNOT_UPDATE_STAGE_IN_MONGODB
	CANNOT_DELETE_STAGE_FROM_MONGODB
	CANNOT_INSERT_USER_TO_MONGODB
	CANNOT_FIND_USERS_IN_MONGODB
	CANNOT_UPDATE_USER_IN_MONGODB
	CANNOT_INSERT_TASK_TO_MONGODB
	CANNOT_FIND_TASKS_IN_MONGODB
	CANNOT_UPDATE_TASK_IN_MONGODB
	CANNOT_DELETE_TASK_FROM_MONGODB
	CANNOT_INSERT_TRANSACTION_TO_MONGODB
	CANNOT_FIND_TRANSACTIONS_IN_MONGODB
	CANNOT_DELETE_TRANSACTION_FROM_MONGODB
	CANNOT_FIND_MESSAGES_IN_MONGODB
	CANNOT_QUERY_MYSQL
	CANNOT_ISSUE_TOKEN
	CANNOT_HASH_PASSWORD
)

func SendInternalError(internalErrorCode int) string {
	return fmt.Sprintf("Ocorreu um erro interno no servidor. Por favor, tente novamente mais tarde (Cod: %d)", internalErrorCode)
}

// ErrorKind classifies a failure so handlers can map it to an HTTP status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
	KindNotFound
	KindUnavailable
)

func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a failure that is safe to show to the client.
type AppError struct {
	Kind    ErrorKind
	Message string
	// Code is the internal error code reported for KindInternal failures.
	Code int
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewUnavailableError(message string) *AppError {
	return &AppError{Kind: KindUnavailable, Message: message}
}

// NewInternalError wraps an unexpected failure with the internal code shown to
// the client.
func NewInternalError(code int, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: SendInternalError(code), Code: code, Err: err}
}

// KindOf returns the kind of err, KindInternal when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
