package dto

import (
	"errors"
	"net/http"

	"github.com/erp/accounting/internal/domain/shared"
)

// Transport error codes. Domain errors keep their own code; these cover
// failures that never reach a service.
const (
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeBadRequest     = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON    = "ERR_INVALID_JSON"
	ErrCodeNotFound       = "ERR_NOT_FOUND"
	ErrCodeConflict       = "ERR_CONFLICT"
	ErrCodeRateLimited    = "ERR_RATE_LIMITED"
	ErrCodeTooLarge       = "ERR_REQUEST_TOO_LARGE"
	ErrCodeCompanyMissing = "ERR_COMPANY_REQUIRED"
	ErrCodeCompanyInvalid = "ERR_COMPANY_INVALID"
)

// ErrorCodeHTTPStatus maps transport and well-known domain codes to statuses
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeConflict:       http.StatusConflict,
	ErrCodeRateLimited:    http.StatusTooManyRequests,
	ErrCodeTooLarge:       http.StatusRequestEntityTooLarge,
	ErrCodeCompanyMissing: http.StatusBadRequest,
	ErrCodeCompanyInvalid: http.StatusBadRequest,

	"NOT_FOUND":            http.StatusNotFound,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INSUFFICIENT_STOCK":   http.StatusUnprocessableEntity,
	"DUPLICATE_REQUEST":    http.StatusConflict,
}

// kindStatus maps an error kind to its status
var kindStatus = map[shared.ErrorKind]int{
	shared.KindValidation:          http.StatusBadRequest,
	shared.KindNotFound:            http.StatusNotFound,
	shared.KindConflict:            http.StatusConflict,
	shared.KindInvalidState:        http.StatusUnprocessableEntity,
	shared.KindResolutionGap:       http.StatusUnprocessableEntity,
	shared.KindPartialWriteFailure: http.StatusInternalServerError,
}

// GetHTTPStatus returns the status of a code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusForKind returns the status of an error kind, 500 when unknown
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusFor resolves the response status of a domain error. A code with a
// fixed status wins over the kind.
func StatusFor(de *shared.DomainError) int {
	if status, ok := ErrorCodeHTTPStatus[de.Code]; ok {
		return status
	}
	return StatusForKind(de.Kind)
}

// ErrorInfoFor converts err into the response error body and its status.
// Errors that are not domain errors are reported as internal without their
// message.
func ErrorInfoFor(err error) (ErrorInfo, int) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return ErrorInfo{Code: ErrCodeInternal, Message: "An unexpected error occurred"}, http.StatusInternalServerError
	}
	status := StatusFor(de)
	info := ErrorInfo{Code: de.Code, Message: de.Message, Kind: string(de.Kind)}
	if status >= http.StatusInternalServerError && de.Kind != shared.KindPartialWriteFailure {
		info.Message = "An unexpected error occurred"
	}
	return info, status
}
