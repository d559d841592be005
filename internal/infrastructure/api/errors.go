package api

import (
	"encoding/json"
	"net/http"

	domainErrors "netadmin-agent/internal/domain/errors"
)

// ErrorCode는 API 에러 코드입니다
type ErrorCode string

const (
	ErrCodeInvalidRequest   ErrorCode = "invalid_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeInvalidConfig    ErrorCode = "invalid_configuration"
	ErrCodeMissingAttribute ErrorCode = "required_attribute_missing"
	ErrCodeTimeout          ErrorCode = "timeout"
	ErrCodeInternalError    ErrorCode = "internal_error"
)

// APIError는 구조화된 API 에러 응답입니다
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse는 JSON 응답용 APIError 래퍼입니다
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteError는 에러 응답을 기록합니다
func WriteError(w http.ResponseWriter, statusCode int, code ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: APIError{Code: code, Message: message}})
}

// WriteInvalidRequest는 400 Bad Request 에러를 기록합니다
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, message)
}

// WriteDomainError는 도메인 에러 종류를 HTTP 상태 코드로 변환해 기록합니다
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case domainErrors.IsConfigurationError(err), domainErrors.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidConfig, err.Error())
	case domainErrors.IsRequiredAttributeMissingError(err):
		WriteError(w, http.StatusBadRequest, ErrCodeMissingAttribute, err.Error())
	case domainErrors.IsNotFoundError(err):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case domainErrors.IsTimeoutError(err):
		WriteError(w, http.StatusGatewayTimeout, ErrCodeTimeout, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
