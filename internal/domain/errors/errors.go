package errors

import (
	"errors"
	"fmt"
)

// ErrorType은 에러의 종류를 나타냅니다
type ErrorType string

const (
	// ErrorTypeConfiguration은 개별 설정 항목이 유효성 검사를 통과하지 못했음을 나타냅니다
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"

	// ErrorTypeRequiredAttributeMissing은 인터페이스 종류에 필수인 설정 항목이 없음을 나타냅니다
	ErrorTypeRequiredAttributeMissing ErrorType = "REQUIRED_ATTRIBUTE_MISSING"

	// ErrorTypeInternal은 외부 프로세스 호출 또는 호스트 조회 실패를 나타냅니다
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeNotFound는 리소스를 찾을 수 없음을 나타냅니다
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation은 에이전트 설정 유효성 검증 실패를 나타냅니다
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeTimeout은 타임아웃 에러를 나타냅니다
	ErrorTypeTimeout ErrorType = "TIMEOUT"
)

// DomainError는 도메인 레벨의 에러를 나타냅니다
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error는 error 인터페이스를 구현합니다
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap은 내부 에러를 반환합니다
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is는 에러 비교를 위한 메서드입니다
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// 생성자 함수들

// NewConfigurationError는 설정 항목 에러를 생성합니다
func NewConfigurationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeConfiguration,
		Message: message,
		Cause:   cause,
	}
}

// NewRequiredAttributeMissingError는 필수 항목 누락 에러를 생성합니다
func NewRequiredAttributeMissingError(attribute string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeRequiredAttributeMissing,
		Message: fmt.Sprintf("required attribute missing: %s", attribute),
	}
}

// NewInternalError는 내부 에러를 생성합니다
func NewInternalError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeInternal,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError는 리소스를 찾을 수 없는 에러를 생성합니다
func NewNotFoundError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError는 유효성 검증 에러를 생성합니다
func NewValidationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError는 타임아웃 에러를 생성합니다
func NewTimeoutError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// 에러 타입 확인 헬퍼 함수들

func isType(err error, errorType ErrorType) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == errorType
	}
	return false
}

// IsConfigurationError는 설정 항목 에러인지 확인합니다
func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsRequiredAttributeMissingError는 필수 항목 누락 에러인지 확인합니다
func IsRequiredAttributeMissingError(err error) bool {
	return isType(err, ErrorTypeRequiredAttributeMissing)
}

// IsInternalError는 내부 에러인지 확인합니다
func IsInternalError(err error) bool {
	return isType(err, ErrorTypeInternal)
}

// IsNotFoundError는 리소스를 찾을 수 없는 에러인지 확인합니다
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsValidationError는 유효성 검증 에러인지 확인합니다
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsTimeoutError는 타임아웃 에러인지 확인합니다
func IsTimeoutError(err error) bool {
	return isType(err, ErrorTypeTimeout)
}
