package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig는 재시도 설정
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig는 기본 재시도 설정
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  5,
	InitialDelay: 1 * time.Second,
	MaxDelay:     30 * time.Second,
	Multiplier:   2.0,
}

// permanentError는 재시도하지 않을 에러를 감쌉니다
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent는 err을 재시도 없이 즉시 반환되도록 표시합니다
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithBackoff는 operation이 성공하거나 Permanent 에러를 반환할 때까지 지수 백오프로 재시도합니다.
// onRetry가 있으면 매 실패 후 다음 지연 시간과 함께 호출됩니다
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func(ctx context.Context) error, onRetry func(attempt int, delay time.Duration, err error)) error {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	delay := config.InitialDelay

	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}
		if attempt >= config.MaxAttempts {
			return fmt.Errorf("최대 재시도 횟수 초과 (%d회): %w", config.MaxAttempts, err)
		}
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}
}
