package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
	errBusy := errors.New("database is locked")

	tests := []struct {
		name         string
		failures     int
		failWith     error
		wantErr      error
		wantAttempts int
		wantRetries  []time.Duration
	}{
		{
			name:         "첫 시도 성공",
			wantAttempts: 1,
		},
		{
			name:         "두 번 실패 후 성공",
			failures:     2,
			failWith:     errBusy,
			wantAttempts: 3,
			wantRetries:  []time.Duration{time.Millisecond, 2 * time.Millisecond},
		},
		{
			name:         "최대 횟수 초과",
			failures:     10,
			failWith:     errBusy,
			wantErr:      errBusy,
			wantAttempts: 3,
			wantRetries:  []time.Duration{time.Millisecond, 2 * time.Millisecond},
		},
		{
			name:         "영구 에러는 즉시 반환",
			failures:     10,
			failWith:     Permanent(errBusy),
			wantErr:      errBusy,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			var retries []time.Duration

			err := RetryWithBackoff(context.Background(), cfg, func(ctx context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.failWith
				}
				return nil
			}, func(attempt int, delay time.Duration, err error) {
				retries = append(retries, delay)
			})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantRetries, retries)
		})
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, Multiplier: 2}

	err := RetryWithBackoff(ctx, cfg, func(ctx context.Context) error {
		cancel()
		return errors.New("unreachable")
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}
