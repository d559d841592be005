package polling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntil(t *testing.T) {
	t.Run("조건 만족 시 즉시 반환", func(t *testing.T) {
		checks := 0
		ok, err := Until(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
			checks++
			return checks == 3, nil
		})

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 3, checks)
	})

	t.Run("시간 초과는 에러가 아님", func(t *testing.T) {
		start := time.Now()
		ok, err := Until(context.Background(), 5*time.Millisecond, 30*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})

		require.NoError(t, err)
		assert.False(t, ok)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("조건 에러 전파", func(t *testing.T) {
		conditionErr := errors.New("wpa_cli 실패")
		ok, err := Until(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
			return false, conditionErr
		})

		assert.ErrorIs(t, err, conditionErr)
		assert.False(t, ok)
	})

	t.Run("컨텍스트 취소", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ok, err := Until(ctx, time.Second, time.Minute, func(context.Context) (bool, error) {
			return true, nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ok)
	})
}
