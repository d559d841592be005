package polling

import (
	"context"
	"time"
)

// Condition은 대기 조건을 한 번 확인합니다
type Condition func(ctx context.Context) (bool, error)

// Until은 interval마다 condition을 확인하며 timeout까지 기다립니다.
// 첫 확인은 interval이 지난 뒤에 이루어집니다. 조건이 만족되면 true, 시간이 다 되면
// false를 반환하며 시간 초과는 에러가 아닙니다. condition 에러는 그대로 반환됩니다.
func Until(ctx context.Context, interval, timeout time.Duration, condition Condition) (bool, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			ok, err := condition(ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			if !time.Now().Before(deadline) {
				return false, nil
			}
		}
	}
}
