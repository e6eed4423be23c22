package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter bọc rate.Limiter kèm tên provider để log.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New tạo limiter với rps request/giây. rps <= 0 nghĩa là không giới hạn.
// Burst tối thiểu là 1 để rps lẻ (vd 0.5) vẫn chạy được.
func New(name string, rps float64) *Limiter {
	if rps <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1), name: name}
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst), name: name}
}

// Wait block cho tới khi được phép gọi tiếp, hoặc ctx bị cancel.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

func (l *Limiter) Name() string {
	return l.name
}
