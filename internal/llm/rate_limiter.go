package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту вызовов модели: не более callsPerMinute
// запросов в скользящем минутном окне. Превысивший бюджет вызов кооперативно
// блокируется через Wait до появления бюджета, а не завершается ошибкой.
type RateLimiter struct {
	lim *rate.Limiter
}

func NewRateLimiter(callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		callsPerMinute = 15
	}
	interval := time.Minute / time.Duration(callsPerMinute)
	return &RateLimiter{
		lim: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait блокируется до появления бюджета или отмены контекста.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.lim.Wait(ctx)
}
