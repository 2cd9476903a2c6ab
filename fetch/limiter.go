package fetch

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

type RateLimiter interface {
	Wait(context.Context) error
	Limit() rate.Limit
}

// Per returns the rate of eventCount events spread over duration. A
// non-positive count or duration means no limit.
func Per(eventCount int, duration time.Duration) rate.Limit {
	if eventCount <= 0 || duration <= 0 {
		return rate.Inf
	}

	return rate.Every(duration / time.Duration(eventCount))
}

// NewLimiter builds a token bucket allowing eventCount page requests every
// duration, with room for burst requests at once.
func NewLimiter(eventCount int, duration time.Duration, burst int) (RateLimiter, error) {
	if eventCount <= 0 || duration <= 0 {
		return nil, errors.New("limiter needs a positive event count and duration")
	}
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(Per(eventCount, duration), burst), nil
}

// Multi combines limiters so a request waits for every one of them. The
// strictest limiter is consulted first; nil entries are dropped and the
// caller's slice is left alone.
func Multi(limiters ...RateLimiter) *MultiLimiter {
	ls := make([]RateLimiter, 0, len(limiters))
	for _, l := range limiters {
		if l != nil {
			ls = append(ls, l)
		}
	}
	sort.SliceStable(ls, func(i, j int) bool {
		return ls[i].Limit() < ls[j].Limit()
	})

	return &MultiLimiter{limiters: ls}
}

type MultiLimiter struct {
	limiters []RateLimiter
}

// Wait returns immediately when no limiter is configured.
func (m *MultiLimiter) Wait(ctx context.Context) error {
	for _, l := range m.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (m *MultiLimiter) Limit() rate.Limit {
	if len(m.limiters) == 0 {
		return rate.Inf
	}

	return m.limiters[0].Limit()
}
