package api

import (
	"context"
	"time"
)

// QueryTimeout bounds each store call made while serving a request
var QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a context bounded by QueryTimeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(parent, QueryTimeout)
}

// WithTimeout derives a context bounded by d. A nil parent means
// context.Background and a non-positive d adds no deadline.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
