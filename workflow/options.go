package workflow

import (
	"log/slog"
	"time"
)

// 默认借期 14 天
const DefaultLoanPeriod = 14 * 24 * time.Hour

// ApproveRequest 可指定的最长借期（天）
const MaxLoanDays = 90

type Option func(*Engine)

func WithLoanPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.loanPeriod = d
		}
	}
}

// WithRestockOnReturn 归还时是否加回库存
func WithRestockOnReturn(restock bool) Option {
	return func(e *Engine) { e.restockOnReturn = restock }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}
