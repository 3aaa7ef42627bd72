package feature

import (
	"context"
	"log/slog"
	"time"
)

// ActionFunc is the invocation of one action.
type ActionFunc func(ctx context.Context) error

// Middleware wraps an action invocation to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(actionID string, next ActionFunc) ActionFunc

// WithMiddleware appends middleware applied to every action the controller
// hands out.
func WithMiddleware[T any](mw ...Middleware) Option[T] {
	return func(c *Controller[T]) { c.middleware = append(c.middleware, mw...) }
}

// LoggingMiddleware logs each invocation with its duration and outcome.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(actionID string, next ActionFunc) ActionFunc {
		return func(ctx context.Context) error {
			start := time.Now()
			err := next(ctx)
			attrs := []any{"action", actionID, "duration", time.Since(start)}
			if err != nil {
				logger.WarnContext(ctx, "action failed", append(attrs, "error", err)...)
				return err
			}
			logger.DebugContext(ctx, "action completed", attrs...)
			return nil
		}
	}
}

func chain(actionID string, fn ActionFunc, mw []Middleware) ActionFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		fn = mw[i](actionID, fn)
	}
	return fn
}
