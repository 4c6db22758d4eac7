// Package kit wires dashboard operations to their transports.
//
// Every operation is an Endpoint. The CLI calls endpoints directly; the MCP
// server registers them as tools. Middlewares add the concerns both
// transports share: logging and the run journal.
package kit

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/dashclone/runlog"
)

// Endpoint is one operation: a decoded request in, a JSON-able result out.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares; the first one is the outermost.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}

// Logging logs the outcome and duration of every call.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{
				"operation", GetOperation(ctx),
				"transport", GetTransport(ctx),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("kit: operation failed", append(attrs, "error", err)...)
			} else {
				logger.Info("kit: operation done", attrs...)
			}
			return resp, err
		}
	}
}

// Journaled records every call in j under the context's operation name.
// A nil journal records nothing.
func Journaled(j *runlog.Journal) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			return j.Track(ctx, GetOperation(ctx), req, func(ctx context.Context) (any, error) {
				return next(ctx, req)
			})
		}
	}
}
