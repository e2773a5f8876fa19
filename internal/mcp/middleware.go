// middleware.go wraps every tool handler with call logging and rate limiting.

package mcp

import (
	"context"
	"time"

	"github.com/aitormendez/nextcloud-mcp-server/internal/logging"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// rateLimitKey is shared by all tools: the limit protects the remote server,
// not individual tools.
const rateLimitKey = "tools"

// withLogging attaches a per-call logger to the context and records the
// outcome of each call.
func withLogging(logger *zap.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			l := logger.With(zap.String("tool", req.Params.Name), zap.String("call_id", uuid.NewString()))
			ctx = logging.WithContext(ctx, l)

			start := time.Now()
			res, err := next(ctx, req)
			fields := []zap.Field{zap.Duration("elapsed", time.Since(start))}
			switch {
			case err != nil:
				l.Error("tool call failed", append(fields, zap.Error(err))...)
			case res != nil && res.IsError:
				l.Warn("tool call returned error", fields...)
			default:
				l.Debug("tool call done", fields...)
			}
			return res, err
		}
	}
}

// withRateLimit rejects calls beyond rate per second with a burst allowance.
func withRateLimit(rate, burst int, logger *zap.Logger) server.ToolHandlerMiddleware {
	if burst <= 0 {
		burst = rate
	}
	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		FailOpen: true,
	})
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if !limiter.Allow(ctx, rateLimitKey) {
				logger.Warn("rate limit exceeded", zap.String("tool", req.Params.Name))
				return mcp.NewToolResultError("rate limit exceeded, retry shortly"), nil
			}
			return next(ctx, req)
		}
	}
}
