package kit

import "context"

type contextKey string

const (
	OperationKey contextKey = "kit_operation"
	TransportKey contextKey = "kit_transport" // "cli", "mcp"
)

func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, OperationKey, op)
}
func GetOperation(ctx context.Context) string {
	if v, ok := ctx.Value(OperationKey).(string); ok {
		return v
	}
	return "unknown"
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "cli"
}
