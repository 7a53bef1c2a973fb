package logging

import "context"

type contextKey int

const (
	invocationIDKey contextKey = iota
	sessionIDKey
	componentKey
	commandKey
)

// WithInvocation attaches an invocation ID to ctx for automatic inclusion
// in subsequent log calls.
func WithInvocation(ctx context.Context, invocationID string) context.Context {
	return context.WithValue(ctx, invocationIDKey, invocationID)
}

// WithSession attaches an agent session ID to ctx.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithComponent attaches a component name (e.g. "fusion", "notes") to ctx.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithCommand attaches the wrapped git subcommand name to ctx.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}
