package llm

import (
	"context"
	"strings"
)

type ctxKeyRequestID struct{}
type ctxKeyCaller struct{}

// WithRequestID tags ctx with the gateway request id used in log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyRequestID{}, strings.TrimSpace(id))
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

// WithCaller records the rate-limit identity of the caller.
func WithCaller(ctx context.Context, caller string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyCaller{}, strings.TrimSpace(caller))
}

func CallerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxKeyCaller{}).(string)
	if v == "" {
		return "unknown"
	}
	return v
}
