package llm

import (
	"context"
	"io"
	"log"
	"time"

	llmclient "repoprep/internal/llm/client"
)

// Middleware decorates a Completer with cross-cutting concerns.
type Middleware func(llmclient.Completer) llmclient.Completer

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.Completer, mws ...Middleware) llmclient.Completer {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// WithLogging logs request size, latency and errors. Provide a custom logger
// or nil to use log.Default(). Message content is never logged.
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.Completer) llmclient.Completer {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.Completer
	log  *log.Logger
}

func (l *logging) Name() string     { return l.next.Name() }
func (l *logging) Configured() bool { return l.next.Configured() }

func (l *logging) Complete(ctx context.Context, req llmclient.ChatRequest) (string, error) {
	start := time.Now()
	out, err := l.next.Complete(ctx, req)
	if err != nil {
		l.log.Printf("LLM error (%s) req=%s caller=%s: %v", l.next.Name(), RequestIDFrom(ctx), CallerFrom(ctx), err)
		return out, err
	}
	l.log.Printf("LLM request (%s) req=%s caller=%s: %d bytes in, %d bytes out, %s",
		l.next.Name(), RequestIDFrom(ctx), CallerFrom(ctx), requestBytes(req.Messages), len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (l *logging) OpenStream(ctx context.Context, messages []llmclient.Message) (io.ReadCloser, error) {
	body, err := l.next.OpenStream(ctx, messages)
	if err != nil {
		l.log.Printf("LLM stream error (%s) req=%s: %v", l.next.Name(), RequestIDFrom(ctx), err)
		return nil, err
	}
	l.log.Printf("LLM stream opened (%s) req=%s: %d bytes in", l.next.Name(), RequestIDFrom(ctx), requestBytes(messages))
	return body, nil
}

func requestBytes(messages []llmclient.Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
