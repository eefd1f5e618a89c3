package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	llmclient "repoprep/internal/llm/client"
)

// Retry retries Complete and OpenStream up to maxAttempts with exponential
// backoff starting at baseDelay. Only transient failures are retried:
// transport errors and provider 5xx. A stream is retried only while opening;
// once bytes flow the caller owns the body.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next llmclient.Completer) llmclient.Completer {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next llmclient.Completer
	max  int
	base time.Duration
}

func (r *retrying) Name() string     { return r.next.Name() }
func (r *retrying) Configured() bool { return r.next.Configured() }

func (r *retrying) Complete(ctx context.Context, req llmclient.ChatRequest) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, req)
		if err == nil || !Transient(err) {
			return out, err
		}
		last = err
		if !r.wait(ctx, i) {
			return "", last
		}
	}
	return "", last
}

func (r *retrying) OpenStream(ctx context.Context, messages []llmclient.Message) (io.ReadCloser, error) {
	var last error
	for i := 0; i < r.max; i++ {
		body, err := r.next.OpenStream(ctx, messages)
		if err == nil || !Transient(err) {
			return body, err
		}
		last = err
		if !r.wait(ctx, i) {
			return nil, last
		}
	}
	return nil, last
}

// wait sleeps before attempt i+1. It reports false when no attempt is left
// or ctx is done.
func (r *retrying) wait(ctx context.Context, i int) bool {
	if i+1 >= r.max {
		return false
	}
	t := time.NewTimer(r.base * time.Duration(1<<i))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Transient reports whether err is worth another attempt.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, llmclient.ErrMissingAPIKey) || errors.Is(err, llmclient.ErrNoChoices) {
		return false
	}
	var pe *llmclient.ProviderError
	if errors.As(err, &pe) {
		return pe.Status >= http.StatusInternalServerError
	}
	return true
}
