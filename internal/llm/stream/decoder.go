// Package stream decodes the Server-Sent-Events body of a streaming chat
// completion into text fragments.
//
// The wire format is newline-delimited. Lines of the form
//
//	data: {"choices":[{"delta":{"content":"..."}}]}
//
// carry the next fragment; "data: [DONE]" and anything that is not valid JSON
// are ignored. End of stream is the reader returning io.EOF, since providers
// may omit the sentinel. Network reads are not assumed to align with lines:
// a trailing partial line is kept and prefixed onto the next read.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"

	readSize = 4096
	// MaxLineSize bounds the pending partial line; a longer line is dropped.
	MaxLineSize = 1 << 20
)

// State is the decoder lifecycle.
type State int32

const (
	Idle State = iota
	Streaming
	Completed
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type abortedError struct{}

func (abortedError) Error() string { return "stream: aborted" }

// Is lets callers that only know about context cancellation match too.
func (abortedError) Is(target error) bool { return target == context.Canceled }

// ErrAborted is returned when the caller's context fires mid-stream. It is
// not a failure and should not be rendered as one.
var ErrAborted error = abortedError{}

// Error is a read failure after the stream was established. Partial holds the
// text delivered before the failure.
type Error struct {
	Partial string
	Err     error
}

func (e *Error) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError is a non-2xx initial response. No fragment was delivered.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string { return fmt.Sprintf("Stream error: %d", e.Status) }

// FragmentFunc receives each non-empty fragment and the text so far.
type FragmentFunc func(fragment, cumulative string)

// Decoder assembles fragments from one streaming response. It is not safe
// for concurrent Decode calls; State may be read from any goroutine.
type Decoder struct {
	onFragment FragmentFunc
	pending    string
	text       strings.Builder
	state      atomic.Int32
}

func NewDecoder(fn FragmentFunc) *Decoder {
	if fn == nil {
		fn = func(string, string) {}
	}
	return &Decoder{onFragment: fn}
}

func (d *Decoder) State() State { return State(d.state.Load()) }

// Text returns the cumulative text delivered so far.
func (d *Decoder) Text() string { return d.text.String() }

func (d *Decoder) setState(s State) { d.state.Store(int32(s)) }

// Do dispatches req and decodes its body. A non-2xx status fails with
// *StatusError before any callback fires.
func (d *Decoder) Do(ctx context.Context, hc *http.Client, req *http.Request) (string, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	d.setState(Streaming)
	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			d.setState(Aborted)
			return "", ErrAborted
		}
		d.setState(Failed)
		return "", &Error{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		d.setState(Failed)
		return "", &StatusError{Status: resp.StatusCode, Body: string(body)}
	}
	defer resp.Body.Close()
	return d.Decode(ctx, resp.Body)
}

// Decode reads body to EOF, invoking the callback per fragment, and returns
// the cumulative text. If ctx fires, body is closed when it is an io.Closer,
// no further callbacks run, and the error is ErrAborted.
func (d *Decoder) Decode(ctx context.Context, body io.Reader) (string, error) {
	d.setState(Streaming)
	if c, ok := body.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	buf := make([]byte, readSize)
	for {
		if ctx.Err() != nil {
			return d.abort()
		}
		n, err := body.Read(buf)
		if ctx.Err() != nil {
			return d.abort()
		}
		if n > 0 && !d.feed(ctx, buf[:n]) {
			return d.abort()
		}
		if errors.Is(err, io.EOF) {
			if d.pending != "" {
				line := d.pending
				d.pending = ""
				d.line(line)
			}
			d.setState(Completed)
			return d.Text(), nil
		}
		if err != nil {
			d.setState(Failed)
			return d.Text(), &Error{Partial: d.Text(), Err: err}
		}
	}
}

func (d *Decoder) abort() (string, error) {
	d.pending = ""
	d.setState(Aborted)
	return d.Text(), ErrAborted
}

// feed processes every complete line of pending+p and keeps the rest.
// It returns false if ctx fired between lines.
func (d *Decoder) feed(ctx context.Context, p []byte) bool {
	data := d.pending + string(p)
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		d.line(data[:i])
		data = data[i+1:]
	}
	if len(data) > MaxLineSize {
		data = ""
	}
	d.pending = data
	return true
}

func (d *Decoder) line(line string) {
	fragment, ok := ParseLine(line)
	if !ok {
		return
	}
	d.text.WriteString(fragment)
	d.onFragment(fragment, d.text.String())
}

type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseLine extracts the text fragment carried by one frame line. ok is false
// for non-data lines, the [DONE] sentinel, invalid JSON and empty deltas.
func ParseLine(line string) (fragment string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	payload, found := strings.CutPrefix(line, dataPrefix)
	if !found || payload == doneSentinel {
		return "", false
	}
	var c chunk
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return "", false
	}
	if len(c.Choices) == 0 || c.Choices[0].Delta.Content == "" {
		return "", false
	}
	return c.Choices[0].Delta.Content, true
}
