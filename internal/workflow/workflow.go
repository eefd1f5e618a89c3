package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"repoprep/internal/interview"
	"repoprep/internal/repo"
)

var (
	ErrBusy        = errors.New("workflow: a request is already in flight")
	ErrUnknownFile = errors.New("workflow: file is not in the scanned tree")
)

// Scanner lists and fetches repository content. *repo.Client implements it.
type Scanner interface {
	Scan(ctx context.Context, ref repo.Ref) ([]string, error)
	CodeContext(ctx context.Context, ref repo.Ref, paths []string) (readme, code string)
}

// Generator turns code context into a packet. *interview.Service implements it.
type Generator interface {
	GenerateQuestions(ctx context.Context, readme, code, resume string, qt interview.QuestionType) (*interview.Packet, error)
}

// History records successfully scanned URLs. *history.Recent implements it.
type History interface {
	Add(url string)
}

// State is a rendering snapshot of the workflow.
type State struct {
	Step     Step
	URL      string
	Ref      repo.Ref
	Files    []string
	Selected []string
	Packet   *interview.Packet
	// Err is the last user-facing error; cleared by the next operation.
	Err error
}

type Workflow struct {
	scanner   Scanner
	generator Generator
	history   History

	inFlight atomic.Bool

	mu       sync.Mutex
	step     Step
	url      string
	ref      repo.Ref
	files    []string
	selected Selection
	packet   *interview.Packet
	err      error
}

type Option func(*Workflow)

func WithHistory(h History) Option { return func(w *Workflow) { w.history = h } }

func New(s Scanner, g Generator, opts ...Option) *Workflow {
	w := &Workflow{scanner: s, generator: g, step: StepInput}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Step:     w.step,
		URL:      w.url,
		Ref:      w.ref,
		Files:    append([]string(nil), w.files...),
		Selected: w.selected.Paths(),
		Packet:   w.packet,
		Err:      w.err,
	}
}

// move applies e under w.mu.
func (w *Workflow) move(e Event) error {
	next, err := Next(w.step, e)
	if err != nil {
		return err
	}
	w.step = next
	return nil
}

func (w *Workflow) begin() error {
	if !w.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (w *Workflow) end() { w.inFlight.Store(false) }

// Scan parses rawURL and lists the repository. An invalid URL fails without
// a network call. Success enters file-select with an empty selection and
// records the URL in history; failure stays on input.
func (w *Workflow) Scan(ctx context.Context, rawURL string) error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()

	w.mu.Lock()
	if w.step != StepInput {
		w.mu.Unlock()
		return fmt.Errorf("%w: scan from %s", ErrInvalidTransition, w.step)
	}
	w.err = nil
	w.mu.Unlock()

	ref, err := repo.ParseURL(rawURL)
	if err != nil {
		w.fail(EventScanFailed, err)
		return err
	}
	files, err := w.scanner.Scan(ctx, ref)
	if err != nil {
		w.fail(EventScanFailed, err)
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.move(EventScanned); err != nil {
		return err
	}
	w.url = rawURL
	w.ref = ref
	w.files = files
	w.selected = Selection{}
	w.packet = nil
	if w.history != nil {
		w.history.Add(rawURL)
	}
	return nil
}

func (w *Workflow) fail(e Event, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.move(e)
	w.err = err
}

// Toggle flips selection of path while on file-select. The bool reports
// whether path is selected afterwards; adding past the cap leaves it false.
func (w *Workflow) Toggle(path string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepFileSelect {
		return false, fmt.Errorf("%w: select on %s", ErrInvalidTransition, w.step)
	}
	if !w.inTree(path) {
		return false, fmt.Errorf("%w: %s", ErrUnknownFile, path)
	}
	return w.selected.Toggle(path), nil
}

func (w *Workflow) inTree(path string) bool {
	for _, f := range w.files {
		if f == path {
			return true
		}
	}
	return false
}

// Back leaves file-select for input, or results for file-select.
func (w *Workflow) Back() error {
	if w.inFlight.Load() {
		return ErrBusy
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.move(EventBack); err != nil {
		return err
	}
	w.err = nil
	return nil
}

// Analyze fetches code context for the selection and generates a packet.
// Zero selected files is allowed. On failure the workflow returns to
// file-select with tree and selection unchanged.
func (w *Workflow) Analyze(ctx context.Context, resume string, qt interview.QuestionType) (*interview.Packet, error) {
	if err := w.begin(); err != nil {
		return nil, err
	}
	defer w.end()

	w.mu.Lock()
	if err := w.move(EventAnalyze); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.err = nil
	ref := w.ref
	paths := w.selected.Paths()
	w.mu.Unlock()

	readme, code := w.scanner.CodeContext(ctx, ref, paths)
	packet, err := w.generator.GenerateQuestions(ctx, readme, code, resume, qt)
	if err != nil {
		w.fail(EventGenerateFailed, err)
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.move(EventGenerated); err != nil {
		return nil, err
	}
	w.packet = packet
	return packet, nil
}
