// Package history keeps the most recently scanned repository URLs.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"repoprep/internal/util/jsonutil"
)

// MaxEntries bounds the list.
const MaxEntries = 5

// Recent is a most-recent-first list of repository URLs. When path is set the
// list is persisted as a JSON array after every change. A missing or corrupt
// file loads as empty.
type Recent struct {
	mu      sync.Mutex
	path    string
	urls    []string
	lastErr error
}

// New returns an in-memory list.
func New() *Recent { return &Recent{} }

// Open loads the list stored at path.
func Open(path string) *Recent {
	r := &Recent{path: path}
	b, err := os.ReadFile(path)
	if err != nil {
		return r
	}
	var urls []string
	if err := json.Unmarshal(b, &urls); err != nil {
		return r
	}
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			r.urls = appendUnique(r.urls, u)
		}
	}
	if len(r.urls) > MaxEntries {
		r.urls = r.urls[:MaxEntries]
	}
	return r
}

func appendUnique(list []string, u string) []string {
	for _, v := range list {
		if v == u {
			return list
		}
	}
	return append(list, u)
}

// Add moves url to the front, inserting it if absent.
func (r *Recent) Add(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]string, 0, MaxEntries)
	next = append(next, url)
	for _, v := range r.urls {
		if v != url && len(next) < MaxEntries {
			next = append(next, v)
		}
	}
	r.urls = next
	r.save()
}

// List returns a copy, most recent first.
func (r *Recent) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

func (r *Recent) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = nil
	if r.path == "" {
		return
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		r.lastErr = err
	}
}

// Err returns the last persistence error, if any.
func (r *Recent) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// save writes through a temp file and rename.
func (r *Recent) save() {
	if r.path == "" {
		return
	}
	b, err := jsonutil.MarshalNoEscapeIndent(r.urls, "", "  ")
	if err != nil {
		r.lastErr = err
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		r.lastErr = err
		return
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		r.lastErr = err
		return
	}
	r.lastErr = os.Rename(tmp, r.path)
}
