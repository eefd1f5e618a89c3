package repo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"repoprep/internal/scan"
	"repoprep/internal/utils"
)

var (
	ErrRepoInaccessible = errors.New("Could not access repository. Is it private?")
	ErrTreeUnavailable  = errors.New("Could not scan files.")
)

const (
	// DefaultBranch is assumed when the metadata omits one.
	DefaultBranch = "main"

	// MaxSnippetChars bounds each file's contribution to the code context.
	MaxSnippetChars = 2000

	contentCacheSize = 256
	contentCacheTTL  = 10 * time.Minute
)

// Details is the subset of repository metadata the scan needs.
type Details struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
}

// Client wraps the GitHub REST API.
type Client struct {
	gh    *github.Client
	cache *expirable.LRU[string, string]
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// WithHTTPClient overrides the transport used for API calls.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// WithToken authenticates requests; anonymous access works for public repos.
func WithToken(token string) Option { return func(o *options) { o.token = strings.TrimSpace(token) } }

// WithBaseURL points the client at a different API root (tests, GHE).
func WithBaseURL(u string) Option { return func(o *options) { o.baseURL = u } }

func New(opts ...Option) (*Client, error) {
	o := options{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	gh := github.NewClient(o.httpClient)
	if o.token != "" {
		gh = gh.WithAuthToken(o.token)
	}
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("repo: invalid base url: %w", err)
		}
		gh.BaseURL = u
	}
	return &Client{
		gh:    gh,
		cache: expirable.NewLRU[string, string](contentCacheSize, nil, contentCacheTTL),
	}, nil
}

// Details fetches repository metadata. Any failure is fatal to a scan.
func (c *Client) Details(ctx context.Context, ref Ref) (Details, error) {
	r, _, err := c.gh.Repositories.Get(ctx, ref.Owner, ref.Repo)
	if err != nil {
		log.Printf("repo: details %s: %v", ref, err)
		return Details{}, ErrRepoInaccessible
	}
	d := Details{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
	}
	if d.DefaultBranch == "" {
		d.DefaultBranch = DefaultBranch
	}
	return d, nil
}

// Tree returns the recursive listing of branch.
func (c *Client) Tree(ctx context.Context, ref Ref, branch string) ([]scan.Entry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, ref.Owner, ref.Repo, branch, true)
	if err != nil {
		log.Printf("repo: tree %s@%s: %v", ref, branch, err)
		return nil, ErrTreeUnavailable
	}
	if tree.GetTruncated() {
		log.Printf("repo: tree %s@%s truncated by provider", ref, branch)
	}
	entries := make([]scan.Entry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, scan.Entry{Type: e.GetType(), Path: e.GetPath()})
	}
	return entries, nil
}

// Scan resolves the default branch and returns the filtered file list.
func (c *Client) Scan(ctx context.Context, ref Ref) ([]string, error) {
	d, err := c.Details(ctx, ref)
	if err != nil {
		return nil, err
	}
	entries, err := c.Tree(ctx, ref, d.DefaultBranch)
	if err != nil {
		return nil, err
	}
	return scan.InterestingFiles(entries), nil
}

// Readme returns the decoded README or "" when there is none.
func (c *Client) Readme(ctx context.Context, ref Ref) string {
	rc, _, err := c.gh.Repositories.GetReadme(ctx, ref.Owner, ref.Repo, nil)
	if err != nil {
		log.Printf("repo: no readme for %s", ref)
		return ""
	}
	return decodeRepositoryContent(rc)
}

// FileContent returns the decoded content of path. ok is false when the
// fetch fails; callers skip the file rather than failing the batch.
func (c *Client) FileContent(ctx context.Context, ref Ref, path string) (string, bool) {
	key := ref.String() + "@" + path
	if s, ok := c.cache.Get(key); ok {
		return s, true
	}
	rc, _, _, err := c.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, path, nil)
	if err != nil || rc == nil {
		log.Printf("repo: failed to read %s in %s: %v", path, ref, err)
		return "", false
	}
	s := decodeRepositoryContent(rc)
	c.cache.Add(key, s)
	return s, true
}

// CodeContext fetches the README and each selected file, concatenating the
// files in selection order. Missing files are left out.
func (c *Client) CodeContext(ctx context.Context, ref Ref, paths []string) (readme, code string) {
	contents := make([]string, len(paths))
	found := make([]bool, len(paths))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		readme = c.Readme(ctx, ref)
	}()
	for i, p := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			contents[i], found[i] = c.FileContent(ctx, ref, p)
		}()
	}
	wg.Wait()

	var b strings.Builder
	for i, p := range paths {
		if !found[i] || contents[i] == "" {
			continue
		}
		b.WriteString(Snippet(p, contents[i]))
	}
	return readme, b.String()
}

// Snippet formats one file's contribution to the code context.
func Snippet(path, content string) string {
	return "\n--- FILE: " + path + " ---\n" + utils.TruncateRunes(content, MaxSnippetChars) + "\n"
}

func decodeRepositoryContent(rc *github.RepositoryContent) string {
	if rc == nil || rc.Content == nil {
		return ""
	}
	if enc := rc.GetEncoding(); enc != "" && enc != "base64" {
		return *rc.Content
	}
	return DecodeContent(*rc.Content)
}
