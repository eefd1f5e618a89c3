package repo

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidURL is reported before any network call is made.
var ErrInvalidURL = errors.New("Invalid GitHub URL. Format: https://github.com/owner/repo")

var repoURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)`)

// Ref identifies a repository on the hosting provider.
type Ref struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (r Ref) String() string { return r.Owner + "/" + r.Repo }

// ParseURL extracts owner and repo from anything containing
// "github.com/<owner>/<repo>". A trailing ".git" is dropped from the repo.
func ParseURL(raw string) (Ref, error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Ref{}, ErrInvalidURL
	}
	name := strings.TrimSuffix(m[2], ".git")
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if m[1] == "" || name == "" {
		return Ref{}, ErrInvalidURL
	}
	return Ref{Owner: m[1], Repo: name}, nil
}
