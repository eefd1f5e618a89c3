package scan

import (
	"path"
	"strings"
)

// MaxFiles caps the number of paths offered for selection.
const MaxFiles = 50

// Entry is one row of a hosting provider's recursive tree listing.
type Entry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// IsBlob reports whether the entry is a file rather than a directory/submodule.
func (e Entry) IsBlob() bool { return e.Type == "blob" }

var excludedDirs = []string{
	"node_modules/",
	"dist/",
	"build/",
	".git/",
	"coverage/",
}

var sourceExts = normalizeExts([]string{
	"js", "jsx", "ts", "tsx", "py", "rb", "go", "java", "rs", "cpp", "c", "h",
	"php", "swift", "kt", "dart", "vue", "svelte", "html", "css", "sql", "graphql",
})

// minified bundles, test/spec files and ambient type declarations
var excludedSuffixes = []string{
	".min.js",
	".test.js",
	".spec.js",
	".d.ts",
}

// InterestingFiles keeps blobs outside vendored/build directories whose
// extension is a known source language, preserving input order and keeping
// the first MaxFiles matches. No ranking is applied.
func InterestingFiles(entries []Entry) []string {
	out := make([]string, 0, min(len(entries), MaxFiles))
	for _, e := range entries {
		if len(out) == MaxFiles {
			break
		}
		if !e.IsBlob() {
			continue
		}
		if Interesting(e.Path) {
			out = append(out, e.Path)
		}
	}
	return out
}

// Interesting applies the path-level predicate of InterestingFiles.
func Interesting(p string) bool {
	for _, dir := range excludedDirs {
		if strings.Contains(p, dir) {
			return false
		}
	}
	lower := strings.ToLower(p)
	if _, ok := sourceExts[path.Ext(lower)]; !ok {
		return false
	}
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return false
		}
	}
	return true
}

// normalizeExts lower-cases extensions and ensures a leading dot.
func normalizeExts(exts []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return allowed
}
