package adoc

import (
	"os"
	"path/filepath"
)

// Included is the result of resolving an include target: the raw file
// content, the directory nested includes resolve against, and the path
// used for provenance.
type Included struct {
	Content []byte
	BaseDir string
	Path    string
}

// A Resolver turns an include target into file content. Several resolvers
// may be chained; the first one to succeed wins, and no resolver
// succeeding is non-fatal for the preprocessor.
type Resolver interface {
	Resolve(target string, fromDir string) (*Included, bool)
}

// DirResolver resolves include targets as paths relative to the directory
// of the including file.
type DirResolver struct{}

func (DirResolver) Resolve(target string, fromDir string) (*Included, bool) {
	// Keep the target inside the base directory tree
	path := filepath.Join(fromDir, filepath.Clean(target))

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return &Included{
		Content: content,
		BaseDir: filepath.Dir(path),
		Path:    path,
	}, true
}

// MapResolver resolves include targets from an in-memory map. It is used
// in tests and by callers that assemble documents without a filesystem.
type MapResolver map[string]string

func (m MapResolver) Resolve(target string, fromDir string) (*Included, bool) {
	content, ok := m[target]
	if !ok {
		return nil, false
	}
	return &Included{
		Content: []byte(content),
		BaseDir: fromDir,
		Path:    target,
	}, true
}
