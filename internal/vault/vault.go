// Package vault resolves the file named by an audioset block and produces
// the resource URL a renderer embeds for it.
package vault

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ErrNotFound is returned when a block names a file that does not exist.
var ErrNotFound = errors.New("file not found")

// File is a resolved audio file.
type File struct {
	// Name is the path as written in the block.
	Name string
	// Path is the absolute path on disk.
	Path string
	// Rel is Path relative to the vault root, slash separated. Empty when
	// the file lives outside the root.
	Rel  string
	Size int64
}

// Vault resolves block paths against a root directory.
type Vault struct {
	root    string
	baseURL *url.URL
}

// Option configures a Vault.
type Option func(*Vault) error

// WithBaseURL makes ResourcePath return URLs under base instead of file://
// URLs, for documents that are served over HTTP.
func WithBaseURL(base string) Option {
	return func(v *Vault) error {
		if base == "" {
			return nil
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		v.baseURL = u
		return nil
	}
}

// New returns a vault rooted at root.
func New(root string, opts ...Option) (*Vault, error) {
	if root == "" {
		root = "."
	}
	root, err := expand(root)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}

	v := &Vault{root: abs}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ForDocument returns a vault rooted at the directory holding doc.
func ForDocument(doc string, opts ...Option) (*Vault, error) {
	if doc == "" {
		return New(".", opts...)
	}
	return New(filepath.Dir(doc), opts...)
}

// Root returns the absolute root directory.
func (v *Vault) Root() string {
	return v.root
}

// Lookup resolves name, relative to the root unless absolute or ~-prefixed.
// Directories are not audio files and resolve to ErrNotFound.
func (v *Vault) Lookup(name string) (*File, error) {
	p, err := expand(filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(v.root, p)
	}

	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	f := &File{Name: name, Path: p, Size: info.Size()}
	if rel, err := filepath.Rel(v.root, p); err == nil && !outsideRoot(rel) {
		f.Rel = filepath.ToSlash(rel)
	}
	return f, nil
}

// outsideRoot reports whether a path relative to the root climbs out of it.
// A file named "..intro.mp3" stays inside.
func outsideRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ResourcePath returns the URL a renderer uses to reference f.
func (v *Vault) ResourcePath(f *File) string {
	if v.baseURL != nil && f.Rel != "" {
		u := *v.baseURL
		u.Path = path.Join("/", u.Path, f.Rel)
		return u.String()
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(f.Path)}
	return u.String()
}

func expand(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	e, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("unable to expand %s: %w", p, err)
	}
	return e, nil
}
