package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/audioset/internal/vault"
	"github.com/dgnsrekt/audioset/utils"
	"github.com/spf13/viper"
)

var readmeNames = []string{"README.md", "README", "Readme.md", "Readme", "readme.md", "readme"}

// source is a markdown document to render.
type source struct {
	reader io.ReadCloser
	// path is the absolute path of a local file. Empty for stdin.
	path string
}

// sourceFromArg opens a markdown file, the README of a directory, or stdin
// for "-". An empty arg is the working directory.
func sourceFromArg(arg string) (*source, error) {
	switch arg {
	case "-":
		return &source{reader: os.Stdin}, nil
	case "":
		arg = "."
	}

	if st, err := os.Stat(arg); err == nil && st.IsDir() {
		for _, name := range readmeNames {
			if src, err := openSource(filepath.Join(arg, name)); err == nil {
				return src, nil
			}
		}
		return nil, errors.New("missing markdown source")
	}
	return openSource(arg)
}

func openSource(name string) (*source, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	return &source{reader: f, path: abs}, nil
}

// readSource returns the markdown of a source, without frontmatter, and the
// vault its clips resolve against.
func readSource(src *source) ([]byte, *vault.Vault, error) {
	b, err := io.ReadAll(src.reader)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read from reader: %w", err)
	}

	v, err := vault.ForDocument(src.path, vault.WithBaseURL(viper.GetString("base_url")))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open vault: %w", err)
	}
	return utils.RemoveFrontmatter(b), v, nil
}

// stdinIsPipe reports whether markdown is being piped in.
func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	return stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0, nil
}
