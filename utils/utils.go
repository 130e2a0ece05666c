// Package utils provides helpers shared by the CLI and the TUI.
package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mitchellh/go-homedir"
)

// MarkdownExtensions are the file extensions treated as markdown documents.
var MarkdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

var yamlPattern = regexp.MustCompile(`(?m)^---\r?\n(\s*\r?\n)?`)

// RemoveFrontmatter strips a leading YAML frontmatter block.
func RemoveFrontmatter(content []byte) []byte {
	if bounds := detectFrontmatter(content); bounds[0] == 0 {
		return content[bounds[1]:]
	}
	return content
}

func detectFrontmatter(c []byte) []int {
	if matches := yamlPattern.FindAllIndex(c, 2); len(matches) > 1 {
		return []int{matches[0][0], matches[1][1]}
	}
	return []int{-1, -1}
}

// ExpandPath expands a leading ~ and any environment variables in path.
func ExpandPath(path string) string {
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	return os.ExpandEnv(path)
}

// IsMarkdownFile reports whether filename looks like a markdown document.
// Files without an extension are assumed to be markdown.
func IsMarkdownFile(filename string) bool {
	ext := filepath.Ext(filename)
	if ext == "" {
		return true
	}
	for _, v := range MarkdownExtensions {
		if strings.EqualFold(ext, v) {
			return true
		}
	}
	return false
}

// GlamourStyle returns the glamour option for a style name or JSON path.
func GlamourStyle(style string) glamour.TermRendererOption {
	if style == "" || style == styles.AutoStyle {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStylePath(ExpandPath(style))
}
