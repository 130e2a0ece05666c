// Package render connects audioset blocks to a document host: it finds the
// blocks in markdown, runs each one through its processor and renders the
// result as HTML (a goldmark extension) or as terminal-friendly markdown.
package render
