package ui

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
)

// markdown is the document shown by the pager.
type markdown struct {
	// Full path of a local markdown file. Empty for piped content.
	localPath string

	// Note is the title shown in the status bar.
	Note    string
	Body    string
	Modtime time.Time
}

type (
	fetchedMarkdownMsg *markdown
	editorFinishedMsg  struct{ err error }
)

func loadLocalMarkdown(md *markdown) tea.Cmd {
	return func() tea.Msg {
		if md.localPath == "" {
			return errMsg{errMissingPath}
		}

		data, err := os.ReadFile(md.localPath)
		if err != nil {
			log.Debug("error reading local markdown", "error", err)
			return errMsg{err}
		}

		next := *md
		next.Body = string(data)
		if info, err := os.Stat(md.localPath); err == nil {
			next.Modtime = info.ModTime()
		}
		return fetchedMarkdownMsg(&next)
	}
}

func openEditor(path string, lineno int) tea.Cmd {
	cb := func(err error) tea.Msg {
		return editorFinishedMsg{err}
	}
	cmd, err := editor.Cmd("Audioset", path, editor.LineNumber(uint(max(lineno, 0)))) //nolint:gosec
	if err != nil {
		return func() tea.Msg { return cb(err) }
	}
	return tea.ExecProcess(cmd, cb)
}
