package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/utils"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const statusBarHeight = 1

type (
	contentRenderedMsg string
	reloadMsg          struct{}
)

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerStatusMessage struct {
	message string
	isError bool
}

// pagerModel shows the rendered document with one clip panel marked as
// selected, plus a status bar and optional key help.
type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	state    pagerState
	showHelp bool

	statusMessage      string
	statusMessageTimer *time.Timer

	// currentDocument is kept as markdown so it can be rendered again after
	// a resize or reload.
	currentDocument markdown

	rendered  string
	clipLines []int // line of each clip panel in rendered

	watcher *docWatcher
}

func newPagerModel(common *commonModel) pagerModel {
	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: viewport.New(0, 0),
		watcher:  newDocWatcher(),
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight
	if m.showHelp {
		// the help panel starts on its own line below the status bar
		m.viewport.Height -= statusBarHeight + strings.Count(m.helpView(), "\n")
	}
}

// setContent shows the rendered document with the selected clip marked.
func (m *pagerModel) setContent(rendered string, selected int) {
	m.rendered = rendered
	m.clipLines = clipLines(rendered)
	m.viewport.SetContent(highlightClip(rendered, m.clipLines, selected))
}

// showClip marks the selected clip and scrolls it into view.
func (m *pagerModel) showClip(selected int) {
	if selected < 0 || selected >= len(m.clipLines) {
		return
	}
	m.viewport.SetContent(highlightClip(m.rendered, m.clipLines, selected))

	line := m.clipLines[selected]
	top, bottom := m.viewport.YOffset, m.viewport.YOffset+m.viewport.Height
	if line < top || line >= bottom {
		m.viewport.SetYOffset(max(line-1, 0))
	}
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

// showStatusMessage flashes msg in the status bar until the returned
// command fires.
func (m *pagerModel) showStatusMessage(msg pagerStatusMessage) tea.Cmd {
	if msg.isError {
		log.Debug("status error", "message", msg.message)
	}
	m.state = pagerStateStatusMessage
	m.statusMessage = msg.message

	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// editLine is the document line at the top of the view, for the editor.
func (m pagerModel) editLine() int {
	if m.viewport.AtTop() {
		return 0
	}
	total := float64(m.viewport.TotalLineCount())
	return int(math.RoundToEven(total * m.viewport.ScrollPercent()))
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	path := m.currentDocument.localPath

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case keyEsc:
			if m.state != pagerStateBrowse {
				m.state = pagerStateBrowse
				return m, nil
			}
		case "home", "g":
			m.viewport.GotoTop()
			return m, nil
		case "end", "G":
			m.viewport.GotoBottom()
			return m, nil
		case "d":
			m.viewport.HalfViewDown()
			return m, nil
		case "u":
			m.viewport.HalfViewUp()
			return m, nil
		case "?":
			m.toggleHelp()
			return m, nil

		case "e":
			if path == "" {
				return m, m.showStatusMessage(pagerStatusMessage{"Nothing to edit", true})
			}
			line := m.editLine()
			log.Info("opening editor", "file", path, "line", fmt.Sprintf("%d/%d", line, m.viewport.TotalLineCount()))
			return m, openEditor(path, line)

		case "r":
			if path == "" {
				return m, m.showStatusMessage(pagerStatusMessage{"Nothing to reload", true})
			}
			return m, loadLocalMarkdown(&m.currentDocument)
		}

	case reloadMsg:
		return m, loadLocalMarkdown(&m.currentDocument)

	// the document may have changed in the editor
	case editorFinishedMsg:
		reload := loadLocalMarkdown(&m.currentDocument)
		if msg.err != nil {
			return m, tea.Batch(m.showStatusMessage(pagerStatusMessage{msg.err.Error(), true}), reload)
		}
		return m, reload

	case statusMessageTimeoutMsg:
		m.state = pagerStateBrowse
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m pagerModel) View(clipStatus string) string {
	view := m.viewport.View() + "\n" + m.statusBarView(clipStatus)
	if m.showHelp {
		view += "\n" + m.helpView()
	}
	return view
}

// statusBarView lays out the footer. The note takes whatever width is left
// by the logo on the left and the clip, scroll and help segments on the
// right. A flashed status message replaces the note.
func (m pagerModel) statusBarView(clipStatus string) string {
	fill, help, note := barNoteStyle, barHelpStyle, m.currentDocument.Note
	if m.state == pagerStateStatusMessage {
		fill, help, note = barFlashStyle, barFlashHelp, m.statusMessage
	}

	scroll := min(max(m.viewport.ScrollPercent(), 0), 1)
	left := logoView()
	// the clip keeps its own colors
	right := barNoteStyle(" ") + clipStatus + barNoteStyle(" ") +
		barScrollStyle(fmt.Sprintf(" %3.f%% ", scroll*100)) +
		help(" ? Help ")

	room := max(0, m.common.width-ansi.PrintableRuneWidth(left)-ansi.PrintableRuneWidth(right))
	note = truncate.StringWithTail(" "+note+" ", uint(room), ellipsis) //nolint:gosec
	gap := strings.Repeat(" ", max(0, room-ansi.PrintableRuneWidth(note)))

	return left + fill(note+gap) + right
}

// renderWithGlamour renders md off the update loop.
func renderWithGlamour(m pagerModel, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(m, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg(s)
	}
}

func glamourRender(m pagerModel, markdown string) (string, error) {
	if !m.common.cfg.GlamourEnabled {
		return markdown, nil
	}

	width := max(0, min(int(m.common.cfg.GlamourMaxWidth), m.viewport.Width)) //nolint:gosec
	options := []glamour.TermRendererOption{
		utils.GlamourStyle(m.common.cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	}
	if m.common.cfg.PreserveNewLines {
		options = append(options, glamour.WithPreservedNewLines())
	}

	r, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// watchFile waits for the document to change on disk.
func (m *pagerModel) watchFile() tea.Cmd {
	return m.watcher.watch(m.currentDocument.localPath)
}

func (m *pagerModel) closeWatcher() {
	m.watcher.close()
}
