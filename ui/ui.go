// Package ui provides the interactive audioset player.
package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/audio"
	"github.com/dgnsrekt/audioset/internal/cache"
	"github.com/dgnsrekt/audioset/internal/playback"
	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/dgnsrekt/audioset/internal/vault"
	"github.com/dgnsrekt/audioset/utils"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
	keyEsc               = "esc"
)

var errMissingPath = errors.New("document has no local path")

// NewProgram returns a new Tea program playing the clips of a document. When
// content is empty the document is read from cfg.Path.
func NewProgram(cfg Config, content string) *tea.Program {
	log.Debug(
		"Starting audioset",
		"path", cfg.Path,
		"glamour", cfg.GlamourEnabled,
		"sample_rate", cfg.SampleRate,
	)

	var deck Deck
	player, err := audio.NewPlayer(audio.Config{
		SampleRate: cfg.SampleRate,
		Cache:      cache.NewMemoryCache(cfg.CacheSize),
		Disk:       cfg.Disk,
	})
	if err != nil {
		log.Error("unable to open audio device", "error", err)
	} else {
		deck = player
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, content, deck), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type statusMessageTimeoutMsg struct{}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	cwd    string
	width  int
	height int
}

type model struct {
	common   *commonModel
	fatalErr error

	pager pagerModel
	clips clipList
	vault *vault.Vault
}

func newModel(cfg Config, content string, deck Deck) model {
	if cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	cwd, _ := os.Getwd()
	common := commonModel{
		cfg: cfg,
		cwd: cwd,
	}

	m := model{
		common: &common,
		pager:  newPagerModel(&common),
		clips:  newClipList(deck),
	}

	var err error
	if cfg.Path != "" {
		if cfg.Path, err = filepath.Abs(cfg.Path); err != nil {
			m.fatalErr = err
			return m
		}
		m.common.cfg.Path = cfg.Path
		m.vault, err = vault.ForDocument(cfg.Path)
		m.pager.currentDocument = markdown{
			localPath: cfg.Path,
			Note:      stripAbsolutePath(cfg.Path, cwd),
		}
	} else {
		m.vault, err = vault.New(cfg.BaseDir)
		m.pager.currentDocument = markdown{Note: "stdin", Body: content}
	}
	if err != nil {
		log.Error("unable to open vault", "error", err)
		m.fatalErr = err
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.fatalErr != nil {
		return nil
	}

	cmds := []tea.Cmd{waitForClipEvent(m.clips.events)}
	if m.pager.currentDocument.localPath != "" {
		cmds = append(cmds, loadLocalMarkdown(&m.pager.currentDocument))
	} else {
		doc := m.pager.currentDocument
		cmds = append(cmds, func() tea.Msg { return fetchedMarkdownMsg(&doc) })
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.shutdown()
			return m, tea.Quit
		}
	}

	var (
		cmds            []tea.Cmd
		skipChildUpdate bool
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "ctrl+z":
			return m, tea.Suspend

		case "tab":
			m.clips.next()
			m.pager.showClip(m.clips.selected)
			skipChildUpdate = true

		case "shift+tab":
			m.clips.prev()
			m.pager.showClip(m.clips.selected)
			skipChildUpdate = true

		case " ":
			cmds = append(cmds, m.clips.toggle(), m.clips.spin())
			skipChildUpdate = true

		case "s":
			cmds = append(cmds, m.clips.stop())
			skipChildUpdate = true

		case "c":
			skipChildUpdate = true
			c := m.clips.current()
			if c == nil || c.URL == "" {
				cmds = append(cmds, m.pager.showStatusMessage(pagerStatusMessage{"No clip to copy", true}))
				break
			}
			// Copy using OSC 52
			te.Copy(c.URL)
			// Copy using native system clipboard
			_ = clipboard.WriteAll(c.URL)
			cmds = append(cmds, m.pager.showStatusMessage(pagerStatusMessage{"Copied " + c.URL, false}))
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)
		cmds = append(cmds, m.renderDocument())

	case fetchedMarkdownMsg:
		log.Debug("fetchedMarkdownMsg received", "bodyLength", len(msg.Body), "note", msg.Note)
		m.pager.currentDocument = *msg
		cmds = append(cmds, m.renderDocument())

	case contentRenderedMsg:
		log.Debug("content rendered", "clips", len(m.clips.clips))
		m.pager.setContent(string(msg), m.clips.selected)
		cmds = append(cmds, m.pager.watchFile())

	case clipLoadedMsg:
		cmds = append(cmds, m.clips.onLoaded(msg))

	case clipEventMsg:
		if text := eventMessage(playback.Event(msg)); text != "" {
			cmds = append(cmds, m.pager.showStatusMessage(pagerStatusMessage{text, false}))
		}
		cmds = append(cmds, waitForClipEvent(m.clips.events), m.clips.refresh())

	case clipErrMsg:
		log.Debug("clip error", "error", msg.err)
		cmds = append(cmds, m.pager.showStatusMessage(pagerStatusMessage{msg.err.Error(), true}))

	case spinner.TickMsg:
		cmds = append(cmds, m.clips.updateSpinner(msg))
		skipChildUpdate = true

	case refreshMsg:
		m.clips.refreshing = false
		cmds = append(cmds, m.clips.refresh())

	case errMsg:
		m.fatalErr = msg.err
		return m, nil
	}

	if !skipChildUpdate {
		newPagerModel, cmd := m.pager.update(msg)
		m.pager = newPagerModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// renderDocument scans the document for clips and renders it with each
// block replaced by its panel.
func (m *model) renderDocument() tea.Cmd {
	doc := m.pager.currentDocument
	if doc.Body == "" && doc.localPath != "" {
		return nil
	}

	body := utils.RemoveFrontmatter([]byte(doc.Body))
	clips := render.Scan(body, m.vault)
	m.clips.setClips(clips)

	return renderWithGlamour(m.pager, string(render.Rewrite(body, clips)))
}

func (m *model) shutdown() {
	m.clips.close()
	m.pager.closeWatcher()
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	return m.pager.View(m.clips.statusView())
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

func stripAbsolutePath(fullPath, cwd string) string {
	fp, _ := filepath.EvalSymlinks(fullPath)
	cp, _ := filepath.EvalSymlinks(cwd)
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
