package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/dgnsrekt/audioset/internal/playback"
	"github.com/dgnsrekt/audioset/internal/render"
)

// refreshInterval is how often the status bar is redrawn while a clip plays.
const refreshInterval = 250 * time.Millisecond

var errNoAudioDevice = errors.New("no audio device available")

// Deck is the audio element clips are played on. One clip is loaded at a
// time.
type Deck interface {
	playback.Element
	SetListener(l playback.Listener)
	Load(path string) error
	Path() string
	Duration() float64
	Close() error
}

type (
	clipLoadedMsg struct {
		index int
		path  string
		err   error
	}
	clipEventMsg playback.Event
	clipErrMsg   struct{ err error }
	refreshMsg   struct{}
)

// clipList tracks the audioset blocks of the open document and the one that
// is loaded on the deck.
type clipList struct {
	clips    []render.Clip
	selected int

	deck   Deck
	ctrl   *playback.Controller
	loaded int
	events chan playback.Event

	// loading is the clip being decoded, or -1.
	loading int
	spinner spinner.Model

	// refreshing is set while a refresh tick is pending.
	refreshing bool
}

func newClipList(deck Deck) clipList {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(amber)
	return clipList{
		deck:    deck,
		loaded:  -1,
		loading: -1,
		spinner: sp,
		events:  make(chan playback.Event, 8),
	}
}

// setClips replaces the clips after the document was (re)loaded. A clip that
// is still on the deck keeps playing with its updated directives.
func (l *clipList) setClips(clips []render.Clip) {
	l.clips = clips
	if l.selected >= len(clips) {
		l.selected = max(len(clips)-1, 0)
	}

	if l.ctrl == nil {
		return
	}
	if l.loaded < len(clips) && clips[l.loaded].OK() && clips[l.loaded].File.Path == l.deck.Path() {
		l.attach(clips[l.loaded].Block)
		return
	}
	if err := l.ctrl.Stop(); err != nil {
		log.Debug("unable to stop removed clip", "err", err)
	}
	l.deck.SetListener(nil)
	l.ctrl = nil
	l.loaded = -1
}

func (l *clipList) current() *render.Clip {
	if len(l.clips) == 0 {
		return nil
	}
	return &l.clips[l.selected]
}

func (l *clipList) next() {
	if len(l.clips) > 0 {
		l.selected = (l.selected + 1) % len(l.clips)
	}
}

func (l *clipList) prev() {
	if len(l.clips) > 0 {
		l.selected = (l.selected - 1 + len(l.clips)) % len(l.clips)
	}
}

func (l *clipList) state() playback.State {
	if l.ctrl == nil {
		return playback.StateIdle
	}
	return l.ctrl.State()
}

func (l *clipList) playing() bool {
	return l.state() == playback.StatePlaying
}

// toggle plays or pauses the selected clip. A clip that is not on the deck
// yet is loaded first, which happens off the update loop.
func (l *clipList) toggle() tea.Cmd {
	c := l.current()
	if c == nil {
		return nil
	}
	if l.deck == nil {
		return clipErrCmd(errNoAudioDevice)
	}
	if !c.OK() {
		return clipErrCmd(errors.New(c.Message))
	}

	if l.ctrl != nil && l.loaded == l.selected {
		if err := l.ctrl.Toggle(); err != nil {
			return clipErrCmd(err)
		}
		return l.afterControl()
	}

	if l.ctrl != nil {
		if err := l.ctrl.Pause(); err != nil {
			log.Debug("unable to pause previous clip", "err", err)
		}
	}

	deck, index, path := l.deck, l.selected, c.File.Path
	l.loading = index
	return func() tea.Msg {
		return clipLoadedMsg{index: index, path: path, err: deck.Load(path)}
	}
}

// onLoaded attaches a controller to a freshly loaded clip and starts it.
func (l *clipList) onLoaded(msg clipLoadedMsg) tea.Cmd {
	l.loading = -1
	if msg.err != nil {
		return clipErrCmd(fmt.Errorf("unable to load %s: %w", block.FileNameOnly(msg.path), msg.err))
	}
	if msg.index >= len(l.clips) {
		return nil
	}

	l.loaded = msg.index
	l.attach(l.clips[msg.index].Block)
	if err := l.ctrl.Play(); err != nil {
		return clipErrCmd(err)
	}
	return l.afterControl()
}

// spin starts the loading spinner when a clip is being decoded.
func (l *clipList) spin() tea.Cmd {
	if l.loading < 0 {
		return nil
	}
	return l.spinner.Tick
}

func (l *clipList) updateSpinner(msg spinner.TickMsg) tea.Cmd {
	if l.loading < 0 {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

func (l *clipList) attach(b block.Block) {
	events := l.events
	l.ctrl = playback.NewController(b, l.deck)
	l.ctrl.Subscribe(func(e playback.Event) {
		select {
		case events <- e:
		default:
		}
	})
	l.deck.SetListener(l.ctrl)
}

// stop rewinds the loaded clip to its start marker.
func (l *clipList) stop() tea.Cmd {
	if l.ctrl == nil {
		return nil
	}
	if err := l.ctrl.Stop(); err != nil {
		return clipErrCmd(err)
	}
	return nil
}

func (l *clipList) afterControl() tea.Cmd {
	if err := l.ctrl.Err(); err != nil {
		return clipErrCmd(err)
	}
	return l.refresh()
}

// refresh schedules a status bar redraw while a clip plays. Only one tick is
// pending at a time.
func (l *clipList) refresh() tea.Cmd {
	if !l.playing() {
		l.refreshing = false
		return nil
	}
	if l.refreshing {
		return nil
	}
	l.refreshing = true
	return refreshCmd()
}

func (l *clipList) close() {
	if l.deck == nil {
		return
	}
	if err := l.deck.Close(); err != nil {
		log.Debug("unable to close deck", "err", err)
	}
}

// statusView summarizes the selected clip for the status bar.
func (l *clipList) statusView() string {
	c := l.current()
	if c == nil {
		return idleStyle("no clips")
	}

	counter := fmt.Sprintf("%d/%d", l.selected+1, len(l.clips))
	if !c.OK() {
		return counter + " " + clipErrStyle(c.Message)
	}

	name := block.FileNameOnly(c.Block.File)
	if l.loading == l.selected {
		return counter + " " + l.spinner.View() + pausedStyle(" "+name)
	}
	if l.ctrl == nil || l.loaded != l.selected {
		return counter + " " + idleStyle("■ "+name)
	}

	parts := []string{counter}
	switch st := l.state(); st {
	case playback.StatePlaying:
		parts = append(parts, playingStyle("▶ "+name))
	case playback.StatePaused, playback.StateStopped:
		parts = append(parts, pausedStyle("⏸ "+name))
	default:
		parts = append(parts, idleStyle("■ "+name))
	}

	pos := block.FormatTime(l.deck.CurrentTime())
	if c.Block.HasStop() {
		pos += dividerStyle(" → ") + block.FormatTime(c.Block.Stop)
	} else if d := l.deck.Duration(); d > 0 {
		pos += dividerStyle(" / ") + block.FormatTime(d)
	}
	parts = append(parts, pos)

	if c.Block.Loop {
		parts = append(parts, "⟲")
	}
	return strings.Join(parts, " ")
}

// eventMessage is the status message shown for a boundary action.
func eventMessage(e playback.Event) string {
	switch e.Type {
	case playback.EventLoopedBack:
		return "Looped back at " + block.FormatTime(e.Time)
	case playback.EventStopped:
		return "Stopped at " + block.FormatTime(e.Time)
	default:
		return ""
	}
}

// COMMANDS

func waitForClipEvent(ch chan playback.Event) tea.Cmd {
	return func() tea.Msg {
		return clipEventMsg(<-ch)
	}
}

func clipErrCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return clipErrMsg{err}
	}
}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}
