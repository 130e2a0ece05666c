package ui

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

type keyHelp struct {
	keys string
	desc string
}

var (
	scrollHelp = []keyHelp{
		{"k/↑", "up"},
		{"j/↓", "down"},
		{"b/pgup", "page up"},
		{"f/pgdn", "page down"},
		{"u", "½ page up"},
		{"d", "½ page down"},
		{"g/home", "go to top"},
		{"G/end", "go to bottom"},
	}
	clipHelp = []keyHelp{
		{"tab", "next clip"},
		{"shift+tab", "previous clip"},
		{"space", "play/pause clip"},
		{"s", "stop clip"},
		{"c", "copy clip path"},
		{"r", "reload document"},
		{"e", "edit document"},
		{"q", "quit"},
	}
)

// helpColumn aligns descriptions one space past the widest key.
func helpColumn(keys []keyHelp) []string {
	w := 0
	for _, k := range keys {
		w = max(w, runewidth.StringWidth(k.keys))
	}
	col := make([]string, len(keys))
	for i, k := range keys {
		col[i] = runewidth.FillRight(k.keys, w+1) + k.desc
	}
	return col
}

// helpView renders the key reference below the status bar. Lines are padded
// to the window width so the background covers the whole panel.
func (m pagerModel) helpView() string {
	left, right := helpColumn(scrollHelp), helpColumn(clipHelp)

	leftWidth := 0
	for _, l := range left {
		leftWidth = max(leftWidth, runewidth.StringWidth(l))
	}

	lines := []string{""}
	for i := range max(len(left), len(right)) {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		lines = append(lines, "  "+runewidth.FillRight(l, leftWidth+4)+r)
	}

	if m.common.width > 0 {
		for i, l := range lines {
			if runewidth.StringWidth(l) < m.common.width {
				lines[i] = runewidth.FillRight(l, m.common.width)
			}
		}
	}
	return helpPanelStyle(strings.Join(lines, "\n"))
}
