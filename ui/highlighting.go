package ui

import (
	"strings"

	"github.com/dgnsrekt/audioset/internal/render"
)

// clipLines returns the index of every line that opens a clip panel.
func clipLines(content string) []int {
	var lines []int
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, render.PanelMarker) {
			lines = append(lines, i)
		}
	}
	return lines
}

// highlightClip marks the panel of the selected clip in the left margin.
func highlightClip(content string, lines []int, selected int) string {
	if selected < 0 || selected >= len(lines) {
		return content
	}

	split := strings.Split(content, "\n")
	line := split[lines[selected]]
	if strings.HasPrefix(line, " ") {
		line = line[1:]
	}
	split[lines[selected]] = selectedClipStyle("▶") + line
	return strings.Join(split, "\n")
}
