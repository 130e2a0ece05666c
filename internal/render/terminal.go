package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgnsrekt/audioset/internal/vault"
)

const (
	// PanelMarker opens the first line of every terminal panel.
	PanelMarker = "🔊"

	infoSeparator = " · "
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

// Terminal rewrites every audioset block in source into a markdown
// blockquote panel that a terminal renderer can display.
func Terminal(source []byte, v *vault.Vault) []byte {
	return Rewrite(source, Scan(source, v))
}

// Rewrite replaces each clip's fence in source with its panel. Clips must
// come from Scan over the same source.
func Rewrite(source []byte, clips []Clip) []byte {
	if len(clips) == 0 {
		return source
	}

	var buf bytes.Buffer
	last := 0
	for i, c := range clips {
		buf.Write(source[last:c.Start])
		buf.WriteString(Panel(i+1, c))
		last = c.End
		// a following line would otherwise continue the blockquote
		if last < len(source) && source[last] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(source[last:])
	return buf.Bytes()
}

// Panel renders one clip as a blockquote numbered n. The fence indentation
// is kept so panels inside lists stay in place.
func Panel(n int, c Clip) string {
	lines := []string{fmt.Sprintf("%s **%d.**", PanelMarker, n)}
	if c.HasPlayer() {
		lines[0] = fmt.Sprintf("%s **%d. %s**", PanelMarker, n, markdownEscaper.Replace(c.Info[0]))
		if len(c.Info) > 1 {
			lines = append(lines, "", markdownEscaper.Replace(strings.Join(c.Info[1:], infoSeparator)))
		}
		if c.URL != "" {
			lines = append(lines, "", "`"+c.URL+"`")
		}
	}
	if c.Message != "" {
		lines = append(lines, "", markdownEscaper.Replace(c.Message))
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(c.Indent)
		sb.WriteString(">")
		if line != "" {
			sb.WriteString(" ")
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
