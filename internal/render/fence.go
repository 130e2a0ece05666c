package render

import (
	"bytes"
	"strings"

	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence is a fenced code block found in a document.
type Fence struct {
	Lang string
	Body string
	// Line is the 1-based line of the opening fence.
	Line int
	// Start and End delimit the whole block, fences included, as byte
	// offsets into the source.
	Start, End int
	// Indent is the whitespace before the opening fence.
	Indent string
}

// Extract returns every audioset block in source, in document order.
func Extract(source []byte) []Fence {
	return extract(source, func(lang string) bool { return lang == block.Language })
}

func extract(source []byte, match func(lang string) bool) []Fence {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var fences []Fence
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		lang := string(fcb.Language(source))
		if !match(lang) {
			return ast.WalkSkipChildren, nil
		}
		fences = append(fences, newFence(source, fcb, lang))
		return ast.WalkSkipChildren, nil
	})
	return fences
}

func newFence(source []byte, fcb *ast.FencedCodeBlock, lang string) Fence {
	f := Fence{Lang: lang, Body: fenceBody(source, fcb)}

	f.Start = lineStart(source, fcb.Info.Segment.Start)
	f.Line = bytes.Count(source[:f.Start], []byte("\n")) + 1
	opening := source[f.Start:fcb.Info.Segment.Start]
	f.Indent = string(opening[:len(opening)-len(bytes.TrimLeft(opening, " \t"))])

	// the body ends where the last content line ends, or right after the
	// opening fence line for an empty block
	end := lineEnd(source, fcb.Info.Segment.Stop)
	if lines := fcb.Lines(); lines.Len() > 0 {
		end = lines.At(lines.Len() - 1).Stop
		end = lineEnd(source, max(end-1, 0))
	}

	// include the closing fence when there is one
	if end < len(source) {
		next := lineEnd(source, end)
		trimmed := strings.TrimSpace(string(source[end:next]))
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			end = next
		}
	}
	f.End = end
	return f
}

func fenceBody(source []byte, fcb *ast.FencedCodeBlock) string {
	var buf bytes.Buffer
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineStart returns the offset of the first byte of the line holding pos.
func lineStart(source []byte, pos int) int {
	return bytes.LastIndexByte(source[:pos], '\n') + 1
}

// lineEnd returns the offset just past the newline ending the line holding
// pos, or len(source) on the last line.
func lineEnd(source []byte, pos int) int {
	if i := bytes.IndexByte(source[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(source)
}
