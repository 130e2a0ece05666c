package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/vault"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindAudioset is the ast.NodeKind of a processed block.
var KindAudioset = ast.NewNodeKind("Audioset")

// KindAudiosetScript is the ast.NodeKind of the player script appended to a
// document with at least one player.
var KindAudiosetScript = ast.NewNodeKind("AudiosetScript")

// playerScript applies the data-* directives to every player in the page:
// seek on play, stop at the boundary, loop back.
//
//go:embed audioset.js
var playerScript string

// Node replaces a registered fenced code block in the AST.
type Node struct {
	ast.BaseBlock
	Lang   string
	Result Result
}

// Kind implements ast.Node.
func (n *Node) Kind() ast.NodeKind {
	return KindAudioset
}

// Dump implements ast.Node.
func (n *Node) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Lang": n.Lang,
		"File": n.Result.Block.File,
		"URL":  n.Result.URL,
	}, nil)
}

// ScriptNode is the player script, rendered once per document.
type ScriptNode struct {
	ast.BaseBlock
}

// Kind implements ast.Node.
func (n *ScriptNode) Kind() ast.NodeKind {
	return KindAudiosetScript
}

// Dump implements ast.Node.
func (n *ScriptNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Extension renders registered fenced blocks as audio players.
type Extension struct {
	Registry *Registry
	Vault    *vault.Vault
}

// NewExtension returns an extension that renders the blocks registered in
// registry, resolving files against v.
func NewExtension(registry *Registry, v *vault.Vault) *Extension {
	return &Extension{Registry: registry, Vault: v}
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&transformer{ext: e}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&htmlRenderer{}, 100),
	))
}

// HTML converts markdown source to HTML with e enabled.
func (e *Extension) HTML(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(e))
	if err := md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("unable to render html: %w", err)
	}
	return buf.Bytes(), nil
}

type transformer struct {
	ext *Extension
}

func (t *transformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			blocks = append(blocks, fcb)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	players := 0
	for _, fcb := range blocks {
		if fcb.Info == nil {
			continue
		}
		lang := string(fcb.Language(source))
		process, ok := t.ext.Registry.Lookup(lang)
		if !ok {
			continue
		}

		r := process(fenceBody(source, fcb), t.ext.Vault)
		if r.Err != nil {
			log.Debug("audioset block", "err", r.Err)
		}

		node := &Node{Lang: lang, Result: r}
		fcb.Parent().ReplaceChild(fcb.Parent(), fcb, node)
		if r.HasPlayer() {
			players++
		}
	}

	if players > 0 {
		doc.AppendChild(doc, &ScriptNode{})
	}
}

type htmlRenderer struct{}

func (r *htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAudioset, r.renderAudioset)
	reg.Register(KindAudiosetScript, r.renderScript)
}

func (r *htmlRenderer) renderScript(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<script>\n" + playerScript + "</script>\n")
	}
	return ast.WalkSkipChildren, nil
}

func (r *htmlRenderer) renderAudioset(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	res := n.(*Node).Result

	_, _ = w.WriteString(`<div class="audioset">` + "\n")
	if res.HasPlayer() {
		_, _ = w.WriteString(`<div class="audioset-info">` + "\n")
		for _, line := range res.Info {
			writeElement(w, "div", line)
		}
		_, _ = w.WriteString("</div>\n")
		writeAudio(w, res)
	}
	if res.Message != "" {
		writeElement(w, "div", res.Message)
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}

func writeAudio(w util.BufWriter, res Result) {
	b := res.Block
	_, _ = w.WriteString(`<audio controls`)
	if res.URL != "" {
		writeAttr(w, "src", res.URL)
	}
	writeAttr(w, "data-speed", strconv.FormatFloat(b.Speed, 'f', -1, 64))
	writeAttr(w, "data-volume", strconv.FormatFloat(b.Volume, 'f', -1, 64))
	if b.HasStart() {
		writeAttr(w, "data-start", strconv.FormatFloat(b.Start, 'f', -1, 64))
	}
	if b.HasStop() {
		writeAttr(w, "data-stop", strconv.FormatFloat(b.Stop, 'f', -1, 64))
	}
	if b.Loop {
		_, _ = w.WriteString(" data-loop")
	}
	_, _ = w.WriteString("></audio>\n")
}

func writeElement(w util.BufWriter, tag, content string) {
	_, _ = w.WriteString("<" + tag + ">")
	_, _ = w.Write(util.EscapeHTML([]byte(content)))
	_, _ = w.WriteString("</" + tag + ">\n")
}

func writeAttr(w util.BufWriter, name, value string) {
	_, _ = w.WriteString(" " + name + `="`)
	_, _ = w.Write(util.EscapeHTML([]byte(value)))
	_ = w.WriteByte('"')
}
