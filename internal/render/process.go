package render

import (
	"errors"

	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/dgnsrekt/audioset/internal/vault"
)

// Messages shown in place of a player.
const (
	MsgNoFile       = "❌ No file specified in audioset block."
	MsgFileNotFound = "❌ File not found: "
)

// Result is a processed block, ready to render.
type Result struct {
	Block block.Block
	// Info holds the info panel lines. Empty when the block names no file.
	Info []string
	// File and URL are set once the file resolved.
	File *vault.File
	URL  string
	// Err is block.ErrNoFile or vault.ErrNotFound; Message is its user
	// facing text.
	Err     error
	Message string
}

// OK reports whether the block resolved to a playable file.
func (r Result) OK() bool {
	return r.Err == nil && r.File != nil
}

// HasPlayer reports whether a player element is rendered. A missing file
// still gets one, without a source.
func (r Result) HasPlayer() bool {
	return !errors.Is(r.Err, block.ErrNoFile)
}

// Process runs one audioset block through the host lifecycle: parse,
// build the info panel, resolve the file and generate its resource URL.
func Process(source string, v *vault.Vault) Result {
	b, err := block.Parse(source)
	if err != nil {
		return Result{Block: b, Err: err, Message: MsgNoFile}
	}

	r := Result{Block: b, Info: b.InfoLines()}

	f, err := v.Lookup(b.File)
	if err != nil {
		r.Err = err
		r.Message = MsgFileNotFound + b.File
		return r
	}
	r.File = f
	r.URL = v.ResourcePath(f)
	return r
}

// Clip is a processed audioset block and its place in the document.
type Clip struct {
	Fence
	Result
}

// Scan extracts and processes every audioset block in source.
func Scan(source []byte, v *vault.Vault) []Clip {
	fences := Extract(source)
	clips := make([]Clip, 0, len(fences))
	for _, f := range fences {
		clips = append(clips, Clip{Fence: f, Result: Process(f.Body, v)})
	}
	return clips
}
