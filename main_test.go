package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/dgnsrekt/audioset/internal/vault"
)

const notes = "---\ntitle: practice\n---\n# Practice\n\n```audioset\nfile: clip.mp3\nstart: 5\n```\n\n```audioset\nfile: gone.mp3\n```\n"

func setupNotes(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"README.md":      notes,
		"clip.mp3":       "id3",
		"other.md":       "# No clips here\n",
		"sub/scales.md":  "```audioset\nfile: ../clip.mp3\n```\n",
		"sub/arpeggi.md": "```audioset\nfile: ../clip.mp3\nloop\n```\n```audioset\nfile: ../clip.mp3\n```\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSourceFromArg(t *testing.T) {
	dir := setupNotes(t)

	src, err := sourceFromArg(dir)
	if err != nil {
		t.Fatalf("sourceFromArg failed: %v", err)
	}
	defer src.reader.Close() //nolint:errcheck
	if filepath.Base(src.path) != "README.md" {
		t.Errorf("expected the README to be picked, got %s", src.path)
	}

	if _, err := sourceFromArg(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := sourceFromArg(filepath.Join(dir, "sub")); err == nil {
		t.Error("expected an error for a directory without a README")
	}
}

func TestReadSource(t *testing.T) {
	dir := setupNotes(t)

	src, err := sourceFromArg(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	defer src.reader.Close() //nolint:errcheck

	b, v, err := readSource(src)
	if err != nil {
		t.Fatalf("readSource failed: %v", err)
	}
	if bytes.HasPrefix(b, []byte("---")) {
		t.Error("expected frontmatter to be removed")
	}
	if v.Root() != dir {
		t.Errorf("expected vault rooted at %s, got %s", dir, v.Root())
	}
}

func TestInspect(t *testing.T) {
	dir := setupNotes(t)
	v, err := vault.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	out := inspect(render.Scan([]byte(notes), v))
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	if out[0].Index != 1 || out[0].Block.Start != 5 || out[0].Path != filepath.Join(dir, "clip.mp3") {
		t.Errorf("unexpected first block %+v", out[0])
	}
	if out[1].Error != "❌ File not found: gone.mp3" || out[1].Path != "" {
		t.Errorf("unexpected second block %+v", out[1])
	}
}

func TestSelectClip(t *testing.T) {
	dir := setupNotes(t)
	readme := filepath.Join(dir, "README.md")

	clip, err := selectClip(readme, 1)
	if err != nil {
		t.Fatalf("selectClip failed: %v", err)
	}
	if clip.File == nil || clip.File.Name != "clip.mp3" {
		t.Errorf("expected clip.mp3, got %+v", clip.File)
	}

	if _, err := selectClip(readme, 2); err == nil || err.Error() != "❌ File not found: gone.mp3" {
		t.Errorf("expected the not found message, got %v", err)
	}
	if _, err := selectClip(readme, 3); err == nil {
		t.Error("expected an out of range error")
	}
	if _, err := selectClip(filepath.Join(dir, "other.md"), 1); err == nil {
		t.Error("expected an error for a document without blocks")
	}
}

func TestPlayableClips(t *testing.T) {
	dir := setupNotes(t)

	clips, err := playableClips(filepath.Join(dir, "sub", "arpeggi.md"))
	if err != nil {
		t.Fatalf("playableClips failed: %v", err)
	}
	if len(clips) != 2 || !clips[0].Block.Loop || clips[1].Block.Loop {
		t.Errorf("expected both blocks in document order, got %d", len(clips))
	}

	clips, err = playableClips(filepath.Join(dir, "README.md"))
	if err != nil {
		t.Fatal(err)
	}
	if len(clips) != 1 {
		t.Errorf("expected the missing file to be skipped, got %d clips", len(clips))
	}
}

func TestFindDocuments(t *testing.T) {
	dir := setupNotes(t)

	docs, err := findDocuments(dir, true)
	if err != nil {
		t.Fatalf("findDocuments failed: %v", err)
	}

	var names []string
	for _, d := range docs {
		names = append(names, filepath.ToSlash(d.Rel))
	}
	if got := strings.Join(names, ","); got != "README.md,sub/arpeggi.md,sub/scales.md" {
		t.Errorf("unexpected documents %s", got)
	}
	if docs[1].Clips != 2 {
		t.Errorf("expected 2 clips in arpeggi.md, got %d", docs[1].Clips)
	}

	filtered := filterDocuments(docs, "scl")
	if len(filtered) != 1 || filepath.Base(filtered[0].Path) != "scales.md" {
		t.Errorf("unexpected filter result %v", filtered)
	}
	if got := filterDocuments(docs, ""); len(got) != len(docs) {
		t.Error("expected an empty filter to keep every document")
	}
}

func TestPrintDocuments(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	docs := []document{
		{Rel: "a.md", Clips: 1, Size: 2048, Modtime: now.Add(-2 * time.Hour)},
		{Rel: "longer.md", Clips: 3, Size: 10, Modtime: now},
	}

	var buf bytes.Buffer
	printDocuments(&buf, docs, now)
	out := buf.String()

	for _, want := range []string{"a.md", "1 clip", "2.0 kB", "2 hours ago", "3 clips", "10 B"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	buf.Reset()
	printDocuments(&buf, nil, now)
	if !strings.Contains(buf.String(), "No documents") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestValidateStyle(t *testing.T) {
	for _, style := range []string{"auto", "dark", "light", "notty"} {
		if err := validateStyle(style); err != nil {
			t.Errorf("validateStyle(%q) failed: %v", style, err)
		}
	}
	if err := validateStyle(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing style file")
	}
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	configFile = filepath.Join(t.TempDir(), "nested", "audioset.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}
	b, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != defaultConfig {
		t.Error("expected the default config to be written")
	}
	if err := checkConfig(configFile); err != nil {
		t.Errorf("default config should parse: %v", err)
	}

	if err := os.WriteFile(configFile, []byte("audio: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("existing file must be kept: %v", err)
	}
	if err := checkConfig(configFile); err == nil {
		t.Error("expected a YAML error")
	}

	configFile = filepath.Join(t.TempDir(), "audioset.toml")
	if err := ensureConfigFile(); err == nil {
		t.Error("expected an unsupported extension error")
	}
}
