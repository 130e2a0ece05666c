package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"none", "# Title\n", "# Title\n"},
		{"yaml", "---\ntitle: x\n---\n# Title\n", "# Title\n"},
		{"not leading", "# Title\n---\nfoo\n---\n", "# Title\n---\nfoo\n---\n"},
		{"unterminated", "---\ntitle: x\n", "---\ntitle: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RemoveFrontmatter([]byte(tt.in))); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMarkdownFile(t *testing.T) {
	tests := map[string]bool{
		"README":        true,
		"notes.md":      true,
		"notes.MD":      true,
		"doc.markdown":  true,
		"clip.mp3":      false,
		"dir/main.go":   false,
		"dir/notes.mkd": true,
	}
	for name, want := range tests {
		if got := IsMarkdownFile(name); got != want {
			t.Errorf("IsMarkdownFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/notes"); got != filepath.Join(home, "notes") {
		t.Errorf("unexpected expansion %s", got)
	}

	t.Setenv("AUDIOSET_TEST_DIR", "/tmp/clips")
	if got := ExpandPath("$AUDIOSET_TEST_DIR/a.mp3"); got != "/tmp/clips/a.mp3" {
		t.Errorf("unexpected expansion %s", got)
	}
}
