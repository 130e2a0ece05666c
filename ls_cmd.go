package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/dgnsrekt/audioset/utils"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"
	"github.com/muesli/reflow/padding"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var (
	lsFilter string
	lsAll    bool

	lsCmd = &cobra.Command{
		Use:   "ls [DIR]",
		Short: "List markdown documents that contain audioset blocks",
		Long: paragraph(fmt.Sprintf(
			"\n%s the markdown documents below DIR that contain audioset blocks. Files ignored by git are skipped unless --all is set.",
			keyword("List"),
		)),
		Example:      paragraph("audioset ls\naudioset ls ~/notes --filter scales"),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = utils.ExpandPath(args[0])
			}
			docs, err := findDocuments(dir, lsAll)
			if err != nil {
				return err
			}
			printDocuments(os.Stdout, filterDocuments(docs, lsFilter), time.Now())
			return nil
		},
	}
)

// document is a markdown file holding audioset blocks.
type document struct {
	Path    string
	Rel     string
	Clips   int
	Size    int64
	Modtime time.Time
}

func markdownPatterns() []string {
	patterns := make([]string, 0, len(utils.MarkdownExtensions))
	for _, ext := range utils.MarkdownExtensions {
		patterns = append(patterns, "*"+ext)
	}
	return patterns
}

// findDocuments walks dir for markdown files with at least one audioset
// block, sorted by path.
func findDocuments(dir string, all bool) ([]document, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}

	var ch chan gitcha.SearchResult
	if all {
		ch, err = gitcha.FindAllFilesExcept(root, markdownPatterns(), nil)
	} else {
		ch, err = gitcha.FindFilesExcept(root, markdownPatterns(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to search %s: %w", dir, err)
	}

	var docs []document
	for res := range ch {
		b, err := os.ReadFile(res.Path)
		if err != nil {
			log.Debug("unable to read document", "path", res.Path, "error", err)
			continue
		}
		n := len(render.Extract(utils.RemoveFrontmatter(b)))
		if n == 0 {
			continue
		}

		rel, err := filepath.Rel(root, res.Path)
		if err != nil {
			rel = res.Path
		}
		docs = append(docs, document{
			Path:    res.Path,
			Rel:     rel,
			Clips:   n,
			Size:    res.Info.Size(),
			Modtime: res.Info.ModTime(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Rel < docs[j].Rel })
	return docs, nil
}

// filterDocuments fuzzy-matches pattern against the relative paths, best
// match first.
func filterDocuments(docs []document, pattern string) []document {
	if pattern == "" {
		return docs
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Rel
	}

	matches := fuzzy.Find(pattern, names)
	out := make([]document, 0, len(matches))
	for _, m := range matches {
		out = append(out, docs[m.Index])
	}
	return out
}

func printDocuments(w io.Writer, docs []document, now time.Time) {
	if len(docs) == 0 {
		_, _ = fmt.Fprintln(w, subtle("No documents with audioset blocks found."))
		return
	}

	nameWidth := 0
	for _, d := range docs {
		nameWidth = max(nameWidth, len(d.Rel))
	}

	for _, d := range docs {
		clips := "1 clip"
		if d.Clips != 1 {
			clips = fmt.Sprintf("%d clips", d.Clips)
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n",
			padding.String(d.Rel, uint(nameWidth)), //nolint:gosec
			subtle(strings.Join([]string{
				clips,
				humanize.Bytes(uint64(d.Size)), //nolint:gosec
				humanize.RelTime(d.Modtime, now, "ago", "from now"),
			}, " · ")),
		)
	}
}

func init() {
	lsCmd.Flags().StringVarP(&lsFilter, "filter", "f", "", "fuzzy filter on the document path")
	lsCmd.Flags().BoolVarP(&lsAll, "all", "a", false, "include files ignored by git")
}
