package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/spf13/cobra"
)

var (
	htmlOutput string

	htmlCmd = &cobra.Command{
		Use:   "html SOURCE",
		Short: "Render a markdown document to HTML with audio players",
		Long: paragraph(fmt.Sprintf(
			"\n%s a markdown document to HTML. Every audioset block becomes an audio element with its directives as data attributes, applied by a small script at the end of the document. Use --base-url when the clips are served over HTTP.",
			keyword("Render"),
		)),
		Example:      paragraph("audioset html notes.md > notes.html\naudioset html notes.md --base-url https://example.com/notes"),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := sourceFromArg(args[0])
			if err != nil {
				return err
			}
			defer src.reader.Close() //nolint:errcheck

			b, v, err := readSource(src)
			if err != nil {
				return err
			}

			registry := render.NewRegistry()
			plugin := render.NewPlugin(registry, log.Default())
			if err := plugin.Load(); err != nil {
				return err
			}
			defer plugin.Unload()

			out, err := render.NewExtension(registry, v).HTML(b)
			if err != nil {
				return err
			}

			if htmlOutput == "" || htmlOutput == "-" {
				_, err = os.Stdout.Write(out)
				return err //nolint:wrapcheck
			}
			if err := os.WriteFile(htmlOutput, out, 0o644); err != nil { //nolint:gosec
				return fmt.Errorf("unable to write html: %w", err)
			}
			log.Info("wrote html", "path", htmlOutput, "bytes", len(out))
			return nil
		},
	}
)

func init() {
	htmlCmd.Flags().StringVarP(&htmlOutput, "output", "o", "", "write to file instead of stdout")
}
