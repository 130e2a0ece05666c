package main

import (
	"fmt"
	"os"

	"github.com/dgnsrekt/audioset/internal/block"
	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// inspection is the YAML view of one audioset block.
type inspection struct {
	Index int         `yaml:"index"`
	Line  int         `yaml:"line"`
	Block block.Block `yaml:"block"`
	Info  []string    `yaml:"info,omitempty"`
	Path  string      `yaml:"path,omitempty"`
	URL   string      `yaml:"url,omitempty"`
	Error string      `yaml:"error,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:          "inspect SOURCE",
	Short:        "Print the parsed audioset blocks of a document as YAML",
	Long:         paragraph(fmt.Sprintf("\n%s every audioset block of a markdown document: its directives, warnings and the file it resolves to.", keyword("Inspect"))),
	Example:      paragraph("audioset inspect notes.md"),
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

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck

		if err := enc.Encode(inspect(render.Scan(b, v))); err != nil {
			return fmt.Errorf("unable to encode blocks: %w", err)
		}
		return nil
	},
}

func inspect(clips []render.Clip) []inspection {
	out := make([]inspection, 0, len(clips))
	for i, c := range clips {
		in := inspection{
			Index: i + 1,
			Line:  c.Line,
			Block: c.Block,
			Info:  c.Info,
			URL:   c.URL,
			Error: c.Message,
		}
		if c.File != nil {
			in.Path = c.File.Path
		}
		out = append(out, in)
	}
	return out
}
