// Package main provides the entry point for the audioset CLI.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/audioset/internal/render"
	"github.com/dgnsrekt/audioset/internal/vault"
	"github.com/dgnsrekt/audioset/ui"
	"github.com/dgnsrekt/audioset/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile       string
	pager            bool
	tui              bool
	style            string
	width            uint
	preserveNewLines bool
	mouse            bool

	rootCmd = &cobra.Command{
		Use:   "audioset [SOURCE|DIR]",
		Short: "Play the audio clips of a markdown document",
		Long: paragraph(
			fmt.Sprintf("\nRender markdown with %s on the CLI.", keyword("audioset blocks")),
		),
		Example:          paragraph("audioset notes.md\naudioset --tui notes.md\ncat notes.md | audioset -"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// execute renders the document named by args, or piped stdin when no
// argument is given ("-" reads stdin explicitly).
func execute(cmd *cobra.Command, args []string) error {
	var (
		src *source
		err error
	)
	piped, err := stdinIsPipe()
	if err != nil {
		return err
	}
	switch {
	case len(args) > 0:
		src, err = sourceFromArg(args[0])
	case piped:
		src = &source{reader: os.Stdin}
	default:
		src, err = sourceFromArg("")
	}
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck

	b, v, err := readSource(src)
	if err != nil {
		return err
	}

	if tui || cmd.Flags().Changed("tui") {
		content := ""
		if src.path == "" {
			content = string(b)
		}
		return runTUI(src.path, v.Root(), content)
	}

	out, err := renderTerminal(b, v)
	if err != nil {
		return err
	}
	if pager || cmd.Flags().Changed("pager") {
		return runPager(out)
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}
	return nil
}

// renderTerminal turns audioset blocks into info panels and renders the
// document with glamour.
func renderTerminal(b []byte, v *vault.Vault) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		utils.GlamourStyle(style),
		glamour.WithWordWrap(int(width)), //nolint:gosec
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(string(render.Terminal(b, v)))
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

// runPager pipes out through $PAGER, or less.
func runPager(out string) error {
	pagerCmd := strings.Fields(os.Getenv("PAGER"))
	if len(pagerCmd) == 0 {
		pagerCmd = []string{"less", "-r"}
	}

	c := exec.Command(pagerCmd[0], pagerCmd[1:]...) //nolint:gosec
	c.Stdin = strings.NewReader(out)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("unable to run pager: %w", err)
	}
	return nil
}

// tuiConfig reads ui.Config from the environment and overlays the flags and
// config file values.
func tuiConfig(path, baseDir string) (ui.Config, error) {
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}

	// GLAMOUR_STYLE wins when it names a usable style
	if validateStyle(cfg.GlamourStyle) != nil {
		cfg.GlamourStyle = style
	}
	cfg.Path = path
	cfg.BaseDir = baseDir
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.PreserveNewLines = preserveNewLines
	if viper.IsSet("audio.sample_rate") {
		cfg.SampleRate = viper.GetInt("audio.sample_rate")
	}
	if viper.IsSet("audio.cache_size") {
		cfg.CacheSize = viper.GetInt64("audio.cache_size")
	}
	return cfg, nil
}

func runTUI(path, baseDir, content string) error {
	cfg, err := tuiConfig(path, baseDir)
	if err != nil {
		return err
	}
	cfg.Disk = openDiskCache()
	defer closeDiskCache(cfg.Disk)

	if _, err := ui.NewProgram(cfg, content).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().String("base-url", "", "serve clip URLs under this prefix instead of file:// URLs")
	rootCmd.Flags().BoolVarP(&pager, "pager", "p", false, "display with pager")
	rootCmd.Flags().BoolVarP(&tui, "tui", "t", false, "open the interactive player")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().BoolVarP(&preserveNewLines, "preserve-new-lines", "n", false, "preserve newlines in the output")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("pager", rootCmd.Flags().Lookup("pager"))
	_ = viper.BindPFlag("tui", rootCmd.Flags().Lookup("tui"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("preserveNewLines", rootCmd.Flags().Lookup("preserve-new-lines"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))

	setConfigDefaults()

	rootCmd.AddCommand(configCmd, manCmd, playCmd, htmlCmd, inspectCmd, lsCmd)
}
