package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# mouse support (TUI-mode only)
mouse: false
# use pager to display markdown
pager: false
# open the interactive player
tui: false
# word-wrap at width
width: 80
# preserve newlines in the output
preserveNewLines: false

# prefix for clip URLs in HTML output, e.g. "https://example.com/notes"
base_url: ""

# audio output
audio:
  # sample rate of the output device: 44100 or 48000
  sample_rate: 44100
  # decoded clips kept in memory, in bytes
  cache_size: 268435456
  # keep decoded clips on disk between runs, zstd compressed
  disk_cache: true
  # on-disk clip cache limit, in bytes
  disk_cache_size: 1073741824
  # zstd level for the disk cache, 1 (fastest) to 22 (smallest)
  disk_cache_level: 3
`

var configPathOnly bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the audioset config file",
	Long: paragraph(fmt.Sprintf(
		"\n%s the audioset config file in $EDITOR. A commented default is written first when the file is missing.",
		keyword("Edit"),
	)),
	Example: paragraph("audioset config\naudioset config --path\naudioset config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}
		if configPathOnly {
			fmt.Fprintln(cmd.OutOrStdout(), configFile)
			return nil
		}
		if err := editConfig(configFile); err != nil {
			return err
		}
		if err := checkConfig(configFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote config file to:", configFile)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configPathOnly, "path", false, "print the config file path and exit")
}

func editConfig(file string) error {
	c, err := editor.Cmd("Audioset", file)
	if err != nil {
		return fmt.Errorf("unable to set config file: %w", err)
	}
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("unable to run editor: %w", err)
	}
	return nil
}

// checkConfig reports YAML errors left behind by the editor.
func checkConfig(file string) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("config file %s is not valid YAML: %w", file, err)
	}
	return nil
}

// ensureConfigFile settles configFile on the flag value or the file viper
// loaded, and writes the default config there when nothing exists yet.
func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.ConfigFileUsed()
	}
	if configFile == "" {
		return errors.New("no config file path")
	}
	switch filepath.Ext(configFile) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%q is not a supported config file: use .yaml or .yml", configFile)
	}

	_, err := os.Stat(configFile)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return writeDefaultConfig(configFile)
}

func writeDefaultConfig(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(defaultConfig), 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}
