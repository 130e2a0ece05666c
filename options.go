package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour/styles"
	"github.com/dgnsrekt/audioset/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxWidth     = 120
)

// validateStyle accepts a built-in glamour style or the path of a JSON style.
func validateStyle(style string) error {
	if style == styles.AutoStyle || styles.DefaultStyles[style] != nil {
		return nil
	}
	_, err := os.Stat(utils.ExpandPath(style))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("specified style does not exist: %s", style)
	case err != nil:
		return fmt.Errorf("unable to stat file: %w", err)
	}
	return nil
}

// validateAudio checks the audio section of the config.
func validateAudio() error {
	if rate := viper.GetInt("audio.sample_rate"); rate != 44100 && rate != 48000 {
		return fmt.Errorf("audio.sample_rate must be 44100 or 48000, got %d", rate)
	}
	if size := viper.GetInt64("audio.cache_size"); size < 0 {
		return fmt.Errorf("audio.cache_size must not be negative, got %d", size)
	}
	if size := viper.GetInt64("audio.disk_cache_size"); size < 0 {
		return fmt.Errorf("audio.disk_cache_size must not be negative, got %d", size)
	}
	if level := viper.GetInt("audio.disk_cache_level"); level < 1 || level > 22 {
		return fmt.Errorf("audio.disk_cache_level must be between 1 and 22, got %d", level)
	}
	return nil
}

// validateOptions copies the merged flag and config values into the
// globals the commands read.
func validateOptions(cmd *cobra.Command) error {
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	pager = viper.GetBool("pager")
	tui = viper.GetBool("tui")
	preserveNewLines = viper.GetBool("preserveNewLines")
	style = viper.GetString("style")

	if pager && tui {
		return errors.New("cannot use both pager and tui")
	}
	if err := validateAudio(); err != nil {
		return err
	}
	if err := validateStyle(style); err != nil {
		return err
	}

	fd := int(os.Stdout.Fd())
	isTerminal := term.IsTerminal(fd)

	// piped output gets the plain style unless one was asked for
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = styles.NoTTYStyle
	}
	if !cmd.Flags().Changed("width") {
		width = detectWidth(fd, isTerminal, width)
	}
	return nil
}

// detectWidth picks the word-wrap width when none was given on the command
// line: the configured width, else the terminal width capped at maxWidth.
func detectWidth(fd int, isTerminal bool, configured uint) uint {
	if configured > 0 {
		return configured
	}
	if isTerminal {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return min(uint(w), maxWidth) //nolint:gosec
		}
	}
	return defaultWidth
}
