package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

const configName = "audioset"

// configDirs lists where audioset.yml is looked up, most specific first:
// AUDIOSET_CONFIG_HOME, then $XDG_CONFIG_HOME/audioset, then the platform
// config dirs.
func configDirs() ([]string, error) {
	dirs, err := gap.NewScope(gap.User, configName).ConfigDirs()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, configName)}, dirs...)
	}
	if c := os.Getenv("AUDIOSET_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

func setConfigDefaults() {
	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("audio.sample_rate", 44100)
	viper.SetDefault("audio.cache_size", 256<<20)
	viper.SetDefault("audio.disk_cache", true)
	viper.SetDefault("audio.disk_cache_size", 1<<30)
	viper.SetDefault("audio.disk_cache_level", 3)
}

// tryLoadConfigFromDefaultPlaces reads audioset.yml and AUDIOSET_* env vars
// into viper. When no config file exists a commented default is written to
// the first config dir.
func tryLoadConfigFromDefaultPlaces() {
	dirs, err := configDirs()
	if err != nil || len(dirs) == 0 {
		fmt.Println("Could not find a configuration directory.")
		os.Exit(1)
	}
	for _, d := range dirs {
		viper.AddConfigPath(d)
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(configName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		log.Warn("Could not parse configuration file", "err", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], configName+".yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
