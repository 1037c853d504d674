package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"odrtab/internal/odrtable"
)

const configFileName = "odrtab.toml"

// fileConfig is the content of odrtab.toml. Flags override every field.
type fileConfig struct {
	Table tableConfig `toml:"table"`
	Check checkConfig `toml:"check"`
}

type tableConfig struct {
	Producer string `toml:"producer"`
	Codec    string `toml:"codec"`
}

type checkConfig struct {
	Jobs   int    `toml:"jobs"`
	Fail   *bool  `toml:"fail"`
	Format string `toml:"format"`
}

// failOnViolations defaults to true when the key is absent.
func (c checkConfig) failOnViolations() bool {
	return c.Fail == nil || *c.Fail
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfigFile(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("table", "codec") {
		if _, err := odrtable.CodecByName(cfg.Table.Codec); err != nil {
			return fileConfig{}, fmt.Errorf("%s: [table].codec: %w", path, err)
		}
	}
	if strings.IndexByte(cfg.Table.Producer, 0) >= 0 {
		return fileConfig{}, fmt.Errorf("%s: [table].producer: %w", path, odrtable.ErrInvalidProducer)
	}
	if cfg.Check.Jobs < 0 {
		return fileConfig{}, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if meta.IsDefined("check", "format") {
		if err := validateCheckFormat(cfg.Check.Format); err != nil {
			return fileConfig{}, fmt.Errorf("%s: [check].format: %w", path, err)
		}
	}
	return cfg, nil
}

// loadConfig reads --config, or the nearest odrtab.toml above the working
// directory. No file means zero configuration.
func loadConfig(cmd *cobra.Command) (fileConfig, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil || !ok {
			return fileConfig{}, err
		}
		path = found
	}
	return loadConfigFile(path)
}

// pick returns the flag value when the flag was set, else the config value
// when it is non-empty, else fallback.
func pick(cmd *cobra.Command, flag, fromConfig, fallback string) (string, error) {
	v, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", flag, err)
	}
	if cmd.Flags().Changed(flag) {
		return v, nil
	}
	if fromConfig != "" {
		return fromConfig, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return v, nil
}
