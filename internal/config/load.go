package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and in
// ConfigDir.
const FileName = "meshbake.yaml"

// Load resolves the config as defaults < file < flags and validates the
// result. The file is the --config path if given, otherwise the first
// FileName found by findConfigFile.
func Load() (*Config, error) {
	cfg := Default()

	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns ./meshbake.yaml or ConfigDir()/meshbake.yaml,
// whichever exists first, or "".
func findConfigFile() string {
	for _, path := range []string{FileName, filepath.Join(ConfigDir(), FileName)} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user meshbake config directory. It falls back
// to the working directory when the OS reports none.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base, _ = os.Getwd()
	}
	return filepath.Join(base, "meshbake")
}

// loadFromFile decodes path over cfg. Keys missing from the file keep their
// current values; unknown keys are an error so typos do not pass silently.
// An empty file is accepted.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
