package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "INDOORNAV_CONFIG"
	// ConfigFileName is the config file name looked up in the working directory
	ConfigFileName = "indoornav.yaml"
	// ConfigDirName is the config directory name under XDG and /etc
	ConfigDirName = "indoornav"
)

// searchPaths lists config file candidates, highest priority first.
// Candidates whose base directory is not set in the environment are skipped.
func searchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}

	dirs := []struct {
		env  string
		elem []string
	}{
		{"XDG_CONFIG_HOME", nil},
		{"HOME", []string{".config"}},
	}
	for _, d := range dirs {
		base := os.Getenv(d.env)
		if base == "" {
			continue
		}
		elems := append([]string{base}, d.elem...)
		paths = append(paths, filepath.Join(append(elems, ConfigDirName, "config.yaml")...))
	}

	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing file among, in order,
// $INDOORNAV_CONFIG, ./indoornav.yaml, $XDG_CONFIG_HOME/indoornav/config.yaml,
// ~/.config/indoornav/config.yaml and /etc/indoornav/config.yaml.
// It returns an empty string when none exists.
func FindConfigPath() string {
	for _, p := range searchPaths() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
