package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "quotaquery"

// ConfigDir is where config.toml and .env live.
// QUOTAQUERY_CONFIG_DIR overrides the XDG location.
func ConfigDir() string {
	if v := os.Getenv("QUOTAQUERY_CONFIG_DIR"); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, appName)
}

func ConfigFile() string { return filepath.Join(ConfigDir(), "config.toml") }
func EnvFile() string    { return filepath.Join(ConfigDir(), ".env") }

// ResolveAccountFile trims surrounding quotes, expands a leading "~/" and
// anchors relative paths at the working directory. A relative path missing
// from the working directory falls back to ConfigDir when the file exists
// there.
func ResolveAccountFile(raw string) string {
	p := expandPath(trimQuotes(strings.TrimSpace(raw)))
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	local, err := filepath.Abs(p)
	if err != nil {
		local = p
	}
	if exists(local) {
		return local
	}
	if alt := filepath.Join(ConfigDir(), p); exists(alt) {
		return alt
	}
	return local
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
