package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DotEnvPaths returns the .env files consulted at startup, in priority order.
func DotEnvPaths() []string {
	return []string{".env", EnvFile()}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set are never overridden, so the
// first file to define a key wins over later ones. Missing files are skipped.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
