package testenv

import "path/filepath"

// overrideVars are read by config.Load and must not leak in from the host.
var overrideVars = []string{
	"CLIENT_ID",
	"CLIENT_SECRET",
	"USER_AGENT",
	"ACCOUNT_FILE",
	"GOOGLE_TIMEOUT",
	"ANTHROPIC_BASE_URL",
	"ANTHROPIC_AUTH_TOKEN",
	"QUERY_DEBOUNCE",
	"HOST",
	"PORT",
}

// Apply points QUOTAQUERY_CONFIG_DIR at base/config and blanks every
// environment override. It returns the config directory.
func Apply(setenv func(string, string), base string) string {
	dir := filepath.Join(base, "config")
	setenv("QUOTAQUERY_CONFIG_DIR", dir)
	for _, key := range overrideVars {
		setenv(key, "")
	}
	return dir
}
