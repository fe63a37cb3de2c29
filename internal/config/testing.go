package config

import "testing"

// Override sets the global config to cfg for the duration of the test,
// restoring the previous value on cleanup.
func Override(t testing.TB, cfg Config) {
	t.Helper()
	configMu.Lock()
	prev := globalConfig
	globalConfig = &cfg
	configMu.Unlock()

	t.Cleanup(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig = prev
	})
}
