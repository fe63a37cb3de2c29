package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultQuotaURL   = "https://cloudcode-pa.googleapis.com/v1internal:fetchAvailableModels"
	DefaultProjectURL = "https://cloudcode-pa.googleapis.com/v1internal:loadCodeAssist"
	DefaultTokenURL   = "https://oauth2.googleapis.com/token"
	DefaultUserAgent  = "antigravity/1.13.3 Darwin/arm64"
)

// GoogleConfig describes the Cloud Code account and endpoints.
type GoogleConfig struct {
	ClientID     string  `toml:"client_id" json:"client_id" yaml:"client_id"`
	ClientSecret string  `toml:"client_secret" json:"client_secret" yaml:"client_secret"`
	UserAgent    string  `toml:"user_agent" json:"user_agent" yaml:"user_agent"`
	AccountFile  string  `toml:"account_file" json:"account_file" yaml:"account_file"`
	QuotaURL     string  `toml:"quota_url" json:"quota_url" yaml:"quota_url"`
	ProjectURL   string  `toml:"project_url" json:"project_url" yaml:"project_url"`
	TokenURL     string  `toml:"token_url" json:"token_url" yaml:"token_url"`
	Timeout      float64 `toml:"timeout" json:"timeout" yaml:"timeout"`
}

// ZaiConfig describes the Z.ai / ZHIPU endpoint. BaseURL is the Anthropic
// compatible URL (e.g. https://api.z.ai/api/anthropic) the host is derived from.
type ZaiConfig struct {
	BaseURL   string  `toml:"base_url" json:"base_url" yaml:"base_url"`
	AuthToken string  `toml:"auth_token" json:"auth_token" yaml:"auth_token"`
	Timeout   float64 `toml:"timeout" json:"timeout" yaml:"timeout"`
}

type ServerConfig struct {
	Host string `toml:"host" json:"host" yaml:"host"`
	Port int    `toml:"port" json:"port" yaml:"port"`
}

// ThresholdConfig holds the remaining-percentage cut-offs used for coloring.
type ThresholdConfig struct {
	Full     int `toml:"full" json:"full" yaml:"full"`
	Good     int `toml:"good" json:"good" yaml:"good"`
	Warning  int `toml:"warning" json:"warning" yaml:"warning"`
	Critical int `toml:"critical" json:"critical" yaml:"critical"`
}

type Config struct {
	// QueryDebounce is the cache window in minutes. Zero or less disables caching.
	QueryDebounce int             `toml:"query_debounce" json:"query_debounce" yaml:"query_debounce"`
	Google        GoogleConfig    `toml:"google" json:"google" yaml:"google"`
	Zai           ZaiConfig       `toml:"zai" json:"zai" yaml:"zai"`
	Server        ServerConfig    `toml:"server" json:"server" yaml:"server"`
	Thresholds    ThresholdConfig `toml:"thresholds" json:"thresholds" yaml:"thresholds"`
}

func DefaultConfig() Config {
	return Config{
		QueryDebounce: 1,
		Google: GoogleConfig{
			UserAgent:   DefaultUserAgent,
			AccountFile: "antigravity.json",
			QuotaURL:    DefaultQuotaURL,
			ProjectURL:  DefaultProjectURL,
			TokenURL:    DefaultTokenURL,
			Timeout:     30,
		},
		Zai: ZaiConfig{
			Timeout: 10,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Thresholds: ThresholdConfig{
			Full:     100,
			Good:     50,
			Warning:  20,
			Critical: 1,
		},
	}
}

// DebounceWindow returns QueryDebounce as a duration.
func (c Config) DebounceWindow() time.Duration {
	if c.QueryDebounce <= 0 {
		return 0
	}
	return time.Duration(c.QueryDebounce) * time.Minute
}

// AccountPath returns the resolved location of the credential file.
func (c Config) AccountPath() string {
	return ResolveAccountFile(c.Google.AccountFile)
}

// Addr returns the host:port the server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	out := c
	out.Google.ClientSecret = mask(c.Google.ClientSecret)
	out.Zai.AuthToken = mask(c.Zai.AuthToken)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the process-wide config, loading it on first use.
func Get() Config {
	configMu.RLock()
	if c := globalConfig; c != nil {
		configMu.RUnlock()
		return *c
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig != nil {
		return *globalConfig
	}
	c, _ := Load("")
	globalConfig = &c
	return c
}

// Reload re-reads the config file and environment.
func Reload() (Config, error) {
	configMu.Lock()
	defer configMu.Unlock()
	c, err := Load("")
	globalConfig = &c
	return c, err
}

// Load builds a Config from defaults, the TOML file at path (ConfigFile when
// empty) and environment overrides, in that order. A missing file is not an
// error; a malformed one returns defaults plus env alongside the error.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFile()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return applyEnvOverrides(cfg), nil
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return applyEnvOverrides(DefaultConfig()), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return applyEnvOverrides(cfg), nil
}

// Save writes cfg as TOML. The file may hold secrets so it is created 0600.
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg Config) Config {
	setString(&cfg.Google.ClientID, "CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "CLIENT_SECRET")
	setString(&cfg.Google.UserAgent, "USER_AGENT")
	setString(&cfg.Google.AccountFile, "ACCOUNT_FILE")
	setFloat(&cfg.Google.Timeout, "GOOGLE_TIMEOUT")
	setString(&cfg.Zai.BaseURL, "ANTHROPIC_BASE_URL")
	setString(&cfg.Zai.AuthToken, "ANTHROPIC_AUTH_TOKEN")
	setInt(&cfg.QueryDebounce, "QUERY_DEBOUNCE")
	setString(&cfg.Server.Host, "HOST")
	setInt(&cfg.Server.Port, "PORT")
	return cfg
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Unparseable numbers are ignored and the previous value kept.
func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = n
		}
	}
}
