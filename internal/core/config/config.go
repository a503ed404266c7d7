package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/neilberkman/tabrider/internal/core/suspend"
)

const DefaultSavedTitleTemplate = `{{{name}}} ({{windows}} {{window_label}}, {{tabs}} {{tab_label}})`

const DefaultHistoryTitleTemplate = `{{windows}} {{window_label}}, {{tabs}} {{tab_label}}: {{{human_date}}}`

// DefaultSpecialPrefixes are URLs the browser does not let an extension suspend
var DefaultSpecialPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"chrome-devtools://",
	"about:",
	"view-source:",
	"file://",
	"https://chrome.google.com/webstore",
	"https://chromewebstore.google.com",
}

type Config struct {
	SuspendedPage        string
	SpecialPrefixes      []string
	BrowserURL           string        // DevTools websocket URL of a running browser (optional)
	RestoreTimeout       time.Duration // Upper bound for one restore or capture
	MaxHistory           int           // Unnamed sessions kept by prune; 0 disables pruning
	KeepEmptySessions    bool          // Keep a session stub after its last window is removed
	SavedTitleTemplate   string
	HistoryTitleTemplate string
}

type tomlConfig struct {
	SuspendedPage        string   `toml:"suspended_page"`
	SpecialPrefixes      []string `toml:"special_prefixes"`
	BrowserURL           string   `toml:"browser_url"`
	RestoreTimeout       string   `toml:"restore_timeout"`
	MaxHistory           *int     `toml:"max_history"`
	KeepEmptySessions    bool     `toml:"keep_empty_sessions"`
	SavedTitleTemplate   string   `toml:"saved_title_template"`
	HistoryTitleTemplate string   `toml:"history_title_template"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		SuspendedPage:        suspend.DefaultPage,
		SpecialPrefixes:      append([]string(nil), DefaultSpecialPrefixes...),
		RestoreTimeout:       2 * time.Minute,
		MaxHistory:           50,
		SavedTitleTemplate:   DefaultSavedTitleTemplate,
		HistoryTitleTemplate: DefaultHistoryTitleTemplate,
	}
}

// DefaultDir returns ~/.config/tabrider
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".config", "tabrider")
}

// Load reads config from path, or from ~/.config/tabrider/config.toml when path is empty.
// A missing file yields the defaults; a file that fails to parse is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(DefaultDir(), "config.toml")
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, nil // Use defaults
	}

	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if tc.SuspendedPage != "" {
		cfg.SuspendedPage = tc.SuspendedPage
	}
	if len(tc.SpecialPrefixes) > 0 {
		cfg.SpecialPrefixes = tc.SpecialPrefixes
	}
	cfg.BrowserURL = tc.BrowserURL
	if tc.RestoreTimeout != "" {
		d, err := time.ParseDuration(tc.RestoreTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid restore_timeout %q: %w", tc.RestoreTimeout, err)
		}
		cfg.RestoreTimeout = d
	}
	if tc.MaxHistory != nil {
		cfg.MaxHistory = *tc.MaxHistory
	}
	cfg.KeepEmptySessions = tc.KeepEmptySessions
	if tc.SavedTitleTemplate != "" {
		cfg.SavedTitleTemplate = tc.SavedTitleTemplate
	}
	if tc.HistoryTitleTemplate != "" {
		cfg.HistoryTitleTemplate = tc.HistoryTitleTemplate
	}

	return cfg, nil
}

// Codec builds the URL codec described by the config
func (c *Config) Codec() *suspend.Codec {
	return suspend.NewCodec(c.SuspendedPage, suspend.PrefixSpecial(c.SpecialPrefixes...))
}
