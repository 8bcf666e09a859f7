package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Shortcuts ShortcutsConfig `toml:"shortcuts"`
	Web       WebConfig       `toml:"web"`
	Audio     AudioConfig     `toml:"audio"`
	API       APIConfig       `toml:"api"`
	License   LicenseConfig   `toml:"license"`
}

type ShortcutsConfig struct {
	ToggleVisibility string `toml:"toggle_visibility"`
}

type WebConfig struct {
	Port int `toml:"port"`
}

type AudioConfig struct {
	Device     string `toml:"device"`
	MaxSeconds int    `toml:"max_seconds"`
}

type APIConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	Model     string `toml:"model"`
}

type LicenseConfig struct {
	PaymentEndpoint string `toml:"payment_endpoint"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Shortcuts: ShortcutsConfig{
			ToggleVisibility: "ctrl+shift+space",
		},
		Web: WebConfig{
			Port: 8573,
		},
		Audio: AudioConfig{
			Device:     "",
			MaxSeconds: 300,
		},
		API: APIConfig{
			Endpoint: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
		},
		License: LicenseConfig{},
	}
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}

	configDir := filepath.Join(base, "deskhand")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Dir returns the directory holding the config file and the database.
func Dir() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load loads the configuration from the TOML file
// If the file doesn't exist, it creates it with default values
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides the endpoints that are normally baked in at release
// time rather than edited by the user.
func (c *Config) applyEnv() {
	if v := os.Getenv("PAYMENT_ENDPOINT"); v != "" {
		c.License.PaymentEndpoint = v
	}
	if v := os.Getenv("API_ACCESS_KEY"); v != "" {
		c.API.AccessKey = v
	}
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// KeyCombo represents a parsed keyboard combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   string
}

// ParseHotkey parses a hotkey combo string like "ctrl+shift+space" or "ctrl+win"
func ParseHotkey(combo string) (KeyCombo, error) {
	var kc KeyCombo
	parts := strings.Split(strings.ToLower(combo), "+")

	if len(parts) == 0 {
		return kc, fmt.Errorf("empty hotkey combo")
	}

	for i, part := range parts {
		part = strings.TrimSpace(part)

		// Check if this part is a modifier
		isModifier := false
		switch part {
		case "ctrl", "control":
			kc.Ctrl = true
			isModifier = true
		case "shift":
			kc.Shift = true
			isModifier = true
		case "alt":
			kc.Alt = true
			isModifier = true
		case "win", "windows", "super", "cmd":
			kc.Win = true
			isModifier = true
		}

		// If it's not a modifier and it's the last part, it's the key
		if !isModifier {
			if i == len(parts)-1 {
				kc.Key = part
			} else {
				return kc, fmt.Errorf("unknown modifier: %s", part)
			}
		}
	}

	// Key is optional - if empty, it's a modifier-only combo
	// But we need at least one modifier
	if !kc.Ctrl && !kc.Shift && !kc.Alt && !kc.Win {
		return kc, fmt.Errorf("no modifiers or key specified in combo")
	}

	return kc, nil
}
