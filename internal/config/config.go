package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pders01/roster/internal/validation"
	"github.com/spf13/viper"
)

const DefaultEndpoint = "https://jsonplaceholder.typicode.com/users"

type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
	Opener   OpenerConfig   `mapstructure:"opener"`
}

type EndpointConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	AllowPrivate bool          `mapstructure:"allow_private"`
}

type UIConfig struct {
	Colors        UIColors      `mapstructure:"colors"`
	RevealStagger time.Duration `mapstructure:"reveal_stagger"`
	CardWidth     int           `mapstructure:"card_width"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit    string `mapstructure:"quit"`
	Search  string `mapstructure:"search"`
	Refresh string `mapstructure:"refresh"`
	Clear   string `mapstructure:"clear"`
	Open    string `mapstructure:"open"`
	Mail    string `mapstructure:"mail"`
	Back    string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type OpenerConfig struct {
	Default string `mapstructure:"default"`
}

func defaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:          DefaultEndpoint,
			Timeout:      0,
			UserAgent:    "roster/1.0 (https://github.com/pders01/roster)",
			MaxBodyBytes: 4 << 20,
			AllowPrivate: false,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			RevealStagger: 100 * time.Millisecond,
			CardWidth:     48,
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:    "q",
				Search:  "/",
				Refresh: "r",
				Clear:   "l",
				Open:    "o",
				Mail:    "e",
				Back:    "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  validation.DefaultLogPath(),
		},
		Opener: OpenerConfig{
			Default: getDefaultOpener(),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	// .env only fills variables that are not already set
	_ = godotenv.Load()

	v := viper.New()

	for key, value := range flatten(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(validation.ConfigDir())
		v.AddConfigPath(".")
	}

	// Leaf keys are bound one by one. AutomaticEnv would let ROSTER_ENDPOINT
	// shadow the whole [endpoint] table.
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key := range flatten(defaultConfig()) {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEndpointAlias(&config)

	if err := expandPaths(&config); err != nil {
		return nil, err
	}

	if err := config.ValidateEndpoint(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ValidateEndpoint normalizes Endpoint.URL in place.
func (c *Config) ValidateEndpoint() error {
	validator := validation.NewEndpointValidator()
	if c.Endpoint.AllowPrivate {
		validator = validation.NewPermissiveEndpointValidator()
	}

	normalized, err := validator.ValidateAndNormalize(c.Endpoint.URL)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	c.Endpoint.URL = normalized
	return nil
}

// expandPaths expands ~ in file settings and makes them absolute. An empty
// log path falls back to the default.
func expandPaths(cfg *Config) error {
	if strings.TrimSpace(cfg.Log.Path) == "" {
		cfg.Log.Path = validation.DefaultLogPath()
	}

	path, err := validation.NewPermissivePathValidator().Clean(cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("invalid log path: %w", err)
	}
	cfg.Log.Path = path
	return nil
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range flatten(config) {
		v.Set(key, value)
	}

	target, err := validation.NewPermissivePathValidator().EnsureParent(path)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(target)
}

// flatten maps every setting to its dotted viper key. Durations are written
// as strings for TOML readability.
// applyEndpointAlias honours ROSTER_ENDPOINT as a short form of
// ROSTER_ENDPOINT_URL. The long form wins when both are set.
func applyEndpointAlias(c *Config) {
	if _, ok := os.LookupEnv("ROSTER_ENDPOINT_URL"); ok {
		return
	}
	if url, ok := os.LookupEnv("ROSTER_ENDPOINT"); ok && url != "" {
		c.Endpoint.URL = url
	}
}

func flatten(c *Config) map[string]interface{} {
	return map[string]interface{}{
		"endpoint.url":            c.Endpoint.URL,
		"endpoint.timeout":        c.Endpoint.Timeout.String(),
		"endpoint.user_agent":     c.Endpoint.UserAgent,
		"endpoint.max_body_bytes": c.Endpoint.MaxBodyBytes,
		"endpoint.allow_private":  c.Endpoint.AllowPrivate,

		"ui.colors.primary":   c.UI.Colors.Primary,
		"ui.colors.secondary": c.UI.Colors.Secondary,
		"ui.colors.accent":    c.UI.Colors.Accent,
		"ui.colors.text":      c.UI.Colors.Text,
		"ui.colors.muted":     c.UI.Colors.Muted,
		"ui.colors.error":     c.UI.Colors.Error,
		"ui.colors.success":   c.UI.Colors.Success,
		"ui.reveal_stagger":   c.UI.RevealStagger.String(),
		"ui.card_width":       c.UI.CardWidth,

		"keys.modifier":         c.Keys.Modifier,
		"keys.bindings.quit":    c.Keys.Bindings.Quit,
		"keys.bindings.search":  c.Keys.Bindings.Search,
		"keys.bindings.refresh": c.Keys.Bindings.Refresh,
		"keys.bindings.clear":   c.Keys.Bindings.Clear,
		"keys.bindings.open":    c.Keys.Bindings.Open,
		"keys.bindings.mail":    c.Keys.Bindings.Mail,
		"keys.bindings.back":    c.Keys.Bindings.Back,

		"log.level": c.Log.Level,
		"log.path":  c.Log.Path,

		"opener.default": c.Opener.Default,
	}
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
