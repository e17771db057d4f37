package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:          "http://127.0.0.1/users",
			Timeout:      5 * time.Second,
			UserAgent:    "roster-test/1.0",
			MaxBodyBytes: 1 << 20,
			AllowPrivate: true,
		},
		UI:     defaultConfig().UI,
		Keys:   defaultConfig().Keys,
		Log:    LogConfig{Level: "off"},
		Opener: defaultConfig().Opener,
	}
}
