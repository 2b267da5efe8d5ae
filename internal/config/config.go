// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and URANAI_* env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FeedURL is the upstream ranking document.
	FeedURL string `koanf:"feed_url"`

	// FeedTimeoutMS bounds a single feed fetch.
	FeedTimeoutMS int `koanf:"feed_timeout_ms"`

	// TZOffsetHours is the feed's publication timezone as a fixed UTC offset.
	TZOffsetHours int `koanf:"tz_offset_hours"`

	// StoreDriver selects the record store: memory, bolt, sqlite, postgres.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the database file for bolt and sqlite.
	StorePath string `koanf:"store_path"`

	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string `koanf:"postgres_dsn"`

	// NotifyDriver selects failure notification delivery: smtp or log.
	NotifyDriver string `koanf:"notify_driver"`

	// SMTP delivery settings.
	SMTPAddr      string `koanf:"smtp_addr"`
	SMTPUsername  string `koanf:"smtp_username"`
	SMTPPassword  string `koanf:"smtp_password"`
	MailSender    string `koanf:"mail_sender"`
	MailRecipient string `koanf:"mail_recipient"`
	MailSubject   string `koanf:"mail_subject"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		FeedURL:       "http://www.fujitv.co.jp/meza/uranai/uranai.xml",
		FeedTimeoutMS: 10_000,
		TZOffsetHours: 9,
		StoreDriver:   "bolt",
		StorePath:     "uranai.db",
		NotifyDriver:  "log",
		SMTPAddr:      "localhost:25",
		MailSender:    "uranai@localhost",
		MailRecipient: "admin@localhost",
		MailSubject:   "Something bad seems to have happened.",
	}
}

// FeedTimeout returns FeedTimeoutMS as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMS) * time.Millisecond
}

// TZOffset returns TZOffsetHours as a duration.
func (c *Config) TZOffset() time.Duration {
	return time.Duration(c.TZOffsetHours) * time.Hour
}
