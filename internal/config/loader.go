package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. URANAI_ADDR.
const EnvPrefix = "URANAI_"

var (
	storeDrivers  = []string{"memory", "bolt", "sqlite", "postgres"}
	notifyDrivers = []string{"log", "smtp"}
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if URANAI_CONFIG is set
//  3. env (prefix URANAI_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// URANAI_STORE_DRIVER -> store_driver; underscores are kept to match tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks fields that have no usable zero value.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.NotifyDriver = strings.ToLower(strings.TrimSpace(c.NotifyDriver))

	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.FeedURL) == "":
		return fmt.Errorf("%w: feed_url must not be empty", ErrInvalidConfig)
	case c.FeedTimeoutMS <= 0:
		return fmt.Errorf("%w: feed_timeout_ms must be positive", ErrInvalidConfig)
	case c.TZOffsetHours < -12 || c.TZOffsetHours > 14:
		return fmt.Errorf("%w: tz_offset_hours out of range", ErrInvalidConfig)
	case !slices.Contains(storeDrivers, c.StoreDriver):
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case (c.StoreDriver == "bolt" || c.StoreDriver == "sqlite") && strings.TrimSpace(c.StorePath) == "":
		return fmt.Errorf("%w: store_path must not be empty for %s", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == "postgres" && strings.TrimSpace(c.PostgresDSN) == "":
		return fmt.Errorf("%w: postgres_dsn must not be empty", ErrInvalidConfig)
	case !slices.Contains(notifyDrivers, c.NotifyDriver):
		return fmt.Errorf("%w: unknown notify_driver %q", ErrInvalidConfig, c.NotifyDriver)
	case c.NotifyDriver == "smtp" && (c.SMTPAddr == "" || c.MailSender == "" || c.MailRecipient == ""):
		return fmt.Errorf("%w: smtp notifications need smtp_addr, mail_sender and mail_recipient", ErrInvalidConfig)
	}
	return nil
}
