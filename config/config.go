// Package config loads adapter and DLQ settings via github.com/spf13/viper,
// generalizing the teacher's plain broker.Config struct into something that
// also reads from environment variables and an optional file, grounded on
// madcok-co-unicorn/contrib/config's viper wiring.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AMQP holds RabbitMQ adapter settings.
type AMQP struct {
	URI      string `mapstructure:"uri"`
	Queue    string `mapstructure:"queue"`
	Prefetch int    `mapstructure:"prefetch"`
}

// PubSub holds Redis or NATS pub/sub adapter settings.
type PubSub struct {
	Address  string   `mapstructure:"address"`
	Channels []string `mapstructure:"channels"`
}

// HTTP holds the HTTP adapter's listen settings.
type HTTP struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// DLQ holds settings for the file/sqlite DLQ backends.
type DLQ struct {
	Backend string `mapstructure:"backend"` // "memory", "file", or "sqlite"
	Path    string `mapstructure:"path"`
}

// Config is the top-level configuration for a dispatch deployment: which
// adapter to run and which DLQ backend to route unhandled messages to.
type Config struct {
	AMQP    AMQP          `mapstructure:"amqp"`
	Redis   PubSub        `mapstructure:"redis"`
	NATS    PubSub        `mapstructure:"nats"`
	HTTP    HTTP          `mapstructure:"http"`
	DLQ     DLQ           `mapstructure:"dlq"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from an optional file at path (if non-empty) and
// from environment variables prefixed DISPATCH_ (e.g. DISPATCH_AMQP_URI),
// falling back to the defaults below.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("amqp.prefetch", 5)
	v.SetDefault("http.listen_addr", ":8080")
	v.SetDefault("dlq.backend", "memory")
	v.SetDefault("timeout", 30*time.Second)

	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about, so keys without a
	// default are bound to their environment variables explicitly.
	for _, key := range []string{"amqp.uri", "amqp.queue", "redis.address", "redis.channels", "nats.address", "nats.channels", "dlq.path"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env for %q: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
