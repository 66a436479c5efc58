package tempdata

import (
	"context"
	"time"

	"github.com/dmitrymomot/modelbind/pkg/config"
	"github.com/dmitrymomot/modelbind/pkg/cookie"
)

// Config selects and tunes the temp data provider. An empty RedisURL keeps
// temp data in a cookie.
type Config struct {
	CookieName     string        `env:"TEMPDATA_COOKIE_NAME" envDefault:"__tempdata"`
	MaxCookieSize  int           `env:"TEMPDATA_MAX_COOKIE_SIZE" envDefault:"3800"`
	RedisURL       string        `env:"TEMPDATA_REDIS_URL" envDefault:""`
	KeyPrefix      string        `env:"TEMPDATA_KEY_PREFIX" envDefault:"tempdata:"`
	TTL            time.Duration `env:"TEMPDATA_TTL" envDefault:"24h"`
	RetryAttempts  int           `env:"TEMPDATA_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"TEMPDATA_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"TEMPDATA_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewProvider builds the provider cfg describes. With a RedisURL it
// connects first and fails when the server does not answer.
func NewProvider(ctx context.Context, cfg Config, m *cookie.Manager) (Provider, error) {
	if cfg.RedisURL == "" {
		return NewCookieProvider(m,
			WithCookieName(cfg.CookieName),
			WithMaxCookieSize(cfg.MaxCookieSize),
		)
	}

	client, err := ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisProvider(client, m,
		WithKeyPrefix(cfg.KeyPrefix),
		WithTTL(cfg.TTL),
	)
}
