package tempdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/modelbind/pkg/cookie"
	"github.com/dmitrymomot/modelbind/pkg/logger"
)

// Store is a byte-oriented key-value store with expiration.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, exp time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore implements Store with go-redis.
type RedisStore struct {
	db redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{db: client}
}

// Get returns nil for empty keys and missing values.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val under key. Zero exp means no expiration.
func (s *RedisStore) Set(ctx context.Context, key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.db.Set(ctx, key, val, exp).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.db.Del(ctx, key).Err()
}

// Conn returns the underlying client.
func (s *RedisStore) Conn() redis.UniversalClient {
	return s.db
}

const (
	DefaultSessionCookieName = "__tempdata_sid"
	DefaultKeyPrefix         = "tempdata:"
	DefaultTTL               = 24 * time.Hour
)

// StoreProvider keeps temp data in a Store under a random id. The id travels
// in a signed cookie.
type StoreProvider struct {
	store      Store
	cookies    *cookie.Manager
	serializer Serializer
	name       string
	prefix     string
	ttl        time.Duration
	log        *slog.Logger
}

// StoreOption configures a StoreProvider.
type StoreOption func(*StoreProvider)

func WithSessionCookieName(name string) StoreOption {
	return func(p *StoreProvider) {
		if name != "" {
			p.name = name
		}
	}
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(p *StoreProvider) {
		p.prefix = prefix
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(p *StoreProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func WithStoreSerializer(s Serializer) StoreOption {
	return func(p *StoreProvider) {
		if s != nil {
			p.serializer = s
		}
	}
}

func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(p *StoreProvider) {
		if l != nil {
			p.log = l
		}
	}
}

func NewStoreProvider(store Store, m *cookie.Manager, opts ...StoreOption) (*StoreProvider, error) {
	if store == nil {
		return nil, errors.New("tempdata: store is required")
	}
	if m == nil {
		return nil, errors.New("tempdata: cookie manager is required")
	}
	pm, err := m.WithPurpose(cookiePurpose + ".session")
	if err != nil {
		return nil, err
	}

	p := &StoreProvider{
		store:      store,
		cookies:    pm,
		serializer: BSONSerializer{},
		name:       DefaultSessionCookieName,
		prefix:     DefaultKeyPrefix,
		ttl:        DefaultTTL,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewRedisProvider is NewStoreProvider over a RedisStore for client.
func NewRedisProvider(client redis.UniversalClient, m *cookie.Manager, opts ...StoreOption) (*StoreProvider, error) {
	return NewStoreProvider(NewRedisStore(client), m, opts...)
}

func (p *StoreProvider) sessionID(r *http.Request) string {
	if r == nil {
		return ""
	}
	id, err := p.cookies.GetSigned(r, p.name)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// LoadTempData reads the values for the session in the request. Store
// failures are returned; undecodable payloads are logged and dropped.
func (p *StoreProvider) LoadTempData(ctx context.Context, r *http.Request) (map[string]any, error) {
	id := p.sessionID(r)
	if id == "" {
		return map[string]any{}, nil
	}

	data, err := p.store.Get(ctx, p.prefix+id)
	if err != nil {
		return nil, err
	}
	values, err := p.serializer.Deserialize(data)
	if err != nil {
		p.log.WarnContext(ctx, "discarding stored temp data",
			logger.Component("tempdata"),
			logger.Error(err),
		)
		return map[string]any{}, nil
	}
	return values, nil
}

// SaveTempData stores values under the request session, starting a new one
// when the request had none. Empty values delete the stored entry.
func (p *StoreProvider) SaveTempData(ctx context.Context, w http.ResponseWriter, r *http.Request, values map[string]any) error {
	id := p.sessionID(r)

	if len(values) == 0 {
		if id == "" {
			return nil
		}
		return p.store.Delete(ctx, p.prefix+id)
	}

	data, err := p.serializer.Serialize(values)
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
		if err := p.cookies.SetSigned(w, p.name, id, cookie.WithMaxAge(p.ttl)); err != nil {
			return err
		}
	}
	return p.store.Set(ctx, p.prefix+id, data, p.ttl)
}

// ConnectRedis parses cfg.RedisURL and pings the server until it answers,
// making up to cfg.RetryAttempts attempts cfg.RetryInterval apart within
// cfg.ConnectTimeout.
func ConnectRedis(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Join(ErrRedisURL, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}
