package tempdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/modelbind/pkg/cookie"
	"github.com/dmitrymomot/modelbind/pkg/logger"
)

// Provider loads and saves the temp data of one request.
type Provider interface {
	LoadTempData(ctx context.Context, r *http.Request) (map[string]any, error)
	SaveTempData(ctx context.Context, w http.ResponseWriter, r *http.Request, values map[string]any) error
}

const (
	DefaultCookieName = "__tempdata"
	// DefaultMaxCookieSize keeps the encoded cookie value under the 4096 byte
	// limit browsers apply to name, value and attributes together.
	DefaultMaxCookieSize = 3800

	cookiePurpose = "tempdata"
)

// CookieProvider keeps temp data in one encrypted cookie.
type CookieProvider struct {
	cookies    *cookie.Manager
	serializer Serializer
	name       string
	maxSize    int
	log        *slog.Logger
}

// CookieOption configures a CookieProvider.
type CookieOption func(*CookieProvider)

func WithCookieName(name string) CookieOption {
	return func(p *CookieProvider) {
		if name != "" {
			p.name = name
		}
	}
}

func WithMaxCookieSize(n int) CookieOption {
	return func(p *CookieProvider) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

func WithSerializer(s Serializer) CookieOption {
	return func(p *CookieProvider) {
		if s != nil {
			p.serializer = s
		}
	}
}

func WithCookieLogger(l *slog.Logger) CookieOption {
	return func(p *CookieProvider) {
		if l != nil {
			p.log = l
		}
	}
}

// NewCookieProvider derives temp data keys from m. Cookies written by m for
// any other purpose do not decrypt as temp data.
func NewCookieProvider(m *cookie.Manager, opts ...CookieOption) (*CookieProvider, error) {
	if m == nil {
		return nil, errors.New("tempdata: cookie manager is required")
	}
	pm, err := m.WithPurpose(cookiePurpose)
	if err != nil {
		return nil, err
	}

	p := &CookieProvider{
		cookies:    pm,
		serializer: BSONSerializer{},
		name:       DefaultCookieName,
		maxSize:    DefaultMaxCookieSize,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// LoadTempData returns the values stored in the request cookie. A missing
// cookie gives an empty map. A cookie that does not decrypt or decode is
// logged and treated as empty, so a key rotation or a tampered value never
// fails the request.
func (p *CookieProvider) LoadTempData(ctx context.Context, r *http.Request) (map[string]any, error) {
	raw, err := p.cookies.Get(r, p.name)
	if err != nil || raw == "" {
		return map[string]any{}, nil
	}

	data, err := p.cookies.Decrypt(raw)
	if err != nil {
		p.log.DebugContext(ctx, "discarding temp data cookie",
			logger.Component("tempdata"),
			logger.Error(err),
		)
		return map[string]any{}, nil
	}

	values, err := p.serializer.Deserialize(data)
	if err != nil {
		p.log.DebugContext(ctx, "discarding temp data cookie",
			logger.Component("tempdata"),
			logger.Error(err),
		)
		return map[string]any{}, nil
	}
	return values, nil
}

// SaveTempData writes values to the response cookie, or deletes the cookie
// when values is empty and the request carried one.
func (p *CookieProvider) SaveTempData(_ context.Context, w http.ResponseWriter, r *http.Request, values map[string]any) error {
	if len(values) == 0 {
		if r != nil {
			if _, err := r.Cookie(p.name); err == nil {
				p.cookies.Delete(w, p.name)
			}
		}
		return nil
	}

	data, err := p.serializer.Serialize(values)
	if err != nil {
		return err
	}
	encrypted, err := p.cookies.Encrypt(data)
	if err != nil {
		return err
	}
	if len(encrypted) > p.maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrCookieTooLarge, len(encrypted), p.maxSize)
	}
	return p.cookies.Set(w, p.name, encrypted)
}
