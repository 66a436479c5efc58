package cookie

import (
	"net/http"
	"time"
)

// Options are the attributes written with a cookie. A Manager holds one set
// as its defaults and every call works on a copy.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option changes one attribute.
type Option func(*Options)

// WithPath scopes the cookie to path. An empty path means "/".
func WithPath(path string) Option {
	if path == "" {
		path = "/"
	}
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the lifetime in whole seconds. Zero or less leaves a
// session cookie.
func WithMaxAge(d time.Duration) Option {
	seconds := max(int(d/time.Second), 0)
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

func (o Options) with(opts []Option) Options {
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o Options) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}

// expired builds a cookie that makes the browser drop name.
func (o Options) expired(name string) *http.Cookie {
	c := o.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
