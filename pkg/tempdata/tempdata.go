package tempdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrymomot/modelbind/pkg/logger"
)

type entry struct {
	key   string
	value any
}

// Dictionary holds values that survive until they are read in a later
// request. Keys compare case-insensitively.
//
// A value loaded from the provider is removed on Save once it has been read
// with Get, unless Keep or KeepAll retained it. Values written with Set stay
// until they are read. Peek reads without marking.
type Dictionary struct {
	mu       sync.Mutex
	provider Provider
	r        *http.Request
	log      *slog.Logger

	loaded   bool
	loadErr  error
	data     map[string]entry
	initial  map[string]struct{}
	retained map[string]struct{}
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithLogger sets the logger used to report load failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dictionary) {
		if l != nil {
			d.log = l
		}
	}
}

// New returns a dictionary for r backed by provider. Values are loaded on
// first access or by an explicit Load.
func New(r *http.Request, provider Provider, opts ...Option) *Dictionary {
	d := &Dictionary{
		provider: provider,
		r:        r,
		log:      slog.Default(),
		data:     make(map[string]entry),
		initial:  make(map[string]struct{}),
		retained: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func norm(key string) string { return strings.ToLower(key) }

// Load reads values from the provider. Only the first call does any work.
// A provider failure leaves the dictionary empty and is returned here and
// by Err.
func (d *Dictionary) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

func (d *Dictionary) load(ctx context.Context) error {
	if d.loaded {
		return d.loadErr
	}
	d.loaded = true
	if d.provider == nil {
		d.loadErr = ErrNotLoaded
		return d.loadErr
	}

	values, err := d.provider.LoadTempData(ctx, d.r)
	if err != nil {
		d.loadErr = err
		d.log.WarnContext(ctx, "temp data load failed",
			logger.Component("tempdata"),
			logger.Error(err),
		)
		return err
	}
	for k, v := range values {
		n := norm(k)
		d.data[n] = entry{key: k, value: v}
		d.initial[n] = struct{}{}
	}
	return nil
}

func (d *Dictionary) ensure() {
	if d.loaded {
		return
	}
	ctx := context.Background()
	if d.r != nil {
		ctx = d.r.Context()
	}
	_ = d.load(ctx)
}

// Err returns the error from loading, if any.
func (d *Dictionary) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadErr
}

// Get returns the value for key and marks it for removal at the end of the
// request.
func (d *Dictionary) Get(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	n := norm(key)
	e, ok := d.data[n]
	if ok {
		delete(d.initial, n)
	}
	return e.value, ok
}

// Peek returns the value for key without marking it.
func (d *Dictionary) Peek(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	e, ok := d.data[norm(key)]
	return e.value, ok
}

// Set stores value under key. The value survives until it is read.
func (d *Dictionary) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	n := norm(key)
	if e, ok := d.data[n]; ok {
		key = e.key
	}
	d.data[n] = entry{key: key, value: value}
	d.initial[n] = struct{}{}
}

// Keep retains key for another request even if it was read.
func (d *Dictionary) Keep(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	d.retained[norm(key)] = struct{}{}
}

// KeepAll retains every current key.
func (d *Dictionary) KeepAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	for n := range d.data {
		d.retained[n] = struct{}{}
	}
}

// Delete removes key and reports whether it was present.
func (d *Dictionary) Delete(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	n := norm(key)
	_, ok := d.data[n]
	delete(d.data, n)
	delete(d.initial, n)
	delete(d.retained, n)
	return ok
}

// Clear removes every value.
func (d *Dictionary) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	clear(d.data)
	clear(d.initial)
	clear(d.retained)
}

func (d *Dictionary) ContainsKey(key string) bool {
	_, ok := d.Peek(key)
	return ok
}

func (d *Dictionary) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()
	return len(d.data)
}

// Keys returns the stored keys in sorted order with their original casing.
func (d *Dictionary) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensure()

	keys := make([]string, 0, len(d.data))
	for _, e := range d.data {
		keys = append(keys, e.key)
	}
	sort.Strings(keys)
	return keys
}

// Save drops every value that was read and not kept, then writes the rest
// through the provider. A dictionary that was never loaded is not saved.
func (d *Dictionary) Save(ctx context.Context, w http.ResponseWriter) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		return nil
	}
	if d.provider == nil {
		return ErrNotLoaded
	}

	values := make(map[string]any, len(d.data))
	for n, e := range d.data {
		_, isInitial := d.initial[n]
		_, isRetained := d.retained[n]
		if !isInitial && !isRetained {
			delete(d.data, n)
			continue
		}
		values[e.key] = e.value
	}
	clear(d.retained)

	if err := d.provider.SaveTempData(ctx, w, d.r, values); err != nil {
		return fmt.Errorf("tempdata: save: %w", err)
	}
	return nil
}

type ctxKey struct{}

// WithDictionary returns a copy of ctx carrying d.
func WithDictionary(ctx context.Context, d *Dictionary) context.Context {
	return context.WithValue(ctx, ctxKey{}, d)
}

// FromContext returns the dictionary stored by WithDictionary, or nil.
func FromContext(ctx context.Context) *Dictionary {
	d, _ := ctx.Value(ctxKey{}).(*Dictionary)
	return d
}
