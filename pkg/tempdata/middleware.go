package tempdata

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/modelbind/pkg/logger"
)

// Middleware puts a Dictionary for provider into every request context and
// saves it before the response headers are written.
func Middleware(provider Provider, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := New(r, provider, WithLogger(log))
			r = r.WithContext(WithDictionary(r.Context(), d))
			d.r = r

			sw := &saveWriter{ResponseWriter: w}
			sw.save = func() {
				if err := d.Save(r.Context(), w); err != nil {
					log.ErrorContext(r.Context(), "temp data save failed",
						logger.Component("tempdata"),
						logger.Error(err),
					)
				}
			}

			next.ServeHTTP(sw, r)
			sw.flush()
		})
	}
}

// saveWriter runs save once, right before the first byte of the response.
type saveWriter struct {
	http.ResponseWriter
	once sync.Once
	save func()
}

func (w *saveWriter) flush() { w.once.Do(w.save) }

func (w *saveWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *saveWriter) Flush() {
	w.flush()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *saveWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
