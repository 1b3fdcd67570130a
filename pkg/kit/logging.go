package kit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewLogger builds the service-wide zap logger. LOG_MODE=dev at startup
// switches to the human-readable development config.
func NewLogger(service string, dev bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.InitialFields = map[string]any{"service": service}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// RequestLogging emits one structured line per request.
func RequestLogging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
