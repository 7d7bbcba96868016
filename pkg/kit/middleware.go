package kit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// Logging writes one access log line per request. fields only see context
// values set by middleware registered before Logging.
func Logging(log *zap.Logger, fields ...func(*http.Request) zap.Field) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			all := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			}
			for _, f := range fields {
				all = append(all, f(r))
			}

			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("request", all...)
			case ww.Status() >= http.StatusBadRequest:
				log.Warn("request", all...)
			default:
				log.Info("request", all...)
			}
		})
	}
}
