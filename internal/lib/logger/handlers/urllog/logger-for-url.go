package urllog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// CustomLoggerMiddleware пишет строку на каждый входящий запрос.
// К методу и URL добавляется request_id, проставленный middleware.RequestID,
// чтобы записи обработчиков можно было связать с запросом.
func CustomLoggerMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Info("request received",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			next.ServeHTTP(w, r)
		})
	}
}
