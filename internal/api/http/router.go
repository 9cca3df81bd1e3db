package http

import (
	"context"
	"net/http"
	"time"

	"company-invites/internal/logger"

	"github.com/gorilla/mux"
)

const allowedHeaders = "apikey, X-Client-Info, Content-Type, Authorization, Accept, Accept-Language, X-Authorization"

// Pinger reports whether the backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter registers the invite endpoint, its legacy alias and /healthz.
// Middleware wraps the whole router so unmatched paths and methods are
// logged and answered with CORS headers too.
func NewRouter(invites *InviteHandler, db Pinger) http.Handler {
	router := mux.NewRouter()

	for _, path := range []string{"/api/v1/invites", "/functions/v1/send-email-invites"} {
		router.HandleFunc(path, invites.HandlePreflight).Methods(http.MethodOptions)
		router.HandleFunc(path, invites.HandleInvite).Methods(http.MethodPost)
	}
	router.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet)

	return loggingMiddleware(corsMiddleware(router))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				logger.Warn("Health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
