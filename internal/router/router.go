package router

import (
	"net/http"

	"lms-client/internal/handler"
	"lms-client/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the loopback router that hosts the payment widget for one
// checkout. origin is the server's own http://host:port.
func New(
	widgetHandler *handler.WidgetHandler,
	nonce string,
	origin string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/callback", widgetHandler.Callback)
	mux.HandleFunc("/dismiss", widgetHandler.Dismiss)
	mux.HandleFunc("/", widgetHandler.Page)

	// Apply middleware in order: Recovery -> Logging -> CORS -> NonceAuth
	var h http.Handler = mux
	h = middleware.NonceAuth(nonce, logger)(h)
	h = middleware.CORS(origin)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
