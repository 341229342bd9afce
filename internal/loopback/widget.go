// Package loopback hosts the payment provider widget on a short-lived local
// HTTP server and turns its callback into a checkout.Widget result.
package loopback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"lms-client/internal/checkout"
	"lms-client/internal/config"
	"lms-client/internal/handler"
	"lms-client/internal/model"
	"lms-client/internal/router"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Opener shows the checkout page to the user, typically in a browser.
type Opener func(ctx context.Context, pageURL string) error

// Widget implements checkout.Widget with a loopback HTTP server.
type Widget struct {
	cfg       config.CallbackConfig
	scriptURL string
	open      Opener
	logger    zerolog.Logger
}

// NewWidget creates a new loopback widget.
func NewWidget(cfg config.CallbackConfig, scriptURL string, open Opener, logger zerolog.Logger) *Widget {
	return &Widget{
		cfg:       cfg,
		scriptURL: scriptURL,
		open:      open,
		logger:    logger.With().Str("component", "loopback-widget").Logger(),
	}
}

// Open serves the widget page for req and blocks until the page reports a
// payment, the user dismisses it, or ctx is done.
func (w *Widget) Open(ctx context.Context, req checkout.WidgetRequest) (*model.ProviderPayment, error) {
	listener, err := net.Listen("tcp", w.cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	nonce := uuid.NewString()
	origin := "http://" + listener.Addr().String()
	widgetHandler := handler.NewWidgetHandler(req, nonce, w.scriptURL, w.logger)

	server := &http.Server{
		Handler:           router.New(widgetHandler, nonce, origin, w.logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)
	go func() {
		w.logger.Debug().Str("address", origin).Msg("callback server started")
		serverErrors <- server.Serve(listener)
	}()
	defer w.shutdown(server)

	pageURL := origin + "/?" + url.Values{"nonce": {nonce}}.Encode()
	if err := w.open(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("failed to open payment page: %w", err)
	}

	select {
	case outcome := <-widgetHandler.Outcomes():
		if outcome.Dismissed {
			return nil, checkout.ErrDismissed
		}
		return outcome.Payment, nil
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *Widget) shutdown(server *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.logger.Error().Err(err).Msg("failed to shutdown callback server gracefully")
		if closeErr := server.Close(); closeErr != nil {
			w.logger.Error().Err(closeErr).Msg("failed to close callback server")
		}
		return
	}
	w.logger.Debug().Msg("callback server stopped")
}
