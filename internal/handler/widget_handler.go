package handler

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"sync/atomic"

	"lms-client/internal/checkout"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
)

//go:embed templates/checkout.html
var templates embed.FS

var checkoutPage = template.Must(template.ParseFS(templates, "templates/checkout.html"))

// Outcome is what the provider widget reported.
type Outcome struct {
	Payment   *model.ProviderPayment
	Dismissed bool
}

// pageData feeds templates/checkout.html.
type pageData struct {
	Title     string
	ScriptURL string
	Nonce     string
	Options   checkout.WidgetRequest
}

// WidgetHandler serves the provider widget page and receives its callbacks.
// Exactly one outcome is delivered per handler.
type WidgetHandler struct {
	request   checkout.WidgetRequest
	nonce     string
	scriptURL string
	outcomes  chan Outcome
	delivered atomic.Bool
	logger    zerolog.Logger
}

// NewWidgetHandler creates a new widget handler for one checkout.
func NewWidgetHandler(req checkout.WidgetRequest, nonce, scriptURL string, logger zerolog.Logger) *WidgetHandler {
	return &WidgetHandler{
		request:   req,
		nonce:     nonce,
		scriptURL: scriptURL,
		outcomes:  make(chan Outcome, 1),
		logger:    logger.With().Str("handler", "widget").Str("order_id", req.OrderID).Logger(),
	}
}

// Outcomes yields the single widget outcome.
func (h *WidgetHandler) Outcomes() <-chan Outcome {
	return h.outcomes
}

// Page handles GET / requests.
func (h *WidgetHandler) Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found", h.logger)
		return
	}

	title := h.request.Name
	if h.request.Description != "" {
		title = h.request.Description + " | " + h.request.Name
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := checkoutPage.Execute(w, pageData{
		Title:     title,
		ScriptURL: h.scriptURL,
		Nonce:     h.nonce,
		Options:   h.request,
	}); err != nil {
		h.logger.Error().Err(err).Msg("failed to render checkout page")
	}
}

// Callback handles POST /callback requests carrying the signed payment.
func (h *WidgetHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var payment model.ProviderPayment
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&payment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if payment.OrderID == "" || payment.PaymentID == "" || payment.Signature == "" {
		writeError(w, http.StatusBadRequest, "payment response is incomplete", h.logger)
		return
	}

	if !h.deliver(Outcome{Payment: &payment}) {
		writeError(w, http.StatusConflict, "outcome already received", h.logger)
		return
	}

	h.logger.Info().Str("payment_id", payment.PaymentID).Msg("payment callback received")
	writeJSON(w, http.StatusOK, StatusResponse{Status: "received"})
}

// Dismiss handles POST /dismiss requests sent when the widget is closed.
func (h *WidgetHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	if !h.deliver(Outcome{Dismissed: true}) {
		writeError(w, http.StatusConflict, "outcome already received", h.logger)
		return
	}

	h.logger.Info().Msg("payment widget dismissed")
	writeJSON(w, http.StatusOK, StatusResponse{Status: "dismissed"})
}

func (h *WidgetHandler) deliver(o Outcome) bool {
	if !h.delivered.CompareAndSwap(false, true) {
		return false
	}
	h.outcomes <- o
	return true
}
