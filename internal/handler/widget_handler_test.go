package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms-client/internal/checkout"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNonce = "nonce-123"

func testWidgetRequest() checkout.WidgetRequest {
	return checkout.WidgetRequest{
		Key:         "rzp_test_key",
		OrderID:     "order_1",
		Amount:      80000,
		Currency:    "INR",
		Name:        "Ryma Academy",
		Description: "Go for Beginners",
		Prefill:     checkout.Prefill{Name: "Asha", Email: "asha@example.com"},
	}
}

func newTestWidgetHandler() *WidgetHandler {
	return NewWidgetHandler(testWidgetRequest(), testNonce, "https://checkout.example.com/v1/checkout.js", zerolog.Nop())
}

func TestWidgetHandler_Page(t *testing.T) {
	h := newTestWidgetHandler()

	req := httptest.NewRequest(http.MethodGet, "/?nonce="+testNonce, nil)
	w := httptest.NewRecorder()
	h.Page(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `<script src="https://checkout.example.com/v1/checkout.js">`)
	assert.Contains(t, body, `"order_id":"order_1"`)
	assert.Contains(t, body, `"amount":80000`)
	assert.Contains(t, body, `"key":"rzp_test_key"`)
	assert.Contains(t, body, `var nonce = "nonce-123";`)
	assert.Contains(t, body, "<title>Go for Beginners | Ryma Academy</title>")
}

func TestWidgetHandler_PageEscapesDescription(t *testing.T) {
	wr := testWidgetRequest()
	wr.Description = `</script><script>alert(1)</script>`
	h := NewWidgetHandler(wr, testNonce, "https://checkout.example.com/v1/checkout.js", zerolog.Nop())

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")
}

func TestWidgetHandler_PageRoutes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "Wrong method", method: http.MethodPost, path: "/", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Unknown path", method: http.MethodGet, path: "/favicon.ico", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestWidgetHandler()
			w := httptest.NewRecorder()

			h.Page(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestWidgetHandler_Callback(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectOutcome  bool
	}{
		{
			name:           "Success",
			method:         http.MethodPost,
			body:           `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`,
			expectedStatus: http.StatusOK,
			expectOutcome:  true,
		},
		{
			name:           "Incomplete payment",
			method:         http.MethodPost,
			body:           `{"razorpay_order_id":"order_1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Wrong method",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestWidgetHandler()

			req := httptest.NewRequest(tt.method, "/callback", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Callback(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectOutcome {
				assert.Empty(t, h.Outcomes())
				return
			}

			require.Len(t, h.Outcomes(), 1)
			outcome := <-h.Outcomes()
			assert.False(t, outcome.Dismissed)
			assert.Equal(t, &model.ProviderPayment{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}, outcome.Payment)

			var resp StatusResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "received", resp.Status)
		})
	}
}

func TestWidgetHandler_Dismiss(t *testing.T) {
	h := newTestWidgetHandler()

	w := httptest.NewRecorder()
	h.Dismiss(w, httptest.NewRequest(http.MethodPost, "/dismiss", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	outcome := <-h.Outcomes()
	assert.True(t, outcome.Dismissed)
	assert.Nil(t, outcome.Payment)
}

func TestWidgetHandler_OneOutcomePerCheckout(t *testing.T) {
	h := newTestWidgetHandler()

	w := httptest.NewRecorder()
	h.Dismiss(w, httptest.NewRequest(http.MethodPost, "/dismiss", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`
	w = httptest.NewRecorder()
	h.Callback(w, httptest.NewRequest(http.MethodPost, "/callback", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, h.Outcomes(), 1)
}
