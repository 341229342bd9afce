package loopback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"lms-client/internal/checkout"
	"lms-client/internal/config"
	"lms-client/internal/middleware"
	"lms-client/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.CallbackConfig {
	return config.CallbackConfig{Host: "127.0.0.1", Port: 0}
}

func testRequest() checkout.WidgetRequest {
	return checkout.WidgetRequest{
		Key:      "rzp_test_key",
		OrderID:  "order_1",
		Amount:   80000,
		Currency: "INR",
		Name:     "Ryma Academy",
	}
}

// browser simulates the page: it loads it, then posts to path with the
// nonce taken from the page URL.
func browser(t *testing.T, path, body string) Opener {
	return func(ctx context.Context, pageURL string) error {
		u, err := url.Parse(pageURL)
		require.NoError(t, err)
		nonce := u.Query().Get("nonce")
		require.NotEmpty(t, nonce)

		resp, err := http.Get(pageURL)
		require.NoError(t, err)
		page, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, string(page), `"order_id":"order_1"`)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Scheme+"://"+u.Host+path, bytes.NewBufferString(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.NonceHeader, nonce)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return nil
	}
}

func TestWidget_Open_Payment(t *testing.T) {
	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`
	w := NewWidget(testConfig(), "https://checkout.example.com/v1/checkout.js", browser(t, "/callback", body), zerolog.Nop())

	payment, err := w.Open(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, &model.ProviderPayment{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}, payment)
}

func TestWidget_Open_Dismissed(t *testing.T) {
	w := NewWidget(testConfig(), "https://checkout.example.com/v1/checkout.js", browser(t, "/dismiss", ""), zerolog.Nop())

	payment, err := w.Open(context.Background(), testRequest())

	assert.Nil(t, payment)
	assert.ErrorIs(t, err, checkout.ErrDismissed)
}

func TestWidget_Open_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	noop := func(ctx context.Context, pageURL string) error { return nil }
	w := NewWidget(testConfig(), "https://checkout.example.com/v1/checkout.js", noop, zerolog.Nop())

	_, err := w.Open(ctx, testRequest())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWidget_Open_OpenerFails(t *testing.T) {
	failing := func(ctx context.Context, pageURL string) error { return errors.New("no display") }
	w := NewWidget(testConfig(), "https://checkout.example.com/v1/checkout.js", failing, zerolog.Nop())

	_, err := w.Open(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no display")
}

func TestWidget_Open_RejectsForgedNonce(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	forged := func(ctx context.Context, pageURL string) error {
		u, err := url.Parse(pageURL)
		require.NoError(t, err)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Scheme+"://"+u.Host+"/dismiss", nil)
		require.NoError(t, err)
		req.Header.Set(middleware.NonceHeader, "forged")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		return nil
	}
	w := NewWidget(testConfig(), "https://checkout.example.com/v1/checkout.js", forged, zerolog.Nop())

	_, err := w.Open(ctx, testRequest())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWidget_Open_ListenFails(t *testing.T) {
	w := NewWidget(config.CallbackConfig{Host: "256.0.0.1", Port: 0}, "", browser(t, "/dismiss", ""), zerolog.Nop())

	_, err := w.Open(context.Background(), testRequest())

	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to start callback server"))
}

func TestBrowserOpener_PrintsLink(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := BrowserOpener(&out)(ctx, "http://127.0.0.1:1/?nonce=abc")

	require.NoError(t, err)
	assert.Equal(t, "Complete your payment in the browser: http://127.0.0.1:1/?nonce=abc\n", out.String())
}
