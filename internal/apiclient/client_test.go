package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lms-client/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.invalidated++
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL + "/api/", Timeout: 2 * time.Second}, tokens, zerolog.Nop())
}

func TestClient_Get_SendsDefaultHeaders(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"c1","title":"Go Basics","price":999}`))
	}, &fakeTokens{token: "tok"})

	var course model.Course
	err := client.Get(context.Background(), "/courses/c1", &course)

	require.NoError(t, err)
	assert.Equal(t, "c1", course.ID)
	assert.Equal(t, 999.0, course.Price)

	require.NotNil(t, got)
	assert.Equal(t, "/api/courses/c1", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	_, err = uuid.Parse(got.Header.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestClient_Post_EncodesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req model.PromoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SAVE20", req.Code)
		assert.Equal(t, "c1", req.CourseID)
		w.Write([]byte(`{"code":"SAVE20","discount":20,"discountType":"percentage"}`))
	}, nil)

	var result model.PromoResult
	err := client.Post(context.Background(), "/promo/validate", model.PromoRequest{Code: "SAVE20", CourseID: "c1"}, &result)

	require.NoError(t, err)
	assert.Equal(t, 20.0, result.Discount)
}

func TestClient_AnonymousRequestHasNoAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, &fakeTokens{})

	assert.NoError(t, client.Delete(context.Background(), "/admin/users/u1", nil))
}

func TestClient_EmptyBodyWithOut(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, nil)

	var out map[string]any
	assert.NoError(t, client.Put(context.Background(), "/admin/users/u1", map[string]string{"role": "admin"}, &out))
	assert.Nil(t, out)
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantClient  bool
		wantIs      error
	}{
		{"Message field", http.StatusBadRequest, `{"message":"Invalid promo code"}`, "Invalid promo code", true, nil},
		{"Error field", http.StatusConflict, `{"error":"Coupon code already exists"}`, "Coupon code already exists", true, nil},
		{"Non JSON body", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway", false, nil},
		{"Not found", http.StatusNotFound, ``, "Not Found", true, model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			err := client.Get(context.Background(), "/x", nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Equal(t, tt.wantClient, apiErr.IsClientError())
			assert.Equal(t, tt.wantClient, IsClientError(err))
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestClient_UnauthorizedInvalidatesSession(t *testing.T) {
	tokens := &fakeTokens{token: "stale"}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"jwt expired"}`))
	}, tokens)

	err := client.Get(context.Background(), "/enrollments/my", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnauthorised)
	assert.Equal(t, "Session expired, please log in again", err.Error())
	assert.Equal(t, 1, tokens.invalidated)
	assert.Empty(t, tokens.Token())
}

func TestClient_UnauthorizedLoginKeepsServerMessage(t *testing.T) {
	tokens := &fakeTokens{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	}, tokens)

	err := client.Post(context.Background(), "/auth/login", model.LoginRequest{Email: "a@b.c", Password: "x"}, nil)

	assert.ErrorIs(t, err, model.ErrUnauthorised)
	assert.Equal(t, "Invalid email or password", err.Error())
}

func TestClient_Download(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 certificate"))
	}, nil)

	body, contentType, err := client.Download(context.Background(), "/certificates/CERT-1/download")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "%PDF-1.7 certificate", string(data))
}

func TestClient_Upload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(data))
		w.Write([]byte(`{"url":"https://cdn/x.png"}`))
	}, nil)

	var out struct {
		URL string `json:"url"`
	}
	err := client.Upload(context.Background(), "/upload/image", strings.NewReader("payload"), "multipart/form-data; boundary=x", &out)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", out.URL)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, nil, zerolog.Nop())

	err := client.Get(context.Background(), "/slow", nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_URL(t *testing.T) {
	client := New(Config{BaseURL: "https://api.example.com/api/"}, nil, zerolog.Nop())

	assert.Equal(t, "https://api.example.com/api", client.BaseURL())
	assert.Equal(t, "https://api.example.com/api/courses", client.URL("courses"))
	assert.Equal(t, "https://api.example.com/api/courses", client.URL("/courses"))
}
