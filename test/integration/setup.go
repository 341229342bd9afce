package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lms-client/internal/database"
	"lms-client/internal/model"
	"lms-client/internal/repository"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestDB represents a Postgres-backed state store.
type TestDB struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
	Store     *repository.Store
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and opens the state store on it.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := database.Open(ctx, connStr, database.DefaultPoolConfig(connStr), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open state store: %v", err)
	}

	store, err := repository.NewStore(ctx, db)
	if err != nil {
		t.Fatalf("failed to migrate state store: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		DB:        db,
		Store:     store,
		ConnStr:   connStr,
	}
}

// CleanupDB cleans all data from the state tables.
func CleanupDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{"sessions", "watched_lessons", "review_prompts"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// Backend is an in-memory LMS API covering login, catalog, promo and payments.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	orders   []model.CreateOrderRequest
	verified []model.VerifyRequest
	emails   int
	enrolled bool
}

// NewBackend starts the fake API; its base URL already includes /api.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, model.LoginResponse{
			Token: "it-token",
			User:  model.User{ID: "u1", Name: "Asha", Email: req.Email, Role: model.RoleStudent, IsActive: true},
		})
	})
	mux.HandleFunc("GET /api/courses/c1", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, model.Course{ID: "c1", Title: "Go for Beginners", Price: 1000, IsEnrolled: b.enrolled})
	})
	mux.HandleFunc("POST /api/promo/validate", func(w http.ResponseWriter, r *http.Request) {
		var req model.PromoRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "SAVE20" {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Message: "Invalid promo code"})
			return
		}
		writeJSON(w, http.StatusOK, model.PromoResult{Code: "SAVE20", Discount: 20, DiscountType: model.DiscountPercentage})
	})
	mux.HandleFunc("POST /api/payments/create-order", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer it-token" {
			writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Message: "Not authorized"})
			return
		}
		var req model.CreateOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.orders = append(b.orders, req)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, model.PaymentOrder{OrderID: "order_1", Amount: req.Amount, Currency: "INR", Key: "rzp_test"})
	})
	mux.HandleFunc("POST /api/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		var req model.VerifyRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.verified = append(b.verified, req)
		b.enrolled = req.Signature == "sig_ok"
		ok := b.enrolled
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusOK, model.VerifyResponse{Success: false, Message: "Signature mismatch"})
			return
		}
		writeJSON(w, http.StatusOK, model.VerifyResponse{Success: true})
	})
	mux.HandleFunc("POST /api/email/enrollment", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.emails++
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API base URL.
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// Orders returns the create-order requests received so far.
func (b *Backend) Orders() []model.CreateOrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.CreateOrderRequest(nil), b.orders...)
}

// Verified returns the verify requests received so far.
func (b *Backend) Verified() []model.VerifyRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.VerifyRequest(nil), b.verified...)
}

// Emails returns how many enrollment emails were requested.
func (b *Backend) Emails() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.emails
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
