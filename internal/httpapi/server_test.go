package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage/gormstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router http.Handler
	users  *service.UserService
}

// setupTestAPI serves the full stack over a fresh SQLite database.
func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := gormstore.Open("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.MigrateUp())

	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	jwtManager := auth.NewJWTManager("test-secret", 30*time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	services := Services{
		Auth:      service.NewAuthService(authenticator, jwtManager, store, logger),
		Users:     service.NewUserService(store, authenticator),
		Customers: service.NewCustomerService(store),
		Invoices:  service.NewInvoiceService(store),
		Payments:  service.NewPaymentService(store),
	}
	srv := NewServer(services, store, Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		AuthRateLimit:  1000,
		AuthRateBurst:  1000,
		Version:        "test",
	})

	return &testAPI{t: t, router: srv.Handler(), users: services.Users}
}

// do sends a JSON request and decodes a JSON response into out when given.
func (a *testAPI) do(method, path, token string, body any, out any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

// signup registers and logs in a user, returning the user id and token.
func (a *testAPI) signup(name, email string) (string, string) {
	a.t.Helper()

	var user struct {
		ID string `json:"id"`
	}
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": name, "email": email, "password": "password123"}, &user)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var token service.Token
	w = a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "password123"}, &token)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(a.t, "bearer", token.TokenType)

	return user.ID, token.AccessToken
}

type invoiceBody struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CustomerID  string          `json:"customer_id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsPaid      bool            `json:"is_paid"`
	Customer    *struct {
		ID string `json:"id"`
	} `json:"customer"`
	Items []struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Quantity    int             `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		Total       decimal.Decimal `json:"total"`
	} `json:"items"`
}

func TestRootHealthMetrics(t *testing.T) {
	api := setupTestAPI(t)

	var root map[string]any
	w := api.do(http.MethodGet, "/", "", nil, &root)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1", root["api"])

	var health map[string]any
	w = api.do(http.MethodGet, "/health", "", nil, &health)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", health["status"])

	w = api.do(http.MethodGet, "/metrics", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invoicer_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/customers", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	t.Run("listed origin with credentials", func(t *testing.T) {
		api := setupTestAPI(t)
		w := preflight(api.router, "http://localhost:3000")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard disables credentials", func(t *testing.T) {
		srv := NewServer(Services{}, failingPinger{}, Config{AllowedOrigins: []string{"*"}})
		w := preflight(srv.Handler(), "https://anywhere.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestAuthEndpoints(t *testing.T) {
	api := setupTestAPI(t)
	_, token := api.signup("Alice", "alice@example.com")

	t.Run("me", func(t *testing.T) {
		var me map[string]any
		w := api.do(http.MethodGet, "/api/v1/auth/me", token, nil, &me)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice@example.com", me["email"])
		assert.Equal(t, false, me["is_super_admin"])
		assert.NotContains(t, me, "password_hash")
	})

	t.Run("duplicate registration", func(t *testing.T) {
		var body middleware.ErrorResponse
		w := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "A", "email": "alice@example.com", "password": "password123"}, &body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email already registered", body.Message)
	})

	t.Run("validation failure lists fields", func(t *testing.T) {
		var body middleware.ErrorResponse
		w := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "", "email": "not-an-email", "password": "short"}, &body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, middleware.CodeInvalidRequest, body.Error)
		assert.Len(t, body.Details, 3)
	})

	t.Run("multibyte password over 72 bytes", func(t *testing.T) {
		var body middleware.ErrorResponse
		w := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Eve", "email": "eve@example.com", "password": strings.Repeat("é", 40)}, &body)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, middleware.CodeInvalidRequest, body.Error)

		w = api.do(http.MethodPut, "/api/v1/users/"+currentUserID(t, api, token), token, gin.H{"password": strings.Repeat("é", 40)}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("bad login", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrong-password"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("missing and invalid tokens", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/auth/me", "", nil, nil).Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/customers", "garbage", nil, nil).Code)
	})
}

// TestInvoiceScenario walks through registering, billing a customer and
// editing items, then checks that another user cannot read the invoice.
func TestInvoiceScenario(t *testing.T) {
	api := setupTestAPI(t)
	aliceID, alice := api.signup("Alice", "alice@example.com")
	_, bob := api.signup("Bob", "bob@example.com")

	var customer struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Type   string `json:"type"`
	}
	w := api.do(http.MethodPost, "/api/v1/customers", alice, gin.H{"name": "Acme", "email": "billing@acme.test"}, &customer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, aliceID, customer.UserID)
	assert.Equal(t, "customer", customer.Type)

	var invoice invoiceBody
	w = api.do(http.MethodPost, "/api/v1/invoices", alice, gin.H{
		"customer_id": customer.ID,
		"items": []gin.H{
			{"description": "Widget", "quantity": 2, "unit_price": "10"},
			{"description": "Gadget", "quantity": 1, "unit_price": 5},
		},
	}, &invoice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(25)), "total = %s", invoice.TotalAmount)
	require.Len(t, invoice.Items, 2)
	require.NotNil(t, invoice.Customer)
	assert.Equal(t, customer.ID, invoice.Customer.ID)

	var widgetID string
	for _, item := range invoice.Items {
		if item.Description == "Widget" {
			widgetID = item.ID
			assert.True(t, item.Total.Equal(decimal.NewFromInt(20)))
		}
	}
	w = api.do(http.MethodDelete, "/api/v1/invoices/"+invoice.ID+"/items/"+widgetID, alice, nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	var got invoiceBody
	w = api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, alice, nil, &got)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(5)), "total = %s", got.TotalAmount)
	assert.Len(t, got.Items, 1)

	var denied middleware.ErrorResponse
	w = api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, bob, nil, &denied)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.CodeForbidden, denied.Error)
	assert.NotContains(t, w.Body.String(), customer.ID)
}

func TestInvoiceItemsAndTotals(t *testing.T) {
	api := setupTestAPI(t)
	_, alice := api.signup("Alice", "alice@example.com")

	var customer struct {
		ID string `json:"id"`
	}
	api.do(http.MethodPost, "/api/v1/customers", alice, gin.H{"name": "Acme", "email": "billing@acme.test"}, &customer)

	var invoice invoiceBody
	w := api.do(http.MethodPost, "/api/v1/invoices", alice, gin.H{"customer_id": customer.ID}, &invoice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, invoice.TotalAmount.IsZero())
	assert.NotNil(t, invoice.Items, "items serialize as an empty list")

	t.Run("total cannot be posted", func(t *testing.T) {
		w := api.do(http.MethodPut, "/api/v1/invoices/"+invoice.ID, alice, gin.H{"total_amount": "999"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var item struct {
		ID    string          `json:"id"`
		Total decimal.Decimal `json:"total"`
	}
	w = api.do(http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/items", alice, gin.H{"description": "Hours", "quantity": 3, "unit_price": "12.50"}, &item)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, item.Total.Equal(decimal.RequireFromString("37.50")))

	w = api.do(http.MethodPut, "/api/v1/invoices/"+invoice.ID+"/items/"+item.ID, alice, gin.H{"quantity": 2}, &item)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, item.Total.Equal(decimal.NewFromInt(25)))

	var items []map[string]any
	w = api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID+"/items", alice, nil, &items)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, items, 1)

	t.Run("quantity defaults to one", func(t *testing.T) {
		var extra struct {
			ID       string          `json:"id"`
			Quantity int             `json:"quantity"`
			Total    decimal.Decimal `json:"total"`
		}
		w := api.do(http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/items", alice, gin.H{"description": "Hours", "unit_price": "10"}, &extra)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, 1, extra.Quantity)
		assert.True(t, extra.Total.Equal(decimal.NewFromInt(10)))

		w = api.do(http.MethodDelete, "/api/v1/invoices/"+invoice.ID+"/items/"+extra.ID, alice, nil, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("values beyond the stored range", func(t *testing.T) {
		path := "/api/v1/invoices/" + invoice.ID + "/items"
		w := api.do(http.MethodPost, path, alice, gin.H{"description": "Many", "quantity": 3000000000, "unit_price": "1"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		w = api.do(http.MethodPost, path, alice, gin.H{"description": "Dear", "quantity": 1, "unit_price": "10000000000000"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		// Each field fits but the line total does not.
		w = api.do(http.MethodPost, path, alice, gin.H{"description": "Both", "quantity": 1000, "unit_price": "999999999999"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("invalid item", func(t *testing.T) {
		var body middleware.ErrorResponse
		w := api.do(http.MethodPost, "/api/v1/invoices/"+invoice.ID+"/items", alice, gin.H{"description": "Bad", "quantity": 0, "unit_price": "-1"}, &body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, body.Details, 2)
	})

	t.Run("deleting the last item zeroes the total", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/v1/invoices/"+invoice.ID+"/items/"+item.ID, alice, nil, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		var got invoiceBody
		api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, alice, nil, &got)
		assert.True(t, got.TotalAmount.IsZero())
		assert.Empty(t, got.Items)
	})

	t.Run("unknown ids", func(t *testing.T) {
		var body middleware.ErrorResponse
		w := api.do(http.MethodGet, "/api/v1/invoices/nonexistent-id", alice, nil, &body)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "invoice not found", body.Message)

		w = api.do(http.MethodDelete, "/api/v1/invoices/"+invoice.ID+"/items/nonexistent-id", alice, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("customer with invoices conflicts", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/v1/customers/"+customer.ID, alice, nil, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = api.do(http.MethodDelete, "/api/v1/invoices/"+invoice.ID, alice, nil, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = api.do(http.MethodDelete, "/api/v1/customers/"+customer.ID, alice, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestPaymentsSettleInvoices(t *testing.T) {
	api := setupTestAPI(t)
	_, alice := api.signup("Alice", "alice@example.com")
	_, bob := api.signup("Bob", "bob@example.com")

	var customer struct {
		ID string `json:"id"`
	}
	api.do(http.MethodPost, "/api/v1/customers", alice, gin.H{"name": "Acme", "email": "billing@acme.test"}, &customer)

	var invoice invoiceBody
	api.do(http.MethodPost, "/api/v1/invoices", alice, gin.H{
		"customer_id": customer.ID,
		"status":      "sent",
		"items":       []gin.H{{"description": "Retainer", "quantity": 1, "unit_price": "80"}},
	}, &invoice)

	var payment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	w := api.do(http.MethodPost, "/api/v1/payments", alice, gin.H{
		"invoice_id": invoice.ID,
		"amount":     "80",
		"method":     "bank_transfer",
		"status":     "completed",
		"date":       "2024-05-01T10:00:00Z",
	}, &payment)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got invoiceBody
	api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, alice, nil, &got)
	assert.True(t, got.IsPaid)
	assert.Equal(t, "paid", got.Status)

	t.Run("filters", func(t *testing.T) {
		var payments []map[string]any
		w := api.do(http.MethodGet, "/api/v1/payments?invoice_id="+invoice.ID, alice, nil, &payments)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, payments, 1)

		var invoices []map[string]any
		w = api.do(http.MethodGet, "/api/v1/invoices?status=paid&limit=10", alice, nil, &invoices)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, invoices, 1)

		w = api.do(http.MethodGet, "/api/v1/invoices?limit=1000", alice, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("other users", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/payments/"+payment.ID, bob, nil, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = api.do(http.MethodPost, "/api/v1/payments", bob, gin.H{"invoice_id": invoice.ID, "amount": "1", "method": "cash"}, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("refund reopens the invoice", func(t *testing.T) {
		w := api.do(http.MethodPut, "/api/v1/payments/"+payment.ID, alice, gin.H{"status": "refunded"}, &payment)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "refunded", payment.Status)

		var got invoiceBody
		api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, alice, nil, &got)
		assert.False(t, got.IsPaid)
		assert.Equal(t, "sent", got.Status)
	})

	t.Run("invalid payment", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/payments", alice, gin.H{"invoice_id": invoice.ID, "amount": "0", "method": "barter"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// Rounds to zero cents.
		w = api.do(http.MethodPost, "/api/v1/payments", alice, gin.H{"invoice_id": invoice.ID, "amount": "0.001", "method": "cash"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		w = api.do(http.MethodPost, "/api/v1/payments", alice, gin.H{"invoice_id": invoice.ID, "amount": "1000000000000", "method": "cash"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		w = api.do(http.MethodPut, "/api/v1/payments/"+payment.ID, alice, gin.H{"amount": "0.004"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("delete", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/v1/payments/"+payment.ID, alice, nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		w = api.do(http.MethodGet, "/api/v1/payments/"+payment.ID, alice, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSuperAdminAccess(t *testing.T) {
	api := setupTestAPI(t)
	aliceID, alice := api.signup("Alice", "alice@example.com")
	_, _ = api.signup("Root", "root@example.com")

	_, err := api.users.SetSuperAdmin(context.Background(), "root@example.com", true)
	require.NoError(t, err)
	var token service.Token
	api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "root@example.com", "password": "password123"}, &token)
	admin := token.AccessToken

	var customer struct {
		ID string `json:"id"`
	}
	api.do(http.MethodPost, "/api/v1/customers", alice, gin.H{"name": "Acme", "email": "billing@acme.test"}, &customer)
	var invoice invoiceBody
	api.do(http.MethodPost, "/api/v1/invoices", alice, gin.H{"customer_id": customer.ID}, &invoice)

	t.Run("admin reads and edits any record", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/customers/"+customer.ID, admin, nil, nil).Code)
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, admin, nil, nil).Code)

		w := api.do(http.MethodPut, "/api/v1/invoices/"+invoice.ID, admin, gin.H{"status": "sent"}, nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var all []map[string]any
		api.do(http.MethodGet, "/api/v1/invoices", admin, nil, &all)
		assert.Len(t, all, 1)
	})

	t.Run("user administration", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/users", alice, nil, nil).Code)

		var users []map[string]any
		w := api.do(http.MethodGet, "/api/v1/users", admin, nil, &users)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, users, 2)

		w = api.do(http.MethodPut, "/api/v1/users/"+aliceID, alice, gin.H{"is_super_admin": true}, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = api.do(http.MethodPut, "/api/v1/users/"+aliceID, alice, gin.H{"name": "Alice Liddell"}, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/v1/users/"+aliceID, alice, nil, nil).Code)
		assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/v1/users/"+aliceID, admin, nil, nil).Code)

		// Alice's records went with her and her token no longer works.
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/invoices/"+invoice.ID, admin, nil, nil).Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/auth/me", alice, nil, nil).Code)
	})
}

func TestAuthRateLimit(t *testing.T) {
	api := setupTestAPI(t)

	store, err := gormstore.Open("sqlite://" + filepath.Join(t.TempDir(), "limited.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.MigrateUp())

	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	srv := NewServer(Services{
		Auth: service.NewAuthService(authenticator, auth.NewJWTManager("s", time.Minute), store, slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, store, Config{AuthRateLimit: 0.001, AuthRateBurst: 1})
	api.router = srv.Handler()

	creds := gin.H{"email": "nobody@example.com", "password": "password123"}
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/v1/auth/login", "", creds, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, api.do(http.MethodPost, "/api/v1/auth/login", "", creds, nil).Code)
}

// failingPinger reports the database as down.
type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthUnavailable(t *testing.T) {
	srv := NewServer(Services{}, failingPinger{}, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// currentUserID returns the id of the token's user.
func currentUserID(t *testing.T, api *testAPI, token string) string {
	t.Helper()
	var user struct {
		ID string `json:"id"`
	}
	w := api.do(http.MethodGet, "/api/v1/auth/me", token, nil, &user)
	require.Equal(t, http.StatusOK, w.Code)
	return user.ID
}
