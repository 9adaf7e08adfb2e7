// Package httpapi exposes the invoicing services as a JSON REST API on gin.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
)

// APIPrefix is the path every versioned route lives under.
const APIPrefix = "/api/v1"

// Services bundles the use cases the API serves.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Customers *service.CustomerService
	Invoices  *service.InvoiceService
	Payments  *service.PaymentService
}

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Config tunes the HTTP surface.
type Config struct {
	// AllowedOrigins lists the CORS origins; "*" allows any origin without credentials.
	AllowedOrigins []string

	// AuthRateLimit and AuthRateBurst bound register/login attempts per client IP.
	AuthRateLimit float64
	AuthRateBurst int

	Version string
}

// Server represents the API server.
type Server struct {
	router   *gin.Engine
	services Services
	health   HealthChecker
	registry *prometheus.Registry
	cfg      Config
}

// NewServer builds the router. Extra collectors, such as a database stats
// collector, are exposed on /metrics next to the HTTP and runtime metrics.
func NewServer(services Services, health HealthChecker, cfg Config, extra ...prometheus.Collector) *Server {
	setupValidator()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(extra...)

	s := &Server{
		router:   gin.New(),
		services: services,
		health:   health,
		registry: registry,
		cfg:      cfg,
	}

	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("Panic recovered", "route", c.FullPath(), "panic", recovered)
		middleware.Abort(c, http.StatusInternalServerError, middleware.CodeInternal, "internal server error", nil)
	}))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.NewMetrics(registry).Handler())
	if corsHandler := newCORS(cfg.AllowedOrigins); corsHandler != nil {
		s.router.Use(corsHandler)
	}

	s.registerRoutes()
	return s
}

// Router returns the gin engine, for serving and for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Handler returns the server as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func newCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.root)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})))

	api := s.router.Group(APIPrefix)

	authLimiter := middleware.NewRateLimiter(s.cfg.AuthRateLimit, s.cfg.AuthRateBurst)
	requireAuth := middleware.RequireAuth(s.services.Auth)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authLimiter.Handler(), s.register)
		authGroup.POST("/login", authLimiter.Handler(), s.login)
		authGroup.GET("/me", requireAuth, s.me)
	}

	users := api.Group("/users", requireAuth)
	{
		users.GET("", middleware.RequireSuperAdmin(), s.listUsers)
		users.GET("/:id", s.getUser)
		users.PUT("/:id", s.updateUser)
		users.DELETE("/:id", middleware.RequireSuperAdmin(), s.deleteUser)
	}

	customers := api.Group("/customers", requireAuth)
	{
		customers.POST("", s.createCustomer)
		customers.GET("", s.listCustomers)
		customers.GET("/:id", s.getCustomer)
		customers.PUT("/:id", s.updateCustomer)
		customers.DELETE("/:id", s.deleteCustomer)
	}

	invoices := api.Group("/invoices", requireAuth)
	{
		invoices.POST("", s.createInvoice)
		invoices.GET("", s.listInvoices)
		invoices.GET("/:id", s.getInvoice)
		invoices.PUT("/:id", s.updateInvoice)
		invoices.DELETE("/:id", s.deleteInvoice)

		invoices.POST("/:id/items", s.addInvoiceItem)
		invoices.GET("/:id/items", s.listInvoiceItems)
		invoices.PUT("/:id/items/:item_id", s.updateInvoiceItem)
		invoices.DELETE("/:id/items/:item_id", s.deleteInvoiceItem)
	}

	payments := api.Group("/payments", requireAuth)
	{
		payments.POST("", s.createPayment)
		payments.GET("", s.listPayments)
		payments.GET("/:id", s.getPayment)
		payments.PUT("/:id", s.updatePayment)
		payments.DELETE("/:id", s.deletePayment)
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Invoice Management API",
		"version": s.cfg.Version,
		"api":     APIPrefix,
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.health.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
}
