package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/httpapi"
	"github.com/mmynk/invoicer/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		slog.Info("Storage initialized", "dialect", store.Dialect())

		if cfg.AutoMigrate {
			if err := store.MigrateUp(); err != nil {
				return err
			}
			slog.Info("Migrations applied")
		}

		sqlDB, err := store.DB().DB()
		if err != nil {
			return err
		}

		gin.SetMode(ginMode(cfg.LogLevel))

		authenticator := auth.NewPasswordAuthenticator(store)
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
		services := httpapi.Services{
			Auth:      service.NewAuthService(authenticator, jwtManager, store, slog.Default()),
			Users:     service.NewUserService(store, authenticator),
			Customers: service.NewCustomerService(store),
			Invoices:  service.NewInvoiceService(store),
			Payments:  service.NewPaymentService(store),
		}

		srv := httpapi.NewServer(services, store, httpapi.Config{
			AllowedOrigins: cfg.AllowedOrigins,
			AuthRateLimit:  cfg.AuthRateLimit,
			AuthRateBurst:  cfg.AuthRateBurst,
			Version:        version,
		}, collectors.NewDBStatsCollector(sqlDB, "invoicer"))

		// h2c lets clients speak HTTP/2 without TLS behind a proxy.
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           h2c.NewHandler(srv.Handler(), &http2.Server{}),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Server starting", "address", cfg.HTTPAddr, "version", version)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("Server stopped")
		return nil
	},
}

// ginMode keeps gin's route dump and debug warnings for debug logging only.
func ginMode(logLevel string) string {
	if logLevel == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
