package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoPolymarket/kylingate/internal/config"
	"github.com/GoPolymarket/kylingate/internal/handler"
	"github.com/GoPolymarket/kylingate/internal/kylin"
	"github.com/GoPolymarket/kylingate/internal/middleware"
	"github.com/GoPolymarket/kylingate/internal/pkg/logger"
	"github.com/GoPolymarket/kylingate/internal/repository"
	"github.com/GoPolymarket/kylingate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "kylingate",
		Short:        "Signing proxy for the Kylin market data API",
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// 0. Initialize Logger
	logger.Init("info")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("⚠️ Failed to read .env", "error", err)
	}

	// 1. Load Configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return err
	}
	logger.SetLevel(cfg.Log.Level)

	// 2. Upstream Client
	client, err := kylin.NewClient(cfg.Kylin.ApiKey, cfg.Kylin.ApiSecret,
		kylin.WithBaseURL(cfg.Kylin.BaseURL),
		kylin.WithTimeout(cfg.Kylin.Timeout()),
		kylin.WithDebugSigning(cfg.Kylin.DebugSigning),
	)
	if err != nil {
		logger.Error("Failed to initialize kylin client", "error", err)
		return err
	}
	defer client.Close()

	// 3. Audit Persistence (optional)
	var auditor service.Auditor
	if cfg.Audit.Enabled {
		sink, err := repository.NewAuditSink(cmd.Context(), cfg.Audit)
		if err != nil {
			logger.Error("⚠️ Failed to initialize audit sink, audit disabled", "sink", cfg.Audit.Sink, "error", err)
		} else {
			auditSvc := service.NewAuditService(sink, cfg.Audit.Timeout())
			defer auditSvc.Close()
			auditor = auditSvc
			logger.Info("✅ Audit enabled", "sink", sink.Name())
		}
	}

	// 4. Dispatcher & Handlers
	dispatcher := service.NewDispatcher(client, client.BaseURL(), auditor)
	rpcHandler := handler.NewRPCHandler(dispatcher)

	// 5. Setup Router
	if logger.ParseLevel(cfg.Log.Level) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter(rpcHandler, handler.RouterOptions{
		Auth:    cfg.Auth,
		Metrics: cfg.Metrics,
		Limiter: middleware.NewLimiter(cfg.RateLimit.QPS, cfg.RateLimit.Burst),
	})

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 KylinGate started", "port", cfg.Server.Port, "upstream", client.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err, ok := <-serveErr:
		if ok {
			logger.Error("Server listen failed", "error", err)
			return fmt.Errorf("listen: %w", err)
		}
	}
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	logger.Info("Server exiting")
	return nil
}
