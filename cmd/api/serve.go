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

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/resume-analyzer/internal/application"
	appanalysis "github.com/bryanwahyu/resume-analyzer/internal/application/analysis"
	appdocs "github.com/bryanwahyu/resume-analyzer/internal/application/documents"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/ai/openai"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/db"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/document"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/resume-analyzer/internal/infra/storage"
	"github.com/bryanwahyu/resume-analyzer/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var autoMigrate bool

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Create the analyses table on startup if it is missing")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cfg.NewLogger(os.Stdout)
	slog.SetDefault(log)

	ctx := cmd.Context()

	// connect store
	store, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()
	if autoMigrate {
		if err := store.Store.Migrate(ctx); err != nil {
			return err
		}
	}

	health := map[string]middleware.HealthChecker{"database": store}

	// init archive (optional)
	docsSvc := &appdocs.Service{
		Extractor: document.NewPDFExtractor(),
		Clock:     application.SystemClock{},
		Logger:    log,
	}
	if cfg.MinioEnabled() {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return err
		}
		docsSvc.Archive = archive
		health["archive"] = archive
	}

	// init ai client
	ai := openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL)
	if cfg.AI.Model != "" {
		ai.Model = cfg.AI.Model
	}

	metrics := middleware.NewMetrics()
	analysisSvc := &appanalysis.Service{
		AI:       ai,
		Repo:     store.Store,
		Clock:    application.SystemClock{},
		Logger:   log,
		Outcomes: metrics,
	}

	handler := httpserver.NewRouter(analysisSvc, docsSvc, httpserver.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
		Metrics:        metrics,
		Health:         health,
	})

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "store", store.Driver, "archive", cfg.MinioEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return err
	}
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", "err", err)
	}
	return nil
}
