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

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"comunidad/internal/amqp"
	"comunidad/internal/config"
	"comunidad/internal/core"
	"comunidad/internal/export"
	gsheet "comunidad/internal/export/google"
	apphttp "comunidad/internal/http"
	"comunidad/internal/ledger"
	"comunidad/internal/logging"
	"comunidad/internal/service"
	"comunidad/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logging.Setup()
	logger := slog.Default()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	roster, warns := core.DefaultRoster()
	for _, w := range warns {
		logger.Warn("Roster input coerced", "field", w.Field, "value", w.Value, "reason", w.Reason)
	}
	if sum := roster.CoefficientSum(); sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		logger.Warn("Roster coefficients do not sum to 100%", "sum", sum)
	}

	var blobs store.BlobStore
	switch cfg.DataBackend {
	case "sqlite":
		sqlStore, err := store.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		blobs = sqlStore
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		blobs = store.NewMemory()
		logger.Info("Initialized memory backend")
	}
	defer blobs.Close()

	// Invoice pipeline is optional: without a broker payments still work,
	// invoices just stay local.
	var publisher service.InvoicePublisher
	if cfg.AMQPConfigured() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP invoice pipeline enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var reportWriter export.ReportWriter
	if cfg.SheetsConfigured() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		reportWriter = sheetsClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	svc := service.New(
		ledger.New(roster, ledger.Policy(cfg.ApportionPolicy)),
		blobs,
		cfg.StorageKey,
		publisher,
		reportWriter,
		apphttp.Confirmer(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Load(ctx, cfg.DiscardCorrupt); err != nil {
		logger.Error("Failed to load saved ledger", "error", err,
			"hint", "set DISCARD_CORRUPT_DATA=true to start over")
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting comunidad server", "port", cfg.Port, "backend", cfg.DataBackend, "policy", cfg.ApportionPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
