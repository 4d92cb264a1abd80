package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"comunidad/internal/amqp"
	"comunidad/internal/config"
	"comunidad/internal/export"
	gsheet "comunidad/internal/export/google"
	memexport "comunidad/internal/export/memory"
	"comunidad/internal/logging"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logging.Setup()
	logger := slog.Default()

	logger.Info("Starting invoice-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if !cfg.AMQPConfigured() {
		logger.Error("AMQP_URL is required for the invoice worker")
		os.Exit(1)
	}

	var writer export.InvoiceWriter
	if cfg.SheetsConfigured() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = sheetsClient
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = memexport.New()
		logger.Info("Google Sheets disabled - appending invoices to the in-memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(msg *amqp.PaymentRegisteredMessage) error {
		inv, err := msg.Snapshot()
		if err != nil {
			return err
		}
		ref, err := writer.AppendInvoice(ctx, inv)
		if err != nil {
			return err
		}
		logger.Info("Invoice appended",
			"invoice_number", inv.InvoiceNumber,
			"unit", inv.Unit,
			"amount", inv.Amount,
			"row", ref)
		return nil
	}

	if err := amqpClient.ConsumePaymentRegistered(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
