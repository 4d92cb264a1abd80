// Package service orchestrates ledger mutations: confirm, mutate, persist,
// publish. Every mutator persists the ledger before returning so a crash
// right after a user action never loses it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"comunidad/internal/amqp"
	"comunidad/internal/codec"
	"comunidad/internal/core"
	"comunidad/internal/export"
	"comunidad/internal/ledger"
	"comunidad/internal/report"
	"comunidad/internal/store"
)

// Confirmer answers whether a destructive action may proceed. The UI
// collaborator supplies the implementation; unconfirmed actions are
// no-ops, not errors.
type Confirmer interface {
	Confirm(ctx context.Context, action string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, action string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, action string) bool {
	return f(ctx, action)
}

// StaticConfirmer always answers the same; useful for workers and tests.
func StaticConfirmer(answer bool) Confirmer {
	return ConfirmerFunc(func(context.Context, string) bool { return answer })
}

// InvoicePublisher hands a registered payment to the invoice pipeline.
type InvoicePublisher interface {
	PublishPaymentRegistered(ctx context.Context, msg *amqp.PaymentRegisteredMessage) error
}

// Service owns the ledger for the running session and its collaborators.
// The mutex enforces the ledger's single-writer model: HTTP serves every
// request on its own goroutine, so mutators and reads alike take it.
type Service struct {
	mu           sync.Mutex
	ledger       *ledger.Ledger
	store        store.BlobStore
	key          string
	publisher    InvoicePublisher    // optional
	reportWriter export.ReportWriter // optional
	confirm      Confirmer
}

func New(l *ledger.Ledger, blobs store.BlobStore, key string, publisher InvoicePublisher, reportWriter export.ReportWriter, confirm Confirmer) *Service {
	return &Service{
		ledger:       l,
		store:        blobs,
		key:          key,
		publisher:    publisher,
		reportWriter: reportWriter,
		confirm:      confirm,
	}
}

// Load restores the persisted ledger. An absent blob leaves the ledger
// empty. A malformed blob is discarded (and the store cleared) when
// discardCorrupt is set; otherwise the load aborts with the codec error so
// the caller can decide.
func (s *Service) Load(ctx context.Context, discardCorrupt bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("read ledger blob: %w", err)
	}
	if !ok {
		slog.InfoContext(ctx, "No saved ledger found, starting empty", "key", s.key)
		return nil
	}

	loaded, warns, err := codec.Deserialize(blob, s.ledger.Roster(), s.ledger.Policy())
	if err != nil {
		if errors.Is(err, codec.ErrMalformedBlob) && discardCorrupt {
			slog.WarnContext(ctx, "Discarding corrupted ledger blob", "key", s.key, "error", err)
			if derr := s.store.Delete(ctx, s.key); derr != nil {
				return fmt.Errorf("discard corrupted blob: %w", derr)
			}
			return nil
		}
		return fmt.Errorf("load ledger: %w", err)
	}
	logWarnings(ctx, warns)

	s.ledger.Replace(loaded.Expenses(), loaded.Payments())
	slog.InfoContext(ctx, "Ledger loaded",
		"expenses", len(loaded.Expenses()),
		"payments", len(loaded.Payments()),
		"load_warnings", len(warns))
	return nil
}

// AddExpense validates, records and persists a new expense. Bad amounts are
// coerced to zero with warnings; an empty description is the one input that
// is rejected outright.
func (s *Service) AddExpense(ctx context.Context, description, amount, category string) (core.Expense, []core.Warning, error) {
	if description == "" {
		return core.Expense{}, nil, core.ErrEmptyDescription
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, warns := core.NewExpense(description, amount, category, time.Time{})
	logWarnings(ctx, warns)
	s.ledger.AddExpense(e)

	if err := s.persist(ctx); err != nil {
		return e, warns, err
	}
	slog.InfoContext(ctx, "Expense added", "id", e.ID, "description", e.Description, "amount", e.Amount)
	return e, warns, nil
}

// RegisterPayment records a payment for the named unit, persists it and
// emits the invoice message. Publish failures are logged, not returned:
// the payment is already saved.
func (s *Service) RegisterPayment(ctx context.Context, unitName, amount string) (report.InvoiceSnapshot, []core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unit, ok := s.ledger.Roster().Lookup(unitName)
	if !ok {
		return report.InvoiceSnapshot{}, nil, fmt.Errorf("register payment for %q: %w", unitName, core.ErrUnknownUnit)
	}

	p, warns := core.NewPayment(unit, amount, time.Time{})
	logWarnings(ctx, warns)
	s.ledger.AddPayment(p)

	inv := report.Invoice(p)
	if err := s.persist(ctx); err != nil {
		return inv, warns, err
	}
	slog.InfoContext(ctx, "Payment registered", "id", p.ID, "unit", unit.Name, "amount", p.Amount)

	if s.publisher != nil {
		if err := s.publisher.PublishPaymentRegistered(ctx, amqp.NewPaymentRegisteredMessage(inv)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish invoice message", "payment_id", p.ID, "error", err)
		}
	}
	return inv, warns, nil
}

// DeleteExpense removes an expense after confirmation. It reports whether
// anything was deleted; unknown ids and declined confirmations are no-ops.
func (s *Service) DeleteExpense(ctx context.Context, id string) (bool, error) {
	if !s.confirm.Confirm(ctx, "delete expense") {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.DeleteExpense(id) {
		return false, nil
	}
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return true, nil
}

// DeletePayment removes a payment after confirmation, with the same no-op
// semantics as DeleteExpense.
func (s *Service) DeletePayment(ctx context.Context, id string) (bool, error) {
	if !s.confirm.Confirm(ctx, "delete payment") {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.DeletePayment(id) {
		return false, nil
	}
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	slog.InfoContext(ctx, "Payment deleted", "id", id)
	return true, nil
}

// ResetAll wipes the ledger and the persisted blob after confirmation.
func (s *Service) ResetAll(ctx context.Context) (bool, error) {
	if !s.confirm.Confirm(ctx, "reset all data") {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	if err := s.store.Delete(ctx, s.key); err != nil {
		return true, fmt.Errorf("clear persisted ledger: %w", err)
	}
	slog.InfoContext(ctx, "All data cleared")
	return true, nil
}

// ExportReport appends the current general report through the configured
// report writer.
func (s *Service) ExportReport(ctx context.Context) error {
	if s.reportWriter == nil {
		return errors.New("no report writer configured")
	}
	if err := s.reportWriter.AppendReport(ctx, s.GeneralReport()); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// Read accessors for the rendering layer. They take the same lock as the
// mutators so projections never observe a half-applied mutation.

func (s *Service) Units() []*core.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Roster().Units()
}

func (s *Service) StatusRows() []report.StatusRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.StatusRows(s.ledger)
}

func (s *Service) HistoryRows() []report.HistoryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.HistoryRows(s.ledger)
}

func (s *Service) GeneralReport() report.GeneralReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.General(s.ledger)
}

func (s *Service) ExpenseDetail(id string) ([]report.DetailRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.ExpenseDetail(s.ledger, id)
}

func (s *Service) persist(ctx context.Context) error {
	blob, err := codec.Serialize(s.ledger)
	if err != nil {
		return fmt.Errorf("serialize ledger: %w", err)
	}
	if err := s.store.Set(ctx, s.key, blob); err != nil {
		// The mutation stays in memory; the caller surfaces the failure.
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func logWarnings(ctx context.Context, warns []core.Warning) {
	for _, w := range warns {
		slog.WarnContext(ctx, "Input coerced", "field", w.Field, "value", w.Value, "reason", w.Reason)
	}
}
