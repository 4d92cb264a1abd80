// Package memory is the in-process export sink used for local runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"comunidad/internal/report"
)

type Store struct {
	mu       sync.Mutex
	invoices []report.InvoiceSnapshot
	reports  []report.GeneralReport
}

func New() *Store {
	return &Store{}
}

// AppendInvoice stores the invoice and returns a synthetic row reference.
func (s *Store) AppendInvoice(_ context.Context, inv report.InvoiceSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = append(s.invoices, inv)
	return fmt.Sprintf("mem:%d", len(s.invoices)), nil
}

// AppendReport stores the report snapshot.
func (s *Store) AppendReport(_ context.Context, rep report.GeneralReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, rep)
	return nil
}

// Invoices returns a copy of everything appended so far.
func (s *Store) Invoices() []report.InvoiceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.InvoiceSnapshot(nil), s.invoices...)
}

// Reports returns a copy of the appended report snapshots.
func (s *Store) Reports() []report.GeneralReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.GeneralReport(nil), s.reports...)
}
