// Package export defines the outbound ports for rendered documents: the
// invoice emitted after each payment and the bulk general report.
package export

import (
	"context"

	"comunidad/internal/report"
)

type (
	// InvoiceWriter appends one invoice to an external document sink.
	InvoiceWriter interface {
		AppendInvoice(ctx context.Context, inv report.InvoiceSnapshot) (rowRef string, err error)
	}

	// ReportWriter appends a full general report snapshot.
	ReportWriter interface {
		AppendReport(ctx context.Context, rep report.GeneralReport) error
	}
)
