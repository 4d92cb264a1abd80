// Package google appends invoices and general reports to a Google
// Spreadsheet through the Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "comunidad/internal/export"
	"comunidad/internal/report"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	invoicesSheet string
	reportsSheet  string
}

// Ensure interface conformance
var (
	_ ports.InvoiceWriter = (*Client)(nil)
	_ ports.ReportWriter  = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_INVOICES_SHEET (default "Facturas"),
// GOOGLE_REPORTS_SHEET (default "Reportes").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	invoices := strings.TrimSpace(os.Getenv("GOOGLE_INVOICES_SHEET"))
	if invoices == "" {
		invoices = "Facturas"
	}
	reports := strings.TrimSpace(os.Getenv("GOOGLE_REPORTS_SHEET"))
	if reports == "" {
		reports = "Reportes"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		invoicesSheet: invoices,
		reportsSheet:  reports,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// AppendInvoice appends one invoice row:
// date, invoice number, unit, address, coefficient, amount.
func (c *Client) AppendInvoice(ctx context.Context, inv report.InvoiceSnapshot) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		inv.Date.Format("2006-01-02"),
		inv.InvoiceNumber,
		inv.Unit,
		inv.Address,
		inv.Coefficient.String(),
		inv.Amount.StringFixed(2),
	}}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.invoicesSheet+"!A:F", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append invoice to sheet %s: %w", c.invoicesSheet, err)
	}

	ref := c.invoicesSheet
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// AppendReport appends the report header, one row per unit and the totals
// row.
func (c *Client) AppendReport(ctx context.Context, rep report.GeneralReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	values := [][]any{
		{"Reporte", rep.GeneratedAt.Format("2006-01-02 15:04"),
			rep.TotalExpenses.StringFixed(2), rep.TotalCollected.StringFixed(2), rep.Balance.StringFixed(2)},
	}
	for _, row := range rep.Rows {
		values = append(values, []any{
			row.Unit,
			row.Due.StringFixed(2),
			row.Paid.StringFixed(2),
			row.Remaining.StringFixed(2),
			string(row.Status),
		})
	}
	values = append(values, []any{
		"TOTAL",
		rep.Totals.Due.StringFixed(2),
		rep.Totals.Paid.StringFixed(2),
		rep.Totals.Remaining.StringFixed(2),
		"",
	})

	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.reportsSheet+"!A:E", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report to sheet %s: %w", c.reportsSheet, err)
	}
	return nil
}
