package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"comunidad/internal/core"
	"comunidad/internal/report"
)

type (
	unitResponse struct {
		Name        string `json:"name"`
		Address     string `json:"address"`
		Category    string `json:"category"`
		Area        string `json:"area"`
		Coefficient string `json:"coefficient"`
	}

	statusRowResponse struct {
		Unit        string `json:"unit"`
		Category    string `json:"category"`
		Area        string `json:"area"`
		Coefficient string `json:"coefficient"`
		Due         string `json:"due"`
		Paid        string `json:"paid"`
		Remaining   string `json:"remaining"`
		Status      string `json:"status"`
	}

	historyRowResponse struct {
		Kind        string    `json:"kind"`
		ID          string    `json:"id"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		Category    string    `json:"category,omitempty"`
		Amount      string    `json:"amount"`
	}

	reportResponse struct {
		GeneratedAt    time.Time           `json:"generated_at"`
		TotalExpenses  string              `json:"total_expenses"`
		TotalCollected string              `json:"total_collected"`
		Balance        string              `json:"balance"`
		Rows           []statusRowResponse `json:"rows"`
		Totals         struct {
			Due       string `json:"due"`
			Paid      string `json:"paid"`
			Remaining string `json:"remaining"`
		} `json:"totals"`
	}

	detailRowResponse struct {
		Unit        string `json:"unit"`
		Coefficient string `json:"coefficient"`
		Share       string `json:"share"`
	}

	invoiceResponse struct {
		PaymentID     string    `json:"payment_id"`
		InvoiceNumber string    `json:"invoice_number"`
		Unit          string    `json:"unit"`
		Address       string    `json:"address"`
		Coefficient   string    `json:"coefficient"`
		Amount        string    `json:"amount"`
		Date          time.Time `json:"date"`
	}

	createExpenseRequest struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
	}

	createPaymentRequest struct {
		Unit   string `json:"unit"`
		Amount string `json:"amount"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	units := s.svc.Units()
	out := make([]unitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, unitResponse{
			Name:        u.Name,
			Address:     u.Address,
			Category:    u.Category,
			Area:        u.Area,
			Coefficient: u.Coefficient.String(),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, statusRows(s.svc.StatusRows()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rows := s.svc.HistoryRows()
	out := make([]historyRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, historyRowResponse{
			Kind:        string(row.Kind),
			ID:          row.ID,
			Date:        row.Date,
			Description: row.Description,
			Category:    row.Category,
			Amount:      row.Amount.StringFixed(2),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.svc.GeneralReport()
	out := reportResponse{
		GeneratedAt:    rep.GeneratedAt,
		TotalExpenses:  rep.TotalExpenses.StringFixed(2),
		TotalCollected: rep.TotalCollected.StringFixed(2),
		Balance:        rep.Balance.StringFixed(2),
		Rows:           statusRows(rep.Rows),
	}
	out.Totals.Due = rep.Totals.Due.StringFixed(2)
	out.Totals.Paid = rep.Totals.Paid.StringFixed(2)
	out.Totals.Remaining = rep.Totals.Remaining.StringFixed(2)
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleExpenseDetail(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.svc.ExpenseDetail(r.PathValue("id"))
	if !ok {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "expense not found"})
		return
	}
	out := make([]detailRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, detailRowResponse{
			Unit:        row.Unit,
			Coefficient: row.Coefficient.String(),
			Share:       row.Share.StringFixed(2),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	e, warns, err := s.svc.AddExpense(r.Context(), req.Description, req.Amount, req.Category)
	if errors.Is(err, core.ErrEmptyDescription) {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "description is required"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Add expense failed", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "could not save expense"})
		return
	}

	writeJSON(w, r, http.StatusCreated, struct {
		ID       string   `json:"id"`
		Warnings []string `json:"warnings,omitempty"`
	}{ID: e.ID, Warnings: warningStrings(warns)})
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	inv, warns, err := s.svc.RegisterPayment(r.Context(), req.Unit, req.Amount)
	if errors.Is(err, core.ErrUnknownUnit) {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "unknown unit"})
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Register payment failed", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "could not save payment"})
		return
	}

	writeJSON(w, r, http.StatusCreated, struct {
		Invoice  invoiceResponse `json:"invoice"`
		Warnings []string        `json:"warnings,omitempty"`
	}{Invoice: invoiceResponseFrom(inv), Warnings: warningStrings(warns)})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeleteExpense)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, s.svc.DeletePayment)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) (bool, error)) {
	if !confirmed(r.Context()) {
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: "confirmation required (confirm=true)"})
		return
	}
	deleted, err := del(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete failed", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "could not persist deletion"})
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Deleted bool `json:"deleted"`
	}{Deleted: deleted})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r.Context()) {
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: "confirmation required (confirm=true)"})
		return
	}
	done, err := s.svc.ResetAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reset failed", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "could not reset data"})
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Reset bool `json:"reset"`
	}{Reset: done})
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ExportReport(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Report export failed", "error", err)
		writeJSON(w, r, http.StatusBadGateway, errorResponse{Error: "report export failed"})
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Exported bool `json:"exported"`
	}{Exported: true})
}

func statusRows(rows []report.StatusRow) []statusRowResponse {
	out := make([]statusRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, statusRowResponse{
			Unit:        row.Unit,
			Category:    row.Category,
			Area:        row.Area,
			Coefficient: row.Coefficient.String(),
			Due:         row.Due.StringFixed(2),
			Paid:        row.Paid.StringFixed(2),
			Remaining:   row.Remaining.StringFixed(2),
			Status:      string(row.Status),
		})
	}
	return out
}

func warningStrings(warns []core.Warning) []string {
	if len(warns) == 0 {
		return nil
	}
	out := make([]string, 0, len(warns))
	for _, w := range warns {
		out = append(out, w.String())
	}
	return out
}

func invoiceResponseFrom(inv report.InvoiceSnapshot) invoiceResponse {
	return invoiceResponse{
		PaymentID:     inv.PaymentID,
		InvoiceNumber: inv.InvoiceNumber,
		Unit:          inv.Unit,
		Address:       inv.Address,
		Coefficient:   inv.Coefficient.String(),
		Amount:        inv.Amount.StringFixed(2),
		Date:          inv.Date,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}
