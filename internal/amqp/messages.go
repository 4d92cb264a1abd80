package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"comunidad/internal/report"
)

// PaymentRegisteredMessage carries the invoice snapshot of a freshly
// registered payment to the invoice worker. Amount and coefficient travel
// as decimal strings to survive the wire unchanged.
type PaymentRegisteredMessage struct {
	PaymentID     string    `json:"payment_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Unit          string    `json:"unit"`
	Address       string    `json:"address"`
	Coefficient   string    `json:"coefficient"`
	Amount        string    `json:"amount"`
	Date          time.Time `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewPaymentRegisteredMessage converts an invoice snapshot into its wire
// form.
func NewPaymentRegisteredMessage(inv report.InvoiceSnapshot) *PaymentRegisteredMessage {
	return &PaymentRegisteredMessage{
		PaymentID:     inv.PaymentID,
		InvoiceNumber: inv.InvoiceNumber,
		Unit:          inv.Unit,
		Address:       inv.Address,
		Coefficient:   inv.Coefficient.String(),
		Amount:        inv.Amount.String(),
		Date:          inv.Date,
		Timestamp:     time.Now(),
	}
}

// Snapshot converts the wire form back into an invoice snapshot.
func (m *PaymentRegisteredMessage) Snapshot() (report.InvoiceSnapshot, error) {
	coeff, err := decimal.NewFromString(m.Coefficient)
	if err != nil {
		return report.InvoiceSnapshot{}, fmt.Errorf("parse coefficient %q: %w", m.Coefficient, err)
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return report.InvoiceSnapshot{}, fmt.Errorf("parse amount %q: %w", m.Amount, err)
	}
	return report.InvoiceSnapshot{
		PaymentID:     m.PaymentID,
		InvoiceNumber: m.InvoiceNumber,
		Unit:          m.Unit,
		Address:       m.Address,
		Coefficient:   coeff,
		Amount:        amount,
		Date:          m.Date,
	}, nil
}

// ToJSON converts the message to JSON bytes.
func (m *PaymentRegisteredMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentRegisteredMessageFromJSON creates a message from JSON bytes.
func PaymentRegisteredMessageFromJSON(data []byte) (*PaymentRegisteredMessage, error) {
	var msg PaymentRegisteredMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
