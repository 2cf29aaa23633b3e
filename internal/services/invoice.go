package services

import (
	"time"

	"github.com/shopspring/decimal"

	"invoicegen/internal/models"
)

// InvoiceService encapsulates invoice business logic: total computation and
// the status machine. DB access stays in the handlers.
type InvoiceService struct{}

func NewInvoiceService() *InvoiceService { return &InvoiceService{} }

var hundred = decimal.NewFromInt(100)

// Totals computes subtotal, tax, and total for an invoice from its line
// items and tax rate. All arithmetic is exact decimal; rounding to two
// places happens only at presentation boundaries (API responses, PDF).
func (s *InvoiceService) Totals(inv *models.Invoice) (subtotal, tax, total decimal.Decimal) {
	if inv == nil {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	subtotal = decimal.Zero
	for i := range inv.LineItems {
		subtotal = subtotal.Add(inv.LineItems[i].Amount())
	}
	tax = subtotal.Mul(inv.TaxRate).Div(hundred)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// MarkSent transitions an invoice to sent. Allowed from draft or sent
// (idempotent: sent_date is kept on repeat calls). A paid invoice cannot be
// re-sent, and an invoice needs at least one line item to leave draft.
func (s *InvoiceService) MarkSent(inv *models.Invoice, now time.Time) error {
	if inv.Status == models.StatusPaid {
		return InvalidTransition("a paid invoice cannot be marked sent")
	}
	if len(inv.LineItems) == 0 {
		return Validation("line_items", "at least one line item is required to send an invoice")
	}
	inv.Status = models.StatusSent
	if inv.SentDate == nil {
		t := now.UTC()
		inv.SentDate = &t
	}
	return nil
}

// MarkPaid transitions an invoice to paid. Allowed from any state and
// idempotent: paid_date is kept on repeat calls. Paying a draft directly is
// permitted and leaves sent_date null, since the send step was skipped.
func (s *InvoiceService) MarkPaid(inv *models.Invoice, now time.Time) error {
	if inv.Status == models.StatusPaid {
		return nil
	}
	inv.Status = models.StatusPaid
	if inv.PaidDate == nil {
		t := now.UTC()
		inv.PaidDate = &t
	}
	return nil
}
