package pdf

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testDocument() Document {
	qty := decimal.NewFromInt(2)
	rate := decimal.RequireFromString("50.00")
	return Document{
		Business: Business{Name: "Acme Consulting", City: "Portland, OR", Email: "billing@acme.test"},
		Client: &Client{
			Name:     "Globex Corp",
			Street:   "123 Main St",
			CityLine: "San Francisco, CA 94102",
			Country:  "USA",
			Email:    "ap@globex.test",
			Phone:    "+1-555-0100",
		},
		Number:      "INV-2026-001",
		InvoiceDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Status:      "sent",
		Items: []Item{
			{Description: "Web Development", Quantity: qty, UnitRate: rate, Amount: qty.Mul(rate)},
		},
		TaxRate:  decimal.NewFromInt(10),
		Subtotal: decimal.RequireFromString("100.00"),
		Tax:      decimal.RequireFromString("10.00"),
		Total:    decimal.RequireFromString("110.00"),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := Render(testDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF header (got %q)", data[:min(8, len(data))])
	}
}

func TestRenderDoesNotRequireOptionalClientFields(t *testing.T) {
	d := testDocument()
	d.Client = &Client{Name: "Minimal Co"}
	if _, err := Render(d); err != nil {
		t.Fatalf("Render with minimal client: %v", err)
	}
}

func TestRenderMissingClient(t *testing.T) {
	d := testDocument()
	d.Client = nil
	_, err := Render(d)
	if !errors.Is(err, ErrMissingClient) {
		t.Fatalf("err = %v, want ErrMissingClient", err)
	}
}

func TestRenderEmptyItems(t *testing.T) {
	d := testDocument()
	d.Items = nil
	d.Subtotal, d.Tax, d.Total = decimal.Zero, decimal.Zero, decimal.Zero
	data, err := Render(d)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty document")
	}
}
