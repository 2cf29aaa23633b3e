package pdf

import (
	"errors"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// ErrMissingClient is returned when a document is requested for an invoice
// whose client could not be resolved. We refuse to emit a PDF with a blank
// bill-to block.
var ErrMissingClient = errors.New("pdf: invoice client is not resolved")

// Business is the issuer identity printed in the header, supplied by config.
type Business struct {
	Name    string
	Street  string
	City    string
	Country string
	Email   string
	Phone   string
}

// Client is the bill-to snapshot.
type Client struct {
	Name     string
	Street   string
	CityLine string
	Country  string
	Email    string
	Phone    string
}

// Item is one row of the line-item table. Amount is quantity x rate.
type Item struct {
	Description string
	Quantity    decimal.Decimal
	UnitRate    decimal.Decimal
	Amount      decimal.Decimal
}

// Document is the full snapshot rendered into the PDF. It is a value type;
// rendering never mutates the invoice it was built from.
type Document struct {
	Business Business
	Client   *Client

	Number      string
	InvoiceDate time.Time
	DueDate     time.Time
	Status      string

	Items    []Item
	TaxRate  decimal.Decimal
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

const dateLayout = "January 2, 2006"

// Render produces the invoice PDF as a byte stream.
func Render(d Document) ([]byte, error) {
	if d.Client == nil {
		return nil, ErrMissingClient
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	addHeader(m, d)
	m.AddRow(6)
	addClientBlock(m, d)
	m.AddRow(6)
	addItemsTable(m, d)
	m.AddRow(4)
	addTotals(m, d)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, d Document) {
	m.AddRow(12,
		text.NewCol(8, "INVOICE", props.Text{Size: 20, Style: fontstyle.Bold}),
		text.NewCol(4, d.Business.Name, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	issuer := []string{d.Business.Street, d.Business.City, d.Business.Country, d.Business.Email, d.Business.Phone}
	for _, l := range issuer {
		if l == "" {
			continue
		}
		m.AddRow(4, text.NewCol(12, l, props.Text{Size: 9, Align: align.Right}))
	}
	m.AddRow(4)
	m.AddRows(
		labeledRow("Invoice Number:", d.Number),
		labeledRow("Invoice Date:", d.InvoiceDate.Format(dateLayout)),
		labeledRow("Due Date:", d.DueDate.Format(dateLayout)),
		labeledRow("Status:", strings.ToUpper(d.Status)),
	)
}

func labeledRow(label, value string) core.Row {
	return row.New(5).Add(
		text.NewCol(3, label, props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(9, value, props.Text{Size: 10}),
	)
}

func addClientBlock(m core.Maroto, d Document) {
	c := d.Client
	m.AddRow(7, text.NewCol(12, "Bill To:", props.Text{Size: 12, Style: fontstyle.Bold}))
	lines := []string{c.Name, c.Street, c.CityLine, c.Country}
	if c.Email != "" {
		lines = append(lines, "Email: "+c.Email)
	}
	if c.Phone != "" {
		lines = append(lines, "Phone: "+c.Phone)
	}
	for i, l := range lines {
		if l == "" {
			continue
		}
		style := fontstyle.Normal
		if i == 0 {
			style = fontstyle.Bold
		}
		m.AddRow(5, text.NewCol(12, l, props.Text{Size: 10, Style: style}))
	}
}

func addItemsTable(m core.Maroto, d Document) {
	headerStyle := props.Text{Size: 10, Style: fontstyle.Bold}
	m.AddRow(8,
		text.NewCol(6, "Description", headerStyle),
		text.NewCol(2, "Quantity", propsRight(headerStyle)),
		text.NewCol(2, "Unit Rate", propsRight(headerStyle)),
		text.NewCol(2, "Amount", propsRight(headerStyle)),
	)
	m.AddRow(2, line.NewCol(12))
	cell := props.Text{Size: 10}
	for _, it := range d.Items {
		m.AddRow(6,
			text.NewCol(6, it.Description, cell),
			text.NewCol(2, it.Quantity.StringFixed(2), propsRight(cell)),
			text.NewCol(2, "$"+it.UnitRate.StringFixed(2), propsRight(cell)),
			text.NewCol(2, "$"+it.Amount.StringFixed(2), propsRight(cell)),
		)
	}
	m.AddRow(2, line.NewCol(12))
}

func addTotals(m core.Maroto, d Document) {
	label := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 10, Align: align.Right}
	m.AddRows(
		row.New(5).Add(
			col.New(6),
			text.NewCol(4, "Subtotal:", label),
			text.NewCol(2, "$"+d.Subtotal.StringFixed(2), value),
		),
		row.New(5).Add(
			col.New(6),
			text.NewCol(4, "Tax ("+d.TaxRate.StringFixed(2)+"%):", label),
			text.NewCol(2, "$"+d.Tax.StringFixed(2), value),
		),
		row.New(7).Add(
			col.New(6),
			text.NewCol(4, "Total:", props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
			text.NewCol(2, "$"+d.Total.StringFixed(2), props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
		),
	)
}

func propsRight(p props.Text) props.Text {
	p.Align = align.Right
	return p
}
