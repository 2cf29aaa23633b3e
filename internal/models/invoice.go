package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	StatusDraft InvoiceStatus = "draft"
	StatusSent  InvoiceStatus = "sent"
	StatusPaid  InvoiceStatus = "paid"
	// StatusOverdue is derived at read time from a sent invoice whose due
	// date has passed. It is never stored; see Invoice.EffectiveStatus.
	StatusOverdue InvoiceStatus = "overdue"
)

// Ownable is implemented by models that belong to a single user.
// Every query against an Ownable model must be scoped by user_id.
type Ownable interface {
	GetUserID() uint
}

// Invoicing models
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"not null;index:idx_owner_number,unique,priority:1" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	ClientID uint    `gorm:"not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// InvoiceNumber is unique per owner, not globally.
	InvoiceNumber string        `gorm:"size:64;not null;index:idx_owner_number,unique,priority:2" json:"invoice_number"`
	InvoiceDate   time.Time     `gorm:"not null" json:"invoice_date"`
	DueDate       time.Time     `gorm:"not null" json:"due_date"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"tax_rate"`
	Status        InvoiceStatus `gorm:"size:16;not null;default:'draft'" json:"status"`
	SentDate      *time.Time    `json:"sent_date,omitempty"`
	PaidDate      *time.Time    `json:"paid_date,omitempty"`

	LineItems []LineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
}

type LineItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"quantity"`
	UnitRate    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_rate"`
}

// Amount is the line total (quantity x unit rate), unrounded.
func (li *LineItem) Amount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitRate)
}

// GetUserID implements the Ownable interface for authorization.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// EffectiveStatus returns the status to report for display and filtering.
// A sent invoice whose due date is strictly before today is overdue.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status == StatusSent && i.DueDate.Before(Day(now)) {
		return StatusOverdue
	}
	return i.Status
}

// Day truncates a timestamp to midnight UTC. Invoice and due dates are
// stored this way so date comparisons are calendar comparisons.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
