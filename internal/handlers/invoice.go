package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"invoicegen/internal/auth"
	"invoicegen/internal/config"
	"invoicegen/internal/httpx"
	"invoicegen/internal/models"
	"invoicegen/internal/pdf"
	"invoicegen/internal/services"
	"invoicegen/internal/validation"
)

const dateLayout = "2006-01-02"

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
	Cfg config.Config
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, cfg config.Config) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Cfg: cfg}
}

type lineItemReq struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    decimal.Decimal `json:"unit_rate"`
}

type invoiceReq struct {
	ClientID      uint            `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	LineItems     []lineItemReq   `json:"line_items"`
}

// validate checks all field-level invariants and returns the parsed dates.
func (req *invoiceReq) validate() (invoiceDate, dueDate time.Time, v validation.Violations) {
	v = make(validation.Violations)
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	validation.Required("invoice_number", req.InvoiceNumber, v)
	validation.RangeDecimal("tax_rate", req.TaxRate, decimal.Zero, decimal.NewFromInt(100), v)

	var err error
	invoiceDate, err = time.ParseInLocation(dateLayout, req.InvoiceDate, time.UTC)
	if err != nil {
		v["invoice_date"] = "invalid_date"
	}
	dueDate, err = time.ParseInLocation(dateLayout, req.DueDate, time.UTC)
	if err != nil {
		v["due_date"] = "invalid_date"
	} else if _, ok := v["invoice_date"]; !ok {
		validation.DateNotBefore("due_date", dueDate, invoiceDate, v)
	}

	if len(req.LineItems) == 0 {
		v["line_items"] = "at_least_one_required"
	}
	for i, it := range req.LineItems {
		prefix := "line_items[" + strconv.Itoa(i) + "]."
		validation.Required(prefix+"description", it.Description, v)
		validation.PositiveDecimal(prefix+"quantity", it.Quantity, v)
		validation.NonNegativeDecimal(prefix+"unit_rate", it.UnitRate, v)
	}
	return invoiceDate, dueDate, v
}

type lineItemResp struct {
	ID          uint   `json:"id"`
	InvoiceID   uint   `json:"invoice_id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitRate    string `json:"unit_rate"`
	Amount      string `json:"amount"`
}

type invoiceResp struct {
	ID            uint           `json:"id"`
	UserID        uint           `json:"user_id"`
	ClientID      uint           `json:"client_id"`
	InvoiceNumber string         `json:"invoice_number"`
	InvoiceDate   string         `json:"invoice_date"`
	DueDate       string         `json:"due_date"`
	TaxRate       string         `json:"tax_rate"`
	Status        string         `json:"status"`
	SentDate      *time.Time     `json:"sent_date"`
	PaidDate      *time.Time     `json:"paid_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	LineItems     []lineItemResp `json:"line_items"`
	Client        *models.Client `json:"client,omitempty"`
	Subtotal      string         `json:"subtotal"`
	Tax           string         `json:"tax"`
	Total         string         `json:"total"`
}

// toResponse computes totals and the effective (possibly overdue) status.
// Monetary values are rounded to two places here, at the boundary only.
func (h *InvoiceHandler) toResponse(inv *models.Invoice) invoiceResp {
	subtotal, tax, total := h.Svc.Totals(inv)
	items := make([]lineItemResp, 0, len(inv.LineItems))
	for i := range inv.LineItems {
		li := &inv.LineItems[i]
		items = append(items, lineItemResp{
			ID:          li.ID,
			InvoiceID:   li.InvoiceID,
			Description: li.Description,
			Quantity:    li.Quantity.StringFixed(2),
			UnitRate:    li.UnitRate.StringFixed(2),
			Amount:      li.Amount().StringFixed(2),
		})
	}
	return invoiceResp{
		ID:            inv.ID,
		UserID:        inv.UserID,
		ClientID:      inv.ClientID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate.Format(dateLayout),
		DueDate:       inv.DueDate.Format(dateLayout),
		TaxRate:       inv.TaxRate.StringFixed(2),
		Status:        string(inv.EffectiveStatus(time.Now())),
		SentDate:      inv.SentDate,
		PaidDate:      inv.PaidDate,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		LineItems:     items,
		Client:        inv.Client,
		Subtotal:      subtotal.StringFixed(2),
		Tax:           tax.StringFixed(2),
		Total:         total.StringFixed(2),
	}
}

// Create: POST /api/invoices – new draft with line items.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	invoiceDate, dueDate, v := req.validate()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.requireClient(userID, req.ClientID); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.requireUniqueNumber(userID, req.InvoiceNumber, 0); err != nil {
		httpx.Error(w, err)
		return
	}

	inv := models.Invoice{
		UserID:        userID,
		ClientID:      req.ClientID,
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		InvoiceDate:   models.Day(invoiceDate),
		DueDate:       models.Day(dueDate),
		TaxRate:       req.TaxRate,
		Status:        models.StatusDraft,
	}
	items := make([]models.LineItem, 0, len(req.LineItems))
	for _, it := range req.LineItems {
		items = append(items, models.LineItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitRate:    it.UnitRate,
		})
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	h.respondWith(w, http.StatusCreated, userID, inv.ID)
}

// List: GET /api/invoices – owner-scoped, optional status filter. The
// overdue filter is date-derived, never a stored value.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	dbq := h.DB.Where("user_id = ?", userID)
	switch models.InvoiceStatus(r.URL.Query().Get("status")) {
	case models.StatusDraft:
		dbq = dbq.Where("status = ?", models.StatusDraft)
	case models.StatusPaid:
		dbq = dbq.Where("status = ?", models.StatusPaid)
	case models.StatusSent:
		dbq = dbq.Where("status = ? AND due_date >= ?", models.StatusSent, models.Day(time.Now()))
	case models.StatusOverdue:
		dbq = dbq.Where("status = ? AND due_date < ?", models.StatusSent, models.Day(time.Now()))
	}

	var invs []models.Invoice
	if err := dbq.Preload("LineItems").Preload("Client").Order("id desc").Find(&invs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	out := make([]invoiceResp, 0, len(invs))
	for i := range invs {
		out = append(out, h.toResponse(&invs[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

// Get: GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.load(r, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.toResponse(inv))
}

// Update: PUT /api/invoices/{id} – full replace of header and line items.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.load(r, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	invoiceDate, dueDate, v := req.validate()
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.requireClient(userID, req.ClientID); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.requireUniqueNumber(userID, req.InvoiceNumber, inv.ID); err != nil {
		httpx.Error(w, err)
		return
	}

	items := make([]models.LineItem, 0, len(req.LineItems))
	for _, it := range req.LineItems {
		items = append(items, models.LineItem{
			InvoiceID:   inv.ID,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitRate:    it.UnitRate,
		})
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"client_id":      req.ClientID,
			"invoice_number": strings.TrimSpace(req.InvoiceNumber),
			"invoice_date":   models.Day(invoiceDate),
			"due_date":       models.Day(dueDate),
			"tax_rate":       req.TaxRate,
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	h.respondWith(w, http.StatusOK, userID, inv.ID)
}

// Delete: DELETE /api/invoices/{id} – line items go with it.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.load(r, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// Explicit cascade keeps sqlite test databases honest; postgres
		// also enforces it through the FK.
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, inv.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_invoice", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send: POST /api/invoices/{id}/send
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.MarkSent)
}

// Pay: POST /api/invoices/{id}/pay
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.MarkPaid)
}

func (h *InvoiceHandler) transition(w http.ResponseWriter, r *http.Request, apply func(*models.Invoice, time.Time) error) {
	userID, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.load(r, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := apply(inv, time.Now()); err != nil {
		httpx.Error(w, err)
		return
	}
	updates := map[string]any{"status": inv.Status, "sent_date": inv.SentDate, "paid_date": inv.PaidDate}
	if err := h.DB.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	h.respondWith(w, http.StatusOK, userID, inv.ID)
}

// PDF: GET /api/invoices/{id}/pdf
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	inv, err := h.load(r, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if inv.Client == nil {
		httpx.Error(w, services.MissingClient("invoice client could not be resolved"))
		return
	}

	subtotal, tax, total := h.Svc.Totals(inv)
	items := make([]pdf.Item, 0, len(inv.LineItems))
	for i := range inv.LineItems {
		li := &inv.LineItems[i]
		items = append(items, pdf.Item{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitRate:    li.UnitRate,
			Amount:      li.Amount(),
		})
	}
	doc := pdf.Document{
		Business: pdf.Business{
			Name:    h.Cfg.BusinessName,
			Street:  h.Cfg.BusinessStreet,
			City:    h.Cfg.BusinessCity,
			Country: h.Cfg.BusinessCountry,
			Email:   h.Cfg.BusinessEmail,
			Phone:   h.Cfg.BusinessPhone,
		},
		Client: &pdf.Client{
			Name:     inv.Client.Name,
			Street:   inv.Client.Street,
			CityLine: inv.Client.CityLine(),
			Country:  inv.Client.Country,
			Email:    inv.Client.Email,
			Phone:    inv.Client.Phone,
		},
		Number:      inv.InvoiceNumber,
		InvoiceDate: inv.InvoiceDate,
		DueDate:     inv.DueDate,
		Status:      string(inv.EffectiveStatus(time.Now())),
		Items:       items,
		TaxRate:     inv.TaxRate,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
	}
	data, err := pdf.Render(doc)
	if err != nil {
		if errors.Is(err, pdf.ErrMissingClient) {
			httpx.Error(w, services.MissingClient(err.Error()))
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+inv.InvoiceNumber+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// load fetches the path invoice with items and client, scoped to the user.
func (h *InvoiceHandler) load(r *http.Request, userID uint) (*models.Invoice, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return nil, services.NotFound("invoice")
	}
	var inv models.Invoice
	q := h.DB.Preload("LineItems").Preload("Client").Where("id = ? AND user_id = ?", id, userID)
	if err := q.First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.NotFound("invoice")
		}
		return nil, err
	}
	return &inv, nil
}

// requireClient validates that the referenced client exists for this owner.
func (h *InvoiceHandler) requireClient(userID, clientID uint) error {
	var count int64
	if err := h.DB.Model(&models.Client{}).Where("id = ? AND user_id = ?", clientID, userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return services.MissingClient("client does not exist")
	}
	return nil
}

// requireUniqueNumber enforces per-owner invoice number uniqueness ahead of
// the DB unique index, so the caller gets a structured conflict.
func (h *InvoiceHandler) requireUniqueNumber(userID uint, number string, excludeID uint) error {
	q := h.DB.Model(&models.Invoice{}).Where("user_id = ? AND invoice_number = ?", userID, strings.TrimSpace(number))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return services.Conflict("invoice_number", "invoice number already in use")
	}
	return nil
}

// respondWith reloads the invoice with associations and writes the response.
func (h *InvoiceHandler) respondWith(w http.ResponseWriter, status int, userID, id uint) {
	var inv models.Invoice
	q := h.DB.Preload("LineItems").Preload("Client").Where("id = ? AND user_id = ?", id, userID)
	if err := q.First(&inv).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	httpx.JSON(w, status, h.toResponse(&inv))
}
