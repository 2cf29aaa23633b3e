package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"invoicegen/internal/auth"
	"invoicegen/internal/httpx"
	"invoicegen/internal/models"
	"invoicegen/internal/services"
	"invoicegen/internal/validation"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func (req *clientReq) validate() validation.Violations {
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Email("email", req.Email, v)
	validation.Required("street", req.Street, v)
	validation.Required("city", req.City, v)
	validation.Required("state", req.State, v)
	validation.Required("zip_code", req.ZipCode, v)
	validation.Required("country", req.Country, v)
	validation.Required("phone", req.Phone, v)
	return v
}

func (req *clientReq) apply(c *models.Client) {
	c.Name = strings.TrimSpace(req.Name)
	c.Email = strings.TrimSpace(req.Email)
	c.Phone = strings.TrimSpace(req.Phone)
	c.Street = strings.TrimSpace(req.Street)
	c.City = strings.TrimSpace(req.City)
	c.State = strings.TrimSpace(req.State)
	c.ZipCode = strings.TrimSpace(req.ZipCode)
	c.Country = strings.TrimSpace(req.Country)
}

// List: GET /api/clients – owner-scoped, optional name search and paging.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	dbq := h.db.Where("user_id = ?", userID)
	if q != "" {
		dbq = dbq.Where("lower(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var total int64
	dbq.Model(&models.Client{}).Count(&total)
	var clients []models.Client
	if err := dbq.Order("name").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	client := models.Client{UserID: userID}
	req.apply(&client)
	if err := h.db.Create(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Get: GET /api/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Update: PUT /api/clients/{id} – full replace.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	client, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req clientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	req.apply(client)
	if err := h.db.Save(client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: DELETE /api/clients/{id} – rejected while invoices reference the
// client (referential restraint, mirrored by the RESTRICT FK).
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	client, err := h.load(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var invoiceCount int64
	if err := h.db.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&invoiceCount).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_client", nil)
		return
	}
	if invoiceCount > 0 {
		httpx.Error(w, services.Conflict("client_id", "client has invoices and cannot be deleted"))
		return
	}
	if err := h.db.Delete(client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_client", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the path client scoped to the requesting user.
func (h *ClientHandler) load(r *http.Request) (*models.Client, error) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return nil, services.NotFound("client")
	}
	var client models.Client
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.NotFound("client")
		}
		return nil, err
	}
	return &client, nil
}
