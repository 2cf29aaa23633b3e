package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gorm.io/gorm"

	"invoicegen/internal/models"
)

const clientBody = `{"name":"Globex Corp","email":"ap@globex.test","phone":"+1-555-0100",` +
	`"street":"123 Main St","city":"San Francisco","state":"CA","zip_code":"94102","country":"USA"}`

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return user
}

func TestClientCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "c@test")
	h := NewClientHandler(db)

	req := authedRequest(http.MethodPost, "/api/clients", clientBody, user.ID)
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created models.Client
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "Globex Corp" || created.UserID != user.ID {
		t.Fatalf("unexpected client: %+v", created)
	}

	id := strconv.Itoa(int(created.ID))
	getReq := authedRequest(http.MethodGet, "/api/clients/"+id, "", user.ID)
	getReq.SetPathValue("id", id)
	getW := httptest.NewRecorder()
	h.Get(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("get expected 200 got %d", getW.Code)
	}
}

func TestClientCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "c@test")
	h := NewClientHandler(db)

	req := authedRequest(http.MethodPost, "/api/clients", `{"name":"","email":"not-an-email"}`, user.ID)
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"name", "email", "street", "city"} {
		if _, ok := resp.Details[field]; !ok {
			t.Errorf("missing %s violation in %v", field, resp.Details)
		}
	}
}

func TestClientUpdate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "c@test")
	h := NewClientHandler(db)

	client := models.Client{UserID: user.ID, Name: "Old Name", Email: "old@test.co", Street: "1 St", City: "X", State: "Y", ZipCode: "1", Country: "Z", Phone: "0"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	id := strconv.Itoa(int(client.ID))
	req := authedRequest(http.MethodPut, "/api/clients/"+id, clientBody, user.ID)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var updated models.Client
	db.First(&updated, client.ID)
	if updated.Name != "Globex Corp" || updated.City != "San Francisco" {
		t.Fatalf("update not persisted: %+v", updated)
	}
}

func TestClientDeleteBlockedByInvoices(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedFixtures(t, db)
	h := NewClientHandler(db)

	inv := models.Invoice{
		UserID: user.ID, ClientID: client.ID, InvoiceNumber: "INV-001",
		InvoiceDate: models.Day(time.Now()), DueDate: models.Day(time.Now()),
		Status: models.StatusDraft,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	id := strconv.Itoa(int(client.ID))
	req := authedRequest(http.MethodDelete, "/api/clients/"+id, "", user.ID)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}

	// After the invoice is gone the delete goes through.
	if err := db.Delete(&inv).Error; err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	req = authedRequest(http.MethodDelete, "/api/clients/"+id, "", user.ID)
	req.SetPathValue("id", id)
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
}

func TestClientOwnerIsolation(t *testing.T) {
	db := setupTestDB(t)
	_, client := seedFixtures(t, db)
	intruder := seedUser(t, db, "intruder@test")
	h := NewClientHandler(db)

	id := strconv.Itoa(int(client.ID))
	req := authedRequest(http.MethodGet, "/api/clients/"+id, "", intruder.ID)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign client expected 404 got %d", w.Code)
	}
}

func TestClientListSearch(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "c@test")
	h := NewClientHandler(db)

	for _, name := range []string{"Globex Corp", "Initech", "Global Dynamics"} {
		c := models.Client{UserID: user.ID, Name: name, Email: "a@b.co", Street: "s", City: "c", State: "st", ZipCode: "z", Country: "co", Phone: "p"}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := authedRequest(http.MethodGet, "/api/clients?q=glob", "", user.ID)
	w := httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list expected 200 got %d", w.Code)
	}
	var list struct {
		Items []models.Client `json:"items"`
		Total int64           `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("search returned %d/%d, want 2 matches", len(list.Items), list.Total)
	}
}
