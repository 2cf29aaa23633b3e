package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"invoicegen/internal/models"
)

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	w := httptest.NewRecorder()
	h.Register(w, postJSON("/api/auth/register", `{"email":"new@user.test","password":"secret123"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("no session cookie set")
	}
	var user models.User
	if err := db.Where("email = ?", "new@user.test").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	w := httptest.NewRecorder()
	h.Register(w, postJSON("/api/auth/register", `{"email":"new@user.test","password":"short"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	w := httptest.NewRecorder()
	h.Register(w, postJSON("/api/auth/register", `{"email":"dup@user.test","password":"secret123"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.Register(w, postJSON("/api/auth/register", `{"email":"dup@user.test","password":"secret123"}`))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	w := httptest.NewRecorder()
	h.Register(w, postJSON("/api/auth/register", `{"email":"l@user.test","password":"secret123"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Login(w, postJSON("/api/auth/login", `{"email":"l@user.test","password":"secret123"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("login expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatal("no session cookie set on login")
	}

	w = httptest.NewRecorder()
	h.Login(w, postJSON("/api/auth/login", `{"email":"l@user.test","password":"wrongpass"}`))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password expected 401 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Login(w, postJSON("/api/auth/login", `{"email":"nobody@user.test","password":"secret123"}`))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user expected 401 got %d", w.Code)
	}
}
