package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"invoicegen/internal/auth"
	"invoicegen/internal/config"
	"invoicegen/internal/handlers"
	"invoicegen/internal/httpx"
	"invoicegen/internal/logging"
	"invoicegen/internal/models"
	"invoicegen/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – no error details in the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints (no session required)
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	// Client endpoints
	ch := handlers.NewClientHandler(db)
	mux.Handle("GET /api/clients", protected(ch.List))
	mux.Handle("POST /api/clients", protected(ch.Create))
	mux.Handle("GET /api/clients/{id}", protected(ch.Get))
	mux.Handle("PUT /api/clients/{id}", protected(ch.Update))
	mux.Handle("DELETE /api/clients/{id}", protected(ch.Delete))

	// Invoice endpoints
	ih := handlers.NewInvoiceHandler(db, services.NewInvoiceService(), cfg)
	mux.Handle("GET /api/invoices", protected(ih.List))
	mux.Handle("POST /api/invoices", protected(ih.Create))
	mux.Handle("GET /api/invoices/{id}", protected(ih.Get))
	mux.Handle("PUT /api/invoices/{id}", protected(ih.Update))
	mux.Handle("DELETE /api/invoices/{id}", protected(ih.Delete))
	mux.Handle("POST /api/invoices/{id}/send", protected(ih.Send))
	mux.Handle("POST /api/invoices/{id}/pay", protected(ih.Pay))
	mux.Handle("GET /api/invoices/{id}/pdf", protected(ih.PDF))

	// OpenAPI spec
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, "openapi.yaml")
	})

	return logging.Middleware(log)(withRecover(mux))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
