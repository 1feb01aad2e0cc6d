package server

import (
	"net/http"

	"github.com/diewo77/importdesk/internal/events"
	"github.com/diewo77/importdesk/internal/handlers"
	"github.com/diewo77/importdesk/internal/httpx"
	"github.com/diewo77/importdesk/internal/rates"
	"github.com/diewo77/importdesk/internal/services"

	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes applied.
func New(db *gorm.DB, provider rates.Provider, pub events.Publisher) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Perform a lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Header().Set("Content-Type", "application/json")
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	oh := handlers.NewOrderHandler(services.NewOrderService(db, provider, pub))
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			oh.List(w, r)
		case http.MethodPost:
			oh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/orders/get", oh.Get)
	mux.HandleFunc("/orders/full", oh.Full)
	mux.HandleFunc("/orders/update", requirePost(oh.Update))
	mux.HandleFunc("/orders/delete", requirePost(oh.Delete))

	ph := handlers.NewProductHandler(services.NewProductService(db, pub))
	mux.HandleFunc("/products", requirePost(ph.Create))
	mux.HandleFunc("/products/update", requirePost(ph.Update))
	mux.HandleFunc("/products/delete", requirePost(ph.Delete))

	ch := handlers.NewCostHandler(services.NewCostService(db, pub))
	mux.HandleFunc("/costs", requirePost(ch.Create))
	mux.HandleFunc("/costs/update", requirePost(ch.Update))
	mux.HandleFunc("/costs/links", requirePost(ch.Links))
	mux.HandleFunc("/costs/delete", requirePost(ch.Delete))

	payh := handlers.NewPaymentHandler(services.NewPaymentService(db, pub))
	mux.HandleFunc("/payments", requirePost(payh.Create))
	mux.HandleFunc("/payments/approve", requirePost(payh.Approve))
	mux.HandleFunc("/payments/dismiss", requirePost(payh.Dismiss))
	mux.HandleFunc("/payments/update", requirePost(payh.Update))
	mux.HandleFunc("/payments/links", requirePost(payh.Links))
	mux.HandleFunc("/payments/delete", requirePost(payh.Delete))

	mh := handlers.NewMilestoneHandler(services.NewMilestoneService(db, pub))
	mux.HandleFunc("/milestones", requirePost(mh.Create))
	mux.HandleFunc("/milestones/update", requirePost(mh.Update))
	mux.HandleFunc("/milestones/delete", requirePost(mh.Delete))

	sh := handlers.NewSupplierHandler(services.NewSupplierService(db))
	mux.HandleFunc("/suppliers", sh.List)

	return mux
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}
