package router

import (
	"net/http"

	"delicioso/internal/config"
	"delicioso/internal/handler"
	"delicioso/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Orders    *handler.OrderHandler
	Stock     *handler.StockHandler
	Dashboard *handler.DashboardHandler
	Admin     *handler.AdminHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// The admin routes require adminKey in X-API-Key when it is non-empty.
func New(h Handlers, cors config.CORSConfig, adminKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("POST /api/orders", h.Orders.Submit)
	mux.HandleFunc("GET /api/orders", h.Orders.List)
	mux.HandleFunc("GET /api/orders/{id}", h.Orders.GetByID)

	mux.HandleFunc("GET /api/dashboard", h.Dashboard.Summary)

	mux.HandleFunc("GET /api/stock", h.Stock.List)
	mux.HandleFunc("POST /api/stock/restock", h.Stock.Restock)
	mux.HandleFunc("POST /api/stock/adjust", h.Stock.Adjust)

	guard := middleware.AdminKey(adminKey, logger)
	mux.Handle("POST /api/admin/reset", guard(http.HandlerFunc(h.Admin.Reset)))

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(cors)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
