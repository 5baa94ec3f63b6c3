// Package dashboard serves a read-only web view over the invoice ledger:
// the row table with filtering and sorting, the running totals, and the
// consumption series. It never writes to the ledger.
package dashboard

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
)

//go:embed index.html
var indexHTML []byte

type Server struct {
	store  ledger.Store
	logger *slog.Logger
}

func NewServer(store ledger.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Get("/invoices", s.handleInvoices)
		api.Get("/consumption", s.handleConsumption)
	})
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.Summary(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": sum.Rows})
}

type invoicesResponse struct {
	Rows    []ledger.Row   `json:"rows"`
	Summary ledger.Summary `json:"summary"`
}

// handleInvoices returns the ledger rows after filtering and sorting. The
// summary covers the filtered view, not the whole ledger, so the totals
// always match the table the user is looking at.
func (s *Server) handleInvoices(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Rows(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := r.URL.Query()
	rows = Filter(rows, q.Get("q"))
	if key := q.Get("sort"); key != "" {
		Sort(rows, key, q.Get("order") == "desc")
	}

	s.writeJSON(w, http.StatusOK, invoicesResponse{
		Rows:    rows,
		Summary: ledger.Summarize(rows),
	})
}

type consumptionResponse struct {
	Granularity string             `json:"granularity"`
	Points      []ConsumptionPoint `json:"points"`
}

func (s *Server) handleConsumption(w http.ResponseWriter, r *http.Request) {
	granularity := r.URL.Query().Get("granularity")
	switch granularity {
	case "":
		granularity = GranularityMonthly
	case GranularityMonthly, GranularityDaily:
	default:
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "granularity must be monthly or daily",
		})
		return
	}

	rows, err := s.store.Rows(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, consumptionResponse{
		Granularity: granularity,
		Points:      Consumption(rows, granularity),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("dashboard.encode_failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("dashboard.request_failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
