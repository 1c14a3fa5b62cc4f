// Package server exposes the normalized metrics over a small JSON API,
// so other dashboards can consume the same pipeline the TUI renders.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/halcyon-ops/botboard/internal/config"
	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
	"github.com/halcyon-ops/botboard/internal/sheets"
	"github.com/halcyon-ops/botboard/internal/summary"
)

const dateFormat = "2006-01-02"

// TabLooker resolves raw-data tab locations; satisfied by the sheets client.
type TabLooker interface {
	TabLookup(ctx context.Context, department string, date time.Time, category string) (sheets.TabResult, error)
}

type Server struct {
	router  *mux.Router
	fetcher summary.Fetcher
	tabs    TabLooker
	roster  []policy.Department
	addr    string
}

func New(cfg config.ServerConfig, roster []policy.Department, fetcher summary.Fetcher, tabs TabLooker) *Server {
	s := &Server{
		fetcher: fetcher,
		tabs:    tabs,
		roster:  roster,
		addr:    fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
	}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.HandleFunc("/api/v1/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/departments/{department}", s.handleDepartment).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/tabs", s.handleTabs).Methods(http.MethodGet)
	s.router = r

	return s
}

// ListenAndServe blocks serving the API until the listener fails or the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("botboard API listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving API: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s (%s)", id[:8], r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("WARNING: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing date parameter")
	}
	date, err := time.Parse(dateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", raw)
	}
	return date, nil
}

type cellDTO struct {
	Metric      string `json:"metric"`
	Label       string `json:"label"`
	Display     string `json:"display"`
	Secondary   string `json:"secondary,omitempty"`
	Missing     bool   `json:"missing"`
	Severity    string `json:"severity,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

type rowDTO struct {
	Department string    `json:"department"`
	Cells      []cellDTO `json:"cells"`
}

func toRowDTO(row summary.Row) rowDTO {
	out := rowDTO{Department: string(row.Department), Cells: make([]cellDTO, 0, len(row.Cells))}
	for _, c := range row.Cells {
		out.Cells = append(out.Cells, cellDTO{
			Metric:      c.MetricID,
			Label:       c.Label,
			Display:     c.Value.Display,
			Secondary:   c.Value.Secondary,
			Missing:     c.Value.Missing,
			Severity:    severityName(c.Value.Severity),
			Placeholder: c.Placeholder,
		})
	}
	return out
}

func severityName(s metrics.Severity) string {
	switch s {
	case metrics.SeverityHigh:
		return "high"
	case metrics.SeverityMedium:
		return "medium"
	case metrics.SeverityLow:
		return "low"
	default:
		return ""
	}
}

// handleSummary renders the all-departments overview for a date.
// Per-department fetch failures degrade to empty rows inside the
// aggregator; this endpoint never fails on upstream trouble.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := summary.Aggregate(r.Context(), s.fetcher, s.roster, date)
	out := make([]rowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRowDTO(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date": date.Format(dateFormat),
		"rows": out,
	})
}

// handleDepartment renders one department. Unlike the aggregate view
// there is no partial fallback here: an upstream failure is a blocking
// error the client retries.
func (s *Server) handleDepartment(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dept := policy.Department(mux.Vars(r)["department"])
	if policy.IsPseudo(dept) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%q is an aggregate view, not a department", dept))
		return
	}

	sub := r.URL.Query().Get("sub_department")
	snap, err := s.fetcher.Snapshot(r.Context(), dept, date, sub)
	if err != nil {
		log.Printf("WARNING: department fetch failed for %s: %v", dept, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("fetching snapshot for %s failed; retry", dept))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date": date.Format(dateFormat),
		"row":  toRowDTO(summary.BuildRow(dept, date, snap)),
	})
}

// handleTabs proxies the raw-data tab lookup. Dates before the lookup
// cutover are answered locally with a conflict, matching the rule that
// the lookup API only covers newer report dates.
func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	department := r.URL.Query().Get("department")
	category := r.URL.Query().Get("category")
	if department == "" || category == "" {
		writeError(w, http.StatusBadRequest, "department and category parameters are required")
		return
	}

	res, err := s.tabs.TabLookup(r.Context(), department, date, category)
	if err == sheets.ErrTabLookupInactive {
		writeJSON(w, http.StatusConflict, sheets.TabResult{
			Success: false,
			Message: "raw data tabs are not available for this report date",
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}
