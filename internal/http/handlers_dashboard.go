package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/gateway"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/report"
)

// monthServices fetches one owner-month through the cache. Mutations
// invalidate the owner's prefix, so a hit is always post-mutation fresh.
func (s *Server) monthServices(r *http.Request, year int, month time.Month) ([]core.Service, error) {
	owner := ownerID(r)
	key := monthKey(owner, year, month)

	if cached, ok := s.servicesCache.Get(key); ok {
		return cached, nil
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	services, err := s.ledger.ListServices(r.Context(), owner, gateway.ServiceFilter{
		FromDate: first.Format(core.DateLayout),
		ToDate:   last.Format(core.DateLayout),
	})
	if err != nil {
		return nil, err
	}

	s.servicesCache.Set(key, services)
	return services, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	locale := s.locale(r)
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	next := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	s.render(w, r, "index.html", struct {
		Locale     i18n.Locale
		Year       int
		Month      int
		MonthTitle string
		PrevYear   int
		PrevMonth  int
		NextYear   int
		NextMonth  int
	}{locale, year, int(month), i18n.MonthTitle(locale, year, month),
		prev.Year(), int(prev.Month()), next.Year(), int(next.Month())})
}

// handleDashboard renders the month summary cards: earnings, hours, and
// entry count for the selected month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	year, month := parseYearMonth(r)
	key := monthKey(owner, year, month)

	stats, ok := s.statsCache.Get(key)
	if !ok {
		services, err := s.monthServices(r, year, month)
		if err != nil {
			s.renderStorageError(w, r, err)
			return
		}
		stats = report.Stats(services)
		s.statsCache.Set(key, stats)
	}

	s.render(w, r, "dashboard.html", struct {
		Locale i18n.Locale
		Year   int
		Month  int
		Stats  core.DashboardStats
	}{s.locale(r), year, int(month), stats})
}

// handleAnalytics renders the year chart: monthly totals alongside the
// previous year's series and the month-over-month movement.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	year, _ := parseYearMonth(r)

	services, err := s.ledger.ListServices(r.Context(), owner, gateway.ServiceFilter{})
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	totals := report.MonthlyTotals(services, year)
	prevTotals := report.MonthlyTotals(services, year-1)
	deltas := report.MonthOverMonthDelta(totals, year, time.Now())

	type monthRow struct {
		Month     int
		Name      string
		Total     float64
		PrevTotal float64
		Delta     float64
	}
	locale := s.locale(r)
	rows := make([]monthRow, 12)
	for i := 0; i < 12; i++ {
		rows[i] = monthRow{
			Month:     i + 1,
			Name:      i18n.MonthName(locale, time.Month(i+1)),
			Total:     report.Round2(totals[i]),
			PrevTotal: report.Round2(prevTotals[i]),
			Delta:     report.Round2(deltas[i]),
		}
	}

	s.render(w, r, "analytics.html", struct {
		Locale   i18n.Locale
		Year     int
		PrevYear int
		Months   []monthRow
	}{locale, year, year - 1, rows})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "template execution failed",
			"template", name,
			"error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// renderStorageError maps gateway errors to responses: missing rows get
// the single generic 404 message, everything else a generic 500 with
// detail only in the log.
func (s *Server) renderStorageError(w http.ResponseWriter, r *http.Request, err error) {
	locale := s.locale(r)
	if errors.Is(err, gateway.ErrNotFound) {
		NotFoundError(gateway.ErrNotFound.Error()).Write(w)
		return
	}
	slog.ErrorContext(r.Context(), "storage error", "error", err)
	InternalServerError(i18n.T(locale, "toast.error")).
		TriggerErrorNotification(i18n.T(locale, "toast.error")).
		Write(w)
}
