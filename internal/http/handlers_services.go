package http

import (
	"net/http"
	"strings"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/report"
	"github.com/Jvagarinho/Domestik/internal/services"
)

// parseHistoryView reads the filter/sort query parameters of the history
// partial and the document export. Unparseable numbers simply leave the
// bound unset.
func parseHistoryView(r *http.Request) (report.Filter, report.SortField, bool) {
	q := r.URL.Query()
	f := report.Filter{
		ClientID: strings.TrimSpace(q.Get("client")),
		FromDate: strings.TrimSpace(q.Get("from")),
		ToDate:   strings.TrimSpace(q.Get("to")),
	}
	if v := strings.TrimSpace(q.Get("min")); v != "" {
		if n, err := core.ParseDecimal(v); err == nil {
			f.MinValue, f.HasMin = n, true
		}
	}
	if v := strings.TrimSpace(q.Get("max")); v != "" {
		if n, err := core.ParseDecimal(v); err == nil {
			f.MaxValue, f.HasMax = n, true
		}
	}

	sortField := report.SortByDate
	switch q.Get("sort") {
	case "value":
		sortField = report.SortByValue
	case "client":
		sortField = report.SortByClient
	}
	ascending := q.Get("order") == "asc"
	return f, sortField, ascending
}

// handleServiceList renders the history partial: the month's entries with
// optional filters and sorting applied.
func (s *Server) handleServiceList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	year, month := parseYearMonth(r)

	all, err := s.monthServices(r, year, month)
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}
	clients, err := s.ledger.ListClients(r.Context(), owner, true)
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	filter, sortField, ascending := parseHistoryView(r)
	filtered := filter.Apply(all)
	report.SortServices(filtered, clients, sortField, ascending)

	names := make(map[string]string, len(clients))
	colors := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
		colors[c.ID] = c.Color
	}

	locale := s.locale(r)
	type serviceRow struct {
		Service     core.Service
		ClientName  string
		ClientColor string
	}
	rows := make([]serviceRow, 0, len(filtered))
	var editing *core.Service
	editID := r.URL.Query().Get("edit")
	for _, svc := range filtered {
		name, ok := names[svc.ClientID]
		if !ok {
			name = i18n.T(locale, "export.unknownClient")
		}
		rows = append(rows, serviceRow{
			Service:     svc,
			ClientName:  name,
			ClientColor: colors[svc.ClientID],
		})
		if editID != "" && svc.ID == editID {
			edited := svc
			editing = &edited
		}
	}

	s.render(w, r, "services.html", struct {
		Locale   i18n.Locale
		Year     int
		Month    int
		Services []serviceRow
		Clients  []core.Client
		Filtered bool
		Editing  *core.Service
	}{locale, year, int(month), rows, clients, !filter.Empty(), editing})
}

func serviceDraftFromForm(r *http.Request) services.ServiceDraft {
	draft := services.ServiceDraft{
		Date:     sanitizeInput(r.Form.Get("date")),
		ClientID: sanitizeInput(r.Form.Get("client_id")),
	}
	// Unparseable numbers stay zero and fail validation with the
	// field's own message.
	if v, err := core.ParseDecimal(r.Form.Get("time_worked")); err == nil {
		draft.TimeWorked = v
	}
	if v, err := core.ParseDecimal(r.Form.Get("hourly_rate")); err == nil {
		draft.HourlyRate = v
	}
	return draft
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	owner := ownerID(r)
	svc, verrs, err := s.ledger.CreateService(r.Context(), owner, serviceDraftFromForm(r))
	if verrs != nil {
		ValidationErrorResponse(verrs).Write(w)
		return
	}
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	year, month, _ := core.ServiceYearMonth(svc)
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerModalClose().
		TriggerServicesRefresh(year, int(month)).
		TriggerDashboardRefresh(year, int(month)).
		TriggerSuccessNotification(i18n.T(locale, "toast.serviceAdded")).
		Write(w)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	owner := ownerID(r)
	svc, verrs, err := s.ledger.UpdateService(r.Context(), owner, r.PathValue("id"), serviceDraftFromForm(r))
	if verrs != nil {
		ValidationErrorResponse(verrs).Write(w)
		return
	}
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	year, month, _ := core.ServiceYearMonth(svc)
	NewHTMXResponse().
		TriggerModalClose().
		TriggerServicesRefresh(year, int(month)).
		TriggerDashboardRefresh(year, int(month)).
		TriggerSuccessNotification(i18n.T(locale, "toast.serviceUpdated")).
		Write(w)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	owner := ownerID(r)

	if err := s.ledger.DeleteService(r.Context(), owner, r.PathValue("id")); err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	year, month := parseYearMonth(r)
	NewHTMXResponse().
		TriggerServicesRefresh(year, int(month)).
		TriggerDashboardRefresh(year, int(month)).
		TriggerSuccessNotification(i18n.T(locale, "toast.serviceDeleted")).
		Write(w)
}
