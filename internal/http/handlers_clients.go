package http

import (
	"net/http"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/report"
)

// handleClientList renders the clients partial with per-client totals for
// the selected month. Archived clients are hidden unless all=1.
func (s *Server) handleClientList(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	year, month := parseYearMonth(r)
	includeArchived := r.URL.Query().Get("all") == "1"

	clients, err := s.ledger.ListClients(r.Context(), owner, includeArchived)
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}
	services, err := s.monthServices(r, year, month)
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	rollup := report.PerClientRollup(services, clients)

	type clientRow struct {
		Client core.Client
		Rollup report.ClientRollup
	}
	rows := make([]clientRow, 0, len(clients))
	var editing *core.Client
	editID := r.URL.Query().Get("edit")
	for _, c := range clients {
		rows = append(rows, clientRow{Client: c, Rollup: rollup[c.ID]})
		if editID != "" && c.ID == editID {
			edited := c
			editing = &edited
		}
	}

	s.render(w, r, "clients.html", struct {
		Locale  i18n.Locale
		Year    int
		Month   int
		Clients []clientRow
		Editing *core.Client
	}{s.locale(r), year, int(month), rows, editing})
}

func clientInputFromForm(r *http.Request) core.ClientInput {
	return core.ClientInput{
		Name:  sanitizeInput(r.Form.Get("name")),
		Color: sanitizeInput(r.Form.Get("color")),
	}
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	c, verrs, err := s.ledger.CreateClient(r.Context(), ownerID(r), clientInputFromForm(r))
	if verrs != nil {
		ValidationErrorResponse(verrs).Write(w)
		return
	}
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	s.invalidateOwner(c.OwnerID)
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerModalClose().
		TriggerClientsRefresh().
		TriggerSuccessNotification(i18n.T(locale, "toast.clientAdded")).
		Write(w)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	owner := ownerID(r)
	_, verrs, err := s.ledger.UpdateClient(r.Context(), owner, r.PathValue("id"), clientInputFromForm(r))
	if verrs != nil {
		ValidationErrorResponse(verrs).Write(w)
		return
	}
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	NewHTMXResponse().
		TriggerModalClose().
		TriggerClientsRefresh().
		TriggerSuccessNotification(i18n.T(locale, "toast.clientUpdated")).
		Write(w)
}

func (s *Server) handleArchiveClient(w http.ResponseWriter, r *http.Request) {
	locale := s.locale(r)
	owner := ownerID(r)

	if _, err := s.ledger.ArchiveClient(r.Context(), owner, r.PathValue("id")); err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	NewHTMXResponse().
		TriggerClientsRefresh().
		TriggerSuccessNotification(i18n.T(locale, "toast.clientArchived")).
		Write(w)
}
