package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jvagarinho/Domestik/internal/gateway"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/report"
)

func serveDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleExportCSV streams the monthly CSV report for the selected month.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	year, month := parseYearMonth(r)
	locale := s.locale(r)

	services, err := s.monthServices(r, year, month)
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}
	clients, err := s.ledger.ListClients(r.Context(), owner, true)
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	data, err := report.BuildTabularExport(services, clients, locale)
	if err != nil {
		slog.ErrorContext(r.Context(), "csv export failed", "error", err)
		InternalServerError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	serveDownload(w, report.TabularFilename(locale, year, month), "text/csv; charset=utf-8", data)
}

// handleExportDocument streams the monthly HTML report, honoring the same
// filters as the history view.
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	year, month := parseYearMonth(r)
	locale := s.locale(r)

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

	filter, _, _ := parseHistoryView(r)
	services := filter.Apply(all)

	clientName := ""
	if filter.ClientID != "" {
		for _, c := range clients {
			if c.ID == filter.ClientID {
				clientName = c.Name
			}
		}
	}
	filters := report.FilterSummary(filter, clientName, locale)

	data, err := report.BuildDocumentExport(services, clients, locale, filters, year, month, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "document export failed", "error", err)
		InternalServerError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	serveDownload(w, report.DocumentFilename(locale, year, month), "text/html; charset=utf-8", data)
}

// handleExportClientCSV streams the full-history CSV report for one client.
func (s *Server) handleExportClientCSV(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	locale := s.locale(r)

	client, err := s.ledger.GetClient(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}
	services, err := s.ledger.ListServices(r.Context(), owner, gateway.ServiceFilter{ClientID: client.ID})
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	data, err := report.BuildClientTabularExport(client, services, locale)
	if err != nil {
		slog.ErrorContext(r.Context(), "client csv export failed", "error", err)
		InternalServerError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	serveDownload(w, report.ClientTabularFilename(client), "text/csv; charset=utf-8", data)
}

// handleExportClientDocument streams the full-history HTML report for one
// client, accented with the client's color.
func (s *Server) handleExportClientDocument(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	locale := s.locale(r)

	client, err := s.ledger.GetClient(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}
	services, err := s.ledger.ListServices(r.Context(), owner, gateway.ServiceFilter{ClientID: client.ID})
	if err != nil {
		s.renderStorageError(w, r, err)
		return
	}

	data, err := report.BuildClientDocumentExport(client, services, locale, time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "client document export failed", "error", err)
		InternalServerError(i18n.T(locale, "toast.error")).Write(w)
		return
	}

	serveDownload(w, report.ClientDocumentFilename(client), "text/html; charset=utf-8", data)
}
