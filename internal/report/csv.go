package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/i18n"
)

func clientNames(clients []core.Client) map[string]string {
	m := make(map[string]string, len(clients))
	for _, c := range clients {
		m[c.ID] = c.Name
	}
	return m
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func money(symbol string, v float64) string {
	return fmt.Sprintf("%s%.2f", symbol, v)
}

// BuildTabularExport renders the monthly CSV report: a localized header
// row, one row per service, and a trailing TOTAL row. Field quoting is
// handled by encoding/csv, so names containing commas or quotes survive
// intact. Empty input still yields the header and a 0.00 total.
func BuildTabularExport(services []core.Service, clients []core.Client, locale i18n.Locale) ([]byte, error) {
	names := clientNames(clients)
	symbol := i18n.CurrencySymbol(locale)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		i18n.T(locale, "export.date"),
		i18n.T(locale, "export.client"),
		i18n.T(locale, "export.hours"),
		i18n.T(locale, "export.ratePerHour"),
		i18n.T(locale, "export.total"),
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	var total float64
	for _, s := range services {
		name, ok := names[s.ClientID]
		if !ok {
			name = i18n.T(locale, "export.unknownClient")
		}
		row := []string{
			s.Date,
			name,
			formatHours(s.TimeWorked),
			formatHours(s.HourlyRate),
			money(symbol, s.Total),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
		total += s.Total
	}

	totalRow := []string{"", "", "", i18n.T(locale, "export.totalRow"), money(symbol, total)}
	if err := w.Write(totalRow); err != nil {
		return nil, fmt.Errorf("write csv total: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildClientTabularExport renders the per-client CSV report, prefixed by
// a title block naming the client and suffixed by a summary section.
func BuildClientTabularExport(client core.Client, services []core.Service, locale i18n.Locale) ([]byte, error) {
	symbol := i18n.CurrencySymbol(locale)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{i18n.T(locale, "export.clientReport")},
		{fmt.Sprintf("%s: %s", i18n.T(locale, "export.client"), client.Name)},
		{""},
		{
			i18n.T(locale, "export.date"),
			i18n.T(locale, "export.hours"),
			i18n.T(locale, "export.ratePerHour"),
			i18n.T(locale, "export.total"),
		},
	}

	var total, totalHours float64
	for _, s := range services {
		rows = append(rows, []string{
			s.Date,
			formatHours(s.TimeWorked),
			formatHours(s.HourlyRate),
			money(symbol, s.Total),
		})
		total += s.Total
		totalHours += s.TimeWorked
	}

	rows = append(rows,
		[]string{"", i18n.T(locale, "export.totalRow"), "", money(symbol, total)},
		[]string{i18n.T(locale, "export.summary") + ":", "", "", ""},
		[]string{i18n.T(locale, "export.services"), strconv.Itoa(len(services)), "", ""},
		[]string{i18n.T(locale, "export.totalHours"), fmt.Sprintf("%.1fh", totalHours), "", ""},
		[]string{i18n.T(locale, "export.totalValue"), "", "", money(symbol, total)},
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write client csv: %w", err)
	}
	return buf.Bytes(), nil
}

// TabularFilename names the monthly CSV download, e.g.
// "Domestik_March 2026_Report.csv".
func TabularFilename(locale i18n.Locale, year int, m time.Month) string {
	return fmt.Sprintf("Domestik_%s_Report.csv", i18n.MonthTitle(locale, year, m))
}

// DocumentFilename names the monthly HTML document download.
func DocumentFilename(locale i18n.Locale, year int, m time.Month) string {
	return fmt.Sprintf("Domestik_%s_Report.html", i18n.MonthTitle(locale, year, m))
}

// ClientTabularFilename names the per-client CSV download. Whitespace in
// the client name becomes underscores.
func ClientTabularFilename(client core.Client) string {
	return fmt.Sprintf("Domestik_%s_Report.csv", underscored(client.Name))
}

// ClientDocumentFilename names the per-client HTML document download.
func ClientDocumentFilename(client core.Client) string {
	return fmt.Sprintf("Domestik_%s_Report.html", underscored(client.Name))
}

func underscored(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
