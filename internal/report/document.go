package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/i18n"
)

// DocumentRow is one itemized line of an HTML report.
type DocumentRow struct {
	Date   string
	Client string
	Hours  string
	Rate   string
	Total  string
}

type documentData struct {
	Title         string
	MonthTitle    string
	FilterHeading string
	Filters       []string
	SummaryTitle  string
	SummaryItems  [][2]string
	DetailsTitle  string
	Headers       []string
	Rows          []DocumentRow
	TotalLabel    string
	TotalValue    string
	TotalColspan  int
	Footer        string
	AccentColor   template.CSS
	AccentName    string
}

const documentTmpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Arial, sans-serif; padding: 40px; color: #333; }
h1 { color: #2F4F4F; border-bottom: 3px solid #2F4F4F; padding-bottom: 10px; }
h2 { color: #555; margin-top: 30px; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th { background: {{if .AccentColor}}{{.AccentColor}}{{else}}#2F4F4F{{end}}; color: white; padding: 12px; text-align: left; }
td { padding: 10px; border-bottom: 1px solid #ddd; }
tr:nth-child(even) { background: #f9f9f9; }
.total-row { background: #E8F4F8 !important; font-weight: bold; }
.summary { margin-top: 30px; padding: 20px; background: #F8F9FA; border-radius: 8px; }
.summary-item { display: flex; justify-content: space-between; padding: 8px 0; }
.client-header { margin-top: 20px; padding: 15px; background: #F8F9FA; border-radius: 8px; border-left: 5px solid {{if .AccentColor}}{{.AccentColor}}{{else}}#2F4F4F{{end}}; }
.filter-info { margin-bottom: 20px; padding: 15px; background: #F0F9FF; border-radius: 8px; border-left: 4px solid #3B82F6; }
.filter-info h3 { margin-top: 0; color: #1E40AF; }
.filter-info ul { margin: 10px 0; padding-left: 20px; }
.filter-info li { margin: 5px 0; }
.footer { margin-top: 40px; color: #999; font-size: 12px; text-align: center; }
</style>
</head>
<body>
<h1>{{.Title}}{{if .MonthTitle}} - {{.MonthTitle}}{{end}}</h1>
{{if .AccentName}}<div class="client-header"><h2 style="margin: 0; color: {{.AccentColor}};">{{.AccentName}}</h2></div>{{end}}
{{if .Filters}}<div class="filter-info">
<h3>{{.FilterHeading}}</h3>
<ul>{{range .Filters}}<li>{{.}}</li>{{end}}</ul>
</div>{{end}}
<h2>{{.SummaryTitle}}</h2>
<div class="summary">
{{range .SummaryItems}}<div class="summary-item"><span>{{index . 0}}:</span><span>{{index . 1}}</span></div>
{{end}}</div>
<h2>{{.DetailsTitle}}</h2>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Date}}</td>{{if .Client}}<td>{{.Client}}</td>{{end}}<td>{{.Hours}}</td><td>{{.Rate}}</td><td>{{.Total}}</td></tr>
{{end}}<tr class="total-row"><td colspan="{{.TotalColspan}}">{{.TotalLabel}}</td><td>{{.TotalValue}}</td></tr>
</tbody>
</table>
<p class="footer">{{.Footer}}</p>
</body>
</html>
`

var docTemplate = template.Must(template.New("document").Parse(documentTmpl))

// BuildDocumentExport renders the monthly report as a standalone HTML
// document: optional applied-filter summary, aggregate summary, itemized
// table with a grand-total row, and a generation timestamp. Empty input
// produces a valid document with zeroed summary values.
func BuildDocumentExport(services []core.Service, clients []core.Client, locale i18n.Locale, filters []string, year int, month time.Month, now time.Time) ([]byte, error) {
	names := clientNames(clients)
	symbol := i18n.CurrencySymbol(locale)
	st := Stats(services)

	rows := make([]DocumentRow, 0, len(services))
	for _, s := range services {
		name, ok := names[s.ClientID]
		if !ok {
			name = i18n.T(locale, "export.unknownClient")
		}
		rows = append(rows, DocumentRow{
			Date:   s.Date,
			Client: name,
			Hours:  formatHours(s.TimeWorked),
			Rate:   money(symbol, s.HourlyRate),
			Total:  money(symbol, s.Total),
		})
	}

	data := documentData{
		Title:         i18n.T(locale, "export.monthlyReport"),
		MonthTitle:    i18n.MonthTitle(locale, year, month),
		FilterHeading: i18n.T(locale, "export.appliedFilters"),
		Filters:       filters,
		SummaryTitle:  i18n.T(locale, "export.summary"),
		SummaryItems: [][2]string{
			{i18n.T(locale, "export.services"), fmt.Sprintf("%d", st.ServiceCount)},
			{i18n.T(locale, "export.totalHours"), fmt.Sprintf("%.1fh", st.TotalHours)},
			{i18n.T(locale, "export.grandTotal"), money(symbol, st.MonthlyEarnings)},
		},
		DetailsTitle: i18n.T(locale, "export.serviceDetails"),
		Headers: []string{
			i18n.T(locale, "export.date"),
			i18n.T(locale, "export.client"),
			i18n.T(locale, "export.hours"),
			i18n.T(locale, "export.ratePerHour"),
			i18n.T(locale, "export.total"),
		},
		Rows:         rows,
		TotalLabel:   i18n.T(locale, "export.grandTotalRow"),
		TotalValue:   money(symbol, st.MonthlyEarnings),
		TotalColspan: 4,
		Footer:       fmt.Sprintf("%s - %s", i18n.T(locale, "export.generatedBy"), now.Format("2006-01-02 15:04")),
	}
	return renderDocument(data)
}

// BuildClientDocumentExport renders the per-client HTML report. The
// client's color accents the header block and table heading. Colors are
// validated at write time, so they are safe to inline.
func BuildClientDocumentExport(client core.Client, services []core.Service, locale i18n.Locale, now time.Time) ([]byte, error) {
	symbol := i18n.CurrencySymbol(locale)
	st := Stats(services)

	rows := make([]DocumentRow, 0, len(services))
	for _, s := range services {
		rows = append(rows, DocumentRow{
			Date:  s.Date,
			Hours: formatHours(s.TimeWorked),
			Rate:  money(symbol, s.HourlyRate),
			Total: money(symbol, s.Total),
		})
	}

	data := documentData{
		Title:        i18n.T(locale, "export.clientReport"),
		SummaryTitle: i18n.T(locale, "export.summary"),
		SummaryItems: [][2]string{
			{i18n.T(locale, "export.totalServices"), fmt.Sprintf("%d", st.ServiceCount)},
			{i18n.T(locale, "export.totalHours"), fmt.Sprintf("%.1fh", st.TotalHours)},
			{i18n.T(locale, "export.totalValue"), money(symbol, st.MonthlyEarnings)},
		},
		DetailsTitle: i18n.T(locale, "export.serviceHistory"),
		Headers: []string{
			i18n.T(locale, "export.date"),
			i18n.T(locale, "export.hours"),
			i18n.T(locale, "export.ratePerHour"),
			i18n.T(locale, "export.total"),
		},
		Rows:         rows,
		TotalLabel:   i18n.T(locale, "export.totalRow"),
		TotalValue:   money(symbol, st.MonthlyEarnings),
		TotalColspan: 3,
		Footer:       fmt.Sprintf("%s - %s", i18n.T(locale, "export.generatedBy"), now.Format("2006-01-02 15:04")),
		AccentColor:  template.CSS(client.Color),
		AccentName:   client.Name,
	}
	return renderDocument(data)
}

// FilterSummary formats the applied-filter lines shown in document
// exports. Empty when nothing is filtered, which suppresses the block.
func FilterSummary(f Filter, clientName string, locale i18n.Locale) []string {
	if f.Empty() {
		return nil
	}
	symbol := i18n.CurrencySymbol(locale)
	var out []string
	if f.ClientID != "" {
		if clientName == "" {
			clientName = i18n.T(locale, "export.unknownClient")
		}
		out = append(out, fmt.Sprintf("%s: %s", i18n.T(locale, "export.client"), clientName))
	}
	if f.FromDate != "" {
		out = append(out, fmt.Sprintf("%s: %s", i18n.T(locale, "history.fromDate"), f.FromDate))
	}
	if f.ToDate != "" {
		out = append(out, fmt.Sprintf("%s: %s", i18n.T(locale, "history.toDate"), f.ToDate))
	}
	if f.HasMin {
		out = append(out, fmt.Sprintf("%s: %s", i18n.T(locale, "history.minValue"), money(symbol, f.MinValue)))
	}
	if f.HasMax {
		out = append(out, fmt.Sprintf("%s: %s", i18n.T(locale, "history.maxValue"), money(symbol, f.MaxValue)))
	}
	return out
}

func renderDocument(data documentData) ([]byte, error) {
	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
