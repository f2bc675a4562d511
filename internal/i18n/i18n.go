// Package i18n provides the static en/pt locale dictionaries used by the
// rendered UI and the report exports. Dictionaries are plain maps compiled
// into the binary; Verify is run at startup so a missing key is a boot
// failure instead of a blank label in production.
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Locale selects a dictionary. Unknown values fall back to English.
type Locale string

const (
	EN Locale = "en"
	PT Locale = "pt"
)

// Parse normalizes a locale string, defaulting to English.
func Parse(s string) Locale {
	if strings.EqualFold(strings.TrimSpace(s), string(PT)) {
		return PT
	}
	return EN
}

var en = map[string]string{
	"nav.overview":                  "Overview",
	"nav.clients":                   "Clients",
	"dashboard.addNewClient":        "Add New Client",
	"dashboard.monthlyEarnings":     "MONTHLY EARNINGS",
	"dashboard.totalHours":          "TOTAL HOURS",
	"dashboard.services":            "SERVICES",
	"fab.registerNewDay":            "Register New Day",
	"analytics.monthlyEvolution":    "Monthly Evolution",
	"analytics.thisYear":            "This Year",
	"analytics.lastYear":            "Last Year",
	"analytics.momChange":           "Month-over-Month Change",
	"clients.title":                 "Clients",
	"clients.subtitle":              "Totals for the selected month",
	"clients.addButton":             "+ Add Client",
	"clients.stats.servicesSuffix":  "services",
	"clients.stats.hoursSuffix":     "h this month",
	"clients.empty":                 "No clients yet. Add your first client to get started.",
	"clients.archiveButton":         "Archive",
	"clients.editButton":            "Edit",
	"modal.service.editTitle":       "Edit Service",
	"modal.service.newTitle":        "Register New Day",
	"modal.client.editTitle":        "Edit Client",
	"modal.client.newTitle":         "Add New Client",
	"clientForm.nameLabel":          "Client Name",
	"clientForm.namePlaceholder":    "e.g. Maria Silva",
	"clientForm.colorLabel":         "Identify with Color",
	"clientForm.saveChanges":        "Save Changes",
	"clientForm.addClient":          "Add Client",
	"serviceForm.dateLabel":         "Date",
	"serviceForm.clientLabel":       "Client",
	"serviceForm.clientPlaceholder": "Select a client",
	"serviceForm.hoursLabel":        "Hours",
	"serviceForm.rateLabel":         "Rate ($/hr)",
	"serviceForm.totalLabel":        "Total for the Day",
	"serviceForm.save":              "Save Service",
	"history.title":                 "History",
	"history.allClients":            "All Clients",
	"history.empty":                 "Ready to start the day?",
	"history.confirmDelete":         "Are you sure you want to delete this entry?",
	"history.filters":               "Filters",
	"history.filterClient":          "Client",
	"history.fromDate":              "From",
	"history.toDate":                "To",
	"history.minValue":              "Min Value",
	"history.maxValue":              "Max Value",
	"history.sortBy":                "Sort By",
	"history.sortDate":              "Date",
	"history.sortValue":             "Value",
	"history.sortClient":            "Client Name",
	"history.order":                 "Order",
	"history.ascending":             "Ascending",
	"history.descending":            "Descending",
	"history.clearFilters":          "Clear All Filters",
	"month.prev":                    "Previous Month",
	"month.next":                    "Next Month",
	"toast.clientAdded":             "Client added successfully",
	"toast.clientUpdated":           "Client updated successfully",
	"toast.clientArchived":          "Client archived successfully",
	"toast.serviceAdded":            "Service added successfully",
	"toast.serviceUpdated":          "Service updated successfully",
	"toast.serviceDeleted":          "Service deleted successfully",
	"toast.error":                   "An error occurred. Please try again.",
	"confirmModal.cancel":           "Cancel",
	"confirmModal.confirm":          "Confirm",
	"export.date":                   "Date",
	"export.client":                 "Client",
	"export.hours":                  "Hours",
	"export.ratePerHour":            "Rate/Hr",
	"export.total":                  "Total",
	"export.totalRow":               "TOTAL",
	"export.grandTotalRow":          "GRAND TOTAL",
	"export.unknownClient":          "Unknown",
	"export.monthlyReport":          "Monthly Report",
	"export.clientReport":           "Client Report",
	"export.appliedFilters":         "Applied Filters",
	"export.summary":                "Summary",
	"export.services":               "Services",
	"export.totalServices":          "Total Services",
	"export.totalHours":             "Total Hours",
	"export.grandTotal":             "Grand Total",
	"export.totalValue":             "Total Value",
	"export.serviceDetails":         "Service Details",
	"export.serviceHistory":         "Service History",
	"export.generatedBy":            "Generated by Domestik",
}

var pt = map[string]string{
	"nav.overview":                  "Visão geral",
	"nav.clients":                   "Clientes",
	"dashboard.addNewClient":        "Adicionar cliente",
	"dashboard.monthlyEarnings":     "TOTAL MENSAL",
	"dashboard.totalHours":          "HORAS TOTAIS",
	"dashboard.services":            "SERVIÇOS",
	"fab.registerNewDay":            "Registrar novo dia",
	"analytics.monthlyEvolution":    "Evolução Mensal",
	"analytics.thisYear":            "Este Ano",
	"analytics.lastYear":            "Ano Passado",
	"analytics.momChange":           "Variação Mensal (MoM)",
	"clients.title":                 "Clientes",
	"clients.subtitle":              "Totais do mês selecionado",
	"clients.addButton":             "+ Adicionar cliente",
	"clients.stats.servicesSuffix":  "serviços",
	"clients.stats.hoursSuffix":     "h neste mês",
	"clients.empty":                 "Nenhum cliente ainda. Adicione o primeiro para começar.",
	"clients.archiveButton":         "Arquivar",
	"clients.editButton":            "Editar",
	"modal.service.editTitle":       "Editar serviço",
	"modal.service.newTitle":        "Registrar novo dia",
	"modal.client.editTitle":        "Editar cliente",
	"modal.client.newTitle":         "Adicionar novo cliente",
	"clientForm.nameLabel":          "Nome do cliente",
	"clientForm.namePlaceholder":    "ex.: Maria Silva",
	"clientForm.colorLabel":         "Identificar com cor",
	"clientForm.saveChanges":        "Salvar alterações",
	"clientForm.addClient":          "Adicionar cliente",
	"serviceForm.dateLabel":         "Data",
	"serviceForm.clientLabel":       "Cliente",
	"serviceForm.clientPlaceholder": "Selecione um cliente",
	"serviceForm.hoursLabel":        "Horas",
	"serviceForm.rateLabel":         "Valor (€/h)",
	"serviceForm.totalLabel":        "Total do dia",
	"serviceForm.save":              "Salvar serviço",
	"history.title":                 "Histórico",
	"history.allClients":            "Todos os clientes",
	"history.empty":                 "Pronto para começar o dia?",
	"history.confirmDelete":         "Tem certeza de que deseja excluir este registro?",
	"history.filters":               "Filtros",
	"history.filterClient":          "Cliente",
	"history.fromDate":              "De",
	"history.toDate":                "Até",
	"history.minValue":              "Valor Mín.",
	"history.maxValue":              "Valor Máx.",
	"history.sortBy":                "Ordenar Por",
	"history.sortDate":              "Data",
	"history.sortValue":             "Valor",
	"history.sortClient":            "Nome do Cliente",
	"history.order":                 "Ordem",
	"history.ascending":             "Crescente",
	"history.descending":            "Decrescente",
	"history.clearFilters":          "Limpar Filtros",
	"month.prev":                    "Mês anterior",
	"month.next":                    "Próximo mês",
	"toast.clientAdded":             "Cliente adicionado com sucesso",
	"toast.clientUpdated":           "Cliente atualizado com sucesso",
	"toast.clientArchived":          "Cliente arquivado com sucesso",
	"toast.serviceAdded":            "Serviço adicionado com sucesso",
	"toast.serviceUpdated":          "Serviço atualizado com sucesso",
	"toast.serviceDeleted":          "Serviço eliminado com sucesso",
	"toast.error":                   "Ocorreu um erro. Tente novamente.",
	"confirmModal.cancel":           "Cancelar",
	"confirmModal.confirm":          "Confirmar",
	"export.date":                   "Data",
	"export.client":                 "Cliente",
	"export.hours":                  "Horas",
	"export.ratePerHour":            "Taxa/Hora",
	"export.total":                  "Total",
	"export.totalRow":               "TOTAL",
	"export.grandTotalRow":          "TOTAL GERAL",
	"export.unknownClient":          "Desconhecido",
	"export.monthlyReport":          "Relatório Mensal",
	"export.clientReport":           "Relatório de Cliente",
	"export.appliedFilters":         "Filtros Aplicados",
	"export.summary":                "Resumo",
	"export.services":               "Serviços",
	"export.totalServices":          "Total de Serviços",
	"export.totalHours":             "Horas Totais",
	"export.grandTotal":             "Total Geral",
	"export.totalValue":             "Valor Total",
	"export.serviceDetails":         "Detalhes dos Serviços",
	"export.serviceHistory":         "Histórico de Serviços",
	"export.generatedBy":            "Gerado por Domestik",
}

var dictionaries = map[Locale]map[string]string{EN: en, PT: pt}

// T looks up key in the locale's dictionary, falling back to English and
// finally to the key itself so a bad lookup is visible, not silent.
func T(l Locale, key string) string {
	if d, ok := dictionaries[l]; ok {
		if v, ok := d[key]; ok {
			return v
		}
	}
	if v, ok := en[key]; ok {
		return v
	}
	return key
}

// CurrencySymbol returns the presentation-only currency glyph for a locale.
// No conversion happens anywhere; stored amounts are unitless.
func CurrencySymbol(l Locale) string {
	if l == PT {
		return "€"
	}
	return "$"
}

var ptMonths = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthName returns the localized month name. English uses the standard
// library's names directly.
func MonthName(l Locale, m time.Month) string {
	if l == PT {
		return ptMonths[m-1]
	}
	return m.String()
}

// MonthTitle formats "March 2026" / "março 2026" for report headers and
// export filenames.
func MonthTitle(l Locale, year int, m time.Month) string {
	return fmt.Sprintf("%s %d", MonthName(l, m), year)
}

// Verify checks that every locale defines exactly the keys English does.
// Called once at startup.
func Verify() error {
	for loc, d := range dictionaries {
		if loc == EN {
			continue
		}
		var missing, extra []string
		for k := range en {
			if _, ok := d[k]; !ok {
				missing = append(missing, k)
			}
		}
		for k := range d {
			if _, ok := en[k]; !ok {
				extra = append(extra, k)
			}
		}
		if len(missing) > 0 || len(extra) > 0 {
			sort.Strings(missing)
			sort.Strings(extra)
			return fmt.Errorf("i18n: locale %q out of sync (missing %v, extra %v)", loc, missing, extra)
		}
	}
	return nil
}
