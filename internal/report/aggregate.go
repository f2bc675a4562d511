// Package report contains the pure aggregation engine and the report
// generators (CSV and standalone HTML document). Everything here is
// deterministic over its inputs; storage and clocks stay with the callers.
package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Jvagarinho/Domestik/internal/core"
)

// ClientRollup is one client's slice of a month: earnings, hours, and how
// many service entries produced them.
type ClientRollup struct {
	Total    float64
	Hours    float64
	Services int
}

// MonthlyTotals sums service totals per calendar month of the given year.
// Index 0 is January. Records outside the year, or with unparseable dates,
// are ignored.
func MonthlyTotals(services []core.Service, year int) [12]float64 {
	var totals [12]float64
	for _, s := range services {
		y, m, ok := core.ServiceYearMonth(s)
		if !ok || y != year {
			continue
		}
		totals[m-1] += s.Total
	}
	return totals
}

// MonthOverMonthDelta computes month-over-month changes for a year of
// totals. January's delta is always zero. Months after now with no recorded
// activity report zero rather than a misleading drop; a genuinely empty
// past month still yields its real delta.
func MonthOverMonthDelta(totals [12]float64, year int, now time.Time) [12]float64 {
	var deltas [12]float64
	for i := 1; i < 12; i++ {
		future := year > now.Year() ||
			(year == now.Year() && time.Month(i+1) > now.Month())
		if future && totals[i] == 0 {
			continue
		}
		deltas[i] = totals[i] - totals[i-1]
	}
	return deltas
}

// Stats summarizes the given services as-is. Callers filter to the month
// (or any other window) before calling; no date filtering happens here.
func Stats(services []core.Service) core.DashboardStats {
	var st core.DashboardStats
	for _, s := range services {
		st.MonthlyEarnings += s.Total
		st.TotalHours += s.TimeWorked
		st.ServiceCount++
	}
	return st
}

// PerClientRollup groups services by client. Every client in clients gets
// an entry, zero-valued when nothing matched, so list views can render
// inactive clients without a second lookup.
func PerClientRollup(services []core.Service, clients []core.Client) map[string]ClientRollup {
	out := make(map[string]ClientRollup, len(clients))
	for _, c := range clients {
		out[c.ID] = ClientRollup{}
	}
	for _, s := range services {
		r := out[s.ClientID]
		r.Total += s.Total
		r.Hours += s.TimeWorked
		r.Services++
		out[s.ClientID] = r
	}
	return out
}

// Round2 rounds to two decimals for presentation. Aggregation itself keeps
// full float precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SortField selects the history ordering key.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByValue  SortField = "value"
	SortByClient SortField = "client"
)

// SortServices orders services in place by the given field. Client ordering
// compares resolved client names case-insensitively; unknown clients sort
// by their raw id. Date ties fall back to id so the order is stable across
// re-renders.
func SortServices(services []core.Service, clients []core.Client, field SortField, ascending bool) {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = strings.ToLower(c.Name)
	}
	name := func(s core.Service) string {
		if n, ok := names[s.ClientID]; ok {
			return n
		}
		return s.ClientID
	}
	less := func(a, b core.Service) bool {
		switch field {
		case SortByValue:
			if a.Total != b.Total {
				return a.Total < b.Total
			}
		case SortByClient:
			if an, bn := name(a), name(b); an != bn {
				return an < bn
			}
		default:
			if a.Date != b.Date {
				return a.Date < b.Date
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(services, func(i, j int) bool {
		if ascending {
			return less(services[i], services[j])
		}
		return less(services[j], services[i])
	})
}

// Filter narrows a history view. Zero values mean "no constraint".
type Filter struct {
	ClientID string
	FromDate string // inclusive, YYYY-MM-DD
	ToDate   string // inclusive
	MinValue float64
	MaxValue float64
	HasMin   bool
	HasMax   bool
}

// Apply returns the services matching every set constraint, preserving
// input order.
func (f Filter) Apply(services []core.Service) []core.Service {
	out := make([]core.Service, 0, len(services))
	for _, s := range services {
		if f.ClientID != "" && s.ClientID != f.ClientID {
			continue
		}
		if f.FromDate != "" && s.Date < f.FromDate {
			continue
		}
		if f.ToDate != "" && s.Date > f.ToDate {
			continue
		}
		if f.HasMin && s.Total < f.MinValue {
			continue
		}
		if f.HasMax && s.Total > f.MaxValue {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Empty reports whether no constraint is set.
func (f Filter) Empty() bool {
	return f.ClientID == "" && f.FromDate == "" && f.ToDate == "" && !f.HasMin && !f.HasMax
}
