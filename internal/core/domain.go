// Package core holds the Domestik domain model: clients, billable service
// entries, and the rules that keep them consistent.
package core

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the calendar-day format used for service dates.
const DateLayout = "2006-01-02"

// DefaultClientColor is applied when a client is created without a color.
const DefaultClientColor = "#10B981"

type (
	// Client is a customer of the service worker. Archived clients are
	// hidden from selection lists but their service history stays intact.
	Client struct {
		ID        string
		OwnerID   string
		Name      string
		Color     string
		Archived  bool
		CreatedAt time.Time
	}

	// Service is one billable day-of-work entry tied to a client.
	// Total is stored redundantly at write time; readers must not
	// recompute it (see VerifyTotal).
	Service struct {
		ID         string
		OwnerID    string
		ClientID   string
		Date       string // YYYY-MM-DD
		TimeWorked float64
		HourlyRate float64
		Total      float64
		CreatedAt  time.Time
	}

	// DashboardStats summarizes whatever subset of services the caller
	// has filtered into view, typically one calendar month.
	DashboardStats struct {
		MonthlyEarnings float64
		TotalHours      float64
		ServiceCount    int
	}
)

// ComputeTotal is the single write-time computation for a service's stored
// total. Every write path must go through it so the redundant field cannot
// drift between callers.
func ComputeTotal(timeWorked, hourlyRate float64) float64 {
	return timeWorked * hourlyRate
}

// totalEpsilon absorbs float formatting noise when comparing stored totals.
const totalEpsilon = 0.005

// VerifyTotal reports whether the stored total matches hours times rate.
// Readers treat a mismatch as a data-integrity warning, not an error; the
// stored value is still the one served.
func VerifyTotal(s Service) bool {
	return math.Abs(s.Total-ComputeTotal(s.TimeWorked, s.HourlyRate)) < totalEpsilon
}

// ParseDate parses a service date, accepting only the canonical layout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ServiceYearMonth returns the calendar year and month of a service date.
// The boolean is false when the date does not parse.
func ServiceYearMonth(s Service) (int, time.Month, bool) {
	d, err := ParseDate(s.Date)
	if err != nil {
		return 0, 0, false
	}
	return d.Year(), d.Month(), true
}

// ParseDecimal converts a user-entered decimal string to a float64. It
// accepts both dot and comma separators and rejects signs and garbage.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseFloat(s, 64)
}
