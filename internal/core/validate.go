package core

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Jvagarinho/Domestik/internal/idx"
)

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type (
	// ClientInput carries raw, untrusted client fields as submitted.
	ClientInput struct {
		Name     string
		Color    string
		Archived bool
	}

	// ServiceInput carries raw, untrusted service fields as submitted.
	ServiceInput struct {
		Date       string
		ClientID   string
		TimeWorked float64
		HourlyRate float64
		Total      float64
	}
)

// ValidateClient checks and normalizes a client submission. All violations
// are collected; on success the returned record has the trimmed name and a
// defaulted color applied.
func ValidateClient(in ClientInput) (Client, []string) {
	var errs []string

	// Bounds are in characters, not bytes; accented names count per rune.
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 2 {
		errs = append(errs, "Name must be at least 2 characters")
	}
	if utf8.RuneCountInString(name) > 100 {
		errs = append(errs, "Name must be less than 100 characters")
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = DefaultClientColor
	} else if !colorRe.MatchString(color) {
		errs = append(errs, "Invalid color format")
	}

	if len(errs) > 0 {
		return Client{}, errs
	}
	return Client{Name: name, Color: color, Archived: in.Archived}, nil
}

// ValidateService checks a service submission. All violations are collected;
// on success the returned record carries the input values verbatim. Callers
// are expected to have set Total via ComputeTotal before validating.
func ValidateService(in ServiceInput) (Service, []string) {
	var errs []string

	date := strings.TrimSpace(in.Date)
	if !dateRe.MatchString(date) {
		errs = append(errs, "Invalid date format (YYYY-MM-DD)")
	} else if _, err := ParseDate(date); err != nil {
		errs = append(errs, "Invalid date format (YYYY-MM-DD)")
	}

	if !idx.Valid(strings.TrimSpace(in.ClientID)) {
		errs = append(errs, "Please select a client")
	}

	if in.TimeWorked < 0.5 {
		errs = append(errs, "Minimum 0.5 hours")
	}
	if in.TimeWorked > 24 {
		errs = append(errs, "Maximum 24 hours per day")
	}

	if in.HourlyRate < 0.01 {
		errs = append(errs, "Rate must be greater than 0")
	}
	if in.HourlyRate > 1000 {
		errs = append(errs, "Rate seems too high")
	}

	if in.Total < 0 {
		errs = append(errs, "Total must be positive")
	}

	if len(errs) > 0 {
		return Service{}, errs
	}
	return Service{
		Date:       date,
		ClientID:   strings.TrimSpace(in.ClientID),
		TimeWorked: in.TimeWorked,
		HourlyRate: in.HourlyRate,
		Total:      in.Total,
	}, nil
}
