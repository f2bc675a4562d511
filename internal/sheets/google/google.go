// Package google implements the spreadsheet mirror on the Google Sheets
// API with service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Jvagarinho/Domestik/internal/config"
	"github.com/Jvagarinho/Domestik/internal/core"
	ports "github.com/Jvagarinho/Domestik/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.ServiceMirror = (*Client)(nil)

// NewFromConfig builds a Sheets client from the mirror configuration.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON or
// GOOGLE_SERVICE_ACCOUNT_FILE, falling back to
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.SheetsEnabled() {
		return nil, errors.New("sheets mirror not configured")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Services"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.GoogleServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.GoogleServiceAccountFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("no service account credentials configured")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// AppendServiceRow appends one service entry to the mirror sheet. The row
// carries the service id so replays can be spotted in the spreadsheet.
func (c *Client) AppendServiceRow(ctx context.Context, s core.Service, clientName string) (string, error) {
	row := []any{
		s.Date,
		clientName,
		strconv.FormatFloat(s.TimeWorked, 'f', -1, 64),
		strconv.FormatFloat(s.HourlyRate, 'f', -1, 64),
		fmt.Sprintf("%.2f", s.Total),
		s.ID,
	}

	rangeRef := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rangeRef, &gsheet.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append service row: %w", err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "mirrored service to spreadsheet",
		"service_id", s.ID,
		"sheet", c.sheetName,
		"range", ref)

	return ref, nil
}
