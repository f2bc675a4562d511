// Package storage implements the data gateway on SQLite. All queries are
// owner-scoped; a row outside the caller's scope is reported as missing.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/gateway"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Tolerate the strftime default written by the schema.
		t, _ = time.Parse("2006-01-02T15:04:05.999Z", s)
	}
	return t
}

// --- clients ---

const clientColumns = "id, owner_id, name, color, archived, created_at"

func scanClient(row interface{ Scan(...any) error }) (core.Client, error) {
	var c core.Client
	var archived int64
	var createdAt string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Color, &archived, &createdAt); err != nil {
		return core.Client{}, err
	}
	c.Archived = archived != 0
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context, ownerID string, includeArchived bool) ([]core.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients WHERE owner_id = ?"
	if !includeArchived {
		query += " AND archived = 0"
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []core.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return clients, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, ownerID, id string) (core.Client, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ? AND owner_id = ?", id, ownerID)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, gateway.ErrNotFound
	}
	if err != nil {
		return core.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) InsertClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO clients (id, owner_id, name, color, archived, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.OwnerID, c.Name, c.Color, boolToInt(c.Archived), c.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	slog.InfoContext(ctx, "client saved",
		"client_id", c.ID,
		"name", c.Name)
	return nil
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) (core.Client, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE clients SET name = ?, color = ? WHERE id = ? AND owner_id = ?",
		c.Name, c.Color, c.ID, c.OwnerID)
	if err != nil {
		return core.Client{}, fmt.Errorf("update client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Client{}, gateway.ErrNotFound
	}
	return r.GetClient(ctx, c.OwnerID, c.ID)
}

// ArchiveClient soft-deletes a client. Archiving an already-archived
// client is a no-op success.
func (r *SQLiteRepository) ArchiveClient(ctx context.Context, ownerID, id string) (core.Client, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE clients SET archived = 1 WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return core.Client{}, fmt.Errorf("archive client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Client{}, gateway.ErrNotFound
	}

	slog.InfoContext(ctx, "client archived", "client_id", id)
	return r.GetClient(ctx, ownerID, id)
}

// --- services ---

const serviceColumns = "id, owner_id, client_id, date, time_worked, hourly_rate, total, created_at"

func (r *SQLiteRepository) scanService(ctx context.Context, row interface{ Scan(...any) error }) (core.Service, error) {
	var s core.Service
	var createdAt string
	if err := row.Scan(&s.ID, &s.OwnerID, &s.ClientID, &s.Date, &s.TimeWorked, &s.HourlyRate, &s.Total, &createdAt); err != nil {
		return core.Service{}, err
	}
	s.CreatedAt = parseTime(createdAt)

	// Stored total is authoritative; drift is surfaced, not repaired.
	if !core.VerifyTotal(s) {
		slog.WarnContext(ctx, "stored total does not match hours * rate",
			"service_id", s.ID,
			"stored_total", s.Total,
			"computed_total", core.ComputeTotal(s.TimeWorked, s.HourlyRate))
	}
	return s, nil
}

func (r *SQLiteRepository) ListServices(ctx context.Context, ownerID string, f gateway.ServiceFilter) ([]core.Service, error) {
	query := "SELECT " + serviceColumns + " FROM services WHERE owner_id = ?"
	args := []any{ownerID}
	if f.ClientID != "" {
		query += " AND client_id = ?"
		args = append(args, f.ClientID)
	}
	if f.FromDate != "" {
		query += " AND date >= ?"
		args = append(args, f.FromDate)
	}
	if f.ToDate != "" {
		query += " AND date <= ?"
		args = append(args, f.ToDate)
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []core.Service
	for rows.Next() {
		s, err := r.scanService(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

func (r *SQLiteRepository) GetService(ctx context.Context, ownerID, id string) (core.Service, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+serviceColumns+" FROM services WHERE id = ? AND owner_id = ?", id, ownerID)
	s, err := r.scanService(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Service{}, gateway.ErrNotFound
	}
	if err != nil {
		return core.Service{}, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) InsertService(ctx context.Context, s core.Service) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO services (id, owner_id, client_id, date, time_worked, hourly_rate, total, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.OwnerID, s.ClientID, s.Date, s.TimeWorked, s.HourlyRate, s.Total, s.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}

	slog.InfoContext(ctx, "service saved",
		"service_id", s.ID,
		"client_id", s.ClientID,
		"date", s.Date,
		"total", s.Total)
	return nil
}

func (r *SQLiteRepository) UpdateService(ctx context.Context, s core.Service) (core.Service, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE services SET client_id = ?, date = ?, time_worked = ?, hourly_rate = ?, total = ? WHERE id = ? AND owner_id = ?",
		s.ClientID, s.Date, s.TimeWorked, s.HourlyRate, s.Total, s.ID, s.OwnerID)
	if err != nil {
		return core.Service{}, fmt.Errorf("update service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Service{}, gateway.ErrNotFound
	}
	return r.GetService(ctx, s.OwnerID, s.ID)
}

func (r *SQLiteRepository) DeleteService(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM services WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gateway.ErrNotFound
	}

	slog.InfoContext(ctx, "service deleted", "service_id", id)
	return nil
}

// ListOwners returns every owner with at least one service entry. The
// mirror worker uses it to scope periodic rebuilds.
func (r *SQLiteRepository) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT owner_id FROM services")
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
