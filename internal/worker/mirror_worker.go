// Package worker rebuilds export artifacts when mutation events arrive
// and mirrors new service entries to the optional spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jvagarinho/Domestik/internal/amqp"
	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/gateway"
	"github.com/Jvagarinho/Domestik/internal/i18n"
	"github.com/Jvagarinho/Domestik/internal/report"
	"github.com/Jvagarinho/Domestik/internal/sheets"
)

// Store is the slice of the data gateway the worker needs, plus owner
// discovery for periodic rebuilds.
type Store interface {
	gateway.Store
	ListOwners(ctx context.Context) ([]string, error)
}

// MirrorWorker keeps the on-disk export artifacts in sync with storage.
// Every event rebuilds the touched month; a ticker re-runs the current
// month as a backstop for lost messages.
type MirrorWorker struct {
	store     Store
	mirror    sheets.ServiceMirror // nil disables the spreadsheet mirror
	exportDir string
	locale    i18n.Locale
}

func NewMirrorWorker(store Store, mirror sheets.ServiceMirror, exportDir string, locale i18n.Locale) *MirrorWorker {
	return &MirrorWorker{
		store:     store,
		mirror:    mirror,
		exportDir: exportDir,
		locale:    locale,
	}
}

// HandleMutation processes one mutation event. Service events rebuild the
// month the entry's date falls in; client events rebuild the current month
// since a rename or archive changes how existing rows render.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	slog.InfoContext(ctx, "processing mutation event",
		"kind", msg.Kind,
		"entity_id", msg.EntityID)

	year, month := monthOf(msg.Date, time.Now())

	if err := w.RebuildMonth(ctx, msg.OwnerID, year, month); err != nil {
		return fmt.Errorf("rebuild month: %w", err)
	}

	if msg.Kind == amqp.KindServiceCreated {
		if err := w.mirrorService(ctx, msg.OwnerID, msg.EntityID); err != nil {
			// Mirroring is best-effort; the artifacts are already fresh.
			slog.ErrorContext(ctx, "failed to mirror service",
				"service_id", msg.EntityID,
				"error", err)
		}
	}

	return nil
}

// RebuildMonth regenerates both export artifacts for one owner-month. The
// CSV and the HTML document are built concurrently; either failure fails
// the rebuild so the event gets redelivered.
func (w *MirrorWorker) RebuildMonth(ctx context.Context, ownerID string, year int, month time.Month) error {
	from, to := monthBounds(year, month)
	services, err := w.store.ListServices(ctx, ownerID, gateway.ServiceFilter{FromDate: from, ToDate: to})
	if err != nil {
		return fmt.Errorf("list services: %w", err)
	}
	clients, err := w.store.ListClients(ctx, ownerID, true)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}

	dir := filepath.Join(w.exportDir, ownerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := report.BuildTabularExport(services, clients, w.locale)
		if err != nil {
			return fmt.Errorf("build csv: %w", err)
		}
		return writeArtifact(gctx, filepath.Join(dir, report.TabularFilename(w.locale, year, month)), data)
	})

	g.Go(func() error {
		data, err := report.BuildDocumentExport(services, clients, w.locale, nil, year, month, time.Now())
		if err != nil {
			return fmt.Errorf("build document: %w", err)
		}
		return writeArtifact(gctx, filepath.Join(dir, report.DocumentFilename(w.locale, year, month)), data)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "rebuilt export artifacts",
		"owner_id", ownerID,
		"year", year,
		"month", int(month),
		"services", len(services))
	return nil
}

// RunPeriodic rebuilds the current month for every known owner on each
// tick until ctx is done.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "stopping periodic rebuild", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.RebuildAll(ctx); err != nil {
				slog.ErrorContext(ctx, "periodic rebuild failed", "error", err)
			}
		}
	}
}

// RebuildAll rebuilds the current month for every owner. Also called once
// at worker startup to recover from downtime.
func (w *MirrorWorker) RebuildAll(ctx context.Context) error {
	owners, err := w.store.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	now := time.Now()
	for _, owner := range owners {
		if err := w.RebuildMonth(ctx, owner, now.Year(), now.Month()); err != nil {
			slog.ErrorContext(ctx, "failed to rebuild owner month",
				"owner_id", owner,
				"error", err)
		}
	}
	return nil
}

func (w *MirrorWorker) mirrorService(ctx context.Context, ownerID, serviceID string) error {
	if w.mirror == nil {
		return nil
	}

	s, err := w.store.GetService(ctx, ownerID, serviceID)
	if err != nil {
		return fmt.Errorf("get service: %w", err)
	}

	clientName := i18n.T(w.locale, "export.unknownClient")
	if c, err := w.store.GetClient(ctx, ownerID, s.ClientID); err == nil {
		clientName = c.Name
	}

	if _, err := w.mirror.AppendServiceRow(ctx, s, clientName); err != nil {
		return fmt.Errorf("append service row: %w", err)
	}
	return nil
}

func writeArtifact(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Write-then-rename so readers never see a half-written artifact.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

func monthOf(date string, fallback time.Time) (int, time.Month) {
	if d, err := core.ParseDate(date); err == nil {
		return d.Year(), d.Month()
	}
	return fallback.Year(), fallback.Month()
}

func monthBounds(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(core.DateLayout), last.Format(core.DateLayout)
}
