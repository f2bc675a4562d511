package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/gateway"
	"github.com/Jvagarinho/Domestik/internal/idx"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "domestik.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testClient(ownerID, name string) core.Client {
	return core.Client{
		ID:        idx.New(),
		OwnerID:   ownerID,
		Name:      name,
		Color:     core.DefaultClientColor,
		CreatedAt: time.Now().UTC(),
	}
}

func testService(ownerID, clientID, date string, hours, rate float64) core.Service {
	return core.Service{
		ID:         idx.New(),
		OwnerID:    ownerID,
		ClientID:   clientID,
		Date:       date,
		TimeWorked: hours,
		HourlyRate: rate,
		Total:      core.ComputeTotal(hours, rate),
		CreatedAt:  time.Now().UTC(),
	}
}

func TestClientCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := idx.New()

	c := testClient(owner, "Maria Silva")
	if err := repo.InsertClient(ctx, c); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetClient(ctx, owner, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Maria Silva" || got.Color != core.DefaultClientColor || got.Archived {
		t.Errorf("got %+v", got)
	}

	got.Name = "Maria S."
	got.Color = "#FF5733"
	updated, err := repo.UpdateClient(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Maria S." || updated.Color != "#FF5733" {
		t.Errorf("update not persisted: %+v", updated)
	}

	list, err := repo.ListClients(ctx, owner, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d clients, want 1", len(list))
	}
}

func TestClientOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner, stranger := idx.New(), idx.New()

	c := testClient(owner, "Private Client")
	if err := repo.InsertClient(ctx, c); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.GetClient(ctx, stranger, c.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("foreign get error = %v, want ErrNotFound", err)
	}
	if _, err := repo.UpdateClient(ctx, core.Client{ID: c.ID, OwnerID: stranger, Name: "Hacked", Color: "#000000"}); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("foreign update error = %v, want ErrNotFound", err)
	}
	if _, err := repo.ArchiveClient(ctx, stranger, c.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("foreign archive error = %v, want ErrNotFound", err)
	}

	list, err := repo.ListClients(ctx, stranger, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("stranger sees %d clients", len(list))
	}
}

func TestArchiveClientIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := idx.New()

	c := testClient(owner, "Old Client")
	if err := repo.InsertClient(ctx, c); err != nil {
		t.Fatal(err)
	}

	first, err := repo.ArchiveClient(ctx, owner, c.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !first.Archived {
		t.Error("client not archived")
	}

	second, err := repo.ArchiveClient(ctx, owner, c.ID)
	if err != nil {
		t.Fatalf("second archive should be a no-op success, got %v", err)
	}
	if !second.Archived {
		t.Error("client lost archived state")
	}

	active, err := repo.ListClients(ctx, owner, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Errorf("archived client still listed as active")
	}
	all, err := repo.ListClients(ctx, owner, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("archived client missing from full list")
	}
}

func TestServiceCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := idx.New()

	c := testClient(owner, "Maria Silva")
	if err := repo.InsertClient(ctx, c); err != nil {
		t.Fatal(err)
	}

	s := testService(owner, c.ID, "2026-03-10", 3, 50)
	if err := repo.InsertService(ctx, s); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetService(ctx, owner, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Total != 150 || got.Date != "2026-03-10" {
		t.Errorf("got %+v", got)
	}

	got.TimeWorked = 4
	got.Total = core.ComputeTotal(4, got.HourlyRate)
	updated, err := repo.UpdateService(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Total != 200 {
		t.Errorf("updated total = %v, want 200", updated.Total)
	}

	if err := repo.DeleteService(ctx, owner, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetService(ctx, owner, s.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("deleted get error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteService(ctx, owner, s.ID); !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("double delete error = %v, want ErrNotFound", err)
	}
}

func TestListServicesFiltersAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := idx.New()

	a := testClient(owner, "Ana")
	b := testClient(owner, "Bea")
	for _, c := range []core.Client{a, b} {
		if err := repo.InsertClient(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	seed := []core.Service{
		testService(owner, a.ID, "2026-03-01", 2, 25),
		testService(owner, a.ID, "2026-03-15", 4, 25),
		testService(owner, b.ID, "2026-03-10", 1, 60),
		testService(owner, a.ID, "2026-04-02", 3, 30),
	}
	for _, s := range seed {
		if err := repo.InsertService(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.ListServices(ctx, owner, gateway.ServiceFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d services, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Date < all[i].Date {
			t.Fatalf("not ordered by date desc: %v before %v", all[i-1].Date, all[i].Date)
		}
	}

	mine, err := repo.ListServices(ctx, owner, gateway.ServiceFilter{ClientID: a.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 3 {
		t.Errorf("client filter got %d, want 3", len(mine))
	}

	march, err := repo.ListServices(ctx, owner, gateway.ServiceFilter{FromDate: "2026-03-01", ToDate: "2026-03-31"})
	if err != nil {
		t.Fatal(err)
	}
	if len(march) != 3 {
		t.Errorf("march filter got %d, want 3", len(march))
	}
}
