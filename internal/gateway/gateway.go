// Package gateway defines the data-access ports the HTTP layer and worker
// depend on, keeping them decoupled from the SQLite implementation.
package gateway

import (
	"context"
	"errors"

	"github.com/Jvagarinho/Domestik/internal/core"
)

// ErrNotFound covers both a genuinely missing row and a row belonging to a
// different owner. The two cases are deliberately indistinguishable so
// record existence is never leaked across owners.
var ErrNotFound = errors.New("not found or access denied")

// ServiceFilter narrows a service listing at the storage level. Empty
// fields mean no constraint. Results are always ordered by date descending.
type ServiceFilter struct {
	ClientID string
	FromDate string // inclusive, YYYY-MM-DD
	ToDate   string // inclusive
}

// ClientStore is the persistence port for clients. Every operation is
// scoped to ownerID; rows outside that scope behave as absent.
type ClientStore interface {
	ListClients(ctx context.Context, ownerID string, includeArchived bool) ([]core.Client, error)
	GetClient(ctx context.Context, ownerID, id string) (core.Client, error)
	InsertClient(ctx context.Context, c core.Client) error
	UpdateClient(ctx context.Context, c core.Client) (core.Client, error)
	ArchiveClient(ctx context.Context, ownerID, id string) (core.Client, error)
}

// ServiceStore is the persistence port for service entries.
type ServiceStore interface {
	ListServices(ctx context.Context, ownerID string, f ServiceFilter) ([]core.Service, error)
	GetService(ctx context.Context, ownerID, id string) (core.Service, error)
	InsertService(ctx context.Context, s core.Service) error
	UpdateService(ctx context.Context, s core.Service) (core.Service, error)
	DeleteService(ctx context.Context, ownerID, id string) error
}

// Store bundles both ports for components that need the whole gateway.
type Store interface {
	ClientStore
	ServiceStore
}
