// Package services orchestrates writes across storage and the AMQP event
// stream. Handlers call the ledger; the ledger owns validation, id
// assignment, and total computation.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jvagarinho/Domestik/internal/amqp"
	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/gateway"
	"github.com/Jvagarinho/Domestik/internal/idx"
)

// Publisher is the slice of the AMQP client the ledger needs. Nil disables
// event publishing entirely.
type Publisher interface {
	PublishMutation(ctx context.Context, msg *amqp.MutationMessage) error
}

// Ledger coordinates client and service mutations: validate, persist,
// then publish. A publish failure never fails the request.
type Ledger struct {
	store     gateway.Store
	publisher Publisher
}

func NewLedger(store gateway.Store, publisher Publisher) *Ledger {
	return &Ledger{store: store, publisher: publisher}
}

// --- clients ---

func (l *Ledger) ListClients(ctx context.Context, ownerID string, includeArchived bool) ([]core.Client, error) {
	return l.store.ListClients(ctx, ownerID, includeArchived)
}

func (l *Ledger) GetClient(ctx context.Context, ownerID, id string) (core.Client, error) {
	return l.store.GetClient(ctx, ownerID, id)
}

// CreateClient validates and persists a new client. Validation failures
// come back as the string slice; the error is reserved for storage trouble.
func (l *Ledger) CreateClient(ctx context.Context, ownerID string, in core.ClientInput) (core.Client, []string, error) {
	c, verrs := core.ValidateClient(in)
	if verrs != nil {
		return core.Client{}, verrs, nil
	}

	c.ID = idx.New()
	c.OwnerID = ownerID
	c.CreatedAt = time.Now().UTC()

	if err := l.store.InsertClient(ctx, c); err != nil {
		return core.Client{}, nil, fmt.Errorf("create client: %w", err)
	}

	l.publish(ctx, amqp.NewMutationMessage(amqp.KindClientCreated, ownerID, c.ID))
	return c, nil, nil
}

// UpdateClient applies a name/color change to an existing client.
func (l *Ledger) UpdateClient(ctx context.Context, ownerID, id string, in core.ClientInput) (core.Client, []string, error) {
	c, verrs := core.ValidateClient(in)
	if verrs != nil {
		return core.Client{}, verrs, nil
	}

	c.ID = id
	c.OwnerID = ownerID

	updated, err := l.store.UpdateClient(ctx, c)
	if err != nil {
		return core.Client{}, nil, err
	}

	l.publish(ctx, amqp.NewMutationMessage(amqp.KindClientUpdated, ownerID, id))
	return updated, nil, nil
}

// ArchiveClient soft-deletes a client. Already-archived clients archive
// again without complaint.
func (l *Ledger) ArchiveClient(ctx context.Context, ownerID, id string) (core.Client, error) {
	c, err := l.store.ArchiveClient(ctx, ownerID, id)
	if err != nil {
		return core.Client{}, err
	}

	l.publish(ctx, amqp.NewMutationMessage(amqp.KindClientArchived, ownerID, id))
	return c, nil
}

// --- services ---

// ServiceDraft carries the parsed form fields of a service submission.
// The total is computed here, never accepted from the client.
type ServiceDraft struct {
	Date       string
	ClientID   string
	TimeWorked float64
	HourlyRate float64
}

func (l *Ledger) ListServices(ctx context.Context, ownerID string, f gateway.ServiceFilter) ([]core.Service, error) {
	return l.store.ListServices(ctx, ownerID, f)
}

func (l *Ledger) GetService(ctx context.Context, ownerID, id string) (core.Service, error) {
	return l.store.GetService(ctx, ownerID, id)
}

// CreateService validates and persists a new service entry. The draft's
// client must exist, belong to the owner, and not be archived.
func (l *Ledger) CreateService(ctx context.Context, ownerID string, draft ServiceDraft) (core.Service, []string, error) {
	s, verrs, err := l.prepareService(ctx, ownerID, draft)
	if verrs != nil || err != nil {
		return core.Service{}, verrs, err
	}

	s.ID = idx.New()
	s.OwnerID = ownerID
	s.CreatedAt = time.Now().UTC()

	if err := l.store.InsertService(ctx, s); err != nil {
		return core.Service{}, nil, fmt.Errorf("create service: %w", err)
	}

	msg := amqp.NewMutationMessage(amqp.KindServiceCreated, ownerID, s.ID)
	msg.ClientID = s.ClientID
	msg.Date = s.Date
	l.publish(ctx, msg)
	return s, nil, nil
}

// UpdateService replaces an existing entry's fields, recomputing the total.
func (l *Ledger) UpdateService(ctx context.Context, ownerID, id string, draft ServiceDraft) (core.Service, []string, error) {
	s, verrs, err := l.prepareService(ctx, ownerID, draft)
	if verrs != nil || err != nil {
		return core.Service{}, verrs, err
	}

	s.ID = id
	s.OwnerID = ownerID

	updated, err := l.store.UpdateService(ctx, s)
	if err != nil {
		return core.Service{}, nil, err
	}

	msg := amqp.NewMutationMessage(amqp.KindServiceUpdated, ownerID, id)
	msg.ClientID = updated.ClientID
	msg.Date = updated.Date
	l.publish(ctx, msg)
	return updated, nil, nil
}

func (l *Ledger) DeleteService(ctx context.Context, ownerID, id string) error {
	s, err := l.store.GetService(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := l.store.DeleteService(ctx, ownerID, id); err != nil {
		return err
	}

	msg := amqp.NewMutationMessage(amqp.KindServiceDeleted, ownerID, id)
	msg.ClientID = s.ClientID
	msg.Date = s.Date
	l.publish(ctx, msg)
	return nil
}

func (l *Ledger) prepareService(ctx context.Context, ownerID string, draft ServiceDraft) (core.Service, []string, error) {
	in := core.ServiceInput{
		Date:       draft.Date,
		ClientID:   draft.ClientID,
		TimeWorked: draft.TimeWorked,
		HourlyRate: draft.HourlyRate,
		Total:      core.ComputeTotal(draft.TimeWorked, draft.HourlyRate),
	}
	s, verrs := core.ValidateService(in)
	if verrs != nil {
		return core.Service{}, verrs, nil
	}

	// The referenced client must be the owner's. An archived client can
	// no longer receive new entries.
	client, err := l.store.GetClient(ctx, ownerID, s.ClientID)
	if err != nil {
		return core.Service{}, nil, err
	}
	if client.Archived {
		return core.Service{}, []string{"Please select a client"}, nil
	}
	return s, nil, nil
}

func (l *Ledger) publish(ctx context.Context, msg *amqp.MutationMessage) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishMutation(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish mutation event",
			"kind", msg.Kind,
			"entity_id", msg.EntityID,
			"error", err)
	}
}
