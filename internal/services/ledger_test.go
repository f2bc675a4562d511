package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jvagarinho/Domestik/internal/amqp"
	"github.com/Jvagarinho/Domestik/internal/core"
	"github.com/Jvagarinho/Domestik/internal/gateway"
	"github.com/Jvagarinho/Domestik/internal/idx"
)

type fakeStore struct {
	clients  map[string]core.Client
	services map[string]core.Service
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:  make(map[string]core.Client),
		services: make(map[string]core.Service),
	}
}

func (f *fakeStore) ListClients(_ context.Context, ownerID string, includeArchived bool) ([]core.Client, error) {
	var out []core.Client
	for _, c := range f.clients {
		if c.OwnerID != ownerID || (c.Archived && !includeArchived) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetClient(_ context.Context, ownerID, id string) (core.Client, error) {
	c, ok := f.clients[id]
	if !ok || c.OwnerID != ownerID {
		return core.Client{}, gateway.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) InsertClient(_ context.Context, c core.Client) error {
	f.clients[c.ID] = c
	return nil
}

func (f *fakeStore) UpdateClient(_ context.Context, c core.Client) (core.Client, error) {
	old, ok := f.clients[c.ID]
	if !ok || old.OwnerID != c.OwnerID {
		return core.Client{}, gateway.ErrNotFound
	}
	old.Name, old.Color = c.Name, c.Color
	f.clients[c.ID] = old
	return old, nil
}

func (f *fakeStore) ArchiveClient(_ context.Context, ownerID, id string) (core.Client, error) {
	c, ok := f.clients[id]
	if !ok || c.OwnerID != ownerID {
		return core.Client{}, gateway.ErrNotFound
	}
	c.Archived = true
	f.clients[id] = c
	return c, nil
}

func (f *fakeStore) ListServices(_ context.Context, ownerID string, filter gateway.ServiceFilter) ([]core.Service, error) {
	var out []core.Service
	for _, s := range f.services {
		if s.OwnerID != ownerID {
			continue
		}
		if filter.ClientID != "" && s.ClientID != filter.ClientID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) GetService(_ context.Context, ownerID, id string) (core.Service, error) {
	s, ok := f.services[id]
	if !ok || s.OwnerID != ownerID {
		return core.Service{}, gateway.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) InsertService(_ context.Context, s core.Service) error {
	f.services[s.ID] = s
	return nil
}

func (f *fakeStore) UpdateService(_ context.Context, s core.Service) (core.Service, error) {
	old, ok := f.services[s.ID]
	if !ok || old.OwnerID != s.OwnerID {
		return core.Service{}, gateway.ErrNotFound
	}
	s.CreatedAt = old.CreatedAt
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeStore) DeleteService(_ context.Context, ownerID, id string) error {
	s, ok := f.services[id]
	if !ok || s.OwnerID != ownerID {
		return gateway.ErrNotFound
	}
	delete(f.services, id)
	return nil
}

type recordingPublisher struct {
	messages []*amqp.MutationMessage
	err      error
}

func (p *recordingPublisher) PublishMutation(_ context.Context, msg *amqp.MutationMessage) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestCreateClient(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	ledger := NewLedger(store, pub)
	owner := idx.New()

	c, verrs, err := ledger.CreateClient(context.Background(), owner, core.ClientInput{Name: " Maria Silva "})
	require.NoError(t, err)
	require.Nil(t, verrs)

	assert.Equal(t, "Maria Silva", c.Name)
	assert.Equal(t, core.DefaultClientColor, c.Color)
	assert.Equal(t, owner, c.OwnerID)
	assert.True(t, idx.Valid(c.ID))
	assert.False(t, c.CreatedAt.IsZero())

	require.Len(t, pub.messages, 1)
	assert.Equal(t, amqp.KindClientCreated, pub.messages[0].Kind)
}

func TestCreateClientValidationBlocksWrite(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, &recordingPublisher{})

	_, verrs, err := ledger.CreateClient(context.Background(), idx.New(), core.ClientInput{Name: "A", Color: "red"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name must be at least 2 characters", "Invalid color format"}, verrs)
	assert.Empty(t, store.clients)
}

func TestCreateService(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	ledger := NewLedger(store, pub)
	owner := idx.New()

	client, _, err := ledger.CreateClient(context.Background(), owner, core.ClientInput{Name: "Maria Silva"})
	require.NoError(t, err)

	s, verrs, err := ledger.CreateService(context.Background(), owner, ServiceDraft{
		Date:       "2026-03-10",
		ClientID:   client.ID,
		TimeWorked: 3,
		HourlyRate: 50,
	})
	require.NoError(t, err)
	require.Nil(t, verrs)

	assert.Equal(t, 150.0, s.Total, "total must be computed server-side")
	assert.Equal(t, owner, s.OwnerID)

	require.Len(t, pub.messages, 2)
	assert.Equal(t, amqp.KindServiceCreated, pub.messages[1].Kind)
	assert.Equal(t, "2026-03-10", pub.messages[1].Date)
}

func TestCreateServiceRejectsForeignClient(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, nil)
	owner, stranger := idx.New(), idx.New()

	client, _, err := ledger.CreateClient(context.Background(), stranger, core.ClientInput{Name: "Not Yours"})
	require.NoError(t, err)

	_, _, err = ledger.CreateService(context.Background(), owner, ServiceDraft{
		Date:       "2026-03-10",
		ClientID:   client.ID,
		TimeWorked: 2,
		HourlyRate: 25,
	})
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestCreateServiceRejectsArchivedClient(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, nil)
	owner := idx.New()

	client, _, err := ledger.CreateClient(context.Background(), owner, core.ClientInput{Name: "Maria Silva"})
	require.NoError(t, err)
	_, err = ledger.ArchiveClient(context.Background(), owner, client.ID)
	require.NoError(t, err)

	_, verrs, err := ledger.CreateService(context.Background(), owner, ServiceDraft{
		Date:       "2026-03-10",
		ClientID:   client.ID,
		TimeWorked: 2,
		HourlyRate: 25,
	})
	require.NoError(t, err)
	assert.Contains(t, verrs, "Please select a client")
}

func TestUpdateServiceRecomputesTotal(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, nil)
	owner := idx.New()

	client, _, err := ledger.CreateClient(context.Background(), owner, core.ClientInput{Name: "Maria Silva"})
	require.NoError(t, err)
	s, _, err := ledger.CreateService(context.Background(), owner, ServiceDraft{
		Date: "2026-03-10", ClientID: client.ID, TimeWorked: 3, HourlyRate: 50,
	})
	require.NoError(t, err)

	updated, verrs, err := ledger.UpdateService(context.Background(), owner, s.ID, ServiceDraft{
		Date: "2026-03-11", ClientID: client.ID, TimeWorked: 4, HourlyRate: 50,
	})
	require.NoError(t, err)
	require.Nil(t, verrs)
	assert.Equal(t, 200.0, updated.Total)
	assert.Equal(t, "2026-03-11", updated.Date)
}

func TestDeleteService(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{}
	ledger := NewLedger(store, pub)
	owner := idx.New()

	client, _, err := ledger.CreateClient(context.Background(), owner, core.ClientInput{Name: "Maria Silva"})
	require.NoError(t, err)
	s, _, err := ledger.CreateService(context.Background(), owner, ServiceDraft{
		Date: "2026-03-10", ClientID: client.ID, TimeWorked: 3, HourlyRate: 50,
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteService(context.Background(), owner, s.ID))
	assert.Empty(t, store.services)

	last := pub.messages[len(pub.messages)-1]
	assert.Equal(t, amqp.KindServiceDeleted, last.Kind)
	assert.Equal(t, s.ClientID, last.ClientID)

	assert.ErrorIs(t, ledger.DeleteService(context.Background(), owner, s.ID), gateway.ErrNotFound)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	store := newFakeStore()
	pub := &recordingPublisher{err: assert.AnError}
	ledger := NewLedger(store, pub)

	c, verrs, err := ledger.CreateClient(context.Background(), idx.New(), core.ClientInput{Name: "Maria Silva"})
	require.NoError(t, err)
	require.Nil(t, verrs)
	assert.NotEmpty(t, store.clients)
	assert.NotEmpty(t, c.ID)
}
