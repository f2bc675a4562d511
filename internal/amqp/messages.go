package amqp

import (
	"encoding/json"
	"time"
)

// Mutation kinds routed through the mirror queue.
const (
	KindServiceCreated = "service.created"
	KindServiceUpdated = "service.updated"
	KindServiceDeleted = "service.deleted"
	KindClientCreated  = "client.created"
	KindClientUpdated  = "client.updated"
	KindClientArchived = "client.archived"
)

// MutationMessage is the compact event published after a confirmed write.
// The worker fetches current state from storage; the message only says
// what changed and which month it touched.
type MutationMessage struct {
	Kind      string    `json:"kind"`
	OwnerID   string    `json:"owner_id"`
	EntityID  string    `json:"entity_id"`
	ClientID  string    `json:"client_id,omitempty"`
	Date      string    `json:"date,omitempty"` // YYYY-MM-DD for service mutations
	Timestamp time.Time `json:"timestamp"`
}

func NewMutationMessage(kind, ownerID, entityID string) *MutationMessage {
	return &MutationMessage{
		Kind:      kind,
		OwnerID:   ownerID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
