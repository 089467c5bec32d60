package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/payloadregistry"
)

// RegisterPayloads registers the graph entity payload with the
// supplied registry. Called from the binary's bootstrap.
func RegisterPayloads(reg *payloadregistry.Registry) error {
	return reg.Register(&payloadregistry.Registration{
		Domain:      "graph",
		Category:    "entity",
		Version:     "v1",
		Description: "Entity payload carrying merge and provenance triples for graph ingestion",
		Factory:     func() any { return &IngestPayload{} },
	})
}

// EntityType is the message type for graph entity payloads.
var EntityType = message.Type{Domain: "graph", Category: "entity", Version: "v1"}

// IngestPayload implements message.Payload for entity ingestion. One
// payload carries every triple for a single subject IRI.
type IngestPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (p *IngestPayload) EntityID() string          { return p.EntityID_ }
func (p *IngestPayload) Triples() []message.Triple { return p.TripleData }
func (p *IngestPayload) Schema() message.Type      { return EntityType }

func (p *IngestPayload) Validate() error {
	if p.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	return nil
}

func (p *IngestPayload) MarshalJSON() ([]byte, error) {
	type Alias IngestPayload
	return json.Marshal((*Alias)(p))
}

func (p *IngestPayload) UnmarshalJSON(data []byte) error {
	type Alias IngestPayload
	return json.Unmarshal(data, (*Alias)(p))
}
