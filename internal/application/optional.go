package application

import (
	"encoding/json"
	"fmt"

	"github.com/tiendazen/payment-service/internal/domain"
)

// OptionalPayload is the order context round-tripped through the
// gateway's opaque optional field. The locally persisted pending order
// is authoritative; this payload is only the fallback channel for a
// callback that arrives before (or without) a local order record.
type OptionalPayload struct {
	OwnerID *string           `json:"ownerId,omitempty"`
	Items   []domain.LineItem `json:"items"`
}

func (p OptionalPayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode optional payload: %w", err)
	}
	return string(raw), nil
}

func DecodeOptionalPayload(raw string) (*OptionalPayload, error) {
	if raw == "" {
		return nil, fmt.Errorf("optional payload is empty")
	}
	var p OptionalPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode optional payload: %w", err)
	}
	return &p, nil
}
