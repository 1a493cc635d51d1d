package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed marks a payload that cannot be decoded into a Message.
// Such messages are dropped by the consumer and never retried.
var ErrMalformed = errors.New("malformed message")

// Message is the wire shape published by the inventory service, one message
// per business event. Unknown extra fields are ignored.
type Message struct {
	User      string  `json:"user"`
	Type      string  `json:"type"`
	ImageUUID *string `json:"image_uuid"`
	Target    *string `json:"target"`
	Amount    *int64  `json:"amount"`
}

// ParseMessage decodes an inbound payload into a Message. A payload that is
// not valid JSON, or is missing the required user/type fields, fails with
// ErrMalformed. A present-but-unrecognized type string, including the empty
// one, is not malformed: it later defaults to TypeUpload.
func ParseMessage(payload []byte) (Message, error) {
	var raw struct {
		User      *string `json:"user"`
		Type      *string `json:"type"`
		ImageUUID *string `json:"image_uuid"`
		Target    *string `json:"target"`
		Amount    *int64  `json:"amount"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.User == nil || *raw.User == "" {
		return Message{}, fmt.Errorf("%w: missing user", ErrMalformed)
	}
	if raw.Type == nil {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	return Message{
		User:      *raw.User,
		Type:      *raw.Type,
		ImageUUID: raw.ImageUUID,
		Target:    raw.Target,
		Amount:    raw.Amount,
	}, nil
}

// KnownType reports whether the wire type maps onto the closed variant set.
// Messages with an unknown type are still ingested, defaulted to TypeUpload.
func (m Message) KnownType() bool {
	switch m.Type {
	case "upload", "buy", "transfer":
		return true
	}
	return false
}

// Event maps the message onto a persisted event. now is the ingestion time;
// any timestamp carried in the payload is ignored.
func (m Message) Event(now time.Time) Event {
	return Event{
		Actor:     m.User,
		EventDate: now.UTC(),
		EventType: typeFromWire(m.Type),
		Image:     m.ImageUUID,
		Amount:    m.Amount,
		Target:    m.Target,
	}
}

func typeFromWire(t string) Type {
	switch t {
	case "upload":
		return TypeUpload
	case "buy":
		return TypeBuy
	case "transfer":
		return TypeTransfer
	default:
		// Lenient by policy: unrecognized types are counted as uploads
		// instead of being rejected. The consumer logs a warning.
		return TypeUpload
	}
}
