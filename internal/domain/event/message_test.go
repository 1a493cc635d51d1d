package event

import (
	"errors"
	"testing"
	"time"
)

func TestParseMessage(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    Message
		wantErr bool
	}{
		{
			name:    "upload",
			payload: `{"user":"alice","type":"upload","image_uuid":"123"}`,
			want:    Message{User: "alice", Type: "upload", ImageUUID: strPtr("123")},
		},
		{
			name:    "buy with amount",
			payload: `{"user":"bob","type":"buy","image_uuid":"123","amount":25}`,
			want:    Message{User: "bob", Type: "buy", ImageUUID: strPtr("123"), Amount: intPtr(25)},
		},
		{
			name:    "transfer",
			payload: `{"user":"alice","type":"transfer","target":"bob"}`,
			want:    Message{User: "alice", Type: "transfer", Target: strPtr("bob")},
		},
		{
			name:    "extra fields ignored",
			payload: `{"user":"alice","type":"upload","color":"red"}`,
			want:    Message{User: "alice", Type: "upload"},
		},
		{
			name:    "empty type is not malformed",
			payload: `{"user":"alice","type":""}`,
			want:    Message{User: "alice", Type: ""},
		},
		{
			name:    "null type",
			payload: `{"user":"alice","type":null}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `not json at all`,
			wantErr: true,
		},
		{
			name:    "wrong amount type",
			payload: `{"user":"alice","type":"buy","amount":"lots"}`,
			wantErr: true,
		},
		{
			name:    "missing user",
			payload: `{"type":"upload"}`,
			wantErr: true,
		},
		{
			name:    "missing type",
			payload: `{"user":"alice"}`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: ``,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMessage([]byte(tc.payload))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("error %v is not ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.User != tc.want.User || got.Type != tc.want.Type {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
			if !eqPtr(got.ImageUUID, tc.want.ImageUUID) || !eqPtr(got.Target, tc.want.Target) {
				t.Errorf("optional string fields: got %+v, want %+v", got, tc.want)
			}
			if (got.Amount == nil) != (tc.want.Amount == nil) ||
				(got.Amount != nil && *got.Amount != *tc.want.Amount) {
				t.Errorf("amount: got %+v, want %+v", got.Amount, tc.want.Amount)
			}
		})
	}
}

func TestMessageEventTypeMapping(t *testing.T) {
	cases := []struct {
		wireType string
		want     Type
		known    bool
	}{
		{"upload", TypeUpload, true},
		{"buy", TypeBuy, true},
		{"transfer", TypeTransfer, true},
		{"sell", TypeUpload, false},
		{"", TypeUpload, false},
		{"UPLOAD", TypeUpload, false}, // match is case-sensitive
		{"Buy", TypeUpload, false},
	}

	now := time.Now()
	for _, tc := range cases {
		m := Message{User: "alice", Type: tc.wireType}
		if got := m.Event(now).EventType; got != tc.want {
			t.Errorf("type %q: got %v, want %v", tc.wireType, got, tc.want)
		}
		if got := m.KnownType(); got != tc.known {
			t.Errorf("KnownType(%q): got %v, want %v", tc.wireType, got, tc.known)
		}
	}
}

func TestMessageEventUsesIngestionTime(t *testing.T) {
	now := time.Date(2024, 6, 24, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	m := Message{User: "alice", Type: "buy", Amount: intPtr(25)}
	e := m.Event(now)

	if !e.EventDate.Equal(now) {
		t.Errorf("event date %v, want %v", e.EventDate, now)
	}
	if e.EventDate.Location() != time.UTC {
		t.Errorf("event date not normalized to UTC: %v", e.EventDate)
	}
	if e.Actor != "alice" || e.EventType != TypeBuy || e.Amount == nil || *e.Amount != 25 {
		t.Errorf("unexpected event %+v", e)
	}
	if e.ID != 0 {
		t.Errorf("id must be unset before insert, got %d", e.ID)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int64) *int64   { return &n }

func eqPtr(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
