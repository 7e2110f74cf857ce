package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Misacorp/leetbot/leetbot/game"
)

func validEvent() InboundEvent {
	return InboundEvent{
		ID:               "m1",
		GuildID:          "g1",
		UserID:           "u1",
		Username:         "tester",
		Content:          "leet",
		CreatedAtEpochMs: 1714995420000,
		ChannelID:        "c1",
	}
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Envelope)
		wantErr bool
	}{
		{name: "valid message", mutate: func(*Envelope) {}},
		{name: "valid test", mutate: func(e *Envelope) { e.Kind = KindTest }},
		{name: "unknown kind", mutate: func(e *Envelope) { e.Kind = "broadcast" }, wantErr: true},
		{name: "empty kind", mutate: func(e *Envelope) { e.Kind = "" }, wantErr: true},
		{name: "missing message id", mutate: func(e *Envelope) { e.Event.ID = "" }, wantErr: true},
		{name: "missing guild id", mutate: func(e *Envelope) { e.Event.GuildID = "" }, wantErr: true},
		{name: "missing user id", mutate: func(e *Envelope) { e.Event.UserID = "" }, wantErr: true},
		{name: "missing channel id", mutate: func(e *Envelope) { e.Event.ChannelID = "" }, wantErr: true},
		{name: "missing timestamp", mutate: func(e *Envelope) { e.Event.CreatedAtEpochMs = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelope := Envelope{Kind: KindMessage, Event: validEvent()}
			tt.mutate(&envelope)

			err := envelope.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEnvelope) {
				t.Errorf("Validate() error = %v, want ErrInvalidEnvelope", err)
			}
		})
	}
}

func TestEnvelopeToMessage(t *testing.T) {
	envelope := Envelope{Kind: KindMessage, Event: validEvent()}
	msg := envelope.ToMessage()

	if msg.ID != "m1" || msg.GuildID != "g1" || msg.UserID != "u1" || msg.ChannelID != "c1" {
		t.Errorf("ToMessage() identity = %+v", msg)
	}
	if want := time.UnixMilli(1714995420000); !msg.CreatedAt.Equal(want) {
		t.Errorf("ToMessage().CreatedAt = %v, want %v", msg.CreatedAt, want)
	}
}

func TestEnvelopeOverridesOnlyForTestKind(t *testing.T) {
	overrides := &game.Overrides{SkipUniquenessCheck: true, AlwaysAllowLeet: true}

	regular := Envelope{Kind: KindMessage, Event: validEvent(), Overrides: overrides}
	if msg := regular.ToMessage(); msg.Overrides != (game.Overrides{}) {
		t.Errorf("message envelope carried overrides through: %+v", msg.Overrides)
	}

	test := Envelope{Kind: KindTest, Event: validEvent(), Overrides: overrides}
	if msg := test.ToMessage(); !msg.Overrides.SkipUniquenessCheck || !msg.Overrides.AlwaysAllowLeet {
		t.Errorf("test envelope dropped overrides: %+v", msg.Overrides)
	}
}

func TestEnvelopeWireFormat(t *testing.T) {
	raw := `{
		"kind": "test",
		"event": {
			"id": "m1",
			"guildId": "g1",
			"userId": "u1",
			"username": "tester",
			"content": "leet",
			"createdAtEpochMs": 1714995420000,
			"channelId": "c1"
		},
		"overrides": {"skipUniquenessCheck": true}
	}`

	var envelope Envelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := envelope.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if envelope.Kind != KindTest {
		t.Errorf("Kind = %q, want test", envelope.Kind)
	}
	if envelope.Overrides == nil || !envelope.Overrides.SkipUniquenessCheck {
		t.Errorf("Overrides = %+v, want skipUniquenessCheck true", envelope.Overrides)
	}
}
