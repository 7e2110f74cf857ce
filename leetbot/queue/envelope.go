// Package queue moves inbound message events through SQS between the gateway
// listener and the batch runner.
package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/Misacorp/leetbot/leetbot/game"
)

// Kind discriminates envelope variants explicitly. Test envelopes are built
// by ops tooling and carry override flags; the consumer treats both the same
// way after unwrapping.
type Kind string

const (
	KindMessage Kind = "message"
	KindTest    Kind = "test"
)

var ErrInvalidEnvelope = errors.New("invalid envelope")

// InboundEvent is the wire form of one chat message.
type InboundEvent struct {
	ID               string `json:"id"`
	GuildID          string `json:"guildId"`
	UserID           string `json:"userId"`
	Username         string `json:"username"`
	DisplayName      string `json:"displayName,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	BannerURL        string `json:"bannerUrl,omitempty"`
	Content          string `json:"content"`
	CreatedAtEpochMs int64  `json:"createdAtEpochMs"`
	ChannelID        string `json:"channelId"`
}

// Envelope is one queued unit of work.
type Envelope struct {
	Kind      Kind            `json:"kind"`
	Event     InboundEvent    `json:"event"`
	Overrides *game.Overrides `json:"overrides,omitempty"`
}

// Validate rejects envelopes the resolver could not act on. Malformed
// envelopes are skipped and logged, never retried.
func (e Envelope) Validate() error {
	if e.Kind != KindMessage && e.Kind != KindTest {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEnvelope, e.Kind)
	}
	if e.Event.ID == "" || e.Event.GuildID == "" || e.Event.UserID == "" || e.Event.ChannelID == "" {
		return fmt.Errorf("%w: missing identifier fields", ErrInvalidEnvelope)
	}
	if e.Event.CreatedAtEpochMs <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEnvelope)
	}
	return nil
}

// ToMessage unwraps the envelope for the resolver. Override flags only ever
// come from test envelopes.
func (e Envelope) ToMessage() game.InboundMessage {
	msg := game.InboundMessage{
		ID:          e.Event.ID,
		GuildID:     e.Event.GuildID,
		UserID:      e.Event.UserID,
		Username:    e.Event.Username,
		DisplayName: e.Event.DisplayName,
		AvatarURL:   e.Event.AvatarURL,
		BannerURL:   e.Event.BannerURL,
		ChannelID:   e.Event.ChannelID,
		Content:     e.Event.Content,
		CreatedAt:   time.UnixMilli(e.Event.CreatedAtEpochMs),
	}
	if e.Kind == KindTest && e.Overrides != nil {
		msg.Overrides = *e.Overrides
	}
	return msg
}
