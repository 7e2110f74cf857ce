// Package notifier sends game acknowledgements back to their source messages
// as Discord reactions.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// DiscordNotifier reacts to messages through the bot's REST client. The bool
// return mirrors the collaborator contract: false with a nil error never
// happens here, a rejected send surfaces as an error.
type DiscordNotifier struct {
	client bot.Client
}

func New(client bot.Client) *DiscordNotifier {
	return &DiscordNotifier{client: client}
}

func (n *DiscordNotifier) SendAcknowledgement(ctx context.Context, messageID, channelID, symbol string) (bool, error) {
	channel, err := snowflake.Parse(channelID)
	if err != nil {
		return false, fmt.Errorf("invalid channel id %q: %w", channelID, err)
	}
	message, err := snowflake.Parse(messageID)
	if err != nil {
		return false, fmt.Errorf("invalid message id %q: %w", messageID, err)
	}

	if err := n.client.Rest().AddReaction(channel, message, reactionEmoji(symbol), rest.WithCtx(ctx)); err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}
	return true, nil
}

// reactionEmoji converts a message-form custom emoji ("<:leet:123>" or
// "<a:leet:123>") into the "name:id" form the reaction endpoint wants.
// Unicode emoji pass through unchanged.
func reactionEmoji(symbol string) string {
	if !strings.HasPrefix(symbol, "<") || !strings.HasSuffix(symbol, ">") {
		return symbol
	}
	s := strings.Trim(symbol, "<>")
	s = strings.TrimPrefix(s, "a")
	return strings.TrimPrefix(s, ":")
}
