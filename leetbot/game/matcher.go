package game

import (
	"errors"
	"strings"
)

const (
	TokenLeet = "leet"
	TokenLeeb = "leeb"
)

// ErrEmojiNotConfigured means the guild profile has no custom emoji for a
// token an evaluator requires. A configuration problem, not a rejection.
var ErrEmojiNotConfigured = errors.New("guild has no emoji configured for token")

func normalizeContent(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchesToken reports whether the content is exactly the token or exactly
// the guild's emoji for it. The on-time evaluators use this strict form.
func matchesToken(content, token, emojiIdentifier string) bool {
	c := normalizeContent(content)
	if c == token {
		return true
	}
	return emojiIdentifier != "" && c == strings.ToLower(emojiIdentifier)
}

// containsToken additionally accepts the emoji anywhere in the content. Only
// the off-window evaluator is this lenient; the asymmetry with matchesToken
// is deliberate and load-bearing.
func containsToken(content, token, emojiIdentifier string) bool {
	c := normalizeContent(content)
	if c == token {
		return true
	}
	return emojiIdentifier != "" && strings.Contains(c, strings.ToLower(emojiIdentifier))
}
