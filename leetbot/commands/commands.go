package commands

import "github.com/disgoorg/disgo/discord"

var Commands = []discord.ApplicationCommandCreate{
	Leaderboard,
	UserInfo,
	Version,
}

const (
	colorSuccess = 0x57F287
	colorInfo    = 0x5865F2
	colorError   = 0xED4245
)

func ptr[T any](v T) *T {
	return &v
}
