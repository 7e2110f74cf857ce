package models

import "strings"

// UserProfile is a guild-scoped snapshot of a player, refreshed (last write
// wins) every time the player scores.
type UserProfile struct {
	ID          string `json:"id"`
	GuildID     string `json:"guild_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	BannerURL   string `json:"banner_url,omitempty"`
}

// EffectiveName returns the name shown in rankings and user info.
func (p *UserProfile) EffectiveName() string {
	if p == nil {
		return "Unknown user"
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Username != "" {
		return p.Username
	}
	return "Unknown user"
}

// Emoji is a guild custom emoji used for game reactions. Identifier is the
// message form ("<:leet:1234567890>"), which is also what content matching
// compares against.
type Emoji struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	ImageURL   string `json:"image_url,omitempty"`
}

// GuildProfile holds the guild metadata the game needs, kept fresh by the
// guild sync service.
type GuildProfile struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	IconURL string  `json:"icon_url,omitempty"`
	Emojis  []Emoji `json:"emojis,omitempty"`
}

// Emoji looks up a configured emoji by name, case-insensitively.
func (g *GuildProfile) Emoji(name string) (Emoji, bool) {
	for _, e := range g.Emojis {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Emoji{}, false
}
