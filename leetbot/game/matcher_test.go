package game

import "testing"

const testEmoji = "<:leet:1234567890>"

func TestMatchesToken(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "exact token", content: "leet", want: true},
		{name: "uppercase token", content: "LEET", want: true},
		{name: "surrounding whitespace", content: "  leet \n", want: true},
		{name: "exact emoji", content: "<:leet:1234567890>", want: true},
		{name: "token inside a sentence", content: "oh no, leet", want: false},
		{name: "emoji inside a sentence", content: "late <:leet:1234567890>", want: false},
		{name: "trailing punctuation", content: "leet!", want: false},
		{name: "other token", content: "leeb", want: false},
		{name: "empty", content: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesToken(tt.content, TokenLeet, testEmoji); got != tt.want {
				t.Errorf("matchesToken(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestContainsToken(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{name: "exact token", content: "leet", want: true},
		{name: "exact emoji", content: "<:leet:1234567890>", want: true},
		{name: "emoji inside a sentence", content: "almost made it <:leet:1234567890>", want: true},
		// The bare word is only accepted alone; leniency covers the emoji.
		{name: "bare token inside a sentence", content: "oh no, leet", want: false},
		{name: "other token", content: "leeb", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsToken(tt.content, TokenLeet, testEmoji); got != tt.want {
				t.Errorf("containsToken(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestMatchesTokenNoEmojiConfigured(t *testing.T) {
	if matchesToken("<:leet:1234567890>", TokenLeet, "") {
		t.Error("matchesToken() accepted an emoji with none configured")
	}
	if !matchesToken("leet", TokenLeet, "") {
		t.Error("matchesToken() rejected the bare token with no emoji configured")
	}
}
