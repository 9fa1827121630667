package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type AgentID string

// AvatarPalette is the fixed set of colors an agent avatar is drawn from.
var AvatarPalette = [...]string{
	"#6366f1", // indigo
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#ef4444", // red
	"#f97316", // orange
	"#eab308", // yellow
	"#22c55e", // green
	"#06b6d4", // cyan
	"#3b82f6", // blue
}

type Agent struct {
	ID               AgentID
	Name             string
	Role             string
	Goal             string
	Backstory        string
	AvatarColor      string
	CreatedAt        time.Time
	LastInteractedAt time.Time
}

func IsPaletteColor(color string) bool {
	for _, c := range AvatarPalette {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

// Initials returns the upper-cased first letters of the first two words of the name.
func (a Agent) Initials() string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(a.Name) {
		if count == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		count++
	}
	return b.String()
}
