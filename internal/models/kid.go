package models

// AgeBracket is the coarse age range picked when creating a child profile
type AgeBracket string

const (
	AgeFiveToSeven    AgeBracket = "5-7"
	AgeEightToTen     AgeBracket = "8-10"
	AgeElevenToTwelve AgeBracket = "11-12"
)

// AgeBrackets lists the selectable brackets in display order
var AgeBrackets = []AgeBracket{AgeFiveToSeven, AgeEightToTen, AgeElevenToTwelve}

// Valid reports whether a is one of AgeBrackets
func (a AgeBracket) Valid() bool {
	for _, b := range AgeBrackets {
		if a == b {
			return true
		}
	}
	return false
}

// Avatars is the fixed palette a child avatar is chosen from
var Avatars = []string{
	"🧒", "👧", "🧒🏻", "👧🏻", "🧒🏼", "👧🏼",
	"🧒🏽", "👧🏽", "🧒🏾", "👧🏾", "🧒🏿", "👧🏿",
}

// IsAvatar reports whether s is in the palette
func IsAvatar(s string) bool {
	for _, a := range Avatars {
		if s == a {
			return true
		}
	}
	return false
}

// ChildProfile is a child managed by a parent account
type ChildProfile struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Age    AgeBracket `json:"age"`
	Avatar string     `json:"avatar"`
}
