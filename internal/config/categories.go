package config

// CategoryWeights orders command categories in /help.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"⚽ Matchday":     10,
	"📋 Roster":       20,
	"🔊 Voice":        30,
	"🎵 Music":        40,
}
