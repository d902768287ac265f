package models

import "strings"

// Mood vocabulary accepted on journal entries and prompt categories.
const (
	MoodHappy       = "happy"
	MoodSad         = "sad"
	MoodExcited     = "excited"
	MoodPeaceful    = "peaceful"
	MoodAnxious     = "anxious"
	MoodGrateful    = "grateful"
	MoodReflective  = "reflective"
	MoodEnergetic   = "energetic"
	MoodOverwhelmed = "overwhelmed"
	MoodInsecure    = "insecure"
	MoodAngry       = "angry"
	MoodNumb        = "numb"
	MoodBurntOut    = "burnt_out"
	MoodLonely      = "lonely"
	MoodGeneral     = "general"
)

// Moods lists the vocabulary in display order.
var Moods = []string{
	MoodHappy, MoodSad, MoodExcited, MoodPeaceful, MoodAnxious,
	MoodGrateful, MoodReflective, MoodEnergetic, MoodOverwhelmed, MoodInsecure,
	MoodAngry, MoodNumb, MoodBurntOut, MoodLonely, MoodGeneral,
}

var moodLabels = map[string]string{
	MoodHappy:       "Happy",
	MoodSad:         "Sad",
	MoodExcited:     "Excited",
	MoodPeaceful:    "Peaceful",
	MoodAnxious:     "Anxious",
	MoodGrateful:    "Grateful",
	MoodReflective:  "Reflective",
	MoodEnergetic:   "Energetic",
	MoodOverwhelmed: "Overwhelmed",
	MoodInsecure:    "Insecure",
	MoodAngry:       "Angry",
	MoodNumb:        "Numb",
	MoodBurntOut:    "Burnt Out",
	MoodLonely:      "Lonely",
	MoodGeneral:     "General",
}

// IsValidMood reports whether m belongs to the vocabulary.
func IsValidMood(m string) bool {
	_, ok := moodLabels[m]
	return ok
}

// MoodLabel returns the human readable label for a mood. Unknown values
// are returned with underscores replaced and the first letter upper-cased.
func MoodLabel(m string) string {
	if label, ok := moodLabels[m]; ok {
		return label
	}
	s := strings.ReplaceAll(m, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
