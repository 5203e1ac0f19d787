package types

import "fmt"

// Mood is the fixed emotional-tone tag attached to every message.
type Mood string

const (
	MoodHappy      Mood = "happy"
	MoodExcited    Mood = "excited"
	MoodNeutral    Mood = "neutral"
	MoodCalm       Mood = "calm"
	MoodSad        Mood = "sad"
	MoodFrustrated Mood = "frustrated"
	MoodAngry      Mood = "angry"
)

// AllMoods lists every valid mood, ordered from most to least positive.
var AllMoods = []Mood{
	MoodHappy, MoodExcited, MoodCalm, MoodNeutral,
	MoodSad, MoodFrustrated, MoodAngry,
}

// moodScale assigns each mood a numeric intensity used by the conflict
// analyzer to detect escalation (drops) and de-escalation (rises).
var moodScale = map[Mood]int{
	MoodHappy:      7,
	MoodExcited:    6,
	MoodCalm:       5,
	MoodNeutral:    4,
	MoodSad:        3,
	MoodFrustrated: 2,
	MoodAngry:      1,
}

// moodColors maps moods to hex colors for visualization payloads.
var moodColors = map[Mood]string{
	MoodHappy:      "#4ade80",
	MoodExcited:    "#22c55e",
	MoodNeutral:    "#fbbf24",
	MoodCalm:       "#fde047",
	MoodSad:        "#fb923c",
	MoodFrustrated: "#f87171",
	MoodAngry:      "#ef4444",
}

// ParseMood validates a mood tag. It fails with VALIDATION_ERROR for
// anything outside the fixed enumerated set.
func ParseMood(s string) (Mood, error) {
	m := Mood(s)
	if _, ok := moodScale[m]; !ok {
		return "", NewError(ErrValidation, fmt.Sprintf("invalid mood %q", s))
	}
	return m, nil
}

// IsValid reports whether the mood belongs to the enumerated set.
func (m Mood) IsValid() bool {
	_, ok := moodScale[m]
	return ok
}

// Scale returns the numeric intensity of the mood (7 = happy, 1 = angry).
// Unknown moods rank as neutral.
func (m Mood) Scale() int {
	if v, ok := moodScale[m]; ok {
		return v
	}
	return moodScale[MoodNeutral]
}

// Color returns the visualization color for the mood. Unknown moods get
// a gray fallback.
func (m Mood) Color() string {
	if c, ok := moodColors[m]; ok {
		return c
	}
	return "#9ca3af"
}
