package difficulty

import (
	"fmt"
	"strings"
)

// Level is an ordered difficulty level.
type Level int

const (
	Easy Level = iota
	Medium
	Hard
)

// All lists the levels from easiest to hardest.
var All = []Level{Easy, Medium, Hard}

func (l Level) String() string {
	switch l {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Parse accepts a level name in any case.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Easy && l <= Hard
}

// Up returns the next harder level, clamped at Hard.
func (l Level) Up() Level {
	if l >= Hard {
		return Hard
	}
	return l + 1
}

// Down returns the next easier level, clamped at Easy.
func (l Level) Down() Level {
	if l <= Easy {
		return Easy
	}
	return l - 1
}

// XPMultiplier scales quiz XP: 1 for Easy, 2 for Medium, 3 for Hard.
func (l Level) XPMultiplier() int {
	if !l.Valid() {
		return 1
	}
	return int(l) + 1
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(l))
	}
	return []byte(strings.ToLower(l.String())), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
