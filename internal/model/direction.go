package model

import (
	"fmt"
	"strings"
)

// Direction is a navigation step through an ordered set of dates.
// Keep these values stable; they appear in API responses.
type Direction string

const (
	DirectionNext Direction = "NEXT"
	DirectionPrev Direction = "PREV"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next":
		return DirectionNext, nil
	case "prev", "previous":
		return DirectionPrev, nil
	default:
		return "", fmt.Errorf("invalid direction %q, expected next or prev", s)
	}
}

// Opposite returns the step that undoes d.
func (d Direction) Opposite() Direction {
	if d == DirectionNext {
		return DirectionPrev
	}
	return DirectionNext
}
