package world

import (
	"fmt"
	"strings"

	"github.com/l1jgo/gridworld/internal/errors"
)

// Location is one grid cell.
type Location struct {
	Map string `json:"map"`
	X   int    `json:"x"`
	Y   int    `json:"y"`
}

// RoomKey is the broadcast room of the cell: "{map}_{y}_{x}".
func (l Location) RoomKey() string {
	return fmt.Sprintf("%s_%d_%d", l.Map, l.Y, l.X)
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%d,%d)", l.Map, l.X, l.Y)
}

// Direction is one of the four grid axes. North decreases y.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

var Directions = [...]Direction{North, South, East, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return "nowhere"
}

// ParseDirection accepts "n", "north", "N" and so on.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "n", "north", "up":
		return North, true
	case "s", "south", "down":
		return South, true
	case "e", "east", "right":
		return East, true
	case "w", "west", "left":
		return West, true
	}
	return 0, false
}

// Step returns the neighbouring cell in direction d.
func (l Location) Step(d Direction) Location {
	switch d {
	case North:
		l.Y--
	case South:
		l.Y++
	case East:
		l.X++
	case West:
		l.X--
	}
	return l
}

// ValidateStep checks that to is exactly one step from from on one axis.
func ValidateStep(from, to Location) error {
	if from.Map != to.Map {
		return errors.Validationf("cannot walk from %s to %s", from.Map, to.Map)
	}
	dx, dy := abs(to.X-from.X), abs(to.Y-from.Y)
	if dx+dy != 1 {
		return errors.Validation("You can only move one step north, south, east or west.")
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
