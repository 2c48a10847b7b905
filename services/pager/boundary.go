package pager

import "math"

// Direction is the scroll direction at the moment a boundary was observed.
type Direction int

const (
	Still Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "still"
	}
}

// ParseDirection accepts "forward"/"down" and "backward"/"up".
func ParseDirection(s string) Direction {
	switch s {
	case "forward", "down":
		return Forward
	case "backward", "up":
		return Backward
	default:
		return Still
	}
}

// Boundary reports how far the end-of-list sentinel is from the viewport edge.
// Both scroll-position and intersection style detection reduce to it.
type Boundary struct {
	Distance  int       `json:"distance"`
	Direction Direction `json:"direction"`
}

// ScrollBoundary derives a boundary from raw scroll positions.
func ScrollBoundary(scrollY, lastScrollY, viewportHeight, contentHeight int) Boundary {
	dir := Still
	switch {
	case scrollY > lastScrollY:
		dir = Forward
	case scrollY < lastScrollY:
		dir = Backward
	}
	distance := contentHeight - (scrollY + viewportHeight)
	if distance < 0 {
		distance = 0
	}
	return Boundary{Distance: distance, Direction: dir}
}

// IntersectionBoundary maps an intersection observer callback. The observer's
// root margin already encodes the proximity, so intersecting means "close enough".
func IntersectionBoundary(intersecting bool) Boundary {
	if intersecting {
		return Boundary{Distance: 0, Direction: Forward}
	}
	return Boundary{Distance: math.MaxInt, Direction: Forward}
}
