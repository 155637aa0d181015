package entity

import "github.com/towerspire/server/internal/geometry"

// Room is a rectangular open area carved into a floor. X and Y are the
// top-left corner.
type Room struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the room's center cell.
func (r Room) Center() geometry.Position {
	return geometry.Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Intersects reports whether two rooms overlap, with a one-cell margin so
// adjacent rooms keep a wall between them.
func (r Room) Intersects(other Room) bool {
	return r.X-1 < other.X+other.Width &&
		r.X+r.Width+1 > other.X &&
		r.Y-1 < other.Y+other.Height &&
		r.Y+r.Height+1 > other.Y
}

// Contains reports whether a position lies inside the room.
func (r Room) Contains(p geometry.Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}
