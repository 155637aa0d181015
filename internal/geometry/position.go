// Package geometry provides the integer grid primitives the floor generator
// and the action engine are built on: positions, 4-neighborhoods, Manhattan
// distance, flood fill, and spiral search.
package geometry

// Position is a coordinate on a floor grid. Equality and map-key hashing are
// structural since it is a comparable value type.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the component-wise sum of two positions.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// ManhattanDistance returns |dx| + |dy| between two positions.
func ManhattanDistance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// CardinalDirections is the 4-neighborhood used for movement and flood fill:
// up, down, left, right.
var CardinalDirections = []Position{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// DirectionVector maps a movement command to its grid offset.
func DirectionVector(dir string) (Position, bool) {
	switch dir {
	case "up":
		return Position{X: 0, Y: -1}, true
	case "down":
		return Position{X: 0, Y: 1}, true
	case "left":
		return Position{X: -1, Y: 0}, true
	case "right":
		return Position{X: 1, Y: 0}, true
	}
	return Position{}, false
}

// FloodFill returns every position reachable from start through 4-connected
// steps where passable reports true. The start itself is included only when
// passable.
func FloodFill(start Position, width, height int, passable func(Position) bool) []Position {
	if !inBounds(start, width, height) || !passable(start) {
		return nil
	}

	visited := make(map[Position]bool, width*height/2)
	area := make([]Position, 0, width*height/2)
	stack := []Position{start}

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[pos] {
			continue
		}
		visited[pos] = true
		area = append(area, pos)

		for _, dir := range CardinalDirections {
			next := pos.Add(dir)
			if inBounds(next, width, height) && !visited[next] && passable(next) {
				stack = append(stack, next)
			}
		}
	}

	return area
}

// SpiralSearch walks outward from center in expanding square rings and returns
// the first position for which ok reports true. The center itself is checked
// first. Returns false when no position within the grid qualifies.
func SpiralSearch(center Position, width, height int, ok func(Position) bool) (Position, bool) {
	if inBounds(center, width, height) && ok(center) {
		return center, true
	}

	maxRadius := max(width, height)
	for radius := 1; radius < maxRadius; radius++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue // ring edge only
				}
				candidate := Position{X: center.X + dx, Y: center.Y + dy}
				if inBounds(candidate, width, height) && ok(candidate) {
					return candidate, true
				}
			}
		}
	}
	return Position{}, false
}

func inBounds(p Position, width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
