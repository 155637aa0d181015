package geometry

// LCarve visits every cell on the L-shaped path between a and b and calls
// carve on each. With horizontalFirst the elbow is at (b.X, a.Y), otherwise
// at (a.X, b.Y). Carving both legs inclusive guarantees the endpoints join.
func LCarve(a, b Position, horizontalFirst bool, carve func(Position)) {
	if horizontalFirst {
		carveHorizontal(a.X, b.X, a.Y, carve)
		carveVertical(a.Y, b.Y, b.X, carve)
	} else {
		carveVertical(a.Y, b.Y, a.X, carve)
		carveHorizontal(a.X, b.X, b.Y, carve)
	}
}

func carveHorizontal(x1, x2, y int, carve func(Position)) {
	lo, hi := min(x1, x2), max(x1, x2)
	for x := lo; x <= hi; x++ {
		carve(Position{X: x, Y: y})
	}
}

func carveVertical(y1, y2, x int, carve func(Position)) {
	lo, hi := min(y1, y2), max(y1, y2)
	for y := lo; y <= hi; y++ {
		carve(Position{X: x, Y: y})
	}
}
