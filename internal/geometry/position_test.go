package geometry

import "testing"

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		a, b Position
		want int
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{1, 2}, Position{4, 6}, 7},
		{Position{4, 6}, Position{1, 2}, 7},
		{Position{-2, 3}, Position{2, -3}, 10},
	}
	for _, tt := range tests {
		if got := ManhattanDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("ManhattanDistance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDirectionVector(t *testing.T) {
	up, ok := DirectionVector("up")
	if !ok || up != (Position{0, -1}) {
		t.Errorf("up = %v, ok=%v", up, ok)
	}
	if _, ok := DirectionVector("diagonal"); ok {
		t.Error("expected unknown direction to be rejected")
	}
}

func TestFloodFillRespectsWalls(t *testing.T) {
	// 5x5 grid with a vertical wall at x=2 splitting it in two.
	passable := func(p Position) bool { return p.X != 2 }

	area := FloodFill(Position{0, 0}, 5, 5, passable)
	if len(area) != 10 {
		t.Fatalf("expected 10 reachable cells on the left half, got %d", len(area))
	}
	for _, p := range area {
		if p.X >= 2 {
			t.Errorf("flood fill crossed the wall: %v", p)
		}
	}
}

func TestFloodFillFromBlockedStart(t *testing.T) {
	passable := func(p Position) bool { return false }
	if area := FloodFill(Position{1, 1}, 3, 3, passable); area != nil {
		t.Errorf("expected nil area from blocked start, got %v", area)
	}
}

func TestSpiralSearchFindsNearest(t *testing.T) {
	target := Position{4, 2}
	got, ok := SpiralSearch(Position{2, 2}, 10, 10, func(p Position) bool {
		return p == target
	})
	if !ok || got != target {
		t.Fatalf("SpiralSearch = %v, ok=%v, want %v", got, ok, target)
	}

	// Center qualifying short-circuits.
	got, ok = SpiralSearch(Position{3, 3}, 10, 10, func(p Position) bool { return true })
	if !ok || got != (Position{3, 3}) {
		t.Fatalf("expected center hit, got %v", got)
	}

	if _, ok := SpiralSearch(Position{0, 0}, 4, 4, func(Position) bool { return false }); ok {
		t.Error("expected exhausted search to report false")
	}
}

func TestLCarveCoversBothLegs(t *testing.T) {
	carved := make(map[Position]bool)
	LCarve(Position{1, 1}, Position{4, 3}, true, func(p Position) {
		carved[p] = true
	})

	// Horizontal leg at y=1, then vertical leg at x=4.
	for x := 1; x <= 4; x++ {
		if !carved[(Position{x, 1})] {
			t.Errorf("horizontal leg missing (%d,1)", x)
		}
	}
	for y := 1; y <= 3; y++ {
		if !carved[(Position{4, y})] {
			t.Errorf("vertical leg missing (4,%d)", y)
		}
	}
}
