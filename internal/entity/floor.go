package entity

import "github.com/towerspire/server/internal/geometry"

// Floor is one 15x15 level of the tower. The grid stores terrain plus an
// entity reference per cell; monsters and items live in the ID-keyed maps.
// Floors are transient: generated on entry, discarded on descent.
type Floor struct {
	Level           int
	Width           int
	Height          int
	Grid            [][]Cell
	Monsters        map[string]*Monster
	Items           map[string]*Item
	Rooms           []Room
	PlayerStart     geometry.Position
	StairsPos       geometry.Position
	HasStairs       bool
	IsMerchantFloor bool
	Merchant        *Merchant
}

// NewFloor returns a floor of the given size filled with walls.
func NewFloor(level, size int) *Floor {
	grid := make([][]Cell, size)
	for y := range grid {
		grid[y] = make([]Cell, size)
		for x := range grid[y] {
			grid[y][x] = Cell{Type: CellWall}
		}
	}
	return &Floor{
		Level:    level,
		Width:    size,
		Height:   size,
		Grid:     grid,
		Monsters: make(map[string]*Monster),
		Items:    make(map[string]*Item),
	}
}

// InBounds reports whether a position lies on the grid.
func (f *Floor) InBounds(p geometry.Position) bool {
	return p.X >= 0 && p.X < f.Width && p.Y >= 0 && p.Y < f.Height
}

// CellAt returns a pointer to the cell at p. Callers must check InBounds
// first.
func (f *Floor) CellAt(p geometry.Position) *Cell {
	return &f.Grid[p.Y][p.X]
}

// SetCellType changes the terrain at p.
func (f *Floor) SetCellType(p geometry.Position, t CellType) {
	f.Grid[p.Y][p.X].Type = t
}

// IsPassable reports whether the terrain at p can be stood on.
func (f *Floor) IsPassable(p geometry.Position) bool {
	return f.InBounds(p) && f.CellAt(p).Passable()
}

// IsEnterable reports whether the player may step onto p: in bounds,
// passable, and holding no entity other than an item.
func (f *Floor) IsEnterable(p geometry.Position) bool {
	return f.InBounds(p) && f.CellAt(p).EnterableByPlayer()
}

// IsFree reports whether p is passable and holds no entity at all. Used by
// the generator when placing entities.
func (f *Floor) IsFree(p geometry.Position) bool {
	if !f.InBounds(p) {
		return false
	}
	c := f.CellAt(p)
	return c.Passable() && c.EntityKind == EntityNone
}

// PlaceMonster registers a monster and marks its cell.
func (f *Floor) PlaceMonster(m *Monster) {
	f.Monsters[m.ID] = m
	cell := f.CellAt(m.Position)
	cell.EntityKind = EntityMonster
	cell.EntityID = m.ID
}

// RemoveMonster clears a monster's cell and drops it from the floor.
func (f *Floor) RemoveMonster(id string) {
	m, ok := f.Monsters[id]
	if !ok {
		return
	}
	cell := f.CellAt(m.Position)
	if cell.EntityKind == EntityMonster && cell.EntityID == id {
		cell.EntityKind = EntityNone
		cell.EntityID = ""
	}
	delete(f.Monsters, id)
}

// PlaceItem registers an item and marks its cell.
func (f *Floor) PlaceItem(item *Item) {
	f.Items[item.ID] = item
	cell := f.CellAt(item.Position)
	cell.EntityKind = EntityItem
	cell.EntityID = item.ID
}

// RemoveItem clears an item's cell and drops it from the floor.
func (f *Floor) RemoveItem(id string) {
	item, ok := f.Items[id]
	if !ok {
		return
	}
	cell := f.CellAt(item.Position)
	if cell.EntityKind == EntityItem && cell.EntityID == id {
		cell.EntityKind = EntityNone
		cell.EntityID = ""
	}
	delete(f.Items, id)
}

// PlaceMerchant registers the merchant and marks its cell.
func (f *Floor) PlaceMerchant(m *Merchant) {
	f.Merchant = m
	cell := f.CellAt(m.Position)
	cell.EntityKind = EntityMerchant
}

// MonsterAt returns the monster occupying p, if any.
func (f *Floor) MonsterAt(p geometry.Position) (*Monster, bool) {
	if !f.InBounds(p) {
		return nil, false
	}
	cell := f.CellAt(p)
	if cell.EntityKind != EntityMonster {
		return nil, false
	}
	m, ok := f.Monsters[cell.EntityID]
	return m, ok
}

// ItemAt returns the item occupying p, if any.
func (f *Floor) ItemAt(p geometry.Position) (*Item, bool) {
	if !f.InBounds(p) {
		return nil, false
	}
	cell := f.CellAt(p)
	if cell.EntityKind != EntityItem {
		return nil, false
	}
	item, ok := f.Items[cell.EntityID]
	return item, ok
}

// MonsterNear reports whether any alive monster lies within the given
// Manhattan distance of p. Stairs and items are unusable while guarded this
// way.
func (f *Floor) MonsterNear(p geometry.Position, radius int) bool {
	for _, m := range f.Monsters {
		if m.Alive() && geometry.ManhattanDistance(m.Position, p) <= radius {
			return true
		}
	}
	return false
}

// Render returns the map as rows of single-character cells. The player
// overrides everything; entities override terrain.
func (f *Floor) Render(playerPos geometry.Position) [][]string {
	rows := make([][]string, f.Height)
	for y := 0; y < f.Height; y++ {
		row := make([]string, f.Width)
		for x := 0; x < f.Width; x++ {
			pos := geometry.Position{X: x, Y: y}
			row[x] = f.renderCell(pos, playerPos)
		}
		rows[y] = row
	}
	return rows
}

func (f *Floor) renderCell(pos, playerPos geometry.Position) string {
	if pos == playerPos {
		return SymbolPlayer
	}
	cell := f.CellAt(pos)
	switch cell.EntityKind {
	case EntityMonster:
		return SymbolMonster
	case EntityItem:
		if item, ok := f.Items[cell.EntityID]; ok {
			return item.Symbol
		}
	case EntityMerchant:
		return SymbolMerchant
	}
	return cell.Symbol()
}
