// Package entity defines the world model: cells, affixes, items, monsters,
// the player, merchants, and floors. Entities carry IDs and live in per-floor
// maps; the grid stores only an entity reference, never the entity itself.
// Derived player attributes are computed on demand and never cached.
package entity

// CellType is the terrain of one grid cell.
type CellType int

const (
	CellEmpty CellType = iota
	CellWall
	CellStairs
)

// EntityKind tags what occupies a cell, if anything.
type EntityKind int

const (
	EntityNone EntityKind = iota
	EntityMonster
	EntityItem
	EntityMerchant
)

// Cell is one square of a floor grid. EntityID refers into the floor's
// monster or item map depending on EntityKind.
type Cell struct {
	Type       CellType
	EntityKind EntityKind
	EntityID   string
}

// Passable reports whether the terrain permits standing here. Walls are the
// only impassable terrain.
func (c Cell) Passable() bool {
	return c.Type == CellEmpty || c.Type == CellStairs
}

// EnterableByPlayer reports whether the player may step onto this cell: the
// terrain is passable and the cell holds no entity, or only an item.
func (c Cell) EnterableByPlayer() bool {
	if !c.Passable() {
		return false
	}
	return c.EntityKind == EntityNone || c.EntityKind == EntityItem
}

// Symbol returns the map character for the terrain alone. Entity symbols are
// layered on top during rendering.
func (c Cell) Symbol() string {
	switch c.Type {
	case CellWall:
		return "#"
	case CellStairs:
		return ">"
	default:
		return "."
	}
}

// Map symbols for entities and the player.
const (
	SymbolPlayer   = "@"
	SymbolMonster  = "M"
	SymbolStairs   = ">"
	SymbolPotion   = "+"
	SymbolWeapon   = "↑"
	SymbolArmor    = "◆"
	SymbolMerchant = "$"
	SymbolEmpty    = "."
	SymbolWall     = "#"
)
