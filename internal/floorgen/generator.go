// Package floorgen builds tower floors: rooms and corridors, guaranteed
// stairs reachability, merchant floors on a streak-driven cadence, and
// strategic placement of guards, loot, and potions. All randomness flows
// through an injected rng.Source so tests replay generation exactly.
package floorgen

import (
	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
	"github.com/towerspire/server/internal/rng"
)

const placementAttempts = 50

// Generator produces floors for one session.
type Generator struct {
	cfg   *config.Config
	rng   rng.Source
	items *ItemFactory
}

// New returns a Generator bound to the given config and RNG.
func New(cfg *config.Config, src rng.Source) *Generator {
	return &Generator{cfg: cfg, rng: src, items: NewItemFactory(cfg, src)}
}

// Items exposes the generator's item factory so the merchant and forge share
// its distributions.
func (g *Generator) Items() *ItemFactory {
	return g.items
}

// Generate builds the floor for the given level. prev is the floor being
// left, used to line the player start up with the stairs just descended;
// nil for a fresh game. merchantStreak counts merchant-eligible floors that
// rolled no merchant. Returns the floor and the updated streak.
func (g *Generator) Generate(level int, prev *entity.Floor, merchantStreak int) (*entity.Floor, int) {
	merchant, streak := g.rollMerchant(level, merchantStreak)
	if merchant {
		return g.merchantFloor(level), streak
	}
	return g.normalFloor(level, prev), streak
}

// rollMerchant applies the merchant cadence: floor 10 always, later
// multiples of 10 probabilistically with the chance rising per missed
// opportunity. The current eligible floor counts as the final miss, so a
// streak of MerchantForceInterval-1 already forces the shop. Floor 100 is
// the boss floor and never a shop.
func (g *Generator) rollMerchant(level, streak int) (bool, int) {
	if level == g.cfg.MerchantFirstFloor {
		return true, 0
	}
	if level <= g.cfg.MerchantFirstFloor || level >= g.cfg.MaxFloors || level%g.cfg.MerchantFirstFloor != 0 {
		return false, streak
	}

	if streak >= g.cfg.MerchantForceInterval-1 {
		return true, 0
	}
	chance := g.cfg.MerchantBaseChance + float64(streak)*g.cfg.MerchantChanceIncr
	if chance > 1 {
		chance = 1
	}
	if g.rng.Float() < chance {
		return true, 0
	}
	return false, streak + 1
}

// merchantFloor lays out the fixed shop floor: open interior, merchant at
// the center, stairs and start in opposite corners, nothing else.
func (g *Generator) merchantFloor(level int) *entity.Floor {
	size := g.cfg.GridSize
	f := entity.NewFloor(level, size)
	f.IsMerchantFloor = true

	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			f.SetCellType(geometry.Position{X: x, Y: y}, entity.CellEmpty)
		}
	}

	stairs := geometry.Position{X: 1, Y: 1}
	f.SetCellType(stairs, entity.CellStairs)
	f.StairsPos = stairs
	f.HasStairs = true
	f.PlayerStart = geometry.Position{X: size - 2, Y: size - 2}

	f.PlaceMerchant(&entity.Merchant{Position: geometry.Position{X: size / 2, Y: size / 2}})
	return f
}

// normalFloor runs the full room-and-corridor pipeline.
func (g *Generator) normalFloor(level int, prev *entity.Floor) *entity.Floor {
	size := g.cfg.GridSize
	f := entity.NewFloor(level, size)

	g.placeRooms(f)
	if len(f.Rooms) == 0 {
		return g.fallbackFloor(level)
	}
	g.connectRooms(f)

	f.PlayerStart = g.pickPlayerStart(f, prev)

	if level < g.cfg.MaxFloors {
		g.placeStairs(f)
		g.ensureStairsReachable(f)
		g.populate(f)
	} else {
		g.placeFinalBoss(f)
	}

	return f
}

// placeRooms samples non-overlapping rooms, carving each into the grid.
// Rooms that cannot be placed within the attempt budget are skipped.
func (g *Generator) placeRooms(f *entity.Floor) {
	count := g.rng.IntRange(g.cfg.RoomCountMin, g.cfg.RoomCountMax)

	for i := 0; i < count; i++ {
		for attempt := 0; attempt < g.cfg.MaxRoomAttempts; attempt++ {
			w := g.rng.IntRange(g.cfg.RoomSizeMin, g.cfg.RoomSizeMax)
			h := g.rng.IntRange(g.cfg.RoomSizeMin, g.cfg.RoomSizeMax)
			room := entity.Room{
				X:      g.rng.IntRange(1, f.Width-w-1),
				Y:      g.rng.IntRange(1, f.Height-h-1),
				Width:  w,
				Height: h,
			}

			if g.overlapsExisting(f, room) {
				continue
			}

			for y := room.Y; y < room.Y+room.Height; y++ {
				for x := room.X; x < room.X+room.Width; x++ {
					f.SetCellType(geometry.Position{X: x, Y: y}, entity.CellEmpty)
				}
			}
			f.Rooms = append(f.Rooms, room)
			break
		}
	}
}

func (g *Generator) overlapsExisting(f *entity.Floor, room entity.Room) bool {
	for _, other := range f.Rooms {
		if room.Intersects(other) {
			return true
		}
	}
	return false
}

// connectRooms carves an L corridor between each consecutive pair of room
// centers, in placement order.
func (g *Generator) connectRooms(f *entity.Floor) {
	for i := 1; i < len(f.Rooms); i++ {
		a := f.Rooms[i-1].Center()
		b := f.Rooms[i].Center()
		g.carveCorridor(f, a, b)
	}
}

func (g *Generator) carveCorridor(f *entity.Floor, a, b geometry.Position) {
	geometry.LCarve(a, b, g.rng.Float() < 0.5, func(p geometry.Position) {
		if f.InBounds(p) && f.CellAt(p).Type == entity.CellWall {
			f.SetCellType(p, entity.CellEmpty)
		}
	})
}

// pickPlayerStart puts the player where the previous floor's stairs were,
// falling back to the nearest free cell, or the first room center on a
// fresh game.
func (g *Generator) pickPlayerStart(f *entity.Floor, prev *entity.Floor) geometry.Position {
	var anchor geometry.Position
	if prev != nil && prev.HasStairs {
		anchor = prev.StairsPos
	} else {
		anchor = f.Rooms[0].Center()
	}

	if f.IsFree(anchor) {
		return anchor
	}
	if found, ok := geometry.SpiralSearch(anchor, f.Width, f.Height, f.IsFree); ok {
		return found
	}
	return f.Rooms[0].Center()
}

// placeStairs marks a random room center, avoiding the player start, as the
// way down.
func (g *Generator) placeStairs(f *entity.Floor) {
	candidates := make([]geometry.Position, 0, len(f.Rooms))
	for _, room := range f.Rooms {
		if c := room.Center(); c != f.PlayerStart {
			candidates = append(candidates, c)
		}
	}

	var stairs geometry.Position
	if len(candidates) > 0 {
		stairs = candidates[g.rng.IntRange(0, len(candidates)-1)]
	} else {
		// Single room whose center is the start: shift the stairs off it.
		found, ok := geometry.SpiralSearch(f.PlayerStart, f.Width, f.Height, func(p geometry.Position) bool {
			return p != f.PlayerStart && f.IsFree(p)
		})
		if !ok {
			return
		}
		stairs = found
	}

	f.SetCellType(stairs, entity.CellStairs)
	f.StairsPos = stairs
	f.HasStairs = true
}

// ensureStairsReachable flood-fills from the start and carves a corridor to
// the stairs when they sit in a disconnected pocket.
func (g *Generator) ensureStairsReachable(f *entity.Floor) {
	if !f.HasStairs {
		return
	}
	area := geometry.FloodFill(f.PlayerStart, f.Width, f.Height, f.IsPassable)
	for _, p := range area {
		if p == f.StairsPos {
			return
		}
	}
	g.carveCorridor(f, f.PlayerStart, f.StairsPos)
}

// populate runs strategic placement: high-value gear, guards for the gear
// and the stairs, filler monsters, then potions. Monster placements refuse
// cells that would sever the monster-free route from the start to the
// stairs, so every floor stays clearable without a fight.
func (g *Generator) populate(f *entity.Floor) {
	gear := g.placeHighValueItems(f)
	guards := g.placeGuards(f, gear)
	g.placeFillerMonsters(f, guards)
	g.placePotions(f, len(gear))
}

// placeHighValueItems drops the guaranteed weapon on cadence floors and
// rolls the optional second piece. At most one weapon and one armor per
// floor.
func (g *Generator) placeHighValueItems(f *entity.Floor) []*entity.Item {
	var kinds []entity.EffectType
	if f.Level == 1 || f.Level%g.cfg.HighValueItemInterval == 0 {
		kinds = append(kinds, entity.EffectWeapon)
	}
	if len(kinds) < g.cfg.HighValueItemMax && g.rng.Float() < g.cfg.HighValueItemBaseChance {
		if len(kinds) > 0 {
			kinds = append(kinds, entity.EffectArmor)
		} else if g.rng.Float() < 0.5 {
			kinds = append(kinds, entity.EffectWeapon)
		} else {
			kinds = append(kinds, entity.EffectArmor)
		}
	}

	placed := make([]*entity.Item, 0, len(kinds))
	for _, kind := range kinds {
		pos, ok := g.randomRoomCell(f)
		if !ok {
			continue
		}
		var item *entity.Item
		if kind == entity.EffectWeapon {
			item = g.items.NewWeapon(f.Level, pos)
		} else {
			item = g.items.NewArmor(f.Level, pos)
		}
		f.PlaceItem(item)
		placed = append(placed, item)
	}
	return placed
}

// placeFillerMonsters tops the floor up to its monster budget after guards.
func (g *Generator) placeFillerMonsters(f *entity.Floor, guards int) {
	budget := g.cfg.MonsterCountBase + f.Level/g.cfg.MonsterCountDivisor - guards
	for i := 0; i < budget; i++ {
		pos, ok := g.randomRoomCell(f)
		if !ok || g.seversStairsPath(f, pos) {
			continue
		}
		f.PlaceMonster(g.newMonster(f.Level, pos))
	}
}

// placePotions scatters healing potions, fewer when high-value gear already
// spawned.
func (g *Generator) placePotions(f *entity.Floor, highValueCount int) {
	count := g.cfg.PotionCountBase + f.Level/g.cfg.PotionCountDivisor - highValueCount
	for i := 0; i < count; i++ {
		pos, ok := g.randomFreeCell(f)
		if !ok {
			continue
		}
		f.PlaceItem(g.items.NewPotion(f.Level, pos))
	}
}

// placeFinalBoss sets up floor 100: the boss at a room center away from the
// start, nothing else.
func (g *Generator) placeFinalBoss(f *entity.Floor) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		room := f.Rooms[g.rng.IntRange(0, len(f.Rooms)-1)]
		pos := room.Center()
		if pos != f.PlayerStart && f.IsFree(pos) {
			f.PlaceMonster(g.newFinalBoss(pos))
			return
		}
	}
	if pos, ok := geometry.SpiralSearch(f.PlayerStart, f.Width, f.Height, func(p geometry.Position) bool {
		return p != f.PlayerStart && f.IsFree(p)
	}); ok {
		f.PlaceMonster(g.newFinalBoss(pos))
	}
}

// randomRoomCell picks a free in-room cell, avoiding the start and stairs.
func (g *Generator) randomRoomCell(f *entity.Floor) (geometry.Position, bool) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		room := f.Rooms[g.rng.IntRange(0, len(f.Rooms)-1)]
		pos := geometry.Position{
			X: g.rng.IntRange(room.X, room.X+room.Width-1),
			Y: g.rng.IntRange(room.Y, room.Y+room.Height-1),
		}
		if g.placeable(f, pos) {
			return pos, true
		}
	}
	return geometry.Position{}, false
}

// randomFreeCell picks any free passable cell, avoiding the start and
// stairs.
func (g *Generator) randomFreeCell(f *entity.Floor) (geometry.Position, bool) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		pos := geometry.Position{
			X: g.rng.IntRange(1, f.Width-2),
			Y: g.rng.IntRange(1, f.Height-2),
		}
		if g.placeable(f, pos) {
			return pos, true
		}
	}
	return geometry.Position{}, false
}

// placeable reports whether an entity may be dropped at p: free terrain,
// not the player start, not the stairs.
func (g *Generator) placeable(f *entity.Floor, p geometry.Position) bool {
	if !f.IsFree(p) || p == f.PlayerStart {
		return false
	}
	if f.HasStairs && p == f.StairsPos {
		return false
	}
	if f.CellAt(p).Type == entity.CellStairs {
		return false
	}
	return true
}

// seversStairsPath reports whether a monster standing on candidate would
// cut the monster-free route from the player start to the stairs.
func (g *Generator) seversStairsPath(f *entity.Floor, candidate geometry.Position) bool {
	if !f.HasStairs {
		return false
	}
	area := geometry.FloodFill(f.PlayerStart, f.Width, f.Height, func(p geometry.Position) bool {
		if p == candidate || !f.IsPassable(p) {
			return false
		}
		_, occupied := f.MonsterAt(p)
		return !occupied
	})
	for _, p := range area {
		if p == f.StairsPos {
			return false
		}
	}
	return true
}

// fallbackFloor is the degenerate layout used when room placement fails
// entirely: one central room with the stairs next to the start.
func (g *Generator) fallbackFloor(level int) *entity.Floor {
	size := g.cfg.GridSize
	f := entity.NewFloor(level, size)

	room := entity.Room{X: size/2 - 2, Y: size/2 - 2, Width: 5, Height: 5}
	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			f.SetCellType(geometry.Position{X: x, Y: y}, entity.CellEmpty)
		}
	}
	f.Rooms = append(f.Rooms, room)
	f.PlayerStart = room.Center()

	if level < g.cfg.MaxFloors {
		stairs := f.PlayerStart.Add(geometry.Position{X: 1, Y: 0})
		f.SetCellType(stairs, entity.CellStairs)
		f.StairsPos = stairs
		f.HasStairs = true
	} else {
		g.placeFinalBoss(f)
	}
	return f
}
