package floorgen

import (
	"sort"

	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
)

// guardTarget is something worth defending: a placed weapon or armor, or
// the stairs. Higher weight targets get their guards placed first.
type guardTarget struct {
	pos    geometry.Position
	weight float64
	radius int
	kind   guardKind
}

// placeGuards assigns one guard to each protected target and returns the
// number placed.
func (g *Generator) placeGuards(f *entity.Floor, gear []*entity.Item) int {
	targets := make([]guardTarget, 0, len(gear)+1)
	for _, item := range gear {
		weight := g.cfg.GuardWeightWeapon
		if item.EffectType == entity.EffectArmor {
			weight = g.cfg.GuardWeightArmor
		}
		targets = append(targets, guardTarget{
			pos:    item.Position,
			weight: weight,
			radius: g.cfg.GuardRadiusGear,
			kind:   guardGear,
		})
	}
	if f.HasStairs {
		targets = append(targets, guardTarget{
			pos:    f.StairsPos,
			weight: g.cfg.GuardWeightStairs,
			radius: g.cfg.GuardRadiusStairs,
			kind:   guardStairs,
		})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].weight > targets[j].weight
	})

	var placed []geometry.Position
	for _, target := range targets {
		pos, ok := g.findGuardPost(f, target, placed, 1)
		if !ok {
			// Relax the spacing constraint and widen the search once.
			pos, ok = g.findGuardPost(f, guardTarget{
				pos:    target.pos,
				weight: target.weight,
				radius: target.radius + 1,
				kind:   target.kind,
			}, placed, 0)
		}
		if !ok {
			continue
		}
		f.PlaceMonster(g.newGuard(f.Level, pos, target.kind))
		placed = append(placed, pos)
	}
	return len(placed)
}

// findGuardPost scans every cell within the target's radius and picks the
// highest scoring one that is free, off the player start, at least
// minSpacing from guards already placed, and not a chokepoint on the route
// to the stairs.
func (g *Generator) findGuardPost(f *entity.Floor, target guardTarget, placed []geometry.Position, minSpacing int) (geometry.Position, bool) {
	var best geometry.Position
	bestScore := 0.0

	for dy := -target.radius; dy <= target.radius; dy++ {
		for dx := -target.radius; dx <= target.radius; dx++ {
			pos := target.pos.Add(geometry.Position{X: dx, Y: dy})
			if !g.placeable(f, pos) {
				continue
			}
			if tooCloseToGuards(pos, placed, minSpacing) {
				continue
			}
			if g.seversStairsPath(f, pos) {
				continue
			}
			score := guardScore(geometry.ManhattanDistance(pos, target.pos), target.weight, target.radius)
			if score > bestScore {
				bestScore = score
				best = pos
			}
		}
	}

	return best, bestScore > 0
}

// guardScore weighs a candidate cell by its distance to the protected
// target. Never on the target itself; tightest ring scores highest, then a
// linear falloff to the radius edge.
func guardScore(d int, weight float64, radius int) float64 {
	switch {
	case d == 0:
		return 0
	case d <= 2:
		return 1.5 * weight
	case d <= radius:
		return weight * (1 - 0.2*float64(d-2))
	default:
		return 0.1 * weight
	}
}

func tooCloseToGuards(pos geometry.Position, placed []geometry.Position, minSpacing int) bool {
	if minSpacing <= 0 {
		return false
	}
	for _, other := range placed {
		if geometry.ManhattanDistance(pos, other) < minSpacing {
			return true
		}
	}
	return false
}
