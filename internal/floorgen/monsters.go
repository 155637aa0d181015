package floorgen

import (
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
)

// guardKind distinguishes what a guard protects; the multipliers differ.
type guardKind int

const (
	guardGear guardKind = iota
	guardStairs
)

// statMultipliers scale a base monster into a guard.
type statMultipliers struct {
	hp, atk, def, exp, gold float64
}

var guardMultipliers = map[guardKind]statMultipliers{
	guardGear:   {hp: 1.3, atk: 1.2, def: 1.1, exp: 1.5, gold: 1.3},
	guardStairs: {hp: 1.2, atk: 1.1, def: 1.0, exp: 1.3, gold: 1.0},
}

// newMonster rolls a regular monster for the floor: linear stat scaling with
// a uniform variance band, and a prefixed random name.
func (g *Generator) newMonster(floorLevel int, pos geometry.Position) *entity.Monster {
	cfg := g.cfg
	name := monsterPrefixes[g.rng.IntRange(0, len(monsterPrefixes)-1)] +
		monsterBaseNames[g.rng.IntRange(0, len(monsterBaseNames)-1)]

	return entity.NewMonster(
		name,
		g.varied(cfg.MonsterBaseHP+floorLevel*cfg.MonsterHPPerFloor),
		g.varied(cfg.MonsterBaseAtk+floorLevel*cfg.MonsterAtkPerFloor),
		g.varied(cfg.MonsterBaseDef+floorLevel*cfg.MonsterDefPerFloor),
		g.varied(cfg.MonsterBaseExp+floorLevel*cfg.MonsterExpPerFloor),
		g.varied(cfg.MonsterBaseGold+floorLevel*cfg.MonsterGoldPerFloor),
		pos,
	)
}

// newGuard rolls a guard monster: a regular monster scaled by the guard
// multipliers and renamed after its duty.
func (g *Generator) newGuard(floorLevel int, pos geometry.Position, kind guardKind) *entity.Monster {
	m := g.newMonster(floorLevel, pos)
	mult := guardMultipliers[kind]

	m.MaxHP = int(float64(m.MaxHP) * mult.hp)
	m.HP = m.MaxHP
	m.Atk = int(float64(m.Atk) * mult.atk)
	m.Def = int(float64(m.Def) * mult.def)
	m.ExpReward = int(float64(m.ExpReward) * mult.exp)
	m.GoldReward = int(float64(m.GoldReward) * mult.gold)
	m.IsGuard = true

	prefix := guardPrefixGear
	if kind == guardStairs {
		prefix = guardPrefixStairs
	}
	m.Name = prefix + m.Name
	return m
}

// newFinalBoss returns the floor-100 boss with its fixed stat block.
func (g *Generator) newFinalBoss(pos geometry.Position) *entity.Monster {
	boss := g.cfg.FinalBoss
	m := entity.NewMonster(boss.Name, boss.HP, boss.Atk, boss.Def, boss.Exp, boss.Gold, pos)
	m.IsBoss = true
	return m
}

// varied applies the uniform ±variance band to a base stat.
func (g *Generator) varied(base int) int {
	v := g.cfg.MonsterVariance
	factor := 1 - v + g.rng.Float()*2*v
	result := int(float64(base) * factor)
	if result < 1 {
		result = 1
	}
	return result
}
