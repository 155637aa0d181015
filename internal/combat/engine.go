// Package combat implements the turn engine: movement, the full attack
// exchange with affix aggregation, equipment swaps, item use, level-ups.
// The engine mutates player and floor state and reports what happened in
// structured results; message composition is the session's job.
package combat

import (
	"math"

	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
	"github.com/towerspire/server/internal/rng"
)

// Engine executes actions against a player and their current floor.
type Engine struct {
	cfg *config.Config
	rng rng.Source
}

// New returns an Engine bound to the given config and RNG.
func New(cfg *config.Config, src rng.Source) *Engine {
	return &Engine{cfg: cfg, rng: src}
}

// MoveKind classifies what a move command did.
type MoveKind int

const (
	MoveBlockedBounds MoveKind = iota
	MoveBlockedWall
	MoveAttacked
	MoveMoved
)

// MoveResult reports one move command. Attack is set when the move became
// an attack on an adjacent monster.
type MoveResult struct {
	Kind   MoveKind
	Target geometry.Position
	Attack *AttackReport
}

// Move resolves a move command. Walking into a monster attacks it without
// moving; otherwise the player steps onto the target cell when it is
// passable. Stepping onto stairs or items triggers no interaction here; the
// session runs auto-interactions after a successful step.
func (e *Engine) Move(player *entity.Player, floor *entity.Floor, dir string) MoveResult {
	vec, ok := geometry.DirectionVector(dir)
	if !ok {
		return MoveResult{Kind: MoveBlockedBounds}
	}
	target := player.Position.Add(vec)

	if !floor.InBounds(target) {
		return MoveResult{Kind: MoveBlockedBounds, Target: target}
	}
	if monster, ok := floor.MonsterAt(target); ok && monster.Alive() {
		report := e.Attack(player, floor, monster)
		return MoveResult{Kind: MoveAttacked, Target: target, Attack: report}
	}
	if !floor.IsEnterable(target) {
		return MoveResult{Kind: MoveBlockedWall, Target: target}
	}

	player.Position = target
	return MoveResult{Kind: MoveMoved, Target: target}
}

// AttackReport is one full attack exchange, player hit through monster
// counterattack.
type AttackReport struct {
	MonsterID   string
	MonsterName string

	BaseHit       int
	Critical      bool
	LuckyHit      bool
	PercentDamage int
	ComboHits     []int
	TotalDamage   int
	Lifesteal     int

	MonsterDead bool
	MonsterHP   int
	MonsterMax  int
	ExpGained   int
	GoldGained  int
	LevelsUp    int
	KillHeal    int

	CounterDamage int
	Blocked       bool
	Dodged        bool
	ThornsDamage  int

	PlayerDead bool
}

// Attack runs one exchange against the monster. The player always strikes
// first; the monster counterattacks only if it survives.
func (e *Engine) Attack(player *entity.Player, floor *entity.Floor, monster *entity.Monster) *AttackReport {
	report := &AttackReport{
		MonsterID:   monster.ID,
		MonsterName: monster.Name,
		MonsterMax:  monster.MaxHP,
	}

	total := e.playerStrike(player, floor, monster, report)

	// Lifesteal feeds on everything dealt this exchange.
	if rate := player.WeaponAffixSum(entity.AffixLifeSteal); rate > 0 && total > 0 {
		report.Lifesteal = player.Heal(int(float64(total) * rate))
	}
	report.TotalDamage = total

	if !monster.Alive() {
		e.grantKillRewards(player, monster, report)
		floor.RemoveMonster(monster.ID)
		report.MonsterDead = true
		report.MonsterHP = 0
		return report
	}
	report.MonsterHP = monster.HP

	e.monsterCounter(player, monster, report)
	report.MonsterHP = monster.HP
	if !monster.Alive() {
		// Thorns finished it off.
		e.grantKillRewards(player, monster, report)
		floor.RemoveMonster(monster.ID)
		report.MonsterDead = true
		report.MonsterHP = 0
	}

	report.PlayerDead = player.HP <= 0
	return report
}

// playerStrike deals the base hit, percent damage, and combo chain.
// Returns the total damage dealt.
func (e *Engine) playerStrike(player *entity.Player, floor *entity.Floor, monster *entity.Monster, report *AttackReport) int {
	effectiveDef := monster.Def - int(player.WeaponAffixSum(entity.AffixArmorPen))
	if effectiveDef < 0 {
		effectiveDef = 0
	}
	base := player.TotalAtk(floor.Level) - effectiveDef
	if base < e.cfg.MinDamage {
		base = e.cfg.MinDamage
	}
	report.BaseHit = base

	hit := float64(base) * (1 + player.WeaponAffixSum(entity.AffixDamageMult))

	critChance := e.cfg.CriticalHitChance + player.WeaponAffixSum(entity.AffixCriticalChance)
	if e.rng.Float() < critChance {
		hit *= e.cfg.CriticalHitMult
		report.Critical = true
	}
	if lucky := player.WeaponAffixSum(entity.AffixLuckyHit); lucky > 0 && e.rng.Float() < lucky {
		hit *= e.cfg.LuckyHitMult
		report.LuckyHit = true
	}

	total := monster.ApplyDamage(int(hit))

	if rate := player.WeaponAffixSum(entity.AffixPercentDamage); rate > 0 && monster.Alive() {
		percent := int(float64(monster.MaxHP) * rate)
		if monster.MaxHP > e.cfg.BossPercentCapHP {
			if limit := int(float64(monster.MaxHP) * e.cfg.BossPercentCap); percent > limit {
				percent = limit
			}
		}
		report.PercentDamage = monster.ApplyDamage(percent)
		total += report.PercentDamage
	}

	total += e.comboChain(player, monster, base, report)
	return total
}

// comboChain rolls the chained extra hits: each link fires only if the
// previous one did, at 25%, 50%, then 75% of the base hit.
func (e *Engine) comboChain(player *entity.Player, monster *entity.Monster, base int, report *AttackReport) int {
	if !monster.Alive() {
		return 0
	}
	links := []struct {
		chance   float64
		fraction float64
	}{
		{player.WeaponAffixSum(entity.AffixComboChance), 0.25},
		{0.25, 0.50},
		{0.05, 0.75},
	}

	total := 0
	for _, link := range links {
		if link.chance <= 0 || e.rng.Float() >= link.chance {
			break
		}
		dmg := monster.ApplyDamage(int(float64(base) * link.fraction))
		report.ComboHits = append(report.ComboHits, dmg)
		total += dmg
		if !monster.Alive() {
			break
		}
	}
	return total
}

// grantKillRewards pays out exp and gold with their bonus affixes, applies
// level-ups, and fires kill_heal from both slots.
func (e *Engine) grantKillRewards(player *entity.Player, monster *entity.Monster, report *AttackReport) {
	exp := int(float64(monster.ExpReward) * (1 + player.WeaponAffixSum(entity.AffixExpBonus)))
	gold := int(float64(monster.GoldReward) * (1 + player.WeaponAffixSum(entity.AffixGoldBonus)))

	player.Exp += exp
	player.Gold += gold
	report.ExpGained = exp
	report.GoldGained = gold

	report.LevelsUp = e.ApplyLevelUps(player)

	heal := player.WeaponAffixSum(entity.AffixKillHeal) + player.ArmorAffixSum(entity.AffixKillHeal)
	if heal > 0 {
		report.KillHeal = player.Heal(int(heal))
	}
}

// monsterCounter runs the counterattack pipeline: defense, damage
// reduction, block, dodge, then thorns reflection.
func (e *Engine) monsterCounter(player *entity.Player, monster *entity.Monster, report *AttackReport) {
	raw := monster.Atk - player.TotalDef()
	if raw < e.cfg.MinDamage {
		raw = e.cfg.MinDamage
	}

	reduction := player.WeaponAffixSum(entity.AffixDamageReduction) + player.ArmorAffixSum(entity.AffixDamageReduction)
	if reduction > 1 {
		reduction = 1
	}
	damage := float64(raw) * (1 - reduction)

	if block := player.ArmorAffixSum(entity.AffixBlockChance); block > 0 && e.rng.Float() < block {
		damage *= e.cfg.BlockDamageRetention
		report.Blocked = true
	}
	if dodge := player.ArmorAffixSum(entity.AffixDodgeChance); dodge > 0 && e.rng.Float() < dodge {
		damage = 0
		report.Dodged = true
	}

	received := int(damage)
	player.ApplyDamage(received)
	report.CounterDamage = received

	if received > 0 {
		// Each slot reflects its own floored share.
		reflected := int(math.Floor(float64(received)*player.WeaponAffixSum(entity.AffixThornDamage))) +
			int(math.Floor(float64(received)*player.ArmorAffixSum(entity.AffixThornReflect)))
		if reflected > 0 {
			report.ThornsDamage = monster.ApplyDamage(reflected)
		}
	}
}

// ApplyLevelUps consumes banked exp: each level costs level x ExpPerLevel
// and fully restores HP. Returns the number of levels gained.
func (e *Engine) ApplyLevelUps(player *entity.Player) int {
	levels := 0
	for player.Exp >= player.Level*e.cfg.ExpPerLevel {
		player.Exp -= player.Level * e.cfg.ExpPerLevel
		player.Level++
		player.MaxHP += e.cfg.LevelUpHP
		player.BaseAtk += e.cfg.LevelUpAtk
		player.BaseDef += e.cfg.LevelUpDef
		player.HP = player.EffectiveMaxHP()
		levels++
	}
	return levels
}
