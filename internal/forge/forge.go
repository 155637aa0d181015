// Package forge implements the gold-sink equipment upgrades: raising affix
// levels, raising base stats, adding affixes, and rerolling affix kinds.
// Every operation debits gold before rolling; a failed roll keeps the gold
// and leaves the equipment untouched.
package forge

import (
	"errors"
	"math"

	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/floorgen"
	"github.com/towerspire/server/internal/rng"
)

// Slot selects which equipped piece an operation targets.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotArmor  Slot = "armor"
)

var (
	// ErrSlotEmpty means the player has nothing equipped in the slot.
	ErrSlotEmpty = errors.New("forge: slot is empty")

	// ErrBadAffixIndex means the affix index is out of range.
	ErrBadAffixIndex = errors.New("forge: affix index out of range")

	// ErrNotEnoughGold means the player cannot pay the operation cost.
	ErrNotEnoughGold = errors.New("forge: not enough gold")

	// ErrAffixCapReached means the item already holds its rarity's affix
	// quota.
	ErrAffixCapReached = errors.New("forge: affix cap reached for rarity")

	// ErrNoAffixAvailable means every kind in the slot's table is already
	// present.
	ErrNoAffixAvailable = errors.New("forge: no new affix kind available")
)

// Engine runs forge operations against the player's equipped gear.
type Engine struct {
	cfg   *config.Config
	rng   rng.Source
	items *floorgen.ItemFactory
}

// New returns a forge Engine sharing the session's item factory so fresh
// affixes follow the same value tables as drops.
func New(cfg *config.Config, src rng.Source, items *floorgen.ItemFactory) *Engine {
	return &Engine{cfg: cfg, rng: src, items: items}
}

// Result reports one forge operation. Gold is spent even when Success is
// false.
type Result struct {
	Success  bool
	Cost     int
	GoldLeft int
	Affix    *entity.Affix // the touched affix after the operation
	NewValue int           // new base stat after a stat upgrade
}

func (e *Engine) slotItem(player *entity.Player, slot Slot) (*entity.Item, error) {
	var item *entity.Item
	switch slot {
	case SlotWeapon:
		item = player.Weapon
	case SlotArmor:
		item = player.Armor
	default:
		return nil, ErrSlotEmpty
	}
	if item == nil {
		return nil, ErrSlotEmpty
	}
	return item, nil
}

// charge debits the player before the roll, then rolls success.
func (e *Engine) charge(player *entity.Player, cost int, chance float64) (bool, error) {
	if player.Gold < cost {
		return false, ErrNotEnoughGold
	}
	player.Gold -= cost
	return e.rng.Float() < chance, nil
}

// UpgradeAffixCost is the price of raising the indexed affix one level.
func (e *Engine) UpgradeAffixCost(player *entity.Player, item *entity.Item, index int) int {
	affix := item.Affixes[index]
	tier := e.cfg.Rarities[item.Rarity]
	base := e.cfg.ForgeBaseCost + affix.Level*e.cfg.ForgeLevelCost + player.Level*e.cfg.ForgePlayerLevelCost
	return int(math.Floor(float64(base) * tier.ForgeCostMult))
}

// UpgradeAffixChance is the success probability for the indexed affix.
func (e *Engine) UpgradeAffixChance(item *entity.Item, index int) float64 {
	affix := item.Affixes[index]
	tier := e.cfg.Rarities[item.Rarity]

	chance := e.cfg.ForgeBaseSuccess - float64(affix.Level)*e.cfg.ForgeSuccessDecay
	if chance < e.cfg.ForgeMinSuccess {
		chance = e.cfg.ForgeMinSuccess
	}
	chance += tier.ForgeSuccessBonus
	if chance > e.cfg.ForgeMaxSuccess {
		chance = e.cfg.ForgeMaxSuccess
	}
	return chance
}

// UpgradeAffix raises one affix a level. Cost scales with the affix level,
// the player level, and the item's rarity; success decays as the affix
// climbs.
func (e *Engine) UpgradeAffix(player *entity.Player, slot Slot, index int) (*Result, error) {
	item, err := e.slotItem(player, slot)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(item.Affixes) {
		return nil, ErrBadAffixIndex
	}

	cost := e.UpgradeAffixCost(player, item, index)
	success, err := e.charge(player, cost, e.UpgradeAffixChance(item, index))
	if err != nil {
		return nil, err
	}

	if success {
		item.Affixes[index].Level++
	}
	return &Result{
		Success:  success,
		Cost:     cost,
		GoldLeft: player.Gold,
		Affix:    &item.Affixes[index],
	}, nil
}

// UpgradeStatCost is the price of raising the slot's base stat.
func (e *Engine) UpgradeStatCost(player *entity.Player, item *entity.Item) int {
	if item.EffectType == entity.EffectArmor {
		return e.cfg.ForgeStatCostBase + e.cfg.ForgeStatCostDefMult*item.EffectValue +
			e.cfg.ForgeStatCostLevelMult*player.Level
	}
	return e.cfg.ForgeStatCostBase + e.cfg.ForgeStatCostAtkMult*item.EffectValue +
		e.cfg.ForgeStatCostLevelMult*player.Level
}

// UpgradeStat raises the weapon's attack or the armor's defense by 5% of
// its current value, at least 1.
func (e *Engine) UpgradeStat(player *entity.Player, slot Slot) (*Result, error) {
	item, err := e.slotItem(player, slot)
	if err != nil {
		return nil, err
	}

	cost := e.UpgradeStatCost(player, item)
	success, err := e.charge(player, cost, e.cfg.ForgeStatSuccess)
	if err != nil {
		return nil, err
	}

	if success {
		gain := int(math.Floor(float64(item.EffectValue) * e.cfg.ForgeStatGainRatio))
		if gain < 1 {
			gain = 1
		}
		item.EffectValue += gain
	}
	return &Result{
		Success:  success,
		Cost:     cost,
		GoldLeft: player.Gold,
		NewValue: item.EffectValue,
	}, nil
}

// AddAffixCost is the price of rolling a new affix onto the item.
func (e *Engine) AddAffixCost(player *entity.Player, item *entity.Item) int {
	return e.cfg.ForgeAddCostBase + e.cfg.ForgeAddCostLevelMult*player.Level +
		e.cfg.ForgeAddCostPerAffix*len(item.Affixes)
}

// AddAffix rolls a new affix of a kind the item lacks, valued with the
// player level standing in for floor depth. The item's rarity caps how many
// affixes it may carry.
func (e *Engine) AddAffix(player *entity.Player, slot Slot) (*Result, error) {
	item, err := e.slotItem(player, slot)
	if err != nil {
		return nil, err
	}
	tier := e.cfg.Rarities[item.Rarity]
	if len(item.Affixes) >= tier.AffixCount {
		return nil, ErrAffixCapReached
	}

	exclude := make(map[string]bool, len(item.Affixes))
	for _, a := range item.Affixes {
		exclude[a.Kind] = true
	}
	affix, ok := e.items.NewAffixFor(item.EffectType, player.Level, tier.ValueMultiplier, exclude)
	if !ok {
		return nil, ErrNoAffixAvailable
	}

	cost := e.AddAffixCost(player, item)
	success, err := e.charge(player, cost, e.cfg.ForgeAddSuccess)
	if err != nil {
		return nil, err
	}

	result := &Result{Cost: cost, GoldLeft: player.Gold, Success: success}
	if success {
		item.Affixes = append(item.Affixes, affix)
		result.Affix = &item.Affixes[len(item.Affixes)-1]
	}
	return result, nil
}

// RerollAffixCost is the price of rerolling the indexed affix's kind.
func (e *Engine) RerollAffixCost(player *entity.Player, item *entity.Item, index int) int {
	return e.cfg.ForgeRerollCostBase + e.cfg.ForgeRerollCostPerLevel*item.Affixes[index].Level +
		e.cfg.ForgeRerollCostLevelMult*player.Level
}

// RerollAffix replaces the indexed affix with a fresh kind distinct from
// the item's other affixes. The affix level carries over; the value is
// recomputed.
func (e *Engine) RerollAffix(player *entity.Player, slot Slot, index int) (*Result, error) {
	item, err := e.slotItem(player, slot)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(item.Affixes) {
		return nil, ErrBadAffixIndex
	}

	exclude := make(map[string]bool, len(item.Affixes))
	for i, a := range item.Affixes {
		if i != index {
			exclude[a.Kind] = true
		}
	}
	tier := e.cfg.Rarities[item.Rarity]
	fresh, ok := e.items.NewAffixFor(item.EffectType, player.Level, tier.ValueMultiplier, exclude)
	if !ok {
		return nil, ErrNoAffixAvailable
	}

	cost := e.RerollAffixCost(player, item, index)
	success, err := e.charge(player, cost, e.cfg.ForgeRerollSuccess)
	if err != nil {
		return nil, err
	}

	if success {
		fresh.Level = item.Affixes[index].Level
		item.Affixes[index] = fresh
	}
	return &Result{
		Success:  success,
		Cost:     cost,
		GoldLeft: player.Gold,
		Affix:    &item.Affixes[index],
	}, nil
}
