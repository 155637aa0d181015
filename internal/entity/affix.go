package entity

import (
	"fmt"
	"math"
)

// Weapon affix kinds.
const (
	AffixAttackBoost     = "attack_boost"
	AffixDamageMult      = "damage_mult"
	AffixArmorPen        = "armor_pen"
	AffixLifeSteal       = "life_steal"
	AffixGoldBonus       = "gold_bonus"
	AffixCriticalChance  = "critical_chance"
	AffixComboChance     = "combo_chance"
	AffixKillHeal        = "kill_heal"
	AffixExpBonus        = "exp_bonus"
	AffixThornDamage     = "thorn_damage"
	AffixDamageReduction = "damage_reduction"
	AffixPercentDamage   = "percent_damage"
	AffixFloorBonus      = "floor_bonus"
	AffixLuckyHit        = "lucky_hit"
	AffixBerserkMode     = "berserk_mode"
)

// Armor affix kinds. damage_reduction and kill_heal appear in both sets.
const (
	AffixDefenseBoost = "defense_boost"
	AffixThornReflect = "thorn_reflect"
	AffixBlockChance  = "block_chance"
	AffixDodgeChance  = "dodge_chance"
	AffixHPBoost      = "hp_boost"
	AffixFloorHeal    = "floor_heal"
	AffixPotionBoost  = "potion_boost"
)

// affixLabels maps affix kinds to their display names.
var affixLabels = map[string]string{
	AffixAttackBoost:     "攻击强化",
	AffixDamageMult:      "伤害加成",
	AffixArmorPen:        "护甲穿透",
	AffixLifeSteal:       "生命偷取",
	AffixGoldBonus:       "金币加成",
	AffixCriticalChance:  "暴击几率",
	AffixComboChance:     "连击几率",
	AffixKillHeal:        "击杀回复",
	AffixExpBonus:        "经验加成",
	AffixThornDamage:     "荆棘伤害",
	AffixDamageReduction: "伤害减免",
	AffixPercentDamage:   "百分比伤害",
	AffixFloorBonus:      "层数加成",
	AffixLuckyHit:        "幸运一击",
	AffixBerserkMode:     "狂暴模式",
	AffixDefenseBoost:    "防御强化",
	AffixThornReflect:    "荆棘反弹",
	AffixBlockChance:     "格挡几率",
	AffixDodgeChance:     "闪避几率",
	AffixHPBoost:         "生命强化",
	AffixFloorHeal:       "层数回复",
	AffixPotionBoost:     "药水强化",
}

// AffixLabel returns the display name for an affix kind. Unknown kinds fall
// back to the raw kind string.
func AffixLabel(kind string) string {
	if label, ok := affixLabels[kind]; ok {
		return label
	}
	return kind
}

// Affix is one random property on a weapon or armor. Level starts at 0 and
// rises through forging; each level adds 10% of the base value.
type Affix struct {
	Kind       string  `json:"kind"`
	BaseValue  float64 `json:"base_value"`
	Level      int     `json:"level"`
	Percentage bool    `json:"percentage"`
}

// EffectiveValue is the affix's current magnitude after level scaling.
func (a Affix) EffectiveValue() float64 {
	return a.BaseValue * (1 + 0.1*float64(a.Level))
}

// Description renders the affix for display: percentage kinds as a percent
// with one decimal, flat kinds as a rounded integer.
func (a Affix) Description() string {
	label := AffixLabel(a.Kind)
	if a.Percentage {
		return fmt.Sprintf("%s +%.1f%%", label, a.EffectiveValue()*100)
	}
	return fmt.Sprintf("%s +%d", label, int(math.Round(a.EffectiveValue())))
}

// SumAffixes returns the total effective value of the given kind across a
// slice of affixes.
func SumAffixes(affixes []Affix, kind string) float64 {
	total := 0.0
	for _, a := range affixes {
		if a.Kind == kind {
			total += a.EffectiveValue()
		}
	}
	return total
}
