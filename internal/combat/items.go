package combat

import (
	"strconv"
	"strings"

	"github.com/towerspire/server/internal/entity"
)

// UseItem drinks one potion from the inventory. The heal amount is parsed
// from the name, boosted by potion_boost armor affixes. Returns the HP
// restored and false when the player holds none.
func (e *Engine) UseItem(player *entity.Player, name string) (int, bool) {
	if !player.ConsumeInventory(name) {
		return 0, false
	}

	heal := parsePotionHeal(name, e.cfg.DefaultPotionHeal)
	if boost := player.ArmorAffixSum(entity.AffixPotionBoost); boost > 0 {
		heal = int(float64(heal) * (1 + boost))
	}
	return player.Heal(heal), true
}

// FloorHeal applies the floor_heal armor affix on descent: a fraction of
// effective max HP restored each new floor. Returns the HP gained.
func (e *Engine) FloorHeal(player *entity.Player) int {
	rate := player.ArmorAffixSum(entity.AffixFloorHeal)
	if rate <= 0 {
		return 0
	}
	return player.Heal(int(float64(player.EffectiveMaxHP()) * rate))
}

// parsePotionHeal recovers the heal amount from names like "血瓶+120".
// Names without the suffix fall back to the configured default.
func parsePotionHeal(name string, fallback int) int {
	idx := strings.LastIndex(name, "+")
	if idx < 0 || idx == len(name)-1 {
		return fallback
	}
	heal, err := strconv.Atoi(name[idx+1:])
	if err != nil || heal <= 0 {
		return fallback
	}
	return heal
}
