package combat

import (
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
)

// PickupResult reports what a pickup did.
type PickupResult struct {
	Item    *entity.Item
	Potion  bool
	Swapped *entity.Item // previous gear dropped back onto the floor
	Lost    *entity.Item // previous gear discarded because no cell was free
}

// Pickup takes the item under the player. Potions go to the inventory; gear
// is equipped, dropping the previous piece at the player's cell (or the
// nearest free cell when occupied).
func (e *Engine) Pickup(player *entity.Player, floor *entity.Floor) (*PickupResult, bool) {
	item, ok := floor.ItemAt(player.Position)
	if !ok {
		return nil, false
	}
	floor.RemoveItem(item.ID)

	result := &PickupResult{Item: item}
	switch item.EffectType {
	case entity.EffectPotion:
		player.AddInventory(item.Name)
		result.Potion = true

	case entity.EffectWeapon:
		old := player.Weapon
		player.Weapon = item
		e.dropOldGear(floor, old, player.Position, result)

	case entity.EffectArmor:
		old := player.Armor
		e.equipArmor(player, item)
		e.dropOldGear(floor, old, player.Position, result)
	}
	return result, true
}

// EquipFromStock equips a purchased item directly. Merchants take the old
// gear in part exchange; nothing drops.
func (e *Engine) EquipFromStock(player *entity.Player, item *entity.Item) {
	switch item.EffectType {
	case entity.EffectWeapon:
		player.Weapon = item
	case entity.EffectArmor:
		e.equipArmor(player, item)
	}
}

// equipArmor swaps armor while preserving the player's HP ratio: when the
// effective max changes, current HP scales so the bar looks the same.
func (e *Engine) equipArmor(player *entity.Player, armor *entity.Item) {
	oldMax := player.EffectiveMaxHP()
	oldHP := player.HP

	player.Armor = armor

	newMax := player.EffectiveMaxHP()
	if newMax != oldMax && oldMax > 0 {
		scaled := int(float64(newMax) * float64(oldHP) / float64(oldMax))
		if scaled > newMax {
			scaled = newMax
		}
		if scaled < 1 && oldHP > 0 {
			scaled = 1
		}
		player.HP = scaled
	}
}

// dropOldGear returns replaced gear to the floor at the player's cell,
// spiraling outward when that cell is taken. Gear with nowhere to go is
// lost.
func (e *Engine) dropOldGear(floor *entity.Floor, old *entity.Item, at geometry.Position, result *PickupResult) {
	if old == nil {
		return
	}

	pos := at
	if !floor.IsFree(pos) {
		found, ok := geometry.SpiralSearch(at, floor.Width, floor.Height, floor.IsFree)
		if !ok {
			result.Lost = old
			return
		}
		pos = found
	}

	old.Position = pos
	floor.PlaceItem(old)
	result.Swapped = old
}
