package entity

import "github.com/towerspire/server/internal/geometry"

// BerserkHPRatio is the HP fraction below which berserk_mode weapon affixes
// activate.
const BerserkHPRatio = 0.3

// Player is the character a session controls. Base stats are stored;
// everything equipment-dependent is derived on read so equipment swaps can
// never leave a stale cached stat behind.
type Player struct {
	HP        int               `json:"hp"`
	MaxHP     int               `json:"max_hp"`
	BaseAtk   int               `json:"base_atk"`
	BaseDef   int               `json:"base_def"`
	Exp       int               `json:"exp"`
	Level     int               `json:"level"`
	Gold      int               `json:"gold"`
	Position  geometry.Position `json:"position"`
	Weapon    *Item             `json:"weapon,omitempty"`
	Armor     *Item             `json:"armor,omitempty"`
	Inventory map[string]int    `json:"inventory"`
}

// NewPlayer returns a level-1 player with the given base stats and an empty
// inventory.
func NewPlayer(hp, atk, def int) *Player {
	return &Player{
		HP:        hp,
		MaxHP:     hp,
		BaseAtk:   atk,
		BaseDef:   def,
		Level:     1,
		Inventory: make(map[string]int),
	}
}

// WeaponAtk returns the equipped weapon's attack, or 0 when unarmed.
func (p *Player) WeaponAtk() int {
	if p.Weapon == nil {
		return 0
	}
	return p.Weapon.EffectValue
}

// ArmorDef returns the equipped armor's defense, or 0 when unarmored.
func (p *Player) ArmorDef() int {
	if p.Armor == nil {
		return 0
	}
	return p.Armor.EffectValue
}

// WeaponAffixSum sums the effective values of the given affix kind on the
// equipped weapon.
func (p *Player) WeaponAffixSum(kind string) float64 {
	if p.Weapon == nil {
		return 0
	}
	return p.Weapon.AffixSum(kind)
}

// ArmorAffixSum sums the effective values of the given affix kind on the
// equipped armor.
func (p *Player) ArmorAffixSum(kind string) float64 {
	if p.Armor == nil {
		return 0
	}
	return p.Armor.AffixSum(kind)
}

// EffectiveMaxHP is max HP plus hp_boost armor affixes.
func (p *Player) EffectiveMaxHP() int {
	return p.MaxHP + int(p.ArmorAffixSum(AffixHPBoost))
}

// TotalDef is base defense plus armor defense plus defense_boost affixes.
func (p *Player) TotalDef() int {
	return p.BaseDef + p.ArmorDef() + int(p.ArmorAffixSum(AffixDefenseBoost))
}

// TotalAtk is the player's full attack on the given floor: base plus weapon
// plus attack_boost, floor_bonus scaling with depth, and the berserk bonus
// when HP is low.
func (p *Player) TotalAtk(floorLevel int) int {
	atk := float64(p.BaseAtk + p.WeaponAtk())
	atk += p.WeaponAffixSum(AffixAttackBoost)

	if bonus := p.WeaponAffixSum(AffixFloorBonus); bonus > 0 && floorLevel > 1 {
		atk += float64(floorLevel-1) * bonus
	}

	if berserk := p.WeaponAffixSum(AffixBerserkMode); berserk > 0 {
		if float64(p.HP) < float64(p.EffectiveMaxHP())*BerserkHPRatio {
			atk += float64(p.BaseAtk) * berserk
		}
	}

	return int(atk)
}

// Heal raises HP by amount, clamped at effective max HP. Returns the HP
// actually gained.
func (p *Player) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	maxHP := p.EffectiveMaxHP()
	healed := amount
	if p.HP+healed > maxHP {
		healed = maxHP - p.HP
	}
	p.HP += healed
	return healed
}

// ApplyDamage reduces HP, clamped at zero.
func (p *Player) ApplyDamage(amount int) {
	if amount < 0 {
		amount = 0
	}
	p.HP -= amount
	if p.HP < 0 {
		p.HP = 0
	}
}

// AddInventory increments the count for an item name.
func (p *Player) AddInventory(name string) {
	if p.Inventory == nil {
		p.Inventory = make(map[string]int)
	}
	p.Inventory[name]++
}

// ConsumeInventory decrements the count for an item name, deleting the key
// at zero. Returns false when the player has none.
func (p *Player) ConsumeInventory(name string) bool {
	count, ok := p.Inventory[name]
	if !ok || count <= 0 {
		return false
	}
	if count == 1 {
		delete(p.Inventory, name)
	} else {
		p.Inventory[name] = count - 1
	}
	return true
}
