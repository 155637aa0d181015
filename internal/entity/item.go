package entity

import (
	"github.com/google/uuid"

	"github.com/towerspire/server/internal/geometry"
)

// EffectType tags what an item does when picked up or used.
type EffectType string

const (
	EffectPotion      EffectType = "potion"
	EffectWeapon      EffectType = "weapon"
	EffectArmor       EffectType = "armor"
	EffectStairMarker EffectType = "stair_marker"
)

// Rarity tiers, lowest to highest.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Item is a floor pickup or a merchant stock entry. EffectValue is the heal
// amount for potions, atk for weapons, def for armor. Affixes is empty for
// potions.
type Item struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	BaseName    string            `json:"base_name"`
	EffectType  EffectType        `json:"effect_type"`
	EffectValue int               `json:"effect_value"`
	Position    geometry.Position `json:"position"`
	Rarity      string            `json:"rarity"`
	Affixes     []Affix           `json:"affixes,omitempty"`
}

// NewPotion returns a potion item. The name encodes the heal amount so the
// inventory can recover it later.
func NewPotion(name string, heal int, pos geometry.Position) *Item {
	return &Item{
		ID:          uuid.NewString(),
		Symbol:      SymbolPotion,
		Name:        name,
		BaseName:    name,
		EffectType:  EffectPotion,
		EffectValue: heal,
		Position:    pos,
		Rarity:      RarityCommon,
	}
}

// NewWeapon returns a weapon item with the given rolled affixes.
func NewWeapon(name, baseName string, atk int, rarity string, affixes []Affix, pos geometry.Position) *Item {
	return &Item{
		ID:          uuid.NewString(),
		Symbol:      SymbolWeapon,
		Name:        name,
		BaseName:    baseName,
		EffectType:  EffectWeapon,
		EffectValue: atk,
		Position:    pos,
		Rarity:      rarity,
		Affixes:     affixes,
	}
}

// NewArmor returns an armor item with the given rolled affixes.
func NewArmor(name, baseName string, def int, rarity string, affixes []Affix, pos geometry.Position) *Item {
	return &Item{
		ID:          uuid.NewString(),
		Symbol:      SymbolArmor,
		Name:        name,
		BaseName:    baseName,
		EffectType:  EffectArmor,
		EffectValue: def,
		Position:    pos,
		Rarity:      rarity,
		Affixes:     affixes,
	}
}

// AffixSum returns the total effective value of the given affix kind on this
// item.
func (i *Item) AffixSum(kind string) float64 {
	return SumAffixes(i.Affixes, kind)
}

// HasAffix reports whether the item carries an affix of the given kind.
func (i *Item) HasAffix(kind string) bool {
	for _, a := range i.Affixes {
		if a.Kind == kind {
			return true
		}
	}
	return false
}
