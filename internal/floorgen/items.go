package floorgen

import (
	"sort"

	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
	"github.com/towerspire/server/internal/rng"
)

// ItemFactory rolls rarities, affixes, and names for generated gear. The
// merchant engine shares it so stock items carry the same distributions as
// floor loot.
type ItemFactory struct {
	cfg *config.Config
	rng rng.Source
}

// NewItemFactory returns a factory bound to the given config and RNG.
func NewItemFactory(cfg *config.Config, src rng.Source) *ItemFactory {
	return &ItemFactory{cfg: cfg, rng: src}
}

// RollRarity picks a rarity tier by drop weight.
func (f *ItemFactory) RollRarity() string {
	names := f.rarityNames()
	weights := make([]float64, len(names))
	for i, name := range names {
		weights[i] = f.cfg.Rarities[name].DropWeight
	}
	return names[f.rng.WeightedChoice(weights)]
}

// rarityNames returns tier names in a fixed order so rolls are reproducible
// under a seeded RNG.
func (f *ItemFactory) rarityNames() []string {
	names := make([]string, 0, len(f.cfg.Rarities))
	for name := range f.cfg.Rarities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rollAffixes draws count distinct kinds from the given table and computes
// their values for the floor level and rarity multiplier. Affixes start at
// level 0; forging raises them later.
func (f *ItemFactory) rollAffixes(table map[string]config.AffixSpec, count, floorLevel int, rarityMult float64) []entity.Affix {
	kinds := make([]string, 0, len(table))
	for kind := range table {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	weights := make([]float64, len(kinds))
	for i, kind := range kinds {
		weights[i] = table[kind].Weight
	}

	picked := f.rng.WeightedSample(weights, count)
	affixes := make([]entity.Affix, 0, len(picked))
	for _, idx := range picked {
		kind := kinds[idx]
		spec := table[kind]
		affixes = append(affixes, entity.Affix{
			Kind:       kind,
			BaseValue:  (spec.Base + float64(floorLevel)*spec.Scale) * rarityMult,
			Percentage: spec.Percentage,
		})
	}
	return affixes
}

// NewAffixFor rolls a single fresh affix of a kind not in exclude, for the
// forge's add and reroll operations. Returns false when every kind in the
// slot's table is excluded.
func (f *ItemFactory) NewAffixFor(effectType entity.EffectType, floorLevel int, rarityMult float64, exclude map[string]bool) (entity.Affix, bool) {
	table := f.cfg.WeaponAffixes
	if effectType == entity.EffectArmor {
		table = f.cfg.ArmorAffixes
	}

	kinds := make([]string, 0, len(table))
	for kind := range table {
		if !exclude[kind] {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return entity.Affix{}, false
	}
	sort.Strings(kinds)

	weights := make([]float64, len(kinds))
	for i, kind := range kinds {
		weights[i] = table[kind].Weight
	}

	kind := kinds[f.rng.WeightedChoice(weights)]
	spec := table[kind]
	return entity.Affix{
		Kind:       kind,
		BaseValue:  (spec.Base + float64(floorLevel)*spec.Scale) * rarityMult,
		Percentage: spec.Percentage,
	}, true
}

// NewWeapon generates a weapon for the given floor with rolled rarity and
// affixes.
func (f *ItemFactory) NewWeapon(floorLevel int, pos geometry.Position) *entity.Item {
	rarity := f.RollRarity()
	tier := f.cfg.Rarities[rarity]

	affixes := f.rollAffixes(f.cfg.WeaponAffixes, tier.AffixCount, floorLevel, tier.ValueMultiplier)
	atk := int(float64(f.cfg.WeaponAtkBase+floorLevel*f.cfg.WeaponAtkPerFloor) * tier.ValueMultiplier)

	baseName := "长剑"
	if len(affixes) > 0 {
		baseName = weaponTheme(affixes[0].Kind)
	}
	prefix := tier.Prefixes[f.rng.IntRange(0, len(tier.Prefixes)-1)]

	return entity.NewWeapon(prefix+baseName, baseName, atk, rarity, affixes, pos)
}

// NewArmor generates an armor for the given floor with rolled rarity and
// affixes.
func (f *ItemFactory) NewArmor(floorLevel int, pos geometry.Position) *entity.Item {
	rarity := f.RollRarity()
	tier := f.cfg.Rarities[rarity]

	affixes := f.rollAffixes(f.cfg.ArmorAffixes, tier.AffixCount, floorLevel, tier.ValueMultiplier)
	def := int(float64(f.cfg.ArmorDefBase+floorLevel*f.cfg.ArmorDefPerFloor) * tier.ValueMultiplier)

	baseName := "铁甲"
	if len(affixes) > 0 {
		baseName = armorTheme(affixes[0].Kind)
	}
	prefix := tier.Prefixes[f.rng.IntRange(0, len(tier.Prefixes)-1)]

	return entity.NewArmor(prefix+baseName, baseName, def, rarity, affixes, pos)
}

// NewPotion generates a healing potion scaled to the floor.
func (f *ItemFactory) NewPotion(floorLevel int, pos geometry.Position) *entity.Item {
	heal := f.cfg.PotionHealBase + floorLevel*f.cfg.PotionHealPerFloor
	return entity.NewPotion(PotionName(heal), heal, pos)
}
