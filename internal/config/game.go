package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// AffixSpec describes one affix kind: its roll weight, base magnitude,
// growth per floor, and whether the value is a ratio rather than a flat
// amount.
type AffixSpec struct {
	Weight     float64 `yaml:"weight"`
	Base       float64 `yaml:"base"`
	Scale      float64 `yaml:"scale"`
	Percentage bool    `yaml:"percentage"`
}

// RaritySpec describes one rarity tier: how many affixes an item of this
// tier rolls, its drop weight, the multiplier applied to affix values, and
// the name prefixes the generator draws from.
type RaritySpec struct {
	AffixCount        int      `yaml:"affix_count"`
	DropWeight        float64  `yaml:"drop_weight"`
	ValueMultiplier   float64  `yaml:"value_multiplier"`
	Prefixes          []string `yaml:"prefixes"`
	ForgeCostMult     float64  `yaml:"forge_cost_mult"`
	ForgeSuccessBonus float64  `yaml:"forge_success_bonus"`
}

// BossStats is the final-boss stat block.
type BossStats struct {
	Name string `yaml:"name"`
	HP   int    `yaml:"hp"`
	Atk  int    `yaml:"atk"`
	Def  int    `yaml:"def"`
	Exp  int    `yaml:"exp"`
	Gold int    `yaml:"gold"`
}

// Config is the full set of game tunables.
type Config struct {
	// Floor layout
	MaxFloors       int `yaml:"max_floors"`
	GridSize        int `yaml:"grid_size"`
	RoomCountMin    int `yaml:"room_count_min"`
	RoomCountMax    int `yaml:"room_count_max"`
	RoomSizeMin     int `yaml:"room_size_min"`
	RoomSizeMax     int `yaml:"room_size_max"`
	MaxRoomAttempts int `yaml:"max_room_attempts"`

	// Monster scaling (linear per floor, then ±variance)
	MonsterCountBase    int     `yaml:"monster_count_base"`
	MonsterCountDivisor int     `yaml:"monster_count_divisor"`
	MonsterBaseHP       int     `yaml:"monster_base_hp"`
	MonsterHPPerFloor   int     `yaml:"monster_hp_per_floor"`
	MonsterBaseAtk      int     `yaml:"monster_base_atk"`
	MonsterAtkPerFloor  int     `yaml:"monster_atk_per_floor"`
	MonsterBaseDef      int     `yaml:"monster_base_def"`
	MonsterDefPerFloor  int     `yaml:"monster_def_per_floor"`
	MonsterBaseExp      int     `yaml:"monster_base_exp"`
	MonsterExpPerFloor  int     `yaml:"monster_exp_per_floor"`
	MonsterBaseGold     int     `yaml:"monster_base_gold"`
	MonsterGoldPerFloor int     `yaml:"monster_gold_per_floor"`
	MonsterVariance     float64 `yaml:"monster_variance"`

	FinalBoss BossStats `yaml:"final_boss"`

	// Combat
	MinDamage            int     `yaml:"min_damage"`
	CriticalHitChance    float64 `yaml:"critical_hit_chance"`
	CriticalHitMult      float64 `yaml:"critical_hit_multiplier"`
	LuckyHitMult         float64 `yaml:"lucky_hit_multiplier"`
	BossPercentCapHP     int     `yaml:"boss_percent_cap_hp"`
	BossPercentCap       float64 `yaml:"boss_percent_cap"`
	BlockDamageRetention float64 `yaml:"block_damage_retention"`
	MonsterBlockRadius   int     `yaml:"monster_block_radius"`

	// Player start and progression
	PlayerStartHP      int `yaml:"player_start_hp"`
	PlayerStartAtk     int `yaml:"player_start_atk"`
	PlayerStartDef     int `yaml:"player_start_def"`
	StartingPotions    int `yaml:"starting_potions"`
	DefaultPotionHeal  int `yaml:"default_potion_heal"`
	LevelUpHP          int `yaml:"level_up_hp"`
	LevelUpAtk         int `yaml:"level_up_atk"`
	LevelUpDef         int `yaml:"level_up_def"`
	ExpPerLevel        int `yaml:"exp_per_level"`
	PotionHealBase     int `yaml:"potion_heal_base"`
	PotionHealPerFloor int `yaml:"potion_heal_per_floor"`

	// Potion placement
	PotionCountBase    int `yaml:"potion_count_base"`
	PotionCountDivisor int `yaml:"potion_count_divisor"`

	// Gear base stat scaling
	WeaponAtkBase     int `yaml:"weapon_atk_base"`
	WeaponAtkPerFloor int `yaml:"weapon_atk_per_floor"`
	ArmorDefBase      int `yaml:"armor_def_base"`
	ArmorDefPerFloor  int `yaml:"armor_def_per_floor"`

	// High-value item cadence
	HighValueItemInterval   int     `yaml:"high_value_item_interval"`
	HighValueItemBaseChance float64 `yaml:"high_value_item_base_chance"`
	HighValueItemMax        int     `yaml:"high_value_item_max"`

	// Guard placement weights and radii
	GuardWeightWeapon float64 `yaml:"guard_weight_weapon"`
	GuardWeightArmor  float64 `yaml:"guard_weight_armor"`
	GuardWeightStairs float64 `yaml:"guard_weight_stairs"`
	GuardRadiusGear   int     `yaml:"guard_radius_gear"`
	GuardRadiusStairs int     `yaml:"guard_radius_stairs"`

	// Merchant cadence and pricing
	MerchantFirstFloor     int     `yaml:"merchant_first_floor"`
	MerchantBaseChance     float64 `yaml:"merchant_base_chance"`
	MerchantChanceIncr     float64 `yaml:"merchant_chance_increment"`
	MerchantForceInterval  int     `yaml:"merchant_force_interval"`
	MerchantBasePrice      int     `yaml:"merchant_base_price"`
	MerchantPricePerFloor  int     `yaml:"merchant_price_per_floor"`
	MerchantPotionPriceMul float64 `yaml:"merchant_potion_price_mult"`
	MerchantWeaponPriceMul float64 `yaml:"merchant_weapon_price_mult"`
	MerchantArmorPriceMul  float64 `yaml:"merchant_armor_price_mult"`

	// Forge: affix upgrades
	ForgeBaseCost        int     `yaml:"forge_base_cost"`
	ForgeLevelCost       int     `yaml:"forge_level_cost"`
	ForgePlayerLevelCost int     `yaml:"forge_player_level_cost"`
	ForgeBaseSuccess     float64 `yaml:"forge_base_success"`
	ForgeSuccessDecay    float64 `yaml:"forge_success_decay"`
	ForgeMinSuccess      float64 `yaml:"forge_min_success"`
	ForgeMaxSuccess      float64 `yaml:"forge_max_success"`

	// Forge: base stat upgrades
	ForgeStatCostBase      int     `yaml:"forge_stat_cost_base"`
	ForgeStatCostAtkMult   int     `yaml:"forge_stat_cost_atk_mult"`
	ForgeStatCostDefMult   int     `yaml:"forge_stat_cost_def_mult"`
	ForgeStatCostLevelMult int     `yaml:"forge_stat_cost_level_mult"`
	ForgeStatSuccess       float64 `yaml:"forge_stat_success"`
	ForgeStatGainRatio     float64 `yaml:"forge_stat_gain_ratio"`

	// Forge: add affix
	ForgeAddCostBase      int     `yaml:"forge_add_cost_base"`
	ForgeAddCostLevelMult int     `yaml:"forge_add_cost_level_mult"`
	ForgeAddCostPerAffix  int     `yaml:"forge_add_cost_per_affix"`
	ForgeAddSuccess       float64 `yaml:"forge_add_success"`

	// Forge: reroll affix
	ForgeRerollCostBase      int     `yaml:"forge_reroll_cost_base"`
	ForgeRerollCostPerLevel  int     `yaml:"forge_reroll_cost_per_level"`
	ForgeRerollCostLevelMult int     `yaml:"forge_reroll_cost_level_mult"`
	ForgeRerollSuccess       float64 `yaml:"forge_reroll_success"`

	// Affix tables, keyed by affix kind
	WeaponAffixes map[string]AffixSpec `yaml:"weapon_affixes"`
	ArmorAffixes  map[string]AffixSpec `yaml:"armor_affixes"`

	// Rarity tiers
	Rarities map[string]RaritySpec `yaml:"rarities"`
}

// Default returns the canonical game tuning.
func Default() *Config {
	return &Config{
		MaxFloors:       100,
		GridSize:        15,
		RoomCountMin:    4,
		RoomCountMax:    6,
		RoomSizeMin:     3,
		RoomSizeMax:     6,
		MaxRoomAttempts: 100,

		MonsterCountBase:    3,
		MonsterCountDivisor: 5,
		MonsterBaseHP:       80,
		MonsterHPPerFloor:   20,
		MonsterBaseAtk:      25,
		MonsterAtkPerFloor:  5,
		MonsterBaseDef:      12,
		MonsterDefPerFloor:  2,
		MonsterBaseExp:      20,
		MonsterExpPerFloor:  5,
		MonsterBaseGold:     10,
		MonsterGoldPerFloor: 3,
		MonsterVariance:     0.2,

		FinalBoss: BossStats{
			Name: "死亡骑士",
			HP:   5000,
			Atk:  800,
			Def:  200,
			Exp:  0,
			Gold: 9999,
		},

		MinDamage:            1,
		CriticalHitChance:    0.05,
		CriticalHitMult:      2.0,
		LuckyHitMult:         3.0,
		BossPercentCapHP:     1000,
		BossPercentCap:       0.05,
		BlockDamageRetention: 0.4,
		MonsterBlockRadius:   3,

		PlayerStartHP:      500,
		PlayerStartAtk:     50,
		PlayerStartDef:     20,
		StartingPotions:    3,
		DefaultPotionHeal:  200,
		LevelUpHP:          50,
		LevelUpAtk:         5,
		LevelUpDef:         3,
		ExpPerLevel:        100,
		PotionHealBase:     100,
		PotionHealPerFloor: 20,

		PotionCountBase:    2,
		PotionCountDivisor: 8,

		WeaponAtkBase:     10,
		WeaponAtkPerFloor: 3,
		ArmorDefBase:      5,
		ArmorDefPerFloor:  2,

		HighValueItemInterval:   10,
		HighValueItemBaseChance: 0.35,
		HighValueItemMax:        2,

		GuardWeightWeapon: 0.4,
		GuardWeightArmor:  0.4,
		GuardWeightStairs: 0.3,
		GuardRadiusGear:   3,
		GuardRadiusStairs: 2,

		MerchantFirstFloor:     10,
		MerchantBaseChance:     0.10,
		MerchantChanceIncr:     0.05,
		MerchantForceInterval:  15,
		MerchantBasePrice:      10,
		MerchantPricePerFloor:  5,
		MerchantPotionPriceMul: 2.0,
		MerchantWeaponPriceMul: 3.0,
		MerchantArmorPriceMul:  2.5,

		ForgeBaseCost:        100,
		ForgeLevelCost:       50,
		ForgePlayerLevelCost: 10,
		ForgeBaseSuccess:     0.8,
		ForgeSuccessDecay:    0.05,
		ForgeMinSuccess:      0.3,
		ForgeMaxSuccess:      0.95,

		ForgeStatCostBase:      300,
		ForgeStatCostAtkMult:   2,
		ForgeStatCostDefMult:   3,
		ForgeStatCostLevelMult: 15,
		ForgeStatSuccess:       0.9,
		ForgeStatGainRatio:     0.05,

		ForgeAddCostBase:      500,
		ForgeAddCostLevelMult: 25,
		ForgeAddCostPerAffix:  200,
		ForgeAddSuccess:       0.7,

		ForgeRerollCostBase:      400,
		ForgeRerollCostPerLevel:  100,
		ForgeRerollCostLevelMult: 20,
		ForgeRerollSuccess:       0.8,

		WeaponAffixes: map[string]AffixSpec{
			"attack_boost":     {Weight: 3.0, Base: 5, Scale: 2},
			"damage_mult":      {Weight: 2.0, Base: 0.10, Scale: 0.005, Percentage: true},
			"armor_pen":        {Weight: 2.0, Base: 3, Scale: 1.5},
			"life_steal":       {Weight: 2.0, Base: 0.05, Scale: 0.003, Percentage: true},
			"gold_bonus":       {Weight: 2.0, Base: 0.10, Scale: 0.005, Percentage: true},
			"critical_chance":  {Weight: 2.0, Base: 0.05, Scale: 0.003, Percentage: true},
			"combo_chance":     {Weight: 2.0, Base: 0.08, Scale: 0.004, Percentage: true},
			"kill_heal":        {Weight: 1.5, Base: 10, Scale: 3},
			"exp_bonus":        {Weight: 2.0, Base: 0.10, Scale: 0.005, Percentage: true},
			"thorn_damage":     {Weight: 1.5, Base: 0.10, Scale: 0.005, Percentage: true},
			"damage_reduction": {Weight: 1.5, Base: 0.04, Scale: 0.002, Percentage: true},
			"percent_damage":   {Weight: 1.0, Base: 0.01, Scale: 0.0005, Percentage: true},
			"floor_bonus":      {Weight: 1.0, Base: 0.5, Scale: 0.1},
			"lucky_hit":        {Weight: 1.0, Base: 0.03, Scale: 0.002, Percentage: true},
			"berserk_mode":     {Weight: 1.0, Base: 0.30, Scale: 0.01, Percentage: true},
		},
		ArmorAffixes: map[string]AffixSpec{
			"defense_boost":    {Weight: 3.0, Base: 4, Scale: 1.5},
			"damage_reduction": {Weight: 2.0, Base: 0.05, Scale: 0.003, Percentage: true},
			"thorn_reflect":    {Weight: 2.0, Base: 0.10, Scale: 0.005, Percentage: true},
			"block_chance":     {Weight: 2.0, Base: 0.06, Scale: 0.003, Percentage: true},
			"dodge_chance":     {Weight: 2.0, Base: 0.04, Scale: 0.002, Percentage: true},
			"hp_boost":         {Weight: 3.0, Base: 50, Scale: 15},
			"floor_heal":       {Weight: 1.5, Base: 0.05, Scale: 0.002, Percentage: true},
			"kill_heal":        {Weight: 1.5, Base: 10, Scale: 3},
			"potion_boost":     {Weight: 1.5, Base: 0.15, Scale: 0.008, Percentage: true},
		},

		Rarities: map[string]RaritySpec{
			"common":    {AffixCount: 1, DropWeight: 60, ValueMultiplier: 1.0, Prefixes: []string{"普通的", "陈旧的"}, ForgeCostMult: 1.0},
			"rare":      {AffixCount: 2, DropWeight: 25, ValueMultiplier: 1.2, Prefixes: []string{"精良的", "锋利的"}, ForgeCostMult: 1.2, ForgeSuccessBonus: 0.02},
			"epic":      {AffixCount: 3, DropWeight: 12, ValueMultiplier: 1.5, Prefixes: []string{"史诗的", "魔力的"}, ForgeCostMult: 1.5, ForgeSuccessBonus: 0.04},
			"legendary": {AffixCount: 4, DropWeight: 3, ValueMultiplier: 2.0, Prefixes: []string{"传说的", "神圣的"}, ForgeCostMult: 2.0, ForgeSuccessBonus: 0.05},
		},
	}
}

// Load reads game tunables from a YAML file layered over the defaults.
// A missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}
