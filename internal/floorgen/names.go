package floorgen

import "fmt"

// Monster base names, roughly ordered by menace.
var monsterBaseNames = []string{
	"史莱姆", "哥布林", "骷髅兵", "僵尸", "蝙蝠",
	"史莱姆王", "兽人", "幽灵", "狼人", "石像鬼",
	"黑暗法师", "恶魔", "吸血鬼", "龙人", "熔岩怪",
}

// Monster name prefixes. The empty prefix yields the plain base name.
var monsterPrefixes = []string{"", "强化", "精英", "狂暴", "暗影", "诅咒"}

// Guard name prefixes by protected target.
const (
	guardPrefixGear   = "守卫"
	guardPrefixStairs = "楼梯守卫"
)

// weaponThemes maps a weapon's dominant affix kind to its base name.
var weaponThemes = map[string]string{
	"attack_boost":     "战刃",
	"damage_mult":      "破坏之剑",
	"armor_pen":        "穿甲枪",
	"life_steal":       "嗜血之刃",
	"gold_bonus":       "贪婪之刃",
	"critical_chance":  "致命匕首",
	"combo_chance":     "疾风双刀",
	"kill_heal":        "收割镰刀",
	"exp_bonus":        "贤者之杖",
	"thorn_damage":     "荆棘之剑",
	"damage_reduction": "守护之剑",
	"percent_damage":   "屠龙巨剑",
	"floor_bonus":      "登塔之刃",
	"lucky_hit":        "幸运短剑",
	"berserk_mode":     "狂战士之斧",
}

// armorThemes maps an armor's dominant affix kind to its base name.
var armorThemes = map[string]string{
	"defense_boost":    "铁壁重甲",
	"damage_reduction": "守护铠甲",
	"thorn_reflect":    "荆棘甲",
	"block_chance":     "坚盾胸甲",
	"dodge_chance":     "疾风皮甲",
	"hp_boost":         "生命秘银甲",
	"floor_heal":       "再生鳞甲",
	"kill_heal":        "收割者战甲",
	"potion_boost":     "药师法袍",
}

// weaponTheme returns the base name for a weapon dominated by the given
// affix kind.
func weaponTheme(kind string) string {
	if name, ok := weaponThemes[kind]; ok {
		return name
	}
	return "长剑"
}

// armorTheme returns the base name for an armor dominated by the given affix
// kind.
func armorTheme(kind string) string {
	if name, ok := armorThemes[kind]; ok {
		return name
	}
	return "铁甲"
}

// PotionName encodes the heal amount in the name so using the potion later
// can recover it without extra state.
func PotionName(heal int) string {
	return fmt.Sprintf("血瓶+%d", heal)
}
