package session

import (
	"sort"

	"github.com/towerspire/server/internal/combat"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/forge"
	"github.com/towerspire/server/internal/protocol"
)

// floorMessages is the standard diff after a mutation: the rendered map
// followed by the player panel.
func (s *Session) floorMessages() []any {
	return []any{s.mapMessage(), s.infoMessage()}
}

func (s *Session) mapMessage() protocol.Map {
	return protocol.NewMap(s.floor.Render(s.player.Position))
}

func (s *Session) infoMessage() protocol.Info {
	p := s.player

	names := make([]string, 0, len(p.Inventory))
	for name := range p.Inventory {
		names = append(names, name)
	}
	sort.Strings(names)
	inventory := make([]protocol.InventoryEntry, 0, len(names))
	for _, name := range names {
		inventory = append(inventory, protocol.InventoryEntry{name, p.Inventory[name]})
	}

	info := protocol.Info{
		Type:      protocol.TypeInfo,
		HP:        p.HP,
		MaxHP:     p.EffectiveMaxHP(),
		Attack:    p.BaseAtk,
		WeaponAtk: p.WeaponAtk(),
		Defense:   p.BaseDef,
		ArmorDef:  p.ArmorDef(),
		TotalAtk:  p.TotalAtk(s.floorLevel),
		TotalDef:  p.TotalDef(),
		Exp:       p.Exp,
		ExpNeeded: p.Level * s.services.Game.ExpPerLevel,
		Level:     p.Level,
		Gold:      p.Gold,
		Floor:     s.floorLevel,
		Inventory: inventory,
	}
	if p.Weapon != nil {
		info.WeaponName = p.Weapon.Name
		info.WeaponRarity = p.Weapon.Rarity
		info.WeaponAttributes = attributeViews(p.Weapon.Affixes)
	}
	if p.Armor != nil {
		info.ArmorName = p.Armor.Name
		info.ArmorRarity = p.Armor.Rarity
		info.ArmorAttributes = attributeViews(p.Armor.Affixes)
	}
	return info
}

func attributeViews(affixes []entity.Affix) []protocol.Attribute {
	views := make([]protocol.Attribute, 0, len(affixes))
	for _, a := range affixes {
		views = append(views, protocol.Attribute{
			AttributeType: a.Kind,
			Value:         a.EffectiveValue(),
			Description:   a.Description(),
			Level:         a.Level,
		})
	}
	return views
}

func (s *Session) combatMessage(report *combat.AttackReport) protocol.Combat {
	return protocol.Combat{
		Type:          protocol.TypeCombat,
		MonsterName:   report.MonsterName,
		DamageDealt:   report.TotalDamage,
		Critical:      report.Critical,
		LuckyHit:      report.LuckyHit,
		PercentDamage: report.PercentDamage,
		ComboHits:     report.ComboHits,
		Lifesteal:     report.Lifesteal,
		MonsterDead:   report.MonsterDead,
		MonsterHP:     report.MonsterHP,
		MonsterMaxHP:  report.MonsterMax,
		ExpGained:     report.ExpGained,
		GoldGained:    report.GoldGained,
		LevelUp:       report.LevelsUp,
		CounterDamage: report.CounterDamage,
		Blocked:       report.Blocked,
		Dodged:        report.Dodged,
		ThornsDamage:  report.ThornsDamage,
		PlayerHP:      s.player.HP,
	}
}

func (s *Session) merchantView() protocol.MerchantInfo {
	stock := make([]protocol.StockView, 0, len(s.floor.Merchant.Stock))
	for _, entry := range s.floor.Merchant.Stock {
		view := protocol.StockView{
			Name:  entry.Item.Name,
			Kind:  string(entry.Item.EffectType),
			Price: entry.Price,
			Value: entry.Item.EffectValue,
		}
		if entry.Item.EffectType != entity.EffectPotion {
			view.Rarity = entry.Item.Rarity
			view.Attributes = attributeViews(entry.Item.Affixes)
		}
		stock = append(stock, view)
	}
	return protocol.MerchantInfo{
		Type:  protocol.TypeMerchantInfo,
		Gold:  s.player.Gold,
		Stock: stock,
	}
}

func (s *Session) forgeView() protocol.ForgeInfo {
	view := protocol.ForgeInfo{
		Type: protocol.TypeForgeInfo,
		Gold: s.player.Gold,
	}
	if slot := s.forgeSlotView(forge.SlotWeapon, s.player.Weapon); slot != nil {
		view.Slots = append(view.Slots, *slot)
	}
	if slot := s.forgeSlotView(forge.SlotArmor, s.player.Armor); slot != nil {
		view.Slots = append(view.Slots, *slot)
	}
	return view
}

// forgeSlotView previews every forge operation's cost for one equipped
// piece. All the cost helpers are pure.
func (s *Session) forgeSlotView(slot forge.Slot, item *entity.Item) *protocol.ForgeSlotView {
	if item == nil {
		return nil
	}

	view := &protocol.ForgeSlotView{
		Slot:       string(slot),
		Name:       item.Name,
		Rarity:     item.Rarity,
		Value:      item.EffectValue,
		Attributes: attributeViews(item.Affixes),
		StatCost:   s.forge.UpgradeStatCost(s.player, item),
	}
	for i := range item.Affixes {
		view.UpgradeCost = append(view.UpgradeCost, s.forge.UpgradeAffixCost(s.player, item, i))
		view.UpgradeOdds = append(view.UpgradeOdds, s.forge.UpgradeAffixChance(item, i))
		view.RerollCost = append(view.RerollCost, s.forge.RerollAffixCost(s.player, item, i))
	}
	if len(item.Affixes) < s.services.Game.Rarities[item.Rarity].AffixCount {
		view.AddCost = s.forge.AddAffixCost(s.player, item)
	}
	return view
}
