package session

import (
	"errors"
	"fmt"

	"github.com/towerspire/server/internal/combat"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/forge"
	"github.com/towerspire/server/internal/merchant"
	"github.com/towerspire/server/internal/protocol"
)

func (s *Session) handleMove(dir string) []any {
	result := s.combat.Move(s.player, s.floor, dir)

	switch result.Kind {
	case combat.MoveBlockedBounds:
		return []any{protocol.NewLog("无法朝那个方向移动")}
	case combat.MoveBlockedWall:
		return []any{protocol.NewLog("前方是墙壁，无法通过")}
	case combat.MoveAttacked:
		return s.composeAttack(result.Attack)
	}

	return s.afterMove()
}

// afterMove runs the auto-interactions on the cell the player stepped onto:
// descend on unblocked stairs, pickup on an unblocked item.
func (s *Session) afterMove() []any {
	pos := s.player.Position
	radius := s.services.Game.MonsterBlockRadius

	if s.floor.CellAt(pos).Type == entity.CellStairs {
		if s.floor.MonsterNear(pos, radius) {
			out := []any{protocol.NewLog("怪物距离楼梯太近，无法进入下一层！")}
			return append(out, s.floorMessages()...)
		}
		return s.descend()
	}

	if _, ok := s.floor.ItemAt(pos); ok {
		if s.floor.MonsterNear(pos, radius) {
			out := []any{protocol.NewLog("怪物距离物品太近，无法拾取道具！")}
			return append(out, s.floorMessages()...)
		}
		return s.composePickup()
	}

	return s.floorMessages()
}

// composePickup runs the pickup at the player's cell and narrates the swap.
func (s *Session) composePickup() []any {
	result, ok := s.combat.Pickup(s.player, s.floor)
	if !ok {
		return s.floorMessages()
	}

	var out []any
	item := result.Item
	switch {
	case result.Potion:
		out = append(out, protocol.NewLog(fmt.Sprintf("拾取了 %s", item.Name)))
	case item.EffectType == entity.EffectWeapon:
		out = append(out, protocol.NewLog(fmt.Sprintf("装备了武器 %s（攻击 %d）", item.Name, item.EffectValue)))
	case item.EffectType == entity.EffectArmor:
		out = append(out, protocol.NewLog(fmt.Sprintf("装备了防具 %s（防御 %d）", item.Name, item.EffectValue)))
	}
	if result.Swapped != nil {
		out = append(out, protocol.NewLog(fmt.Sprintf("旧装备 %s 掉落在地上", result.Swapped.Name)))
	}
	if result.Lost != nil {
		out = append(out, protocol.NewLog(fmt.Sprintf("旧装备 %s 无处摆放，消失了", result.Lost.Name)))
	}

	out = append(out, protocol.AutoPickup{
		Type:     protocol.TypeAutoPickup,
		ItemName: item.Name,
	})
	return append(out, s.floorMessages()...)
}

// composeAttack narrates one combat exchange: logs first, then the floor
// diff, then the combat detail. Death or a final boss kill ends the run.
func (s *Session) composeAttack(report *combat.AttackReport) []any {
	var out []any

	if report.MonsterDead {
		out = append(out, protocol.NewLog(fmt.Sprintf("击败了 %s！获得 %d 经验、%d 金币",
			report.MonsterName, report.ExpGained, report.GoldGained)))
	}
	if report.LevelsUp > 0 {
		out = append(out, protocol.NewLog(fmt.Sprintf("升级了！当前等级 %d", s.player.Level)))
	}

	out = append(out, s.floorMessages()...)
	out = append(out, s.combatMessage(report))

	if report.PlayerDead {
		return append(out, s.gameOver(fmt.Sprintf("被 %s 击杀", report.MonsterName))...)
	}
	if report.MonsterDead && s.floor.Level == s.services.Game.MaxFloors {
		out = append(out, protocol.NewLog(fmt.Sprintf("击败了最终Boss %s，通关了魔塔！", report.MonsterName)))
		return append(out, s.gameOver("通关")...)
	}
	return out
}

func (s *Session) handleUseItem(name string) []any {
	if name == "" {
		return []any{protocol.NewLog("请选择要使用的道具")}
	}
	healed, ok := s.combat.UseItem(s.player, name)
	if !ok {
		return []any{protocol.NewLog("你没有这个道具")}
	}
	out := []any{protocol.NewLog(fmt.Sprintf("使用 %s，恢复了 %d 点生命", name, healed))}
	return append(out, s.infoMessage())
}

func (s *Session) handleMerchantInfo() []any {
	if s.floor.Merchant == nil {
		return []any{protocol.NewError(protocol.TypeTradeFailed, "这一层没有商人")}
	}
	return []any{s.merchantView()}
}

func (s *Session) handleTrade(name string) []any {
	result, err := s.merchant.Buy(s.player, s.floor, name)
	if err != nil {
		reason := "交易失败"
		switch {
		case errors.Is(err, merchant.ErrNoMerchant):
			reason = "这一层没有商人"
		case errors.Is(err, merchant.ErrUnknownItem):
			reason = "商店里没有这个商品"
		case errors.Is(err, merchant.ErrNotEnoughGold):
			reason = "金币不足"
		}
		return []any{protocol.NewError(protocol.TypeTradeFailed, reason)}
	}

	out := []any{protocol.TradeSuccess{
		Type:     protocol.TypeTradeSuccess,
		ItemName: result.Item.Name,
		Price:    result.Price,
		Gold:     result.GoldLeft,
		Message:  fmt.Sprintf("购买了 %s，花费 %d 金币", result.Item.Name, result.Price),
	}}
	return append(out, s.infoMessage())
}

func (s *Session) handleForgeInfo() []any {
	return []any{s.forgeView()}
}

// handleForge runs one forge operation. Operation defaults to the affix
// upgrade; slot defaults to the weapon.
func (s *Session) handleForge(msg *protocol.Inbound) []any {
	slot := forge.SlotWeapon
	if msg.Slot == "armor" {
		slot = forge.SlotArmor
	}

	index := 0
	if msg.AttributeIndex != nil {
		index = *msg.AttributeIndex
	}

	var result *forge.Result
	var err error
	var verb string
	switch msg.Operation {
	case "", "upgrade":
		verb = "强化"
		result, err = s.forge.UpgradeAffix(s.player, slot, index)
	case "stat":
		verb = "锻造"
		result, err = s.forge.UpgradeStat(s.player, slot)
	case "add":
		verb = "附魔"
		result, err = s.forge.AddAffix(s.player, slot)
	case "reroll":
		verb = "洗练"
		result, err = s.forge.RerollAffix(s.player, slot, index)
	default:
		return []any{protocol.NewError(protocol.TypeForgeError, "未知的锻造操作")}
	}
	if err != nil {
		return []any{protocol.NewError(protocol.TypeForgeError, forgeErrorReason(err))}
	}

	outcome := protocol.ForgeOutcome{
		Cost: result.Cost,
		Gold: result.GoldLeft,
	}
	if result.Success {
		outcome.Type = protocol.TypeForgeSuccess
		outcome.Message = verb + "成功！"
		if result.Affix != nil {
			outcome.NewLevel = result.Affix.Level
		}
		outcome.NewValue = result.NewValue
	} else {
		outcome.Type = protocol.TypeForgeFailure
		outcome.Message = verb + "失败，金币已消耗"
	}
	return []any{outcome, s.infoMessage()}
}

func forgeErrorReason(err error) string {
	switch {
	case errors.Is(err, forge.ErrSlotEmpty):
		return "没有装备可以锻造"
	case errors.Is(err, forge.ErrBadAffixIndex):
		return "属性序号无效"
	case errors.Is(err, forge.ErrNotEnoughGold):
		return "金币不足"
	case errors.Is(err, forge.ErrAffixCapReached):
		return "该品质的属性数量已达上限"
	case errors.Is(err, forge.ErrNoAffixAvailable):
		return "没有可用的新属性"
	default:
		return "锻造失败"
	}
}
