package session

import (
	"errors"
	"fmt"

	"github.com/towerspire/server/internal/database"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/floorgen"
	"github.com/towerspire/server/internal/logger"
	"github.com/towerspire/server/internal/protocol"
)

// enterGame restores the account's save or starts a fresh run, and emits
// the opening message batch.
func (s *Session) enterGame() []any {
	save, err := s.services.DB.GetSave(s.account.ID)
	switch {
	case err == nil:
		return s.restoreGame(save)
	case errors.Is(err, database.ErrSaveNotFound):
		return s.newGame()
	default:
		logger.Error("failed to load save", "account", s.account.ID, "error", err)
		return s.newGame()
	}
}

// newGame starts a level-1 run with the configured starting stats.
func (s *Session) newGame() []any {
	cfg := s.services.Game
	s.player = entity.NewPlayer(cfg.PlayerStartHP, cfg.PlayerStartAtk, cfg.PlayerStartDef)
	for i := 0; i < cfg.StartingPotions; i++ {
		s.player.AddInventory(floorgen.PotionName(cfg.DefaultPotionHeal))
	}

	s.merchantStreak = 0
	s.gameOverReason = ""
	s.enterFloor(1, nil)
	s.state = StatePlaying

	out := []any{protocol.NewLog(fmt.Sprintf("欢迎来到魔塔，%s！你的冒险从第 1 层开始。", s.account.Nickname))}
	return append(out, s.floorMessages()...)
}

// restoreGame rebuilds a run from a save. The floor is regenerated from the
// stored level; only the player and the level survive a disconnect.
func (s *Session) restoreGame(save *database.Save) []any {
	s.player = save.Player
	saved := save.Player.Position
	s.merchantStreak = save.MerchantStreak
	s.gameOverReason = ""

	// enterFloor parks the player on the regenerated start; put them back
	// on the saved cell unless the new layout invalidated it.
	s.enterFloor(save.FloorLevel, nil)
	if s.floor.IsEnterable(saved) {
		s.player.Position = saved
	}
	s.state = StatePlaying

	out := []any{protocol.NewLog(fmt.Sprintf("欢迎回来，%s！你在第 %d 层继续冒险。", s.account.Nickname, save.FloorLevel))}
	return append(out, s.floorMessages()...)
}

// enterFloor generates the floor for level and places the player at its
// start. Merchant floors are stocked on entry.
func (s *Session) enterFloor(level int, prev *entity.Floor) {
	floor, streak := s.gen.Generate(level, prev, s.merchantStreak)
	s.floor = floor
	s.floorLevel = floor.Level
	s.merchantStreak = streak
	s.player.Position = floor.PlayerStart

	if floor.IsMerchantFloor {
		s.merchant.Restock(floor)
	}
}

// descend moves the run one floor down, applies floor_heal, and autosaves.
func (s *Session) descend() []any {
	next := s.floorLevel + 1
	s.enterFloor(next, s.floor)

	var out []any
	out = append(out, protocol.AutoDescend{
		Type:    protocol.TypeAutoDescend,
		Floor:   s.floorLevel,
		Message: fmt.Sprintf("来到了第 %d 层", s.floorLevel),
	})
	if healed := s.combat.FloorHeal(s.player); healed > 0 {
		out = append(out, protocol.NewLog(fmt.Sprintf("踏入新楼层，恢复了 %d 点生命", healed)))
	}
	if s.floor.IsMerchantFloor {
		out = append(out, protocol.NewLog("这一层有一位神秘商人，发送交易指令购买商品吧！"))
	}
	if s.floor.Level == s.services.Game.MaxFloors {
		out = append(out, protocol.NewLog("塔顶到了。最终Boss在前方等着你。"))
	}

	s.autosave()
	return append(out, s.floorMessages()...)
}

// autosave persists the run. Failures are logged and swallowed; the next
// autosave overwrites.
func (s *Session) autosave() {
	if s.account == nil || s.player == nil {
		return
	}
	save := database.NewSave(s.account.ID, s.player, s.floorLevel, s.merchantStreak)
	if err := s.services.DB.UpsertSave(save); err != nil {
		logger.Error("autosave failed", "account", s.account.ID, "error", err)
	}
}

// gameOver ends the run and deletes the save. The gameover frame is the
// terminal message of the response.
func (s *Session) gameOver(reason string) []any {
	s.state = StateGameOver
	s.gameOverReason = reason

	if err := s.services.DB.DeleteSave(s.account.ID); err != nil {
		logger.Error("failed to delete save on game over", "account", s.account.ID, "error", err)
	}
	logger.Info("game over", "account", s.account.ID, "floor", s.floorLevel, "reason", reason)

	return []any{protocol.NewGameOver(reason)}
}

// handleSuicide abandons the current run and starts over.
func (s *Session) handleSuicide() []any {
	if s.account == nil {
		return []any{protocol.NewLog("请先登录")}
	}
	if s.state != StatePlaying && s.state != StateGameOver {
		return []any{protocol.NewLog("当前没有进行中的游戏")}
	}

	if err := s.services.DB.DeleteSave(s.account.ID); err != nil {
		logger.Error("failed to delete save on restart", "account", s.account.ID, "error", err)
	}

	out := []any{protocol.NewLog("你放弃了这次冒险，新的征程开始了。")}
	return append(out, s.newGame()...)
}
