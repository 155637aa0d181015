package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/towerspire/server/internal/auth"
	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/database"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/geometry"
	"github.com/towerspire/server/internal/protocol"
	"github.com/towerspire/server/internal/rng"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "session.db"),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	services := Services{
		Game: config.Default(),
		Auth: auth.New(db, config.AuthConfig{
			JWTSecret:             "test-secret",
			TokenTTLHours:         24,
			MaxFailedLogins:       5,
			LockoutMinutes:        60,
			MaxSessionsPerAccount: 3,
		}),
		DB: db,
	}
	return New(services, rng.NewSeeded(42), "127.0.0.1", "test-client")
}

func login(t *testing.T, s *Session) []any {
	t.Helper()
	out := s.Handle([]byte(`{"type":"auth","action":"register","username":"alice","password":"secret1","nickname":"爱丽丝"}`))
	if _, ok := findType(out, protocol.TypeRegisterSuccess); !ok {
		t.Fatalf("register failed: %+v", out)
	}
	out = s.Handle([]byte(`{"type":"auth","action":"login","username":"alice","password":"secret1"}`))
	if _, ok := findType(out, protocol.TypeAuthSuccess); !ok {
		t.Fatalf("login failed: %+v", out)
	}
	return out
}

// findType returns the first message whose type field matches.
func findType(out []any, msgType string) (any, bool) {
	for _, msg := range out {
		switch m := msg.(type) {
		case protocol.Log:
			if m.Type == msgType {
				return m, true
			}
		case protocol.Map:
			if m.Type == msgType {
				return m, true
			}
		case protocol.Info:
			if m.Type == msgType {
				return m, true
			}
		case protocol.Combat:
			if m.Type == msgType {
				return m, true
			}
		case protocol.GameOver:
			if m.Type == msgType {
				return m, true
			}
		case protocol.AuthSuccess:
			if m.Type == msgType {
				return m, true
			}
		case protocol.Error:
			if m.Type == msgType {
				return m, true
			}
		case protocol.Ack:
			if m.Type == msgType {
				return m, true
			}
		case protocol.MerchantInfo:
			if m.Type == msgType {
				return m, true
			}
		case protocol.TradeSuccess:
			if m.Type == msgType {
				return m, true
			}
		case protocol.ForgeInfo:
			if m.Type == msgType {
				return m, true
			}
		case protocol.ForgeOutcome:
			if m.Type == msgType {
				return m, true
			}
		case protocol.AutoPickup:
			if m.Type == msgType {
				return m, true
			}
		case protocol.AutoDescend:
			if m.Type == msgType {
				return m, true
			}
		}
	}
	return nil, false
}

func findLogContaining(out []any, substr string) bool {
	for _, msg := range out {
		if log, ok := msg.(protocol.Log); ok && strings.Contains(log.Text, substr) {
			return true
		}
	}
	return false
}

func mustInfo(t *testing.T, out []any) protocol.Info {
	t.Helper()
	msg, ok := findType(out, protocol.TypeInfo)
	if !ok {
		t.Fatalf("no info message in %+v", out)
	}
	return msg.(protocol.Info)
}

// openFloor builds an all-empty walled floor for handcrafted scenarios.
func openFloor(level int) *entity.Floor {
	f := entity.NewFloor(level, 15)
	for y := 1; y < 14; y++ {
		for x := 1; x < 14; x++ {
			f.SetCellType(geometry.Position{X: x, Y: y}, entity.CellEmpty)
		}
	}
	f.PlayerStart = geometry.Position{X: 2, Y: 2}
	return f
}

func TestCommandsRequireLogin(t *testing.T) {
	s := newTestSession(t)
	out := s.Handle([]byte(`{"cmd":"move","direction":"up"}`))
	if !findLogContaining(out, "请先登录") {
		t.Errorf("unauthenticated move not rejected: %+v", out)
	}
}

func TestNewGameOpeningState(t *testing.T) {
	s := newTestSession(t)
	out := login(t, s)

	if !findLogContaining(out, "欢迎") {
		t.Error("missing welcome log")
	}
	if _, ok := findType(out, protocol.TypeMap); !ok {
		t.Error("missing map")
	}

	info := mustInfo(t, out)
	if info.HP != 500 || info.MaxHP != 500 || info.Attack != 50 || info.Defense != 20 {
		t.Errorf("starting stats wrong: %+v", info)
	}
	if info.Level != 1 || info.Exp != 0 || info.Gold != 0 || info.Floor != 1 {
		t.Errorf("starting progression wrong: %+v", info)
	}
	if len(info.Inventory) == 0 {
		t.Error("starting potions missing")
	}
	if s.State() != StatePlaying {
		t.Errorf("state = %d, want playing", s.State())
	}
}

func TestMoveIntoWall(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	s.floor = openFloor(1)
	s.player.Position = geometry.Position{X: 1, Y: 1}

	out := s.Handle([]byte(`{"cmd":"move","direction":"up"}`))
	if !findLogContaining(out, "前方是墙壁") {
		t.Errorf("wall bump not reported: %+v", out)
	}
	if s.player.Position != (geometry.Position{X: 1, Y: 1}) {
		t.Error("player moved through a wall")
	}
}

func TestMoveUnknownDirection(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	out := s.Handle([]byte(`{"cmd":"move","direction":"sideways"}`))
	if !findLogContaining(out, "无法朝那个方向移动") {
		t.Errorf("bad direction not reported: %+v", out)
	}
}

func TestKillWeakMonster(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	floor := openFloor(1)
	monster := entity.NewMonster("史莱姆", 1, 1, 0, 10, 5, geometry.Position{X: 3, Y: 2})
	floor.PlaceMonster(monster)
	s.floor = floor
	s.player.Position = geometry.Position{X: 2, Y: 2}
	s.player.HP = 500

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))

	msg, ok := findType(out, protocol.TypeCombat)
	if !ok {
		t.Fatalf("no combat message: %+v", out)
	}
	cm := msg.(protocol.Combat)
	if !cm.MonsterDead {
		t.Error("monster should be dead")
	}
	if cm.ExpGained < 10 || cm.GoldGained < 5 {
		t.Errorf("rewards = %d exp %d gold", cm.ExpGained, cm.GoldGained)
	}

	info := mustInfo(t, out)
	if info.HP != 500 {
		t.Errorf("dead monster countered: hp = %d", info.HP)
	}
	if len(floor.Monsters) != 0 {
		t.Error("monster not removed from floor")
	}
	// the player attacked in place
	if s.player.Position != (geometry.Position{X: 2, Y: 2}) {
		t.Error("player moved while attacking")
	}
}

func TestDescendOnStairs(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	floor := openFloor(1)
	floor.SetCellType(geometry.Position{X: 3, Y: 2}, entity.CellStairs)
	floor.StairsPos = geometry.Position{X: 3, Y: 2}
	floor.HasStairs = true
	s.floor = floor
	s.floorLevel = 1
	s.player.Position = geometry.Position{X: 2, Y: 2}

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))

	msg, ok := findType(out, protocol.TypeAutoDescend)
	if !ok {
		t.Fatalf("no auto_descend: %+v", out)
	}
	if msg.(protocol.AutoDescend).Floor != 2 {
		t.Errorf("descended to %d, want 2", msg.(protocol.AutoDescend).Floor)
	}
	if s.floorLevel != 2 {
		t.Errorf("session floor = %d", s.floorLevel)
	}
	if _, ok := findType(out, protocol.TypeMap); !ok {
		t.Error("missing new map")
	}

	// descent autosaves
	save, err := s.services.DB.GetSave(s.account.ID)
	if err != nil {
		t.Fatalf("no autosave: %v", err)
	}
	if save.FloorLevel != 2 {
		t.Errorf("saved floor = %d", save.FloorLevel)
	}
}

func TestStairsBlockedByMonster(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	floor := openFloor(1)
	floor.SetCellType(geometry.Position{X: 3, Y: 2}, entity.CellStairs)
	floor.StairsPos = geometry.Position{X: 3, Y: 2}
	floor.HasStairs = true
	floor.PlaceMonster(entity.NewMonster("守卫", 100, 10, 5, 10, 5, geometry.Position{X: 5, Y: 2}))
	s.floor = floor
	s.player.Position = geometry.Position{X: 2, Y: 2}

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))
	if !findLogContaining(out, "怪物距离楼梯太近") {
		t.Errorf("blocked stairs not reported: %+v", out)
	}
	if s.floorLevel != 1 {
		t.Error("descended through a guarded staircase")
	}
}

func TestPickupBlockedByMonster(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	floor := openFloor(1)
	potion := entity.NewPotion("血瓶+200", 200, geometry.Position{X: 3, Y: 2})
	floor.PlaceItem(potion)
	floor.PlaceMonster(entity.NewMonster("守卫", 100, 10, 5, 10, 5, geometry.Position{X: 4, Y: 2}))
	s.floor = floor
	s.player.Position = geometry.Position{X: 2, Y: 2}

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))
	if !findLogContaining(out, "怪物距离物品太近") {
		t.Errorf("blocked pickup not reported: %+v", out)
	}
	if _, ok := floor.ItemAt(geometry.Position{X: 3, Y: 2}); !ok {
		t.Error("item vanished despite the guard")
	}
}

func TestPickupPotionAndWeaponSwap(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	floor := openFloor(1)
	floor.PlaceItem(entity.NewPotion("血瓶+200", 200, geometry.Position{X: 3, Y: 2}))
	s.floor = floor
	s.player.Position = geometry.Position{X: 2, Y: 2}
	before := s.player.Inventory["血瓶+200"]

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))
	if _, ok := findType(out, protocol.TypeAutoPickup); !ok {
		t.Fatalf("no auto_pickup: %+v", out)
	}
	if s.player.Inventory["血瓶+200"] != before+1 {
		t.Error("potion not added to inventory")
	}

	// stepping onto a weapon swaps and drops the old one
	weapon := entity.NewWeapon("精良长剑", "长剑", 15, entity.RarityCommon, nil, geometry.Position{X: 4, Y: 2})
	floor.PlaceItem(weapon)
	oldWeapon := entity.NewWeapon("旧剑", "旧剑", 5, entity.RarityCommon, nil, geometry.Position{})
	s.player.Weapon = oldWeapon

	out = s.Handle([]byte(`{"cmd":"move","direction":"right"}`))
	if s.player.Weapon != weapon {
		t.Fatal("weapon not equipped")
	}
	if !findLogContaining(out, "旧装备") {
		t.Errorf("old gear drop not narrated: %+v", out)
	}
	if _, ok := floor.ItemAt(geometry.Position{X: 4, Y: 2}); !ok {
		t.Error("old weapon not dropped at the player's cell")
	}
}

func TestUseItem(t *testing.T) {
	s := newTestSession(t)
	login(t, s)
	s.player.HP = 100

	out := s.Handle([]byte(`{"cmd":"use_item","name":"血瓶+200"}`))
	if !findLogContaining(out, "恢复了 200 点生命") {
		t.Errorf("heal not reported: %+v", out)
	}
	if s.player.HP != 300 {
		t.Errorf("hp = %d, want 300", s.player.HP)
	}

	out = s.Handle([]byte(`{"cmd":"use_item","name":"不存在的药"}`))
	if !findLogContaining(out, "你没有这个道具") {
		t.Errorf("missing item not reported: %+v", out)
	}
}

func TestPlayerDeathEndsRun(t *testing.T) {
	s := newTestSession(t)
	login(t, s)
	s.autosave()

	floor := openFloor(1)
	monster := entity.NewMonster("死神", 1000000, 1000000, 1000000, 0, 0, geometry.Position{X: 3, Y: 2})
	floor.PlaceMonster(monster)
	s.floor = floor
	s.player.Position = geometry.Position{X: 2, Y: 2}

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))

	msg, ok := findType(out, protocol.TypeGameOver)
	if !ok {
		t.Fatalf("no gameover: %+v", out)
	}
	if !strings.Contains(msg.(protocol.GameOver).Reason, "死神") {
		t.Errorf("reason = %q", msg.(protocol.GameOver).Reason)
	}
	if out[len(out)-1] != msg {
		t.Error("gameover must be the terminal message")
	}
	if s.State() != StateGameOver {
		t.Error("session not in game over state")
	}

	// death deletes the save
	if _, err := s.services.DB.GetSave(s.account.ID); err == nil {
		t.Error("save survived death")
	}

	// further game commands are rejected until a restart
	out = s.Handle([]byte(`{"cmd":"move","direction":"up"}`))
	if !findLogContaining(out, "游戏已结束") {
		t.Errorf("post-gameover move not rejected: %+v", out)
	}
}

func TestSuicideRestarts(t *testing.T) {
	s := newTestSession(t)
	login(t, s)
	s.player.Gold = 999
	s.autosave()

	out := s.Handle([]byte(`{"cmd":"suicide"}`))
	info := mustInfo(t, out)
	if info.Gold != 0 || info.Floor != 1 || info.Level != 1 {
		t.Errorf("restart did not reset the run: %+v", info)
	}
	if s.State() != StatePlaying {
		t.Error("restart must return to playing")
	}
}

func TestFinalBossVictory(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	floor := openFloor(100)
	boss := entity.NewMonster("死亡骑士", 1, 0, 0, 1000, 1000, geometry.Position{X: 3, Y: 2})
	boss.IsBoss = true
	floor.PlaceMonster(boss)
	s.floor = floor
	s.floorLevel = 100
	s.player.Position = geometry.Position{X: 2, Y: 2}

	out := s.Handle([]byte(`{"cmd":"move","direction":"right"}`))
	if !findLogContaining(out, "通关") {
		t.Errorf("victory not announced: %+v", out)
	}
	if _, ok := findType(out, protocol.TypeGameOver); !ok {
		t.Error("victory must end the run")
	}
}

func TestMerchantFlow(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	// jump to the first merchant floor
	s.merchantStreak = 0
	s.enterFloor(10, nil)
	if !s.floor.IsMerchantFloor {
		t.Fatal("floor 10 must host a merchant")
	}
	if len(s.floor.Merchant.Stock) == 0 {
		t.Fatal("merchant not stocked on entry")
	}

	out := s.Handle([]byte(`{"cmd":"merchant_info"}`))
	msg, ok := findType(out, protocol.TypeMerchantInfo)
	if !ok {
		t.Fatalf("no merchant_info: %+v", out)
	}
	view := msg.(protocol.MerchantInfo)
	if len(view.Stock) < 7 {
		t.Errorf("stock size = %d", len(view.Stock))
	}

	// buy the first potion
	var target protocol.StockView
	for _, entry := range view.Stock {
		if entry.Kind == "potion" {
			target = entry
			break
		}
	}
	if target.Name == "" {
		t.Fatal("no potion in stock")
	}
	s.player.Gold = target.Price + 100

	out = s.Handle([]byte(fmt.Sprintf(`{"cmd":"trade","item_name":"%s"}`, target.Name)))
	if _, ok := findType(out, protocol.TypeTradeSuccess); !ok {
		t.Fatalf("trade failed: %+v", out)
	}
	if s.player.Gold != 100 {
		t.Errorf("gold = %d, want 100", s.player.Gold)
	}
	if s.player.Inventory[target.Name] == 0 {
		t.Error("bought potion missing from inventory")
	}

	// broke players are refused
	s.player.Gold = 0
	out = s.Handle([]byte(fmt.Sprintf(`{"cmd":"trade","item_name":"%s"}`, target.Name)))
	msgFail, ok := findType(out, protocol.TypeTradeFailed)
	if !ok {
		t.Fatalf("no trade_failed: %+v", out)
	}
	if msgFail.(protocol.Error).Reason != "金币不足" {
		t.Errorf("reason = %q", msgFail.(protocol.Error).Reason)
	}
}

func TestTradeWithoutMerchant(t *testing.T) {
	s := newTestSession(t)
	login(t, s)
	s.floor = openFloor(1)

	out := s.Handle([]byte(`{"cmd":"trade","item_name":"血瓶+200"}`))
	msg, ok := findType(out, protocol.TypeTradeFailed)
	if !ok {
		t.Fatalf("no trade_failed: %+v", out)
	}
	if msg.(protocol.Error).Reason != "这一层没有商人" {
		t.Errorf("reason = %q", msg.(protocol.Error).Reason)
	}
}

func TestForgeCommand(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	s.player.Weapon = entity.NewWeapon("铁剑", "铁剑", 20, entity.RarityCommon, []entity.Affix{
		{Kind: entity.AffixAttackBoost, BaseValue: 5},
	}, geometry.Position{})
	s.player.Gold = 100000

	out := s.Handle([]byte(`{"cmd":"forge_info"}`))
	msg, ok := findType(out, protocol.TypeForgeInfo)
	if !ok {
		t.Fatalf("no forge_info: %+v", out)
	}
	view := msg.(protocol.ForgeInfo)
	if len(view.Slots) != 1 || view.Slots[0].Slot != "weapon" {
		t.Fatalf("slots = %+v", view.Slots)
	}
	if len(view.Slots[0].UpgradeCost) != 1 || view.Slots[0].UpgradeCost[0] != 110 {
		t.Errorf("upgrade cost = %v, want [110]", view.Slots[0].UpgradeCost)
	}

	goldBefore := s.player.Gold
	out = s.Handle([]byte(`{"cmd":"forge","attribute_index":0}`))
	_, success := findType(out, protocol.TypeForgeSuccess)
	_, failure := findType(out, protocol.TypeForgeFailure)
	if !success && !failure {
		t.Fatalf("no forge outcome: %+v", out)
	}
	if s.player.Gold != goldBefore-110 {
		t.Errorf("gold = %d, cost must be debited either way", s.player.Gold)
	}

	out = s.Handle([]byte(`{"cmd":"forge","attribute_index":9}`))
	msgErr, ok := findType(out, protocol.TypeForgeError)
	if !ok {
		t.Fatalf("no forge_error: %+v", out)
	}
	if msgErr.(protocol.Error).Reason != "属性序号无效" {
		t.Errorf("reason = %q", msgErr.(protocol.Error).Reason)
	}
}

func TestLoginRestoresSave(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	s.player.Gold = 4321
	s.player.Level = 7
	s.floorLevel = 12
	s.autosave()
	s.Handle([]byte(`{"type":"auth","action":"logout"}`))

	out := s.Handle([]byte(`{"type":"auth","action":"login","username":"alice","password":"secret1"}`))
	if !findLogContaining(out, "欢迎回来") {
		t.Errorf("restore not announced: %+v", out)
	}
	info := mustInfo(t, out)
	if info.Gold != 4321 || info.Level != 7 || info.Floor != 12 {
		t.Errorf("restored state wrong: %+v", info)
	}
}

func TestVerifyTokenResumes(t *testing.T) {
	s := newTestSession(t)
	out := login(t, s)
	msg, _ := findType(out, protocol.TypeAuthSuccess)
	token := msg.(protocol.AuthSuccess).Token

	s2 := newSiblingSession(s)
	out = s2.Handle([]byte(fmt.Sprintf(`{"type":"auth","action":"verify_token","token":"%s"}`, token)))
	if _, ok := findType(out, protocol.TypeAuthSuccess); !ok {
		t.Fatalf("token resume failed: %+v", out)
	}
	if s2.State() != StatePlaying {
		t.Error("resumed session not playing")
	}

	out = s2.Handle([]byte(`{"type":"auth","action":"verify_token","token":"bogus"}`))
	if _, ok := findType(out, protocol.TypeAuthError); !ok {
		t.Errorf("bogus token accepted: %+v", out)
	}
}

// newSiblingSession shares the stores but owns fresh game state, like a
// second connection from the same player.
func newSiblingSession(s *Session) *Session {
	return New(s.services, rng.NewSeeded(43), "127.0.0.1", "test-client")
}

// reconnect builds a second session with the same generation seed as
// newTestSession, so a restored run regenerates the identical floor.
func reconnect(t *testing.T, s *Session) *Session {
	t.Helper()
	s2 := New(s.services, rng.NewSeeded(42), "127.0.0.1", "test-client")
	out := s2.Handle([]byte(`{"type":"auth","action":"login","username":"alice","password":"secret1"}`))
	if _, ok := findType(out, protocol.TypeAuthSuccess); !ok {
		t.Fatalf("reconnect login failed: %+v", out)
	}
	return s2
}

func TestRestoreKeepsSavedPosition(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	// Park the player off the start, then save the way a disconnect does.
	parked := geometry.Position{X: -1, Y: -1}
	for y := 0; y < s.floor.Height && parked.X < 0; y++ {
		for x := 0; x < s.floor.Width; x++ {
			p := geometry.Position{X: x, Y: y}
			if p != s.floor.PlayerStart && s.floor.IsEnterable(p) {
				parked = p
				break
			}
		}
	}
	if parked.X < 0 {
		t.Fatal("no enterable cell besides the start")
	}
	s.player.Position = parked
	s.OnDisconnect()

	s2 := reconnect(t, s)
	if s2.floorLevel != s.floorLevel {
		t.Fatalf("restored floor = %d, want %d", s2.floorLevel, s.floorLevel)
	}
	if s2.player.Position != parked {
		t.Errorf("restored position = %v, want %v", s2.player.Position, parked)
	}
}

func TestRestoreClampsInvalidPosition(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	// A border wall can never be stood on, whatever layout regenerates.
	s.player.Position = geometry.Position{X: 0, Y: 0}
	s.OnDisconnect()

	s2 := reconnect(t, s)
	if s2.player.Position != s2.floor.PlayerStart {
		t.Errorf("invalid saved position kept: %v, want start %v", s2.player.Position, s2.floor.PlayerStart)
	}
}

func TestChangePasswordCommand(t *testing.T) {
	s := newTestSession(t)

	out := s.Handle([]byte(`{"type":"auth","action":"change_password","old_password":"secret1","new_password":"secret2"}`))
	if _, ok := findType(out, protocol.TypePasswordChangeError); !ok {
		t.Fatalf("change before login must fail: %+v", out)
	}

	login(t, s)

	out = s.Handle([]byte(`{"type":"auth","action":"change_password","old_password":"wrong00","new_password":"secret2"}`))
	msg, ok := findType(out, protocol.TypePasswordChangeError)
	if !ok {
		t.Fatalf("wrong old password accepted: %+v", out)
	}
	if !strings.Contains(msg.(protocol.Error).Reason, "旧密码") {
		t.Errorf("unexpected reason: %+v", msg)
	}

	out = s.Handle([]byte(`{"type":"auth","action":"change_password","old_password":"secret1","new_password":"short"}`))
	if _, ok := findType(out, protocol.TypePasswordChangeError); !ok {
		t.Fatalf("weak new password accepted: %+v", out)
	}

	out = s.Handle([]byte(`{"type":"auth","action":"change_password","old_password":"secret1","new_password":"secret2"}`))
	if _, ok := findType(out, protocol.TypePasswordChangeSuccess); !ok {
		t.Fatalf("password change failed: %+v", out)
	}

	// The old credential is gone; the new one works on a fresh connection.
	s2 := newSiblingSession(s)
	out = s2.Handle([]byte(`{"type":"auth","action":"login","username":"alice","password":"secret1"}`))
	if _, ok := findType(out, protocol.TypeAuthError); !ok {
		t.Fatalf("old password still accepted: %+v", out)
	}
	out = s2.Handle([]byte(`{"type":"auth","action":"login","username":"alice","password":"secret2"}`))
	if _, ok := findType(out, protocol.TypeAuthSuccess); !ok {
		t.Fatalf("new password rejected: %+v", out)
	}
}

func TestUpdateNickname(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	out := s.Handle([]byte(`{"cmd":"update_nickname","nickname":"勇者"}`))
	if _, ok := findType(out, protocol.TypeNicknameUpdateSuccess); !ok {
		t.Fatalf("nickname update failed: %+v", out)
	}

	out = s.Handle([]byte(`{"cmd":"update_nickname","nickname":""}`))
	if _, ok := findType(out, protocol.TypeNicknameUpdateError); !ok {
		t.Errorf("empty nickname accepted: %+v", out)
	}
}

func TestMerchantForceAfterStreakCap(t *testing.T) {
	s := newTestSession(t)
	login(t, s)

	s.merchantStreak = s.services.Game.MerchantForceInterval
	s.enterFloor(20, nil)
	if !s.floor.IsMerchantFloor {
		t.Error("streak at the cap must force a merchant floor")
	}
	if s.merchantStreak != 0 {
		t.Errorf("streak = %d, want reset", s.merchantStreak)
	}
}
