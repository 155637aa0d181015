// Package session holds the per-connection game state machine. Each
// connection owns one Session; commands run serially against it, mutate
// state through the combat, merchant, and forge engines, and come back as
// an ordered list of protocol messages for the transport to write.
package session

import (
	"errors"
	"fmt"

	"github.com/towerspire/server/internal/auth"
	"github.com/towerspire/server/internal/combat"
	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/database"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/floorgen"
	"github.com/towerspire/server/internal/forge"
	"github.com/towerspire/server/internal/logger"
	"github.com/towerspire/server/internal/merchant"
	"github.com/towerspire/server/internal/protocol"
	"github.com/towerspire/server/internal/rng"
)

// State is the session lifecycle phase.
type State int

const (
	StateConnected State = iota
	StateAuthenticated
	StatePlaying
	StateGameOver
)

// Services bundles the process-wide collaborators a session needs.
type Services struct {
	Game *config.Config
	Auth *auth.Service
	DB   *database.Database
}

// Session is one connection's game state. Not safe for concurrent use; the
// transport must dispatch commands one at a time.
type Session struct {
	services Services

	rng      rng.Source
	gen      *floorgen.Generator
	combat   *combat.Engine
	merchant *merchant.Engine
	forge    *forge.Engine

	state   State
	account *database.Account
	token   string
	ip      string
	ua      string

	player         *entity.Player
	floor          *entity.Floor
	floorLevel     int
	merchantStreak int
	gameOverReason string
}

// New builds a session with its own RNG so a seeded source replays
// deterministically in tests.
func New(services Services, src rng.Source, ip, userAgent string) *Session {
	gen := floorgen.New(services.Game, src)
	ce := combat.New(services.Game, src)
	return &Session{
		services: services,
		rng:      src,
		gen:      gen,
		combat:   ce,
		merchant: merchant.New(services.Game, src, gen.Items(), ce),
		forge:    forge.New(services.Game, src, gen.Items()),
		state:    StateConnected,
		ip:       ip,
		ua:       userAgent,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Player returns the live player, or nil before a game starts.
func (s *Session) Player() *entity.Player { return s.player }

// Floor returns the current floor, or nil before a game starts.
func (s *Session) Floor() *entity.Floor { return s.floor }

// Handle runs one inbound frame and returns the ordered outbound messages.
func (s *Session) Handle(data []byte) []any {
	msg, err := protocol.ParseInbound(data)
	if err != nil {
		return []any{protocol.NewLog("无法识别的指令")}
	}

	if msg.Type == "auth" {
		return s.handleAuth(msg)
	}

	switch msg.Cmd {
	case "update_nickname":
		return s.handleUpdateNickname(msg.Nickname)
	case "suicide":
		return s.handleSuicide()
	}

	if s.state != StatePlaying {
		if s.state == StateGameOver {
			return []any{protocol.NewLog("游戏已结束，发送 suicide 指令重新开始")}
		}
		return []any{protocol.NewLog("请先登录")}
	}

	switch msg.Cmd {
	case "move":
		return s.handleMove(msg.Direction)
	case "use_item":
		return s.handleUseItem(msg.Name)
	case "merchant_info":
		return s.handleMerchantInfo()
	case "trade":
		return s.handleTrade(msg.ItemName)
	case "forge_info":
		return s.handleForgeInfo()
	case "forge":
		return s.handleForge(msg)
	case "":
		return []any{protocol.NewLog("指令缺少 cmd 字段")}
	default:
		return []any{protocol.NewLog(fmt.Sprintf("未知指令: %s", msg.Cmd))}
	}
}

// handleAuth dispatches the auth actions allowed in any state.
func (s *Session) handleAuth(msg *protocol.Inbound) []any {
	switch msg.Action {
	case "register":
		return s.handleRegister(msg.Username, msg.Password, msg.Nickname)
	case "login":
		return s.handleLogin(msg.Username, msg.Password)
	case "verify_token":
		return s.handleVerifyToken(msg.Token)
	case "logout":
		return s.handleLogout()
	case "change_password":
		return s.handleChangePassword(msg.OldPassword, msg.NewPassword)
	default:
		return []any{protocol.NewError(protocol.TypeAuthError, "未知的认证操作")}
	}
}

func (s *Session) handleRegister(username, password, nickname string) []any {
	if _, err := s.services.Auth.Register(username, password, nickname); err != nil {
		return []any{protocol.NewError(protocol.TypeRegisterError, registerErrorReason(err))}
	}
	logger.Audit("account registered", "username", username, "ip", s.ip)
	return []any{protocol.NewAck(protocol.TypeRegisterSuccess, "注册成功，请登录")}
}

func (s *Session) handleLogin(username, password string) []any {
	token, account, err := s.services.Auth.Login(username, password, s.ip, s.ua)
	if err != nil {
		return []any{protocol.NewError(protocol.TypeAuthError, loginErrorReason(err))}
	}
	s.account = account
	s.token = token
	s.state = StateAuthenticated
	logger.Audit("login", "username", username, "ip", s.ip)

	out := []any{protocol.AuthSuccess{
		Type:     protocol.TypeAuthSuccess,
		Token:    token,
		Nickname: account.Nickname,
		Message:  "登录成功",
	}}
	return append(out, s.enterGame()...)
}

func (s *Session) handleVerifyToken(token string) []any {
	account, err := s.services.Auth.Verify(token)
	if err != nil {
		return []any{protocol.NewError(protocol.TypeAuthError, "登录状态已失效，请重新登录")}
	}
	s.account = account
	s.token = token
	s.state = StateAuthenticated
	logger.Audit("token resume", "username", account.Username, "ip", s.ip)

	out := []any{protocol.AuthSuccess{
		Type:     protocol.TypeAuthSuccess,
		Nickname: account.Nickname,
		Message:  "恢复登录成功",
	}}
	return append(out, s.enterGame()...)
}

func (s *Session) handleLogout() []any {
	if s.token == "" {
		return []any{protocol.NewError(protocol.TypeAuthError, "尚未登录")}
	}
	if err := s.services.Auth.Logout(s.token); err != nil {
		logger.Error("logout failed", "error", err)
	}
	if s.state == StatePlaying {
		s.autosave()
	}
	logger.Audit("logout", "username", s.account.Username)
	s.account = nil
	s.token = ""
	s.player = nil
	s.floor = nil
	s.state = StateConnected
	return []any{protocol.NewAck(protocol.TypeLogoutSuccess, "已退出登录")}
}

func (s *Session) handleChangePassword(oldPassword, newPassword string) []any {
	if s.account == nil {
		return []any{protocol.NewError(protocol.TypePasswordChangeError, "请先登录")}
	}
	if err := s.services.Auth.ChangePassword(s.account.ID, oldPassword, newPassword); err != nil {
		reason := "密码修改失败"
		switch {
		case errors.Is(err, auth.ErrBadPassword):
			reason = "密码至少 6 位，且需要包含字母和数字"
		case errors.Is(err, database.ErrInvalidCredentials):
			reason = "旧密码错误"
		}
		return []any{protocol.NewError(protocol.TypePasswordChangeError, reason)}
	}
	logger.Audit("password changed", "username", s.account.Username, "ip", s.ip)
	return []any{protocol.NewAck(protocol.TypePasswordChangeSuccess, "密码已修改，下次登录请使用新密码")}
}

func (s *Session) handleUpdateNickname(nickname string) []any {
	if s.account == nil {
		return []any{protocol.NewError(protocol.TypeNicknameUpdateError, "请先登录")}
	}
	if err := s.services.Auth.UpdateNickname(s.account.ID, nickname); err != nil {
		reason := "昵称更新失败"
		switch {
		case errors.Is(err, auth.ErrBadNickname):
			reason = "昵称不能为空，且不能超过 50 个字符"
		case errors.Is(err, auth.ErrNameNotAllowed):
			reason = "该名称不可用"
		case errors.Is(err, database.ErrNicknameTaken):
			reason = "昵称已被占用"
		}
		return []any{protocol.NewError(protocol.TypeNicknameUpdateError, reason)}
	}
	s.account.Nickname = nickname
	return []any{protocol.NewAck(protocol.TypeNicknameUpdateSuccess, "昵称已更新")}
}

// OnDisconnect flushes a final autosave for a live run. The transport calls
// this when the connection drops.
func (s *Session) OnDisconnect() {
	if s.state == StatePlaying {
		s.autosave()
	}
}

func registerErrorReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrBadUsername):
		return "用户名必须以字母开头，3-20 位字母、数字或下划线"
	case errors.Is(err, auth.ErrBadPassword):
		return "密码至少 6 位，且需要包含字母和数字"
	case errors.Is(err, auth.ErrBadNickname):
		return "昵称不能为空，且不能超过 50 个字符"
	case errors.Is(err, auth.ErrNameNotAllowed):
		return "该名称不可用"
	case errors.Is(err, database.ErrAccountExists):
		return "用户名已被注册"
	case errors.Is(err, database.ErrNicknameTaken):
		return "昵称已被占用"
	default:
		return "注册失败，请稍后再试"
	}
}

func loginErrorReason(err error) string {
	switch {
	case errors.Is(err, database.ErrInvalidCredentials):
		return "用户名或密码错误"
	case errors.Is(err, database.ErrAccountLocked):
		return "失败次数过多，账号已被锁定，请稍后再试"
	default:
		return "登录失败，请稍后再试"
	}
}
