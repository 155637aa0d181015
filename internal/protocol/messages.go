// Package protocol defines the JSON wire contract: the inbound command
// envelope and every typed outbound message. The session composes these;
// the transport only marshals and writes them.
package protocol

import "encoding/json"

// Outbound message types.
const (
	TypeLog                   = "log"
	TypeMap                   = "map"
	TypeInfo                  = "info"
	TypeCombat                = "combat"
	TypeGameOver              = "gameover"
	TypeAuthSuccess           = "auth_success"
	TypeAuthError             = "auth_error"
	TypeRegisterSuccess       = "register_success"
	TypeRegisterError         = "register_error"
	TypeLogoutSuccess         = "logout_success"
	TypeMerchantInfo          = "merchant_info"
	TypeTradeSuccess          = "trade_success"
	TypeTradeFailed           = "trade_failed"
	TypeForgeInfo             = "forge_info"
	TypeForgeSuccess          = "forge_success"
	TypeForgeFailure          = "forge_failure"
	TypeForgeError            = "forge_error"
	TypeAutoPickup            = "auto_pickup"
	TypeAutoDescend           = "auto_descend"
	TypeNicknameUpdateSuccess = "nickname_update_success"
	TypeNicknameUpdateError   = "nickname_update_error"
	TypePasswordChangeSuccess = "password_change_success"
	TypePasswordChangeError   = "password_change_error"
)

// Inbound is the envelope of every client message: either an auth request
// (`type: "auth"` with an action) or a game command (`cmd`).
type Inbound struct {
	Type   string `json:"type,omitempty"`
	Action string `json:"action,omitempty"`

	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	OldPassword string `json:"old_password,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	Token       string `json:"token,omitempty"`

	Cmd            string `json:"cmd,omitempty"`
	Direction      string `json:"direction,omitempty"`
	Name           string `json:"name,omitempty"`
	ItemName       string `json:"item_name,omitempty"`
	AttributeIndex *int   `json:"attribute_index,omitempty"`
	Slot           string `json:"slot,omitempty"`
	Operation      string `json:"operation,omitempty"`
}

// ParseInbound decodes one client frame.
func ParseInbound(data []byte) (*Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Log is a free-text line for the client's message pane.
type Log struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewLog wraps text in a log message.
func NewLog(text string) Log {
	return Log{Type: TypeLog, Text: text}
}

// Map carries the rendered floor grid, one character per cell.
type Map struct {
	Type string     `json:"type"`
	Grid [][]string `json:"grid"`
}

// NewMap wraps a rendered grid.
func NewMap(grid [][]string) Map {
	return Map{Type: TypeMap, Grid: grid}
}

// InventoryEntry marshals as [name, count].
type InventoryEntry [2]any

// Attribute is one affix shown in the info and forge views.
type Attribute struct {
	AttributeType string  `json:"attribute_type"`
	Value         float64 `json:"value"`
	Description   string  `json:"description"`
	Level         int     `json:"level"`
}

// Info is the full player panel.
type Info struct {
	Type             string           `json:"type"`
	HP               int              `json:"hp"`
	MaxHP            int              `json:"max_hp"`
	Attack           int              `json:"attack"`
	WeaponAtk        int              `json:"weapon_atk"`
	Defense          int              `json:"defense"`
	ArmorDef         int              `json:"armor_def"`
	TotalAtk         int              `json:"total_atk"`
	TotalDef         int              `json:"total_def"`
	Exp              int              `json:"exp"`
	ExpNeeded        int              `json:"exp_needed"`
	Level            int              `json:"level"`
	Gold             int              `json:"gold"`
	Floor            int              `json:"floor"`
	Inventory        []InventoryEntry `json:"inventory"`
	WeaponName       string           `json:"weapon_name"`
	WeaponRarity     string           `json:"weapon_rarity"`
	WeaponAttributes []Attribute      `json:"weapon_attributes"`
	ArmorName        string           `json:"armor_name"`
	ArmorRarity      string           `json:"armor_rarity"`
	ArmorAttributes  []Attribute      `json:"armor_attributes"`
}

// Combat is the detail panel for one attack exchange.
type Combat struct {
	Type          string `json:"type"`
	MonsterName   string `json:"monster_name"`
	DamageDealt   int    `json:"damage_dealt"`
	Critical      bool   `json:"critical"`
	LuckyHit      bool   `json:"lucky_hit"`
	PercentDamage int    `json:"percent_damage,omitempty"`
	ComboHits     []int  `json:"combo_hits,omitempty"`
	Lifesteal     int    `json:"lifesteal,omitempty"`
	MonsterDead   bool   `json:"monster_dead"`
	MonsterHP     int    `json:"monster_hp"`
	MonsterMaxHP  int    `json:"monster_max_hp"`
	ExpGained     int    `json:"exp_gained,omitempty"`
	GoldGained    int    `json:"gold_gained,omitempty"`
	LevelUp       int    `json:"level_up,omitempty"`
	CounterDamage int    `json:"counter_damage"`
	Blocked       bool   `json:"blocked,omitempty"`
	Dodged        bool   `json:"dodged,omitempty"`
	ThornsDamage  int    `json:"thorns_damage,omitempty"`
	PlayerHP      int    `json:"player_hp"`
}

// GameOver terminates a run.
type GameOver struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// NewGameOver wraps a game over reason.
func NewGameOver(reason string) GameOver {
	return GameOver{Type: TypeGameOver, Reason: reason}
}

// AuthSuccess acknowledges a login or token verification.
type AuthSuccess struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Error is the shared shape of every failure message.
type Error struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// NewError builds a failure message of the given type.
func NewError(msgType, reason string) Error {
	return Error{Type: msgType, Reason: reason}
}

// Ack is the shared shape of simple success messages.
type Ack struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// NewAck builds a success message of the given type.
func NewAck(msgType, message string) Ack {
	return Ack{Type: msgType, Message: message}
}

// StockView is one merchant offer.
type StockView struct {
	Name        string      `json:"name"`
	Kind        string      `json:"kind"`
	Price       int         `json:"price"`
	Rarity      string      `json:"rarity,omitempty"`
	Value       int         `json:"value"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Description string      `json:"description,omitempty"`
}

// MerchantInfo lists the current shop stock.
type MerchantInfo struct {
	Type  string      `json:"type"`
	Gold  int         `json:"gold"`
	Stock []StockView `json:"stock"`
}

// TradeSuccess acknowledges a purchase.
type TradeSuccess struct {
	Type     string `json:"type"`
	ItemName string `json:"item_name"`
	Price    int    `json:"price"`
	Gold     int    `json:"gold"`
	Message  string `json:"message,omitempty"`
}

// ForgeSlotView describes one equipped piece in the forge panel.
type ForgeSlotView struct {
	Slot        string      `json:"slot"`
	Name        string      `json:"name"`
	Rarity      string      `json:"rarity"`
	Value       int         `json:"value"`
	Attributes  []Attribute `json:"attributes"`
	UpgradeCost []int       `json:"upgrade_cost"`
	UpgradeOdds []float64   `json:"upgrade_odds"`
	StatCost    int         `json:"stat_cost"`
	AddCost     int         `json:"add_cost,omitempty"`
	RerollCost  []int       `json:"reroll_cost,omitempty"`
}

// ForgeInfo is the full forge panel.
type ForgeInfo struct {
	Type  string          `json:"type"`
	Gold  int             `json:"gold"`
	Slots []ForgeSlotView `json:"slots"`
}

// ForgeOutcome reports one forge operation.
type ForgeOutcome struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Cost     int    `json:"cost"`
	Gold     int    `json:"gold"`
	NewLevel int    `json:"new_level,omitempty"`
	NewValue int    `json:"new_value,omitempty"`
}

// AutoPickup announces an item grabbed by walking over it.
type AutoPickup struct {
	Type     string `json:"type"`
	ItemName string `json:"item_name"`
	Message  string `json:"message,omitempty"`
}

// AutoDescend announces a floor change from stepping on the stairs.
type AutoDescend struct {
	Type    string `json:"type"`
	Floor   int    `json:"floor"`
	Message string `json:"message,omitempty"`
}
