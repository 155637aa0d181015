package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/towerspire/server/internal/entity"
)

// ErrSaveNotFound is returned when an account has no save.
var ErrSaveNotFound = errors.New("save not found")

// Save is one account's persisted run: the player snapshot plus the floor
// to regenerate on restore. The floor layout itself is never stored; the
// level is enough to rebuild one.
type Save struct {
	AccountID      int64
	FloorLevel     int
	MerchantStreak int
	Player         *entity.Player
	UpdatedAt      time.Time
}

// NewSave snapshots a live run.
func NewSave(accountID int64, player *entity.Player, floorLevel, merchantStreak int) *Save {
	return &Save{
		AccountID:      accountID,
		FloorLevel:     floorLevel,
		MerchantStreak: merchantStreak,
		Player:         player,
	}
}

func marshalGear(item *entity.Item) (string, error) {
	if item == nil {
		return "", nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("failed to encode equipment: %w", err)
	}
	return string(data), nil
}

func unmarshalGear(data string) (*entity.Item, error) {
	if data == "" {
		return nil, nil
	}
	var item entity.Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}
	return &item, nil
}

// UpsertSave writes the account's save, replacing any previous one.
func (d *Database) UpsertSave(save *Save) error {
	p := save.Player
	weapon, err := marshalGear(p.Weapon)
	if err != nil {
		return err
	}
	armor, err := marshalGear(p.Armor)
	if err != nil {
		return err
	}
	inventory, err := json.Marshal(p.Inventory)
	if err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}

	query := rebind(d.dialect, `UPDATE saves SET
		floor_level = ?, merchant_streak = ?,
		hp = ?, max_hp = ?, base_atk = ?, base_def = ?,
		exp = ?, level = ?, gold = ?, pos_x = ?, pos_y = ?,
		weapon = ?, armor = ?, inventory = ?, updated_at = CURRENT_TIMESTAMP
		WHERE account_id = ?`)
	result, err := d.db.Exec(query,
		save.FloorLevel, save.MerchantStreak,
		p.HP, p.MaxHP, p.BaseAtk, p.BaseDef,
		p.Exp, p.Level, p.Gold, p.Position.X, p.Position.Y,
		weapon, armor, string(inventory),
		save.AccountID)
	if err != nil {
		return fmt.Errorf("failed to update save: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	query = rebind(d.dialect, `INSERT INTO saves
		(account_id, floor_level, merchant_streak,
		 hp, max_hp, base_atk, base_def, exp, level, gold, pos_x, pos_y,
		 weapon, armor, inventory)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := d.db.Exec(query,
		save.AccountID, save.FloorLevel, save.MerchantStreak,
		p.HP, p.MaxHP, p.BaseAtk, p.BaseDef,
		p.Exp, p.Level, p.Gold, p.Position.X, p.Position.Y,
		weapon, armor, string(inventory)); err != nil {
		return fmt.Errorf("failed to insert save: %w", err)
	}
	return nil
}

// GetSave loads an account's save, or ErrSaveNotFound.
func (d *Database) GetSave(accountID int64) (*Save, error) {
	var save Save
	var player entity.Player
	var weapon, armor, inventory string

	query := rebind(d.dialect, `SELECT
		account_id, floor_level, merchant_streak,
		hp, max_hp, base_atk, base_def, exp, level, gold, pos_x, pos_y,
		weapon, armor, inventory, updated_at
		FROM saves WHERE account_id = ?`)
	err := d.db.QueryRow(query, accountID).Scan(
		&save.AccountID, &save.FloorLevel, &save.MerchantStreak,
		&player.HP, &player.MaxHP, &player.BaseAtk, &player.BaseDef,
		&player.Exp, &player.Level, &player.Gold, &player.Position.X, &player.Position.Y,
		&weapon, &armor, &inventory, &save.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaveNotFound
		}
		return nil, fmt.Errorf("failed to get save: %w", err)
	}

	if player.Weapon, err = unmarshalGear(weapon); err != nil {
		return nil, err
	}
	if player.Armor, err = unmarshalGear(armor); err != nil {
		return nil, err
	}
	player.Inventory = make(map[string]int)
	if inventory != "" {
		if err := json.Unmarshal([]byte(inventory), &player.Inventory); err != nil {
			return nil, fmt.Errorf("failed to decode inventory: %w", err)
		}
	}
	if player.Inventory == nil {
		player.Inventory = make(map[string]int)
	}

	save.Player = &player
	return &save, nil
}

// HasSave reports whether the account has a stored run.
func (d *Database) HasSave(accountID int64) (bool, error) {
	var count int
	query := rebind(d.dialect, "SELECT COUNT(*) FROM saves WHERE account_id = ?")
	if err := d.db.QueryRow(query, accountID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check save: %w", err)
	}
	return count > 0, nil
}

// DeleteSave removes the account's save, typically on death.
func (d *Database) DeleteSave(accountID int64) error {
	query := rebind(d.dialect, "DELETE FROM saves WHERE account_id = ?")
	if _, err := d.db.Exec(query, accountID); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}
