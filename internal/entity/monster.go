package entity

import (
	"github.com/google/uuid"

	"github.com/towerspire/server/internal/geometry"
)

// Monster is a stationary floor enemy. Monsters never move or initiate
// combat; they strike back when attacked.
type Monster struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	HP         int               `json:"hp"`
	MaxHP      int               `json:"max_hp"`
	Atk        int               `json:"atk"`
	Def        int               `json:"def"`
	ExpReward  int               `json:"exp_reward"`
	GoldReward int               `json:"gold_reward"`
	Position   geometry.Position `json:"position"`
	IsBoss     bool              `json:"is_boss,omitempty"`
	IsGuard    bool              `json:"is_guard,omitempty"`
}

// NewMonster returns a monster with full HP at the given position.
func NewMonster(name string, hp, atk, def, exp, gold int, pos geometry.Position) *Monster {
	return &Monster{
		ID:         uuid.NewString(),
		Name:       name,
		HP:         hp,
		MaxHP:      hp,
		Atk:        atk,
		Def:        def,
		ExpReward:  exp,
		GoldReward: gold,
		Position:   pos,
	}
}

// Alive reports whether the monster still has HP.
func (m *Monster) Alive() bool {
	return m.HP > 0
}

// ApplyDamage reduces the monster's HP, clamped at zero, and returns the
// damage actually absorbed.
func (m *Monster) ApplyDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if amount > m.HP {
		amount = m.HP
	}
	m.HP -= amount
	return amount
}
