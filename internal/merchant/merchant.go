// Package merchant stocks shop floors and handles purchases. Stock gear
// comes from the same item factory as floor loot so bought weapons carry
// real rarities and affixes.
package merchant

import (
	"errors"
	"sort"

	"github.com/towerspire/server/internal/combat"
	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/floorgen"
	"github.com/towerspire/server/internal/geometry"
	"github.com/towerspire/server/internal/rng"
)

var (
	// ErrNoMerchant means the current floor has no shop.
	ErrNoMerchant = errors.New("merchant: no merchant on this floor")

	// ErrUnknownItem means the requested name is not in stock.
	ErrUnknownItem = errors.New("merchant: item not in stock")

	// ErrNotEnoughGold means the player cannot afford the item.
	ErrNotEnoughGold = errors.New("merchant: not enough gold")
)

// Engine generates merchant inventories and executes trades.
type Engine struct {
	cfg    *config.Config
	rng    rng.Source
	items  *floorgen.ItemFactory
	combat *combat.Engine
}

// New returns a merchant Engine sharing the session's item factory and
// combat engine.
func New(cfg *config.Config, src rng.Source, items *floorgen.ItemFactory, ce *combat.Engine) *Engine {
	return &Engine{cfg: cfg, rng: src, items: items, combat: ce}
}

// Restock fills the floor's merchant with 3-4 potions, 2-3 weapons, and
// 2-3 armors priced for the floor depth. No-op on floors without a
// merchant.
func (e *Engine) Restock(floor *entity.Floor) {
	if floor.Merchant == nil {
		return
	}

	basePrice := e.cfg.MerchantBasePrice + floor.Level*e.cfg.MerchantPricePerFloor
	var stock []entity.StockEntry

	stock = append(stock, e.potionStock(floor.Level, basePrice)...)

	for i, n := 0, e.rng.IntRange(2, 3); i < n; i++ {
		item := e.items.NewWeapon(floor.Level, floor.Merchant.Position)
		stock = append(stock, entity.StockEntry{
			Item:  item,
			Price: int(float64(basePrice) * e.cfg.MerchantWeaponPriceMul),
		})
	}
	for i, n := 0, e.rng.IntRange(2, 3); i < n; i++ {
		item := e.items.NewArmor(floor.Level, floor.Merchant.Position)
		stock = append(stock, entity.StockEntry{
			Item:  item,
			Price: int(float64(basePrice) * e.cfg.MerchantArmorPriceMul),
		})
	}

	floor.Merchant.Stock = stock
}

// potionStock generates tiered potions priced relative to the median heal.
func (e *Engine) potionStock(floorLevel, basePrice int) []entity.StockEntry {
	count := e.rng.IntRange(3, 4)
	baseHeal := e.cfg.PotionHealBase + floorLevel*e.cfg.PotionHealPerFloor

	heals := make([]int, count)
	for i := range heals {
		heals[i] = baseHeal * (i + 1)
	}

	sorted := append([]int(nil), heals...)
	sort.Ints(sorted)
	median := sorted[len(sorted)/2]
	if median <= 0 {
		median = 1
	}

	stock := make([]entity.StockEntry, 0, count)
	for _, heal := range heals {
		item := entity.NewPotion(floorgen.PotionName(heal), heal, geometry.Position{})
		price := int(float64(basePrice) * e.cfg.MerchantPotionPriceMul * float64(heal) / float64(median))
		stock = append(stock, entity.StockEntry{Item: item, Price: price})
	}
	return stock
}

// TradeResult reports a completed purchase.
type TradeResult struct {
	Item     *entity.Item
	Price    int
	GoldLeft int
}

// Buy purchases the first stock entry matching name. Potions go to the
// inventory; gear is equipped directly, the previous piece traded away.
func (e *Engine) Buy(player *entity.Player, floor *entity.Floor, name string) (*TradeResult, error) {
	if floor.Merchant == nil {
		return nil, ErrNoMerchant
	}
	entry, ok := floor.Merchant.FindStock(name)
	if !ok {
		return nil, ErrUnknownItem
	}
	if player.Gold < entry.Price {
		return nil, ErrNotEnoughGold
	}

	player.Gold -= entry.Price

	switch entry.Item.EffectType {
	case entity.EffectPotion:
		player.AddInventory(entry.Item.Name)
	default:
		e.combat.EquipFromStock(player, entry.Item)
	}

	return &TradeResult{Item: entry.Item, Price: entry.Price, GoldLeft: player.Gold}, nil
}
