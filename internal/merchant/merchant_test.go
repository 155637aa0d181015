package merchant

import (
	"errors"
	"testing"

	"github.com/towerspire/server/internal/combat"
	"github.com/towerspire/server/internal/config"
	"github.com/towerspire/server/internal/entity"
	"github.com/towerspire/server/internal/floorgen"
	"github.com/towerspire/server/internal/rng"
)

func newTestEngine(seed int64) (*Engine, *entity.Floor) {
	cfg := config.Default()
	src := rng.NewSeeded(seed)
	gen := floorgen.New(cfg, src)
	ce := combat.New(cfg, src)
	e := New(cfg, src, gen.Items(), ce)

	floor, _ := gen.Generate(10, nil, 0)
	e.Restock(floor)
	return e, floor
}

func TestRestockComposition(t *testing.T) {
	_, floor := newTestEngine(1)

	if !floor.IsMerchantFloor || floor.Merchant == nil {
		t.Fatal("floor 10 must have a merchant")
	}

	potions, weapons, armors := 0, 0, 0
	for _, entry := range floor.Merchant.Stock {
		if entry.Price <= 0 {
			t.Errorf("%s priced at %d", entry.Item.Name, entry.Price)
		}
		switch entry.Item.EffectType {
		case entity.EffectPotion:
			potions++
		case entity.EffectWeapon:
			weapons++
		case entity.EffectArmor:
			armors++
		}
	}

	if potions < 3 || potions > 4 {
		t.Errorf("potion count = %d, want 3-4", potions)
	}
	if weapons < 2 || weapons > 3 {
		t.Errorf("weapon count = %d, want 2-3", weapons)
	}
	if armors < 2 || armors > 3 {
		t.Errorf("armor count = %d, want 2-3", armors)
	}
}

func TestBuyPotion(t *testing.T) {
	e, floor := newTestEngine(2)
	player := entity.NewPlayer(500, 50, 20)
	player.Gold = 100000

	var potion entity.StockEntry
	for _, entry := range floor.Merchant.Stock {
		if entry.Item.EffectType == entity.EffectPotion {
			potion = entry
			break
		}
	}

	result, err := e.Buy(player, floor, potion.Item.Name)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if result.GoldLeft != 100000-potion.Price {
		t.Errorf("gold left = %d", result.GoldLeft)
	}
	if player.Inventory[potion.Item.Name] != 1 {
		t.Error("potion not added to inventory")
	}
}

func TestBuyWeaponReplacesWithoutDropping(t *testing.T) {
	e, floor := newTestEngine(3)
	player := entity.NewPlayer(500, 50, 20)
	player.Gold = 100000
	player.Weapon = entity.NewWeapon("旧剑", "旧剑", 5, entity.RarityCommon, nil, player.Position)

	var weapon entity.StockEntry
	for _, entry := range floor.Merchant.Stock {
		if entry.Item.EffectType == entity.EffectWeapon {
			weapon = entry
			break
		}
	}

	itemsBefore := len(floor.Items)
	if _, err := e.Buy(player, floor, weapon.Item.Name); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if player.Weapon != weapon.Item {
		t.Error("bought weapon not equipped")
	}
	if len(floor.Items) != itemsBefore {
		t.Error("trade-in gear must not drop on the floor")
	}
}

func TestBuyGating(t *testing.T) {
	e, floor := newTestEngine(4)
	player := entity.NewPlayer(500, 50, 20)

	if _, err := e.Buy(player, floor, "不存在的商品"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown item error = %v", err)
	}

	entry := floor.Merchant.Stock[0]
	player.Gold = entry.Price - 1
	if _, err := e.Buy(player, floor, entry.Item.Name); !errors.Is(err, ErrNotEnoughGold) {
		t.Errorf("poor player error = %v", err)
	}
	if player.Gold != entry.Price-1 {
		t.Error("failed buy must not debit gold")
	}

	plain := entity.NewFloor(5, 15)
	if _, err := e.Buy(player, plain, entry.Item.Name); !errors.Is(err, ErrNoMerchant) {
		t.Errorf("no-merchant error = %v", err)
	}
}
