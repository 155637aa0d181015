package entity

import "github.com/towerspire/server/internal/geometry"

// StockEntry is one item a merchant sells, with its fixed price.
type StockEntry struct {
	Item  *Item `json:"item"`
	Price int   `json:"price"`
}

// Merchant is the single trader on a merchant floor.
type Merchant struct {
	Position geometry.Position `json:"position"`
	Stock    []StockEntry      `json:"stock"`
}

// FindStock returns the first stock entry whose item name matches.
func (m *Merchant) FindStock(name string) (StockEntry, bool) {
	for _, entry := range m.Stock {
		if entry.Item.Name == name {
			return entry, true
		}
	}
	return StockEntry{}, false
}
