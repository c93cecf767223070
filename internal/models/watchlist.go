package models

import (
	"strings"
	"time"
)

// WatchlistItem is a single tracked coin.
type WatchlistItem struct {
	CoinID         string    `json:"coin_id"`
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Category       string    `json:"category,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	AddedAt        time.Time `json:"added_at"`
	CurrentPrice   float64   `json:"current_price,omitempty"`
	PriceChange24h float64   `json:"price_change_24h,omitempty"`
}

// Watchlist is the whole tracked-coin collection, replaced on every write.
type Watchlist struct {
	Items      []WatchlistItem `json:"items"`
	Categories []string        `json:"categories"`
	Version    int             `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DefaultCategories seeds a new watchlist.
var DefaultCategories = []string{"Favorites", "DeFi", "Gaming", "Layer 1", "Layer 2", "Meme Coins"}

// NewWatchlist returns an empty watchlist with default categories.
func NewWatchlist() *Watchlist {
	return &Watchlist{
		Items:      []WatchlistItem{},
		Categories: append([]string(nil), DefaultCategories...),
		Version:    1,
	}
}

// FindByCoinID returns the item for a coin and its index, or -1 if absent.
func (w *Watchlist) FindByCoinID(coinID string) (*WatchlistItem, int) {
	for i := range w.Items {
		if w.Items[i].CoinID == coinID {
			return &w.Items[i], i
		}
	}
	return nil, -1
}

// Contains reports whether the coin is on the watchlist.
func (w *Watchlist) Contains(coinID string) bool {
	_, idx := w.FindByCoinID(coinID)
	return idx >= 0
}

// HasCategory reports whether the category exists (case-insensitive).
func (w *Watchlist) HasCategory(category string) bool {
	for _, c := range w.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// WatchlistExport is the envelope written by export and read by import.
type WatchlistExport struct {
	Watchlist  []WatchlistItem `json:"watchlist"`
	Categories []string        `json:"categories"`
	Alerts     []PriceAlert    `json:"alerts,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Version    string          `json:"version"`
}
