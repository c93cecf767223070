// Package models defines data structures for Coindeck
package models

import "time"

// Coin represents one row of aggregator market data for a cryptocurrency.
// Field shapes follow the CoinGecko /coins/markets payload.
type Coin struct {
	ID                       string    `json:"id"`
	Symbol                   string    `json:"symbol"`
	Name                     string    `json:"name"`
	Image                    string    `json:"image,omitempty"`
	CurrentPrice             float64   `json:"current_price"`
	MarketCap                float64   `json:"market_cap"`
	MarketCapRank            int       `json:"market_cap_rank"`
	FullyDilutedValuation    float64   `json:"fully_diluted_valuation,omitempty"`
	TotalVolume              float64   `json:"total_volume"`
	High24h                  float64   `json:"high_24h"`
	Low24h                   float64   `json:"low_24h"`
	PriceChange24h           float64   `json:"price_change_24h"`
	PriceChangePercent24h    float64   `json:"price_change_percentage_24h"`
	MarketCapChange24h       float64   `json:"market_cap_change_24h"`
	MarketCapChangePct24h    float64   `json:"market_cap_change_percentage_24h"`
	CirculatingSupply        float64   `json:"circulating_supply"`
	TotalSupply              float64   `json:"total_supply"`
	MaxSupply                float64   `json:"max_supply,omitempty"`
	ATH                      float64   `json:"ath"`
	ATHChangePercent         float64   `json:"ath_change_percentage"`
	ATHDate                  time.Time `json:"ath_date"`
	ATL                      float64   `json:"atl"`
	ATLChangePercent         float64   `json:"atl_change_percentage"`
	ATLDate                  time.Time `json:"atl_date"`
	PriceChangePct1h         float64   `json:"price_change_percentage_1h_in_currency,omitempty"`
	PriceChangePct7d         float64   `json:"price_change_percentage_7d_in_currency,omitempty"`
	PriceChangePct30d        float64   `json:"price_change_percentage_30d_in_currency,omitempty"`
	LastUpdated              time.Time `json:"last_updated"`
}

// MarketOverview aggregates global market statistics.
type MarketOverview struct {
	TotalMarketCap     float64   `json:"total_market_cap"`
	TotalVolume24h     float64   `json:"total_volume_24h"`
	MarketCapChangePct float64   `json:"market_cap_change_percentage_24h"`
	BitcoinDominance   float64   `json:"bitcoin_dominance"`
	ActiveCoins        int       `json:"active_coins"`
	Markets            int       `json:"markets"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TrendingCoin is a trending-search entry from the aggregator.
type TrendingCoin struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	MarketCapRank int     `json:"market_cap_rank"`
	PriceBTC      float64 `json:"price_btc"`
	Score         int     `json:"score"`
}

// PriceTick is a single streaming price update from the exchange.
type PriceTick struct {
	Symbol    string    `json:"symbol"` // exchange pair, e.g. "BTCUSDT"
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticker24h holds 24h rolling statistics for an exchange pair.
type Ticker24h struct {
	Symbol             string  `json:"symbol"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	WeightedAvgPrice   float64 `json:"weighted_avg_price"`
	LastPrice          float64 `json:"last_price"`
	OpenPrice          float64 `json:"open_price"`
	HighPrice          float64 `json:"high_price"`
	LowPrice           float64 `json:"low_price"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quote_volume"`
	OpenTime           int64   `json:"open_time"`
	CloseTime          int64   `json:"close_time"`
	Count              int64   `json:"count"`
}

// Candle is one OHLC bar for chart data.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}
