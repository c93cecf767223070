// Package coingecko provides a client for the CoinGecko API
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second; the free tier throttles hard
)

// Client implements the CoinGeckoClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.CoinGeckoClient = (*Client)(nil)

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new CoinGecko client. The API key is optional; without
// one the client runs against the free tier.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CoinGecko API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("CoinGecko API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// TopCoins retrieves top coins by market cap. The markets payload maps onto
// models.Coin directly.
func (c *Client) TopCoins(ctx context.Context, limit int, currency string) ([]*models.Coin, error) {
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("page", "1")
	params.Set("price_change_percentage", "1h,7d,30d")

	var coins []*models.Coin
	if err := c.get(ctx, "/coins/markets", params, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// CoinByID retrieves a single coin's market row.
func (c *Client) CoinByID(ctx context.Context, coinID string, currency string) (*models.Coin, error) {
	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("ids", coinID)
	params.Set("price_change_percentage", "1h,7d,30d")

	var coins []*models.Coin
	if err := c.get(ctx, "/coins/markets", params, &coins); err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("coin '%s' not found", coinID)
	}
	return coins[0], nil
}

// SimplePrice retrieves spot prices for the given coin ids.
func (c *Client) SimplePrice(ctx context.Context, coinIDs []string, currency string) (map[string]float64, error) {
	if len(coinIDs) == 0 {
		return map[string]float64{}, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(coinIDs, ","))
	params.Set("vs_currencies", currency)

	var raw map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", params, &raw); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(raw))
	for id, currencies := range raw {
		if price, ok := currencies[currency]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}

// OHLC retrieves candle data. The payload is an array of
// [timestamp_ms, open, high, low, close] rows.
func (c *Client) OHLC(ctx context.Context, coinID string, days int, currency string) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("days", strconv.Itoa(days))

	var rows [][]float64
	if err := c.get(ctx, fmt.Sprintf("/coins/%s/ohlc", coinID), params, &rows); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, models.Candle{
			Time:  time.UnixMilli(int64(row[0])),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	return candles, nil
}

type globalResponse struct {
	Data struct {
		ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
		Markets                int                `json:"markets"`
		TotalMarketCap         map[string]float64 `json:"total_market_cap"`
		TotalVolume            map[string]float64 `json:"total_volume"`
		MarketCapPercentage    map[string]float64 `json:"market_cap_percentage"`
		MarketCapChangePct24h  float64            `json:"market_cap_change_percentage_24h_usd"`
	} `json:"data"`
}

// Global retrieves the global market overview.
func (c *Client) Global(ctx context.Context) (*models.MarketOverview, error) {
	var raw globalResponse
	if err := c.get(ctx, "/global", nil, &raw); err != nil {
		return nil, err
	}

	return &models.MarketOverview{
		TotalMarketCap:     raw.Data.TotalMarketCap["usd"],
		TotalVolume24h:     raw.Data.TotalVolume["usd"],
		MarketCapChangePct: raw.Data.MarketCapChangePct24h,
		BitcoinDominance:   raw.Data.MarketCapPercentage["btc"],
		ActiveCoins:        raw.Data.ActiveCryptocurrencies,
		Markets:            raw.Data.Markets,
		UpdatedAt:          time.Now(),
	}, nil
}

type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string  `json:"id"`
			Name          string  `json:"name"`
			Symbol        string  `json:"symbol"`
			MarketCapRank int     `json:"market_cap_rank"`
			PriceBTC      float64 `json:"price_btc"`
			Score         int     `json:"score"`
		} `json:"item"`
	} `json:"coins"`
}

// Trending retrieves trending search coins.
func (c *Client) Trending(ctx context.Context) ([]*models.TrendingCoin, error) {
	var raw trendingResponse
	if err := c.get(ctx, "/search/trending", nil, &raw); err != nil {
		return nil, err
	}

	coins := make([]*models.TrendingCoin, 0, len(raw.Coins))
	for _, entry := range raw.Coins {
		coins = append(coins, &models.TrendingCoin{
			ID:            entry.Item.ID,
			Name:          entry.Item.Name,
			Symbol:        entry.Item.Symbol,
			MarketCapRank: entry.Item.MarketCapRank,
			PriceBTC:      entry.Item.PriceBTC,
			Score:         entry.Item.Score,
		})
	}
	return coins, nil
}
