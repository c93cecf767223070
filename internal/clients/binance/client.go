// Package binance provides clients for the Binance REST and stream APIs
package binance

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
	DefaultBaseURL   = "https://api.binance.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
// Binance encodes most prices as strings.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the BinanceClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

var _ interfaces.BinanceClient = (*Client)(nil)

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

// NewClient creates a new Binance REST client. Market data endpoints need no
// credentials.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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
	return fmt.Sprintf("Binance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
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

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Binance API request")

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

// TickerPrice retrieves the current price for an exchange pair.
func (c *Client) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	var raw struct {
		Symbol string      `json:"symbol"`
		Price  flexFloat64 `json:"price"`
	}
	if err := c.get(ctx, "/api/v3/ticker/price", params, &raw); err != nil {
		return 0, err
	}
	return float64(raw.Price), nil
}

type ticker24hResponse struct {
	Symbol             string      `json:"symbol"`
	PriceChange        flexFloat64 `json:"priceChange"`
	PriceChangePercent flexFloat64 `json:"priceChangePercent"`
	WeightedAvgPrice   flexFloat64 `json:"weightedAvgPrice"`
	LastPrice          flexFloat64 `json:"lastPrice"`
	OpenPrice          flexFloat64 `json:"openPrice"`
	HighPrice          flexFloat64 `json:"highPrice"`
	LowPrice           flexFloat64 `json:"lowPrice"`
	Volume             flexFloat64 `json:"volume"`
	QuoteVolume        flexFloat64 `json:"quoteVolume"`
	OpenTime           int64       `json:"openTime"`
	CloseTime          int64       `json:"closeTime"`
	Count              int64       `json:"count"`
}

// Ticker24h retrieves 24h rolling statistics for an exchange pair.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	var raw ticker24hResponse
	if err := c.get(ctx, "/api/v3/ticker/24hr", params, &raw); err != nil {
		return nil, err
	}

	return &models.Ticker24h{
		Symbol:             raw.Symbol,
		PriceChange:        float64(raw.PriceChange),
		PriceChangePercent: float64(raw.PriceChangePercent),
		WeightedAvgPrice:   float64(raw.WeightedAvgPrice),
		LastPrice:          float64(raw.LastPrice),
		OpenPrice:          float64(raw.OpenPrice),
		HighPrice:          float64(raw.HighPrice),
		LowPrice:           float64(raw.LowPrice),
		Volume:             float64(raw.Volume),
		QuoteVolume:        float64(raw.QuoteVolume),
		OpenTime:           raw.OpenTime,
		CloseTime:          raw.CloseTime,
		Count:              raw.Count,
	}, nil
}

// Klines retrieves candle data for an exchange pair. Each row is a mixed
// array of timestamps (numbers) and prices (strings).
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	var rows [][]json.RawMessage
	if err := c.get(ctx, "/api/v3/klines", params, &rows); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}

		var openTime int64
		var open, high, low, close_, volume flexFloat64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}
		json.Unmarshal(row[1], &open)
		json.Unmarshal(row[2], &high)
		json.Unmarshal(row[3], &low)
		json.Unmarshal(row[4], &close_)
		json.Unmarshal(row[5], &volume)

		candles = append(candles, models.Candle{
			Time:   time.UnixMilli(openTime),
			Open:   float64(open),
			High:   float64(high),
			Low:    float64(low),
			Close:  float64(close_),
			Volume: float64(volume),
		})
	}
	return candles, nil
}
