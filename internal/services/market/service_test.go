package market

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

type memMarketStore struct {
	coins    map[string]*models.Coin
	overview *models.MarketOverview
}

func newMemMarketStore() *memMarketStore {
	return &memMarketStore{coins: make(map[string]*models.Coin)}
}

func (m *memMarketStore) GetCoin(ctx context.Context, coinID string) (*models.Coin, error) {
	return m.coins[coinID], nil
}

func (m *memMarketStore) SaveCoin(ctx context.Context, coin *models.Coin) error {
	m.coins[coin.ID] = coin
	return nil
}

func (m *memMarketStore) SaveCoins(ctx context.Context, coins []*models.Coin) error {
	for _, c := range coins {
		m.coins[c.ID] = c
	}
	return nil
}

func (m *memMarketStore) ListCoins(ctx context.Context, limit int) ([]*models.Coin, error) {
	var out []*models.Coin
	for _, c := range m.coins {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketCapRank < out[j].MarketCapRank })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memMarketStore) GetOverview(ctx context.Context) (*models.MarketOverview, error) {
	return m.overview, nil
}

func (m *memMarketStore) SaveOverview(ctx context.Context, o *models.MarketOverview) error {
	m.overview = o
	return nil
}

type memStorage struct {
	market *memMarketStore
}

func (m *memStorage) PortfolioStore() interfaces.PortfolioStore { return nil }
func (m *memStorage) WatchlistStore() interfaces.WatchlistStore { return nil }
func (m *memStorage) AlertStore() interfaces.AlertStore         { return nil }
func (m *memStorage) MarketStore() interfaces.MarketStore       { return m.market }
func (m *memStorage) SettingsStore() interfaces.SettingsStore   { return nil }
func (m *memStorage) Close() error                              { return nil }

type stubGecko struct {
	topCoins    []*models.Coin
	simplePrice map[string]float64
	coin        *models.Coin
	global      *models.MarketOverview
	trending    []*models.TrendingCoin

	err           error
	topCalls      int
	simpleCalls   int
	coinCalls     int
	globalCalls   int
	trendingCalls int
}

func (s *stubGecko) TopCoins(ctx context.Context, limit int, currency string) ([]*models.Coin, error) {
	s.topCalls++
	return s.topCoins, s.err
}

func (s *stubGecko) CoinByID(ctx context.Context, coinID, currency string) (*models.Coin, error) {
	s.coinCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.coin, nil
}

func (s *stubGecko) SimplePrice(ctx context.Context, coinIDs []string, currency string) (map[string]float64, error) {
	s.simpleCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]float64)
	for _, id := range coinIDs {
		if v, ok := s.simplePrice[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (s *stubGecko) OHLC(ctx context.Context, coinID string, days int, currency string) ([]models.Candle, error) {
	return nil, nil
}

func (s *stubGecko) Global(ctx context.Context) (*models.MarketOverview, error) {
	s.globalCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.global, nil
}

func (s *stubGecko) Trending(ctx context.Context) ([]*models.TrendingCoin, error) {
	s.trendingCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.trending, nil
}

func newTestService(gecko *stubGecko) (*Service, *memStorage) {
	storage := &memStorage{market: newMemMarketStore()}
	return NewService(storage, gecko, "usd", common.NewSilentLogger()), storage
}

func TestRefreshTopUpdatesPricesAndStore(t *testing.T) {
	gecko := &stubGecko{
		topCoins: []*models.Coin{
			{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 50000, MarketCapRank: 1},
			{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3000, MarketCapRank: 2},
		},
	}
	svc, storage := newTestService(gecko)

	require.NoError(t, svc.RefreshTop(context.Background(), 10))

	price, ok := svc.GetPrice("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 50000.0, price)

	coins, err := storage.market.ListCoins(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, coins, 2)
}

func TestRefreshCoins(t *testing.T) {
	gecko := &stubGecko{simplePrice: map[string]float64{"bitcoin": 51000, "solana": 150}}
	svc, _ := newTestService(gecko)

	require.NoError(t, svc.RefreshCoins(context.Background(), []string{"bitcoin", "solana", "unlisted"}))

	prices := svc.GetPrices([]string{"bitcoin", "solana", "unlisted"})
	assert.Equal(t, map[string]float64{"bitcoin": 51000, "solana": 150}, prices)

	_, ok := svc.GetPrice("unlisted")
	assert.False(t, ok)
}

func TestRefreshCoinsEmptyListSkipsFetch(t *testing.T) {
	gecko := &stubGecko{}
	svc, _ := newTestService(gecko)

	require.NoError(t, svc.RefreshCoins(context.Background(), nil))
	assert.Zero(t, gecko.simpleCalls)
}

func TestApplyTickMapsPairToCoin(t *testing.T) {
	gecko := &stubGecko{
		topCoins: []*models.Coin{
			{ID: "bitcoin", Symbol: "btc", CurrentPrice: 50000, MarketCapRank: 1},
		},
	}
	svc, _ := newTestService(gecko)
	require.NoError(t, svc.RefreshTop(context.Background(), 10))

	svc.ApplyTick(models.PriceTick{Symbol: "BTCUSDT", Price: 50750, Timestamp: time.Now()})

	price, ok := svc.GetPrice("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 50750.0, price)

	// Unknown pairs are dropped without touching the map.
	svc.ApplyTick(models.PriceTick{Symbol: "XYZUSDT", Price: 1})
	prices := svc.GetPrices([]string{"bitcoin"})
	assert.Equal(t, 50750.0, prices["bitcoin"])
}

func TestGetCoinServesFreshCopyWithoutFetch(t *testing.T) {
	gecko := &stubGecko{}
	svc, storage := newTestService(gecko)
	storage.market.coins["bitcoin"] = &models.Coin{
		ID: "bitcoin", Symbol: "btc", CurrentPrice: 50000, LastUpdated: time.Now(),
	}

	coin, err := svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", coin.ID)
	assert.Zero(t, gecko.coinCalls)
}

func TestGetCoinRefreshesStaleCopy(t *testing.T) {
	gecko := &stubGecko{
		coin: &models.Coin{ID: "bitcoin", Symbol: "btc", CurrentPrice: 52000, LastUpdated: time.Now()},
	}
	svc, storage := newTestService(gecko)
	storage.market.coins["bitcoin"] = &models.Coin{
		ID: "bitcoin", Symbol: "btc", CurrentPrice: 50000, LastUpdated: time.Now().Add(-time.Hour),
	}

	coin, err := svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 52000.0, coin.CurrentPrice)
	assert.Equal(t, 1, gecko.coinCalls)

	price, ok := svc.GetPrice("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 52000.0, price)
}

func TestGetCoinFallsBackToStaleOnFetchError(t *testing.T) {
	gecko := &stubGecko{err: errors.New("rate limited")}
	svc, storage := newTestService(gecko)
	storage.market.coins["bitcoin"] = &models.Coin{
		ID: "bitcoin", CurrentPrice: 50000, LastUpdated: time.Now().Add(-time.Hour),
	}

	coin, err := svc.GetCoin(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, coin.CurrentPrice)

	_, err = svc.GetCoin(context.Background(), "never-seen")
	assert.Error(t, err)
}

func TestOverviewCachedBehindTTL(t *testing.T) {
	gecko := &stubGecko{
		global: &models.MarketOverview{TotalMarketCap: 2.5e12, BitcoinDominance: 52},
	}
	svc, _ := newTestService(gecko)

	first, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.5e12, first.TotalMarketCap)
	assert.Equal(t, 1, gecko.globalCalls)

	_, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gecko.globalCalls)
}

func TestTrendingCachedBehindTTL(t *testing.T) {
	gecko := &stubGecko{
		trending: []*models.TrendingCoin{{ID: "pepe", Name: "Pepe", Symbol: "PEPE"}},
	}
	svc, _ := newTestService(gecko)

	first, err := svc.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = svc.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gecko.trendingCalls)
}

func TestListCoinsFetchesWhenStoreEmpty(t *testing.T) {
	gecko := &stubGecko{
		topCoins: []*models.Coin{{ID: "bitcoin", Symbol: "btc", MarketCapRank: 1}},
	}
	svc, _ := newTestService(gecko)

	coins, err := svc.ListCoins(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, 1, gecko.topCalls)

	_, err = svc.ListCoins(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, gecko.topCalls)
}
