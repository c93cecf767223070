package watchlist

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

type memWatchlistStore struct {
	w *models.Watchlist
}

func (m *memWatchlistStore) GetWatchlist(ctx context.Context) (*models.Watchlist, error) {
	return m.w, nil
}

func (m *memWatchlistStore) SaveWatchlist(ctx context.Context, w *models.Watchlist) error {
	m.w = w
	return nil
}

type memMarketStore struct {
	coins map[string]*models.Coin
}

func (m *memMarketStore) GetCoin(ctx context.Context, coinID string) (*models.Coin, error) {
	return m.coins[coinID], nil
}
func (m *memMarketStore) SaveCoin(ctx context.Context, coin *models.Coin) error    { return nil }
func (m *memMarketStore) SaveCoins(ctx context.Context, coins []*models.Coin) error { return nil }
func (m *memMarketStore) ListCoins(ctx context.Context, limit int) ([]*models.Coin, error) {
	return nil, nil
}
func (m *memMarketStore) GetOverview(ctx context.Context) (*models.MarketOverview, error) {
	return nil, nil
}
func (m *memMarketStore) SaveOverview(ctx context.Context, o *models.MarketOverview) error {
	return nil
}

type memStorage struct {
	watchlist memWatchlistStore
	market    memMarketStore
}

func (m *memStorage) PortfolioStore() interfaces.PortfolioStore { return nil }
func (m *memStorage) WatchlistStore() interfaces.WatchlistStore { return &m.watchlist }
func (m *memStorage) AlertStore() interfaces.AlertStore         { return nil }
func (m *memStorage) MarketStore() interfaces.MarketStore       { return &m.market }
func (m *memStorage) SettingsStore() interfaces.SettingsStore   { return nil }
func (m *memStorage) Close() error                              { return nil }

type stubMarket struct {
	prices map[string]float64
}

func (s *stubMarket) RefreshTop(ctx context.Context, limit int) error          { return nil }
func (s *stubMarket) RefreshCoins(ctx context.Context, coinIDs []string) error { return nil }
func (s *stubMarket) ApplyTick(tick models.PriceTick)                          {}

func (s *stubMarket) GetPrice(coinID string) (float64, bool) {
	v, ok := s.prices[coinID]
	return v, ok
}

func (s *stubMarket) GetPrices(coinIDs []string) map[string]float64 {
	out := make(map[string]float64)
	for _, id := range coinIDs {
		if v, ok := s.prices[id]; ok {
			out[id] = v
		}
	}
	return out
}

func (s *stubMarket) ListCoins(ctx context.Context, limit int) ([]*models.Coin, error) {
	return nil, nil
}
func (s *stubMarket) GetCoin(ctx context.Context, coinID string) (*models.Coin, error) {
	return nil, nil
}
func (s *stubMarket) Overview(ctx context.Context) (*models.MarketOverview, error) { return nil, nil }
func (s *stubMarket) Trending(ctx context.Context) ([]*models.TrendingCoin, error) { return nil, nil }

type stubAlerts struct {
	alerts       []models.PriceAlert
	deletedCoins []string
}

func (s *stubAlerts) CreateAlert(ctx context.Context, alert models.PriceAlert) (*models.PriceAlert, error) {
	return &alert, nil
}
func (s *stubAlerts) GetAlert(ctx context.Context, id string) (*models.PriceAlert, error) {
	return nil, nil
}
func (s *stubAlerts) ListAlerts(ctx context.Context) ([]models.PriceAlert, error) {
	return s.alerts, nil
}
func (s *stubAlerts) UpdateAlert(ctx context.Context, id string, enabled *bool, targetPrice *float64) (*models.PriceAlert, error) {
	return nil, nil
}
func (s *stubAlerts) DeleteAlert(ctx context.Context, id string) error { return nil }
func (s *stubAlerts) ResetAlert(ctx context.Context, id string) (*models.PriceAlert, error) {
	return nil, nil
}

func (s *stubAlerts) DeleteByCoin(ctx context.Context, coinID string) (int, error) {
	s.deletedCoins = append(s.deletedCoins, coinID)
	n := 0
	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.CoinID == coinID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept
	return n, nil
}

func (s *stubAlerts) ReplaceAll(ctx context.Context, alerts []models.PriceAlert) error {
	s.alerts = alerts
	return nil
}

func (s *stubAlerts) CheckAll(ctx context.Context) ([]models.PriceAlert, error) { return nil, nil }

func newTestService(prices map[string]float64) (*Service, *memStorage, *stubAlerts) {
	storage := &memStorage{}
	alerts := &stubAlerts{}
	svc := NewService(storage, &stubMarket{prices: prices}, alerts, common.NewSilentLogger())
	return svc, storage, alerts
}

func TestGetWatchlistSeedsDefaults(t *testing.T) {
	svc, _, _ := newTestService(nil)

	w, err := svc.GetWatchlist(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Items)
	assert.Equal(t, models.DefaultCategories, w.Categories)
	assert.Equal(t, 1, w.Version)
}

func TestAddItem(t *testing.T) {
	svc, storage, _ := newTestService(map[string]float64{"bitcoin": 50000})
	storage.market.coins = map[string]*models.Coin{
		"bitcoin": {ID: "bitcoin", Symbol: "BTC", PriceChangePercent24h: -1.2},
	}

	w, err := svc.AddItem(context.Background(), models.WatchlistItem{
		CoinID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Category: "Favorites",
	})
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, "BTC", w.Items[0].Symbol)
	assert.Equal(t, 50000.0, w.Items[0].CurrentPrice)
	assert.Equal(t, -1.2, w.Items[0].PriceChange24h)
	assert.False(t, w.Items[0].AddedAt.IsZero())
	require.NotNil(t, storage.watchlist.w)

	// Re-adding the same coin updates in place.
	w, err = svc.AddItem(context.Background(), models.WatchlistItem{
		CoinID: "bitcoin", Symbol: "BTC", Category: "Layer 1", Notes: "keep an eye on it",
	})
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, "Layer 1", w.Items[0].Category)
	assert.Equal(t, "keep an eye on it", w.Items[0].Notes)

	_, err = svc.AddItem(context.Background(), models.WatchlistItem{Symbol: "BTC"})
	assert.Error(t, err)
}

func TestRemoveItemDropsAlerts(t *testing.T) {
	svc, _, alerts := newTestService(nil)
	alerts.alerts = []models.PriceAlert{
		{ID: "a1", CoinID: "bitcoin"},
		{ID: "a2", CoinID: "ethereum"},
	}

	_, err := svc.AddItem(context.Background(), models.WatchlistItem{CoinID: "bitcoin", Symbol: "BTC"})
	require.NoError(t, err)

	w, err := svc.RemoveItem(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Empty(t, w.Items)
	assert.Equal(t, []string{"bitcoin"}, alerts.deletedCoins)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "ethereum", alerts.alerts[0].CoinID)

	_, err = svc.RemoveItem(context.Background(), "bitcoin")
	assert.Error(t, err)
}

func TestClearRemovesItemsAndAlerts(t *testing.T) {
	svc, _, alerts := newTestService(nil)
	// The solana alert has no watchlist item; a clear still removes it.
	alerts.alerts = []models.PriceAlert{
		{ID: "a1", CoinID: "bitcoin"},
		{ID: "a2", CoinID: "ethereum"},
		{ID: "a3", CoinID: "solana"},
	}

	_, err := svc.AddItem(context.Background(), models.WatchlistItem{CoinID: "bitcoin", Symbol: "BTC"})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), models.WatchlistItem{CoinID: "ethereum", Symbol: "ETH"})
	require.NoError(t, err)

	w, err := svc.Clear(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Items)
	assert.Equal(t, models.DefaultCategories, w.Categories)
	assert.Empty(t, alerts.alerts)
}

func TestCategories(t *testing.T) {
	svc, _, _ := newTestService(nil)

	w, err := svc.AddCategory(context.Background(), "AI Tokens")
	require.NoError(t, err)
	assert.Contains(t, w.Categories, "AI Tokens")

	_, err = svc.AddCategory(context.Background(), "ai tokens")
	assert.Error(t, err, "duplicate check is case-insensitive")

	_, err = svc.AddItem(context.Background(), models.WatchlistItem{
		CoinID: "fetch-ai", Symbol: "FET", Category: "AI Tokens",
	})
	require.NoError(t, err)

	w, err = svc.RemoveCategory(context.Background(), "AI Tokens")
	require.NoError(t, err)
	assert.NotContains(t, w.Categories, "AI Tokens")
	assert.Empty(t, w.Items[0].Category, "items under a removed category become uncategorized")

	_, err = svc.RemoveCategory(context.Background(), "Nope")
	assert.Error(t, err)
}

func TestRefreshPrices(t *testing.T) {
	svc, storage, _ := newTestService(map[string]float64{"bitcoin": 51000})
	storage.market.coins = map[string]*models.Coin{
		"bitcoin": {ID: "bitcoin", Symbol: "BTC", PriceChangePercent24h: 2.5},
	}

	_, err := svc.AddItem(context.Background(), models.WatchlistItem{CoinID: "bitcoin", Symbol: "BTC"})
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), models.WatchlistItem{CoinID: "obscurecoin", Symbol: "OBS"})
	require.NoError(t, err)

	w, err := svc.RefreshPrices(context.Background())
	require.NoError(t, err)

	btc, _ := w.FindByCoinID("bitcoin")
	assert.Equal(t, 51000.0, btc.CurrentPrice)
	assert.Equal(t, 2.5, btc.PriceChange24h)

	// No live price and no stored row keep the stored values.
	obs, _ := w.FindByCoinID("obscurecoin")
	assert.Zero(t, obs.CurrentPrice)
	assert.Zero(t, obs.PriceChange24h)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _, alerts := newTestService(nil)
	alerts.alerts = []models.PriceAlert{{ID: "a1", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 60000}}

	_, err := svc.AddItem(context.Background(), models.WatchlistItem{CoinID: "bitcoin", Symbol: "BTC", Category: "Favorites"})
	require.NoError(t, err)
	_, err = svc.AddCategory(context.Background(), "AI Tokens")
	require.NoError(t, err)

	data, err := svc.Export(context.Background())
	require.NoError(t, err)

	var envelope models.WatchlistExport
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Len(t, envelope.Watchlist, 1)
	assert.Contains(t, envelope.Categories, "AI Tokens")
	assert.Len(t, envelope.Alerts, 1)
	assert.Equal(t, "1.0", envelope.Version)

	// Import into a fresh service restores items, categories, and alerts.
	fresh, _, freshAlerts := newTestService(nil)
	require.NoError(t, fresh.Import(context.Background(), data))

	w, err := fresh.GetWatchlist(context.Background())
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.Equal(t, "bitcoin", w.Items[0].CoinID)
	assert.Contains(t, w.Categories, "AI Tokens")

	require.Len(t, freshAlerts.alerts, 1)
	assert.Equal(t, "a1", freshAlerts.alerts[0].ID)
	assert.Equal(t, 60000.0, freshAlerts.alerts[0].TargetPrice)
}

func TestImportRejectsMalformedData(t *testing.T) {
	svc, storage, _ := newTestService(nil)

	assert.Error(t, svc.Import(context.Background(), []byte("{not json")))
	assert.Error(t, svc.Import(context.Background(), []byte(`{"categories":["A"]}`)))
	assert.Nil(t, storage.watchlist.w, "nothing written on rejected import")
}
