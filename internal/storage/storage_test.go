package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = t.TempDir()

	m, err := NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPortfolioRoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.PortfolioStore()

	missing, err := store.GetPortfolio(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	p := &models.Portfolio{
		ID:   "p1",
		Name: "Main",
		Holdings: []models.Holding{
			{CoinID: "bitcoin", Symbol: "BTC", Amount: 1, AvgBuyPrice: 20000},
		},
	}
	require.NoError(t, store.SavePortfolio(ctx, p))

	got, err := store.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Main", got.Name)
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, "bitcoin", got.Holdings[0].CoinID)

	listed, err := store.ListPortfolios(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, store.DeletePortfolio(ctx, "p1"))
	got, err = store.GetPortfolio(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCurrentPortfolioPointer(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.PortfolioStore()

	id, err := store.GetCurrentID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SetCurrentID(ctx, "p1"))
	id, err = store.GetCurrentID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	require.NoError(t, store.SetCurrentID(ctx, ""))
	id, err = store.GetCurrentID(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestTransactionLog(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.PortfolioStore()

	base := time.Now().Add(-time.Hour)
	txs := []*models.Transaction{
		{ID: "t2", PortfolioID: "p1", Type: models.TransactionSell, CoinID: "bitcoin", Amount: 0.5, Timestamp: base.Add(time.Minute)},
		{ID: "t1", PortfolioID: "p1", Type: models.TransactionBuy, CoinID: "bitcoin", Amount: 1, Timestamp: base},
		{ID: "t3", PortfolioID: "p2", Type: models.TransactionBuy, CoinID: "ethereum", Amount: 2, Timestamp: base},
	}
	for _, tx := range txs {
		require.NoError(t, store.SaveTransaction(ctx, tx))
	}

	// Only p1's log, ordered by timestamp.
	listed, err := store.ListTransactions(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "t1", listed[0].ID)
	assert.Equal(t, "t2", listed[1].ID)

	removed, err := store.DeleteTransactions(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	listed, err = store.ListTransactions(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Other portfolios keep their log.
	other, err := store.ListTransactions(ctx, "p2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestWatchlistDocument(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.WatchlistStore()

	missing, err := store.GetWatchlist(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	w := models.NewWatchlist()
	w.Items = append(w.Items, models.WatchlistItem{CoinID: "bitcoin", Symbol: "BTC"})
	require.NoError(t, store.SaveWatchlist(ctx, w))

	got, err := store.GetWatchlist(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, models.DefaultCategories, got.Categories)
	assert.Equal(t, 1, got.Version)
}

func TestAlertDocument(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.AlertStore()

	missing, err := store.GetAlerts(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	base := 48000.0
	col := &models.AlertCollection{
		Alerts: []models.PriceAlert{
			{ID: "a1", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 50000, Enabled: true},
			{ID: "a2", CoinID: "bitcoin", Type: models.AlertPercentChange, TargetPrice: 5, BasePrice: &base, Enabled: true},
		},
	}
	require.NoError(t, store.SaveAlerts(ctx, col))

	got, err := store.GetAlerts(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Alerts, 2)
	assert.Equal(t, 1, got.Version)

	a2, _ := got.FindByID("a2")
	require.NotNil(t, a2.BasePrice)
	assert.Equal(t, 48000.0, *a2.BasePrice)
}

func TestMarketRows(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.MarketStore()

	coins := []*models.Coin{
		{ID: "ethereum", Symbol: "eth", MarketCapRank: 2, CurrentPrice: 3000},
		{ID: "bitcoin", Symbol: "btc", MarketCapRank: 1, CurrentPrice: 50000},
		{ID: "solana", Symbol: "sol", MarketCapRank: 5, CurrentPrice: 150},
	}
	require.NoError(t, store.SaveCoins(ctx, coins))

	listed, err := store.ListCoins(ctx, 2)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "bitcoin", listed[0].ID)
	assert.Equal(t, "ethereum", listed[1].ID)

	coin, err := store.GetCoin(ctx, "solana")
	require.NoError(t, err)
	require.NotNil(t, coin)
	assert.Equal(t, 150.0, coin.CurrentPrice)
	assert.False(t, coin.LastUpdated.IsZero())
}

func TestOverviewDocument(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.MarketStore()

	missing, err := store.GetOverview(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SaveOverview(ctx, &models.MarketOverview{
		TotalMarketCap:   2.4e12,
		BitcoinDominance: 52.5,
		UpdatedAt:        time.Now(),
	}))

	got, err := store.GetOverview(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.4e12, got.TotalMarketCap)
}

func TestSettingsDocument(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	store := m.SettingsStore()

	missing, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SaveSettings(ctx, models.DefaultSettings()))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "usd", got.Currency)
	assert.Equal(t, 30000, got.RefreshInterval)
}
