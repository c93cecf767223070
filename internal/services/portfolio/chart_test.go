package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindeck/coindeck/internal/models"
)

func TestAssetColorIsStable(t *testing.T) {
	assert.Equal(t, assetColor("BTC"), assetColor("BTC"))
	assert.Equal(t, assetColor("ETH"), assetColor("ETH"))
}

func TestRenderAllocationChart(t *testing.T) {
	snapshot := &models.PortfolioSnapshot{
		Assets: []models.ValuedAsset{
			{Holding: models.Holding{Symbol: "BTC"}, Value: 25000, Allocation: 62.5},
			{Holding: models.Holding{Symbol: "ETH"}, Value: 15000, Allocation: 37.5},
		},
	}

	png, err := RenderAllocationChart(snapshot)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestRenderAllocationChartNoAssets(t *testing.T) {
	_, err := RenderAllocationChart(nil)
	assert.Error(t, err)

	_, err = RenderAllocationChart(&models.PortfolioSnapshot{})
	assert.Error(t, err)

	// All-zero values cannot be charted either.
	_, err = RenderAllocationChart(&models.PortfolioSnapshot{
		Assets: []models.ValuedAsset{{Holding: models.Holding{Symbol: "BTC"}, Value: 0}},
	})
	assert.Error(t, err)
}
