package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/symbols"
)

func fill(g Grid, sym symbols.Symbol) {
	for c := range g {
		for r := range g[c] {
			g[c][r] = Cell{Symbol: sym}
		}
	}
}

func TestFindClusters_WholeBoardMatches(t *testing.T) {
	g := New()
	fill(g, symbols.TimeGem)

	clusters := FindClusters(g)
	require.Len(t, clusters, 1)
	assert.Equal(t, Cols*Rows, clusters[0].Size())
	assert.Equal(t, symbols.TimeGem, clusters[0].Symbol)
}

func TestFindClusters_BelowMinimumDoesNotPay(t *testing.T) {
	g := New()
	fill(g, symbols.SoulGem)
	// Shrink one connected region below MinClusterSize by breaking it up.
	g[0][0] = Cell{Symbol: symbols.PowerGem}
	g[1][0] = Cell{Symbol: symbols.PowerGem}

	clusters := FindClusters(g)
	for _, cl := range clusters {
		assert.GreaterOrEqual(t, cl.Size(), MinClusterSize)
	}
}

func TestFindClusters_WildJoinsAdjacentCluster(t *testing.T) {
	g := New()
	fill(g, symbols.MindGem)
	g[0][0] = Cell{Symbol: symbols.Wild}

	clusters := FindClusters(g)
	require.Len(t, clusters, 1)
	assert.Equal(t, symbols.MindGem, clusters[0].Symbol)
	assert.Equal(t, Cols*Rows, clusters[0].Size())
}

func TestFindClusters_ScatterNeverClusters(t *testing.T) {
	g := New()
	fill(g, symbols.Scatter)

	clusters := FindClusters(g)
	assert.Empty(t, clusters)
}

func TestRemoveGoldBecomesWild(t *testing.T) {
	g := New()
	fill(g, symbols.PowerGem)
	g[0][0] = Cell{Symbol: symbols.PowerGem, Gold: true}

	clusters := FindClusters(g)
	require.Len(t, clusters, 1)
	g.Remove(clusters)

	assert.Equal(t, symbols.Wild, g.Get(0, 0).Symbol)
	assert.True(t, g.Get(1, 0).Empty())
}

func TestDropSettlesToBottom(t *testing.T) {
	g := New()
	g[2][0] = Cell{Symbol: symbols.TimeGem}
	g[2][3] = Cell{Symbol: symbols.SpaceGem}

	g.Drop()

	assert.Equal(t, symbols.SpaceGem, g.Get(2, Rows-1).Symbol)
	assert.Equal(t, symbols.TimeGem, g.Get(2, Rows-2).Symbol)
	for row := 0; row < Rows-2; row++ {
		assert.True(t, g.Get(2, row).Empty())
	}
}

type fixedRefiller struct {
	sym symbols.Symbol
}

func (f fixedRefiller) Draw() (symbols.Symbol, bool, error) {
	return f.sym, false, nil
}

func TestRefillPopulatesAllHoles(t *testing.T) {
	g := New()
	require.False(t, g.IsComplete())

	err := g.Refill(fixedRefiller{sym: symbols.ThanosWeapon})
	require.NoError(t, err)
	assert.True(t, g.IsComplete())
}

func TestGridJSONRoundTrip(t *testing.T) {
	g := New()
	fill(g, symbols.Thanos)
	data, err := g.ToJSON()
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, g, back)
}
