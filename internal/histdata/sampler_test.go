package histdata

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_FallbackUniformRange(t *testing.T) {
	sampler := NewSampler(NewStore(t.TempDir(), 0))
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		v := sampler.Sample(KindCPI, rng)
		assert.GreaterOrEqual(t, v, -0.01)
		assert.Less(t, v, 0.01)
	}
}

func TestSample_DrawsFromHistoricalPool(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "uk_property_monthly_changes.csv",
		"monthly_change\n0.5\n")

	sampler := NewSampler(NewStore(dir, 0))
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		assert.Equal(t, 0.5, sampler.Sample(KindProperty, rng))
	}
}

func TestSample_DeterministicPerSeed(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "uk_mortgage_monthly_changes.csv",
		"monthly_change\n0.1\n-0.2\n0.3\n0.05\n")

	sampler := NewSampler(NewStore(dir, 0))

	first := make([]float64, 20)
	second := make([]float64, 20)
	rngA := rand.New(rand.NewSource(42))
	rngB := rand.New(rand.NewSource(42))
	for i := range first {
		first[i] = sampler.Sample(KindMortgage, rngA)
		second[i] = sampler.Sample(KindMortgage, rngB)
	}

	require.Equal(t, first, second)
}
