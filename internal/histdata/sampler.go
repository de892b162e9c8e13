package histdata

import "math/rand"

// Sampler draws monthly changes by bootstrap resampling a store's historical
// pools: one element uniformly at random, with replacement. This is literal
// historical resampling, not a fitted parametric distribution.
type Sampler struct {
	store *Store
}

func NewSampler(store *Store) *Sampler {
	return &Sampler{store: store}
}

// Store returns the underlying historical series store.
func (s *Sampler) Store() *Store {
	return s.store
}

// Sample draws one monthly change for the given series using the caller's
// generator. When no historical data exists it degrades to uniform changes
// in [-0.01, 0.01], consuming one draw from the same stream so scenarios
// stay reproducible either way.
func (s *Sampler) Sample(kind Kind, rng *rand.Rand) float64 {
	changes := s.store.Load(kind)
	if len(changes) == 0 {
		return rng.Float64()*0.02 - 0.01
	}
	return changes[rng.Intn(len(changes))]
}
