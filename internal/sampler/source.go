package sampler

import (
	"math"
	"math/rand"
	"time"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/registry"
)

const (
	// DefaultSpread is the largest change, in watts, of one simulated step.
	DefaultSpread = 10
	maxSpread     = (math.MaxInt32 - 1) / 2
)

// Source produces the next reading of a device given its current reading.
type Source interface {
	Next(device string, current registry.Watts) (registry.Watts, error)
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func(device string, current registry.Watts) (registry.Watts, error)

func (f SourceFunc) Next(device string, current registry.Watts) (registry.Watts, error) {
	return f(device, current)
}

// RandomSource simulates device activity by adding a uniformly distributed
// integer in [-spread, +spread] to the current reading.
type RandomSource struct {
	rng    *rand.Rand
	spread int
}

// NewRandomSource returns a RandomSource. A zero seed is replaced by one
// derived from the clock.
func NewRandomSource(seed int64, spread int) (*RandomSource, error) {
	if spread < 0 || spread > maxSpread {
		return nil, errors.New().WithData(errors.ErrInvalidSpread, spread)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSource{
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // simulated readings, not security sensitive
		spread: spread,
	}, nil
}

func (s *RandomSource) Next(device string, current registry.Watts) (registry.Watts, error) {
	delta := s.rng.Intn(2*s.spread+1) - s.spread
	if delta > 0 && current > registry.Watts(math.MaxInt-delta) {
		return 0, errors.New().WithData(errors.ErrInvalidArgument, struct {
			Device  string
			Current registry.Watts
			Delta   int
		}{
			Device:  device,
			Current: current,
			Delta:   delta,
		})
	}

	return current + registry.Watts(delta), nil
}

func (s *RandomSource) Spread() int {
	return s.spread
}
