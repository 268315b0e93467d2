package monitor

import (
	"codeberg.org/mutker/energymon/internal/advisor"
	"codeberg.org/mutker/energymon/internal/aggregator"
	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/registry"
	"codeberg.org/mutker/energymon/internal/sampler"
	"github.com/google/uuid"
)

// FromConfig assembles a session over a fresh registry built from the
// configured device table, with randomly simulated readings.
func FromConfig(cfg *config.Config, log logger.Logger, recorder metrics.Collector) (*Session, error) {
	reg, err := registry.FromConfig(cfg.InitialDevices())
	if err != nil {
		return nil, err
	}

	source, err := sampler.NewRandomSource(cfg.Seed, cfg.Spread)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sessionLog := log.With("session_id", id)

	return NewSession(
		reg,
		sampler.New(reg, source, sessionLog),
		aggregator.New(reg, sessionLog),
		advisor.New(registry.Watts(cfg.Threshold)),
		WithSessionID(id),
		WithInterval(cfg.Interval),
		WithFaultPolicy(cfg.FaultPolicy),
		WithLogger(log),
		WithRecorder(recorder),
	), nil
}
