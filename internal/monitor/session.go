// Package monitor drives the sample, aggregate, advise cycle of a
// monitoring session.
package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/energymon/internal/advisor"
	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/registry"
	"github.com/google/uuid"
)

type State int32

const (
	stateNew State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case stateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type Sampler interface {
	Sample() (map[string]registry.Watts, error)
}

type Aggregator interface {
	Total() (registry.Watts, error)
}

type Advisor interface {
	Evaluate(total registry.Watts, reg *registry.Registry) (advisor.Advisory, bool, error)
	Threshold() registry.Watts
}

// TickReport is the outcome of one successful tick.
type TickReport struct {
	Seq       uint64
	StartedAt time.Time
	Readings  map[string]registry.Watts
	Total     registry.Watts
	Advisory  *advisor.Advisory
}

// Session owns a device registry and runs ticks against it until cancelled
// or a fault halts it. A session runs at most once.
type Session struct {
	id         string
	reg        *registry.Registry
	sampler    Sampler
	aggregator Aggregator
	advisor    Advisor
	interval   time.Duration
	policy     config.FaultPolicy
	logger     logger.Logger
	recorder   metrics.Collector
	state      atomic.Int32
	seq        uint64
}

type Option func(*Session)

func WithInterval(d time.Duration) Option {
	return func(s *Session) {
		s.interval = d
	}
}

func WithFaultPolicy(p config.FaultPolicy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		s.logger = log
	}
}

// WithRecorder sets the metrics collector. The session closes it on shutdown.
func WithRecorder(c metrics.Collector) Option {
	return func(s *Session) {
		s.recorder = c
	}
}

func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

func NewSession(reg *registry.Registry, smp Sampler, agg Aggregator, adv Advisor, opts ...Option) *Session {
	s := &Session{
		reg:        reg,
		sampler:    smp,
		aggregator: agg,
		advisor:    adv,
		interval:   config.DefaultInterval,
		policy:     config.DefaultFaultPolicy,
		logger:     logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.recorder == nil {
		s.recorder, _ = metrics.NewService(metrics.DefaultConfig(), s.logger)
	}
	s.logger = s.logger.With("session_id", s.id)

	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	return State(s.state.Load())
}

// Run ticks until ctx is cancelled or, under the halt policy, a tick fails.
// Cancellation is observed between ticks only. Cancellation returns nil; a
// halting fault is returned. The shutdown notice is logged exactly once on
// every exit path.
func (s *Session) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(stateNew), int32(StateRunning)) {
		return errors.New().WithData(ErrSessionClosed, s.id)
	}
	defer s.shutdown()

	s.logger.Info().
		Int("devices", s.reg.Len()).
		Dur("interval", s.interval).
		Int("threshold_w", int(s.advisor.Threshold())).
		Str("fault_policy", string(s.policy)).
		Msg("Energy monitor started")

	for {
		if ctx.Err() != nil {
			s.logger.Info().Msg("Terminated by user.")
			return nil
		}

		if _, err := s.Tick(ctx); err != nil {
			if s.policy != config.FaultPolicySkip {
				return err
			}
			s.logger.Warn().Uint64("seq", s.seq+1).Msg("Discarding failed tick")
		}

		if !s.wait(ctx) {
			s.logger.Info().Msg("Terminated by user.")
			return nil
		}
	}
}

// wait suspends for one interval and reports false if ctx ends first.
func (s *Session) wait(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Tick samples, aggregates and advises once, then reports the result. A
// failed tick is logged with its context and leaves the registry as it was
// before the tick.
func (s *Session) Tick(ctx context.Context) (TickReport, error) {
	report := TickReport{
		Seq:       s.seq + 1,
		StartedAt: time.Now(),
	}
	before := s.reg.Snapshot()

	err := s.step(report.Seq, "sampler", "simulate_real_time_data", func() error {
		readings, err := s.sampler.Sample()
		report.Readings = readings
		return err
	})
	if err == nil {
		err = s.step(report.Seq, "aggregator", "calculate_total_consumption", func() error {
			total, err := s.aggregator.Total()
			report.Total = total
			return err
		})
	}
	if err == nil {
		err = s.step(report.Seq, "advisor", "optimize_energy_usage", func() error {
			advisory, ok, err := s.advisor.Evaluate(report.Total, s.reg)
			if ok {
				report.Advisory = &advisory
			}
			return err
		})
	}

	if err != nil {
		s.fail(err, before)
		return TickReport{}, err
	}

	s.seq = report.Seq
	report.Readings = s.reg.Snapshot()
	s.report(ctx, report)

	return report, nil
}

// step runs one tick step, turning a panic into an unexpected failure.
func (s *Session) step(seq uint64, component, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New().WithData(ErrUnexpectedFailure, fmt.Sprintf("panic: %v", r))
		}
		if err != nil {
			err = &TickError{
				Seq:       seq,
				Component: component,
				Operation: operation,
				Err:       err,
			}
		}
	}()

	return fn()
}

func (s *Session) fail(err error, before map[string]registry.Watts) {
	component, operation := "monitor", "tick"
	var tickErr *TickError
	if errors.As(err, &tickErr) {
		component, operation = tickErr.Component, tickErr.Operation
	}

	s.logger.ErrorWithContext(err, component, operation).Msg(errors.GetErrorMessage(errors.CodeOf(err)))
	s.recorder.RecordFault(string(errors.CodeOf(err)))

	if rollbackErr := s.reg.Apply(before); rollbackErr != nil {
		s.logger.ErrorWithContext(rollbackErr, "registry", "rollback").Msg("Failed to restore readings")
	}
}

func (s *Session) report(ctx context.Context, report TickReport) {
	snapshot := &metrics.Snapshot{
		Timestamp: report.StartedAt,
		Seq:       report.Seq,
		Devices:   make(map[string]int, len(report.Readings)),
		Total:     int(report.Total),
		Threshold: int(s.advisor.Threshold()),
	}
	for name, power := range report.Readings {
		snapshot.Devices[name] = int(power)
	}

	if adv := report.Advisory; adv != nil {
		s.logger.Warn().
			Str("device", adv.Device).
			Int("power_w", int(adv.Power)).
			Int("total_w", int(adv.Total)).
			Int("threshold_w", int(adv.Threshold)).
			Msg(adv.Message())
		snapshot.Advisory = &metrics.AdvisoryMetrics{Device: adv.Device, Power: int(adv.Power)}
	}

	if err := s.recorder.Record(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Uint64("seq", report.Seq).Msg("Failed to record metrics")
	}
}

func (s *Session) shutdown() {
	s.state.Store(int32(StateStopping))

	if err := s.recorder.Close(); err != nil {
		s.logger.ErrorWithContext(err, "metrics", "close").Msg("Failed to close metrics")
	}

	s.logger.Info().Uint64("ticks", s.seq).Msg("Energy monitor shutting down.")
	s.state.Store(int32(StateStopped))
}
