package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	apperrors "codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type service struct {
	cfg    Config
	logger logger.Logger
	reg    *prometheus.Registry
	server *http.Server
	served chan struct{}
	addr   string

	devicePower *prometheus.GaugeVec
	totalPower  prometheus.Gauge
	threshold   prometheus.Gauge
	lastTick    prometheus.Gauge
	ticks       prometheus.Counter
	advisories  *prometheus.CounterVec
	faults      *prometheus.CounterVec
}

// No-op implementation
type noopCollector struct{}

func NewService(cfg Config, log logger.Logger) (Collector, error) {
	errFactory := apperrors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If metrics is disabled, return a no-op collector
	if !cfg.Enabled {
		log.Debug().Msg("Metrics collection disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	s := &service{
		cfg:    cfg,
		logger: log,
		reg:    prometheus.NewRegistry(),
		devicePower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_power_watts",
			Help:      "Current power draw per device.",
		}, []string{"device"}),
		totalPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_power_watts",
			Help:      "Total consumption across all devices at the last tick.",
		}),
		threshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold_watts",
			Help:      "Total consumption above which an advisory is raised.",
		}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_tick_timestamp_seconds",
			Help:      "Unix time of the last successful tick.",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Successful monitoring ticks.",
		}),
		advisories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisories_total",
			Help:      "Advisories raised, by advised device.",
		}, []string{"device"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_faults_total",
			Help:      "Failed monitoring ticks, by error code.",
		}, []string{"code"}),
	}

	for _, c := range []prometheus.Collector{
		s.devicePower, s.totalPower, s.threshold, s.lastTick, s.ticks, s.advisories, s.faults,
	} {
		if err := s.reg.Register(c); err != nil {
			return nil, errFactory.Wrap(ErrRegisterCollector, err)
		}
	}

	if cfg.ListenAddr != "" {
		if err := s.serve(); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("listen_addr", cfg.ListenAddr).
		Bool("enabled", cfg.Enabled).
		Msg("Metrics service initialized successfully")

	return s, nil
}

func (s *service) serve() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return apperrors.New().Wrap(ErrListen, err).WithData(s.cfg.ListenAddr)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{Registry: s.reg}))

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}
	s.served = make(chan struct{})
	s.addr = ln.Addr().String()

	go func() {
		defer close(s.served)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics endpoint stopped")
		}
	}()

	s.logger.Info().Str("addr", s.addr).Msg("Serving metrics")

	return nil
}

func (s *service) Record(ctx context.Context, snapshot *Snapshot) error {
	errFactory := apperrors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidMetrics)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
	}

	for device, power := range snapshot.Devices {
		s.devicePower.WithLabelValues(device).Set(float64(power))
	}
	s.totalPower.Set(float64(snapshot.Total))
	s.threshold.Set(float64(snapshot.Threshold))
	s.lastTick.Set(float64(snapshot.Timestamp.Unix()))
	s.ticks.Inc()

	if snapshot.Advisory != nil {
		s.advisories.WithLabelValues(snapshot.Advisory.Device).Inc()
	}

	return nil
}

func (s *service) RecordFault(code string) {
	s.faults.WithLabelValues(code).Inc()
}

func (s *service) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return apperrors.New().Wrap(ErrServiceShutdown, err)
	}
	<-s.served
	s.server = nil

	s.logger.Debug().Msg("Metrics endpoint closed")

	return nil
}

// No-op implementation
func (*noopCollector) Record(_ context.Context, _ *Snapshot) error {
	return nil
}

func (*noopCollector) RecordFault(_ string) {}

func (*noopCollector) Close() error {
	return nil
}
