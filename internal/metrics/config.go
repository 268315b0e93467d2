package metrics

import (
	"net"
	"time"

	"codeberg.org/mutker/energymon/internal/errors"
)

const (
	namespace       = "energymon"
	metricsPath     = "/metrics"
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	// ListenAddr serves the Prometheus endpoint. Empty keeps metrics in
	// process without exposing them.
	ListenAddr string
	Enabled    bool
}

func DefaultConfig() Config {
	return Config{
		Enabled: false, // Disabled by default
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled || c.ListenAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errFactory.Wrap(ErrInvalidListenAddr, err).WithData(c.ListenAddr)
	}

	return nil
}
