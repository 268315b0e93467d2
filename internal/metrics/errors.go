package metrics

import "codeberg.org/mutker/energymon/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig     = errors.ErrInvalidConfig
	ErrInvalidListenAddr = errors.ErrorCode("metrics_invalid_listen_addr")

	// Registration Errors
	ErrRegisterCollector = errors.ErrorCode("metrics_register_collector_failed")
	ErrListen            = errors.ErrorCode("metrics_listen_failed")

	// Collection Errors
	ErrMetricsCollection = errors.ErrCollectMetrics
	ErrInvalidMetrics    = errors.ErrorCode("metrics_invalid_snapshot")

	// Service Errors
	ErrServiceShutdown = errors.ErrCloseMetrics

	// Operation Errors
	ErrOperationTimeout = errors.ErrorCode("metrics_operation_timeout")
)
