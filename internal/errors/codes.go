package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig      ErrorCode = "invalid_configuration"
	ErrReadConfig         ErrorCode = "read_config_failed"
	ErrBindFlags          ErrorCode = "bind_flags_failed"
	ErrInvalidInterval    ErrorCode = "invalid_interval"
	ErrInvalidThreshold   ErrorCode = "invalid_threshold"
	ErrInvalidSpread      ErrorCode = "invalid_spread"
	ErrInvalidFaultPolicy ErrorCode = "invalid_fault_policy"
	ErrInvalidDevice      ErrorCode = "invalid_device"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrOpenLogFile     ErrorCode = "open_log_file_failed"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Monitoring errors
	ErrDeviceNotFound    ErrorCode = "device_not_found"
	ErrSamplingFault     ErrorCode = "sampling_fault"
	ErrAggregationFault  ErrorCode = "aggregation_fault"
	ErrAdvisoryFault     ErrorCode = "advisory_fault"
	ErrUnexpectedFailure ErrorCode = "unexpected_failure"
	ErrSessionClosed     ErrorCode = "session_closed"

	// Metrics errors
	ErrInitMetrics    ErrorCode = "init_metrics_failed"
	ErrCollectMetrics ErrorCode = "collect_metrics_failed"
	ErrCloseMetrics   ErrorCode = "close_metrics_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:           "Internal error occurred",
	ErrInvalidArgument:    "Invalid argument provided",
	ErrAlreadyRunning:     "Another instance is already running",
	ErrInvalidConfig:      "Invalid configuration",
	ErrReadConfig:         "Failed to read config file",
	ErrBindFlags:          "Failed to bind flags",
	ErrInvalidInterval:    "Invalid interval value",
	ErrInvalidThreshold:   "Invalid threshold value",
	ErrInvalidSpread:      "Invalid perturbation spread",
	ErrInvalidFaultPolicy: "Invalid fault policy",
	ErrInvalidDevice:      "Invalid device configuration",
	ErrInvalidLogLevel:    "Invalid log level",
	ErrOpenLogFile:        "Failed to open log file",
	ErrInitFailed:         "Initialization failed",
	ErrShutdownFailed:     "Shutdown failed",
	ErrDeviceNotFound:     "Device not found",
	ErrSamplingFault:      "Error during simulation of real-time data",
	ErrAggregationFault:   "Error during calculation of total consumption",
	ErrAdvisoryFault:      "Error during energy optimization",
	ErrUnexpectedFailure:  "An unexpected error occurred in the main loop",
	ErrSessionClosed:      "Monitoring session already shut down",
	ErrInitMetrics:        "Failed to initialize metrics",
	ErrCollectMetrics:     "Failed to collect metrics data",
	ErrCloseMetrics:       "Failed to close metrics endpoint",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
