package config

import "fmt"

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarn    LogLevel = "warn"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// FaultPolicy names what the monitoring loop does after a failed tick.
type FaultPolicy string

const (
	// FaultPolicyHalt logs the fault and shuts the session down.
	FaultPolicyHalt FaultPolicy = "halt"
	// FaultPolicySkip logs the fault, discards the tick and keeps running.
	FaultPolicySkip FaultPolicy = "skip"
)

func (p FaultPolicy) IsValid() bool {
	return p == FaultPolicyHalt || p == FaultPolicySkip
}

// ValidationError describes the offending field of an invalid configuration.
// It is attached as data to the coded error returned by Validate.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (v ValidationError) String() string {
	return fmt.Sprintf("%s=%v: %s", v.Field, v.Value, v.Reason)
}
