package metrics

import (
	"context"
	"time"
)

// Collector records the outcome of each monitoring tick.
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	RecordFault(code string)
	Close() error
}

// Snapshot is the state observed at the end of one successful tick.
type Snapshot struct {
	Timestamp time.Time
	Seq       uint64
	Devices   map[string]int
	Total     int
	Threshold int
	Advisory  *AdvisoryMetrics
}

// AdvisoryMetrics is present when the tick raised an advisory.
type AdvisoryMetrics struct {
	Device string
	Power  int
}
