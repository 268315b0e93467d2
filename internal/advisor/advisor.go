// Package advisor decides whether total consumption warrants suggesting
// that the highest-draw device be turned off.
package advisor

import (
	"fmt"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/registry"
)

const (
	ErrAdvisoryFault = errors.ErrAdvisoryFault

	// DefaultThreshold is the total consumption above which an advisory is raised.
	DefaultThreshold registry.Watts = 1000
)

// Advisory suggests turning off Device, the largest consumer at the time.
type Advisory struct {
	Device    string
	Power     registry.Watts
	Total     registry.Watts
	Threshold registry.Watts
}

func (a Advisory) Message() string {
	return fmt.Sprintf("Consider turning off %s to save energy.", a.Device)
}

// Advise returns an advisory naming a device with maximal power when total
// strictly exceeds threshold. When several devices share the maximum, the
// lexically first of them is chosen.
func Advise(threshold, total registry.Watts, readings map[string]registry.Watts) (Advisory, bool) {
	if total <= threshold {
		return Advisory{}, false
	}

	var (
		best  string
		power registry.Watts
		found bool
	)
	for name, p := range readings {
		if !found || p > power || (p == power && name < best) {
			best, power, found = name, p, true
		}
	}
	if !found {
		return Advisory{}, false
	}

	return Advisory{
		Device:    best,
		Power:     power,
		Total:     total,
		Threshold: threshold,
	}, true
}

// Advisor applies a fixed threshold to successive ticks.
type Advisor struct {
	threshold registry.Watts
}

func New(threshold registry.Watts) *Advisor {
	return &Advisor{threshold: threshold}
}

func (a *Advisor) Threshold() registry.Watts {
	return a.threshold
}

// Evaluate runs Advise against the registry. A total above the threshold
// with no devices to blame means the total and the registry disagree, which
// is reported as a fault.
func (a *Advisor) Evaluate(total registry.Watts, reg *registry.Registry) (Advisory, bool, error) {
	errFactory := errors.New()

	if a.threshold < 0 {
		return Advisory{}, false, errFactory.WithData(ErrAdvisoryFault, struct {
			Operation string
			Threshold registry.Watts
		}{
			Operation: "check_threshold",
			Threshold: a.threshold,
		})
	}

	advisory, ok := Advise(a.threshold, total, reg.Snapshot())
	if !ok && total > a.threshold {
		return Advisory{}, false, errFactory.WithData(ErrAdvisoryFault, struct {
			Operation string
			Total     registry.Watts
			Devices   int
		}{
			Operation: "select_device",
			Total:     total,
			Devices:   reg.Len(),
		})
	}

	return advisory, ok, nil
}
