// Package registry holds the current power draw of every monitored device.
package registry

import (
	"sort"
	"strings"

	"codeberg.org/mutker/energymon/internal/errors"
)

const (
	ErrDeviceNotFound = errors.ErrDeviceNotFound
	ErrInvalidDevice  = errors.ErrInvalidDevice
)

// Watts is a power reading. Values stored in a Registry are never negative.
type Watts int

// Clamp returns w, or 0 when w is negative.
func Clamp(w Watts) Watts {
	if w < 0 {
		return 0
	}

	return w
}

// Registry maps device names to their current power draw. The device set is
// fixed at construction. A Registry belongs to a single monitoring session
// and is not safe for concurrent use.
type Registry struct {
	devices map[string]Watts
}

// New builds a registry from the initial readings, clamping negative values.
func New(initial map[string]Watts) (*Registry, error) {
	errFactory := errors.New()

	devices := make(map[string]Watts, len(initial))
	for name, power := range initial {
		if strings.TrimSpace(name) == "" {
			return nil, errFactory.WithData(ErrInvalidDevice, "empty device name")
		}
		devices[name] = Clamp(power)
	}

	return &Registry{devices: devices}, nil
}

// FromConfig converts a plain name to watts table, as produced by the
// config package, into a Registry.
func FromConfig(initial map[string]int) (*Registry, error) {
	readings := make(map[string]Watts, len(initial))
	for name, power := range initial {
		readings[name] = Watts(power)
	}

	return New(readings)
}

// Get returns the current reading of a device.
func (r *Registry) Get(name string) (Watts, error) {
	power, ok := r.devices[name]
	if !ok {
		return 0, errors.New().WithData(ErrDeviceNotFound, name)
	}

	return power, nil
}

// Set stores a new reading for an existing device and returns the stored,
// clamped value.
func (r *Registry) Set(name string, power Watts) (Watts, error) {
	if _, ok := r.devices[name]; !ok {
		return 0, errors.New().WithData(ErrDeviceNotFound, name)
	}

	power = Clamp(power)
	r.devices[name] = power

	return power, nil
}

// Apply stores several readings at once. Every name is checked before
// anything is written, so either all readings are applied or none.
func (r *Registry) Apply(readings map[string]Watts) error {
	for name := range readings {
		if _, ok := r.devices[name]; !ok {
			return errors.New().WithData(ErrDeviceNotFound, name)
		}
	}

	for name, power := range readings {
		r.devices[name] = Clamp(power)
	}

	return nil
}

// Snapshot returns a copy of all readings.
func (r *Registry) Snapshot() map[string]Watts {
	snapshot := make(map[string]Watts, len(r.devices))
	for name, power := range r.devices {
		snapshot[name] = power
	}

	return snapshot
}

// Names returns the device names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (r *Registry) Len() int {
	return len(r.devices)
}
