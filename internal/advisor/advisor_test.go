package advisor_test

import (
	"testing"

	"codeberg.org/mutker/energymon/internal/advisor"
	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdviseThreshold(t *testing.T) {
	readings := map[string]registry.Watts{"A": 100, "B": 900}

	tests := []struct {
		name  string
		total registry.Watts
		want  bool
	}{
		{"below", 999, false},
		{"at threshold", 1000, false},
		{"above", 1001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := advisor.Advise(advisor.DefaultThreshold, tt.total, readings)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestAdvisePicksMaximum(t *testing.T) {
	readings := map[string]registry.Watts{
		"Fridge":          150,
		"Washer":          500,
		"Heater":          800,
		"Air Conditioner": 1200,
		"Lighting":        300,
	}

	advisory, ok := advisor.Advise(1000, 2950, readings)
	require.True(t, ok)
	assert.Equal(t, "Air Conditioner", advisory.Device)
	assert.Equal(t, registry.Watts(1200), advisory.Power)
	assert.Equal(t, registry.Watts(2950), advisory.Total)
	assert.Equal(t, "Consider turning off Air Conditioner to save energy.", advisory.Message())

	for name, power := range readings {
		assert.GreaterOrEqual(t, advisory.Power, power, "advised device must draw at least as much as %s", name)
	}
}

func TestAdviseTieChoosesAMaximum(t *testing.T) {
	readings := map[string]registry.Watts{"X": 700, "Y": 700, "Z": 10}

	first, ok := advisor.Advise(1000, 1410, readings)
	require.True(t, ok)
	assert.Contains(t, []string{"X", "Y"}, first.Device)
	assert.Equal(t, registry.Watts(700), first.Power)

	for i := 0; i < 20; i++ {
		again, _ := advisor.Advise(1000, 1410, readings)
		assert.Equal(t, first.Device, again.Device)
	}
}

func TestAdviseNoDevices(t *testing.T) {
	_, ok := advisor.Advise(0, 10, nil)
	assert.False(t, ok)
}

func TestEvaluateScenario(t *testing.T) {
	reg, err := registry.New(map[string]registry.Watts{"A": 100, "B": 900})
	require.NoError(t, err)
	adv := advisor.New(1000)

	_, ok, err := adv.Evaluate(1000, reg)
	require.NoError(t, err)
	assert.False(t, ok, "no advisory at the threshold")

	_, err = reg.Set("B", 901)
	require.NoError(t, err)

	advisory, ok, err := adv.Evaluate(1001, reg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B", advisory.Device)
	assert.Equal(t, registry.Watts(1000), adv.Threshold())
}

func TestEvaluateFaults(t *testing.T) {
	empty, err := registry.New(nil)
	require.NoError(t, err)

	_, _, err = advisor.New(1000).Evaluate(5000, empty)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, advisor.ErrAdvisoryFault))

	_, _, err = advisor.New(-1).Evaluate(0, empty)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, advisor.ErrAdvisoryFault))
}
