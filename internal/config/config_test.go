package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("energymon", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))

	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "energymon.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
interval = "2s"
threshold = 1500
spread = 25
seed = 42
fault_policy = "skip"
log_level = "debug"
log_file = "/var/log/energymon.log"
metrics_addr = ":9100"

[[devices]]
name = "Oven"
power = 2000

[[devices]]
name = "Air Conditioner"
power = 1200
`)

	// Set environment variable to point to the test config file
	t.Setenv("ENERGYMON_CONFIG", configPath)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Interval, "Expected Interval 2s")
	assert.Equal(t, 1500, cfg.Threshold, "Expected Threshold 1500")
	assert.Equal(t, 25, cfg.Spread, "Expected Spread 25")
	assert.Equal(t, int64(42), cfg.Seed, "Expected Seed 42")
	assert.Equal(t, config.FaultPolicySkip, cfg.FaultPolicy)
	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "/var/log/energymon.log", cfg.LogFile)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, map[string]int{"Oven": 2000, "Air Conditioner": 1200}, cfg.InitialDevices(),
		"device names keep their case and spaces")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("ENERGYMON_CONFIG", "")

	cfg, err := config.Load(newFlags(t))
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 5*time.Second, cfg.Interval, "Expected default Interval 5s")
	assert.Equal(t, 1000, cfg.Threshold, "Expected default Threshold 1000")
	assert.Equal(t, 10, cfg.Spread, "Expected default Spread 10")
	assert.Equal(t, config.FaultPolicyHalt, cfg.FaultPolicy)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
	assert.Equal(t, config.DefaultLogFile, cfg.LogFile)
	assert.Empty(t, cfg.MetricsAddr)
	assert.NotEmpty(t, cfg.PIDFile)
	assert.Equal(t, map[string]int{
		"Fridge":          150,
		"Washer":          500,
		"Heater":          800,
		"Air Conditioner": 1200,
		"Lighting":        300,
	}, cfg.InitialDevices())
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	configPath := writeConfig(t, `
threshold = 1500
log_level = "error"
`)
	t.Setenv("ENERGYMON_CONFIG", configPath)
	t.Setenv("ENERGYMON_LOG_LEVEL", "warning")

	cfg, err := config.Load(newFlags(t, "--threshold", "800", "--interval", "250ms"))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Threshold, "flag beats config file")
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, config.LogLevelWarning, cfg.LogLevel, "env beats config file")
}

func TestConfigFlagBeatsEnv(t *testing.T) {
	fromEnv := writeConfig(t, `threshold = 1`)
	fromFlag := writeConfig(t, `threshold = 2`)
	t.Setenv("ENERGYMON_CONFIG", fromEnv)

	cfg, err := config.Load(newFlags(t, "--config", fromFlag))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Threshold)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("ENERGYMON_CONFIG", configPath)

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("ENERGYMON_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{"log level", `log_level = "invalid"`, errors.ErrInvalidLogLevel},
		{"interval", `interval = "0s"`, errors.ErrInvalidInterval},
		{"threshold", `threshold = -1`, errors.ErrInvalidThreshold},
		{"spread", `spread = -5`, errors.ErrInvalidSpread},
		{"fault policy", `fault_policy = "retry"`, errors.ErrInvalidFaultPolicy},
		{"negative power", "[[devices]]\nname = \"Oven\"\npower = -3\n", errors.ErrInvalidDevice},
		{"empty name", "[[devices]]\nname = \"\"\npower = 3\n", errors.ErrInvalidDevice},
		{"duplicate", "[[devices]]\nname = \"Oven\"\npower = 3\n[[devices]]\nname = \"Oven\"\npower = 4\n", errors.ErrInvalidDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENERGYMON_CONFIG", writeConfig(t, tt.content))

			_, err := config.Load(nil)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestValidationErrorData(t *testing.T) {
	cfg := &config.Config{
		Interval:    time.Second,
		Threshold:   -10,
		FaultPolicy: config.FaultPolicyHalt,
		LogLevel:    config.LogLevelInfo,
	}

	err := cfg.Validate()
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	data, ok := appErr.GetData().(config.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "threshold", data.Field)
	assert.Equal(t, -10, data.Value)
}
