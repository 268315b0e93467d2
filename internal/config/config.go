package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/energymon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultThreshold   = 1000
	DefaultSpread      = 10
	DefaultLogLevel    = LogLevelInfo
	DefaultLogFile     = "eco_energy_monitor.log"
	DefaultFaultPolicy = FaultPolicyHalt

	EnvPrefix    = "ENERGYMON"
	configEnvVar = EnvPrefix + "_CONFIG"
	configName   = "energymon"
)

// Device is one entry of the initial device table.
type Device struct {
	Name  string `mapstructure:"name"`
	Power int    `mapstructure:"power"`
}

type Config struct {
	Interval    time.Duration `mapstructure:"interval"`
	Threshold   int           `mapstructure:"threshold"`
	Spread      int           `mapstructure:"spread"`
	Seed        int64         `mapstructure:"seed"`
	FaultPolicy FaultPolicy   `mapstructure:"fault_policy"`
	LogLevel    LogLevel      `mapstructure:"log_level"`
	LogFile     string        `mapstructure:"log_file"`
	PIDFile     string        `mapstructure:"pid_file"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	Devices     []Device      `mapstructure:"devices"`
}

// flagKeys maps config keys to their command line flag names.
var flagKeys = map[string]string{
	"interval":     "interval",
	"threshold":    "threshold",
	"spread":       "spread",
	"seed":         "seed",
	"fault_policy": "fault-policy",
	"log_level":    "log-level",
	"log_file":     "log-file",
	"pid_file":     "pid-file",
	"metrics_addr": "metrics-addr",
}

// DefaultDevices returns the device table used when the config file names none.
func DefaultDevices() []Device {
	return []Device{
		{Name: "Fridge", Power: 150},
		{Name: "Washer", Power: 500},
		{Name: "Heater", Power: 800},
		{Name: "Air Conditioner", Power: 1200},
		{Name: "Lighting", Power: 300},
	}
}

func defaultPIDFile() string {
	return filepath.Join(os.TempDir(), "energymon.pid")
}

// RegisterFlags defines the command line flags understood by Load.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a TOML configuration file")
	flags.Duration("interval", DefaultInterval, "Interval between monitoring ticks")
	flags.Int("threshold", DefaultThreshold, "Total consumption in watts above which an advisory is raised")
	flags.Int("spread", DefaultSpread, "Maximum simulated change per device per tick in watts")
	flags.Int64("seed", 0, "Seed for simulated readings (0 picks one from the clock)")
	flags.String("fault-policy", string(DefaultFaultPolicy), "What to do after a failed tick: halt or skip")
	flags.String("log-level", string(DefaultLogLevel), "Log level: debug, info, warning or error")
	flags.String("log-file", DefaultLogFile, "Append-only log file (empty disables)")
	flags.String("pid-file", defaultPIDFile(), "PID file path")
	flags.String("metrics-addr", "", "Listen address for the Prometheus endpoint (empty disables)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("threshold", DefaultThreshold)
	v.SetDefault("spread", DefaultSpread)
	v.SetDefault("seed", 0)
	v.SetDefault("fault_policy", string(DefaultFaultPolicy))
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("pid_file", defaultPIDFile())
	v.SetDefault("metrics_addr", "")
}

// Load reads configuration from defaults, the config file, ENERGYMON_*
// environment variables and flags, in increasing order of precedence.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err).WithData(name)
			}
		}
	}

	if path := configPath(flags); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err).WithData(path)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	config.LogLevel = LogLevel(strings.ToLower(string(config.LogLevel)))
	config.FaultPolicy = FaultPolicy(strings.ToLower(string(config.FaultPolicy)))

	if len(config.Devices) == 0 {
		config.Devices = DefaultDevices()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func configPath(flags *pflag.FlagSet) string {
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			return f.Value.String()
		}
	}

	return os.Getenv(configEnvVar)
}

// Validate checks the loaded values. The returned error carries a
// ValidationError as its data.
func (c *Config) Validate() error {
	errFactory := errors.New()

	invalid := func(code errors.ErrorCode, field string, value any, reason string) error {
		return errFactory.WithData(code, ValidationError{Field: field, Value: value, Reason: reason})
	}

	if c.Interval <= 0 {
		return invalid(errors.ErrInvalidInterval, "interval", c.Interval, "must be positive")
	}
	if c.Threshold < 0 {
		return invalid(errors.ErrInvalidThreshold, "threshold", c.Threshold, "must not be negative")
	}
	if c.Spread < 0 {
		return invalid(errors.ErrInvalidSpread, "spread", c.Spread, "must not be negative")
	}
	if !c.FaultPolicy.IsValid() {
		return invalid(errors.ErrInvalidFaultPolicy, "fault_policy", c.FaultPolicy, "must be halt or skip")
	}
	if !c.LogLevel.IsValid() {
		return invalid(errors.ErrInvalidLogLevel, "log_level", c.LogLevel, "must be debug, info, warning or error")
	}

	seen := make(map[string]struct{}, len(c.Devices))
	for _, d := range c.Devices {
		if strings.TrimSpace(d.Name) == "" {
			return invalid(errors.ErrInvalidDevice, "devices.name", d.Name, "must not be empty")
		}
		if d.Power < 0 {
			return invalid(errors.ErrInvalidDevice, "devices.power", d.Power, "must not be negative")
		}
		if _, dup := seen[d.Name]; dup {
			return invalid(errors.ErrInvalidDevice, "devices.name", d.Name, "duplicate device")
		}
		seen[d.Name] = struct{}{}
	}

	return nil
}

// InitialDevices returns the device table as a name to watts mapping.
func (c *Config) InitialDevices() map[string]int {
	devices := make(map[string]int, len(c.Devices))
	for _, d := range c.Devices {
		devices[d.Name] = d.Power
	}

	return devices
}
