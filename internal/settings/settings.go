// Package settings loads the runtime settings of the circuit command from
// defaults, an optional settings file, CIRCUIT_* environment variables and
// command-line flags, in increasing order of precedence.
package settings

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zeusync/circuit/internal/core/observability/log"
)

const EnvPrefix = "CIRCUIT"

var ErrInvalidSettings = errors.New("invalid settings")

type Settings struct {
	LogLevel string `mapstructure:"log_level"`
	// RaceFile is a YAML race definition; the built-in circuit when empty.
	RaceFile string `mapstructure:"race_file"`
	// ScriptFile replays recorded player input instead of the autopilot.
	ScriptFile string `mapstructure:"script_file"`
	Autopilot  bool   `mapstructure:"autopilot"`

	Sessions int    `mapstructure:"sessions"`
	Workers  int    `mapstructure:"workers"`
	Seed     uint64 `mapstructure:"seed"`

	TickInterval time.Duration `mapstructure:"tick_interval"`
	MaxTicks     int           `mapstructure:"max_ticks"`
	// SettleDelay overrides the race file when positive.
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	// DBPath is the results database; an in-memory one when empty.
	DBPath      string `mapstructure:"db_path"`
	Leaderboard int    `mapstructure:"leaderboard"`
}

// flag name -> settings key
var flagKeys = map[string]string{
	"log-level":     "log_level",
	"race":          "race_file",
	"script":        "script_file",
	"autopilot":     "autopilot",
	"sessions":      "sessions",
	"workers":       "workers",
	"seed":          "seed",
	"tick-interval": "tick_interval",
	"max-ticks":     "max_ticks",
	"settle-delay":  "settle_delay",
	"db":            "db_path",
	"leaderboard":   "leaderboard",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("race_file", "")
	v.SetDefault("script_file", "")
	v.SetDefault("autopilot", true)
	v.SetDefault("sessions", 4)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("seed", uint64(1))
	v.SetDefault("tick_interval", time.Second/60)
	v.SetDefault("max_ticks", 60*60*10)
	v.SetDefault("settle_delay", time.Duration(0))
	v.SetDefault("db_path", "circuit.db")
	v.SetDefault("leaderboard", 5)
}

// Flags declares the command-line flags understood by Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "settings file (yaml, json or toml)")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("race", "", "race definition file")
	fs.String("script", "", "player input script")
	fs.Bool("autopilot", true, "drive the player car with the pursuit AI")
	fs.Int("sessions", 4, "number of races to run")
	fs.Int("workers", runtime.NumCPU(), "races run in parallel")
	fs.Uint64("seed", 1, "seed of the first race; race i uses seed+i")
	fs.Duration("tick-interval", time.Second/60, "simulated time per tick")
	fs.Int("max-ticks", 60*60*10, "ticks after which an unfinished race is abandoned")
	fs.Duration("settle-delay", 0, "time between the finish and teardown")
	fs.String("db", "circuit.db", "results database, empty for in-memory")
	fs.Int("leaderboard", 5, "best laps to print")
	return fs
}

// Load parses args and resolves the settings. Flag parse errors, including
// pflag.ErrHelp, are returned unwrapped.
func Load(args []string, output io.Writer) (Settings, error) {
	fs := Flags("circuit")
	if output != nil {
		fs.SetOutput(output)
	}
	if err := fs.Parse(args); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return Settings{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if s.Sessions < 1 {
		errs = append(errs, fmt.Errorf("sessions must be at least 1, got %d", s.Sessions))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", s.Workers))
	}
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", s.TickInterval))
	}
	if s.MaxTicks < 1 {
		errs = append(errs, fmt.Errorf("max ticks must be at least 1, got %d", s.MaxTicks))
	}
	if s.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("settle delay must not be negative, got %s", s.SettleDelay))
	}
	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrInvalidSettings, err)
	}
	return nil
}

// Level is the parsed log level.
func (s Settings) Level() log.Level {
	l, _ := log.ParseLevel(s.LogLevel)
	return l
}
