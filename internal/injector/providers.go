package injector

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/wire"

	"github.com/zeusync/circuit/internal/core/input"
	"github.com/zeusync/circuit/internal/core/observability/log"
	"github.com/zeusync/circuit/internal/core/observability/metrics"
	"github.com/zeusync/circuit/internal/core/race/config"
	"github.com/zeusync/circuit/internal/core/race/vehicle"
	"github.com/zeusync/circuit/internal/core/storage"
	"github.com/zeusync/circuit/internal/core/storage/sqlite"
	"github.com/zeusync/circuit/internal/runner"
	"github.com/zeusync/circuit/internal/settings"
)

// App is everything the circuit command needs.
type App struct {
	Settings settings.Settings
	Logger   log.Log
	Race     config.Definition
	Store    storage.ResultStore
	Runner   *runner.Runner
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideDefinition,
	ProvideRecorder,
	ProvideStore,
	ProvideRunnerConfig,
	ProvideRunner,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(s settings.Settings) log.Log {
	return log.New(s.Level())
}

// ProvideDefinition loads the race file, or the built-in circuit, and
// applies the settle delay override.
func ProvideDefinition(s settings.Settings) (config.Definition, error) {
	def := config.Default()
	if s.RaceFile != "" {
		var err error
		if def, err = config.LoadFile(s.RaceFile); err != nil {
			return config.Definition{}, err
		}
	}
	if s.SettleDelay > 0 {
		def.SettleDelay = s.SettleDelay
	}
	return def, nil
}

func ProvideRecorder() (*metrics.Recorder, error) {
	return metrics.New(nil)
}

func ProvideStore(s settings.Settings, logger log.Log) (storage.ResultStore, func(), error) {
	store, err := sqlite.Open(s.DBPath)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing results db", log.Error(err))
		}
	}
	return store, cleanup, nil
}

func ProvideRunnerConfig(s settings.Settings, def config.Definition) (runner.Config, error) {
	cfg := runner.Config{
		Definition:   def,
		Sessions:     s.Sessions,
		Workers:      s.Workers,
		Seed:         s.Seed,
		TickInterval: s.TickInterval,
		MaxTicks:     s.MaxTicks,
		Autopilot:    s.Autopilot,
	}
	if s.ScriptFile != "" {
		data, err := os.ReadFile(s.ScriptFile)
		if err != nil {
			return runner.Config{}, fmt.Errorf("read script: %w", err)
		}
		// parse once up front so a bad file fails before any race starts
		if _, err = input.LoadScript(bytes.NewReader(data)); err != nil {
			return runner.Config{}, fmt.Errorf("%s: %w", s.ScriptFile, err)
		}
		cfg.Player = func() (vehicle.ControlSource, error) {
			return input.LoadScript(bytes.NewReader(data))
		}
	}
	return cfg, nil
}

func ProvideRunner(cfg runner.Config, logger log.Log, recorder *metrics.Recorder, store storage.ResultStore) (*runner.Runner, error) {
	return runner.New(cfg, logger, recorder, store)
}
