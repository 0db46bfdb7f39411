package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/exerrika/muve/internal/audio"
	"github.com/exerrika/muve/internal/cli"
	"github.com/exerrika/muve/internal/config"
	"github.com/exerrika/muve/internal/engine"
	"github.com/exerrika/muve/internal/feed"
	"github.com/exerrika/muve/internal/logging"
	"github.com/exerrika/muve/internal/motion"
	"github.com/exerrika/muve/internal/playlist"
	"github.com/exerrika/muve/internal/ui"
)

var (
	version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Version  bool          `short:"v" help:"Show version information"`
	Config   string        `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	Simulate bool          `help:"Use the built-in motion simulator"`
	Replay   string        `type:"path" help:"Replay a recorded CSV motion session"`
	Broker   string        `help:"MQTT broker URL for a live sensor stream (e.g. tcp://host:1883)"`
	Topic    string        `help:"MQTT topic carrying IMU samples" default:"muve/imu"`
	Silent   bool          `help:"Disable audio output"`
	Headless bool          `help:"Run without the dashboard"`
	Duration time.Duration `help:"Session length in headless mode (0 = until interrupted)"`
}

func main() {
	cliArgs := &CLI{}
	kong.Parse(cliArgs,
		kong.Name("muve"),
		kong.Description("Motion-adaptive music transition engine"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	cfg, err := loadConfig(cliArgs)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		cli.PrintError(fmt.Sprintf("open session log: %v", err))
		os.Exit(1)
	}
	defer log.Sync()

	// Playback sink: tone synth unless silenced or the device is missing.
	sink := buildSink(cfg, log)
	defer sink.Close()

	library := playlist.NewLibrary(playlist.Builtin(), sink)

	sensor, err := buildFeed(cfg, engineCfg, log)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	eng, err := engine.New(engineCfg, engine.Deps{
		Feed:   sensor,
		Tracks: library,
		Audio:  sink,
		Logger: log,
	})
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	// Session history for the end-of-run report.
	session := logging.NewSession()
	eng.Subscribe(engine.ObserverFuncs{
		OnConfirmed: func(level motion.Level) {
			session.Record(logging.EventConfirmed, level, string(engine.StyleFor(level)))
		},
		OnProgress: func(inProgress bool) {
			if !inProgress {
				if cur, ok := library.CurrentTrack(); ok {
					session.Record(logging.EventCompleted, cur.TrackLevel(), cur.TrackTitle())
				}
			}
		},
	})

	if err := eng.Start(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if cliArgs.Headless {
		runHeadless(cliArgs.Duration, log)
	} else {
		runDashboard(eng, engineCfg, log)
	}

	eng.Stop()
	fmt.Print("\n" + session.Report())
}

// loadConfig merges the optional YAML file with command-line overrides.
func loadConfig(cliArgs *CLI) (config.Config, error) {
	cfg := config.Default()
	if cliArgs.Config != "" {
		var err error
		cfg, err = config.Load(cliArgs.Config)
		if err != nil {
			return cfg, err
		}
	}
	switch {
	case cliArgs.Replay != "":
		cfg.Feed.Source = "replay"
		cfg.Feed.Replay.Path = cliArgs.Replay
	case cliArgs.Broker != "":
		cfg.Feed.Source = "mqtt"
		cfg.Feed.MQTT.Broker = cliArgs.Broker
		cfg.Feed.MQTT.Topic = cliArgs.Topic
	case cliArgs.Simulate:
		cfg.Feed.Source = "simulate"
	}
	if cliArgs.Silent {
		cfg.Audio.Output = "silent"
	}
	return cfg, nil
}

// buildLogger writes structured logs to the configured file so the
// dashboard's alternate screen stays clean.
func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{cfg.File}
	zcfg.ErrorOutputPaths = []string{cfg.File}
	return zcfg.Build()
}

func buildSink(cfg config.Config, log *zap.Logger) audio.Sink {
	if cfg.Audio.Output == "silent" {
		return audio.Null{}
	}
	sink, err := audio.NewToneSink(cfg.Audio.SampleRate)
	if err != nil {
		log.Warn("audio device unavailable, continuing silent", zap.Error(err))
		return audio.Null{}
	}
	return sink
}

func buildFeed(cfg config.Config, engineCfg engine.Config, log *zap.Logger) (engine.SensorFeed, error) {
	switch cfg.Feed.Source {
	case "simulate", "":
		return feed.NewSim(engineCfg.SamplePeriod, cfg.Feed.Seed), nil
	case "replay":
		if cfg.Feed.Replay.Path == "" {
			return nil, fmt.Errorf("replay feed selected but no recording path configured")
		}
		return feed.NewReplay(cfg.Feed.Replay.Path, engineCfg.SamplePeriod, cfg.Feed.Replay.Loop), nil
	case "mqtt":
		if cfg.Feed.MQTT.Broker == "" {
			return nil, fmt.Errorf("mqtt feed selected but no broker configured")
		}
		return feed.NewMQTT(cfg.Feed.MQTT, log), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}

func runHeadless(duration time.Duration, log *zap.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	if duration > 0 {
		select {
		case <-time.After(duration):
		case <-sig:
		}
		return
	}
	<-sig
	log.Info("interrupted")
}

func runDashboard(eng *engine.Engine, engineCfg engine.Config, log *zap.Logger) {
	model := ui.NewModel(eng, engineCfg.StabilityPeriod)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Forward engine events into the dashboard.
	eng.Subscribe(engine.ObserverFuncs{
		OnIntensity: func(level motion.Level) {
			go p.Send(ui.IntensityMsg{Level: level})
		},
		OnConfirmed: func(level motion.Level) {
			go p.Send(ui.ConfirmedMsg{Level: level})
		},
		OnProgress: func(inProgress bool) {
			go p.Send(ui.ProgressMsg{InProgress: inProgress})
		},
	})

	if _, err := p.Run(); err != nil {
		log.Error("dashboard failed", zap.Error(err))
	}
}
