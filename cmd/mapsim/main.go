package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/mapsim/agent"
	"github.com/lixenwraith/mapsim/audio"
	"github.com/lixenwraith/mapsim/config"
	"github.com/lixenwraith/mapsim/core"
	"github.com/lixenwraith/mapsim/engine"
	"github.com/lixenwraith/mapsim/status"
	"github.com/lixenwraith/mapsim/surface"
)

var (
	configFlag = flag.String("config", "", "Path to a YAML config, built-in scenario when empty")
	debugFlag  = flag.Bool("debug", false, "Write debug logs to logs/mapsim.log")
	audioFlag  = flag.Bool("audio", false, "Play lifecycle cues")
	fpsFlag    = flag.Int("fps", 0, "Override frame.fps")
)

func main() {
	flag.Parse()
	os.Exit(start(run))
}

// start returns the process exit code; its deferred log flush and close run before main exits
func start(runFn func(*config.Config, *zap.Logger) error) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapsim: %v\n", err)
		return 1
	}

	logger, logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}
	defer logger.Sync()

	if err := runFn(cfg, logger); err != nil {
		logger.Error("exit", zap.Error(err))
		fmt.Fprintf(os.Stderr, "mapsim: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *fpsFlag > 0 {
		cfg.Frame.FPS = *fpsFlag
	}
	if *audioFlag {
		cfg.Audio.Enabled = true
	}
	return cfg, cfg.Validate()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sc, err := cfg.Scheduler()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.SetCrashScreen(screen)
	defer func() {
		core.SetCrashScreen(nil)
		screen.Fini()
	}()
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	surf := surface.New(screen, logger)
	if err := surface.LoadMap(surf, cfg.Map); err != nil {
		return err
	}

	agents := agent.NewCollection()
	spawn := func() error {
		return agent.Spawn(cfg.Agents, cfg.Map.Streets, surf, agents)
	}
	if err := spawn(); err != nil {
		return err
	}

	metrics := status.NewRegistry()
	loop := engine.NewFrameLoop(cfg.Frame.FPS, nil, logger)

	clock, err := engine.NewClockScheduler(loop, agents, sc,
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	if cfg.Audio.Enabled {
		if sink, err := audio.NewSpeakerSink(); err == nil {
			defer sink.Close()
			clock.AddObserver(audio.NewCuePlayer(sink, cfg.Audio.Volume, logger))
		} else {
			// Non-fatal, the simulation runs silently
			logger.Warn("audio unavailable", zap.Error(err))
		}
	}

	surf.SetStatusLine(func() string {
		return fmt.Sprintf(" %-7s tick %-6d t=%8.3fs  agents %-3d steps %-4d  [space] run/pause  [r] reset  [q] quit",
			clock.Phase(),
			clock.TickCount(),
			metrics.Float(status.KeySimTime),
			agents.Len(),
			metrics.Int(status.KeySteps),
		)
	})
	loop.OnAfterFrame(func(float64) { surf.Render() })

	loop.Start()
	defer func() {
		loop.Stop()
		<-loop.Done()
	}()

	quit := make(chan struct{})
	core.Go(func() {
		defer close(quit)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
					return
				case ev.Rune() == ' ':
					loop.Post(func() {
						if clock.Phase() == engine.PhaseRunning {
							clock.Pause()
						} else {
							clock.Run()
						}
					})
				case ev.Rune() == 'r':
					loop.Post(func() {
						clock.Reset()
						if agents.Len() == 0 {
							if err := spawn(); err != nil {
								logger.Error("respawn failed", zap.Error(err))
							}
						}
					})
				}
			}
		}
	})

	select {
	case <-quit:
	case <-loop.Done():
	}
	return nil
}
