package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"github.com/lixenwraith/cyber-clicker/audio"
	"github.com/lixenwraith/cyber-clicker/catalog"
	"github.com/lixenwraith/cyber-clicker/clock"
	"github.com/lixenwraith/cyber-clicker/config"
	"github.com/lixenwraith/cyber-clicker/core"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/game"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/scheduler"
	"github.com/lixenwraith/cyber-clicker/status"
	"github.com/lixenwraith/cyber-clicker/tui"
)

const (
	appName        = "cyber-clicker"
	exportFileName = "export.txt"
	headlessDrain  = time.Second
	oneShotTimeout = 10 * time.Second
)

var (
	configFlag   = flag.String("config", "", "Path to YAML config file")
	dataFlag     = flag.String("data", "", "Data directory for saves, settings and logs (overrides storage.dir)")
	debugFlag    = flag.Bool("debug", false, "Write debug logs to <data>/logs")
	headlessFlag = flag.Bool("headless", false, "Run the simulation without the terminal UI")
	muteFlag     = flag.Bool("mute", false, "Start with sound muted")
	exportFlag   = flag.Bool("export", false, "Print the save as an export string and exit")
	importFlag   = flag.String("import", "", "Import a save string (or @file) into the store and exit")
	resetFlag    = flag.Bool("reset", false, "Erase the stored save and exit")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()
	os.Exit(run())
}

func run() int {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "data dir: %v\n", err)
		return 1
	}

	logFile, err := setupLogging(dataDir, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	if logFile != nil {
		defer logFile.Close()
	}
	log := slog.Default()

	store, backend, err := openStore(cfg, dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage: %v\n", err)
		return 1
	}
	defer store.Close()

	data, err := loadCatalog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		return 2
	}

	reg := status.NewRegistry()
	reg.Strings.Get(status.KeyBackend).Store(backend)
	clk := clock.New()

	g, err := game.New(game.Options{
		Config:  cfg,
		Catalog: data,
		Clock:   clk,
		Logger:  log,
		Status:  reg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "game: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := g.Load(ctx, store); err != nil {
		log.Warn("load failed, starting fresh", "error", err)
	}

	switch {
	case *resetFlag:
		return oneShot(ctx, "reset", func(ctx context.Context) error { return store.Clear(ctx) })
	case *exportFlag:
		return oneShot(ctx, "export", func(context.Context) error {
			str, err := g.Export()
			if err == nil {
				fmt.Println(str)
			}
			return err
		})
	case *importFlag != "":
		return oneShot(ctx, "import", func(ctx context.Context) error {
			str, err := readImport(*importFlag)
			if err != nil {
				return err
			}
			if err := g.Import(str); err != nil {
				return err
			}
			return persistence.SaveSnapshot(ctx, store, g.Snapshot())
		})
	}

	saver := persistence.NewSaver(store, cfg.Autosave.MinInterval, clk, reg, log)
	sched := scheduler.New(g, saver, cfg, clk, reg, log)

	if *headlessFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		runHeadless(ctx, g, sched, log)
		return 0
	}

	sound := audio.NewSoundManager(loadSoundSettings(cfg, dataDir, log))
	if err := sound.Initialize(); err != nil {
		log.Warn("audio unavailable, continuing without sound", "error", err)
	}
	defer sound.Cleanup()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		return 1
	}
	// Crash handler restores the terminal before printing the report
	core.SetCrashRestore(screen.Fini)
	defer screen.Fini()
	screen.EnablePaste()

	sched.Start()
	defer sched.Stop()

	app := tui.New(tui.Options{
		Screen:            screen,
		Game:              g,
		Scheduler:         sched,
		Store:             store,
		Sound:             sound,
		SoundSettingsPath: filepath.Join(dataDir, audio.SettingsFileName),
		ExportPath:        filepath.Join(dataDir, exportFileName),
		Status:            reg,
		Logger:            log,
	})
	if err := app.Run(ctx); err != nil {
		log.Error("ui exited", "error", err)
		return 1
	}
	return 0
}

// resolveDataDir picks the flag, then the config, then the user config directory
func resolveDataDir(cfg *config.Config) (string, error) {
	dir := *dataFlag
	if dir == "" {
		dir = cfg.Storage.Dir
	}
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, appName)
	}
	return dir, os.MkdirAll(dir, 0o755)
}

func openStore(cfg *config.Config, dataDir string) (persistence.Store, string, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := persistence.OpenSQLite(filepath.Join(dataDir, "saves.db"), cfg.Storage.History)
		return s, config.BackendSQLite, err
	default:
		return persistence.NewFileStore(dataDir), config.BackendFile, nil
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Data, error) {
	if cfg.Catalog.Path != "" {
		return catalog.Load(cfg.Catalog.Path)
	}
	return catalog.Default()
}

func loadSoundSettings(cfg *config.Config, dataDir string, log *slog.Logger) audio.Settings {
	def := audio.Settings{Muted: !cfg.Audio.Enabled, Volume: cfg.Audio.Volume}
	s, err := audio.LoadSettings(filepath.Join(dataDir, audio.SettingsFileName), def)
	if err != nil {
		log.Warn("audio settings unreadable, using defaults", "error", err)
	}
	if *muteFlag {
		s.Muted = true
	}
	return s
}

// readImport accepts the save string inline, from @file, or from stdin with "-"
func readImport(arg string) (string, error) {
	var (
		b   []byte
		err error
	)
	switch {
	case arg == "-":
		b, err = io.ReadAll(os.Stdin)
	case strings.HasPrefix(arg, "@"):
		b, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		return arg, nil
	}
	return strings.TrimSpace(string(b)), err
}

func oneShot(ctx context.Context, name string, fn func(context.Context) error) int {
	ctx, cancel := context.WithTimeout(ctx, oneShotTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		if errors.Is(err, persistence.ErrInvalidFormat) {
			fmt.Fprintf(os.Stderr, "%s: save string is not valid\n", name)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		}
		return 1
	}
	return 0
}

// runHeadless runs the scheduler and forwards event messages to the log until ctx is done
func runHeadless(ctx context.Context, g *game.Game, sched *scheduler.Scheduler, log *slog.Logger) {
	router := events.NewRouter[*slog.Logger](g.Events())
	router.Register(events.HandlerFunc[*slog.Logger]{
		Fn: func(l *slog.Logger, ev events.GameEvent) {
			if ev.Message != "" {
				l.Info(ev.Message, "event", ev.Type.String())
			}
		},
	})

	sched.Start()
	defer sched.Stop()

	ticker := time.NewTicker(headlessDrain)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			router.DispatchAll(log)
			return
		case <-ticker.C:
			router.DispatchAll(log)
		}
	}
}
