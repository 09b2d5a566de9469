// Package tui is the terminal front end: it draws the game summary and turns keys into game actions
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cyber-clicker/audio"
	"github.com/lixenwraith/cyber-clicker/core"
	"github.com/lixenwraith/cyber-clicker/events"
	"github.com/lixenwraith/cyber-clicker/game"
	"github.com/lixenwraith/cyber-clicker/persistence"
	"github.com/lixenwraith/cyber-clicker/status"
)

const (
	frameInterval = 100 * time.Millisecond
	logCapacity   = 200
	volumeStep    = 0.1
)

// Scheduler is the lifecycle the front end drives after state replacement
type Scheduler interface {
	Start()
	Stop()
	Restart()
}

// Options configures an App; Game and Screen are required
type Options struct {
	Screen    tcell.Screen
	Game      *game.Game
	Scheduler Scheduler
	Store     persistence.Store
	Sound     *audio.SoundManager
	// SoundSettingsPath is where volume and mute changes are written; empty disables persistence
	SoundSettingsPath string
	// ExportPath receives exported save strings
	ExportPath string
	Status     *status.Registry
	Logger     *slog.Logger
}

// App owns the screen and all front-end state
type App struct {
	screen    tcell.Screen
	game      *game.Game
	sched     Scheduler
	store     persistence.Store
	sound     *audio.SoundManager
	soundPath string
	export    string
	reg       *status.Registry
	log       *slog.Logger
	router    *events.Router[*App]

	messages *messageLog

	mode          mode
	tab           tab
	cursor        [tabCount]int
	breachCursor  int
	importBuf     []rune
	tutorialStep  int
	showDebug     bool
}

// New creates the front end and wires the event router
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Status == nil {
		opts.Status = status.NewRegistry()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = nopScheduler{}
	}

	a := &App{
		screen:    opts.Screen,
		game:      opts.Game,
		sched:     opts.Scheduler,
		store:     opts.Store,
		sound:     opts.Sound,
		soundPath: opts.SoundSettingsPath,
		export:    opts.ExportPath,
		reg:       opts.Status,
		log:       opts.Logger,
		messages:  newMessageLog(logCapacity),
	}

	a.router = events.NewRouter[*App](opts.Game.Events())
	a.router.Register(a.messages)
	if a.sound != nil {
		a.router.Register(audio.NewEventHandler[*App](a.sound))
	}

	if !opts.Game.Summary().TutorialSeen {
		a.mode = modeTutorial
	}
	return a
}

// Run draws frames and handles input until the player quits or ctx is done
// The caller owns screen Init and Fini
func (a *App) Run(ctx context.Context) error {
	evCh := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)

	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case evCh <- ev:
			case <-done:
				return
			}
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.frame()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-evCh:
			if !a.handleEvent(ev) {
				return nil
			}
			a.frame()
		case <-ticker.C:
			a.frame()
		}
	}
}

// frame drains pending game events then redraws
func (a *App) frame() {
	a.router.DispatchAll(a)
	a.draw()
}

// Messages returns the message log, newest last
func (a *App) Messages() []string {
	return a.messages.lines()
}

type nopScheduler struct{}

func (nopScheduler) Start()   {}
func (nopScheduler) Stop()    {}
func (nopScheduler) Restart() {}
