package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cyber-clicker/audio"
	"github.com/lixenwraith/cyber-clicker/minigame"
	"github.com/lixenwraith/cyber-clicker/prestige"
)

// mode is the modal state of the front end; each modal captures all keys
type mode int

const (
	modeNormal mode = iota
	modeTutorial
	modeConfirmReboot
	modeConfirmWipe
	modeImport
)

// tab is the left panel selection in normal mode
type tab int

const (
	tabGenerators tab = iota
	tabMarket
	tabSkills
	tabAchievements
	tabStats
	tabCount
)

var tabNames = [tabCount]string{"Shop", "Black Market", "Skills", "Achievements", "Stats"}

const wipeTimeout = 5 * time.Second

var tutorialSteps = []string{
	"INITIALIZING... Welcome to Cyber Clicker. Your goal is to hack the system and mine BITS.",
	"MANUAL OVERRIDE: press SPACE to hack the system and generate BITS manually.",
	"AUTOMATION: spend BITS in the SHOP. Generators raise your GPS (Global Processing Speed).",
	"SYSTEM REBOOT: with enough lifetime BITS, press R to reboot for Root Access and permanent bonuses.",
	"GOOD LUCK: the network is waiting. Begin operations.",
}

// handleEvent processes one terminal event; false means quit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}

	switch a.mode {
	case modeTutorial:
		a.handleTutorialKey(ev)
		return true
	case modeConfirmReboot, modeConfirmWipe:
		a.handleConfirmKey(ev)
		return true
	case modeImport:
		a.handleImportKey(ev)
		return true
	}

	// Active mini-games capture their keys before the global bindings
	if a.handleFirewallKey(ev) || a.handleBreachKey(ev) {
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyTab:
		a.tab = (a.tab + 1) % tabCount
	case tcell.KeyBacktab:
		a.tab = (a.tab + tabCount - 1) % tabCount
	case tcell.KeyUp:
		a.moveCursor(-1)
	case tcell.KeyDown:
		a.moveCursor(1)
	case tcell.KeyEnter:
		a.buySelected()
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	return true
}

func (a *App) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		a.game.Click()
	case 'j':
		a.moveCursor(1)
	case 'k':
		a.moveCursor(-1)
	case 'b':
		a.buySelected()
	case 'g':
		if gl, ok := a.game.ActiveGlitch(); ok {
			a.game.CollectGlitch(gl.ID)
		}
	case 'h':
		a.game.StartBreach()
	case 'r':
		a.requestReboot()
	case 'X':
		a.mode = modeConfirmWipe
	case 'e':
		a.exportSave()
	case 'i':
		a.mode = modeImport
		a.importBuf = a.importBuf[:0]
	case 'm':
		a.toggleMute()
	case '+', '=':
		a.adjustVolume(volumeStep)
	case '-':
		a.adjustVolume(-volumeStep)
	case '?':
		a.mode = modeTutorial
		a.tutorialStep = 0
	case '`':
		a.showDebug = !a.showDebug
	}
	return true
}

// handleFirewallKey routes hex digits and backspace to an active firewall
func (a *App) handleFirewallKey(ev *tcell.EventKey) bool {
	if _, _, active := a.game.Firewall(); !active {
		return false
	}
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.game.FirewallBackspace()
		return true
	case tcell.KeyRune:
		res, err := a.game.FirewallKey(ev.Rune())
		return err == nil && res != minigame.KeyIgnored
	}
	return false
}

// handleBreachKey moves the grid cursor and hacks nodes while a breach runs
func (a *App) handleBreachKey(ev *tcell.EventKey) bool {
	if _, active := a.game.Breach(); !active {
		return false
	}
	n := minigame.GridSize
	switch ev.Key() {
	case tcell.KeyLeft:
		if a.breachCursor%n > 0 {
			a.breachCursor--
		}
	case tcell.KeyRight:
		if a.breachCursor%n < n-1 {
			a.breachCursor++
		}
	case tcell.KeyUp:
		if a.breachCursor >= n {
			a.breachCursor -= n
		}
	case tcell.KeyDown:
		if a.breachCursor < minigame.GridCells-n {
			a.breachCursor += n
		}
	case tcell.KeyEnter:
		a.game.HackNode(a.breachCursor)
	case tcell.KeyRune:
		if ev.Rune() != ' ' {
			return false
		}
		a.game.HackNode(a.breachCursor)
	default:
		return false
	}
	return true
}

func (a *App) handleTutorialKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape {
		a.finishTutorial()
		return
	}
	if ev.Key() != tcell.KeyEnter && !(ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
		return
	}
	a.tutorialStep++
	if a.tutorialStep >= len(tutorialSteps) {
		a.finishTutorial()
	}
}

func (a *App) finishTutorial() {
	a.mode = modeNormal
	a.tutorialStep = 0
	a.game.SetTutorialSeen()
}

func (a *App) handleConfirmKey(ev *tcell.EventKey) {
	confirmed := ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y')
	m := a.mode
	a.mode = modeNormal
	if !confirmed {
		a.messages.add("Cancelled.")
		return
	}
	switch m {
	case modeConfirmReboot:
		a.reboot()
	case modeConfirmWipe:
		a.wipe()
	}
}

func (a *App) handleImportKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = modeNormal
	case tcell.KeyEnter:
		a.mode = modeNormal
		if err := a.game.Import(string(a.importBuf)); err == nil {
			a.sched.Restart()
		}
		a.importBuf = a.importBuf[:0]
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.importBuf) > 0 {
			a.importBuf = a.importBuf[:len(a.importBuf)-1]
		}
	case tcell.KeyCtrlU:
		a.importBuf = a.importBuf[:0]
	case tcell.KeyRune:
		a.importBuf = append(a.importBuf, ev.Rune())
	}
}

func (a *App) moveCursor(delta int) {
	n := a.rowCount(a.tab)
	if n == 0 {
		return
	}
	a.cursor[a.tab] = (a.cursor[a.tab] + delta + n) % n
}

func (a *App) rowCount(t tab) int {
	s := a.game.Summary()
	switch t {
	case tabGenerators:
		return len(s.Generators)
	case tabMarket:
		return len(s.Market)
	case tabSkills:
		return len(s.Skills)
	case tabAchievements:
		return len(s.Achievements)
	}
	return 0
}

// buySelected purchases the highlighted row of the current tab
// Failures surface through the game's rejection events
func (a *App) buySelected() {
	s := a.game.Summary()
	i := a.cursor[a.tab]
	switch a.tab {
	case tabGenerators:
		if i < len(s.Generators) {
			a.game.Purchase(s.Generators[i].ID)
		}
	case tabMarket:
		if i < len(s.Market) {
			a.game.BuyMarketItem(s.Market[i].ID)
		}
	case tabSkills:
		if i < len(s.Skills) {
			a.game.BuySkill(s.Skills[i].ID)
		}
	}
}

// requestReboot asks for confirmation when eligible; ineligible attempts go straight through for the rejection message
func (a *App) requestReboot() {
	s := a.game.Summary()
	if s.Potential > s.Level && a.game.Config().Prestige.Confirm {
		a.mode = modeConfirmReboot
		return
	}
	a.reboot()
}

func (a *App) reboot() {
	if _, err := a.game.Reboot(); err != nil {
		if !errors.Is(err, prestige.ErrNotEligible) {
			a.log.Warn("reboot failed", "error", err)
		}
		return
	}
	a.sched.Restart()
}

// wipe erases the game and its stored save
// The scheduler is stopped first so its final flush cannot rewrite the old state afterwards
func (a *App) wipe() {
	a.sched.Stop()
	a.game.Wipe()
	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), wipeTimeout)
		defer cancel()
		if err := a.store.Clear(ctx); err != nil {
			a.log.Warn("clear save failed", "error", err)
			a.messages.add("ERROR: could not clear stored save")
		}
	}
	a.sched.Start()
	a.messages.add("System wiped. Starting over.")
	a.mode = modeTutorial
	a.tutorialStep = 0
}

func (a *App) exportSave() {
	str, err := a.game.Export()
	if err != nil {
		a.log.Warn("export failed", "error", err)
		a.messages.add("ERROR: export failed")
		return
	}
	if a.export == "" {
		a.messages.add("Export: " + str)
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.export), 0o755); err == nil {
		err = os.WriteFile(a.export, []byte(str+"\n"), 0o644)
	}
	if err != nil {
		a.log.Warn("export write failed", "path", a.export, "error", err)
		a.messages.add("ERROR: could not write " + a.export)
		return
	}
	a.messages.add(fmt.Sprintf("Save exported to %s (%d chars)", a.export, len(str)))
}

func (a *App) toggleMute() {
	if a.sound == nil {
		return
	}
	if a.sound.ToggleMute() {
		a.messages.add("Sound muted.")
	} else {
		a.messages.add("Sound on.")
	}
	a.saveSoundSettings()
}

func (a *App) adjustVolume(delta float64) {
	if a.sound == nil {
		return
	}
	v := a.sound.SetVolume(a.sound.Settings().Volume + delta)
	a.messages.add(fmt.Sprintf("Volume %d%%", int(v*100+0.5)))
	a.saveSoundSettings()
}

func (a *App) saveSoundSettings() {
	if a.soundPath == "" {
		return
	}
	if err := audio.SaveSettings(a.soundPath, a.sound.Settings()); err != nil {
		a.log.Warn("save audio settings failed", "error", err)
	}
}

// importPreview shortens the pasted string for display
func importPreview(buf []rune, width int) string {
	s := string(buf)
	if width <= 3 || len(buf) <= width {
		return s
	}
	return "..." + strings.TrimSpace(string(buf[len(buf)-width+3:]))
}
