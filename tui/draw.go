package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cyber-clicker/game"
	"github.com/lixenwraith/cyber-clicker/minigame"
)

var (
	styleBase    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack)
	styleBright  = styleBase.Foreground(tcell.ColorLime).Bold(true)
	styleDim     = styleBase.Foreground(tcell.ColorDarkGreen)
	styleCursor  = styleBase.Reverse(true)
	styleWarn    = styleBase.Foreground(tcell.ColorRed).Bold(true)
	styleCrypto  = styleBase.Foreground(tcell.ColorFuchsia)
	styleGlitch  = styleBase.Foreground(tcell.ColorYellow).Bold(true)
	styleBorder  = styleBase.Foreground(tcell.ColorTeal)
	styleOverlay = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

const (
	leftWidth = 64
	helpLine  = "SPC hack  ↑↓/jk select  ⏎/b buy  TAB panel  g glitch  h breach  r reboot  e/i export/import  m/+/- sound  ? help  ` debug  q quit"
)

func (a *App) draw() {
	s := a.game.Summary()
	a.screen.SetStyle(styleBase)
	a.screen.Clear()
	w, h := a.screen.Size()

	a.drawHeader(s, w)
	a.drawTabs(w)
	a.drawPanel(s, 0, 4, min(leftWidth, w), h-6)
	if w > leftWidth+10 {
		a.drawLog(leftWidth+1, 4, w-leftWidth-1, h-6)
	}
	a.text(0, h-1, w, styleDim, helpLine)

	if s.FirewallUp {
		a.drawFirewall(s, w, h)
	}
	if s.Breach != nil {
		a.drawBreach(*s.Breach, w, h)
	}

	switch a.mode {
	case modeTutorial:
		a.drawDialog(w, h, "TUTORIAL", tutorialSteps[a.tutorialStep],
			fmt.Sprintf("[%d/%d] ENTER next  ESC skip", a.tutorialStep+1, len(tutorialSteps)))
	case modeConfirmReboot:
		a.drawDialog(w, h, "SYSTEM REBOOT",
			fmt.Sprintf("Reboot to Root Access %d? Bits and generators reset; +%d skill points.",
				s.Potential, s.Potential-s.Level),
			"y confirm  any other key cancel")
	case modeConfirmWipe:
		a.drawDialog(w, h, "HARD RESET", "Erase ALL progress including the stored save?", "y confirm  any other key cancel")
	case modeImport:
		a.drawDialog(w, h, "IMPORT SAVE", "> "+importPreview(a.importBuf, 50), "paste save string  ENTER load  ESC cancel  ^U clear")
	}

	if a.showDebug {
		a.drawDebug(w, h)
	}
	a.screen.Show()
}

func (a *App) drawHeader(s game.Summary, w int) {
	a.text(0, 0, w, styleBright, fmt.Sprintf(" CYBER CLICKER   Bits: %s   GPS: %s   Click: %s",
		FormatNumber(s.Bits), FormatNumber(s.Rate), FormatNumber(s.ClickPower)))

	line := fmt.Sprintf(" Cryptos: %s   Root Access: %d   Skill Pts: %d   Mult: x%.2f   Next Root: %s lifetime",
		FormatNumber(s.Cryptos), s.Level, s.SkillPoints, s.RateMultiplier, FormatNumber(s.NextLevelAt))
	a.text(0, 1, w, styleCrypto, line)

	x := 1
	if s.Penalty {
		x += a.text(x, 2, w-x, styleWarn, "[FIREWALL: GPS HALVED] ")
	}
	if s.RateBoosts > 0 || s.ClickBoosts > 0 {
		x += a.text(x, 2, w-x, styleBright, fmt.Sprintf("[BOOSTS rate:%d click:%d] ", s.RateBoosts, s.ClickBoosts))
	}
	if s.Glitch != nil {
		x += a.text(x, 2, w-x, styleGlitch, fmt.Sprintf("[GLITCH +%.0f Cryptos: press g] ", s.Glitch.Reward))
	}
	if s.Potential > s.Level {
		a.text(x, 2, w-x, styleBright, fmt.Sprintf("[REBOOT READY: Root %d] ", s.Potential))
	}
}

func (a *App) drawTabs(w int) {
	x := 1
	for i, name := range tabNames {
		st := styleDim
		if tab(i) == a.tab {
			st = styleCursor
		}
		x += a.text(x, 3, w-x, st, " "+name+" ") + 1
	}
}

func (a *App) drawPanel(s game.Summary, x, y, w, h int) {
	var rows []row
	switch a.tab {
	case tabGenerators:
		for _, g := range s.Generators {
			gain := fmt.Sprintf("%s/s", FormatNumber(g.Rate))
			if g.ClickBonus > 0 {
				gain = fmt.Sprintf("+%s click", FormatNumber(g.ClickBonus))
			}
			rows = append(rows, row{
				text:   fmt.Sprintf("%-22s x%-4d %-12s %10s Bits", g.Name, g.Count, gain, FormatNumber(g.Cost)),
				active: g.Affordable,
			})
		}
	case tabMarket:
		for _, m := range s.Market {
			state := FormatNumber(m.Cost) + " Cryptos"
			if m.Owned {
				state = "OWNED"
			}
			rows = append(rows, row{text: fmt.Sprintf("%-22s %-28s %s", m.Name, m.Description, state), active: m.Affordable})
		}
	case tabSkills:
		for _, sk := range s.Skills {
			rows = append(rows, row{
				text:   fmt.Sprintf("%-20s %d/%d  cost %d  %s", sk.Name, sk.Level, sk.MaxLevel, sk.Cost, sk.Description),
				active: sk.Affordable,
			})
		}
	case tabAchievements:
		for _, ac := range s.Achievements {
			mark := "[ ]"
			if ac.Unlocked {
				mark = "[x]"
			}
			rows = append(rows, row{text: fmt.Sprintf("%s %-20s %s", mark, ac.Name, ac.Description), active: ac.Unlocked})
		}
	case tabStats:
		st := s.Stats
		for _, line := range []string{
			fmt.Sprintf("Lifetime Bits       %s", FormatNumber(s.Lifetime)),
			fmt.Sprintf("Total Bits Earned   %s", FormatNumber(st.TotalBitsEarned)),
			fmt.Sprintf("Total Clicks        %d", st.TotalClicks),
			fmt.Sprintf("Play Time           %s", FormatDuration(secondsDuration(st.PlayTimeSeconds))),
			fmt.Sprintf("Reboots             %d", st.RebootCount),
			fmt.Sprintf("Firewalls           %d encountered, %d bypassed", st.FirewallsEncountered, st.FirewallsCleared),
			fmt.Sprintf("Achievements        %d/%d", s.AchievementsUnlocked, s.AchievementsTotal),
			fmt.Sprintf("Permanent Mult      x%.2f", s.Permanent),
			fmt.Sprintf("Offline Mult        x%.2f", s.Offline),
			fmt.Sprintf("Auto-Glitch         %v", s.AutoGlitch),
		} {
			rows = append(rows, row{text: line, active: true})
		}
	}

	cur := -1
	if a.tab != tabStats {
		cur = a.cursor[a.tab]
	}
	// Scroll so the cursor stays visible
	top := 0
	if cur >= h {
		top = cur - h + 1
	}
	for i := top; i < len(rows) && i-top < h; i++ {
		st := styleDim
		if rows[i].active {
			st = styleBase
		}
		if i == cur {
			st = styleCursor
		}
		a.text(x, y+i-top, w, st, " "+rows[i].text)
	}
}

type row struct {
	text   string
	active bool
}

func (a *App) drawLog(x, y, w, h int) {
	for i := 0; i < h; i++ {
		a.screen.SetContent(x-1, y+i, '│', nil, styleBorder)
	}
	lines := a.messages.lines()
	if len(lines) > h {
		lines = lines[len(lines)-h:]
	}
	for i, l := range lines {
		st := styleBase
		if strings.Contains(l, "ERROR") || strings.Contains(l, "FIREWALL") {
			st = styleWarn
		}
		a.text(x, y+i, w, st, "> "+l)
	}
}

func (a *App) drawFirewall(s game.Summary, w, h int) {
	input := s.FirewallInput + strings.Repeat("_", max(0, minigame.CodeLength-len(s.FirewallInput)))
	a.drawDialog(w, h, "FIREWALL DETECTED",
		fmt.Sprintf("Enter bypass code %s     input: %s", s.FirewallCode, input),
		"type hex digits  BACKSPACE delete")
}

func (a *App) drawBreach(b game.BreachView, w, h int) {
	bw, bh := minigame.GridSize*4+4, minigame.GridSize+4
	x0, y0 := (w-bw)/2, (h-bh)/2
	a.fill(x0, y0, bw, bh, styleOverlay)
	a.text(x0+1, y0, bw-2, styleOverlay.Bold(true),
		fmt.Sprintf("DATA BREACH %d/%d  %s", b.Hacked, b.Total, FormatDuration(b.Remaining.Round(time.Second))))
	for i := 0; i < minigame.GridCells; i++ {
		cell := " ? "
		st := styleOverlay
		if b.Revealed[i] {
			switch b.Nodes[i] {
			case minigame.NodeData:
				cell, st = " $ ", styleOverlay.Foreground(tcell.ColorLime)
			case minigame.NodeICE:
				cell, st = " X ", styleOverlay.Foreground(tcell.ColorRed)
			default:
				cell = " . "
			}
		}
		if i == a.breachCursor {
			st = st.Reverse(true)
		}
		a.text(x0+2+(i%minigame.GridSize)*4, y0+2+i/minigame.GridSize, 3, st, cell)
	}
	a.text(x0+1, y0+bh-1, bw-2, styleOverlay, "arrows move  ⏎ hack")
}

func (a *App) drawDialog(w, h int, title, body, foot string) {
	dw := min(w-4, max(len(title), len(body), len(foot))+4)
	dh := 5
	x0, y0 := (w-dw)/2, (h-dh)/2
	a.fill(x0, y0, dw, dh, styleOverlay)
	a.text(x0+2, y0, dw-4, styleOverlay.Bold(true), title)
	a.text(x0+2, y0+2, dw-4, styleOverlay, body)
	a.text(x0+2, y0+4, dw-4, styleOverlay.Italic(true), foot)
}

func (a *App) drawDebug(w, h int) {
	lines := a.reg.Lines()
	dw := 44
	x0 := max(0, w-dw)
	a.fill(x0, 4, dw, len(lines)+1, styleOverlay)
	a.text(x0+1, 4, dw-2, styleOverlay.Bold(true), "DEBUG")
	for i, l := range lines {
		if 5+i >= h-1 {
			break
		}
		a.text(x0+1, 5+i, dw-2, styleOverlay, fmt.Sprintf("%-28s %s", l.Key, l.Value))
	}
}

// text writes s at (x, y) clipped to w cells and returns the cells used
func (a *App) text(x, y, w int, st tcell.Style, s string) int {
	n := 0
	for _, r := range s {
		if n >= w {
			break
		}
		a.screen.SetContent(x+n, y, r, nil, st)
		n++
	}
	return n
}

func (a *App) fill(x, y, w, h int, st tcell.Style) {
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			a.screen.SetContent(x+i, y+j, ' ', nil, st)
		}
	}
}
