// Package tui provides the interactive japa counter built on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/japa/internal/config"
	"github.com/theirongolddev/japa/internal/daemon"
	"github.com/theirongolddev/japa/internal/model"
	"github.com/theirongolddev/japa/internal/tracker"
	"github.com/theirongolddev/japa/internal/tui/components"
	"github.com/theirongolddev/japa/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// StateLoadedMsg carries a fresh snapshot from the backend.
type StateLoadedMsg struct {
	State    model.State
	Err      error
	LoadTime time.Duration
}

// SessionMsg reports the outcome of start, tap or end.
type SessionMsg struct {
	Action  string
	Session model.Session
	Err     error
}

// Session actions.
const (
	actionStart = "start"
	actionTap   = "tap"
	actionEnd   = "end"
)

// App is the root bubbletea model.
type App struct {
	backend Backend
	cfg     config.Config
	now     func() time.Time

	state       model.State
	loaded      bool
	loadTime    time.Duration
	lastRefresh time.Time
	refreshing  bool
	lastErr     error
	flash       string

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	days      int

	// Per-tab state
	prompt      startPrompt
	histOffset  int
	lastSession *model.Session

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	spinner         spinner.Model
	refreshInterval time.Duration
}

const (
	minTerminalWidth = 60
	compactWidth     = 100
	maxContentWidth  = 140

	minContentHeight = 5
	actionTimeout    = 5 * time.Second
)

// startPrompt is the inline "new session" form on the counter tab.
type startPrompt struct {
	active bool
	focus  int // 0 = label, 1 = target
	label  textinput.Model
	target textinput.Model
}

// NewApp creates the counter model. needSetup shows the setup form before
// the first render.
func NewApp(backend Backend, cfg config.Config, needSetup bool) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refresh := time.Second
	if backend.Mode() == "daemon" {
		refresh = 2 * time.Second
	}

	days := cfg.General.DefaultDays
	if days <= 0 {
		days = 30
	}

	return App{
		backend:         backend,
		cfg:             cfg,
		now:             time.Now,
		days:            days,
		needSetup:       needSetup,
		setupVals:       SetupValuesFrom(cfg),
		spinner:         sp,
		refreshInterval: refresh,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadStateCmd(a.backend),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.prompt.active {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.prompt.active {
			return a.updatePrompt(msg)
		}
		return a.updateKeys(msg)

	case StateLoadedMsg:
		a.refreshing = false
		a.lastRefresh = a.now()
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.lastErr = msg.Err
		} else {
			a.state = msg.State
			a.lastErr = nil
		}
		if !a.loaded {
			a.loaded = true
			if a.needSetup {
				a.setupForm = NewSetupForm(&a.setupVals)
				if a.width > 0 {
					a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
				}
				return a, a.setupForm.Init()
			}
		}
		return a, nil

	case SessionMsg:
		return a.applySession(msg)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && !a.refreshing && a.now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, loadStateCmd(a.backend))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.prompt.active {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.flash = ""

	switch key {
	case "q":
		return a, tea.Quit
	case " ", "enter", "+":
		if a.activeTab != 0 {
			return a, nil
		}
		return a, sessionCmd(a.backend, actionTap, "", nil)
	case "n":
		a.activeTab = 0
		a.prompt = newStartPrompt(a.cfg)
		return a, textinput.Blink
	case "e":
		return a, sessionCmd(a.backend, actionEnd, "", nil)
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, loadStateCmd(a.backend)
		}
		return a, nil
	case "t":
		if a.activeTab == 3 {
			return a.cycleTheme()
		}
	case "j", "down":
		if a.activeTab == 1 {
			a.histOffset++
		}
		return a, nil
	case "k", "up":
		if a.activeTab == 1 && a.histOffset > 0 {
			a.histOffset--
		}
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if r := []rune(key); len(r) == 1 {
		if idx := components.TabIdxByKey(r[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == 1 && a.histOffset > 0 {
			a.histOffset--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == 1 {
			a.histOffset++
		}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
			return a, nil
		}
		// Anywhere on the counter body counts as a tap, like the bead on a mala.
		if a.activeTab == 0 && msg.Y < a.height-1 {
			return a, sessionCmd(a.backend, actionTap, "", nil)
		}
	}
	return a, nil
}

func (a App) applySession(msg SessionMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.flash = describeError(msg.Err)
		return a, nil
	}

	switch msg.Action {
	case actionStart, actionTap:
		s := msg.Session
		a.state.Session = &s
		if msg.Action == actionStart {
			a.flash = "Started " + config.DisplayLabel(s.Label, a.cfg.Appearance.UseOriginalScript)
		} else if s.IsCompleted && s.EndTime != nil && s.CurrentCount == targetOf(s) {
			a.flash = "Target reached"
		}
	case actionEnd:
		s := msg.Session
		a.lastSession = &s
		a.state.Session = nil
		a.flash = fmt.Sprintf("Session ended: %d", s.CurrentCount)
	}

	a.refreshing = true
	return a, loadStateCmd(a.backend)
}

func targetOf(s model.Session) int {
	if s.TargetCount == nil {
		return -1
	}
	return *s.TargetCount
}

func describeError(err error) string {
	switch {
	case errors.Is(err, tracker.ErrNoActiveSession):
		return "No active session. Press n to start one."
	case errors.Is(err, tracker.ErrSessionActive):
		return "A session is already running. Press e to end it first."
	case daemon.IsConflict(err):
		return err.Error()
	}
	return "Error: " + err.Error()
}

func (a App) cycleTheme() (tea.Model, tea.Cmd) {
	idx := 0
	for i, th := range theme.All {
		if th.Name == theme.Active.Name {
			idx = i
			break
		}
	}
	next := theme.All[(idx+1)%len(theme.All)]
	theme.SetActive(next.Name)
	a.cfg.Appearance.Theme = next.Name
	if err := config.Save(a.cfg); err != nil {
		a.flash = "Theme not saved: " + err.Error()
	} else {
		a.flash = "Theme: " + next.Name
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.flash = "Setup not saved: " + err.Error()
		}
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func newStartPrompt(cfg config.Config) startPrompt {
	label := textinput.New()
	label.Placeholder = "Om"
	label.CharLimit = 64
	label.Width = 24
	label.SetValue(cfg.General.DefaultLabel)
	label.Focus()

	target := textinput.New()
	target.Placeholder = "open-ended"
	target.CharLimit = 7
	target.Width = 10
	if cfg.General.DefaultTarget != nil {
		target.SetValue(strconv.Itoa(*cfg.General.DefaultTarget))
	}

	return startPrompt{active: true, label: label, target: target}
}

func (p startPrompt) update(msg tea.Msg) (startPrompt, tea.Cmd) {
	var cmd tea.Cmd
	if p.focus == 0 {
		p.label, cmd = p.label.Update(msg)
	} else {
		p.target, cmd = p.target.Update(msg)
	}
	return p, cmd
}

func (p *startPrompt) setFocus(i int) {
	p.focus = i
	if i == 0 {
		p.label.Focus()
		p.target.Blur()
	} else {
		p.target.Focus()
		p.label.Blur()
	}
}

func (a App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.prompt.active = false
		return a, nil
	case "tab", "shift+tab", "up", "down":
		a.prompt.setFocus(1 - a.prompt.focus)
		return a, nil
	case "enter":
		label := strings.TrimSpace(a.prompt.label.Value())
		var target *int
		if s := strings.TrimSpace(a.prompt.target.Value()); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				a.flash = "Target must be a positive whole number"
				a.prompt.setFocus(1)
				return a, nil
			}
			target = &n
		}
		a.prompt.active = false
		return a, sessionCmd(a.backend, actionStart, label, target)
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.update(msg)
	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  japa needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("ॐ japa"))
	b.WriteString(subtitleStyle.Render(" · chanting counter"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading practice (" + a.backend.Mode() + ")..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, title string, binds [][2]string) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range binds {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Counter", [][2]string{
		{"space", "Tap (also Enter, + or click)"},
		{"n", "New session"},
		{"e", "End session"},
	})
	b.WriteString("\n")
	section(&b, "Navigation", [][2]string{
		{"c h l p", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll history"},
		{"t", "Cycle theme (Profile tab)"},
		{"r", "Refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info, failed := a.statusInfo()
	statusBar := components.RenderStatusBar(w, a.backend.Mode(), info, failed)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderCounterTab(cw)
	case 1:
		content = a.renderHistoryTab(cw, contentH)
	case 2:
		content = a.renderLabelsTab(cw)
	case 3:
		content = a.renderProfileTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() (string, bool) {
	switch {
	case a.flash != "":
		return a.flash, strings.HasPrefix(a.flash, "Error") || strings.HasPrefix(a.flash, "No active")
	case a.lastErr != nil:
		return "Error: " + a.lastErr.Error(), true
	case a.loadTime > 0:
		return fmt.Sprintf("%dms", a.loadTime.Milliseconds()), false
	}
	return "", false
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadStateCmd fetches a snapshot in the background.
func loadStateCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		st, err := b.State(ctx)
		return StateLoadedMsg{State: st, Err: err, LoadTime: time.Since(start)}
	}
}

func sessionCmd(b Backend, action, label string, target *int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		var (
			s   model.Session
			err error
		)
		switch action {
		case actionStart:
			s, err = b.Start(ctx, label, target)
		case actionTap:
			s, err = b.Tap(ctx, 1)
		case actionEnd:
			s, err = b.End(ctx)
		}
		return SessionMsg{Action: action, Session: s, Err: err}
	}
}

// chartDateLabels builds compact X-axis labels for a chronological date series.
// First label: month abbreviation (e.g. "Jan"). Month boundaries: "Feb".
// Everything else (including last): just the day number.
// days is sorted newest-first; labels are returned oldest-left.
func chartDateLabels(days []model.DailyStats) []string {
	n := len(days)
	labels := make([]string, n)
	prevMonth := time.Month(0)
	for i := 0; i < n; i++ {
		dt := days[n-1-i].Date
		switch {
		case i == 0, i != n-1 && dt.Month() != prevMonth:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
