// Package tui provides the interactive Bubble Tea dashboard for kasplan.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/kasplanner/kasplan/internal/cli"
	"github.com/kasplanner/kasplan/internal/forecast"
	"github.com/kasplanner/kasplan/internal/model"
	"github.com/kasplanner/kasplan/internal/tui/components"
	"github.com/kasplanner/kasplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Loader supplies the dashboard's data. *store.Store satisfies it.
type Loader interface {
	ListEntries(expectedOnly bool) ([]model.CashEntry, error)
	ListScenarios() ([]model.Scenario, error)
}

// Options configures the dashboard.
type Options struct {
	Today       time.Time
	HorizonDays int
	Threshold   decimal.Decimal
	Currency    string
}

// DataLoadedMsg is sent when entries and scenarios have been read.
type DataLoadedMsg struct {
	Entries   []model.CashEntry
	Scenarios []model.Scenario
	Err       error
	LoadTime  time.Duration
}

const (
	tabOverview = iota
	tabWeeks
	tabAlerts
	tabEntries
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
)

// horizons are the window lengths the dashboard cycles through.
var horizons = []int{30, 60, 90}

// App is the root Bubble Tea model.
type App struct {
	loader Loader
	opts   Options

	// Data
	entries   []model.CashEntry
	scenarios []model.Scenario
	loaded    bool
	loadErr   error
	loadTime  time.Duration

	// Pre-computed for the current horizon and scenario
	base        model.ForecastWindow
	active      model.ForecastWindow // base or scenario window
	applyErr    error
	periods     []model.PeriodSummary
	breaches    []model.ForecastDay
	comparisons []model.WeekComparison

	// UI state
	width       int
	height      int
	activeTab   int
	showHelp    bool
	horizonIdx  int
	scenarioIdx int // -1 is the baseline

	keys         keyMap
	help         help.Model
	spinner      spinner.Model
	alertsTable  table.Model
	entriesTable table.Model
}

// NewApp creates a new dashboard model.
func NewApp(loader Loader, opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	horizonIdx := len(horizons) - 1
	for i, h := range horizons {
		if h == opts.HorizonDays {
			horizonIdx = i
		}
	}
	opts.Today = model.Date(opts.Today)

	return App{
		loader:       loader,
		opts:         opts,
		horizonIdx:   horizonIdx,
		scenarioIdx:  -1,
		keys:         defaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		alertsTable:  newTable(alertColumns()),
		entriesTable: newTable(entryColumns()),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.loader),
		a.spinner.Tick,
	)
}

func loadDataCmd(loader Loader) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		entries, err := loader.ListEntries(true)
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		scenarios, err := loader.ListScenarios()
		return DataLoadedMsg{
			Entries:   entries,
			Scenarios: scenarios,
			Err:       err,
			LoadTime:  time.Since(start),
		}
	}
}

func (a App) horizon() int {
	return horizons[a.horizonIdx]
}

func (a App) scenarioName() string {
	if a.scenarioIdx < 0 || a.scenarioIdx >= len(a.scenarios) {
		return "baseline"
	}
	return a.scenarios[a.scenarioIdx].Name
}

// recompute rebuilds every derived view from the loaded data.
func (a *App) recompute() {
	days := a.horizon()
	a.applyErr = nil

	base, err := forecast.Generate(a.entries, nil, a.opts.Today, days)
	if err != nil {
		a.applyErr = err
		return
	}
	a.base = base
	a.active = base

	if a.scenarioIdx >= 0 && a.scenarioIdx < len(a.scenarios) {
		w, err := forecast.Generate(a.entries, a.scenarios[a.scenarioIdx].Adjustments, a.opts.Today, days)
		if err != nil {
			a.applyErr = err
		} else {
			a.active = w
		}
	}

	var periods []int
	for _, p := range forecast.DefaultPeriods {
		if p <= days {
			periods = append(periods, p)
		}
	}
	a.periods, _ = forecast.Summarize(a.active, periods...)
	a.breaches = forecast.BreachedDays(a.active, a.opts.Threshold)
	a.comparisons, _ = forecast.CompareWeekly(a.base, a.active)

	a.alertsTable.SetRows(alertRows(a.breaches, a.opts.Currency))
	a.entriesTable.SetRows(entryRows(a.entries, a.opts.Currency))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		h := max(a.height-8, 5)
		a.alertsTable.SetHeight(h)
		a.entriesTable.SetHeight(h)
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		a.loadTime = msg.LoadTime
		if msg.Err == nil {
			a.entries = msg.Entries
			a.scenarios = msg.Scenarios
			if a.scenarioIdx >= len(a.scenarios) {
				a.scenarioIdx = -1
			}
			a.recompute()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			if tab := components.TabAtX(msg.X, a.activeTab); tab >= 0 {
				a.activeTab = tab
				a.focusTables()
			}
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) && msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Help):
			a.showHelp = true
			return a, nil
		case key.Matches(msg, a.keys.NextTab):
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			a.focusTables()
			return a, nil
		case key.Matches(msg, a.keys.PrevTab):
			a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
			a.focusTables()
			return a, nil
		case key.Matches(msg, a.keys.Horizon):
			a.horizonIdx = (a.horizonIdx + 1) % len(horizons)
			a.recompute()
			return a, nil
		case key.Matches(msg, a.keys.Scenario):
			// Cycle baseline -> scenario 0 -> ... -> baseline
			a.scenarioIdx++
			if a.scenarioIdx >= len(a.scenarios) {
				a.scenarioIdx = -1
			}
			a.recompute()
			return a, nil
		case key.Matches(msg, a.keys.Refresh):
			return a, loadDataCmd(a.loader)
		}

		if len(msg.Runes) == 1 {
			if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
				a.activeTab = tab
				a.focusTables()
				return a, nil
			}
		}

		// Remaining keys scroll the visible table.
		var cmd tea.Cmd
		switch a.activeTab {
		case tabAlerts:
			a.alertsTable, cmd = a.alertsTable.Update(msg)
		case tabEntries:
			a.entriesTable, cmd = a.entriesTable.Update(msg)
		}
		return a, cmd
	}

	return a, nil
}

func (a *App) focusTables() {
	a.alertsTable.Blur()
	a.entriesTable.Blur()
	switch a.activeTab {
	case tabAlerts:
		a.alertsTable.Focus()
	case tabEntries:
		a.entriesTable.Focus()
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
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
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.Warning).
		Render(fmt.Sprintf("Terminal too narrow (%d cols). Need at least %d.", a.width, minTerminalWidth))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, msg)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	body := logoStyle.Render("◈ kasplan") + subtitleStyle.Render(" · cash forecast") + "\n\n" +
		a.spinner.View() + subtitleStyle.Render(" Loading entries...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body))
}

func (a App) viewHelp() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	body := titleStyle.Render("◈ Keyboard Shortcuts") + "\n\n" +
		a.help.FullHelpView(a.keys.FullHelp()) + "\n\n" +
		dimStyle.Render("Press any key to close")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body))
}

func (a App) viewMain() string {
	w := a.contentWidth()

	var body string
	switch {
	case a.loadErr != nil:
		body = a.renderError("Loading data failed", a.loadErr, w)
	case a.applyErr != nil:
		body = a.renderError("Scenario "+a.scenarioName()+" could not be applied", a.applyErr, w)
	default:
		switch a.activeTab {
		case tabOverview:
			body = a.renderOverviewTab(w)
		case tabWeeks:
			body = a.renderWeeksTab(w)
		case tabAlerts:
			body = a.renderAlertsTab(w)
		case tabEntries:
			body = a.renderEntriesTab(w)
		}
	}

	context := fmt.Sprintf("%s · %dd · %s · %s",
		model.DayKey(a.opts.Today), a.horizon(), a.scenarioName(),
		cli.FormatMoney(a.opts.Threshold, a.opts.Currency))
	status := components.RenderStatusBar(w, a.help.ShortHelpView(a.keys.ShortHelp()), context)

	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderTabBar(a.activeTab, w),
		"",
		body,
		"",
		status,
	)
}

func (a App) renderError(title string, err error, w int) string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.Negative).Render(err.Error())
	return components.ContentCard(title, msg, w)
}

func newTable(cols []table.Column) table.Model {
	t := theme.Active
	tbl := table.New(table.WithColumns(cols), table.WithHeight(10))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.Accent).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(t.TextPrimary).
		Background(t.SurfaceHover).
		Bold(false)
	tbl.SetStyles(styles)
	return tbl
}

func truncStr(s string, limit int) string {
	if limit <= 1 || lipgloss.Width(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit-1])) + "…"
}
