package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"planeidler-sim/internal/config"
	"planeidler-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// flightMsg carries the raw flight event for the counters.
type flightMsg struct{ telemetry.FlightEventRow }

// stateMsg carries an airport state update.
type stateMsg struct{ telemetry.StateRow }

// adminMsg reports admin UI status.
type adminMsg struct{ active bool }

type setPurchaseMsg struct{ fn func(string) error }

// purchaseResultMsg reports the outcome of a purchase made from the dialog.
type purchaseResultMsg struct {
	id  string
	err error
}

const (
	maxLogLines = 1000
	helpText    = "q quit | b buy | w wrap | s scroll | t totals | h help"
)

// TUIWriter renders flight events and airport state using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteFlightEvent implements FlightWriter.
func (w *TUIWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	col, ok := eventColors[row.Type]
	if !ok {
		col = colorGray
	}
	line := fmt.Sprintf("%s[day %d %s]%s %s%s%s %s",
		colorGray, row.Day, clockLabel(row.ClockMinutes), colorReset,
		col, strings.ToUpper(row.Type), colorReset, row.AircraftName)
	if row.Stand != "" {
		line += fmt.Sprintf(" %s@%s%s", colorCyan, row.Stand, colorReset)
	}
	if row.Amount != 0 {
		line += fmt.Sprintf(" %s%+.0f%s", colorGreen, row.Amount, colorReset)
	}
	if row.Detail != "" {
		line += fmt.Sprintf(" %s(%s)%s", colorGray, row.Detail, colorReset)
	}
	w.program.Send(logMsg{line: line})
	w.program.Send(flightMsg{row})
	return nil
}

// WriteFlightEvents outputs multiple flight events.
func (w *TUIWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, r := range rows {
		_ = w.WriteFlightEvent(r)
	}
	return nil
}

// WriteState implements StateWriter.
func (w *TUIWriter) WriteState(row telemetry.StateRow) error {
	w.program.Send(stateMsg{StateRow: row})
	return nil
}

// WriteLog appends a simulator log line to the log pane.
func (w *TUIWriter) WriteLog(line string) {
	w.program.Send(logMsg{line: line})
}

// SetAdminStatus updates the admin UI indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// SetPurchaser registers the callback used by the buy dialog.
func (w *TUIWriter) SetPurchaser(fn func(id string) error) {
	w.program.Send(setPurchaseMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	logs         []string
	state        telemetry.StateRow
	counts       map[string]int
	admin        bool
	wrap         bool
	autoscroll   bool
	totals       bool
	help         bool
	header       string
	headerHeight int
	height       int
	purchase     func(string) error
	buyInput     textinput.Model
	buyDialog    bool
	status       string
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	if cfg == nil {
		cfg = config.Default()
	}
	cols := []table.Column{
		{Title: "Airport", Width: 20},
		{Title: "Value", Width: 18},
		{Title: "Airport", Width: 20},
		{Title: "Value", Width: 18},
	}
	stands := make([]string, 0, len(cfg.Stands))
	for _, g := range cfg.Stands {
		stands = append(stands, fmt.Sprintf("%s x%d", g.Class, g.Count))
	}
	rows := []table.Row{
		{"Runway", fmt.Sprintf("%s %s", cfg.Runway.Label, cfg.Runway.Surface), "Length x Width (m)", fmt.Sprintf("%.0f x %.0f", cfg.Runway.LengthM, cfg.Runway.WidthM)},
		{"Parallel Runways", fmt.Sprintf("%d", cfg.Runway.Parallel), "Stands", strings.Join(stands, ", ")},
		{"Arrivals (s)", fmt.Sprintf("%.0f-%.0f", cfg.Arrivals.MinIntervalSeconds, cfg.Arrivals.MaxIntervalSeconds), "Holding Timeout", fmt.Sprintf("%.0f min", cfg.Holding.TimeoutMinutes)},
		{"Night Ops", fmt.Sprintf("%t", cfg.Capabilities.NightOps), "ATC", fmt.Sprintf("%t", cfg.Capabilities.ATC)},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		counts:     make(map[string]int),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.header = m.table.View()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.buyDialog {
			switch msg.Type {
			case tea.KeyEnter:
				id := strings.TrimSpace(m.buyInput.Value())
				m.buyDialog = false
				m.updateViewportHeight()
				if id == "" {
					return m, nil
				}
				if m.purchase == nil {
					m.status = "purchases unavailable"
					return m, nil
				}
				return m, purchaseCmd(m.purchase, id)
			case tea.KeyEsc:
				m.buyDialog = false
				m.updateViewportHeight()
			default:
				var cmd tea.Cmd
				m.buyInput, cmd = m.buyInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "t":
			m.totals = !m.totals
			m.updateViewportHeight()
			return m, nil
		case "b":
			m.buyInput = textinput.New()
			m.buyInput.Placeholder = "upgrade id"
			m.buyInput.Focus()
			m.buyDialog = true
			m.updateViewportHeight()
			return m, nil
		case "h", "?":
			m.help = !m.help
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
	case flightMsg:
		m.counts[msg.Type]++
	case stateMsg:
		m.state = msg.StateRow
	case adminMsg:
		m.admin = msg.active
	case setPurchaseMsg:
		m.purchase = msg.fn
	case purchaseResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s: %v", msg.id, msg.err)
		} else {
			m.status = fmt.Sprintf("purchased %s", msg.id)
		}
	}
	return m, nil
}

func purchaseCmd(fn func(string) error, id string) tea.Cmd {
	return func() tea.Msg {
		return purchaseResultMsg{id: id, err: fn(id)}
	}
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	extra := 0
	if m.buyDialog {
		extra = 2
	}
	h := m.height - m.headerHeight - bottomHeight - extra - 3
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{m.header, divider, m.vp.View(), divider}
	if m.buyDialog {
		sections = append(sections, "Buy upgrade:", m.buyInput.View(), divider)
	}
	sections = append(sections, m.renderBottom())
	return strings.Join(sections, "\n")
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m tuiModel) renderBottom() string {
	s := m.state
	runway := colorGreen + "free" + colorReset
	if s.RunwayBusy {
		runway = colorRed + "busy" + colorReset
	}
	state := fmt.Sprintf("%sDAY %d %s%s %sbank=%.0f%s %sreceived=%d%s %smissed=%d%s %sdiverted=%d%s stands=%d/%d holding=%d queue=%d runway=%s tier=%d",
		colorBlue, s.Day, s.Clock, colorReset,
		colorYellow, s.Bank, colorReset,
		colorGreen, s.Received, colorReset,
		colorRed, s.Missed, colorReset,
		colorMagenta, s.Diverted, colorReset,
		s.StandsOccupied, s.StandsTotal, s.Holding, s.DepartureQueue, runway, s.Tier)
	line := fmt.Sprintf("%s | Admin UI %s | Wrap %s | Scroll %s", state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll))
	if m.status != "" {
		line += "\n" + m.status
	}
	if m.totals {
		return m.renderTotals() + "\n" + line
	}
	return line
}

func (m tuiModel) renderTotals() string {
	types := make([]string, 0, len(m.counts))
	for k := range m.counts {
		types = append(types, k)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, k := range types {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m.counts[k]))
	}
	if len(parts) == 0 {
		return "Totals: none"
	}
	return "Totals: " + strings.Join(parts, " ")
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" b  buy an upgrade by id",
		" w  toggle wrap for the event log",
		" s  toggle auto-scroll",
		" t  toggle event totals",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
		"",
		helpText,
	}
	return strings.Join(lines, "\n")
}
