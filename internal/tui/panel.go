// Package tui is the terminal control panel. It edits the configuration of
// a render context through a bridge.Panel.
package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const pollInterval = 50 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of the panel.
type Model struct {
	ctx   context.Context
	panel *bridge.Panel
	cells []cell

	cursor  int
	editing bool
	editBuf string
	status  string

	width  int
	height int
}

func NewModel(ctx context.Context, p *bridge.Panel) *Model {
	return &Model{
		ctx:    ctx,
		panel:  p,
		cells:  cells(p.Tree()),
		width:  80,
		height: 24,
	}
}

// Init asks the render context to show itself, which also makes it send
// its defaults and configuration.
func (m *Model) Init() tea.Cmd {
	if r := m.panel.RequestShow(m.ctx); !r.OK() {
		m.status = fmt.Sprintf("render context: %s", r.Outcome)
	}
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.panel.ReportSize(m.ctx, float64(msg.Width), float64(msg.Height))
	case tickMsg:
		if m.panel.Drain(m.ctx) > 0 && m.panel.Ready() && strings.HasPrefix(m.status, "render context") {
			m.status = ""
		}
		return m, tick()
	case tea.KeyMsg:
		if m.editing {
			m.editKey(msg)
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		m.moveRow(-1)
	case "down", "j":
		m.moveRow(1)
	case "tab":
		m.cursor = (m.cursor + 1) % len(m.cells)
	case "shift+tab":
		m.cursor = (m.cursor + len(m.cells) - 1) % len(m.cells)
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "H":
		m.adjust(-10)
	case "L":
		m.adjust(10)
	case " ":
		m.toggle()
	case "enter":
		if m.current().kind == config.KindBool {
			m.toggle()
			return nil
		}
		if m.blocked() {
			return nil
		}
		m.editing = true
		m.editBuf = formatValue(m.value(m.current()))
	case "r":
		if m.blocked() {
			return nil
		}
		m.status = fmt.Sprintf("reset %d values", m.panel.Reset(m.ctx))
	case "a":
		m.panel.SetAutofire(!m.panel.Autofire())
	case "s":
		if r := m.panel.RequestShow(m.ctx); !r.OK() {
			m.status = fmt.Sprintf("render context: %s", r.Outcome)
		}
	}
	return nil
}

func (m *Model) editKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "enter":
		m.editing = false
		v, err := strconv.ParseFloat(strings.TrimSpace(m.editBuf), 64)
		if err != nil {
			m.status = fmt.Sprintf("%q is not a number", m.editBuf)
			break
		}
		m.set(v)
		m.editBuf = ""
	case "esc":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		if len(msg.String()) == 1 {
			c := msg.String()[0]
			if (c >= '0' && c <= '9') || c == '.' || c == '-' {
				m.editBuf += string(c)
			}
		}
	}
}

// moveRow moves the cursor to the adjacent row, keeping the column when the
// target row has one.
func (m *Model) moveRow(d int) {
	cur := m.current()
	last := m.cells[len(m.cells)-1].row
	row := (cur.row + d + last + 1) % (last + 1)
	target := -1
	for i, c := range m.cells {
		if c.row != row {
			continue
		}
		if target < 0 || c.col == cur.col {
			target = i
		}
	}
	m.cursor = target
}

func (m *Model) current() cell { return m.cells[m.cursor] }

func (m *Model) blocked() bool {
	if m.panel.Ready() {
		return false
	}
	m.status = "waiting for the render context"
	return true
}

func (m *Model) value(c cell) any {
	v, _ := m.panel.Tree().Get(c.path)
	return v
}

func (m *Model) adjust(steps float64) {
	c := m.current()
	if c.kind == config.KindBool || m.blocked() {
		return
	}
	v, _ := m.value(c).(float64)
	m.set(math.Round((v+steps*c.step)*1e6) / 1e6)
}

func (m *Model) set(v float64) {
	c := m.current()
	if !m.panel.Set(m.ctx, c.path, v) {
		m.status = fmt.Sprintf("%s unchanged", c.path)
		return
	}
	m.status = ""
}

func (m *Model) toggle() {
	c := m.current()
	if c.kind != config.KindBool || m.blocked() {
		return
	}
	on, _ := m.value(c).(bool)
	m.panel.Set(m.ctx, c.path, !on)
	m.status = ""
}

func formatValue(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "on"
		}
		return "off"
	}
	return "-"
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("   " + cyan.Render("c o n f e t t i") + "  " + dim.Render("configuration") + "\n")

	state := yellow.Render("○ waiting")
	if m.panel.Ready() {
		state = green.Render("● connected")
	}
	fire := dim.Render("autofire off")
	if m.panel.Autofire() {
		fire = magenta.Render("autofire on")
	}
	b.WriteString("   " + state + "  " + fire + "\n")
	b.WriteString(dimmer.Render("   "+strings.Repeat("─", 52)) + "\n")
	b.WriteString("   " + dim.Render(fmt.Sprintf("%-26s %10s %10s", "", "min", "max")) + "\n")

	sel := m.current()
	for i := 0; i < len(m.cells); {
		c := m.cells[i]
		if c.title != "" {
			b.WriteString("\n   " + white.Render(c.title) + "\n")
		}
		marker := "  "
		label := dim.Render(fmt.Sprintf("%-24s", c.label))
		if c.row == sel.row {
			marker = cyan.Render("▸ ")
			label = white.Render(fmt.Sprintf("%-24s", c.label))
		}
		line := "   " + marker + label
		for ; i < len(m.cells) && m.cells[i].row == c.row; i++ {
			line += " " + m.renderCell(i)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n   " + dim.Render(sel.desc) + "\n")
	if m.status != "" {
		b.WriteString("   " + yellow.Render(m.status) + "\n")
	}
	b.WriteString("\n" + dim.Render("   ↑↓ select  tab next  ←→ adjust  enter edit  r reset  a autofire  s show  q quit") + "\n")
	return b.String()
}

func (m *Model) renderCell(i int) string {
	c := m.cells[i]
	val := fmt.Sprintf("%10s", formatValue(m.value(c)))
	switch {
	case i == m.cursor && m.editing:
		return magenta.Render(fmt.Sprintf("%10s", m.editBuf+"▋"))
	case i == m.cursor:
		return magenta.Render(val)
	}
	return dim.Render(val)
}

// Run starts the panel and its autofire poll, blocking until the panel quits
// or ctx is done.
func Run(ctx context.Context, m *Model) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.ctx = ctx
	go m.panel.RunAutofire(ctx)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
