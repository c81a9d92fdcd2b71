package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-store/memory"
	"github.com/wippyai/wasm-store/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// scratchMarker is stamped at the start of scratch memory by the w key.
const scratchMarker = 0x5ca7c4ed

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Grow      key.Binding
	GrowHost  key.Binding
	Stamp     key.Binding
	Erase     key.Binding
	Increment key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grow, k.GrowHost, k.Stamp, k.Erase, k.Increment, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Grow:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grow guest")),
	GrowHost:  key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "grow scratch")),
	Stamp:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "stamp scratch")),
	Erase:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "erase scratch")),
	Increment: key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "increment")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "pull globals")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type inspectorModel struct {
	err      error
	session  *session
	help     help.Model
	status   string
	scratch  store.Memory
	selected int
}

func newInspectorModel(s *session) (*inspectorModel, error) {
	scratch, err := s.eng.Store().AllocMemory(1, 16)
	if err != nil {
		return nil, err
	}
	return &inspectorModel{
		session: s,
		scratch: scratch,
		help:    help.New(),
	}, nil
}

func (m *inspectorModel) Init() tea.Cmd {
	return nil
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.err = nil
	m.status = ""
	st := m.session.eng.Store()

	switch {
	case key.Matches(km, keys.Quit):
		return m, tea.Quit

	case key.Matches(km, keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(km, keys.Down):
		if m.selected < len(m.session.globals)-1 {
			m.selected++
		}

	case key.Matches(km, keys.Grow):
		prev, err := m.session.inst.GrowMemory(1)
		m.setResult(err, "guest memory grown from %d pages", prev)

	case key.Matches(km, keys.GrowHost):
		prev, err := st.GrowMemory(m.scratch, 1)
		m.setResult(err, "scratch memory grown from %d pages", prev)

	case key.Matches(km, keys.Stamp):
		err := st.MemoryView(m.scratch).WriteU32(0, scratchMarker)
		m.setResult(err, "scratch stamped")

	case key.Matches(km, keys.Erase):
		err := st.EraseMemory(m.scratch)
		m.setResult(err, "scratch erased")

	case key.Matches(km, keys.Increment):
		if len(m.session.globals) == 0 {
			m.status = "no globals imported"
			break
		}
		g := m.session.globals[m.selected]
		m.setResult(m.session.increment(g), "%s incremented", g.name)

	case key.Matches(km, keys.Refresh):
		m.setResult(m.session.pullAll(), "globals pulled from guest")
	}

	return m, nil
}

func (m *inspectorModel) setResult(err error, format string, args ...any) {
	if err != nil {
		m.err = err
		return
	}
	m.status = fmt.Sprintf(format, args...)
}

func (m *inspectorModel) readMarker() uint32 {
	v, err := m.session.eng.Store().MemoryView(m.scratch).ReadU32(0)
	if err != nil {
		return 0
	}
	return v
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Store Inspector"))
	b.WriteString(" ")
	b.WriteString(m.session.path)
	b.WriteString("\n\n")

	if mem, ok := m.session.memory(); ok {
		fmt.Fprintf(&b, "%s %d / %d pages (%d bytes)\n",
			labelStyle.Render("guest memory:  "), mem.Pages, mem.MaxPages, mem.Bytes)
	} else {
		fmt.Fprintf(&b, "%s none\n", labelStyle.Render("guest memory:  "))
	}

	scratch := memoryOf(m.session.eng.Store().Memories().Resolve(m.scratch))
	fmt.Fprintf(&b, "%s %d / %d pages, marker 0x%08x\n",
		labelStyle.Render("scratch memory:"), scratch.Pages, scratch.MaxPages, m.readMarker())

	stats := memory.ReadStats()
	fmt.Fprintf(&b, "%s %d live, %d bytes mapped\n\n",
		labelStyle.Render("mappings:      "), stats.LiveMappings, stats.MappedBytes)

	if len(m.session.globals) == 0 {
		b.WriteString("No globals imported. Pass --global name.\n")
	}
	for i, g := range m.session.globals {
		r := m.session.global(g)
		mut := "const"
		if r.Mutable {
			mut = "mut"
		}
		line := fmt.Sprintf("%s: %s = %s", r.Name, typeStyle.Render(mut+" "+r.Type), r.Value)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.status != "":
		b.WriteString(resultStyle.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}
