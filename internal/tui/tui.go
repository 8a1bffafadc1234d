// Package tui is the interactive terminal front-end over the animation
// scheduler. It only reads snapshots and issues commands; all board and
// state ownership stays inside the scheduler.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/cellforge/lifegrid/internal/board"
	"github.com/cellforge/lifegrid/internal/pattern"
	"github.com/cellforge/lifegrid/internal/rng"
	"github.com/cellforge/lifegrid/internal/scheduler"
)

const (
	refreshRate     = time.Second / 30
	historyCapacity = 600
)

type TickMsg time.Time

// Model polls the scheduler and renders its snapshots.
type Model struct {
	sched    *scheduler.Scheduler
	alphabet board.Alphabet
	rand     *rng.Source

	patterns   []pattern.Pattern
	selected   int
	popHistory []float64
	lastGen    int
	interval   time.Duration
	showHelp   bool
	flash      string
}

// NewModel wires the front-end to a running scheduler.
func NewModel(sched *scheduler.Scheduler, alphabet board.Alphabet, interval time.Duration, r *rng.Source) Model {
	if r == nil {
		r = rng.NewAmbient()
	}
	return Model{
		sched:      sched,
		alphabet:   alphabet,
		rand:       r,
		patterns:   pattern.Library(),
		popHistory: make([]float64, 0, historyCapacity),
		lastGen:    -1,
		interval:   interval,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sched.Close()
			return m, tea.Quit
		case " ":
			snap := m.sched.Snapshot()
			if snap.State == scheduler.Running {
				m.sched.Pause()
			} else {
				m.sched.Start()
			}
		case "s", "n":
			m.sched.Step()
		case "r":
			m.sched.Reset()
			m.popHistory = m.popHistory[:0]
			m.lastGen = -1
			m.flash = ""
		case "tab":
			m.selected = (m.selected + 1) % len(m.patterns)
		case "enter", "p":
			m.placeSelected()
		case "+", "=":
			m.interval = adjustInterval(m.interval, 0.8)
			m.sched.SetInterval(m.interval)
		case "-", "_":
			m.interval = adjustInterval(m.interval, 1.25)
			m.sched.SetInterval(m.interval)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		snap := m.sched.Snapshot()
		if snap.Generation != m.lastGen {
			m.lastGen = snap.Generation
			m.popHistory = append(m.popHistory, float64(snap.Population))
			if len(m.popHistory) > historyCapacity {
				m.popHistory = m.popHistory[1:]
			}
		}
		return m, tea.Tick(refreshRate, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// placeSelected stamps the selected pattern onto the current board at a
// random rotation and origin.
func (m *Model) placeSelected() {
	snap := m.sched.Snapshot()
	if snap.Board.Height() == 0 {
		m.flash = "no board yet: press space or s first"
		return
	}
	p := m.patterns[m.selected]
	placed, at, err := pattern.Place(p, snap.Board, m.alphabet, m.rand)
	if err != nil {
		m.flash = err.Error()
		return
	}
	m.sched.SetBoard(placed)
	m.flash = fmt.Sprintf("placed %s at (%d,%d) rot %d", p.Name, at.X, at.Y, at.Rotation)
}

func adjustInterval(d time.Duration, factor float64) time.Duration {
	out := time.Duration(float64(d) * factor)
	if out < 10*time.Millisecond {
		out = 10 * time.Millisecond
	}
	if out > 5*time.Second {
		out = 5 * time.Second
	}
	return out
}

func (m Model) View() string {
	snap := m.sched.Snapshot()

	boardView := boardStyle.Render(renderBoard(snap.Board, m.alphabet))
	stats := m.renderStats(snap)
	main := lipgloss.JoinHorizontal(lipgloss.Top, boardView, statsStyle.Render(stats))

	help := "space start/pause · s step · r reset · tab pattern · enter place · +/- speed · ? help · q quit"
	if m.showHelp {
		help = strings.Join([]string{
			"space  start or pause the animation",
			"s, n   advance a single generation",
			"r      reset to a fresh random board",
			"tab    cycle the pattern to place",
			"enter  stamp the selected pattern",
			"+/-    speed up / slow down",
			"q      quit",
		}, "\n")
	}

	var b strings.Builder
	b.WriteString(main)
	b.WriteString("\n")
	if m.flash != "" {
		b.WriteString(valueStyle.Render(m.flash))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m Model) renderStats(snap scheduler.Snapshot) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("lifegrid"))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("state", snap.State.String())
	row("generation", fmt.Sprintf("%d", snap.Generation))
	row("population", fmt.Sprintf("%d", snap.Population))
	row("latency", snap.LastLatency.Round(time.Millisecond).String())
	row("interval", m.interval.String())
	row("pattern", m.patterns[m.selected].Name)

	if snap.Err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(wrapText(snap.Err.Error(), 32)))
		b.WriteString("\n")
	}

	if len(m.popHistory) >= 2 {
		graph := asciigraph.Plot(m.popHistory,
			asciigraph.Height(6),
			asciigraph.Width(30),
			asciigraph.Caption("population"),
		)
		b.WriteString(graphStyle.Render(graph))
	}
	return b.String()
}

// renderBoard colors each colony by its position in the alphabet; markers
// outside the alphabet share the last palette slot.
func renderBoard(b board.Board, alphabet board.Alphabet) string {
	if b.Height() == 0 {
		return "press space to seed a board"
	}

	styles := make(map[byte]lipgloss.Style, len(alphabet))
	for i, marker := range alphabet {
		styles[marker] = markerStyle(i)
	}
	fallback := markerStyle(len(alphabet))

	var out strings.Builder
	for y := 0; y < b.Height(); y++ {
		if y > 0 {
			out.WriteString("\n")
		}
		for x := 0; x < b.Width(); x++ {
			c := b.At(x, y)
			if c == board.Dead {
				out.WriteString(" ")
				continue
			}
			style, ok := styles[c]
			if !ok {
				style = fallback
			}
			out.WriteString(style.Render(string(c)))
		}
	}
	return out.String()
}

func wrapText(s string, width int) string {
	words := strings.Fields(s)
	var lines []string
	line := ""
	for _, w := range words {
		if line != "" && len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		if line == "" {
			line = w
		} else {
			line += " " + w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
