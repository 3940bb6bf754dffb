package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"shootproxy/internal/domain"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase is the stage of the run the view is showing.
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseProcessing
	PhaseDone
	PhaseError
)

// Messages sent by the background run.
type (
	PlanReadyMsg struct {
		Plan domain.ProxyPlan
	}
	// StageProgressMsg is sent before Entry is staged, so Current counts it.
	StageProgressMsg struct {
		Current int
		Total   int
		Entry   domain.PlanEntry
	}
	RunDoneMsg struct {
		Report domain.RunReport
	}
	ErrorMsg struct {
		Err error
	}
	refreshMsg time.Time
)

type Config struct {
	ShootDir    string
	Destination string
}

type Model struct {
	cfg      Config
	Phase    Phase
	Plan     domain.ProxyPlan
	Report   domain.RunReport
	Err      error
	Quitting bool

	spin    spinner.Model
	bar     progress.Model
	current int
	total   int
	active  domain.PlanEntry
	staged  map[string]int
}

func NewModel(cfg Config) Model {
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	spin.Style = activeStyle

	return Model{
		cfg:    cfg,
		Phase:  PhaseScanning,
		spin:   spin,
		bar:    progress.New(progress.WithSolidFill(string(amber)), progress.WithWidth(48), progress.WithoutPercentage()),
		staged: make(map[string]int),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, refresh())
}

func (m Model) running() bool {
	return m.Phase == PhaseScanning || m.Phase == PhaseProcessing
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-24, 64))

	case PlanReadyMsg:
		m.Plan = msg.Plan
		m.total = msg.Plan.Total()
		m.Phase = PhaseProcessing

	case StageProgressMsg:
		if m.active.Name != "" {
			m.staged[m.active.Camera]++
		}
		m.current, m.total, m.active = msg.Current, msg.Total, msg.Entry

	case RunDoneMsg:
		m.Report = msg.Report
		m.Phase = PhaseDone
		m.active = domain.PlanEntry{}

	case ErrorMsg:
		m.Err = msg.Err
		m.Phase = PhaseError

	case spinner.TickMsg:
		if m.running() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd

	case refreshMsg:
		if m.running() {
			return m, tea.Batch(m.bar.SetPercent(m.fraction()), refresh())
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "enter":
		if !m.running() {
			return m, tea.Quit
		}
	}
	return m, nil
}

func refresh() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m Model) fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.current) / float64(m.total)
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	sections := []string{m.header()}
	switch m.Phase {
	case PhaseScanning:
		sections = append(sections, m.spin.View()+" Reading camera folders...")
	case PhaseProcessing:
		sections = append(sections, m.progressView(), m.cameraList())
	case PhaseDone:
		sections = append(sections, m.cameraList(), m.summary())
	case PhaseError:
		sections = append(sections, failBoxStyle.Render(failStyle.Render(glyphFail+" "+m.Err.Error())))
	}
	sections = append(sections, m.hint())

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) header() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		bannerStyle.Render("makeproxy"),
		pathStyle.Render("from "+shortenPath(m.cfg.ShootDir)),
		pathStyle.Render("into "+shortenPath(m.cfg.Destination)),
		"",
	)
}

func (m Model) progressView() string {
	verb := "Copying"
	if m.active.Category.Transcoded() {
		verb = "Transcoding"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", m.spin.View(), verb, valueStyle.Render(m.active.Camera+"/"+m.active.Name))
	fmt.Fprintf(&b, "%s  %s", m.bar.ViewAs(m.fraction()), activeStyle.Render(fmt.Sprintf("%d/%d files", m.current, m.total)))
	return b.String()
}

// cameraList shows one row per camera with how many of its files are staged.
func (m Model) cameraList() string {
	rows := []string{headingStyle.Render("Cameras")}
	for _, camera := range m.Plan.Cameras {
		want := len(camera.Entries)
		got := m.staged[camera.Name]
		if m.Phase == PhaseDone {
			got = want
		}

		glyph, style := glyphPending, pendingStyle
		switch {
		case got == want:
			glyph, style = glyphDone, doneStyle
		case camera.Name == m.active.Camera:
			glyph, style = glyphActive, activeStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s %-20s %d/%d", glyph, camera.Name, got, want)))
	}
	return strings.Join(rows, "\n")
}

func (m Model) summary() string {
	proxied, copied := 0, 0
	for _, item := range m.Report.Items {
		if item.Transcoded {
			proxied++
		} else {
			copied++
		}
	}

	stat := func(label string, value int) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render("Summary"),
		stat("Proxied", proxied),
		stat("Copied", copied),
		stat("Omitted", len(m.Report.Omitted)),
		"",
		doneStyle.Render(m.Report.Shoot+" has been proxied."),
	)
}

func (m Model) hint() string {
	if m.running() {
		return hintStyle.Render("q cancel")
	}
	return hintStyle.Render("enter exit")
}

// shortenPath swaps the home directory prefix for ~.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" || !strings.HasPrefix(path, home) {
		return path
	}
	return "~" + strings.TrimPrefix(path, home)
}
