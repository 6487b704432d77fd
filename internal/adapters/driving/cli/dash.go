package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
)

// dashRefreshInterval is how often the dashboard re-reconciles.
const dashRefreshInterval = 5 * time.Second

var (
	dashTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dashFooterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	dashErrStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Live sync dashboard",
	Long: `Opens a terminal dashboard that re-reconciles every few seconds and
shows each file's sync state and the in-flight indexing jobs. Press q
to quit, r to refresh immediately.`,
	RunE: runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDash(_ *cobra.Command, _ []string) error {
	if syncReader == nil || jobTracker == nil {
		return errors.New("sync and job services not configured")
	}

	model := newDashModel(syncReader, jobTracker)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// dashSnapshotMsg delivers a reconcile result to the model.
type dashSnapshotMsg struct {
	snapshot *driving.SyncSnapshot
	err      error
}

// dashTickMsg schedules the next periodic refresh.
type dashTickMsg struct{}

// dashModel is the Elm-architecture model behind the dash command.
type dashModel struct {
	sync driving.SyncReader
	jobs driving.JobTracker

	spinner  spinner.Model
	snapshot *driving.SyncSnapshot
	err      error
	loading  bool
	width    int
}

// Ensure dashModel implements tea.Model.
var _ tea.Model = (*dashModel)(nil)

func newDashModel(sync driving.SyncReader, jobs driving.JobTracker) *dashModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	return &dashModel{
		sync:    sync,
		jobs:    jobs,
		spinner: s,
		loading: true,
	}
}

// Init starts the spinner and the first reconcile.
func (m *dashModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reconcileCmd())
}

// Update handles messages.
func (m *dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.reconcileCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case dashSnapshotMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.snapshot = msg.snapshot
		}
		return m, m.tickCmd()

	case dashTickMsg:
		m.loading = true
		return m, m.reconcileCmd()

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m *dashModel) View() string {
	header := dashTitleStyle.Render("kbsync")
	if m.loading {
		header += " " + m.spinner.View() + "reconciling"
	}
	out := header + "\n\n"

	if m.err != nil {
		out += dashErrStyle.Render(fmt.Sprintf("reconcile failed: %v", m.err)) + "\n\n"
	}

	if m.snapshot == nil {
		return out + dashFooterStyle.Render("waiting for the first snapshot...") + "\n"
	}

	for _, info := range m.snapshot.Files {
		out += fmt.Sprintf("%-12s %s\n", stateLabel(info.State), info.File.Name)
	}

	active := m.jobs.ActiveJobs()
	out += "\n" + dashFooterStyle.Render(fmt.Sprintf(
		"%d file(s) · %d chunk(s) · %d orphaned key(s) · %d job(s) in flight",
		len(m.snapshot.Files), m.snapshot.TotalChunks,
		len(m.snapshot.OrphanedKeys), len(active))) + "\n"
	out += dashFooterStyle.Render("q quit · r refresh") + "\n"
	return out
}

// reconcileCmd runs one reconcile off the UI goroutine.
func (m *dashModel) reconcileCmd() tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.sync.Reconcile(context.Background())
		return dashSnapshotMsg{snapshot: snapshot, err: err}
	}
}

// tickCmd schedules the next refresh.
func (m *dashModel) tickCmd() tea.Cmd {
	return tea.Tick(dashRefreshInterval, func(time.Time) tea.Msg {
		return dashTickMsg{}
	})
}
