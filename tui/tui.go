// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Interactive outreach analytics dashboard with background backups
package tui

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/backup"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
)

// ViewMode represents the current TUI tab
type ViewMode int

const (
	ViewOverview ViewMode = iota
	ViewTrend
	ViewChannels
	ViewOutreach
	ViewBackup
)

var tabNames = []string{"Overview", "Trend", "Channels", "Outreach", "Backup"}

// recentLimit caps the outreach table.
const recentLimit = 50

type dataMsg struct {
	overview analytics.Dashboard
	byType   []models.OutreachAnalytics
	recent   []models.Outreach
}

type errMsg struct{ err error }

type backupDoneMsg struct{ file models.BackupFile }

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	agg      *analytics.Aggregator
	outreach *db.OutreachRepository
	backups  *backup.Service

	viewMode ViewMode
	loading  bool

	overview    analytics.Dashboard
	channel     int
	channelDays []models.OutreachAnalytics
	recent      []models.Outreach
	selectedRow int

	backupRunning bool
	lastBackup    *models.BackupFile
	spinner       spinner.Model

	width  int
	height int
	err    error
}

// NewModel creates the dashboard model. backups may be nil, which disables
// the Backup tab actions.
func NewModel(ctx context.Context, database *sql.DB, agg *analytics.Aggregator, backups *backup.Service) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		agg:      agg,
		outreach: db.NewOutreachRepository(database),
		backups:  backups,
		viewMode: ViewOverview,
		loading:  true,
		spinner:  sp,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) channelType() models.OutreachType {
	return models.AllOutreachTypes[m.channel]
}

func (m Model) load() tea.Cmd {
	ctx, agg, repo, t := m.ctx, m.agg, m.outreach, m.channelType()
	return func() tea.Msg {
		overview, err := agg.Overview(ctx)
		if err != nil {
			return errMsg{err}
		}
		byType, err := agg.ByType(ctx, t)
		if err != nil {
			return errMsg{err}
		}
		recent, err := repo.List(ctx, recentLimit)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load outreach: %w", err)}
		}
		return dataMsg{overview: overview, byType: byType, recent: recent}
	}
}

// waitForBackup turns the completion channel into a message.
func waitForBackup(done <-chan models.BackupFile) tea.Cmd {
	return func() tea.Msg {
		return backupDoneMsg{file: <-done}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case dataMsg:
		m.loading = false
		m.err = nil
		m.overview = msg.overview
		m.channelDays = msg.byType
		m.recent = msg.recent
		if m.selectedRow >= len(m.recent) {
			m.selectedRow = 0
		}
		return m, nil
	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	case backupDoneMsg:
		m.backupRunning = false
		file := msg.file
		m.lastBackup = &file
		return m, m.load()
	case spinner.TickMsg:
		if !m.backupRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err)
	}
	if m.loading {
		return "Loading analytics..."
	}

	var body string
	switch m.viewMode {
	case ViewOverview:
		body = m.renderOverview()
	case ViewTrend:
		body = m.renderTrend()
	case ViewChannels:
		body = m.renderChannels()
	case ViewOutreach:
		body = m.renderOutreach()
	case ViewBackup:
		body = m.renderBackup()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("COMMAND CENTER"),
		m.renderTabs(),
		"",
		body,
		helpStyle.Render(m.help()),
	)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "right", "l":
		m.viewMode = (m.viewMode + 1) % ViewMode(len(tabNames))
		return m, nil
	case "shift+tab", "left", "h":
		m.viewMode = (m.viewMode + ViewMode(len(tabNames)) - 1) % ViewMode(len(tabNames))
		return m, nil
	case "r":
		m.loading = true
		return m, m.load()
	}

	switch m.viewMode {
	case ViewChannels:
		return m.handleChannelKeys(msg)
	case ViewOutreach:
		return m.handleOutreachKeys(msg)
	case ViewBackup:
		return m.handleBackupKeys(msg)
	case ViewOverview, ViewTrend:
	}
	return m, nil
}

func (m Model) handleChannelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(models.AllOutreachTypes)
	switch msg.String() {
	case "down", "j":
		m.channel = (m.channel + 1) % n
	case "up", "k":
		m.channel = (m.channel + n - 1) % n
	default:
		return m, nil
	}
	return m, m.load()
}

func (m Model) handleOutreachKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "down", "j":
		if m.selectedRow < len(m.recent)-1 {
			m.selectedRow++
		}
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	}
	return m, nil
}

func (m Model) handleBackupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "b" || m.backups == nil || m.backupRunning {
		return m, nil
	}
	m.backupRunning = true
	return m, tea.Batch(waitForBackup(m.backups.BackupAsync(m.ctx)), m.spinner.Tick)
}

func (m Model) help() string {
	switch m.viewMode {
	case ViewChannels:
		return "↑/↓: channel • tab: next view • r: refresh • q: quit"
	case ViewOutreach:
		return "↑/↓: navigate • tab: next view • r: refresh • q: quit"
	case ViewBackup:
		return "b: back up now • tab: next view • q: quit"
	case ViewOverview, ViewTrend:
	}
	return "tab: next view • r: refresh • q: quit"
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(22)

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)
