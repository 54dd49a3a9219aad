package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flipbot/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the main TUI application state
type Model struct {
	app          *app.Application
	session      *app.SessionController
	input        textarea.Model
	loading      bool
	status       string
	help         helpModel
	windowWidth  int
	windowHeight int
	loadingSpinner int
}

// New creates a new TUI application around one deal conversation
func New(application *app.Application, session *app.SessionController) *Model {
	ta := textarea.New()
	ta.Placeholder = "Describe your deal or type /help for commands..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.Prompt = "▍ "

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	ta.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return &Model{
		app:            application,
		session:        session,
		input:          ta,
		loading:        false,
		help:           newHelpModel(),
		windowWidth:    80,
		windowHeight:   24,
		loadingSpinner: 0,
	}
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles UI updates
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		m.input.SetWidth(msg.Width - 8)
		m.help.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.help.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.help.keys.Enter):
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.status = ""

			if strings.HasPrefix(text, "/") {
				return m.handleCommand(text)
			}

			m.loading = true
			m.loadingSpinner = 0
			return m, tea.Batch(m.submitInput(text), m.spinCmd())

		case key.Matches(msg, m.help.keys.NewDeal):
			m.session.StartNewDeal()
			m.status = "Started a new deal."
			return m, nil
		}

	case turnDoneMsg:
		m.loading = false
		switch {
		case msg.err == app.ErrBusy:
			m.status = "Still working on the previous request..."
		case msg.err != nil:
			m.status = fmt.Sprintf("Error: %v", msg.err)
		case msg.result.RedirectUpgrade:
			m.status = "You're out of free analyses. Upgrade your plan to continue."
		}
		return m, nil

	case spinMsg:
		if m.loading {
			m.loadingSpinner = (m.loadingSpinner + 1) % 10
			return m, m.spinCmd()
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// slashActions maps slash commands to analysis actions.
var slashActions = map[string]app.ActionKind{
	"/stress":  app.ActionStressTest,
	"/worst":   app.ActionWorstCase,
	"/city":    app.ActionCityOpportunity,
	"/apr":     app.ActionAPRRisk,
	"/cash":    app.ActionCashToClose,
	"/hold":    app.ActionHoldSensitivity,
	"/lenders": app.ActionFindLenders,
	"/dscr":    app.ActionRefiDSCR,
}

func (m *Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.Fields(text)[0])
	switch cmd {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/new":
		m.session.StartNewDeal()
		m.status = "Started a new deal."
		return m, nil
	case "/help":
		m.status = "Commands: /stress /worst /city /apr /cash /hold /lenders /dscr /new /quit"
		return m, nil
	}
	if action, ok := slashActions[cmd]; ok {
		m.loading = true
		m.loadingSpinner = 0
		return m, tea.Batch(m.runAction(action), m.spinCmd())
	}
	m.status = fmt.Sprintf("Unknown command %q. Type /help for the list.", cmd)
	return m, nil
}

// submitInput routes one free-text turn through the session controller
func (m *Model) submitInput(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		result, err := m.session.HandleInput(ctx, text)
		return turnDoneMsg{result: result, err: err}
	}
}

// runAction dispatches a named action from a slash command
func (m *Model) runAction(action app.ActionKind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		result, err := m.session.RunAction(ctx, action)
		return turnDoneMsg{result: result, err: err}
	}
}

// spinCmd creates a command to animate the loading spinner
func (m *Model) spinCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(_ time.Time) tea.Msg {
		return spinMsg{}
	})
}

// turnDoneMsg reports one settled controller round-trip
type turnDoneMsg struct {
	result app.TurnResult
	err    error
}

// spinMsg is used to trigger spinner animation updates
type spinMsg struct{}

// View renders the TUI
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderMessages())
	b.WriteString("\n")

	b.WriteString(inputStyle.Width(m.windowWidth - 4).Render(m.input.View()))
	b.WriteString("\n")

	if m.loading {
		spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		spinnerChar := spinnerChars[m.loadingSpinner%len(spinnerChars)]
		b.WriteString(loadingStyle.Render(fmt.Sprintf("%s Analyzing...", spinnerChar)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View())

	return b.String()
}

// renderHeader renders the header
func (m *Model) renderHeader() string {
	state := "no deal"
	if m.session.IntakeActive() {
		state = "collecting deal"
	} else if m.session.HasDeal() {
		state = "deal analyzed"
	}
	headerText := fmt.Sprintf("FlipBot - Deal Analyzer [%s]", state)
	return headerStyle.Width(m.windowWidth - 4).Render(headerText)
}

// renderMessages renders the chat history
func (m *Model) renderMessages() string {
	var b strings.Builder

	for _, msg := range m.session.Messages() {
		var header string
		var style lipgloss.Style

		switch msg.Sender {
		case app.SenderUser:
			header = fmt.Sprintf("You • %s", msg.Time.Format("15:04:05"))
			style = userMessageStyle
		default:
			header = fmt.Sprintf("FlipBot • %s", msg.Time.Format("15:04:05"))
			style = assistantMessageStyle
		}

		b.WriteString(style.Width(m.windowWidth - 4).Render(header))
		b.WriteString("\n")

		contentStyle := messageContentStyle.Width(m.windowWidth - 4)
		switch msg.Kind {
		case app.KindCard, app.KindResult:
			b.WriteString(contentStyle.Render(renderPayload(msg)))
		default:
			b.WriteString(contentStyle.Render(msg.Text))
		}
		b.WriteString("\n")
	}

	return b.String()
}
