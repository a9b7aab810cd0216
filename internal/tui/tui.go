package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/lox/truckdealer/internal/deck"
	"github.com/lox/truckdealer/internal/game"
)

// Pane focus.
const (
	focusLog = iota
	focusInput
)

type keyMap struct {
	Submit key.Binding
	Focus  key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Focus, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Focus}, {k.Scroll, k.Quit}}
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
	Focus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll log")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("ctrl+c", "quit")),
}

// Model is the Bubble Tea model for a pass-and-play game. All rules live in
// the game session; the model only maps key presses to actions and renders
// the resulting state.
type Model struct {
	session *game.Session
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model
	help        help.Model

	gameLog     []string
	errMsg      string
	quitting    bool
	focusedPane int

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewModel creates a model driving session
func NewModel(session *game.Session, logger *log.Logger) *Model {
	return NewModelWithOptions(session, logger, false)
}

// NewModelWithOptions creates a model with test mode option. In test mode log
// entries are captured for assertions and the viewport is left alone.
func NewModelWithOptions(session *game.Session, logger *log.Logger, testMode bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		session:     session,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		help:        help.New(),
		focusedPane: focusInput,
		testMode:    testMode,
	}
}

// Start begins a new game in the session and logs its opening.
func (m *Model) Start(action game.StartGame) error {
	res, err := m.session.Dispatch(action)
	if err != nil {
		return err
	}
	st := res.State
	names := make([]string, len(st.Players))
	for i, p := range st.Players {
		names[i] = p.Name
	}
	m.AddLogEntry(fmt.Sprintf("New game: %s", strings.Join(names, ", ")))
	m.AddLogEntry(fmt.Sprintf("%s deals first. %s guesses.", st.Dealer().Name, st.Guesser().Name))
	m.logger.Info("game started", "players", len(st.Players), "seed", st.Seed)
	return nil
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Focus):
			if m.focusedPane == focusLog {
				m.focusedPane = focusInput
				m.input.Focus()
			} else {
				m.focusedPane = focusLog
				m.input.Blur()
			}
		case key.Matches(msg, keys.Submit):
			if m.focusedPane == focusInput {
				input := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if m.processInput(input) {
					m.quitting = true
					return m, tea.Quit
				}
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processInput maps a submitted line to the action for the current phase.
// It reports whether the user asked to quit.
func (m *Model) processInput(input string) bool {
	m.errMsg = ""
	switch strings.ToLower(input) {
	case "quit", "exit":
		return true
	}

	st := m.session.State()
	if st == nil {
		m.errMsg = "No game in progress"
		return false
	}

	var action game.Action
	switch st.Phase {
	case game.PhaseDealerPeek:
		action = game.ConfirmDealerPeek{}
	case game.PhaseGuess:
		rank, err := deck.ParseRank(input)
		if err != nil {
			m.errMsg = fmt.Sprintf("%q is not a rank. Try A, 2-10, J, Q or K.", input)
			return false
		}
		action = game.SubmitGuess{Guess: rank}
	case game.PhasePrompt:
		action = game.AckPrompt{}
	default:
		m.errMsg = fmt.Sprintf("unexpected phase %s", st.Phase)
		return false
	}

	res, err := m.session.Dispatch(action)
	if err != nil {
		m.errMsg = err.Error()
		m.logger.Error("Action failed", "action", action.Type(), "error", err)
		return false
	}
	m.logTransition(st, action, res.State)
	return false
}

func (m *Model) logTransition(prev *game.State, action game.Action, next *game.State) {
	switch a := action.(type) {
	case game.SubmitGuess:
		m.AddLogEntry(fmt.Sprintf("Turn %d: %s guessed %s, card was %s",
			prev.Turn+1, prev.Guesser().Name, deck.RankLabel(a.Guess), deck.CardLabel(*prev.PeekedCard)))
		for _, p := range next.PendingPrompts {
			m.AddLogEntry("  " + p.Text)
		}
	case game.AckPrompt:
		// An emptied deck queues its notice as the next turn begins.
		if showingReshuffle(next) && !showingReshuffle(prev) {
			for _, p := range next.PendingPrompts {
				m.AddLogEntry(p.Text)
			}
		}
	}
}

func showingReshuffle(s *game.State) bool {
	p := s.CurrentPrompt()
	return p != nil && p.Text == game.ReshuffleText
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == focusInput {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == focusLog {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows who is dealing, the streaks and the table.
func (m *Model) renderSidebarPane() string {
	st := m.session.State()
	if st == nil {
		return InfoStyle.Render("No game in progress")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Turn %d ", st.Turn+1)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Dealer:  %s\n", st.Dealer().Name)
	fmt.Fprintf(&b, "Guesser: %s\n", st.Guesser().Name)
	fmt.Fprintf(&b, "Streak:  %d right / %d wrong\n", st.CorrectStreak, st.WrongStreak)
	fmt.Fprintf(&b, "Deck:    %d left\n\n", len(st.Deck))

	b.WriteString(m.renderStatsTable(st))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Table"))
	b.WriteString("\n")
	for _, pile := range st.Table {
		b.WriteString(m.renderPile(pile))
		b.WriteString("\n")
	}
	return b.String()
}

// renderStatsTable renders per-player counters in seating order, marking the
// dealer and guesser.
func (m *Model) renderStatsTable(st *game.State) string {
	rows := make([][]string, 0, len(st.Players))
	for i, p := range st.Players {
		ps := st.StatsFor(p.ID)
		name := p.Name
		switch i {
		case st.DealerIndex:
			name += " (D)"
		case st.GuesserIndex:
			name += " (G)"
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(ps.DrinksTaken),
			strconv.Itoa(ps.CorrectGuesses),
			strconv.Itoa(ps.IncorrectGuesses),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		Headers("Player", "Drinks", "Right", "Wrong").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Inherit(InfoStyle)
			}
			if col > 0 {
				style = style.Align(lipgloss.Right)
			}
			return style
		}).
		Render()
}

func (m *Model) renderPile(p game.Pile) string {
	label := fmt.Sprintf("%2s ", deck.RankLabel(p.Rank))
	if p.IsComplete {
		return CompletePileStyle.Render(label + "complete")
	}
	return label + m.formatCards(p.Cards)
}

// formatCards formats cards with colors
func (m *Model) formatCards(cards []deck.Card) string {
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(deck.CardLabel(card)))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(deck.CardLabel(card)))
		}
	}
	return strings.Join(formatted, " ")
}

// renderActionPane renders the instruction for the current phase and the
// input field.
func (m *Model) renderActionPane() string {
	var b strings.Builder

	if st := m.session.State(); st != nil {
		switch st.Phase {
		case game.PhaseDealerPeek:
			if st.PeekedCard != nil {
				b.WriteString(CardInfoStyle.Render(fmt.Sprintf("%s, your card is %s. Press Enter and pass to %s.",
					st.Dealer().Name, deck.CardLabel(*st.PeekedCard), st.Guesser().Name)))
			}
			m.input.Placeholder = "Enter when the dealer has peeked"
		case game.PhaseGuess:
			b.WriteString(CardInfoStyle.Render(fmt.Sprintf("%s, guess the rank of %s's card.",
				st.Guesser().Name, st.Dealer().Name)))
			m.input.Placeholder = "A, 2-10, J, Q or K"
		case game.PhasePrompt:
			if p := st.CurrentPrompt(); p != nil {
				b.WriteString(promptStyle(*p).Render(p.Text))
			}
			m.input.Placeholder = "Enter to continue"
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Err returns the last input error shown to the user, if any.
func (m *Model) Err() string {
	return m.errMsg
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}
