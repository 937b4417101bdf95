// Package tui is the interactive table: a Bubble Tea model that drives
// the round engine directly and renders its events as a game log.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/shoe"
)

// Model represents the Bubble Tea model for the blackjack table. Each
// command typed into the input runs one engine operation; the events
// the operation emits are drained into the game log before the next
// frame renders.
type Model struct {
	rules    game.Rules
	shoe     *shoe.Shoe
	round    *game.Round
	bankroll decimal.Decimal
	minBet   int
	lastBet  int
	logger   *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	holeRevealed bool
	roundsPlayed int
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized

	// Test mode
	testMode    bool
	capturedLog []string // For test assertions

	sink func(game.Event)
}

// ModelOption configures a Model at construction time.
type ModelOption func(*Model)

// WithShoe substitutes a prepared shoe, used by tests to force known
// deals.
func WithShoe(sh *shoe.Shoe) ModelOption {
	return func(m *Model) {
		m.shoe = sh
	}
}

// WithSeed makes the shoe deterministic.
func WithSeed(seed int64) ModelOption {
	return func(m *Model) {
		sh, err := shoe.New(m.rules.NumberOfDecks, m.rules.PenetrationPercent,
			shoe.WithRand(randutil.New(seed)))
		if err == nil {
			m.shoe = sh
		}
	}
}

// WithBankroll sets the starting bankroll. Defaults to 1000 units.
func WithBankroll(units int) ModelOption {
	return func(m *Model) {
		m.bankroll = decimal.NewFromInt(int64(units))
	}
}

// WithMinimumBet sets the table minimum. Defaults to 1 unit.
func WithMinimumBet(minBet int) ModelOption {
	return func(m *Model) {
		m.minBet = minBet
	}
}

// WithEventSink forwards every drained engine event, typically to a
// store recorder.
func WithEventSink(sink func(game.Event)) ModelOption {
	return func(m *Model) {
		m.sink = sink
	}
}

// WithTestMode captures log entries for assertions and skips viewport
// updates.
func WithTestMode() ModelOption {
	return func(m *Model) {
		m.testMode = true
	}
}

// NewModel creates a table model for the given house rules.
func NewModel(rules game.Rules, logger *log.Logger, opts ...ModelOption) (*Model, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	// Create viewport for game log with minimal initial size
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	// Create textinput for commands
	ti := textinput.New()
	ti.Placeholder = "Enter a bet to deal (e.g. 10)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		rules:       rules,
		bankroll:    decimal.NewFromInt(1000),
		minBet:      1,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		focusedPane: 1, // Start with input focused
		capturedLog: []string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.shoe == nil {
		sh, err := shoe.New(rules.NumberOfDecks, rules.PenetrationPercent,
			shoe.WithRand(randutil.NewCrypto()))
		if err != nil {
			return nil, err
		}
		m.shoe = sh
	}
	return m, nil
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.logger.Debug("Updating dimensions", "width", msg.Width, "height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 { // Only process enter in input pane
				command := strings.TrimSpace(m.actionInput.Value())
				m.HandleCommand(command)
				m.actionInput.SetValue("")
				if m.quitting {
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 { // Log pane focused
				m.logViewport.GotoBottom()
			}
		}
	}

	// Update components
	var cmd tea.Cmd

	// Only update input if it's focused
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always update viewport (for scrolling)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// HandleCommand runs one typed command against the engine and drains
// the resulting events into the game log.
func (m *Model) HandleCommand(input string) {
	parts := strings.Fields(strings.ToLower(input))

	var command string
	var args []string
	if len(parts) > 0 {
		command = parts[0]
		args = parts[1:]
	}

	switch {
	case command == "quit" || command == "q":
		m.quitting = true
		return

	case command == "help" || command == "?":
		m.AddLogEntry(InfoStyle.Render("Commands: <bet>, hit (h), stand (s), double (d), split (p), surrender (r), yes/no, quit"))
		return

	case m.awaitingBet():
		m.handleBetCommand(command, args)

	case m.round.Phase() == game.PhaseInsuranceOffered:
		m.handleInsuranceCommand(command, args)

	case m.round.Phase() == game.PhasePlayerTurn:
		m.handleActionCommand(command)

	default:
		if command != "" {
			m.AddLogEntry(ErrorStyle.Render("Nothing to do right now"))
		}
	}

	m.drainEvents()
	m.logViewport.GotoBottom()
}

// awaitingBet reports whether the next command should start a round.
func (m *Model) awaitingBet() bool {
	return m.round == nil || m.round.Phase() == game.PhaseComplete
}

func (m *Model) handleBetCommand(command string, args []string) {
	bet := m.lastBet

	switch command {
	case "":
		// Enter repeats the previous bet
	case "bet", "deal":
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				m.AddLogEntry(ErrorStyle.Render("Bet must be a number"))
				return
			}
			bet = n
		}
	default:
		n, err := strconv.Atoi(command)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q (try 'help')", command)))
			return
		}
		bet = n
	}

	if bet <= 0 {
		m.AddLogEntry(ErrorStyle.Render("Enter a bet to start the round"))
		return
	}
	m.startRound(bet)
}

func (m *Model) startRound(bet int) {
	if m.bankroll.LessThan(decimal.NewFromInt(int64(m.minBet))) {
		m.AddLogEntry(ErrorStyle.Render(
			fmt.Sprintf("Bankroll $%s cannot cover the $%d minimum", m.bankroll, m.minBet)))
		return
	}

	if m.shoe.ReshuffleIfCutCardReached() {
		m.AddLogEntry(WarningStyle.Render("Cut card reached, shuffling the shoe"))
	}
	m.holeRevealed = false
	m.lastBet = bet

	m.round = game.NewRound(m.rules, m.shoe,
		game.WithBank(int(m.bankroll.IntPart())),
		game.WithMinimumBet(m.minBet),
		game.WithLogger(m.logger),
	)

	if err := m.round.PlaceBet(bet); err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		m.round = nil
		return
	}
	if err := m.round.Deal(); err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		m.round = nil
	}
}

func (m *Model) handleInsuranceCommand(command string, args []string) {
	switch command {
	case "yes", "y", "insurance", "i":
		amount := 0
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				amount = n
			}
		}
		if amount <= 0 {
			amount = m.round.PlayerBet(0)
		}
		if err := m.round.AcceptInsurance(amount); err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
		}
	case "no", "n", "":
		if err := m.round.DeclineInsurance(); err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
		}
	default:
		m.AddLogEntry(ErrorStyle.Render("Insurance pending: answer yes or no"))
	}
}

func (m *Model) handleActionCommand(command string) {
	var err error
	switch command {
	case "hit", "h":
		err = m.round.PlayerHit()
	case "stand", "s", "":
		err = m.round.PlayerStand()
	case "double", "d":
		err = m.round.PlayerDoubleDown()
	case "split", "p":
		err = m.round.PlayerSplit()
	case "surrender", "r":
		err = m.round.PlayerSurrender()
	default:
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown action %q (try 'help')", command)))
		return
	}
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
	}
}

// drainEvents moves pending engine events into the game log and keeps
// the bankroll in step with round results.
func (m *Model) drainEvents() {
	if m.round == nil {
		return
	}
	for _, e := range m.round.Drain() {
		if m.sink != nil {
			m.sink(e)
		}
		switch ev := e.(type) {
		case game.DealerHoleCardRevealed:
			m.holeRevealed = true
		case game.RoundComplete:
			m.bankroll = m.bankroll.Add(ev.Net)
			m.roundsPlayed++
		}
		if entry := m.describeEvent(e); entry != "" {
			m.AddLogEntry(entry)
		}
	}
}

// describeEvent renders one engine event as a log line. Events with no
// table-talk equivalent return "".
func (m *Model) describeEvent(e game.Event) string {
	switch ev := e.(type) {
	case game.BetPlaced:
		return fmt.Sprintf("Bet placed: %s", WarningStyle.Render(fmt.Sprintf("$%d", ev.Amount)))
	case game.CardDealt:
		if ev.FaceDown {
			return fmt.Sprintf("Dealer takes the hole card %s", HiddenCardStyle.Render("[??]"))
		}
		if ev.Recipient == game.ParticipantDealer {
			return fmt.Sprintf("Dealer shows %s", m.formatCard(ev.Card.Card))
		}
		return fmt.Sprintf("You are dealt %s", m.formatCard(ev.Card.Card))
	case game.BlackjackDetected:
		if ev.Holder == game.ParticipantDealer {
			return ErrorStyle.Render("Dealer has blackjack!")
		}
		return SuccessStyle.Render("Blackjack!")
	case game.DealerPeeked:
		return InfoStyle.Render("Dealer peeks at the hole card")
	case game.InsuranceOffered:
		return WarningStyle.Render("Insurance? (yes/no)")
	case game.InsurancePlaced:
		return fmt.Sprintf("Insurance taken for %s", WarningStyle.Render(fmt.Sprintf("$%d", ev.Amount)))
	case game.InsuranceDeclined:
		return "Insurance declined"
	case game.InsuranceResult:
		if ev.DealerHadBlackjack {
			return fmt.Sprintf("Insurance pays %s", SuccessStyle.Render("$"+ev.Payout.String()))
		}
		return "Insurance lost"
	case game.PlayerTurnStarted:
		if m.round != nil && m.round.PlayerHandCount() > 1 {
			return HandInfoStyle.Render(fmt.Sprintf("Playing hand %d", ev.HandIndex+1))
		}
		return ""
	case game.PlayerHit:
		return fmt.Sprintf("You draw %s", m.formatCard(ev.Card.Card))
	case game.PlayerStood:
		return fmt.Sprintf("You stand on %d", m.round.PlayerHand(ev.HandIndex).Value())
	case game.PlayerBusted:
		return ErrorStyle.Render(fmt.Sprintf("Busted with %d", ev.Value))
	case game.PlayerDoubledDown:
		return fmt.Sprintf("Double down: %s rides, you draw %s",
			WarningStyle.Render(fmt.Sprintf("$%d", ev.NewBet)), m.formatCard(ev.Card.Card))
	case game.PlayerSplit:
		return fmt.Sprintf("Split: %s moves to hand %d", m.formatCard(ev.SplitCard.Card), ev.NewHandIndex+1)
	case game.PlayerSurrendered:
		return WarningStyle.Render("Surrendered, half the bet returns")
	case game.DealerTurnStarted:
		return InfoStyle.Render("Dealer plays")
	case game.DealerHoleCardRevealed:
		return fmt.Sprintf("Dealer reveals %s", m.formatCard(ev.Card.Card))
	case game.DealerHit:
		return fmt.Sprintf("Dealer draws %s", m.formatCard(ev.Card.Card))
	case game.DealerStood:
		return fmt.Sprintf("Dealer stands on %d", ev.Value)
	case game.DealerBusted:
		return SuccessStyle.Render(fmt.Sprintf("Dealer busts with %d", ev.Value))
	case game.HandResolved:
		return m.describeOutcome(ev)
	case game.RoundComplete:
		net := "pushes even"
		switch {
		case ev.Net.IsPositive():
			net = SuccessStyle.Render(fmt.Sprintf("wins $%s", ev.Net))
		case ev.Net.IsNegative():
			net = ErrorStyle.Render(fmt.Sprintf("loses $%s", ev.Net.Neg()))
		}
		return fmt.Sprintf("Round %s, bankroll %s", net,
			WarningStyle.Render("$"+m.bankroll.String()))
	default:
		return ""
	}
}

func (m *Model) describeOutcome(ev game.HandResolved) string {
	label := ""
	if m.round != nil && m.round.PlayerHandCount() > 1 {
		label = fmt.Sprintf("Hand %d: ", ev.HandIndex+1)
	}
	switch ev.Outcome {
	case game.OutcomeWin:
		return label + SuccessStyle.Render(fmt.Sprintf("Win, +$%s", ev.Payout))
	case game.OutcomeBlackjack:
		return label + SuccessStyle.Render(fmt.Sprintf("Blackjack, +$%s", ev.Payout))
	case game.OutcomeLose:
		return label + ErrorStyle.Render(fmt.Sprintf("Lose, -$%s", ev.Payout.Neg()))
	case game.OutcomePush:
		return label + "Push"
	case game.OutcomeSurrender:
		return label + WarningStyle.Render(fmt.Sprintf("Surrender, -$%s", ev.Payout.Neg()))
	default:
		return ""
	}
}

// View renders the model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	calculatedActionWidth := m.width - 2       // Full width minus border
	calculatedActionHeight := actionHeight - 2 // Content height minus border

	// Ensure action pane dimensions are valid (minimum 1x1)
	if calculatedActionWidth < 1 {
		calculatedActionWidth = 1
	}
	if calculatedActionHeight < 1 {
		calculatedActionHeight = 1
	}

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(calculatedActionWidth).
		Height(calculatedActionHeight)

	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right side of log pane, same height as log pane)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := lipgloss.Width(sidebarContent)

	calculatedSidebarWidth := 25
	if sidebarWidth > calculatedSidebarWidth {
		calculatedSidebarWidth = sidebarWidth
	}

	calculatedSidebarHeight := m.height - actionHeight - 4 // Account for border x 2 and action pane

	// Ensure sidebar dimensions are valid (minimum 1x1)
	if calculatedSidebarWidth < 1 {
		calculatedSidebarWidth = 1
	}
	if calculatedSidebarHeight < 1 {
		calculatedSidebarHeight = 1
	}

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedSidebarWidth).
		Height(calculatedSidebarHeight)

	sidebarPane := sidebarStyle.Render(sidebarContent)

	// Log pane (top, fills height minus action pane)
	logContent := m.renderLogPane()
	m.logViewport.SetContent(logContent)

	calculatedLogWidth := m.width - calculatedSidebarWidth - 4 // Account for border x 2 and sidebar
	calculatedLogHeight := m.height - actionHeight - 4         // Account for border x 2 and action pane

	// Ensure viewport dimensions are valid (minimum 1x1)
	if calculatedLogWidth < 1 {
		calculatedLogWidth = 1
	}
	if calculatedLogHeight < 1 {
		calculatedLogHeight = 1
	}

	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedLogHeight

	// On first proper sizing, reset to top to avoid starting scrolled down
	if !m.initialized && calculatedLogWidth > 1 && calculatedLogHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedLogHeight)

	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	// Top row (log pane + sidebar pane)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)

	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderLogPane renders the game log pane content
func (m *Model) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane creates the sidebar content
func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Bankroll: $%s", m.bankroll)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Table minimum: $%d", m.minBet)))
	content.WriteString("\n\n")

	content.WriteString(InfoStyle.Render(fmt.Sprintf("Rounds played: %d", m.roundsPlayed)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Cards in shoe: %d", m.shoe.Remaining())))
	content.WriteString("\n\n")

	if m.round != nil && m.round.DealerHand().Len() > 0 {
		content.WriteString(HandInfoStyle.Render("Dealer"))
		content.WriteString("\n")
		content.WriteString("  " + m.renderDealerCards())
		content.WriteString("\n\n")
	}

	if m.round != nil && m.round.PlayerHandCount() > 0 {
		content.WriteString(HandInfoStyle.Render("You"))
		content.WriteString("\n")
		for i := 0; i < m.round.PlayerHandCount(); i++ {
			content.WriteString("  " + m.renderPlayerHand(i))
			content.WriteString("\n")
		}
	}

	return content.String()
}

// renderDealerCards shows the dealer's hand, hiding the hole card
// until the engine reveals it.
func (m *Model) renderDealerCards() string {
	cards := m.round.DealerHand().Cards()
	if m.holeRevealed || m.round.Phase() == game.PhaseComplete {
		return fmt.Sprintf("%s %d", m.formatCards(cards), m.round.DealerHand().Value())
	}
	if len(cards) < 2 {
		return m.formatCards(cards)
	}
	up := cards[0]
	upValue := up.PointValue()
	if up.IsAce() {
		upValue = 11
	}
	return fmt.Sprintf("[%s %s] %d", m.colourCard(up), HiddenCardStyle.Render("??"), upValue)
}

func (m *Model) renderPlayerHand(i int) string {
	hand := m.round.PlayerHand(i)
	value := strconv.Itoa(hand.Value())
	if hand.IsSoft() {
		value = "soft " + value
	}
	marker := ""
	if i == m.round.ActiveHandIndex() {
		marker = ActionsStyle.Render(" ◀")
	}
	return fmt.Sprintf("%s %s ($%d)%s", m.formatCards(hand.Cards()), value, m.round.PlayerBet(i), marker)
}

// renderActionPane renders the command input pane
func (m *Model) renderActionPane() string {
	var content strings.Builder

	switch {
	case m.round != nil && m.round.Phase() == game.PhasePlayerTurn:
		idx := m.round.ActiveHandIndex()
		hand := m.round.PlayerHand(idx)
		content.WriteString(HandInfoStyle.Render(
			fmt.Sprintf("Hand: %s (%d)  Bet: $%d", m.formatCards(hand.Cards()), hand.Value(), m.round.PlayerBet(idx))))
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
		m.actionInput.Placeholder = "hit, stand, double, split, surrender"
	case m.round != nil && m.round.Phase() == game.PhaseInsuranceOffered:
		content.WriteString(WarningStyle.Render("Dealer shows an ace. Take insurance?"))
		content.WriteString("\n")
		m.actionInput.Placeholder = "yes or no"
	default:
		content.WriteString(HandInfoStyle.Render("Place a bet to deal"))
		content.WriteString("\n")
		if m.lastBet > 0 {
			m.actionInput.Placeholder = fmt.Sprintf("Enter to rebet $%d, or a new amount", m.lastBet)
		} else {
			m.actionInput.Placeholder = "Enter a bet to deal (e.g. 10)"
		}
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	// Show help text
	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render(
			"Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render(
			"Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	// Return content without styling - let the parent handle sizing and focus
	return content.String()
}

// renderAvailableActions renders the actions legal for the active hand
func (m *Model) renderAvailableActions() string {
	actions := []string{
		SuccessStyle.Render("[hit]"),
		SuccessStyle.Render("[stand]"),
	}
	if m.round.CanDoubleDown() {
		actions = append(actions, WarningStyle.Render("[double]"))
	}
	if m.round.CanSplit() {
		actions = append(actions, WarningStyle.Render("[split]"))
	}
	if m.round.CanSurrender() {
		actions = append(actions, ErrorStyle.Render("[surrender]"))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with colors
func (m *Model) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}

	var formatted []string
	for _, card := range cards {
		formatted = append(formatted, m.colourCard(card))
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

func (m *Model) formatCard(card deck.Card) string {
	return "[" + m.colourCard(card) + "]"
}

func (m *Model) colourCard(card deck.Card) string {
	if card.IsRed() {
		return RedCardStyle.Render(card.String())
	}
	return BlackCardStyle.Render(card.String())
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	// In test mode, also capture the log entry
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	// Update content and auto-scroll to bottom
	content := strings.Join(m.gameLog, "\n")
	m.logViewport.SetContent(content)

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the game log
func (m *Model) ClearLog() {
	m.gameLog = []string{}
	m.logViewport.SetContent("")
}

// Bankroll returns the player's current bankroll.
func (m *Model) Bankroll() decimal.Decimal {
	return m.bankroll
}

// RoundsPlayed returns how many rounds have completed.
func (m *Model) RoundsPlayed() int {
	return m.roundsPlayed
}

// Phase returns the live round's phase, or Complete when idle.
func (m *Model) Phase() game.Phase {
	if m.round == nil {
		return game.PhaseComplete
	}
	return m.round.Phase()
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	// Return a copy to prevent modification
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the model is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}

// Run starts the interactive table and blocks until the player quits.
func Run(rules game.Rules, logger *log.Logger, opts ...ModelOption) error {
	lipgloss.SetColorProfile(termenv.ColorProfile())

	m, err := NewModel(rules, logger, opts...)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
