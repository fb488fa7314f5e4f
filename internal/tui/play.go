// Package tui holds the Bubble Tea models for the interactive trainer:
// a play model that drives a game session over the websocket client,
// and a drill model for timed card-counting practice.
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
	"github.com/lox/blackjacktrainer/internal/client"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/server"
)

// ServerMsg wraps a websocket push so it can flow through the Bubble Tea
// update loop.
type ServerMsg struct {
	Message *server.ServerMessage
}

// PlayModel is the Bubble Tea model for playing a session against the
// trainer server. All game state arrives over the websocket; the model
// never computes outcomes locally.
type PlayModel struct {
	client *client.Client
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	betInput    textinput.Model

	// Pushes from the client, forwarded into the update loop
	messages chan *server.ServerMessage

	snapshot *server.Snapshot
	gameLog  []string

	focusedPane int // 0 = log, 1 = input
	quitting    bool
	lastError   string

	width       int
	height      int
	initialized bool
}

// NewPlayModel builds a play model around a connected client. The model
// subscribes to every push type; callers should run Connect on the client
// before starting the program.
func NewPlayModel(c *client.Client, logger *log.Logger) *PlayModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 100, hit, stand, double, split, surrender..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	m := &PlayModel{
		client:      c,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		betInput:    ti,
		messages:    make(chan *server.ServerMessage, 64),
		focusedPane: 1,
	}

	forward := func(msg *server.ServerMessage) {
		select {
		case m.messages <- msg:
		default:
			// Drop rather than block the client's dispatch loop.
		}
	}
	c.OnMessage(server.ServerMessageStateUpdate, forward)
	c.OnMessage(server.ServerMessageEvent, forward)
	c.OnMessage(server.ServerMessageError, forward)

	return m
}

// Init starts the input cursor blink and the server message listener
func (m *PlayModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForServer())
}

// waitForServer returns a command that delivers the next server push
func (m *PlayModel) waitForServer() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.messages
		if !ok {
			return tea.Quit()
		}
		return ServerMsg{Message: msg}
	}
}

// Update handles messages in the play TUI
func (m *PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ServerMsg:
		m.handleServerMessage(msg.Message)
		cmds = append(cmds, m.waitForServer())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.betInput.Focus()
			} else {
				m.focusedPane = 0
				m.betInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.betInput.Value())
				m.betInput.SetValue("")
				if cmd := m.processCommand(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.betInput, cmd = m.betInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleServerMessage folds a server push into the display state
func (m *PlayModel) handleServerMessage(msg *server.ServerMessage) {
	switch msg.Type {
	case server.ServerMessageStateUpdate:
		m.snapshot = msg.State
	case server.ServerMessageEvent:
		if msg.State != nil {
			m.snapshot = msg.State
		}
		if entry := formatEvent(msg.EventType, msg.Data); entry != "" {
			m.addLogEntry(entry)
		}
	case server.ServerMessageError:
		m.lastError = msg.Message
		m.addLogEntry(ErrorStyle.Render("error: " + msg.Message))
	}
}

// processCommand parses a command line and sends the matching websocket
// message. Unknown commands are reported in the log.
func (m *PlayModel) processCommand(input string) tea.Cmd {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return nil
	}
	m.lastError = ""

	var err error
	switch parts[0] {
	case "bet", "b":
		if len(parts) < 2 {
			m.addLogEntry(ErrorStyle.Render("usage: bet <amount>"))
			return nil
		}
		var amount int64
		amount, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			m.addLogEntry(ErrorStyle.Render("bad amount: " + parts[1]))
			return nil
		}
		err = m.client.Bet(amount)
	case "hit", "h":
		err = m.client.Action("hit")
	case "stand", "s":
		err = m.client.Action("stand")
	case "double", "d":
		err = m.client.Action("double")
	case "split", "p":
		err = m.client.Action("split")
	case "surrender", "r":
		err = m.client.Action("surrender")
	case "insurance", "i":
		if len(parts) > 1 {
			var amount int64
			amount, err = strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				m.addLogEntry(ErrorStyle.Render("bad amount: " + parts[1]))
				return nil
			}
			err = m.client.Insure(amount)
		} else {
			err = m.client.Action("insurance")
		}
	case "no", "n", "decline":
		err = m.client.Action("decline_insurance")
	case "new":
		err = m.client.NewRound()
	case "reset":
		err = m.client.ResetGame()
	case "state":
		err = m.client.GetState()
	case "quit", "q", "exit":
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	default:
		m.addLogEntry(ErrorStyle.Render("unknown command: " + parts[0]))
		return nil
	}

	if err != nil {
		m.addLogEntry(ErrorStyle.Render("send failed: " + err.Error()))
	}
	return nil
}

// View renders the play TUI
func (m *PlayModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Connecting..."
	}

	table := m.renderTablePane()
	action := m.renderActionPane()

	tableHeight := lipgloss.Height(table)
	actionHeight := lipgloss.Height(action)

	logWidth := m.width - 4
	logHeight := m.height - tableHeight - actionHeight - 4
	if logWidth < 1 {
		logWidth = 1
	}
	if logHeight < 1 {
		logHeight = 1
	}

	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}

	return lipgloss.JoinVertical(lipgloss.Top,
		table,
		logStyle.Render(m.logViewport.View()),
		action,
	)
}

// renderTablePane draws the dealer and player hands plus the session line
func (m *PlayModel) renderTablePane() string {
	var content strings.Builder

	snap := m.snapshot
	if snap == nil {
		content.WriteString(HeaderStyle.Render(" blackjack trainer "))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("waiting for first state update..."))
		return content.String()
	}

	header := fmt.Sprintf(" blackjack trainer | %s | bankroll $%s ", snap.State, snap.Bankroll)
	content.WriteString(HeaderStyle.Render(header))
	content.WriteString("\n\n")

	dealer := formatCardViews(snap.DealerHand.Cards)
	if snap.DealerHand.Value != nil {
		dealer += fmt.Sprintf(" (%d)", *snap.DealerHand.Value)
	} else if snap.DealerShowing != nil {
		dealer += fmt.Sprintf(" (showing %d)", *snap.DealerShowing)
	}
	content.WriteString(HandInfoStyle.Render("Dealer: "))
	content.WriteString(dealer)
	content.WriteString("\n")

	for i, hand := range snap.PlayerHands {
		marker := "  "
		if len(snap.PlayerHands) > 1 && i == snap.CurrentHandIndex {
			marker = WarningStyle.Render("▶ ")
		}
		line := fmt.Sprintf("%s (%d)", formatCardViews(hand.Cards), hand.Value)
		switch {
		case hand.IsBlackjack:
			line += SuccessStyle.Render(" blackjack!")
		case hand.IsBusted:
			line += ErrorStyle.Render(" bust")
		case hand.IsSoft:
			line += InfoStyle.Render(" soft")
		}
		content.WriteString(fmt.Sprintf("%sHand %d: %s  bet $%d\n", marker, i+1, line, hand.Bet))
	}

	shoe := fmt.Sprintf("shoe: %d cards (%.1f decks)", snap.ShoeCardsRemaining, snap.ShoeDecksRemaining)
	if snap.ShoeNeedsShuffle {
		shoe += WarningStyle.Render(" shuffle pending")
	}
	content.WriteString(InfoStyle.Render(shoe))

	return content.String()
}

// renderActionPane draws the available actions, the input line and help
func (m *PlayModel) renderActionPane() string {
	var content strings.Builder

	content.WriteString(m.renderAvailableActions())
	content.WriteString("\n")
	content.WriteString(m.betInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

// renderAvailableActions shows what the current state allows
func (m *PlayModel) renderAvailableActions() string {
	snap := m.snapshot
	if snap == nil {
		return ActionsStyle.Render("Actions: ...")
	}

	var actions []string
	if snap.State == game.StateWaitingForBet.String() {
		actions = append(actions, SuccessStyle.Render("[bet <amount>]"))
	}
	if snap.CanInsure {
		actions = append(actions, WarningStyle.Render("[insurance]"), SuccessStyle.Render("[no]"))
	}
	if snap.CanHit {
		actions = append(actions, SuccessStyle.Render("[hit]"))
	}
	if snap.CanStand {
		actions = append(actions, SuccessStyle.Render("[stand]"))
	}
	if snap.CanDouble {
		actions = append(actions, WarningStyle.Render("[double]"))
	}
	if snap.CanSplit {
		actions = append(actions, WarningStyle.Render("[split]"))
	}
	if snap.CanSurrender {
		actions = append(actions, ErrorStyle.Render("[surrender]"))
	}
	if snap.State == game.StateRoundComplete.String() {
		actions = append(actions, SuccessStyle.Render("[new]"), InfoStyle.Render("[reset]"))
	}
	if len(actions) == 0 {
		actions = append(actions, InfoStyle.Render("[waiting]"))
	}

	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}

// addLogEntry appends to the game log and keeps the viewport pinned to
// the latest entry
func (m *PlayModel) addLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// formatEvent renders an engine event as a log line. Events that carry
// no player-facing information return "".
func formatEvent(eventType string, data map[string]any) string {
	switch game.EventType(eventType) {
	case game.EventBetPlaced:
		return fmt.Sprintf("bet placed: $%v", data["amount"])
	case game.EventCardDealt:
		card, _ := data["card"].(string)
		if card == game.HiddenCard {
			card = hiddenGlyph
		} else {
			card = formatCard(card)
		}
		return fmt.Sprintf("card dealt to %v: %s", data["hand"], card)
	case game.EventRoundStarted:
		return "round started"
	case game.EventShoeShuffled:
		return WarningStyle.Render("shoe shuffled, count resets")
	case game.EventInsuranceOffered:
		return WarningStyle.Render("insurance offered")
	case game.EventInsuranceTaken:
		return fmt.Sprintf("insurance taken: $%v", data["amount"])
	case game.EventInsuranceDeclined:
		return "insurance declined"
	case game.EventInsuranceWins:
		return SuccessStyle.Render(fmt.Sprintf("insurance pays $%v", data["payout"]))
	case game.EventInsuranceLoses:
		return "insurance loses"
	case game.EventPlayerHit:
		return "hit"
	case game.EventPlayerStand:
		return "stand"
	case game.EventPlayerDouble:
		return "double down"
	case game.EventPlayerSplit:
		return "split"
	case game.EventPlayerSurrender:
		return "surrender"
	case game.EventPlayerBlackjack:
		return SuccessStyle.Render("blackjack!")
	case game.EventPlayerBusts:
		return ErrorStyle.Render("bust")
	case game.EventDealerReveals:
		card, _ := data["card"].(string)
		return fmt.Sprintf("dealer reveals %s (%v)", formatCard(card), data["hand_value"])
	case game.EventDealerHits:
		return fmt.Sprintf("dealer hits (%v)", data["hand_value"])
	case game.EventDealerStands:
		return fmt.Sprintf("dealer stands (%v)", data["hand_value"])
	case game.EventDealerBusts:
		return SuccessStyle.Render("dealer busts")
	case game.EventDealerBlackjack:
		return ErrorStyle.Render("dealer has blackjack")
	case game.EventPlayerWins:
		return SuccessStyle.Render(fmt.Sprintf("win $%v", data["payout"]))
	case game.EventPlayerLoses:
		return ErrorStyle.Render("loss")
	case game.EventPush:
		return "push"
	case game.EventRoundEnded:
		return InfoStyle.Render(fmt.Sprintf("round over, net $%v", data["result"]))
	case game.EventGameEnded:
		return ErrorStyle.Render("bankroll exhausted")
	default:
		return ""
	}
}

// formatCard colours a card string by suit
func formatCard(card string) string {
	if strings.ContainsAny(card, "♥♦") {
		return RedCardStyle.Render(card)
	}
	return BlackCardStyle.Render(card)
}

// formatCardViews renders a wire hand with colours, hiding face-down cards
func formatCardViews(cards []server.CardView) string {
	if len(cards) == 0 {
		return InfoStyle.Render("—")
	}
	formatted := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.Hidden {
			formatted = append(formatted, HiddenCardStyle.Render(hiddenGlyph))
			continue
		}
		formatted = append(formatted, formatCard(c.Rank+c.Suit))
	}
	return strings.Join(formatted, " ")
}
