package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/counting"
	"github.com/lox/blackjacktrainer/internal/randutil"
)

// drillPhase tracks where a drill round is in its lifecycle
type drillPhase int

const (
	drillShowing drillPhase = iota
	drillEntering
	drillResult
)

// flipMsg advances the drill to its next card
type flipMsg struct{}

// DrillModel runs a timed card-counting drill entirely locally. Cards
// flash one at a time from a shuffled deck; when the run is done the
// user keys in the running count and gets graded.
type DrillModel struct {
	logger *log.Logger

	system   counting.System
	interval time.Duration
	perDrill int

	shoe  *blackjack.Shoe
	cards []blackjack.Card
	shown int

	phase      drillPhase
	countInput textinput.Model

	lastAnswer  float64
	lastCorrect bool
	drills      int
	correct     int

	width    int
	height   int
	quitting bool
}

// NewDrillModel builds a drill for the named counting system. Unknown
// names fall back to Hi-Lo. interval is the time each card stays on
// screen; cardsPerDrill is how many cards flash before the count is
// requested.
func NewDrillModel(system string, cardsPerDrill int, interval time.Duration, logger *log.Logger) *DrillModel {
	if cardsPerDrill <= 0 {
		cardsPerDrill = 20
	}
	if cardsPerDrill > blackjack.CardsPerDeck {
		cardsPerDrill = blackjack.CardsPerDeck
	}
	if interval <= 0 {
		interval = time.Second
	}

	ti := textinput.New()
	ti.Placeholder = "running count"
	ti.CharLimit = 8
	ti.Width = 20
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	m := &DrillModel{
		logger:     logger.WithPrefix("drill"),
		system:     counting.ForName(system),
		interval:   interval,
		perDrill:   cardsPerDrill,
		countInput: ti,
	}
	m.dealDrill()
	return m
}

// dealDrill shuffles up a fresh run of cards and resets the counter
func (m *DrillModel) dealDrill() {
	// A single deck is plenty per drill; reshuffle when it runs low.
	if m.shoe == nil || m.shoe.CardsRemaining() < m.perDrill {
		shoe, err := blackjack.NewShoe(1, 1.0, randutil.New(time.Now().UnixNano()))
		if err != nil {
			panic(err)
		}
		shoe.Shuffle()
		m.shoe = shoe
	}

	m.system.Reset()
	m.cards = m.cards[:0]
	for i := 0; i < m.perDrill; i++ {
		m.cards = append(m.cards, m.shoe.Draw())
	}
	m.shown = 0
	m.phase = drillShowing
	m.countInput.SetValue("")
	m.countInput.Blur()
}

// Init kicks off the first card flip
func (m *DrillModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.nextFlip())
}

// nextFlip schedules the next card after the drill interval
func (m *DrillModel) nextFlip() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return flipMsg{}
	})
}

// Update handles messages in the drill TUI
func (m *DrillModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case flipMsg:
		if m.phase != drillShowing {
			return m, nil
		}
		if m.shown < len(m.cards) {
			m.system.Count(m.cards[m.shown])
			m.shown++
		}
		if m.shown == len(m.cards) {
			m.phase = drillEntering
			m.countInput.Focus()
			return m, textinput.Blink
		}
		return m, m.nextFlip()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.phase == drillEntering && msg.String() == "q" {
				break // let "q" be typed into the count field
			}
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			switch m.phase {
			case drillEntering:
				m.grade(strings.TrimSpace(m.countInput.Value()))
				return m, nil
			case drillResult:
				m.dealDrill()
				return m, m.nextFlip()
			}
		}
	}

	if m.phase == drillEntering {
		var cmd tea.Cmd
		m.countInput, cmd = m.countInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// grade checks the entered count against the system's running count
func (m *DrillModel) grade(input string) {
	answer, err := strconv.ParseFloat(input, 64)
	if err != nil {
		m.countInput.SetValue("")
		return
	}

	m.lastAnswer = answer
	m.lastCorrect = math.Abs(answer-m.system.RunningCount()) < 0.01
	m.drills++
	if m.lastCorrect {
		m.correct++
	}
	m.phase = drillResult
	m.countInput.Blur()
}

// View renders the drill TUI
func (m *DrillModel) View() string {
	if m.quitting {
		return ""
	}

	var content strings.Builder
	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" counting drill | %s ", m.system.Name())))
	content.WriteString("\n\n")

	switch m.phase {
	case drillShowing:
		if m.shown == 0 {
			content.WriteString(InfoStyle.Render("get ready..."))
		} else {
			content.WriteString("  " + formatDrillCard(m.cards[m.shown-1]))
		}
		content.WriteString("\n\n")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("card %d of %d", m.shown, len(m.cards))))

	case drillEntering:
		content.WriteString(HandInfoStyle.Render("What is the running count?"))
		content.WriteString("\n\n")
		content.WriteString(m.countInput.View())

	case drillResult:
		actual := m.system.RunningCount()
		if m.lastCorrect {
			content.WriteString(SuccessStyle.Render(fmt.Sprintf("correct: %s", formatCount(actual))))
		} else {
			content.WriteString(ErrorStyle.Render(fmt.Sprintf("you said %s, actual %s",
				formatCount(m.lastAnswer), formatCount(actual))))
		}
		content.WriteString("\n\n")
		content.WriteString(InfoStyle.Render("Enter for another drill, q to quit"))
	}

	content.WriteString("\n\n")
	pct := 0.0
	if m.drills > 0 {
		pct = float64(m.correct) / float64(m.drills) * 100
	}
	content.WriteString(InfoStyle.Render(fmt.Sprintf("accuracy: %d/%d (%.0f%%)", m.correct, m.drills, pct)))
	content.WriteString("\n")

	return content.String()
}

// Accuracy returns correct answers over total drills
func (m *DrillModel) Accuracy() (correct, total int) {
	return m.correct, m.drills
}

// formatDrillCard renders a card large-ish with suit colouring
func formatDrillCard(card blackjack.Card) string {
	s := fmt.Sprintf(" %s ", card)
	if card.IsRed() {
		return RedCardStyle.Render(s)
	}
	return BlackCardStyle.Render(s)
}

// formatCount prints a running count without a trailing .0 for
// integer-valued systems
func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%+d", int(v))
	}
	return fmt.Sprintf("%+.1f", v)
}
