// Package tui implements the interactive terminal chat over the transcript
// corpus.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arturoeanton/go-transcript-rag-qdrant/internal/domain"
)

// askTimeout bounds one chat turn end to end, embedding included.
const askTimeout = 2 * time.Minute

const bannerWidth = 70

// Asker abstracts the chat backend the TUI talks to.
type Asker interface {
	Answer(ctx context.Context, query string, topK int, showSources bool) (domain.Answer, error)
}

// Info describes the backend shown in the chat banner.
type Info struct {
	Model      string
	Collection string
	StoreLabel string // "Qdrant" or "Postgres"
	StoreURL   string
}

const (
	roleYou       = "you"
	roleAssistant = "assistant"
	roleError     = "error"
)

// entry is one rendered line group in the conversation log.
type entry struct {
	role    string
	text    string
	sources []domain.SearchResult
}

// Model is the root bubbletea model for the chat TUI.
type Model struct {
	asker Asker
	info  Info

	entries  []entry
	input    string
	waiting  bool
	quitting bool

	width  int
	height int
}

// New creates a new Model with an empty conversation.
func New(asker Asker, info Info) Model {
	return Model{asker: asker, info: info}
}

// Init returns no initial command; the TUI waits for user input.
func (m Model) Init() tea.Cmd {
	return nil
}

// askCmd runs one chat turn against the backend.
func askCmd(asker Asker, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		answer, err := asker.Answer(ctx, query, 0, true)
		if err != nil {
			return AnswerErrorMsg{Err: err}
		}
		return AnswerMsg{Answer: answer}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case AnswerMsg:
		m.waiting = false
		m.entries = append(m.entries, entry{
			role:    roleAssistant,
			text:    msg.Answer.Response,
			sources: msg.Answer.Sources,
		})
		return m, nil

	case AnswerErrorMsg:
		m.waiting = false
		m.entries = append(m.entries, entry{role: roleError, text: msg.Err.Error()})
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		return m.submit()

	case "backspace":
		if m.input != "" {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil

	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		case tea.KeySpace:
			m.input += " "
		}
		return m, nil
	}
}

// submit handles enter: chat commands run immediately, anything else becomes
// a query. Submissions are ignored while an answer is pending.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	query := strings.TrimSpace(m.input)
	if query == "" {
		return m, nil
	}
	m.input = ""

	switch strings.ToLower(query) {
	case "quit", "exit", "q":
		m.quitting = true
		return m, tea.Quit
	case "clear":
		m.entries = nil
		return m, nil
	}

	m.entries = append(m.entries, entry{role: roleYou, text: query})
	m.waiting = true
	return m, askCmd(m.asker, query)
}

// View renders the banner, the conversation so far and the input line.
func (m Model) View() string {
	if m.quitting {
		return "\n[Goodbye] Thanks for using Amstat RAG Chat!\n"
	}

	var b strings.Builder
	b.WriteString(m.banner())

	for _, e := range m.entries {
		switch e.role {
		case roleYou:
			b.WriteString("\n" + YouStyle.Render("[You]") + " " + e.text + "\n")
		case roleAssistant:
			b.WriteString("\n" + AssistantStyle.Render("[Assistant]") + " " + e.text + "\n")
			b.WriteString(renderSources(e.sources))
		case roleError:
			b.WriteString("\n" + ErrorStyle.Render("[Error]") + " " + e.text + "\n")
		}
	}

	if m.waiting {
		b.WriteString("\n" + ThinkingStyle.Render("[Assistant] thinking...") + "\n")
	} else {
		b.WriteString("\n" + YouStyle.Render("[You]") + " " + m.input + "█\n")
	}
	return b.String()
}

func (m Model) banner() string {
	rule := strings.Repeat("=", bannerWidth)

	var b strings.Builder
	b.WriteString(RuleStyle.Render(rule) + "\n")
	b.WriteString(TitleStyle.Render("Amstat Transcript RAG Chat") + "\n")
	b.WriteString(RuleStyle.Render(rule) + "\n")
	fmt.Fprintf(&b, "Model: %s\n", m.info.Model)
	fmt.Fprintf(&b, "Collection: %s\n", m.info.Collection)
	fmt.Fprintf(&b, "%s: %s\n", m.info.StoreLabel, m.info.StoreURL)
	b.WriteString("\n" + DimStyle.Render("Type 'quit' or 'exit' to end the chat") + "\n")
	b.WriteString(DimStyle.Render("Type 'clear' to clear the screen") + "\n")
	b.WriteString(RuleStyle.Render(strings.Repeat("-", bannerWidth)) + "\n")
	return b.String()
}

func renderSources(sources []domain.SearchResult) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n[Sources] (%d):\n", len(sources))
	for i, s := range sources {
		fmt.Fprintf(&b, "  %d. [%s] - %s\n", i+1, orNA(s.Topic), orNA(s.Title))
		fmt.Fprintf(&b, "     Score: %.3f | Timestamp: %s - %s\n",
			s.Score, s.TimestampStart, s.TimestampEnd)
	}
	return SourceStyle.Render(b.String()) + "\n"
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
