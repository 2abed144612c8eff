package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"contractqa/internal/domain"
	"contractqa/internal/lexical"
	"contractqa/internal/qa"
	"contractqa/internal/service"
)

// ContractPort is the TUI-facing subset of the contract service.
type ContractPort interface {
	Ingest(ctx context.Context, path string) (service.IngestResult, error)
	Ask(ctx context.Context, question string) (qa.Answer, error)
	RecordFeedback(question, answer string, rating domain.Rating, comment string, sources []domain.Source) (domain.FeedbackEntry, error)
	Stats() domain.Stats
}

type mode int

const (
	modeAsk mode = iota
	modeComment
)

type (
	ingestedMsg struct {
		res service.IngestResult
		err error
	}
	answeredMsg struct {
		question string
		answer   qa.Answer
		err      error
	}
	feedbackMsg struct {
		rating domain.Rating
		err    error
	}
)

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	service  ContractPort
	input    textinput.Model
	viewport viewport.Model
	mode     mode

	contract string
	ingest   *service.IngestResult
	stats    domain.Stats

	question  string
	answer    *qa.Answer
	rated     bool
	quickNext int

	busy   bool
	status string
	ready  bool
	width  int
	height int
}

// New creates a TUI model. When pdfPath is non-empty it is ingested on start.
func New(ctx context.Context, svc ContractPort, pdfPath string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "e.g., What is the termination clause?"
	ti.Focus()
	ti.CharLimit = 0
	m := Model{
		ctx:      ctx,
		service:  svc,
		input:    ti,
		viewport: viewport.New(0, 0),
		contract: pdfPath,
		stats:    svc.Stats(),
		status:   "Type /load <file.pdf> to upload a contract. Tab cycles quick questions.",
	}
	if pdfPath != "" {
		m.busy = true
		m.status = "Extracting text, entities and embeddings..."
	}
	return m
}

// Init starts the cursor blink and the initial ingest, if any.
func (m Model) Init() tea.Cmd {
	if m.contract != "" {
		return tea.Batch(textinput.Blink, m.ingestCmd(m.contract))
	}
	return textinput.Blink
}

func (m Model) ingestCmd(path string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.service.Ingest(m.ctx, path)
		return ingestedMsg{res: res, err: err}
	}
}

func (m Model) askCmd(q string) tea.Cmd {
	return func() tea.Msg {
		ans, err := m.service.Ask(m.ctx, q)
		return answeredMsg{question: q, answer: ans, err: err}
	}
}

func (m Model) feedbackCmd(rating domain.Rating, comment string) tea.Cmd {
	q, ans := m.question, *m.answer
	return func() tea.Msg {
		_, err := m.service.RecordFeedback(q, ans.Text, rating, comment, ans.Sources)
		return feedbackMsg{rating: rating, err: err}
	}
}

// Update handles key, window and completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case ingestedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error processing PDF: " + msg.err.Error()
			return m, nil
		}
		m.ingest = &msg.res
		m.contract = msg.res.Path
		m.answer, m.question, m.rated = nil, "", false
		m.stats = m.service.Stats()
		m.status = fmt.Sprintf("✅ PDF processed successfully! (%d chunks indexed)", msg.res.Chunks)
		if msg.res.EntitiesErr != nil {
			m.status += "  ⚠️ Entity extraction skipped: " + msg.res.EntitiesErr.Error()
		}
		m.resize()
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case answeredMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.question, m.answer, m.rated = msg.question, &msg.answer, false
		m.status = "Answered. ctrl+u: 👍 helpful  ctrl+d: 👎 not helpful"
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil

	case feedbackMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "❌ Failed to save feedback: " + msg.err.Error()
			return m, nil
		}
		m.rated = true
		m.stats = m.service.Stats()
		m.status = fmt.Sprintf("✅ Thank you for your feedback! It has been saved for: %s", m.question)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.mode == modeComment {
			m.mode = modeAsk
			m.input.Reset()
			m.input.Placeholder = "e.g., What is the termination clause?"
			m.status = "Feedback cancelled."
			return m, nil
		}
		return m, tea.Quit
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if m.mode == modeComment {
			m.mode = modeAsk
			m.input.Reset()
			m.input.Placeholder = "e.g., What is the termination clause?"
			m.busy = true
			return m, m.feedbackCmd(domain.RatingDown, text)
		}
		if path, ok := strings.CutPrefix(text, "/load "); ok {
			m.input.Reset()
			m.busy = true
			m.status = "Extracting text, entities and embeddings..."
			return m, m.ingestCmd(strings.TrimSpace(path))
		}
		if text == "" {
			return m, nil
		}
		m.busy = true
		m.status = "Searching contract and generating answer..."
		return m, m.askCmd(text)

	case "tab":
		if m.mode == modeAsk {
			m.input.SetValue(QuickQuestions[m.quickNext])
			m.input.CursorEnd()
			m.quickNext = (m.quickNext + 1) % len(QuickQuestions)
		}
		return m, nil

	case "ctrl+u":
		if m.answer == nil || m.rated {
			m.status = "❌ Ask a question first."
			return m, nil
		}
		m.busy = true
		return m, m.feedbackCmd(domain.RatingUp, "")

	case "ctrl+d":
		if m.answer == nil || m.rated {
			m.status = "❌ Ask a question first."
			return m, nil
		}
		m.mode = modeComment
		m.input.Reset()
		m.input.Placeholder = "e.g., The answer was incomplete, missing details about penalties."
		m.status = "📝 Reviewing feedback for: " + m.question + "  (enter to submit, esc to cancel)"
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	_, ah := answerBoxStyle.GetFrameSize()
	_, qh := queryBoxStyle.GetFrameSize()
	reserved := lipgloss.Height(m.renderHeader()) + 1 + qh + 1 + 1 // input, status, spacer
	m.viewport.Width = max(20, m.width-2)
	m.viewport.Height = max(3, m.height-reserved-ah)
}

// View renders header, answer pane, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return m.renderHeader() + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📄 Contract Q&A"))
	if m.contract != "" {
		b.WriteString("  " + dimStyle.Render(filepath.Base(m.contract)))
	}
	b.WriteString("  " + dimStyle.Render(fmt.Sprintf("📊 feedback %d  👍 %d  👎 %d", m.stats.Total, m.stats.Positive, m.stats.Negative)))
	if m.ingest != nil {
		if m.ingest.Overview != "" {
			b.WriteString("\n" + dimStyle.Width(max(20, m.width-2)).Render(m.ingest.Overview))
		}
		if m.ingest.Entities != nil {
			for _, row := range EntityRows(*m.ingest.Entities) {
				b.WriteString("\n" + labelStyle.Render(row.Label) + " " + row.Value)
			}
		}
	}
	return b.String()
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		if m.ingest == nil {
			return "Upload a contract to get started."
		}
		return "Ask a question about the contract."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("💡 Answer") + "\n")
	b.WriteString(m.answer.Text + "\n")
	if m.answer.FeedbackUsed {
		b.WriteString("\n" + noticeStyle.Render("💡 This answer was improved using feedback from previous interaction(s).") + "\n")
	}
	if len(m.answer.Sources) > 0 {
		b.WriteString("\n" + titleStyle.Render("📄 Source Documents") + "\n")
		for i, src := range m.answer.Sources {
			fmt.Fprintf(&b, "\n%s\n", labelStyle.Render(fmt.Sprintf("Source %d - Page %d", i+1, src.Page)))
			b.WriteString(highlightBestSentence(Preview(src.Content, SourcePreviewLength), m.question) + "\n")
		}
	}
	return b.String()
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// highlightBestSentence emphasises the sentence sharing the most words with
// the question.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	q := lexical.TokenSet(query)
	if len(q) == 0 || len(sentences) == 0 {
		return text
	}
	best, bestScore := 0, -1.0
	for i, s := range sentences {
		if score := lexical.Ochiai(q, s); score > bestScore {
			best, bestScore = i, score
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == best && bestScore > 0 {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}
