package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Reply is what one chat turn produced
type Reply struct {
	Answer     string
	Incomplete bool
	Lookups    int
}

// SendFunc runs one planning round for the user's text
type SendFunc func(ctx context.Context, text string) (Reply, error)

type replyMsg struct {
	reply Reply
	err   error
}

type speaker int

const (
	speakerUser speaker = iota
	speakerAgent
	speakerError
)

type chatLine struct {
	who        speaker
	text       string
	incomplete bool
	lookups    int
}

// chromeHeight is the title, status and input rows around the viewport
const chromeHeight = 5

// ChatModel is an interactive session: each submitted line becomes one
// planning round and the answer is appended below it.
type ChatModel struct {
	ctx        context.Context
	send       SendFunc
	title      string
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript []chatLine
	waiting    bool
	ready      bool
	quitting   bool
	width      int
}

// NewChatModel creates a chat model; history seeds the transcript with
// earlier answers of a resumed session.
func NewChatModel(ctx context.Context, title string, send SendFunc, history ...string) ChatModel {
	input := textinput.New()
	input.Placeholder = "Ask for changes, e.g. \"swap day 2 for a museum day\""
	input.CharLimit = 2000
	input.Prompt = "› "
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(ColorSpinner)

	m := ChatModel{
		ctx:      ctx,
		send:     send,
		title:    title,
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
	}
	for _, h := range history {
		m.transcript = append(m.transcript, chatLine{who: speakerAgent, text: h})
	}
	m.refresh()
	return m
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.transcript = append(m.transcript, chatLine{who: speakerError, text: msg.err.Error()})
		} else {
			m.transcript = append(m.transcript, chatLine{
				who:        speakerAgent,
				text:       msg.reply.Answer,
				incomplete: msg.reply.Incomplete,
				lookups:    msg.reply.Lookups,
			})
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit sends the input line unless a round is already running
func (m ChatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if m.waiting || text == "" {
		return m, nil
	}
	if text == "/quit" || text == "/exit" {
		m.quitting = true
		return m, tea.Quit
	}

	m.input.Reset()
	m.waiting = true
	m.transcript = append(m.transcript, chatLine{who: speakerUser, text: text})
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.sendCmd(text))
}

func (m ChatModel) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.send(m.ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(m.width-2, 20))

	var b strings.Builder
	for _, line := range m.transcript {
		switch line.who {
		case speakerUser:
			b.WriteString(StyleHighlight.Render("You") + "\n")
			b.WriteString(wrap.Render(line.text))
		case speakerAgent:
			header := StyleSuccess.Render("Planner")
			if line.lookups > 0 {
				header += StyleMuted.Render(fmt.Sprintf("  %d lookups", line.lookups))
			}
			b.WriteString(header + "\n")
			b.WriteString(wrap.Render(line.text))
			if line.incomplete {
				b.WriteString("\n" + StyleWarning.Render(IconWarning+" stopped at the round limit"))
			}
		case speakerError:
			b.WriteString(StyleError.Render(IconError + " " + line.text))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}

	status := StyleMuted.Render("Enter: send  |  /quit or Esc: leave")
	if m.waiting {
		status = m.spinner.View() + " " + StyleInfo.Render("planning...")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		StyleTitle.Render(" "+m.title+" "),
		m.viewport.View(),
		status,
		m.input.View(),
	)
}

// Transcript returns the rendered conversation text
func (m ChatModel) Transcript() string {
	return m.renderTranscript()
}

// RunChat runs the chat until the user leaves
func RunChat(ctx context.Context, title string, send SendFunc, history ...string) error {
	p := tea.NewProgram(NewChatModel(ctx, title, send, history...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
