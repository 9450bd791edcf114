package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	pollInterval      = 2 * time.Second
	heartbeatInterval = 5 * time.Second
	historyLimit      = 200
)

type appState int

const (
	stateJoining appState = iota
	stateChat
)

type joinedMsg struct{}

type joinErrMsg struct{ err error }

type messagesMsg struct{ messages []messageResponse }

type participantsMsg struct{ participants []participantResponse }

type pollTickMsg struct{}

type heartbeatTickMsg struct{}

type requestErrMsg struct{ err error }

type rootModel struct {
	api   *APIClient
	state appState

	viewport viewport.Model
	input    textinput.Model
	ready    bool

	messages     []messageResponse
	participants []participantResponse
	lastErr      string
	width        int
	height       int
}

func newRootModel(api *APIClient) rootModel {
	input := textinput.New()
	input.Placeholder = "message (or /w <name> <text>, /quit)"
	input.CharLimit = 500
	input.Focus()

	return rootModel{
		api:   api,
		state: stateJoining,
		input: input,
	}
}

func (m rootModel) Init() tea.Cmd {
	return tea.Batch(m.doJoin(), textinput.Blink)
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 5
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.viewport.SetContent(m.renderMessages())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q", "esc":
			return m, m.doQuit()
		case "enter":
			if m.state == stateChat {
				return m.handleSubmit()
			}
			return m, nil
		}

	case joinedMsg:
		m.state = stateChat
		return m, tea.Batch(m.doPoll(), m.schedulePoll(), m.scheduleHeartbeat())

	case joinErrMsg:
		m.lastErr = msg.err.Error()
		return m, tea.Quit

	case pollTickMsg:
		return m, tea.Batch(m.doPoll(), m.schedulePoll())

	case heartbeatTickMsg:
		return m, tea.Batch(m.doHeartbeat(), m.scheduleHeartbeat())

	case messagesMsg:
		m.messages = msg.messages
		m.lastErr = ""
		wasAtBottom := m.viewport.AtBottom()
		m.viewport.SetContent(m.renderMessages())
		if wasAtBottom {
			m.viewport.GotoBottom()
		}
		return m, m.fetchParticipants()

	case participantsMsg:
		m.participants = msg.participants
		return m, nil

	case requestErrMsg:
		m.lastErr = msg.err.Error()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m rootModel) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	if text == "/quit" {
		return m, m.doQuit()
	}

	to := "Todos"
	kind := "message"
	if rest, ok := strings.CutPrefix(text, "/w "); ok {
		parts := strings.SplitN(strings.TrimSpace(rest), " ", 2)
		if len(parts) < 2 {
			m.lastErr = "usage: /w <name> <text>"
			return m, nil
		}
		to, text, kind = parts[0], parts[1], "private_message"
	}

	return m, m.doSend(to, text, kind)
}

func (m rootModel) View() string {
	if m.state == stateJoining {
		return titleStyle.Render("batepapo") + "\n\njoining the room..."
	}
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("batepapo"))
	b.WriteString("  ")
	b.WriteString(participantListStyle.Render(m.renderParticipants()))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.lastErr != "" {
		b.WriteString(errorStyle.Render(m.lastErr))
	} else {
		b.WriteString(statusBarStyle.Render("enter to send, /w for private, esc to leave"))
	}
	return b.String()
}

func (m rootModel) renderParticipants() string {
	names := make([]string, 0, len(m.participants))
	for _, p := range m.participants {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("online (%d): %s", len(names), strings.Join(names, ", "))
}

func (m rootModel) renderMessages() string {
	var b strings.Builder
	for _, msg := range m.messages {
		ts := msg.SentAt
		if t, err := time.Parse(time.RFC3339Nano, msg.SentAt); err == nil {
			ts = t.Local().Format("15:04:05")
		}
		switch msg.Type {
		case "status":
			b.WriteString(noticeStyle.Render(fmt.Sprintf("(%s) %s %s", ts, msg.From, msg.Text)))
		case "private_message":
			b.WriteString(privateStyle.Render(fmt.Sprintf("(%s) %s -> %s: %s", ts, msg.From, msg.To, msg.Text)))
		default:
			b.WriteString(fmt.Sprintf("(%s) %s: %s", ts, senderStyle.Render(msg.From), msg.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m rootModel) doJoin() tea.Cmd {
	return func() tea.Msg {
		if err := m.api.Join(); err != nil {
			return joinErrMsg{err: err}
		}
		return joinedMsg{}
	}
}

func (m rootModel) doQuit() tea.Cmd {
	return func() tea.Msg {
		// Best effort; the sweeper cleans up if this fails.
		_ = m.api.Leave()
		return tea.Quit()
	}
}

func (m rootModel) doPoll() tea.Cmd {
	return func() tea.Msg {
		msgs, err := m.api.ReadMessages(historyLimit)
		if err != nil {
			return requestErrMsg{err: err}
		}
		return messagesMsg{messages: msgs}
	}
}

func (m rootModel) fetchParticipants() tea.Cmd {
	return func() tea.Msg {
		people, err := m.api.Participants()
		if err != nil {
			return requestErrMsg{err: err}
		}
		return participantsMsg{participants: people}
	}
}

func (m rootModel) doSend(to, text, kind string) tea.Cmd {
	return func() tea.Msg {
		if err := m.api.Send(to, text, kind); err != nil {
			return requestErrMsg{err: err}
		}
		msgs, err := m.api.ReadMessages(historyLimit)
		if err != nil {
			return requestErrMsg{err: err}
		}
		return messagesMsg{messages: msgs}
	}
}

func (m rootModel) doHeartbeat() tea.Cmd {
	return func() tea.Msg {
		if err := m.api.Heartbeat(); err != nil {
			return requestErrMsg{err: err}
		}
		return nil
	}
}

func (m rootModel) schedulePoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m rootModel) scheduleHeartbeat() tea.Cmd {
	return tea.Tick(heartbeatInterval, func(time.Time) tea.Msg {
		return heartbeatTickMsg{}
	})
}
