// Package ui is the terminal chat shell: a transcript viewport over a text
// input, with voice capture and spoken replies layered on top.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"clippy/pkg/ai"
	"clippy/pkg/buffer"
	"clippy/pkg/commands"
	"clippy/pkg/config"
	"clippy/pkg/speech"
	"clippy/pkg/store"
)

const inputHeight = 3

// Deps are the collaborators the shell drives. LocalStatus may be nil when no
// local provider probe is available.
type Deps struct {
	Router      *ai.Router
	Resolver    *commands.Resolver
	History     *store.History
	Speech      *speech.Gateway
	LocalStatus func(ctx context.Context) (bool, []string)
}

// entry is one rendered transcript line group.
type entry struct {
	role    string
	content string
}

// Model is the Bubble Tea application state.
type Model struct {
	cfg  config.Config
	deps Deps

	input      textarea.Model
	transcript viewport.Model
	entries    *buffer.Ring[entry]

	width  int
	height int
	ready  bool

	waiting   bool
	listening bool
	interim   string
	status    string
}

// responseMsg carries a provider outcome back into the update loop.
type responseMsg struct {
	outcome ai.Outcome
}

// speechEventMsg carries one recognition event.
type speechEventMsg struct {
	event  speech.Event
	stream <-chan speech.Event
	closed bool
}

// localStatusMsg reports whether the local provider is reachable.
type localStatusMsg struct {
	running bool
	models  []string
}

// NewModel creates the chat shell over its collaborators.
func NewModel(cfg config.Config, deps Deps) Model {
	input := textarea.New()
	input.Placeholder = "Ask me anything..."
	input.SetHeight(inputHeight)
	input.Focus()

	m := Model{
		cfg:        cfg,
		deps:       deps,
		input:      input,
		transcript: viewport.New(),
		entries:    buffer.New[entry](0),
	}

	if deps.History != nil {
		for _, msg := range deps.History.Messages() {
			m.entries.Append(entry{role: msg.Role, content: msg.Content})
		}
	}

	return m
}

// Init starts the local provider probe (Bubble Tea lifecycle method).
func (m Model) Init() tea.Cmd {
	return m.probeLocal()
}

func (m Model) probeLocal() tea.Cmd {
	probe := m.deps.LocalStatus
	if probe == nil {
		return nil
	}
	return func() tea.Msg {
		running, models := probe(context.Background())
		return localStatusMsg{running: running, models: models}
	}
}

// Update handles messages and updates model state (Bubble Tea lifecycle method).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.SetWidth(msg.Width - 2)
		m.transcript.SetWidth(msg.Width)
		m.transcript.SetHeight(m.transcriptHeight())
		m.refreshTranscript()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case responseMsg:
		return m.handleResponse(msg)

	case speechEventMsg:
		return m.handleSpeechEvent(msg)

	case localStatusMsg:
		if msg.running {
			m.status = "Ollama running"
			if len(msg.models) > 0 {
				m.status = "Ollama running (" + strings.Join(msg.models, ", ") + ")"
			}
		} else if m.cfg.Provider == ai.ProviderLocal {
			m.status = "Ollama is not running"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stopVoice()
		return m, tea.Quit

	case "ctrl+l":
		m.entries.Clear()
		if m.deps.History != nil {
			if err := m.deps.History.Clear(); err != nil {
				slog.Warn("history_clear_failed", "error", err)
			}
		}
		m.refreshTranscript()
		return m, nil

	case "ctrl+t":
		return m.toggleVoice()

	case "esc":
		if m.deps.Speech != nil {
			m.deps.Speech.StopSpeaking()
		}
		return m, nil

	case "enter":
		return m.submit(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one input line through command resolution and, when no command
// claims it, routes it to the configured provider.
func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(raw)
	if text == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()

	m.appendEntry(ai.RoleUser, text)

	if kind := commands.Classify(text); kind != commands.KindNone && m.deps.Resolver != nil {
		res := m.deps.Resolver.Execute(text)
		switch res.Type {
		case commands.TypeClipboard:
			if errors.Is(res.Err, commands.ErrEmptyClipboard) {
				m.appendEntry(ai.RoleAssistant, "Clipboard is empty")
				return m, nil
			}
			if res.Err != nil {
				slog.Warn("clipboard_read_failed", "error", res.Err)
				m.appendEntry(ai.RoleAssistant, "Could not read the clipboard")
				return m, nil
			}
			// Clipboard content becomes the prompt for the model.
			return m.route(res.Content)
		case commands.TypeError:
			slog.Warn("command_failed", "error", res.Err)
			notice := res.Content
			if notice == "" {
				notice = "Sorry, that command did not work"
			}
			m.appendEntry(ai.RoleAssistant, notice)
			return m, nil
		default:
			m.appendEntry(ai.RoleAssistant, res.Content)
			return m, nil
		}
	}

	return m.route(text)
}

// route sends the prompt to the provider asynchronously.
func (m Model) route(prompt string) (tea.Model, tea.Cmd) {
	if m.deps.Router == nil {
		return m, nil
	}

	messages := m.historyMessages(prompt)
	routeCfg := ai.RouteConfig{
		Provider:    m.cfg.Provider,
		OllamaModel: m.cfg.Ollama.Model,
		GeminiModel: m.cfg.Gemini.Model,
		Credential:  m.cfg.Gemini.APIKey,
		Style:       m.cfg.Style,
	}

	m.waiting = true
	m.status = "Thinking..."
	return m, func() tea.Msg {
		return responseMsg{outcome: m.deps.Router.Route(context.Background(), messages, routeCfg)}
	}
}

// historyMessages returns the persisted transcript with the new prompt last.
// The user line was already appended for display; history gets it here.
func (m Model) historyMessages(prompt string) []ai.Message {
	if m.deps.History == nil {
		return []ai.Message{{Role: ai.RoleUser, Content: prompt}}
	}
	if _, err := m.deps.History.Append(ai.RoleUser, prompt); err != nil {
		slog.Warn("history_append_failed", "error", err)
	}
	return m.deps.History.Messages()
}

func (m Model) handleResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	m.waiting = false
	m.status = ""

	if !msg.outcome.OK() {
		m.appendEntry(ai.RoleAssistant, msg.outcome.Failure.UserMessage())
		return m, nil
	}

	m.appendEntry(ai.RoleAssistant, msg.outcome.Text)
	if m.deps.History != nil {
		if _, err := m.deps.History.Append(ai.RoleAssistant, msg.outcome.Text); err != nil {
			slog.Warn("history_append_failed", "error", err)
		}
	}

	if m.cfg.Speech.SoundEnabled && m.deps.Speech != nil {
		text := msg.outcome.Text
		rate, pitch := m.cfg.Speech.Rate, m.cfg.Speech.Pitch
		gw := m.deps.Speech
		return m, func() tea.Msg {
			if err := gw.Speak(context.Background(), text, rate, pitch); err != nil {
				slog.Debug("speak_failed", "error", err)
			}
			return nil
		}
	}
	return m, nil
}

func (m Model) toggleVoice() (tea.Model, tea.Cmd) {
	if m.deps.Speech == nil {
		return m, nil
	}

	if m.listening {
		m.deps.Speech.StopListening()
		return m, nil
	}

	backend := speech.Backend(m.cfg.Speech.STTProvider)
	stream, err := m.deps.Speech.StartListening(context.Background(), m.cfg.Speech.Language, backend)
	if err != nil {
		m.status = "Voice input unavailable: " + err.Error()
		return m, nil
	}

	m.listening = true
	m.interim = ""
	m.status = "Listening..."
	return m, awaitSpeech(stream)
}

// awaitSpeech blocks on the next recognition event.
func awaitSpeech(stream <-chan speech.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-stream
		return speechEventMsg{event: ev, stream: stream, closed: !ok}
	}
}

func (m Model) handleSpeechEvent(msg speechEventMsg) (tea.Model, tea.Cmd) {
	if msg.closed {
		m.listening = false
		m.interim = ""
		if m.status == "Listening..." {
			m.status = ""
		}
		return m, nil
	}

	switch msg.event.Type {
	case speech.EventStarted:
		return m, awaitSpeech(msg.stream)

	case speech.EventInterim:
		m.interim = msg.event.Text
		return m, awaitSpeech(msg.stream)

	case speech.EventFinal:
		m.listening = false
		m.interim = ""
		m.status = ""
		text := strings.TrimSpace(msg.event.Text)
		if text == "" {
			return m, nil
		}
		if m.cfg.Speech.AutoSubmitVoice {
			return m.submit(text)
		}
		m.input.InsertString(text)
		return m, nil

	case speech.EventError:
		m.listening = false
		m.interim = ""
		m.status = "Voice input failed: " + msg.event.Err.Error()
		return m, nil
	}

	return m, awaitSpeech(msg.stream)
}

func (m *Model) stopVoice() {
	if m.deps.Speech != nil {
		m.deps.Speech.StopListening()
		m.deps.Speech.StopSpeaking()
	}
}

func (m *Model) appendEntry(role, content string) {
	m.entries.Append(entry{role: role, content: content})
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.transcript.SetContent(renderTranscript(m.entries.Items(), m.width))
	m.transcript.GotoBottom()
}

func (m Model) transcriptHeight() int {
	// Transcript fills everything above the input box and status bar.
	h := m.height - inputHeight - 2
	if h < 1 {
		return 1
	}
	return h
}
