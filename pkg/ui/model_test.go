package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"clippy/pkg/ai"
	"clippy/pkg/commands"
	"clippy/pkg/config"
	"clippy/pkg/speech"
)

// stubAdapter returns a canned outcome and records what it saw.
type stubAdapter struct {
	calls   int
	gotReq  ai.Request
	outcome ai.Outcome
}

func (s *stubAdapter) Send(_ context.Context, req ai.Request, _, _ string) ai.Outcome {
	s.calls++
	s.gotReq = req
	return s.outcome
}

type stubUIShell struct {
	clipboardText string
	clipboardErr  error
	openedURLs    []string
	written       []string
}

func (s *stubUIShell) OpenExternal(url string) error {
	s.openedURLs = append(s.openedURLs, url)
	return nil
}

func (s *stubUIShell) ReadClipboard() (string, error) { return s.clipboardText, s.clipboardErr }

func (s *stubUIShell) WriteClipboard(text string) error {
	s.written = append(s.written, text)
	return nil
}

// finalRecognizer emits a single final transcription as soon as it starts.
type finalRecognizer struct {
	text string
}

func (r *finalRecognizer) Start(_ context.Context, _ string, events chan<- speech.Event) error {
	events <- speech.Event{Type: speech.EventStarted}
	events <- speech.Event{Type: speech.EventFinal, Text: r.text}
	return nil
}

func (r *finalRecognizer) Stop() {}

func newTestModel(adapter ai.Adapter, shell commands.Shell, gw *speech.Gateway) Model {
	cfg := config.Default()
	cfg.Speech.SoundEnabled = false

	deps := Deps{
		Router: ai.NewRouter(adapter, adapter),
		Speech: gw,
	}
	if shell != nil {
		deps.Resolver = commands.NewResolver(shell)
	}

	m := NewModel(cfg, deps)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model)
}

// step feeds a message and executes any resulting command synchronously.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		var cmd tea.Cmd
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			return m
		}
		msg = cmd()
	}
	return m
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(newTextKeyPressMsg(string(r)))
		m = next.(Model)
	}
	return m
}

func transcriptText(m Model) string {
	var sb strings.Builder
	for _, e := range m.entries.Items() {
		sb.WriteString(e.role + ": " + e.content + "\n")
	}
	return sb.String()
}

func TestSubmit_RoutesToProvider(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("Hi! It looks like you need help.")}
	m := newTestModel(adapter, nil, nil)

	m = typeText(m, "hello there")
	m = step(t, m, testKeyEnter)

	if adapter.calls != 1 {
		t.Fatalf("expected one provider call, got %d", adapter.calls)
	}
	got := transcriptText(m)
	if !strings.Contains(got, "user: hello there") {
		t.Errorf("user turn missing from transcript:\n%s", got)
	}
	if !strings.Contains(got, "assistant: Hi! It looks like you need help.") {
		t.Errorf("assistant reply missing from transcript:\n%s", got)
	}
	if m.waiting {
		t.Error("waiting flag should clear after the response")
	}
}

func TestSubmit_EmptyInputIgnored(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	m := newTestModel(adapter, nil, nil)

	m = typeText(m, "   ")
	m = step(t, m, testKeyEnter)

	if adapter.calls != 0 {
		t.Error("whitespace input must not reach the provider")
	}
	if m.entries.Len() != 0 {
		t.Errorf("expected empty transcript, got %+v", m.entries.Items())
	}
}

func TestSubmit_CommandBypassesProvider(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	m := newTestModel(adapter, &stubUIShell{}, nil)

	m = typeText(m, "2 + 2 * 5")
	m = step(t, m, testKeyEnter)

	if adapter.calls != 0 {
		t.Error("math input must resolve locally, not via the provider")
	}
	if !strings.Contains(transcriptText(m), "assistant: 12") {
		t.Errorf("expected evaluated result in transcript:\n%s", transcriptText(m))
	}
}

func TestSubmit_OpenCommandShowsNotice(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	shell := &stubUIShell{}
	m := newTestModel(adapter, shell, nil)

	m = typeText(m, "open example.com")
	m = step(t, m, testKeyEnter)

	if adapter.calls != 0 {
		t.Error("open command must not reach the provider")
	}
	if len(shell.openedURLs) != 1 || shell.openedURLs[0] != "https://example.com" {
		t.Errorf("unexpected opened urls %v", shell.openedURLs)
	}
	if !strings.Contains(transcriptText(m), "Opening example.com...") {
		t.Errorf("expected notice in transcript:\n%s", transcriptText(m))
	}
}

func TestSubmit_ClipboardContentBecomesPrompt(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("summary of the note")}
	shell := &stubUIShell{clipboardText: "a long note"}
	m := newTestModel(adapter, shell, nil)

	m = typeText(m, "summarize clipboard")
	m = step(t, m, testKeyEnter)

	if adapter.calls != 1 {
		t.Fatalf("expected clipboard content routed to provider, got %d calls", adapter.calls)
	}
	turns := adapter.gotReq.Turns
	if len(turns) == 0 || turns[len(turns)-1].Content != "a long note" {
		t.Errorf("expected clipboard content as final turn, got %+v", turns)
	}
}

func TestSubmit_EmptyClipboardShowsNotice(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	m := newTestModel(adapter, &stubUIShell{clipboardText: ""}, nil)

	m = typeText(m, "paste")
	m = step(t, m, testKeyEnter)

	if adapter.calls != 0 {
		t.Error("empty clipboard must not reach the provider")
	}
	if !strings.Contains(transcriptText(m), "Clipboard is empty") {
		t.Errorf("expected empty-clipboard notice:\n%s", transcriptText(m))
	}
}

func TestSubmit_ClipboardFailureShowsFriendlyNotice(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	shell := &stubUIShell{clipboardErr: errors.New(`exec: "xclip": executable file not found in $PATH`)}
	m := newTestModel(adapter, shell, nil)

	m = typeText(m, "paste")
	m = step(t, m, testKeyEnter)

	got := transcriptText(m)
	if !strings.Contains(got, "Could not read the clipboard") {
		t.Errorf("expected friendly clipboard notice:\n%s", got)
	}
	if strings.Contains(got, "xclip") {
		t.Errorf("raw clipboard error must not leak into the transcript:\n%s", got)
	}
}

func TestSubmit_MathErrorShowsFriendlyNotice(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	m := newTestModel(adapter, &stubUIShell{}, nil)

	m = typeText(m, "10 / 0")
	m = step(t, m, testKeyEnter)

	got := transcriptText(m)
	if !strings.Contains(got, "Invalid math expression") {
		t.Errorf("expected friendly math notice:\n%s", got)
	}
	if strings.Contains(got, "division by zero") {
		t.Errorf("raw evaluator error must not leak into the transcript:\n%s", got)
	}
}

func TestResponse_FailureRendersUserMessage(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Fail(ai.FailServiceUnavailable, "dial tcp: connection refused")}
	m := newTestModel(adapter, nil, nil)

	m = typeText(m, "hello")
	m = step(t, m, testKeyEnter)

	got := transcriptText(m)
	if !strings.Contains(got, "Ollama is not running. Start it with: ollama serve") {
		t.Errorf("expected actionable failure text, got:\n%s", got)
	}
	if strings.Contains(got, "dial tcp") {
		t.Errorf("raw transport detail must not leak into the transcript:\n%s", got)
	}
}

func TestVoice_FinalTranscriptionAutoSubmits(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("you said hello")}
	gw := speech.NewGateway(map[speech.Backend]speech.Recognizer{
		speech.BackendNative: &finalRecognizer{text: "hello from voice"},
	}, nil)
	m := newTestModel(adapter, nil, gw)

	m = step(t, m, testKeyCtrlT)

	if adapter.calls != 1 {
		t.Fatalf("expected voice final to submit, got %d provider calls", adapter.calls)
	}
	if !strings.Contains(transcriptText(m), "user: hello from voice") {
		t.Errorf("expected voice text as user turn:\n%s", transcriptText(m))
	}
	if m.listening {
		t.Error("listening flag should clear after the final event")
	}
}

func TestVoice_UnavailableBackendShowsStatus(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("unused")}
	gw := speech.NewGateway(map[speech.Backend]speech.Recognizer{}, nil)
	m := newTestModel(adapter, nil, gw)

	m = step(t, m, testKeyCtrlT)

	if !strings.Contains(m.status, "Voice input unavailable") {
		t.Errorf("expected unavailable status, got %q", m.status)
	}
}

func TestClear_EmptiesTranscript(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("hi")}
	m := newTestModel(adapter, nil, nil)

	m = typeText(m, "hello")
	m = step(t, m, testKeyEnter)
	if m.entries.Len() == 0 {
		t.Fatal("expected transcript entries before clear")
	}

	m = step(t, m, testKeyCtrlL)

	if m.entries.Len() != 0 {
		t.Errorf("expected empty transcript after clear, got %+v", m.entries.Items())
	}
}

func TestView_RendersStatusBar(t *testing.T) {
	adapter := &stubAdapter{outcome: ai.Success("hi")}
	m := newTestModel(adapter, nil, nil)

	frame := m.render()

	if !strings.Contains(frame, "local/mistral:latest") {
		t.Errorf("expected provider and model in status bar, got:\n%s", frame)
	}
}
