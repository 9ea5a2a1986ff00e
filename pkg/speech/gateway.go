// Package speech provides the transcription/synthesis gateway: a
// capability-negotiated facade over multiple recognition backends with a
// single active listening session at a time.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ErrorKind classifies recognition and synthesis failures.
type ErrorKind string

const (
	ErrNotSupported     ErrorKind = "not_supported"
	ErrPermissionDenied ErrorKind = "permission_denied"
	ErrNoSpeech         ErrorKind = "no_speech"
	ErrAudioUnavailable ErrorKind = "audio_unavailable"
	ErrNetwork          ErrorKind = "network"
	ErrUnknown          ErrorKind = "unknown"
)

// RecognitionError is a classified speech failure.
type RecognitionError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// EventType tags a recognition event.
type EventType int

const (
	// EventStarted signals that the backend is listening.
	EventStarted EventType = iota
	// EventInterim carries a partial transcription; zero or more per session.
	EventInterim
	// EventFinal carries the final transcription and terminates the session.
	// Silence is benign: a session may finalize with empty text.
	EventFinal
	// EventError terminates the session with a classified error.
	EventError
)

// Event is one entry in the ordered event stream of a listening session:
// Started, Interim*, then exactly one Final or Error.
type Event struct {
	Type EventType
	Text string
	Err  *RecognitionError
}

// Backend selects a recognition transport.
type Backend string

const (
	// BackendNative is the platform speech helper process (offline).
	BackendNative Backend = "native"
	// BackendWhisper is cloud batch transcription (recorded upload).
	BackendWhisper Backend = "whisper"
)

// Recognizer is one recognition transport. Start begins a session that emits
// events into the channel and must eventually emit a Final or Error event.
// Stop requests graceful finalization; it must be safe to call at any time.
type Recognizer interface {
	Start(ctx context.Context, language string, events chan<- Event) error
	Stop()
}

// Gateway owns the single listening slot and the synthesizer. The microphone
// is one physical resource: acquiring a new session first releases the prior
// one, stop-hook before start-hook.
type Gateway struct {
	mu       sync.Mutex
	active   *session
	backends map[Backend]Recognizer
	synth    *Synthesizer
}

type session struct {
	rec    Recognizer
	out    chan Event
	done   chan struct{}
	detach chan struct{}
}

// NewGateway creates a gateway over the given backends.
func NewGateway(backends map[Backend]Recognizer, synth *Synthesizer) *Gateway {
	return &Gateway{backends: backends, synth: synth}
}

// StartListening begins a recognition session on the chosen backend and
// returns its event stream. Any active session is stopped and fully drained
// before the new backend starts.
func (g *Gateway) StartListening(ctx context.Context, language string, backend Backend) (<-chan Event, error) {
	rec, ok := g.backends[backend]
	if !ok {
		return nil, &RecognitionError{Kind: ErrNotSupported, Message: fmt.Sprintf("speech backend %q is not available", backend)}
	}

	g.mu.Lock()
	prev := g.active
	g.active = nil
	g.mu.Unlock()

	if prev != nil {
		close(prev.detach)
		prev.rec.Stop()
		<-prev.done
	}

	raw := make(chan Event, 16)
	s := &session{
		rec:    rec,
		out:    make(chan Event, 16),
		done:   make(chan struct{}),
		detach: make(chan struct{}),
	}

	if err := rec.Start(ctx, language, raw); err != nil {
		close(s.done)
		if recErr, ok := err.(*RecognitionError); ok {
			return nil, recErr
		}
		return nil, &RecognitionError{Kind: ErrUnknown, Message: err.Error()}
	}

	g.mu.Lock()
	g.active = s
	g.mu.Unlock()

	go g.pump(s, raw)
	return s.out, nil
}

// pump forwards backend events until the session terminates, then releases
// the slot. A displaced session keeps draining so the backend can finish, but
// pump must never block on a stream nobody reads anymore.
func (g *Gateway) pump(s *session, raw <-chan Event) {
	for ev := range raw {
		select {
		case s.out <- ev:
		default:
			select {
			case s.out <- ev:
			case <-s.detach:
			}
		}
		if ev.Type == EventFinal || ev.Type == EventError {
			break
		}
	}

	g.mu.Lock()
	if g.active == s {
		g.active = nil
	}
	g.mu.Unlock()

	close(s.out)
	close(s.done)
}

// StopListening requests graceful finalization of the current session. It is
// idempotent and a no-op when nothing is listening.
func (g *Gateway) StopListening() {
	g.mu.Lock()
	s := g.active
	g.mu.Unlock()

	if s != nil {
		s.rec.Stop()
	}
}

// Listening reports whether a session is currently active.
func (g *Gateway) Listening() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active != nil
}

// Speak synthesizes text aloud. At most one utterance is active; a new call
// cancels any in-flight one.
func (g *Gateway) Speak(ctx context.Context, text string, rate, pitch float64) error {
	if g.synth == nil {
		return &RecognitionError{Kind: ErrNotSupported, Message: "speech synthesis is not available"}
	}
	return g.synth.Speak(ctx, text, rate, pitch)
}

// StopSpeaking cancels any in-flight utterance.
func (g *Gateway) StopSpeaking() {
	if g.synth != nil {
		g.synth.Stop()
	}
}

// emitError is a helper for backends: it logs and pushes a terminal error
// event, except for no-speech which finalizes with empty text.
func emitError(events chan<- Event, kind ErrorKind, message string) {
	if kind == ErrNoSpeech {
		// Silence is an expected terminal state, not a malfunction.
		events <- Event{Type: EventFinal, Text: ""}
		return
	}
	slog.Debug("speech_session_error", "kind", kind, "message", message)
	events <- Event{Type: EventError, Err: &RecognitionError{Kind: kind, Message: message}}
}
