package speech

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	whisperKeyEnv        = "OPENAI_API_KEY"
	whisperUploadTimeout = 60 * time.Second
)

// AudioSource captures microphone audio for batch transcription. Begin starts
// capturing, End stops and returns the recorded clip.
type AudioSource interface {
	Begin(ctx context.Context) error
	End() (io.Reader, error)
}

// whisperTranscriber is the slice of the OpenAI audio service the recognizer
// uses, small enough to stub in tests.
type whisperTranscriber interface {
	New(ctx context.Context, body openai.AudioTranscriptionNewParams, opts ...option.RequestOption) (*openai.AudioTranscriptionNewResponseUnion, error)
}

func newWhisperTranscriber(apiKey string) whisperTranscriber {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &client.Audio.Transcriptions
}

// WhisperRecognizer records locally and transcribes the whole clip in one
// cloud call on Stop. It emits no interim events; the session goes straight
// from Started to a single Final.
type WhisperRecognizer struct {
	source AudioSource
	apiKey string

	newTranscriber func(apiKey string) whisperTranscriber

	mu      sync.Mutex
	active  bool
	lang    string
	events  chan<- Event
	stopped chan struct{}
}

// NewWhisperRecognizer creates a cloud batch recognizer over the audio source.
// An empty apiKey falls back to the OPENAI_API_KEY environment variable at
// session start.
func NewWhisperRecognizer(source AudioSource, apiKey string) *WhisperRecognizer {
	return &WhisperRecognizer{
		source:         source,
		apiKey:         apiKey,
		newTranscriber: newWhisperTranscriber,
	}
}

// Start implements Recognizer. The credential check happens before any audio
// is captured so a missing key never records the user.
func (w *WhisperRecognizer) Start(ctx context.Context, language string, events chan<- Event) error {
	key := w.apiKey
	if key == "" {
		key = os.Getenv(whisperKeyEnv)
	}
	if key == "" {
		return &RecognitionError{Kind: ErrNotSupported, Message: "cloud transcription requires an OpenAI API key"}
	}

	if err := w.source.Begin(ctx); err != nil {
		return &RecognitionError{Kind: ErrAudioUnavailable, Message: err.Error()}
	}

	w.mu.Lock()
	w.active = true
	w.lang = language
	w.events = events
	w.stopped = make(chan struct{})
	w.mu.Unlock()

	events <- Event{Type: EventStarted}

	// End the capture if the context dies before Stop is called.
	go func(stopped chan struct{}) {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-stopped:
		}
	}(w.stopped)

	return nil
}

// Stop implements Recognizer: end the capture and transcribe the clip. The
// transcription result arrives on the session's event channel.
func (w *WhisperRecognizer) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.active = false
	lang := w.lang
	events := w.events
	close(w.stopped)
	w.mu.Unlock()

	clip, err := w.source.End()
	if err != nil {
		emitError(events, ErrAudioUnavailable, err.Error())
		return
	}

	go w.transcribe(clip, lang, events)
}

func (w *WhisperRecognizer) transcribe(clip io.Reader, language string, events chan<- Event) {
	key := w.apiKey
	if key == "" {
		key = os.Getenv(whisperKeyEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), whisperUploadTimeout)
	defer cancel()

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(clip, "clip.wav", "audio/wav"),
		Model: openai.AudioModelWhisper1,
	}
	if code := baseLanguage(language); code != "" {
		params.Language = openai.String(code)
	}

	resp, err := w.newTranscriber(key).New(ctx, params)
	if err != nil {
		emitError(events, ErrNetwork, err.Error())
		return
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		emitError(events, ErrNoSpeech, "no speech detected")
		return
	}
	events <- Event{Type: EventFinal, Text: text}
}

// baseLanguage reduces a BCP 47 tag like "en-US" to the bare "en" code the
// transcription API expects.
func baseLanguage(tag string) string {
	code, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(strings.TrimSpace(code))
}

var _ Recognizer = (*WhisperRecognizer)(nil)
