package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Line tags of the helper process protocol.
const (
	nativeTagAuthorized = "AUTHORIZED"
	nativeTagPartial    = "PARTIAL:"
	nativeTagFinal      = "FINAL:"
	nativeTagResult     = "RESULT:"
	nativeTagError      = "ERROR:"
)

// NativeRecognizer runs the platform speech helper as a subordinate process
// and translates its line-oriented tagged stdout into gateway events. Stop
// sends an interrupt, which makes the helper finalize and exit.
type NativeRecognizer struct {
	helperPath string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewNativeRecognizer creates a recognizer around the helper binary.
func NewNativeRecognizer(helperPath string) *NativeRecognizer {
	return &NativeRecognizer{helperPath: helperPath}
}

// Start implements Recognizer.
func (r *NativeRecognizer) Start(ctx context.Context, language string, events chan<- Event) error {
	cmd := exec.CommandContext(ctx, r.helperPath, "--language", language)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &RecognitionError{Kind: ErrUnknown, Message: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return &RecognitionError{Kind: ErrNotSupported, Message: fmt.Sprintf("speech helper %q not found", r.helperPath)}
		}
		return &RecognitionError{Kind: ErrAudioUnavailable, Message: err.Error()}
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	go r.readLoop(cmd, stdout, events)
	return nil
}

func (r *NativeRecognizer) readLoop(cmd *exec.Cmd, stdout io.Reader, events chan<- Event) {
	authorized := false
	lastPartial := ""
	finished := false

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == nativeTagAuthorized:
			authorized = true
			events <- Event{Type: EventStarted}

		case strings.HasPrefix(line, nativeTagPartial):
			lastPartial = strings.TrimPrefix(line, nativeTagPartial)
			events <- Event{Type: EventInterim, Text: lastPartial}

		case strings.HasPrefix(line, nativeTagFinal):
			events <- Event{Type: EventFinal, Text: strings.TrimPrefix(line, nativeTagFinal)}
			finished = true

		case strings.HasPrefix(line, nativeTagResult):
			events <- Event{Type: EventFinal, Text: strings.TrimPrefix(line, nativeTagResult)}
			finished = true

		case strings.HasPrefix(line, nativeTagError):
			message := strings.TrimPrefix(line, nativeTagError)
			emitError(events, classifyNativeError(message), message)
			finished = true
		}
		if finished {
			break
		}
	}

	err := cmd.Wait()
	r.mu.Lock()
	r.cmd = nil
	r.mu.Unlock()

	if finished {
		return
	}

	// The helper exited without a terminal line: an interrupted session
	// finalizes with whatever was heard; an unauthorized one never listened.
	if !authorized {
		emitError(events, ErrPermissionDenied, "speech recognition not authorized")
		return
	}
	if err != nil {
		slog.Debug("speech_helper_exit", "error", err)
	}
	events <- Event{Type: EventFinal, Text: lastPartial}
}

// Stop implements Recognizer: interrupt the helper so it finalizes.
func (r *NativeRecognizer) Stop() {
	r.mu.Lock()
	cmd := r.cmd
	r.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
	}
}

func classifyNativeError(message string) ErrorKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "not authorized"), strings.Contains(lower, "denied"):
		return ErrPermissionDenied
	case strings.Contains(lower, "no speech"):
		return ErrNoSpeech
	case strings.Contains(lower, "audio"), strings.Contains(lower, "microphone"):
		return ErrAudioUnavailable
	default:
		return ErrUnknown
	}
}

var _ Recognizer = (*NativeRecognizer)(nil)
