package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
)

// Baseline speaking rate in words per minute; rate and pitch settings scale
// relative to it.
const (
	baseWordsPerMinute = 175
	basePitch          = 50
)

// Synthesizer speaks text through the platform TTS command. At most one
// utterance plays at a time; Speak cancels any utterance still in flight.
type Synthesizer struct {
	newCommand func(ctx context.Context, text string, rate, pitch float64) *exec.Cmd

	mu      sync.Mutex
	current *utterance
}

// utterance identifies one playback so a finished Speak call only releases
// its own slot, never a newer utterance's.
type utterance struct {
	cancel context.CancelFunc
}

// NewSynthesizer returns a platform synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{newCommand: synthCommand}
}

// Speak voices the text, returning once playback finishes or is cancelled.
// rate and pitch are multipliers around 1.0.
func (s *Synthesizer) Speak(ctx context.Context, text string, rate, pitch float64) error {
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	utt := &utterance{cancel: cancel}
	s.mu.Lock()
	if s.current != nil {
		s.current.cancel()
	}
	s.current = utt
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		if s.current == utt {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	cmd := s.newCommand(ctx, text, rate, pitch)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Cancelled by a newer utterance or StopSpeaking.
			return nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return &RecognitionError{Kind: ErrNotSupported, Message: fmt.Sprintf("no speech synthesis command on %s", runtime.GOOS)}
		}
		return &RecognitionError{Kind: ErrUnknown, Message: err.Error()}
	}
	return nil
}

// Stop cancels the in-flight utterance, if any.
func (s *Synthesizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}
}

func synthCommand(ctx context.Context, text string, rate, pitch float64) *exec.Cmd {
	if rate <= 0 {
		rate = 1.0
	}
	if pitch <= 0 {
		pitch = 1.0
	}

	switch runtime.GOOS {
	case "darwin":
		wpm := strconv.Itoa(int(baseWordsPerMinute * rate))
		return exec.CommandContext(ctx, "say", "-r", wpm, text)
	case "windows":
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Speech; $v = New-Object System.Speech.Synthesis.SpeechSynthesizer; $v.Rate = %d; $v.Speak(%s)",
			int((rate-1.0)*10), powershellQuote(text))
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script)
	default:
		wpm := strconv.Itoa(int(baseWordsPerMinute * rate))
		p := strconv.Itoa(clampPitch(int(basePitch * pitch)))
		return exec.CommandContext(ctx, "espeak", "-s", wpm, "-p", p, text)
	}
}

func clampPitch(p int) int {
	if p < 0 {
		return 0
	}
	if p > 99 {
		return 99
	}
	return p
}

// powershellQuote wraps text in a PowerShell single-quoted literal.
func powershellQuote(text string) string {
	quoted := ""
	for _, r := range text {
		if r == '\'' {
			quoted += "''"
			continue
		}
		quoted += string(r)
	}
	return "'" + quoted + "'"
}
