package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// MicSource records microphone audio through the platform capture command,
// buffering the clip in memory until End.
type MicSource struct {
	mu  sync.Mutex
	cmd *exec.Cmd
	buf *bytes.Buffer
}

// NewMicSource returns a microphone capture source.
func NewMicSource() *MicSource {
	return &MicSource{}
}

// Begin starts the capture process. Audio accumulates until End is called.
func (m *MicSource) Begin(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil {
		return fmt.Errorf("capture already in progress")
	}

	buf := &bytes.Buffer{}
	cmd := captureCommand(ctx)
	cmd.Stdout = buf
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start audio capture: %w", err)
	}

	m.cmd = cmd
	m.buf = buf
	return nil
}

// End stops the capture and returns the recorded clip.
func (m *MicSource) End() (io.Reader, error) {
	m.mu.Lock()
	cmd := m.cmd
	buf := m.buf
	m.cmd = nil
	m.buf = nil
	m.mu.Unlock()

	if cmd == nil {
		return nil, fmt.Errorf("no capture in progress")
	}

	if cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
	}
	_ = cmd.Wait()

	if buf.Len() == 0 {
		return nil, fmt.Errorf("no audio captured")
	}
	return buf, nil
}

func captureCommand(ctx context.Context) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		// sox reads the default input device and writes wav to stdout.
		return exec.CommandContext(ctx, "sox", "-d", "-t", "wav", "-")
	case "windows":
		return exec.CommandContext(ctx, "ffmpeg", "-f", "dshow", "-i", "audio=default", "-t", "wav", "-")
	default:
		return exec.CommandContext(ctx, "arecord", "-f", "S16_LE", "-r", "16000", "-t", "wav", "-")
	}
}

var _ AudioSource = (*MicSource)(nil)
