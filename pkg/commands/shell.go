package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// Shell is the OS integration boundary consumed by the resolver. Production
// code uses SystemShell; tests substitute a fake.
type Shell interface {
	OpenExternal(url string) error
	ReadClipboard() (string, error)
	WriteClipboard(text string) error
}

// SystemShell talks to the real OS: default browser via the platform opener,
// clipboard via the system clipboard.
type SystemShell struct{}

// NewSystemShell returns the production shell.
func NewSystemShell() SystemShell {
	return SystemShell{}
}

// OpenExternal hands the URL to the platform opener. It starts the opener and
// returns immediately; it never waits for the target to load.
func (SystemShell) OpenExternal(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open external url: %w", err)
	}
	// Reap the opener in the background so it doesn't linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}

// ReadClipboard returns the current clipboard text.
func (SystemShell) ReadClipboard() (string, error) {
	return clipboard.ReadAll()
}

// WriteClipboard stores text on the clipboard.
func (SystemShell) WriteClipboard(text string) error {
	return clipboard.WriteAll(text)
}

var _ Shell = SystemShell{}
