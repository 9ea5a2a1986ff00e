// Package commands classifies and executes local commands (URL open,
// clipboard read/write, arithmetic) so they never reach a model backend.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies raw input text.
type Kind int

const (
	KindNone Kind = iota
	KindOpenURL
	KindClipboardRead
	KindClipboardWrite
	KindMath
)

// ResultType tags a command result.
type ResultType string

const (
	TypeNone      ResultType = "none"
	TypeSystem    ResultType = "system"
	TypeClipboard ResultType = "clipboard"
	TypeMath      ResultType = "math"
	TypeError     ResultType = "error"
)

// ErrEmptyClipboard annotates a clipboard-read that found nothing. The input
// is still a recognized command; this is a payload-level error, not "not a
// command".
var ErrEmptyClipboard = errors.New("clipboard is empty")

// Result is the outcome of executing a command.
type Result struct {
	Type    ResultType
	Content string
	Err     error
}

const (
	openPrefix = "open "
	copyPrefix = "copy "
)

var clipboardAliases = map[string]struct{}{
	"clipboard":           {},
	"paste":               {},
	"summarize clipboard": {},
}

// mathChars is the closed character class for arithmetic input. Anything
// outside it falls through to the provider router; this is a security
// boundary, not just syntax.
var mathChars = regexp.MustCompile(`^[0-9+\-*/().\s]+$`)

// Classify decides whether text is a local command. First match wins.
func Classify(text string) Kind {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(lower, openPrefix):
		return KindOpenURL
	case aliasMatch(lower):
		return KindClipboardRead
	case strings.HasPrefix(lower, copyPrefix):
		return KindClipboardWrite
	case lower != "" && mathChars.MatchString(lower) && strings.ContainsAny(lower, "0123456789"):
		return KindMath
	}
	return KindNone
}

func aliasMatch(lower string) bool {
	_, ok := clipboardAliases[lower]
	return ok
}

// Resolver executes classified commands against the OS shell boundary.
type Resolver struct {
	shell Shell
}

// NewResolver creates a resolver over the given shell.
func NewResolver(shell Shell) *Resolver {
	return &Resolver{shell: shell}
}

// Execute runs text as a command. A TypeNone result means the input is not a
// command and the caller must route it to the provider router instead.
func (r *Resolver) Execute(text string) Result {
	trimmed := strings.TrimSpace(text)

	switch Classify(trimmed) {
	case KindOpenURL:
		return r.openURL(trimmed)
	case KindClipboardRead:
		return r.readClipboard()
	case KindClipboardWrite:
		return r.writeClipboard(trimmed)
	case KindMath:
		return evalMath(trimmed)
	default:
		return Result{Type: TypeNone}
	}
}

func (r *Resolver) openURL(trimmed string) Result {
	target := strings.TrimSpace(trimmed[len(openPrefix):])
	full := target
	if !strings.HasPrefix(strings.ToLower(target), "http") {
		full = "https://" + target
	}

	// Fire and forget: never block on the target loading.
	if err := r.shell.OpenExternal(full); err != nil {
		slog.Warn("open_external_failed", "url", full, "error", err)
		return Result{Type: TypeError, Content: fmt.Sprintf("Could not open %s", target), Err: err}
	}
	return Result{Type: TypeSystem, Content: fmt.Sprintf("Opening %s...", target)}
}

func (r *Resolver) readClipboard() Result {
	text, err := r.shell.ReadClipboard()
	if err != nil {
		return Result{Type: TypeClipboard, Err: err}
	}
	if text == "" {
		return Result{Type: TypeClipboard, Err: ErrEmptyClipboard}
	}
	return Result{Type: TypeClipboard, Content: text}
}

func (r *Resolver) writeClipboard(trimmed string) Result {
	payload := strings.TrimSpace(trimmed[len(copyPrefix):])
	if err := r.shell.WriteClipboard(payload); err != nil {
		slog.Warn("clipboard_write_failed", "error", err)
		return Result{Type: TypeError, Content: "Could not write to clipboard", Err: err}
	}
	return Result{Type: TypeSystem, Content: "Copied to clipboard!"}
}

func evalMath(trimmed string) Result {
	value, err := Eval(trimmed)
	if err != nil {
		return Result{Type: TypeError, Content: "Invalid math expression", Err: err}
	}
	return Result{Type: TypeMath, Content: strconv.FormatFloat(value, 'f', -1, 64)}
}
