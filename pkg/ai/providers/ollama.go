// Package providers contains the concrete backend adapters behind the
// ai.Adapter contract: a local Ollama server and the Gemini cloud API.
package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"clippy/pkg/ai"

	"github.com/ollama/ollama/api"
)

const (
	ollamaDefaultHost  = "http://127.0.0.1:11434"
	ollamaDefaultModel = "mistral:latest"
	ollamaSendTimeout  = 60 * time.Second
	ollamaPingTimeout  = 5 * time.Second
)

// OllamaAdapter talks to a local Ollama server over its loopback HTTP API.
type OllamaAdapter struct {
	client *api.Client
}

// NewOllamaAdapter creates an adapter against the given host. An empty host
// selects the standard loopback address; a nil httpClient selects the default
// client (tests inject a transport here).
func NewOllamaAdapter(host string, httpClient *http.Client) (*OllamaAdapter, error) {
	if host == "" {
		host = ollamaDefaultHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaAdapter{client: api.NewClient(base, httpClient)}, nil
}

// Send implements ai.Adapter. The credential argument is ignored: the local
// service is unauthenticated.
func (a *OllamaAdapter) Send(ctx context.Context, req ai.Request, model, _ string) ai.Outcome {
	if strings.TrimSpace(model) == "" {
		model = ollamaDefaultModel
	}

	messages := make([]api.Message, 0, len(req.Turns)+1)
	messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	for _, turn := range req.Turns {
		role := turn.Role
		if role != ai.RoleAssistant {
			role = ai.RoleUser
		}
		messages = append(messages, api.Message{Role: role, Content: turn.Content})
	}

	callCtx, cancel := context.WithTimeout(ctx, ollamaSendTimeout)
	defer cancel()

	stream := false
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
	}

	var content strings.Builder
	err := a.client.Chat(callCtx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		slog.Debug("ollama_chat_failed", "model", model, "error", err)
		return ai.Outcome{Failure: classifyOllamaError(err)}
	}

	if content.Len() == 0 {
		return ai.Fail(ai.FailUnknown, "no response from Ollama")
	}
	return ai.Success(content.String())
}

// Status reports whether the local server is reachable and which models it
// has pulled. It never returns an error: any failure degrades to not-running.
func (a *OllamaAdapter) Status(ctx context.Context) (bool, []string) {
	callCtx, cancel := context.WithTimeout(ctx, ollamaPingTimeout)
	defer cancel()

	resp, err := a.client.List(callCtx)
	if err != nil {
		slog.Debug("ollama_status_failed", "error", err)
		return false, nil
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, m.Name)
	}
	return true, models
}

func classifyOllamaError(err error) *ai.Failure {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &ai.Failure{
			Kind:    ai.FailServiceUnavailable,
			Message: "Ollama is not running. Start it with: ollama serve",
		}
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) && statusErr.ErrorMessage != "" {
		return &ai.Failure{Kind: ai.FailUnknown, Message: statusErr.ErrorMessage}
	}
	return &ai.Failure{Kind: ai.FailUnknown, Message: err.Error()}
}

var _ ai.Adapter = (*OllamaAdapter)(nil)
