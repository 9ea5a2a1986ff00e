package providers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"clippy/pkg/ai"

	"google.golang.org/genai"
)

const (
	geminiDefaultModel = "gemini-2.0-flash"
	geminiSendTimeout  = 60 * time.Second
	geminiTemperature  = 0.7
	geminiMaxTokens    = 1000
	geminiKeyEnv       = "GEMINI_API_KEY"
)

// geminiModelsClient is the slice of the genai SDK the adapter uses.
type geminiModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func newGeminiModelsClient(ctx context.Context, apiKey string) (geminiModelsClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// GeminiAdapter talks to the Gemini generateContent API. The credential is
// supplied per call and falls back to the GEMINI_API_KEY environment variable;
// a missing credential fails before any client is constructed.
type GeminiAdapter struct {
	newClient func(ctx context.Context, apiKey string) (geminiModelsClient, error)
}

// NewGeminiAdapter creates the cloud adapter.
func NewGeminiAdapter() *GeminiAdapter {
	return &GeminiAdapter{newClient: newGeminiModelsClient}
}

// Send implements ai.Adapter.
func (a *GeminiAdapter) Send(ctx context.Context, req ai.Request, model, credential string) ai.Outcome {
	apiKey := strings.TrimSpace(credential)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(geminiKeyEnv))
	}
	if apiKey == "" {
		return ai.Fail(ai.FailMissingCredential, "gemini api key not configured")
	}

	if strings.TrimSpace(model) == "" {
		model = geminiDefaultModel
	}

	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		role := genai.RoleUser
		if turn.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(geminiTemperature)),
		MaxOutputTokens: geminiMaxTokens,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, geminiSendTimeout)
	defer cancel()

	client, err := a.newClient(callCtx, apiKey)
	if err != nil {
		slog.Debug("gemini_client_failed", "error", err)
		return ai.Fail(ai.FailUnknown, err.Error())
	}

	resp, err := client.GenerateContent(callCtx, model, contents, config)
	if err != nil {
		slog.Debug("gemini_request_failed", "model", model, "error", err)
		return ai.Outcome{Failure: classifyGeminiError(err)}
	}

	text := extractGeminiText(resp)
	if text == "" {
		return ai.Fail(ai.FailUnknown, "no response from Gemini")
	}
	return ai.Success(text)
}

func classifyGeminiError(err error) *ai.Failure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &ai.Failure{Kind: ai.FailInvalidCredential, Message: apiErr.Message}
		case 429:
			return &ai.Failure{Kind: ai.FailRateLimited, Message: apiErr.Message}
		}
		if apiErr.Message != "" {
			return &ai.Failure{Kind: ai.FailUnknown, Message: apiErr.Message}
		}
	}
	return &ai.Failure{Kind: ai.FailUnknown, Message: err.Error()}
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

var _ ai.Adapter = (*GeminiAdapter)(nil)
