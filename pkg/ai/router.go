package ai

import (
	"context"
	"log/slog"
)

// Provider identifiers accepted in RouteConfig.Provider. Anything else falls
// back to the local provider.
const (
	ProviderLocal  = "local"
	ProviderGemini = "gemini"
)

// historyWindow bounds how many turns are sent upstream per request.
const historyWindow = 10

// Adapter translates a normalized request into one backend's wire call.
// Implementations catch every failure path and map it to a typed Outcome;
// no raw transport error escapes past this boundary.
type Adapter interface {
	Send(ctx context.Context, req Request, model, credential string) Outcome
}

// RouteConfig is the per-request provider selection, supplied by the caller.
// The router holds no mutable session state; routing is a pure function of
// (messages, config).
type RouteConfig struct {
	Provider    string
	OllamaModel string
	GeminiModel string
	Credential  string
	Style       string
}

// Router dispatches normalized requests to the configured adapter.
type Router struct {
	local Adapter
	cloud Adapter
}

// NewRouter creates a router over the two adapters.
func NewRouter(local, cloud Adapter) *Router {
	return &Router{local: local, cloud: cloud}
}

// Route builds the normalized request and invokes the selected adapter.
// The adapter's outcome is returned unchanged: no retries, no fallback to the
// other provider.
func (r *Router) Route(ctx context.Context, messages []Message, cfg RouteConfig) Outcome {
	req := BuildRequest(messages, cfg.Style)

	switch cfg.Provider {
	case ProviderGemini:
		slog.Debug("route_request", "provider", ProviderGemini, "model", cfg.GeminiModel, "turns", len(req.Turns))
		return r.cloud.Send(ctx, req, cfg.GeminiModel, cfg.Credential)
	default:
		slog.Debug("route_request", "provider", ProviderLocal, "model", cfg.OllamaModel, "turns", len(req.Turns))
		return r.local.Send(ctx, req, cfg.OllamaModel, "")
	}
}

// BuildRequest resolves the style prompt, drops system-role history entries,
// and keeps only the most recent turns in their original order.
func BuildRequest(messages []Message, style string) Request {
	turns := make([]Turn, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		role := m.Role
		if role != RoleAssistant {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Content: m.Content})
	}

	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}

	return Request{
		SystemPrompt: ResolveStyle(style),
		Turns:        turns,
	}
}
