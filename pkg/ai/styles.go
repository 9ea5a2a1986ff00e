package ai

import "sort"

// DefaultStyle is the fallback style id. The catalog always contains it.
const DefaultStyle = "default"

// stylePrompts maps a style id to the system prompt injected for that style.
// Loaded once, immutable afterwards.
var stylePrompts = map[string]string{
	"default":      "You are Clippy, a helpful and friendly desktop AI assistant. Be concise but warm. Keep responses focused and practical.",
	"concise":      "You are Clippy. Respond briefly and efficiently. No fluff, just essential information.",
	"dev":          "You are Clippy, a senior software engineer assistant. Provide technical, precise answers with code examples when appropriate. Be direct and thorough.",
	"creative":     "You are Clippy, a creative assistant. Be imaginative, playful, and think outside the box. Make interactions fun and engaging.",
	"professional": "You are Clippy, a professional business assistant. Be formal, clear, and thorough in your responses.",
}

// ResolveStyle returns the system prompt for a style id. It is total: any
// unknown or empty id resolves to the default style's prompt.
func ResolveStyle(id string) string {
	if prompt, ok := stylePrompts[id]; ok {
		return prompt
	}
	return stylePrompts[DefaultStyle]
}

// StyleIDs returns the known style ids in sorted order, for settings UIs.
func StyleIDs() []string {
	ids := make([]string, 0, len(stylePrompts))
	for id := range stylePrompts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
