package ai

// FailureKind classifies a provider failure.
type FailureKind string

const (
	FailMissingCredential  FailureKind = "missing_credential"
	FailInvalidCredential  FailureKind = "invalid_credential"
	FailRateLimited        FailureKind = "rate_limited"
	FailServiceUnavailable FailureKind = "service_unavailable"
	FailUnknown            FailureKind = "unknown"
)

// Failure is a classified provider error. Message carries detail suitable for
// logs; UserMessage is what gets rendered to the user.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Kind)
	}
	return f.Message
}

// UserMessage maps the failure kind to an actionable, human-readable message.
// Raw protocol or HTTP text is never surfaced here.
func (f *Failure) UserMessage() string {
	switch f.Kind {
	case FailMissingCredential:
		return "No API key configured. Add your Gemini API key in Settings or set GEMINI_API_KEY."
	case FailInvalidCredential:
		return "Invalid API key. Check your Gemini API key in Settings."
	case FailRateLimited:
		return "Rate limit exceeded. Try again in a moment."
	case FailServiceUnavailable:
		return "Ollama is not running. Start it with: ollama serve"
	default:
		return "Something went wrong talking to the model. Try again."
	}
}

// Outcome is the single result shape the router exposes: either Text is set
// and Failure is nil, or Failure describes what went wrong.
type Outcome struct {
	Text    string
	Failure *Failure
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Success builds a successful outcome.
func Success(text string) Outcome {
	return Outcome{Text: text}
}

// Fail builds a failed outcome.
func Fail(kind FailureKind, message string) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Message: message}}
}
