package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"

	"clippy/pkg/ai"
	"clippy/pkg/ai/providers"
	"clippy/pkg/commands"
	"clippy/pkg/config"
	"clippy/pkg/logging"
	"clippy/pkg/speech"
	"clippy/pkg/store"
	"clippy/pkg/ui"
)

const speechHelperBinary = "clippy-speech-helper"

func main() {
	showVersion := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	// Load configuration from ~/.clippy/config.json
	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if _, err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}
	slog.Info("clippy starting", "provider", cfg.Provider, "style", cfg.Style)

	history, err := store.Open(store.DefaultPath())
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		history = nil
	}

	local, err := providers.NewOllamaAdapter(cfg.Ollama.Host, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring local provider: %v\n", err)
		os.Exit(1)
	}
	cloud := providers.NewGeminiAdapter()
	router := ai.NewRouter(local, cloud)

	gateway := speech.NewGateway(map[speech.Backend]speech.Recognizer{
		speech.BackendNative:  speech.NewNativeRecognizer(speechHelperBinary),
		speech.BackendWhisper: speech.NewWhisperRecognizer(speech.NewMicSource(), os.Getenv("OPENAI_API_KEY")),
	}, speech.NewSynthesizer())

	model := ui.NewModel(cfg, ui.Deps{
		Router:      router,
		Resolver:    commands.NewResolver(commands.NewSystemShell()),
		History:     history,
		Speech:      gateway,
		LocalStatus: local.Status,
	})

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	slog.Info("clippy exiting")
}
