package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"clippy/pkg/ai"
	"clippy/pkg/version"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("213")).
				Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	interimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("141"))

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("141"))
)

// View renders the shell (Bubble Tea lifecycle method).
func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

// render lays the frame out as a plain string.
func (m Model) render() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.transcript.View())
	sb.WriteString("\n")

	if m.listening && m.interim != "" {
		sb.WriteString(interimStyle.Render("... " + m.interim))
		sb.WriteString("\n")
	}

	sb.WriteString(inputBoxStyle.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())

	return sb.String()
}

func (m Model) statusLine() string {
	model := m.cfg.Ollama.Model
	if m.cfg.Provider == ai.ProviderGemini {
		model = m.cfg.Gemini.Model
	}

	left := fmt.Sprintf("[clippy %s] %s/%s", version.Summary(), m.cfg.Provider, model)
	if m.listening {
		left += " | mic on"
	}
	if m.status != "" {
		left += " | " + m.status
	}

	line := truncateLine(left, m.width)
	if pad := m.width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return statusBarStyle.Render(line)
}

// renderTranscript lays the conversation out as labeled, wrapped blocks.
func renderTranscript(entries []entry, width int) string {
	if width < 4 {
		width = 4
	}

	var blocks []string
	for _, e := range entries {
		label := assistantLabelStyle.Render("Clippy")
		if e.role == ai.RoleUser {
			label = userLabelStyle.Render("You")
		}
		body := bodyStyle.Width(width - 2).Render(e.content)
		blocks = append(blocks, label+"\n"+body)
	}
	return strings.Join(blocks, "\n\n")
}

func truncateLine(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}
