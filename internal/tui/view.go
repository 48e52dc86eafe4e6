package tui

import (
	"PromptCraft/internal/prompt"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) View() string {
	var b strings.Builder
	width := max(40, a.width-2)

	b.WriteString(styleLogo.Render("PromptCraft"))
	b.WriteString("  ")
	b.WriteString(styleSubtitle.Render("turn a rough idea into a structured prompt"))
	b.WriteString("\n\n")

	b.WriteString(a.renderLevels())
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	if e := a.st.LastSynthesisError; e != "" {
		b.WriteString(styleError.Render(e))
		b.WriteString("\n")
	}

	if label := busyLabel(a.st); label != "" {
		b.WriteString(a.spinner.View() + " " + styleActive.Render(label))
		b.WriteString("\n")
	}

	if p := a.st.SynthesizedPrompt; p != "" {
		b.WriteString("\n")
		b.WriteString(section("Synthesized Prompt", p, width))
	}
	if e := a.st.LastActionError; e != "" {
		b.WriteString(styleError.Render(e))
		b.WriteString("\n")
	}
	if ans := a.st.FinalAnswer; ans != "" {
		b.WriteString("\n")
		b.WriteString(section(a.st.AnswerTitle, ans, width))
	}
	if a.st.Copied {
		b.WriteString(styleOK.Render("Copied!"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderHelp())
	return b.String()
}

func (a *App) renderLevels() string {
	parts := make([]string, 0, 3)
	for _, l := range prompt.Levels() {
		if l == a.st.DetailLevel {
			parts = append(parts, styleActive.Render("["+string(l)+"]"))
		} else {
			parts = append(parts, styleSubtitle.Render(" "+string(l)+" "))
		}
	}
	return "Detail: " + strings.Join(parts, " ")
}

func section(title, body string, width int) string {
	return styleTitle.Render(title) + "\n" + styleBox.Width(width).Render(body) + "\n"
}

func (a *App) renderHelp() string {
	bindings := []struct{ k, desc string }{
		{keys.Synthesize.Help().Key, "synthesize"},
		{keys.Level.Help().Key, "level"},
		{keys.GetAnswer.Help().Key, "answer"},
		{keys.Brainstorm.Help().Key, "brainstorm"},
		{keys.Summarize.Help().Key, "summarize"},
		{keys.Rephrase.Help().Key, "rephrase"},
	}
	if a.st.CanSpeak {
		desc := "read aloud"
		if a.st.Speaking {
			desc = "stop"
		}
		bindings = append(bindings, struct{ k, desc string }{keys.ReadAloud.Help().Key, desc})
	}
	if a.st.CanListen {
		desc := "listen"
		if a.st.Listening {
			desc = "stop listening"
		}
		bindings = append(bindings, struct{ k, desc string }{keys.Listen.Help().Key, desc})
	}
	bindings = append(bindings,
		struct{ k, desc string }{keys.CopyPrompt.Help().Key, "copy prompt"},
		struct{ k, desc string }{keys.CopyAnswer.Help().Key, "copy answer"},
		struct{ k, desc string }{keys.Quit.Help().Key, "quit"},
	)
	parts := make([]string, 0, len(bindings))
	for _, bd := range bindings {
		parts = append(parts, fmt.Sprintf("%s %s", bd.k, bd.desc))
	}
	return styleStatusBar.Render(lipgloss.NewStyle().Width(max(40, a.width-2)).Render(strings.Join(parts, " • ")))
}
