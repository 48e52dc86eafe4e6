package prompt

import (
	"fmt"
	"strings"
)

// DetailLevel — пресет подробности итогового промпта.
type DetailLevel string

const (
	DetailSmall    DetailLevel = "small"
	DetailMedium   DetailLevel = "medium"
	DetailDetailed DetailLevel = "detailed"
)

// Levels возвращает все известные уровни в порядке возрастания подробности.
func Levels() []DetailLevel {
	return []DetailLevel{DetailSmall, DetailMedium, DetailDetailed}
}

// ParseDetailLevel разбирает строку без учёта регистра. Неизвестное значение → medium.
func ParseDetailLevel(s string) DetailLevel {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DetailSmall:
		return DetailSmall
	case DetailDetailed:
		return DetailDetailed
	default:
		return DetailMedium
	}
}

// Next возвращает следующий уровень по кругу (для переключателя в UI).
func (l DetailLevel) Next() DetailLevel {
	levels := Levels()
	for i, v := range levels {
		if v == l {
			return levels[(i+1)%len(levels)]
		}
	}
	return DetailMedium
}

const baseIntro = `You are an expert prompt engineer named 'PromptCraft AI'. Your purpose is to transform a user's brief, unrefined idea into a highly effective prompt, ready for direct use with any large language model (LLM).`

const sectionsLead = "When you synthesize a prompt, you MUST include the following sections, formatted clearly with Markdown headings:"

// DetailedSections и MediumSections — обязательные разделы соответствующих шаблонов.
var DetailedSections = []string{
	"PERSONA",
	"PRIMARY OBJECTIVE",
	"DETAILED CONTEXT",
	"STEP-BY-STEP INSTRUCTIONS",
	"KEY CONSTRAINTS & GUARDRAILS",
	"EXAMPLE OUTPUT",
	"TONE & STYLE",
	"OUTPUT FORMAT",
}

var MediumSections = []string{
	"ROLE",
	"TASK",
	"CONTEXT",
	"CONSTRAINTS",
	"OUTPUT FORMAT",
}

var detailedHints = []string{
	"Create a detailed persona for the LLM.",
	"Clearly state the main goal of the task.",
	"Provide rich background information.",
	"Break down the task into a numbered list.",
	"List specific rules to adhere to.",
	"Provide a small, concrete example of the desired output.",
	"Specify the desired tone and writing style.",
	"Define the exact structure for the final output.",
}

var mediumHints = []string{
	"Define a clear role for the LLM.",
	"State the primary objective clearly.",
	"Provide necessary background information.",
	"List specific guardrails or rules.",
	"Specify the desired format for the output.",
}

// BuildMetaPrompt собирает мета-промпт для бэкенда из идеи пользователя.
// Чистая функция: одинаковые аргументы дают побайтно одинаковый результат.
func BuildMetaPrompt(idea string, level DetailLevel) string {
	switch level {
	case DetailSmall:
		return "You are an expert prompt engineer. Your task is to transform a user's idea into a short, concise, and direct prompt for an LLM. " +
			"The prompt should be a single paragraph and focus on the main goal, role, and task.\n\n" +
			userIdea(idea)
	case DetailDetailed:
		var b strings.Builder
		b.WriteString(baseIntro)
		b.WriteString(" The goal is to leave no room for ambiguity by creating an exceptionally detailed and comprehensive prompt.\n\n")
		b.WriteString(sectionsLead + "\n\n")
		writeSections(&b, DetailedSections, detailedHints)
		b.WriteString("\nNow, take the following user's idea and synthesize an exceptionally detailed prompt based on the structure above.\n\n")
		b.WriteString(userIdea(idea))
		return b.String()
	default:
		var b strings.Builder
		b.WriteString(baseIntro)
		b.WriteString("\n\n" + sectionsLead + "\n\n")
		writeSections(&b, MediumSections, mediumHints)
		b.WriteString("\nNow, take the following user's idea and synthesize a detailed prompt based on the structure above.\n\n")
		b.WriteString(userIdea(idea))
		return b.String()
	}
}

func writeSections(b *strings.Builder, names, hints []string) {
	for i, name := range names {
		fmt.Fprintf(b, "%d.  %s %s\n", i+1, Heading(name), hints[i])
	}
}

// Heading возвращает разметку заголовка раздела так, как она встречается в шаблоне.
func Heading(name string) string { return "**" + name + ":**" }

func userIdea(idea string) string {
	return `USER'S IDEA: "` + idea + `"`
}
