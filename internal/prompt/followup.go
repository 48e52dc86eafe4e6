package prompt

import "fmt"

// Source — какой результат сессии служит входом для follow-up действия.
type Source int

const (
	SourceSynthesizedPrompt Source = iota + 1
	SourceFinalAnswer
)

// ActionID идентификатор follow-up действия. Он же попадает в pendingAction и в текст ошибки.
type ActionID string

const (
	ActionGetAnswer  ActionID = "get answer"
	ActionBrainstorm ActionID = "brainstorm"
	ActionSummarize  ActionID = "summarize"
	ActionRephrase   ActionID = "rephrase"
	// ActionReadAloud не ходит в бэкенд, но занимает тот же слот pendingAction.
	ActionReadAloud ActionID = "read aloud"
)

// Action описывает follow-up: откуда брать вход, как обернуть его в инструкцию и как подписать результат.
type Action struct {
	ID     ActionID
	Title  string
	Source Source
	build  func(input string) string
}

// Build оборачивает вход в шаблон действия.
func (a Action) Build(input string) string {
	if a.build == nil {
		return input
	}
	return a.build(input)
}

var (
	GetAnswer = Action{
		ID:     ActionGetAnswer,
		Title:  "AI Answer",
		Source: SourceSynthesizedPrompt,
	}
	Brainstorm = Action{
		ID:     ActionBrainstorm,
		Title:  "Brainstormed Ideas",
		Source: SourceSynthesizedPrompt,
		build: func(in string) string {
			return fmt.Sprintf("Based on the following detailed prompt, brainstorm 5 creative and unique ideas or different angles for the final response. "+
				"Present the ideas as a numbered list. Synthesized prompt: \"%s\"", in)
		},
	}
	Summarize = Action{
		ID:     ActionSummarize,
		Title:  "Summary",
		Source: SourceFinalAnswer,
		build: func(in string) string {
			return fmt.Sprintf("Summarize the following text concisely. Text: \"%s\"", in)
		},
	}
	Rephrase = Action{
		ID:     ActionRephrase,
		Title:  "Rephrased Answer",
		Source: SourceFinalAnswer,
		build: func(in string) string {
			return fmt.Sprintf("Rephrase the following text to offer a different perspective or tone, while maintaining the core meaning. Text: \"%s\"", in)
		},
	}
)

// Actions — все follow-up действия, работающие через бэкенд.
func Actions() []Action {
	return []Action{GetAnswer, Brainstorm, Summarize, Rephrase}
}

// LookupAction ищет действие по идентификатору ("get answer", "get-answer" и "get_answer" равнозначны).
func LookupAction(id string) (Action, bool) {
	norm := normalizeID(id)
	for _, a := range Actions() {
		if normalizeID(string(a.ID)) == norm {
			return a, true
		}
	}
	return Action{}, false
}

func normalizeID(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-' || c == '_':
			c = ' '
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
