package tui

import (
	"PromptCraft/internal/engine"
	"PromptCraft/internal/prompt"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type stubBackend struct{}

func (stubBackend) Generate(_ context.Context, p string) (string, error) {
	return "ROLE: poet", nil
}

func typeText(a *App, s string) {
	for _, r := range s {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestTypingUpdatesEngine(t *testing.T) {
	eng := engine.New(stubBackend{})
	defer eng.Close()
	a := NewApp(eng)

	typeText(a, "haiku")
	if got := eng.State().UserInput; got != "haiku" {
		t.Errorf("engine UserInput = %q", got)
	}
}

func TestSynthesizeKey(t *testing.T) {
	eng := engine.New(stubBackend{})
	defer eng.Close()
	a := NewApp(eng)
	typeText(a, "haiku")

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s must return a command")
	}
	msg := cmd()
	done, ok := msg.(opDoneMsg)
	if !ok {
		t.Fatalf("command returned %T", msg)
	}
	if done.err != nil {
		t.Fatalf("synthesize: %v", done.err)
	}
	a.Update(msg)
	if a.st.SynthesizedPrompt != "ROLE: poet" {
		t.Errorf("SynthesizedPrompt = %q", a.st.SynthesizedPrompt)
	}
	if !strings.Contains(a.View(), "Synthesized Prompt") {
		t.Error("view must render the prompt section")
	}
}

func TestLevelKeyCycles(t *testing.T) {
	eng := engine.New(stubBackend{})
	defer eng.Close()
	a := NewApp(eng)

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := eng.State().DetailLevel; got != prompt.DetailMedium.Next() {
		t.Errorf("DetailLevel = %q, want %q", got, prompt.DetailMedium.Next())
	}
}

func TestStateMsgSyncsInput(t *testing.T) {
	eng := engine.New(stubBackend{})
	defer eng.Close()
	a := NewApp(eng)

	eng.SetUserInput("dictated text")
	a.Update(stateMsg{})
	if a.input.Value() != "dictated text" {
		t.Errorf("textarea = %q", a.input.Value())
	}
}

func TestBusyLabel(t *testing.T) {
	tests := []struct {
		st   engine.State
		want string
	}{
		{engine.State{}, ""},
		{engine.State{PendingSynthesis: true}, "Synthesizing..."},
		{engine.State{PendingAction: prompt.ActionSummarize}, "Running summarize..."},
		{engine.State{PendingAction: prompt.ActionReadAloud}, "Preparing speech..."},
		{engine.State{PendingAction: prompt.ActionReadAloud, Speaking: true}, "Speaking..."},
		{engine.State{Listening: true}, "Listening..."},
	}
	for _, tt := range tests {
		if got := busyLabel(tt.st); got != tt.want {
			t.Errorf("busyLabel(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}
