package prompt

import (
	"strings"
	"testing"
)

func TestActionBuild(t *testing.T) {
	const in = "IN"
	tests := []struct {
		action Action
		want   []string
		title  string
		source Source
	}{
		{GetAnswer, []string{in}, "AI Answer", SourceSynthesizedPrompt},
		{Brainstorm, []string{"brainstorm 5", `Synthesized prompt: "IN"`}, "Brainstormed Ideas", SourceSynthesizedPrompt},
		{Summarize, []string{"Summarize the following text concisely", `Text: "IN"`}, "Summary", SourceFinalAnswer},
		{Rephrase, []string{"different perspective or tone", "core meaning", `Text: "IN"`}, "Rephrased Answer", SourceFinalAnswer},
	}
	for _, tt := range tests {
		t.Run(string(tt.action.ID), func(t *testing.T) {
			got := tt.action.Build(in)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Build() = %q, missing %q", got, w)
				}
			}
			if tt.action.Title != tt.title {
				t.Errorf("Title = %q, want %q", tt.action.Title, tt.title)
			}
			if tt.action.Source != tt.source {
				t.Errorf("Source = %d, want %d", tt.action.Source, tt.source)
			}
		})
	}
	if got := GetAnswer.Build("verbatim"); got != "verbatim" {
		t.Errorf("GetAnswer.Build() = %q, want verbatim input", got)
	}
}

func TestLookupAction(t *testing.T) {
	for _, id := range []string{"get answer", "get-answer", "GET_ANSWER"} {
		a, ok := LookupAction(id)
		if !ok || a.ID != ActionGetAnswer {
			t.Errorf("LookupAction(%q) = %v, %v", id, a.ID, ok)
		}
	}
	if _, ok := LookupAction("read aloud"); ok {
		t.Error("read aloud must not be a backend action")
	}
	if _, ok := LookupAction("translate"); ok {
		t.Error("unknown action resolved")
	}
}
