package main

import (
	"PromptCraft/internal/prompt"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	followUps []string
	copyOut   bool
	speakOut  bool
)

var synthCmd = &cobra.Command{
	Use:   "synth [idea...]",
	Short: "Synthesize a prompt once and print it",
	Long: `Synthesize a structured prompt from an idea and print it to stdout.

Without arguments the idea is read from stdin. Follow-up actions run in the
given order, each on the result of the previous one:

  promptcraft synth -l detailed "a haiku about rain" -a "get answer" -a summarize`,
	RunE: runSynth,
}

func init() {
	synthCmd.Flags().StringArrayVarP(&followUps, "action", "a", nil, "Follow-up action: get answer, brainstorm, summarize, rephrase (repeatable)")
	synthCmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the last result to the clipboard")
	synthCmd.Flags().BoolVar(&speakOut, "speak", false, "Read the final answer aloud and wait for the end")
}

func runSynth(cmd *cobra.Command, args []string) error {
	idea := strings.Join(args, " ")
	if idea == "" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		idea = string(b)
	}

	rt, err := startSession(cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	eng := rt.session.Engine
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if err := eng.Synthesize(ctx, idea, prompt.ParseDetailLevel(rt.cfg.DetailLevel)); err != nil {
		return stateError(eng.State().LastSynthesisError, err)
	}
	st := eng.State()
	fmt.Fprintln(out, st.SynthesizedPrompt)
	last := st.SynthesizedPrompt

	for _, id := range followUps {
		if err := eng.RunFollowUp(ctx, id); err != nil {
			return stateError(eng.State().LastActionError, err)
		}
		st = eng.State()
		fmt.Fprintf(out, "\n## %s\n\n%s\n", st.AnswerTitle, st.FinalAnswer)
		last = st.FinalAnswer
	}

	if copyOut {
		eng.CopyToClipboard(last)
	}
	if speakOut {
		return speakAndWait(ctx, rt)
	}
	return nil
}

// speakAndWait озвучивает finalAnswer и ждёт, пока речь закончится.
func speakAndWait(ctx context.Context, rt *runtime) error {
	eng := rt.session.Engine
	updates, unsubscribe := eng.Subscribe()
	defer unsubscribe()

	if err := eng.ReadAloud(ctx); err != nil {
		return stateError(eng.State().LastActionError, err)
	}
	for range updates {
		st := eng.State()
		if st.PendingAction == "" && !st.Speaking {
			if st.LastActionError != "" {
				return errors.New(st.LastActionError)
			}
			return nil
		}
	}
	return nil
}

// stateError предпочитает сообщение для пользователя, подробности уже в логе.
func stateError(msg string, err error) error {
	if msg != "" {
		return errors.New(msg)
	}
	return err
}
