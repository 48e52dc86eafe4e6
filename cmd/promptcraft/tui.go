package main

import (
	"PromptCraft/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal interface (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	rt, err := startSession(cmd, true)
	if err != nil {
		return err
	}
	defer rt.close()

	_, err = tea.NewProgram(tui.NewApp(rt.session.Engine), tea.WithAltScreen()).Run()
	return err
}
