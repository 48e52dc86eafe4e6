package tui

import (
	"PromptCraft/internal/engine"
	"PromptCraft/internal/prompt"
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// App тонкий презентер: всё состояние живёт в engine, модель только отражает снимок.
type App struct {
	eng     *engine.Engine
	updates <-chan struct{}
	st      engine.State

	input   textarea.Model
	spinner spinner.Model
	width   int
	height  int
}

// stateMsg состояние контроллера изменилось.
type stateMsg struct{}

// sessionClosedMsg канал подписки закрыт.
type sessionClosedMsg struct{}

// opDoneMsg операция завершилась; ошибки уже отражены в состоянии.
type opDoneMsg struct{ err error }

func NewApp(eng *engine.Engine) *App {
	ta := textarea.New()
	ta.Placeholder = "Describe your idea..."
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.CharLimit = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleActive

	st := eng.State()
	ta.SetValue(st.UserInput)

	updates, _ := eng.Subscribe()
	return &App{eng: eng, updates: updates, st: st, input: ta, spinner: sp}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick, a.waitForUpdate())
}

func (a *App) waitForUpdate() tea.Cmd {
	ch := a.updates
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return sessionClosedMsg{}
		}
		return stateMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.SetWidth(max(20, msg.Width-4))
		return a, nil

	case stateMsg:
		a.refresh()
		return a, a.waitForUpdate()

	case sessionClosedMsg:
		return a, tea.Quit

	case opDoneMsg:
		a.refresh()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	if v := a.input.Value(); v != a.st.UserInput {
		a.st.UserInput = v
		a.eng.SetUserInput(v)
	}
	return a, tea.Batch(cmds...)
}

// refresh перечитывает снимок; текст поля меняется, только если его поменял не пользователь (например, распознавание речи).
func (a *App) refresh() {
	a.st = a.eng.State()
	if a.input.Value() != a.st.UserInput {
		a.input.SetValue(a.st.UserInput)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, keys.Synthesize):
		input, level := a.input.Value(), a.st.DetailLevel
		return a.run(func(ctx context.Context) error { return a.eng.Synthesize(ctx, input, level) }), true
	case key.Matches(msg, keys.Level):
		a.eng.SetDetailLevel(a.st.DetailLevel.Next())
		a.refresh()
		return nil, true
	case key.Matches(msg, keys.GetAnswer):
		return a.run(a.eng.GetAnswer), true
	case key.Matches(msg, keys.Brainstorm):
		return a.run(a.eng.Brainstorm), true
	case key.Matches(msg, keys.Summarize):
		return a.run(a.eng.Summarize), true
	case key.Matches(msg, keys.Rephrase):
		return a.run(a.eng.Rephrase), true
	case key.Matches(msg, keys.ReadAloud):
		return a.run(a.eng.ReadAloud), true
	case key.Matches(msg, keys.Listen):
		return a.run(func(ctx context.Context) error { return a.eng.Listen(ctx, a.eng.UserInputField()) }), true
	case key.Matches(msg, keys.CopyPrompt):
		a.eng.CopyToClipboard(a.st.SynthesizedPrompt)
		return nil, true
	case key.Matches(msg, keys.CopyAnswer):
		a.eng.CopyToClipboard(a.st.FinalAnswer)
		return nil, true
	}
	return nil, false
}

// run выполняет операцию контроллера вне цикла Update.
func (a *App) run(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: op(context.Background())}
	}
}

// busyLabel подпись для индикатора занятости.
func busyLabel(st engine.State) string {
	switch {
	case st.PendingSynthesis:
		return "Synthesizing..."
	case st.Speaking:
		return "Speaking..."
	case st.PendingAction == prompt.ActionReadAloud:
		return "Preparing speech..."
	case st.PendingAction != "":
		return "Running " + string(st.PendingAction) + "..."
	case st.Listening:
		return "Listening..."
	}
	return ""
}
