package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Synthesize key.Binding
	Level      key.Binding
	GetAnswer  key.Binding
	Brainstorm key.Binding
	Summarize  key.Binding
	Rephrase   key.Binding
	ReadAloud  key.Binding
	Listen     key.Binding
	CopyPrompt key.Binding
	CopyAnswer key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	Synthesize: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "synthesize")),
	Level:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "detail level")),
	GetAnswer:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "get answer")),
	Brainstorm: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "brainstorm")),
	Summarize:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "summarize")),
	Rephrase:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rephrase")),
	ReadAloud:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "read aloud")),
	Listen:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "listen")),
	CopyPrompt: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy prompt")),
	CopyAnswer: key.NewBinding(key.WithKeys("alt+y"), key.WithHelp("alt+y", "copy answer")),
}
