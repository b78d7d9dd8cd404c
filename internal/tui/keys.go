package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start   key.Binding
	Up      key.Binding
	Down    key.Binding
	Quieter key.Binding
	Louder  key.Binding
	Preset  key.Binding
	AllOff  key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Start:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "start")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Quieter: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "quieter")),
	Louder:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "louder")),
	Preset:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-4", "preset")),
	AllOff:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "all off")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quieter, k.Louder, k.Preset, k.AllOff, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Start, k.Quit}, {k.Up, k.Down, k.Quieter, k.Louder}, {k.Preset, k.AllOff}}
}
