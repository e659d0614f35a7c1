package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	QuitMenu key.Binding
	Back     key.Binding
	Enter    key.Binding
	Up       key.Binding
	Down     key.Binding
	Tab      key.Binding
	Clear    key.Binding
	Generate key.Binding
	SaveCSV  key.Binding
	SaveJSON key.Binding
	SaveYAML key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	QuitMenu: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "clear all columns"),
	),
	Generate: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "generate template"),
	),
	SaveCSV: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "save CSV"),
	),
	SaveJSON: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save JSON"),
	),
	SaveYAML: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "save YAML"),
	),
}

// helpLine renders bindings as "key: desc • key: desc".
func helpLine(bindings ...key.Binding) string {
	var s string
	for i, b := range bindings {
		if i > 0 {
			s += " • "
		}
		h := b.Help()
		s += h.Key + ": " + h.Desc
	}
	return HelpStyle.Render(s)
}
