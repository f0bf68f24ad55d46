package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the browse mode. Search and form mode use
// the same Submit, Cancel and Up/Down bindings.
type keyMap struct {
	Up   key.Binding
	Down key.Binding

	PanNorth key.Binding
	PanSouth key.Binding
	PanWest  key.Binding
	PanEast  key.Binding
	PickHere key.Binding

	Open    key.Binding
	Cancel  key.Binding
	Submit  key.Binding
	NextTab key.Binding

	Refresh       key.Binding
	CycleStatus   key.Binding
	CycleCategory key.Binding
	RadiusUp      key.Binding
	RadiusDown    key.Binding
	Search        key.Binding
	Report        key.Binding
	Retry         key.Binding
	ToggleTheme   key.Binding
	NextTourStep  key.Binding
	SkipTour      key.Binding

	// Form mode category picker.
	PrevCategory key.Binding
	NextCategory key.Binding

	Quit key.Binding
}

var defaultKeys = keyMap{
	Up:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),

	PanNorth: key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "pan north")),
	PanSouth: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "pan south")),
	PanWest:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "pan west")),
	PanEast:  key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "pan east")),
	PickHere: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pick location")),

	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Submit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "submit")),
	NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),

	Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	CycleStatus:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "status filter")),
	CycleCategory: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "category filter")),
	RadiusUp:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "wider")),
	RadiusDown:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrower")),
	Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "address")),
	Report:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "report")),
	Retry:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "retry")),
	ToggleTheme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	NextTourStep:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "next tip")),
	SkipTour:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("C-x", "skip tips")),

	PrevCategory: key.NewBinding(key.WithKeys("ctrl+left", "ctrl+p"), key.WithHelp("C-p", "prev category")),
	NextCategory: key.NewBinding(key.WithKeys("ctrl+right", "ctrl+n"), key.WithHelp("C-n", "next category")),

	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) browseHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.PanNorth, k.PickHere, k.Refresh, k.CycleStatus,
		k.CycleCategory, k.RadiusUp, k.Search, k.Report, k.ToggleTheme, k.Quit}
}
