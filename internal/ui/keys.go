package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Tool selection
	OpenVideo  key.Binding
	OpenQR     key.Binding
	OpenSpeech key.Binding
	OpenCutout key.Binding

	// Form
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	// Result
	Save    key.Binding
	DoAgain key.Binding

	// Notices
	Dismiss key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close tool"),
		),

		// Tool selection
		OpenVideo: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Video download"),
		),
		OpenQR: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "QR code"),
		),
		OpenSpeech: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Text to speech"),
		),
		OpenCutout: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Background removal"),
		),

		// Form
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Submit"),
		),

		// Result
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save to downloads"),
		),
		DoAgain: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Do again"),
		),

		// Notices
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Dismiss notice"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.OpenVideo, k.OpenQR, k.OpenSpeech, k.OpenCutout},
		{k.NextField, k.PrevField, k.Submit, k.Escape},
		{k.Save, k.DoAgain, k.Dismiss},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
