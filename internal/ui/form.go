package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"kitbag/internal/prefs"
	"kitbag/internal/service"
)

// fieldKind discriminates how a form field is edited and rendered.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldChoice
	fieldToggle
)

// formField is one editable line in a tool form.
type formField struct {
	label   string
	kind    fieldKind
	input   textinput.Model // fieldText
	choices []string        // fieldChoice
	choice  int
	on      bool // fieldToggle
	hint    string
}

// form holds the editable input state for one tool modal. Forms are built
// fresh when a modal opens and discarded when it closes, so a reopened tool
// always starts clean.
type form struct {
	service service.ID
	fields  []*formField
	focus   int
}

func textField(label, placeholder, hint string, limit int) *formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 48
	return &formField{label: label, kind: fieldText, input: ti, hint: hint}
}

func choiceField(label string, choices []string, selected, hint string) *formField {
	f := &formField{label: label, kind: fieldChoice, choices: choices, hint: hint}
	for i, c := range choices {
		if c == selected {
			f.choice = i
			break
		}
	}
	return f
}

func toggleField(label, hint string) *formField {
	return &formField{label: label, kind: fieldToggle, hint: hint}
}

// newForm builds the form for a tool, seeding choice fields from the user's
// preferences.
func newForm(id service.ID, p prefs.Prefs) *form {
	f := &form{service: id}

	switch id {
	case service.Video:
		f.fields = []*formField{
			textField("URL", "https://...", "absolute http(s) link to the video", 2048),
			choiceField("Quality", service.VideoQualities, p.Quality, "left/right to change"),
		}
	case service.QR:
		f.fields = []*formField{
			textField("Text", "text or link to encode", fmt.Sprintf("up to %d characters", service.MaxQRTextLen), service.MaxQRTextLen),
			textField("Size", "10", "module size in pixels, blank for default", 4),
			textField("Border", "4", "quiet zone width, blank for default", 4),
			choiceField("Error correction", service.ErrorCorrectionLevels, "M", "left/right to change"),
		}
	case service.Speech:
		f.fields = []*formField{
			textField("Text", "text to speak", fmt.Sprintf("up to %d characters", service.MaxSpeechTextLen), service.MaxSpeechTextLen),
			choiceField("Language", service.SpeechLanguages, p.Language, "left/right to change"),
			choiceField("Voice style", service.VoiceStyles, "default", "left/right to change"),
			toggleField("Slow", "space to toggle"),
		}
	case service.Cutout:
		f.fields = []*formField{
			textField("Image path", "~/Pictures/photo.png", "local image file, 10MB max", 1024),
		}
	}

	if len(f.fields) > 0 {
		f.applyFocus()
	}
	return f
}

// applyFocus moves textinput focus to the current field.
func (f *form) applyFocus() {
	for i, fld := range f.fields {
		if fld.kind != fieldText {
			continue
		}
		if i == f.focus {
			fld.input.Focus()
		} else {
			fld.input.Blur()
		}
	}
}

func (f *form) next() {
	f.focus = (f.focus + 1) % len(f.fields)
	f.applyFocus()
}

func (f *form) prev() {
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	f.applyFocus()
}

// handleKey routes a key press to the focused field.
func (f *form) handleKey(msg tea.KeyMsg) tea.Cmd {
	fld := f.fields[f.focus]

	switch fld.kind {
	case fieldChoice:
		switch msg.String() {
		case "left":
			fld.choice = (fld.choice - 1 + len(fld.choices)) % len(fld.choices)
		case "right", " ":
			fld.choice = (fld.choice + 1) % len(fld.choices)
		}
		return nil

	case fieldToggle:
		if s := msg.String(); s == " " || s == "left" || s == "right" {
			fld.on = !fld.on
		}
		return nil

	default:
		var cmd tea.Cmd
		fld.input, cmd = fld.input.Update(msg)
		return cmd
	}
}

// value returns the current text of a field by label.
func (f *form) value(label string) string {
	for _, fld := range f.fields {
		if fld.label != label {
			continue
		}
		switch fld.kind {
		case fieldChoice:
			return fld.choices[fld.choice]
		case fieldToggle:
			if fld.on {
				return "on"
			}
			return "off"
		default:
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

func (f *form) toggled(label string) bool {
	for _, fld := range f.fields {
		if fld.label == label && fld.kind == fieldToggle {
			return fld.on
		}
	}
	return false
}

// input assembles the service input from the current field values. Numeric
// fields must parse; everything else is validated downstream.
func (f *form) input() (service.Input, error) {
	var in service.Input

	switch f.service {
	case service.Video:
		in.URL = f.value("URL")
		in.Quality = f.value("Quality")
	case service.QR:
		in.Text = f.value("Text")
		in.ErrorCorrection = f.value("Error correction")
		size, err := parseCount(f.value("Size"))
		if err != nil {
			return in, fmt.Errorf("size must be a whole number")
		}
		border, err := parseCount(f.value("Border"))
		if err != nil {
			return in, fmt.Errorf("border must be a whole number")
		}
		in.Size = size
		in.Border = border
	case service.Speech:
		in.Text = f.value("Text")
		in.Language = f.value("Language")
		in.Slow = f.toggled("Slow")
		if style := f.value("Voice style"); style != "default" {
			in.VoiceStyle = style
		}
	case service.Cutout:
		in.FilePath = expandHome(f.value("Image path"))
	}

	return in, nil
}

// parseCount parses an optional non-negative numeric field; blank means
// "use the service default".
func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a whole number: %q", v)
	}
	return n, nil
}
