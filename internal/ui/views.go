package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kitbag/internal/service"
	"kitbag/internal/session"
)

// phaseLabel maps a lifecycle phase to its badge label.
func phaseLabel(p service.Phase) string {
	switch p {
	case service.PhaseLoading:
		return "working"
	case service.PhaseRendered:
		return "ready"
	case service.PhaseErrorRendered:
		return "failed"
	default:
		return "idle"
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	active := service.ID(m.store.ActiveModal())
	if active != "" {
		b.WriteString(m.renderModal(active))
	} else {
		b.WriteString(m.renderDashboard())
	}

	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(active))

	return b.String()
}

// renderDashboard lists the four tools with their phase badges.
func (m Model) renderDashboard() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Tools"))
	b.WriteString("\n\n")

	for i, id := range service.All() {
		phase := m.orch.Phase(id)
		label := phaseLabel(phase)

		b.WriteString(styles.AccentText.Render(fmt.Sprintf("[%d]", i+1)))
		b.WriteString(" ")
		b.WriteString(styles.Text.Width(22).Render(id.Title()))
		b.WriteString(" ")
		b.WriteString(styles.PhaseStyle(label).Render(label))

		if detail := m.dashboardDetail(id, phase); detail != "" {
			b.WriteString("  ")
			b.WriteString(styles.MutedText.Render(detail))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Press a number to open a tool."))

	return styles.Panel.Width(m.contentWidth()).Render(b.String())
}

// dashboardDetail summarizes a tool's stored result for the dashboard row.
func (m Model) dashboardDetail(id service.ID, phase service.Phase) string {
	res := m.store.Result(string(id))
	if res == nil {
		return ""
	}
	switch phase {
	case service.PhaseRendered:
		if res.Handle != nil {
			return fmt.Sprintf("%s (%s)", res.Handle.Filename(), formatBytes(res.Handle.Size()))
		}
	case service.PhaseErrorRendered:
		return truncateMiddle(res.Message, 48)
	}
	return ""
}

// renderModal renders the active tool's panel for its current phase.
func (m Model) renderModal(id service.ID) string {
	var content string
	switch m.orch.Phase(id) {
	case service.PhaseLoading:
		content = m.renderLoading(id)
	case service.PhaseRendered:
		content = m.renderResult(id, m.store.Result(string(id)))
	case service.PhaseErrorRendered:
		content = m.renderError(id, m.store.Result(string(id)))
	default:
		content = m.renderForm(id)
	}

	styles := m.theme.Styles()
	return styles.PanelFocus.Width(m.contentWidth()).Render(content)
}

// renderForm renders the editable input fields of a tool.
func (m Model) renderForm(id service.ID) string {
	styles := m.theme.Styles()
	f := m.forms[id]
	if f == nil {
		return styles.MutedText.Render("Preparing form...")
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(id.Title()))
	b.WriteString("\n\n")

	for i, fld := range f.fields {
		marker := "  "
		labelStyle := styles.MutedText
		if i == f.focus {
			marker = styles.AccentText.Render("> ")
			labelStyle = styles.AccentText
		}
		b.WriteString(marker)
		b.WriteString(labelStyle.Width(18).Render(fld.label))

		switch fld.kind {
		case fieldChoice:
			for j, c := range fld.choices {
				if j > 0 {
					b.WriteString(styles.FaintText.Render(" · "))
				}
				if j == fld.choice {
					b.WriteString(styles.SuccessText.Render(c))
				} else {
					b.WriteString(styles.MutedText.Render(c))
				}
			}
		case fieldToggle:
			b.WriteString(ternary(fld.on,
				styles.SuccessText.Render("on"),
				styles.MutedText.Render("off")))
		default:
			b.WriteString(fld.input.View())
		}
		b.WriteString("\n")
	}

	if hint := f.fields[f.focus].hint; hint != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render(hint))
	}

	return b.String()
}

// renderLoading renders the in-flight state.
func (m Model) renderLoading(id service.ID) string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(id.Title()))
	b.WriteString("\n\n")
	b.WriteString(m.spin.View())
	b.WriteString(styles.InfoText.Render(" Working..."))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Retries happen automatically if the toolbox is slow to answer."))
	return b.String()
}

// renderResult renders a successful outcome.
func (m Model) renderResult(id service.ID, res *session.Result) string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(id.Title()))
	b.WriteString("  ")
	b.WriteString(styles.PhaseStyle("ready").Render("ready"))
	b.WriteString("\n\n")

	if res == nil || res.Handle == nil {
		b.WriteString(styles.MutedText.Render("No result on hand."))
		return b.String()
	}

	b.WriteString(styles.MutedText.Render("File  "))
	b.WriteString(styles.Text.Render(res.Handle.Filename()))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Type  "))
	b.WriteString(styles.Text.Render(res.Handle.MIME()))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Size  "))
	b.WriteString(styles.Text.Render(formatBytes(res.Handle.Size())))
	b.WriteString("\n")

	if res.Original != nil {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Original  "))
		b.WriteString(styles.Text.Render(fmt.Sprintf("%s (%s)",
			res.Original.Filename(), formatBytes(res.Original.Size()))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("s save to downloads · r do again · esc close"))
	return b.String()
}

// renderError renders a failed outcome.
func (m Model) renderError(id service.ID, res *session.Result) string {
	styles := m.theme.Styles()

	message := "something went wrong"
	if res != nil && res.Message != "" {
		message = res.Message
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(id.Title()))
	b.WriteString("  ")
	b.WriteString(styles.PhaseStyle("failed").Render("failed"))
	b.WriteString("\n\n")
	b.WriteString(styles.DangerText.Render(message))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("r try again · esc close"))
	return b.String()
}

// renderToasts renders the active notices, newest last.
func (m Model) renderToasts() string {
	active := m.notices.Active()
	if len(active) == 0 {
		return ""
	}

	styles := m.theme.Styles()
	lines := make([]string, 0, len(active))
	for _, n := range active {
		var style lipgloss.Style
		switch n.Kind.String() {
		case "success":
			style = styles.SuccessText
		case "error":
			style = styles.DangerText
		case "warning":
			style = styles.WarningText
		default:
			style = styles.InfoText
		}
		lines = append(lines, style.Render("▍ ")+styles.Text.Render(truncateMiddle(n.Message, m.contentWidth()-4)))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the command bar for the current context.
func (m Model) renderFooter(active service.ID) string {
	styles := m.theme.Styles()

	var hints string
	if active == "" {
		hints = "1-4 open tool · d dismiss notice · T theme · ? help · q quit"
	} else {
		switch m.orch.Phase(active) {
		case service.PhaseIdle:
			hints = "tab next field · enter submit · esc close"
		case service.PhaseLoading:
			hints = "esc close (result lands in the background)"
		case service.PhaseRendered:
			hints = "s save · r do again · esc close"
		default:
			hints = "r try again · esc close"
		}
	}

	return styles.Footer.Width(m.width).Render(hints)
}

// contentWidth bounds panel width to the terminal.
func (m Model) contentWidth() int {
	w := m.width - 2
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}
