package ui

import (
	"fmt"
	"strings"

	"kitbag/internal/service"
)

// renderHeader renders the status bar: logo, toolbox reachability, and a
// count of in-flight tools.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	var parts []string
	parts = append(parts, styles.Logo.Render("kitbag"))

	health := m.store.Health()
	switch {
	case health.LastChecked.IsZero():
		parts = append(parts, styles.WarningText.Render("● checking..."))
	case health.Offline():
		parts = append(parts, styles.DangerText.Render("● offline"))
		if health.LastError != nil {
			parts = append(parts, styles.MutedText.Render(truncateMiddle(health.LastError.Error(), 40)))
		}
	case !health.Reachable:
		parts = append(parts, styles.WarningText.Render("● unstable"))
	default:
		parts = append(parts, styles.SuccessText.Render("● online"))
	}

	if m.client != nil {
		parts = append(parts, styles.FaintText.Render(truncateMiddle(m.client.BaseURL(), 36)))
	}

	if working := m.workingCount(); working > 0 {
		parts = append(parts, styles.InfoText.Render(fmt.Sprintf("%d working", working)))
	}

	if !health.LastChecked.IsZero() {
		parts = append(parts, styles.FaintText.Render(health.LastChecked.Format("15:04:05")))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// workingCount counts services with an in-flight request.
func (m Model) workingCount() int {
	count := 0
	for _, id := range service.All() {
		if m.store.Processing(string(id)) {
			count++
		}
	}
	return count
}
