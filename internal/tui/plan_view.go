// Package tui provides the interactive plan approval prompt shown when a
// planning session suspends for human feedback.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kubescout/kubescout/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	sectionNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	objectiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	planBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// RenderPlan renders a plan as styled text, sections in ascending order.
func RenderPlan(plan models.Plan) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Research Plan"))
	b.WriteString("\n")

	for _, s := range plan.Sorted() {
		fmt.Fprintf(&b, "%s %s\n", sectionNumStyle.Render(fmt.Sprintf("%d.", s.Number)), s.Title)
		fmt.Fprintf(&b, "   %s\n", objectiveStyle.Render(s.Objective))
		fmt.Fprintf(&b, "   %s\n", s.Description)
	}

	return planBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
