package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kubescout/kubescout/pkg/models"
)

// ApprovalResult is what the human decided about the presented plan.
type ApprovalResult struct {
	// Answer is "start", "cancel", or "revise".
	Answer string
	// Feedback carries the revision request when Answer is "revise".
	Feedback string
}

type approvalMode int

const (
	modeChoosing approvalMode = iota
	modeFeedback
)

var approvalChoices = []struct {
	label  string
	answer string
}{
	{"Start research", "start"},
	{"Revise the plan", "revise"},
	{"Cancel", "cancel"},
}

// ApprovalModel is the bubbletea model for the plan approval prompt.
type ApprovalModel struct {
	message string
	plan    models.Plan

	mode   approvalMode
	cursor int
	input  textinput.Model

	result   *ApprovalResult
	quitting bool
}

// NewApproval creates the approval prompt for a suspended plan.
func NewApproval(message string, plan models.Plan) *ApprovalModel {
	ti := textinput.New()
	ti.Placeholder = "What should change?"
	ti.CharLimit = 500
	ti.Width = 60

	return &ApprovalModel{
		message: message,
		plan:    plan,
		input:   ti,
	}
}

// Init implements tea.Model.
func (m *ApprovalModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ApprovalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.mode == modeFeedback {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if keyMsg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.mode == modeFeedback {
		return m.updateFeedback(keyMsg)
	}
	return m.updateChoosing(keyMsg)
}

func (m *ApprovalModel) updateChoosing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(approvalChoices)-1 {
			m.cursor++
		}
	case "enter":
		answer := approvalChoices[m.cursor].answer
		if answer == "revise" {
			m.mode = modeFeedback
			return m, m.input.Focus()
		}
		m.result = &ApprovalResult{Answer: answer}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *ApprovalModel) updateFeedback(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeChoosing
		m.input.Blur()
		return m, nil
	case "enter":
		feedback := strings.TrimSpace(m.input.Value())
		if feedback == "" {
			return m, nil
		}
		m.result = &ApprovalResult{Answer: "revise", Feedback: feedback}
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *ApprovalModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(RenderPlan(m.plan))
	b.WriteString("\n\n")
	b.WriteString(m.message)
	b.WriteString("\n\n")

	if m.mode == modeFeedback {
		b.WriteString("Describe the revision (Enter to send, Esc to go back):\n")
		b.WriteString(m.input.View())
		return b.String()
	}

	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	for i, choice := range approvalChoices {
		cursor := "  "
		label := choice.label
		if i == m.cursor {
			cursor = "> "
			label = selectedStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, label)
	}
	b.WriteString("\n(up/down to move, Enter to select, Ctrl+C to quit)\n")
	return b.String()
}

// Result returns the decision, or nil if the prompt was aborted.
func (m *ApprovalModel) Result() *ApprovalResult {
	return m.result
}

// RunApproval shows the approval prompt and blocks until the human decides.
func RunApproval(message string, plan models.Plan) (*ApprovalResult, error) {
	model := NewApproval(message, plan)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("approval prompt: %w", err)
	}
	am := final.(*ApprovalModel)
	if am.Result() == nil {
		return nil, fmt.Errorf("approval prompt aborted")
	}
	return am.Result(), nil
}
