package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/EmundoT/avrogen/internal/core"
)

// TUICallback implements UICallback for interactive terminal use with styled output.
//
//nolint:revive // Name TUICallback is intentional and descriptive
type TUICallback struct{}

// NewTUICallback creates a new interactive terminal UI callback.
func NewTUICallback() *TUICallback {
	return &TUICallback{}
}

// maxListedFailures bounds the failure list printed by ShowError. The
// generation report keeps the complete list.
const maxListedFailures = 10

// ShowError prints the title and the first line of message. Failure lines
// of an aggregated generation error ("  - file: reason") are printed as a
// list, truncated after maxListedFailures entries.
func (t *TUICallback) ShowError(title, message string) {
	head, failures := splitFailureList(message)
	PrintError(title, head)

	shown := failures[:min(len(failures), maxListedFailures)]
	for _, f := range shown {
		fmt.Println(styleErr.Render("  ✗ " + f))
	}
	if rest := len(failures) - len(shown); rest > 0 {
		fmt.Println(styleDim.Render(fmt.Sprintf("  ... and %d more failure(s); see the generation report", rest)))
	}
}

func splitFailureList(message string) (string, []string) {
	lines := strings.Split(message, "\n")
	head := []string{lines[0]}
	var failures []string
	for _, line := range lines[1:] {
		if item, ok := strings.CutPrefix(line, "  - "); ok {
			failures = append(failures, item)
			continue
		}
		head = append(head, line)
	}
	text := strings.Join(head, "\n")
	if len(failures) > 0 {
		text = strings.TrimSuffix(text, ":")
	}
	return text, failures
}

// ShowSuccess displays a success message with styled output.
func (t *TUICallback) ShowSuccess(message string) {
	PrintSuccess(message)
}

// ShowWarning displays a warning message with styled output.
func (t *TUICallback) ShowWarning(title, message string) {
	PrintWarning(title, message)
}

// AskConfirmation prompts the user for yes/no confirmation.
func (t *TUICallback) AskConfirmation(title, message string) bool {
	var confirm bool
	err := huh.NewConfirm().
		Title(title).
		Description(message).
		Value(&confirm).
		Affirmative("Yes").
		Negative("No").
		Run()
	if err != nil {
		return false
	}
	return confirm
}

// StyleTitle returns a styled title string for terminal output.
func (t *TUICallback) StyleTitle(title string) string {
	return StyleTitle(title)
}

// GetOutputMode returns the output mode (normal for interactive TUI)
func (t *TUICallback) GetOutputMode() core.OutputMode {
	return core.OutputNormal
}

// IsAutoApprove returns whether auto-approve is enabled (always false for interactive mode)
func (t *TUICallback) IsAutoApprove() bool {
	return false
}

// FormatJSON is not used in interactive mode
func (t *TUICallback) FormatJSON(_ core.JSONOutput) error {
	return nil
}

// StartProgress shows a bubbletea progress bar on a terminal and plain
// progress lines otherwise.
func (t *TUICallback) StartProgress(total int, label string) core.ProgressTracker {
	return NewProgressTracker(total, label)
}
