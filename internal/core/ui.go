package core

// OutputMode controls how output is displayed
type OutputMode int

// OutputMode constants define available output formatting modes.
const (
	OutputNormal OutputMode = iota // Default: styled output
	OutputQuiet                    // Minimal output
	OutputJSON                     // Structured JSON
)

// NonInteractiveFlags groups all non-interactive options
type NonInteractiveFlags struct {
	Yes  bool       // Auto-approve prompts
	Mode OutputMode // Output formatting mode
}

// JSONOutput is a structured status line for --json mode
type JSONOutput struct {
	Status  string         `json:"status"`            // "success", "error", "warning"
	Message string         `json:"message,omitempty"` // Optional message
	Data    map[string]any `json:"data,omitempty"`    // Command-specific data
	Error   *JSONError     `json:"error,omitempty"`   // Error details
}

// JSONError represents error information in JSON output
type JSONError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ProgressTracker reports per-file progress of a run
type ProgressTracker interface {
	Increment(message string)
	SetTotal(total int)
	Complete()
	Fail(err error)
}

// UICallback handles user interaction during generation
type UICallback interface {
	ShowError(title, message string)
	ShowSuccess(message string)
	ShowWarning(title, message string)
	AskConfirmation(title, message string) bool
	StyleTitle(title string) string

	GetOutputMode() OutputMode
	IsAutoApprove() bool
	FormatJSON(output JSONOutput) error
	StartProgress(total int, label string) ProgressTracker
}

// SilentUICallback is a no-op implementation (for testing/CI)
type SilentUICallback struct{}

func (s *SilentUICallback) ShowError(title, message string)        {}
func (s *SilentUICallback) ShowSuccess(message string)             {}
func (s *SilentUICallback) ShowWarning(title, message string)      {}
func (s *SilentUICallback) AskConfirmation(title, msg string) bool { return false }
func (s *SilentUICallback) StyleTitle(title string) string         { return title }
func (s *SilentUICallback) GetOutputMode() OutputMode              { return OutputNormal }
func (s *SilentUICallback) IsAutoApprove() bool                    { return false }
func (s *SilentUICallback) FormatJSON(output JSONOutput) error     { return nil }
func (s *SilentUICallback) StartProgress(total int, label string) ProgressTracker {
	return silentProgress{}
}

type silentProgress struct{}

func (silentProgress) Increment(string) {}
func (silentProgress) SetTotal(int)     {}
func (silentProgress) Complete()        {}
func (silentProgress) Fail(error)       {}
