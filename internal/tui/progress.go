package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/EmundoT/avrogen/internal/core"
)

// finalRenderDelay lets bubbletea paint the last frame before the caller
// prints anything else.
const finalRenderDelay = 100 * time.Millisecond

// NewProgressTracker picks a bubbletea bar on a terminal and text lines otherwise.
func NewProgressTracker(total int, label string) core.ProgressTracker {
	if total <= 0 {
		return NewNoOpProgressTracker()
	}
	if IsTerminal() {
		return NewBubbleteaProgressTracker(total, label)
	}
	return NewTextProgressTracker(total, label)
}

// ===== Bubbletea model =====

type progressModel struct {
	current int
	total   int
	label   string
	last    string
	done    bool
	err     error
	width   int
}

type (
	progressIncrementMsg struct{ schema string }
	progressSetTotalMsg  struct{ total int }
	progressCompleteMsg  struct{}
	progressFailMsg      struct{ err error }
)

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case progressIncrementMsg:
		m.current++
		m.last = msg.schema
	case progressSetTotalMsg:
		m.total = msg.total
	case progressCompleteMsg:
		m.done = true
		return m, tea.Quit
	case progressFailMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done && m.err != nil {
		return styleErr.Render(fmt.Sprintf("✗ %s: %d/%d files, failed", m.label, m.current, m.total)) + "\n"
	}
	if m.done {
		return styleSuccess.Render(fmt.Sprintf("✓ %s: %d/%d files", m.label, m.current, m.total)) + "\n"
	}
	return fmt.Sprintf("%s\n%s", styleTitle.Render(m.label), m.bar())
}

func (m progressModel) bar() string {
	width := 40
	if m.width > 0 && m.width < 80 {
		width = 20
	}
	filled := 0
	if m.total > 0 {
		filled = min(width, m.current*width/m.total)
	}
	line := fmt.Sprintf("[%s%s] %d/%d", strings.Repeat("█", filled), strings.Repeat("░", width-filled), m.current, m.total)
	if m.last != "" {
		line += " " + styleDim.Render(m.last)
	}
	return line
}

// ===== Bubbletea tracker =====

// BubbleteaProgressTracker renders a live progress bar on a terminal.
type BubbleteaProgressTracker struct {
	program *tea.Program
	done    chan struct{}
}

// NewBubbleteaProgressTracker starts the bar in the background.
func NewBubbleteaProgressTracker(total int, label string) *BubbleteaProgressTracker {
	p := tea.NewProgram(progressModel{total: total, label: label}, tea.WithInput(nil))
	t := &BubbleteaProgressTracker{program: p, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		_, _ = p.Run()
	}()
	return t
}

// Increment advances the bar by one schema file.
func (t *BubbleteaProgressTracker) Increment(schema string) {
	t.program.Send(progressIncrementMsg{schema: schema})
}

// SetTotal changes the expected file count.
func (t *BubbleteaProgressTracker) SetTotal(total int) {
	t.program.Send(progressSetTotalMsg{total: total})
}

// Complete shows the final count and stops the program.
func (t *BubbleteaProgressTracker) Complete() {
	t.program.Send(progressCompleteMsg{})
	t.wait()
}

// Fail marks the run as failed and stops the program.
func (t *BubbleteaProgressTracker) Fail(err error) {
	t.program.Send(progressFailMsg{err: err})
	t.wait()
}

func (t *BubbleteaProgressTracker) wait() {
	select {
	case <-t.done:
	case <-time.After(finalRenderDelay):
		t.program.Quit()
	}
}

// ===== Text tracker =====

// TextProgressTracker prints one line per processed schema file.
type TextProgressTracker struct {
	mu      sync.Mutex
	out     io.Writer
	current int
	total   int
	label   string
}

// NewTextProgressTracker creates a tracker writing to stdout.
func NewTextProgressTracker(total int, label string) *TextProgressTracker {
	return newTextProgressTracker(os.Stdout, total, label)
}

func newTextProgressTracker(out io.Writer, total int, label string) *TextProgressTracker {
	fmt.Fprintf(out, "%s (0/%d)\n", label, total)
	return &TextProgressTracker{out: out, total: total, label: label}
}

// Increment prints the running count and the schema just processed.
func (t *TextProgressTracker) Increment(schema string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	line := fmt.Sprintf("  [%d/%d]", t.current, t.total)
	if schema != "" {
		line += " " + schema
	}
	fmt.Fprintln(t.out, line)
}

// SetTotal changes the expected file count.
func (t *TextProgressTracker) SetTotal(total int) {
	t.mu.Lock()
	t.total = total
	t.mu.Unlock()
}

// Complete prints the final count.
func (t *TextProgressTracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "✓ %s: %d/%d files\n", t.label, t.current, t.total)
}

// Fail prints the failure.
func (t *TextProgressTracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "✗ %s: %v\n", t.label, err)
}

// ===== No-op tracker =====

// NoOpProgressTracker discards progress (quiet and JSON modes).
type NoOpProgressTracker struct{}

// NewNoOpProgressTracker creates a no-op tracker.
func NewNoOpProgressTracker() *NoOpProgressTracker {
	return &NoOpProgressTracker{}
}

// Increment does nothing.
func (t *NoOpProgressTracker) Increment(_ string) {}

// SetTotal does nothing.
func (t *NoOpProgressTracker) SetTotal(_ int) {}

// Complete does nothing.
func (t *NoOpProgressTracker) Complete() {}

// Fail does nothing.
func (t *NoOpProgressTracker) Fail(_ error) {}
