// Package tui provides terminal output, prompts and progress display for avrogen.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PrintError displays an error message with styling to the terminal.
func PrintError(title, msg string) {
	fmt.Println(styleErr.Render("✖ " + title))
	fmt.Println(msg)
}

// PrintSuccess displays a success message with styling to the terminal.
func PrintSuccess(msg string) {
	fmt.Println(styleSuccess.Render("✔ " + msg))
}

// PrintInfo displays an informational message to the terminal.
func PrintInfo(msg string) {
	fmt.Println(styleDim.Render(msg))
}

// PrintWarning displays a warning message with styling to the terminal.
func PrintWarning(title, msg string) {
	fmt.Println(styleWarn.Render("! " + title))
	fmt.Println(msg)
}

// StyleTitle applies title styling to the given text string.
func StyleTitle(text string) string {
	return styleTitle.Render(text)
}

// PrintHelp displays usage information for avrogen commands.
func PrintHelp() {
	fmt.Println(styleTitle.Render("avrogen"))
	fmt.Println("Validate Avro schemas (.avsc, .avpr) and generate Go types from them")
	fmt.Println("\nCommands:")
	fmt.Println("  init                Write a default avrogen.yml and create the source directory")
	fmt.Println("  generate [options]  Validate and compile every schema under the source directory")
	fmt.Println("  validate [options]  Check every schema without generating code")
	fmt.Println("  watch [options]     Generate, then regenerate whenever a schema changes")
	fmt.Println("  report              Show the summary of the last generation run")
	fmt.Println("  config              Print the effective configuration")
	fmt.Println("  completion <shell>  Generate shell completion script (bash/zsh/fish/powershell)")
	fmt.Println("\nOptions:")
	fmt.Println("  --source <dir>      Schema source directory (overrides source_dir)")
	fmt.Println("  --output <dir>      Generated code directory (overrides output_dir)")
	fmt.Println("  --config <file>     Configuration file (default: avrogen.yml)")
	fmt.Println("  --workers <N>       Number of parallel workers (default: NumCPU, max 8)")
	fmt.Println("  --yes, -y           Answer yes to every prompt")
	fmt.Println("  --quiet, -q         Only print errors")
	fmt.Println("  --json              Print machine-readable JSON")
	fmt.Println("  --log-level <level> Log level on stderr: debug, info, warn, error (default: warn)")
	fmt.Println("  --verbose, -v       Debug logging on stderr (same as --log-level debug)")
	fmt.Println("  --log-json          Log as JSON lines")
	fmt.Println("\nExamples:")
	fmt.Println("  avrogen init")
	fmt.Println("  avrogen generate")
	fmt.Println("  avrogen generate --source schemas --workers 1")
	fmt.Println("  avrogen validate --json")
	fmt.Println("  avrogen watch")
	fmt.Println("  avrogen completion bash > /etc/bash_completion.d/avrogen")
}
