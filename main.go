// Package main implements the avrogen CLI, which validates Avro schema files
// and generates Go types from them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/EmundoT/avrogen/cmd"
	"github.com/EmundoT/avrogen/internal/core"
	"github.com/EmundoT/avrogen/internal/logging"
	"github.com/EmundoT/avrogen/internal/tui"
	"github.com/EmundoT/avrogen/internal/types"
	"github.com/EmundoT/avrogen/internal/version"
)

// cliOptions holds the flags shared by every command.
type cliOptions struct {
	flags      core.NonInteractiveFlags
	overrides  core.ConfigOverrides
	configPath string
	logLevel   logging.Level
	verbose    bool
	logJSON    bool
	args       []string
}

// parseCommonFlags extracts the shared flags from args. Positional
// arguments are kept in order; unknown flags are rejected.
func parseCommonFlags(args []string) (cliOptions, error) {
	opts := cliOptions{logLevel: logging.LevelWarn}

	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%w: %s requires a value", core.ErrInvalidArguments, name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, inline, hasInline := strings.Cut(arg, "=")
		get := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			return value(&i, name)
		}

		var err error
		switch name {
		case "--yes", "-y":
			opts.flags.Yes = true
		case "--quiet", "-q":
			opts.flags.Mode = core.OutputQuiet
		case "--json":
			opts.flags.Mode = core.OutputJSON
		case "--verbose", "-v":
			opts.verbose = true
		case "--log-json":
			opts.logJSON = true
		case "--source":
			opts.overrides.SourceDir, err = get()
		case "--output":
			opts.overrides.OutputDir, err = get()
		case "--config":
			opts.configPath, err = get()
		case "--log-level":
			var raw string
			if raw, err = get(); err == nil {
				opts.logLevel = logging.ParseLevel(raw)
			}
		case "--workers":
			var raw string
			if raw, err = get(); err == nil {
				n, convErr := strconv.Atoi(raw)
				if convErr != nil || n < 0 {
					return opts, fmt.Errorf("%w: --workers must be a non-negative integer, got %q", core.ErrInvalidArguments, raw)
				}
				opts.overrides.Workers = &n
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("%w: unknown flag %s", core.ErrInvalidArguments, arg)
			}
			opts.args = append(opts.args, arg)
		}
		if err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func (o cliOptions) callback() core.UICallback {
	if o.flags.Yes || o.flags.Mode != core.OutputNormal {
		return tui.NewNonInteractiveTUICallback(o.flags)
	}
	return tui.NewTUICallback()
}

func (o cliOptions) logger() (*zap.Logger, error) {
	level := o.logLevel
	if o.verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Options{Level: level, JSON: o.logJSON})
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		tui.PrintHelp()
		return core.ExitSuccess
	}

	command := args[0]
	switch command {
	case "--help", "-h", "help":
		tui.PrintHelp()
		return core.ExitSuccess
	case "--version":
		fmt.Printf("avrogen %s\n", version.GetVersion())
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
		return core.ExitSuccess
	case "completion":
		return runCompletion(args[1:])
	}

	opts, err := parseCommonFlags(args[1:])
	if err != nil {
		tui.PrintError("Invalid Arguments", err.Error())
		return core.CLIExitCodeForError(err)
	}

	logger, err := opts.logger()
	if err != nil {
		tui.PrintError("Logger", err.Error())
		return core.ExitGeneralError
	}
	defer func() { _ = logger.Sync() }()

	callback := opts.callback()
	manager := core.NewManager(".", opts.configPath, logger)
	manager.SetUICallback(callback)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "init":
		err = runInit(manager, opts, callback)
	case "generate":
		err = runGenerate(ctx, manager, opts, callback)
	case "validate":
		err = runValidate(ctx, manager, opts, callback)
	case "watch":
		err = runWatch(ctx, manager, opts, callback)
	case "report":
		err = runReport(manager, opts)
	case "config":
		err = runConfig(manager, opts)
	default:
		err = fmt.Errorf("%w: unknown command %q (run 'avrogen help')", core.ErrInvalidArguments, command)
	}
	if err == nil {
		return core.ExitSuccess
	}
	return fail(opts, callback, command, err)
}

// fail reports err in the active output mode and returns the exit code.
func fail(opts cliOptions, callback core.UICallback, command string, err error) int {
	if opts.flags.Mode == core.OutputJSON {
		return core.EmitCLIError(err)
	}
	title := strings.ToUpper(command[:1]) + command[1:] + " Failed"
	callback.ShowError(title, err.Error())
	return core.CLIExitCodeForError(err)
}

func runCompletion(args []string) int {
	if len(args) == 0 {
		tui.PrintError("Usage", "avrogen completion <bash|zsh|fish|powershell>")
		return core.ExitInvalidArguments
	}
	script, err := cmd.Generate(args[0])
	if err != nil {
		tui.PrintError("Unsupported Shell", err.Error())
		return core.ExitInvalidArguments
	}
	fmt.Print(script)
	return core.ExitSuccess
}

func runInit(manager *core.Manager, opts cliOptions, callback core.UICallback) error {
	if err := manager.Init(); err != nil {
		return err
	}
	if opts.flags.Mode == core.OutputJSON {
		core.EmitCLISuccess(map[string]string{"config": manager.ConfigPath()})
		return nil
	}
	callback.ShowSuccess("Initialized " + manager.ConfigPath())
	return nil
}

func runGenerate(ctx context.Context, manager *core.Manager, opts cliOptions, callback core.UICallback) error {
	cfg, err := manager.LoadConfig(opts.overrides)
	if err != nil {
		return err
	}
	report, err := manager.Generate(ctx, cfg)
	if report != nil {
		printReport(opts, report.Render(), err)
	}
	if err != nil {
		if report != nil {
			printReportFiles(opts, report.ReportFiles())
		}
		return err
	}
	if opts.flags.Mode != core.OutputJSON {
		callback.ShowSuccess(fmt.Sprintf("Generated %d source file(s)", report.Count()))
	}
	printReportFiles(opts, report.ReportFiles())
	return nil
}

func runValidate(ctx context.Context, manager *core.Manager, opts cliOptions, callback core.UICallback) error {
	cfg, err := manager.LoadConfig(opts.overrides)
	if err != nil {
		return err
	}
	summary, err := manager.Validate(ctx, cfg)
	if err != nil {
		return err
	}
	switch opts.flags.Mode {
	case core.OutputJSON:
		core.EmitCLISuccess(summary)
	case core.OutputNormal:
		fmt.Println(tui.RenderValidation(summary))
		callback.ShowSuccess("All schemas are valid")
	}
	return nil
}

func runWatch(ctx context.Context, manager *core.Manager, opts cliOptions, callback core.UICallback) error {
	cfg, err := manager.LoadConfig(opts.overrides)
	if err != nil {
		return err
	}
	if opts.flags.Mode == core.OutputNormal {
		fmt.Println(callback.StyleTitle("Watching " + cfg.SourceDir + " (Ctrl+C to stop)"))
	}
	err = manager.Watch(ctx, cfg, func(report *core.GenerationReport, err error) {
		if report == nil {
			return
		}
		if opts.flags.Mode == core.OutputJSON {
			if err != nil {
				core.EmitCLIError(err)
				return
			}
			core.EmitCLISuccess(report.Render())
			return
		}
		printReport(opts, report.Render(), err)
		printReportFiles(opts, report.ReportFiles())
	})
	if err == nil && opts.flags.Mode == core.OutputNormal {
		tui.PrintInfo("Stopped watching")
	}
	return err
}

func runReport(manager *core.Manager, opts cliOptions) error {
	cfg, err := manager.LoadConfig(opts.overrides)
	if err != nil {
		return err
	}
	summary, err := manager.LastReport(cfg)
	if err != nil {
		return err
	}
	printReport(opts, summary, nil)
	return nil
}

func runConfig(manager *core.Manager, opts cliOptions) error {
	cfg, err := manager.LoadConfig(opts.overrides)
	if err != nil {
		return err
	}
	if opts.flags.Mode == core.OutputJSON {
		core.EmitCLISuccess(cfg)
		return nil
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

// printReportFiles tells the user where the reports went. JSON output
// carries the paths in the summary instead.
func printReportFiles(opts cliOptions, paths []string) {
	if opts.flags.Mode != core.OutputNormal || len(paths) == 0 {
		return
	}
	tui.PrintInfo(tui.RenderReportFiles(paths))
}

// printReport writes a run summary in the active output mode. A failed run
// in JSON mode is left to the error response.
func printReport(opts cliOptions, summary types.ReportSummary, runErr error) {
	switch opts.flags.Mode {
	case core.OutputQuiet:
		return
	case core.OutputJSON:
		if runErr == nil {
			core.EmitCLISuccess(summary)
		}
		return
	}
	if tui.IsTerminal() && !opts.flags.Yes {
		fmt.Println(tui.RenderSummary(summary))
	} else {
		fmt.Println(tui.RenderPlainSummary(summary))
	}
}
