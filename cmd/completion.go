// Package cmd provides shell completion scripts for avrogen
package cmd

import (
	"fmt"
	"strings"
)

type flag struct {
	long  string
	short string
	desc  string
	value bool // takes an argument
}

type command struct {
	name  string
	desc  string
	flags []flag
}

var (
	outputFlags = []flag{
		{long: "quiet", short: "q", desc: "Only print errors"},
		{long: "json", desc: "JSON output"},
		{long: "verbose", short: "v", desc: "Debug logging"},
		{long: "log-json", desc: "Log as JSON lines"},
		{long: "log-level", desc: "Log level (debug, info, warn, error)", value: true},
		{long: "config", desc: "Configuration file", value: true},
	}
	runFlags = append([]flag{
		{long: "source", desc: "Schema source directory", value: true},
		{long: "output", desc: "Generated code directory", value: true},
		{long: "workers", desc: "Parallel workers", value: true},
	}, outputFlags...)
)

var commands = []command{
	{name: "init", desc: "Write a default avrogen.yml", flags: append([]flag{{long: "yes", short: "y", desc: "Overwrite without asking"}}, outputFlags...)},
	{name: "generate", desc: "Generate Go sources from Avro schemas", flags: runFlags},
	{name: "validate", desc: "Validate Avro schemas", flags: runFlags},
	{name: "watch", desc: "Regenerate on schema changes", flags: runFlags},
	{name: "report", desc: "Show the last generation report", flags: outputFlags},
	{name: "config", desc: "Print the effective configuration", flags: runFlags},
	{name: "completion", desc: "Generate shell completion script"},
	{name: "help", desc: "Show help information"},
}

var shells = []string{"bash", "zsh", "fish", "powershell"}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func (c command) words() []string {
	var out []string
	for _, f := range c.flags {
		out = append(out, "--"+f.long)
		if f.short != "" {
			out = append(out, "-"+f.short)
		}
	}
	return out
}

// GenerateBashCompletion generates bash completion script
func GenerateBashCompletion() string {
	var cases strings.Builder
	for _, c := range commands {
		opts := c.words()
		if c.name == "completion" {
			opts = shells
		}
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n            opts=%q\n            ;;\n", c.name, strings.Join(opts, " "))
	}

	return fmt.Sprintf(`# bash completion for avrogen
_avrogen_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "%s --version" -- "${cur}") )
        return 0
    fi

    case "${COMP_WORDS[COMP_CWORD-1]}" in
        --source|--output|--config)
            COMPREPLY=( $(compgen -f -- "${cur}") )
            return 0
            ;;
    esac

    opts=""
    case "${prev}" in
%s    esac

    COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
    return 0
}

complete -F _avrogen_completions avrogen
`, strings.Join(commandNames(), " "), cases.String())
}

// GenerateZshCompletion generates zsh completion script
func GenerateZshCompletion() string {
	cmdList := make([]string, len(commands))
	var cases strings.Builder
	for i, c := range commands {
		cmdList[i] = fmt.Sprintf("        '%s:%s'", c.name, c.desc)
		if c.name == "completion" {
			fmt.Fprintf(&cases, "                completion)\n                    _arguments '1:shell:(%s)'\n                    ;;\n", strings.Join(shells, " "))
			continue
		}
		if len(c.flags) == 0 {
			continue
		}
		specs := make([]string, 0, len(c.flags))
		for _, f := range c.flags {
			arg := ""
			if f.value {
				arg = ":" + f.long + ":_files"
			}
			specs = append(specs, fmt.Sprintf("'--%s[%s]%s'", f.long, f.desc, arg))
			if f.short != "" {
				specs = append(specs, fmt.Sprintf("'-%s[%s]'", f.short, f.desc))
			}
		}
		fmt.Fprintf(&cases, "                %s)\n                    _arguments \\\n                        %s\n                    ;;\n",
			c.name, strings.Join(specs, " \\\n                        "))
	}

	return fmt.Sprintf(`#compdef avrogen

_avrogen() {
    local -a commands
    commands=(
%s
    )

    _arguments -C \
        '1: :->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
%s            esac
            ;;
    esac
}

_avrogen "$@"
`, strings.Join(cmdList, "\n"), cases.String())
}

// GenerateFishCompletion generates fish completion script
func GenerateFishCompletion() string {
	var lines []string
	for _, c := range commands {
		lines = append(lines, fmt.Sprintf("complete -c avrogen -f -n '__fish_use_subcommand' -a '%s' -d '%s'", c.name, c.desc))
	}
	for _, c := range commands {
		for _, f := range c.flags {
			line := fmt.Sprintf("complete -c avrogen -n '__fish_seen_subcommand_from %s' -l %s", c.name, f.long)
			if f.short != "" {
				line += " -s " + f.short
			}
			if f.value {
				line += " -r"
			}
			lines = append(lines, line+fmt.Sprintf(" -d '%s'", f.desc))
		}
	}
	lines = append(lines, fmt.Sprintf("complete -c avrogen -n '__fish_seen_subcommand_from completion' -f -a '%s'", strings.Join(shells, " ")))
	return strings.Join(lines, "\n") + "\n"
}

// GeneratePowerShellCompletion generates PowerShell completion script
func GeneratePowerShellCompletion() string {
	quote := func(words []string) string {
		q := make([]string, len(words))
		for i, w := range words {
			q[i] = "'" + w + "'"
		}
		return strings.Join(q, ", ")
	}

	var cases strings.Builder
	for _, c := range commands {
		opts := c.words()
		if c.name == "completion" {
			opts = shells
		}
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "            '%s' { $candidates = @(%s) }\n", c.name, quote(opts))
	}

	return fmt.Sprintf(`# PowerShell completion for avrogen
Register-ArgumentCompleter -Native -CommandName avrogen -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $tokens = $commandAst.CommandElements | ForEach-Object { $_.ToString() }
    $candidates = @()

    if ($tokens.Count -le 2 -and $wordToComplete -ne '' -or $tokens.Count -eq 1) {
        $candidates = @(%s)
    }
    else {
        switch ($tokens[1]) {
%s        }
    }

    $candidates | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
    }
}
`, quote(commandNames()), cases.String())
}

// Generate returns the completion script for shell.
func Generate(shell string) (string, error) {
	switch shell {
	case "bash":
		return GenerateBashCompletion(), nil
	case "zsh":
		return GenerateZshCompletion(), nil
	case "fish":
		return GenerateFishCompletion(), nil
	case "powershell":
		return GeneratePowerShellCompletion(), nil
	default:
		return "", fmt.Errorf("unsupported shell %q (supported: %s)", shell, strings.Join(shells, ", "))
	}
}
