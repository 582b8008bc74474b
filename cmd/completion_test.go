package cmd

import (
	"strings"
	"testing"
)

func TestGenerateBashCompletion(t *testing.T) {
	script := GenerateBashCompletion()

	for _, want := range []string{
		"# bash completion for avrogen",
		"_avrogen_completions()",
		"complete -F _avrogen_completions avrogen",
		"generate)",
		"--workers",
		"--source",
		"bash zsh fish powershell",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("bash completion missing %q", want)
		}
	}
	for _, name := range commandNames() {
		if !strings.Contains(script, name) {
			t.Errorf("Expected command '%s' in bash completion", name)
		}
	}
}

func TestGenerateZshCompletion(t *testing.T) {
	script := GenerateZshCompletion()

	if !strings.HasPrefix(script, "#compdef avrogen") {
		t.Error("Expected zsh compdef header")
	}
	for _, c := range commands {
		want := "'" + c.name + ":" + c.desc + "'"
		if !strings.Contains(script, want) {
			t.Errorf("zsh completion missing %s", want)
		}
	}
	if !strings.Contains(script, "'--output[Generated code directory]:output:_files'") {
		t.Error("value flags should complete file names")
	}
	if !strings.Contains(script, "_arguments '1:shell:(bash zsh fish powershell)'") {
		t.Error("Expected shell list for completion command")
	}
}

func TestGenerateFishCompletion(t *testing.T) {
	script := GenerateFishCompletion()

	if !strings.Contains(script, "complete -c avrogen -f -n '__fish_use_subcommand' -a 'watch' -d 'Regenerate on schema changes'") {
		t.Error("missing watch subcommand")
	}
	if !strings.Contains(script, "complete -c avrogen -n '__fish_seen_subcommand_from init' -l yes -s y -d 'Overwrite without asking'") {
		t.Error("missing init --yes flag")
	}
	if !strings.Contains(script, "-l workers -r -d 'Parallel workers'") {
		t.Error("value flags should be marked -r")
	}
}

func TestGeneratePowerShellCompletion(t *testing.T) {
	script := GeneratePowerShellCompletion()

	if !strings.Contains(script, "Register-ArgumentCompleter -Native -CommandName avrogen") {
		t.Error("Expected PowerShell registration")
	}
	if !strings.Contains(script, "'completion' { $candidates = @('bash', 'zsh', 'fish', 'powershell') }") {
		t.Error("missing shell candidates")
	}
	if !strings.Contains(script, "'generate', 'validate'") {
		t.Error("missing command list")
	}
}

func TestGenerate(t *testing.T) {
	for _, shell := range shells {
		script, err := Generate(shell)
		if err != nil || script == "" {
			t.Errorf("Generate(%q) = %q, %v", shell, script, err)
		}
	}
	if _, err := Generate("tcsh"); err == nil || !strings.Contains(err.Error(), "unsupported shell") {
		t.Errorf("Generate(tcsh) error = %v", err)
	}
}

func TestCommandFlags_NoDuplicates(t *testing.T) {
	for _, c := range commands {
		seen := map[string]bool{}
		for _, w := range c.words() {
			if seen[w] {
				t.Errorf("%s: duplicate flag %s", c.name, w)
			}
			seen[w] = true
		}
	}
}
