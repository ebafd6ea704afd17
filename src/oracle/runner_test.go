package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/please-build/elm-complete/src/core"
	"github.com/please-build/elm-complete/src/process"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestComSpec(t *testing.T) {
	assert.Equal(t, `D:\tools\tcc.exe`, ComSpec(env(map[string]string{
		"ComSpec":    `D:\tools\tcc.exe`,
		"SystemRoot": `C:\Windows`,
	})))
	assert.Equal(t, `C:\Windows\System32\cmd.exe`, ComSpec(env(map[string]string{"SystemRoot": `C:\Windows`})))
	assert.Equal(t, `C:\Windows\System32\cmd.exe`, ComSpec(env(map[string]string{"SystemRoot": `C:\Windows\`})))
	assert.Equal(t, "cmd.exe", ComSpec(env(nil)))
}

func TestNewRunnerSelection(t *testing.T) {
	e := process.New()
	noenv := env(nil)
	assert.IsType(t, &directRunner{}, NewRunner(e, "linux", core.ShellAuto, noenv))
	assert.IsType(t, &directRunner{}, NewRunner(e, "darwin", core.ShellAuto, noenv))
	assert.IsType(t, &shellRunner{}, NewRunner(e, "windows", core.ShellAuto, noenv))
	assert.IsType(t, &directRunner{}, NewRunner(e, "windows", core.ShellNever, noenv))
	assert.IsType(t, &shellRunner{}, NewRunner(e, "linux", core.ShellAlways, noenv))
}

func TestRunnerCommands(t *testing.T) {
	inv := Invocation{
		Executable: "node_modules/.bin/elm-oracle",
		Args:       []string{`C:\app\src\Main.elm`, "Html.di"},
		Dir:        `C:\app`,
	}
	e := process.New()
	direct := NewRunner(e, "linux", core.ShellAuto, env(nil))
	assert.Equal(t, []string{"node_modules/.bin/elm-oracle", `C:\app\src\Main.elm`, "Html.di"}, direct.Command(inv))
	shell := NewRunner(e, "windows", core.ShellAuto, env(map[string]string{"ComSpec": `C:\Windows\system32\cmd.exe`}))
	assert.Equal(t, []string{`C:\Windows\system32\cmd.exe`, "/c", "node_modules/.bin/elm-oracle", `C:\app\src\Main.elm`, "Html.di"}, shell.Command(inv))
}
