// pkg/ui/ui_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test result, error and message rendering in every format

package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/menuinst/pkg/core"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/arthur-debert/menuinst/pkg/ui"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func installResult() *core.Result {
	return &core.Result{
		Operation: core.OperationInstall,
		Document:  "/opt/envs/demo/Menu/demo.json",
		MenuName:  "Demo",
		Platform:  types.PlatformLinux,
		Mode:      types.ModeUser,
		Paths: []string{
			"/home/user/.local/share/desktop-directories/Demo.directory",
			"/home/user/.local/share/applications/Demo_Hello.desktop",
		},
		Skipped: []string{"Finder helper"},
	}
}

func render(t *testing.T, format ui.Format, fn func(ui.Renderer) error) string {
	t.Helper()
	var buf bytes.Buffer
	r, err := ui.NewRenderer(format, &buf)
	require.NoError(t, err)
	require.NoError(t, fn(r))
	return buf.String()
}

func TestNewRenderer_Unknown(t *testing.T) {
	_, err := ui.NewRenderer(ui.Format(42), &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestAutoOnBufferIsText(t *testing.T) {
	auto := render(t, ui.FormatAuto, func(r ui.Renderer) error { return r.RenderResult(installResult()) })
	text := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderResult(installResult()) })
	assert.Equal(t, text, auto)
}

func TestTextRenderer_Result(t *testing.T) {
	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderResult(installResult()) })

	expected := "Demo installed (linux, user)\n" +
		"  + /home/user/.local/share/desktop-directories/Demo.directory\n" +
		"  + /home/user/.local/share/applications/Demo_Hello.desktop\n" +
		"  skipped Finder helper (not enabled for linux)\n"
	assert.Equal(t, expected, out)
}

func TestTextRenderer_Remove(t *testing.T) {
	res := installResult()
	res.Operation = core.OperationRemove
	res.Skipped = nil

	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderResult(res) })
	assert.Contains(t, out, "Demo removed (linux, user)\n")
	assert.Contains(t, out, "  - /home/user/.local/share/applications/Demo_Hello.desktop\n")
}

func TestTextRenderer_EmptyAndDelegated(t *testing.T) {
	empty := &core.Result{Operation: core.OperationRemove, MenuName: "Demo", Platform: types.PlatformLinux, Mode: types.ModeUser}
	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderResult(empty) })
	assert.Equal(t, "Demo removed (linux, user)\n  nothing to do\n", out)

	delegated := &core.Result{Operation: core.OperationInstall, MenuName: "Demo", Platform: types.PlatformWindows, Mode: types.ModeSystem, Delegated: true}
	out = render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderResult(delegated) })
	assert.Equal(t, "Demo installed by an elevated process (win, system)\n", out)
}

func TestTextRenderer_Batch(t *testing.T) {
	second := installResult()
	second.MenuName = "Tools"
	second.Skipped = nil

	out := render(t, ui.FormatText, func(r ui.Renderer) error {
		return r.RenderResult([]*core.Result{installResult(), second})
	})
	assert.Contains(t, out, "Demo installed")
	assert.Contains(t, out, "\nTools installed")

	out = render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderResult([]*core.Result{}) })
	assert.Equal(t, "No menu documents found\n", out)
}

func TestTextRenderer_Error(t *testing.T) {
	err := errors.New(errors.ErrFolderUnresolved, "cannot resolve folder").
		WithDetail("folder", "start").
		WithDetail("mode", "user")

	out := render(t, ui.FormatText, func(r ui.Renderer) error { return r.RenderError(err) })
	assert.Equal(t, "Error: [FOLDER_UNRESOLVED] cannot resolve folder\n  folder: start\n  mode: user\n", out)
}

func TestTerminalRenderer_Result(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out := render(t, ui.FormatTerminal, func(r ui.Renderer) error { return r.RenderResult(installResult()) })
	assert.Contains(t, out, "Demo installed")
	assert.Contains(t, out, "+ /home/user/.local/share/applications/Demo_Hello.desktop")
}

func TestJSONRenderer(t *testing.T) {
	out := render(t, ui.FormatJSON, func(r ui.Renderer) error { return r.RenderResult(installResult()) })

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "install", decoded["operation"])
	assert.Equal(t, "Demo", decoded["menu_name"])
	assert.Equal(t, "linux", decoded["platform"])
	assert.Len(t, decoded["paths"], 2)
	assert.NotContains(t, decoded, "delegated")

	out = render(t, ui.FormatJSON, func(r ui.Renderer) error {
		return r.RenderError(errors.New(errors.ErrMetadataInvalid, "menu_name is required").WithDetail("path", "demo.json"))
	})
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "METADATA_INVALID", decoded["code"])
	assert.Equal(t, map[string]interface{}{"path": "demo.json"}, decoded["details"])

	out = render(t, ui.FormatJSON, func(r ui.Renderer) error { return r.RenderMessage("done") })
	assert.JSONEq(t, `{"message": "done"}`, out)
}

func TestYAMLRenderer(t *testing.T) {
	out := render(t, ui.FormatYAML, func(r ui.Renderer) error { return r.RenderResult(installResult()) })

	var decoded core.Result
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, *installResult(), decoded)

	out = render(t, ui.FormatYAML, func(r ui.Renderer) error { return r.RenderError(errors.New(errors.ErrElevation, "denied")) })
	assert.Contains(t, out, "code: ELEVATION\n")
	assert.NotContains(t, out, "details")
}
