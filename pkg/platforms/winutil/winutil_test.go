// pkg/platforms/winutil/winutil_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None (OS calls are replaced by fakes)
// PURPOSE: Test folder fallback policy, shortcut scripts and registry key layout

package winutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	calls [][]string
	err   error
}

func (r *recordingRunner) Run(name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, r.err
}

func (r *recordingRunner) LookPath(name string) (string, error) {
	return name, nil
}

func TestPolicyResolver(t *testing.T) {
	folders := StaticResolver{
		types.ModeUser: {
			FolderStart:       `C:\Users\me\Start Menu\Programs`,
			FolderQuickLaunch: `C:\Users\me\Quick Launch`,
			FolderProfile:     `C:\Users\me`,
		},
		types.ModeSystem: {
			FolderStart: `C:\ProgramData\Start Menu\Programs`,
		},
	}

	t.Run("direct hit", func(t *testing.T) {
		dir, err := folders.Resolve(types.ModeSystem, FolderStart)
		require.NoError(t, err)
		assert.Equal(t, `C:\ProgramData\Start Menu\Programs`, dir)
	})

	t.Run("quick launch is user only", func(t *testing.T) {
		_, err := folders.Resolve(types.ModeSystem, FolderQuickLaunch)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFolderUnresolved))

		dir, err := folders.Resolve(types.ModeUser, FolderQuickLaunch)
		require.NoError(t, err)
		assert.Equal(t, `C:\Users\me\Quick Launch`, dir)
	})

	t.Run("documents fall back to the profile", func(t *testing.T) {
		dir, err := folders.Resolve(types.ModeSystem, FolderDocuments)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(`C:\Users\me`, "Documents"), dir)
	})

	t.Run("other folders fail closed", func(t *testing.T) {
		_, err := folders.Resolve(types.ModeSystem, FolderDesktop)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFolderUnresolved))
	})
}

func TestShortcutScript(t *testing.T) {
	script := ShortcutScript(Shortcut{
		Path:        `C:\Start\Bob's App.lnk`,
		Target:      `C:\Windows\system32\cmd.exe`,
		Arguments:   `/D /K "C:\env\Menu\App.bat"`,
		WorkingDir:  "%HOMEPATH%",
		Icon:        `C:\env\Menu\app.ico`,
		Description: "",
	})

	assert.Contains(t, script, `$WshShell.CreateShortcut('C:\Start\Bob''s App.lnk')`)
	assert.Contains(t, script, `$Shortcut.TargetPath = 'C:\Windows\system32\cmd.exe'`)
	assert.Contains(t, script, `$Shortcut.Arguments = '/D /K "C:\env\Menu\App.bat"'`)
	assert.Contains(t, script, `$Shortcut.WorkingDirectory = '%HOMEPATH%'`)
	assert.Contains(t, script, `$Shortcut.IconLocation = 'C:\env\Menu\app.ico'`)
	assert.NotContains(t, script, "Description")
	assert.True(t, strings.HasSuffix(script, "$Shortcut.Save()"))
}

func TestPowerShellShortcuts_Create(t *testing.T) {
	runner := &recordingRunner{}
	writer := NewShortcutWriter(runner)

	require.NoError(t, writer.Create(Shortcut{Path: `C:\x.lnk`, Target: `C:\x.exe`}))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "powershell", runner.calls[0][0])
	assert.Contains(t, runner.calls[0], "-NonInteractive")

	runner.err = errors.New(errors.ErrCommandFailed, "boom")
	err := writer.Create(Shortcut{Path: `C:\y.lnk`, Target: `C:\y.exe`})
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}

func TestRegistryPaths(t *testing.T) {
	assert.Equal(t, `Software\Classes\.txt\OpenWithProgids`, ExtensionProgidsPath(".TXT"))
	assert.Equal(t, `Software\Classes\.csv\OpenWithProgids`, ExtensionProgidsPath("csv"))
	assert.Equal(t, `Software\Classes\Demo.AssocFile.txt`, ProgidPath("Demo.AssocFile.txt"))
	assert.Equal(t, `Software\Classes\demo`, ProtocolPath("demo", types.ModeUser))
	assert.Equal(t, `demo`, ProtocolPath("demo", types.ModeSystem))
	assert.Equal(t, "URL:Demo Protocol", ProtocolTitle("demo"))
	assert.Equal(t, "_menuinst_", TraceValueName)
}
