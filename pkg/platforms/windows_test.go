// pkg/platforms/windows_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MemoryFS, fake shortcut writer and registry, goldie
// PURPOSE: Test Start Menu folders, shortcuts, activation scripts and associations

package platforms

import (
	"testing"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/platforms/winutil"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userStartMenu = "/win/user/Start Menu/Programs/Demo"
	helloScript   = "/opt/envs/demo/Menu/Hello.bat"
)

func TestWindows_MenuFolder(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, types.PlatformWindows, "Demo", types.ModeUser)

	paths, err := menu.Create()
	require.NoError(t, err)
	assert.Equal(t, []string{userStartMenu}, paths)
	info, err := f.fs.Stat(userStartMenu)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	paths, err = menu.Remove()
	require.NoError(t, err)
	assert.Equal(t, []string{userStartMenu}, paths)
	_, err = f.fs.Stat(userStartMenu)
	assert.Error(t, err)

	// removing again is fine
	_, err = menu.Remove()
	assert.NoError(t, err)
}

func TestWindows_StartFolderUnresolved(t *testing.T) {
	f := newFixture(t)
	deps := f.deps()
	deps.Folders = winutil.StaticResolver{}
	plat, err := For(types.PlatformWindows, deps)
	require.NoError(t, err)

	_, err = plat.NewMenu("Demo", MenuOptions{Prefix: testPrefix, BasePrefix: testBase})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFolderUnresolved))
}

func TestWindows_ShortcutLocations(t *testing.T) {
	raw := `{
		"name": "Hello",
		"command": ["hello.exe"],
		"activate": false,
		"platforms": {"win": {"desktop": true, "quicklaunch": true}}
	}`

	t.Run("user", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), raw)

		paths, err := item.Create()
		require.NoError(t, err)
		expected := []string{
			userStartMenu + "/Hello.lnk",
			"/win/user/Desktop/Hello.lnk",
			"/win/user/Quick Launch/Hello.lnk",
		}
		assert.Equal(t, expected, paths)
		assert.Equal(t, expected, item.Paths())
		for _, path := range expected {
			_, err := f.fs.Stat(path)
			assert.NoError(t, err, path)
		}
	})

	t.Run("system skips quick launch", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeSystem), raw)

		paths, err := item.Create()
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/win/all/Start Menu/Programs/Demo/Hello.lnk",
			"/win/all/Desktop/Hello.lnk",
		}, paths)
	})
}

func TestWindows_ShortcutNameIsAFileName(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser),
		`{"name": "A/B: Tool", "command": ["tool.exe"], "activate": false}`)

	assert.Equal(t, []string{userStartMenu + "/AB Tool.lnk"}, item.Paths())
	_, err := item.Create()
	require.NoError(t, err)
	assert.Equal(t, []string{"AB Tool.lnk"}, listDir(t, f, userStartMenu))
}

func TestWindows_ShortcutFields(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), `{
		"name": "Hello",
		"command": ["{{ PYTHONW }}", "-m", "hello"],
		"icon": "{{ MENU_DIR }}/hello.{{ ICON_EXT }}",
		"description": "Greets",
		"activate": false,
		"platforms": {"win": {}}
	}`)

	_, err := item.Create()
	require.NoError(t, err)
	require.Len(t, f.shortcuts.created, 1)

	s := f.shortcuts.created[0]
	assert.Equal(t, userStartMenu+"/Hello.lnk", s.Path)
	assert.Equal(t, `/opt/envs/demo\pythonw.exe`, s.Target)
	assert.Equal(t, "-m hello", s.Arguments)
	assert.Equal(t, "%HOMEPATH%", s.WorkingDir)
	assert.Equal(t, `/opt/envs/demo\Menu/hello.ico`, s.Icon)
	assert.Equal(t, "Greets", s.Description)
}

func TestWindows_WorkingDirIsCreated(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), `{
		"name": "Hello",
		"command": ["hello.exe"],
		"working_dir": "/win/user/work",
		"activate": false
	}`)

	_, err := item.Create()
	require.NoError(t, err)
	assert.Equal(t, "/win/user/work", f.shortcuts.created[0].WorkingDir)
	info, err := f.fs.Stat("/win/user/work")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWindows_ActivationScript(t *testing.T) {
	f := newFixture(t)
	f.env["CONDA_EXE"] = `C:\conda\Scripts\conda.exe`
	item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), `{
		"name": "Hello",
		"command": ["hello.exe", "--name", "C:/Users/me/file name.txt"],
		"precommand": "set FOO=1",
		"activate": true
	}`)

	paths, err := item.Create()
	require.NoError(t, err)
	assert.Equal(t, []string{userStartMenu + "/Hello.lnk", helloScript}, paths)

	g := goldie.New(t)
	g.Assert(t, "windows_script", []byte(readFile(t, f, helloScript)))
}

func TestWindows_MicromambaScript(t *testing.T) {
	f := newFixture(t)
	f.env["CONDA_EXE"] = `C:\mamba\Library\bin\micromamba.exe`
	item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), `{
		"name": "Hello",
		"command": ["hello.exe"]
	}`)

	_, err := item.Create()
	require.NoError(t, err)
	assert.Contains(t, readFile(t, f, helloScript),
		"(`\"C:\\mamba\\Library\\bin\\micromamba.exe\" shell activate -s cmd.exe \"/opt/envs/demo\"`)")
}

func TestWindows_LaunchCommand(t *testing.T) {
	tests := []struct {
		name       string
		item       string
		target     string
		args       string
		argsWithID string
	}{
		{
			name:       "activated terminal",
			item:       `{"name": "Hello", "command": ["hello.exe"], "activate": true, "terminal": true}`,
			target:     `C:\Windows\system32\cmd.exe`,
			args:       `/D /K "` + helloScript + `"`,
			argsWithID: `/D /K ""` + helloScript + `" "%1""`,
		},
		{
			name:       "activated windowless",
			item:       `{"name": "Hello", "command": ["hello.exe"], "activate": true, "terminal": false}`,
			target:     `C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`,
			args:       `-WindowStyle hidden -Command "start '` + helloScript + `' -WindowStyle hidden"`,
			argsWithID: `-WindowStyle hidden -Command "start '` + helloScript + `' -ArgumentList '%1' -WindowStyle hidden"`,
		},
		{
			name:       "plain command",
			item:       `{"name": "Hello", "command": ["C:/Apps/hello.exe", "--flag", "a b"], "activate": false}`,
			target:     `C:\Apps\hello.exe`,
			args:       `--flag "a b"`,
			argsWithID: `--flag "a b" "%1"`,
		},
		{
			name:       "cmd /K tail is collapsed",
			item:       `{"name": "Hello", "command": ["cmd.exe", "/K", "C:\\Program Files\\app.exe", "my file.txt"], "activate": false}`,
			target:     `cmd.exe`,
			args:       `/K ""C:\Program Files\app.exe" "my file.txt""`,
			argsWithID: `/K ""C:\Program Files\app.exe" "my file.txt" "%1""`,
		},
		{
			name:       "cmd /C without spaces is not collapsed",
			item:       `{"name": "Hello", "command": ["cmd.exe", "/C", "start", "app"], "activate": false}`,
			target:     `cmd.exe`,
			args:       `/C start app`,
			argsWithID: `/C start app "%1"`,
		},
		{
			name:       "target with spaces",
			item:       `{"name": "Hello", "command": ["C:\\Program Files\\app.exe"], "activate": false}`,
			target:     `C:\Program Files\app.exe`,
			args:       ``,
			argsWithID: `"%1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			menu := f.menu(t, types.PlatformWindows, "Demo", types.ModeUser)
			item := f.item(t, types.PlatformWindows, menu, tt.item).(*windowsMenuItem)

			target, args := item.launchCommand(false)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.args, args)

			target, args = item.launchCommand(true)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.argsWithID, args)
		})
	}
}

func TestWindows_SystemRootFromEnvironment(t *testing.T) {
	f := newFixture(t)
	f.env["SystemRoot"] = `D:\WINNT`
	item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser),
		`{"name": "Hello", "command": ["hello.exe"], "activate": true, "terminal": true}`).(*windowsMenuItem)

	target, _ := item.launchCommand(false)
	assert.Equal(t, `D:\WINNT\system32\cmd.exe`, target)
}

func TestWindows_Associations(t *testing.T) {
	raw := `{
		"name": "Hello",
		"command": ["C:/Apps/hello.exe"],
		"icon": "C:/Apps/hello.ico",
		"activate": false,
		"platforms": {"win": {"file_extensions": [".HEL"], "url_protocols": ["hello"]}}
	}`

	t.Run("user", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), raw)

		paths, err := item.Create()
		require.NoError(t, err)
		assert.Equal(t, []string{
			userStartMenu + "/Hello.lnk",
			`HKEY_CURRENT_USER\Software\Classes\Hello.AssocFile.hel`,
			`HKEY_CURRENT_USER\Software\Classes\hello`,
		}, paths)

		assert.Equal(t, registration{"ext", ".HEL", "Hello.AssocFile.hel", `"C:\Apps\hello.exe" "%1"`}, f.registry.entries["ext:.HEL"])
		assert.Equal(t, registration{"protocol", "hello", "Hello.Protocolhello", `"C:\Apps\hello.exe" "%1"`}, f.registry.entries["protocol:hello"])

		_, err = item.Remove()
		require.NoError(t, err)
		assert.Empty(t, f.registry.entries)
	})

	t.Run("system", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeSystem), raw)
		assert.Equal(t, []string{
			"/win/all/Start Menu/Programs/Demo/Hello.lnk",
			`HKEY_LOCAL_MACHINE\Software\Classes\Hello.AssocFile.hel`,
			`HKEY_CLASSES_ROOT\hello`,
		}, item.Paths())
	})

	t.Run("cmd handler keeps the argument inside the collapsed tail", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), `{
			"name": "Hello",
			"command": ["cmd.exe", "/K", "C:\\Program Files\\app.exe"],
			"activate": false,
			"platforms": {"win": {"file_extensions": [".hel"]}}
		}`)

		_, err := item.Create()
		require.NoError(t, err)
		assert.Equal(t, `"cmd.exe" /K ""C:\Program Files\app.exe" "%1""`, f.registry.entries["ext:.hel"].command)
	})

	t.Run("activated handler forwards the argument through the script", func(t *testing.T) {
		f := newFixture(t)
		item := f.item(t, types.PlatformWindows, f.menu(t, types.PlatformWindows, "Demo", types.ModeUser), `{
			"name": "Hello",
			"command": ["hello.exe"],
			"activate": true,
			"terminal": true,
			"platforms": {"win": {"url_protocols": ["hello"]}}
		}`)

		_, err := item.Create()
		require.NoError(t, err)
		assert.Equal(t, `"C:\Windows\system32\cmd.exe" /D /K ""`+helloScript+`" "%1""`, f.registry.entries["protocol:hello"].command)
	})
}

func TestWindows_MenuKeptWhileShortcutsRemain(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, types.PlatformWindows, "Demo", types.ModeUser)
	hello := f.item(t, types.PlatformWindows, menu, `{"name": "Hello", "command": ["hello.exe"], "activate": false}`)
	world := f.item(t, types.PlatformWindows, menu, `{"name": "World", "command": ["world.exe"], "activate": false}`)

	_, err := menu.Create()
	require.NoError(t, err)
	_, err = hello.Create()
	require.NoError(t, err)
	_, err = world.Create()
	require.NoError(t, err)

	_, err = hello.Remove()
	require.NoError(t, err)
	paths, err := menu.Remove()
	require.NoError(t, err)
	assert.Empty(t, paths)
	_, err = f.fs.Stat(userStartMenu + "/World.lnk")
	assert.NoError(t, err)

	_, err = world.Remove()
	require.NoError(t, err)
	paths, err = menu.Remove()
	require.NoError(t, err)
	assert.Equal(t, []string{userStartMenu}, paths)
}

func TestWindows_RoundTrip(t *testing.T) {
	f := newFixture(t)
	before := f.fs.Snapshot()

	menu := f.menu(t, types.PlatformWindows, "Demo", types.ModeUser)
	item := f.item(t, types.PlatformWindows, menu, `{
		"name": "Hello",
		"command": ["{{ PYTHON }}", "-m", "hello"],
		"platforms": {"win": {"desktop": true, "file_extensions": [".hel"], "url_protocols": ["hello"]}}
	}`)

	_, err := menu.Create()
	require.NoError(t, err)
	created, err := item.Create()
	require.NoError(t, err)
	assert.Len(t, created, 5)
	assert.Len(t, f.registry.entries, 2)

	_, err = item.Remove()
	require.NoError(t, err)
	_, err = menu.Remove()
	require.NoError(t, err)

	assert.Equal(t, before, f.fs.Snapshot())
	assert.Empty(t, f.registry.entries)
}

func TestWindows_Idempotence(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, types.PlatformWindows, "Demo", types.ModeUser)
	item := f.item(t, types.PlatformWindows, menu, `{
		"name": "Hello",
		"command": ["{{ PYTHON }}", "-m", "hello"],
		"activate": true,
		"terminal": true,
		"platforms": {"win": {"desktop": true, "file_extensions": [".hel"], "url_protocols": ["hello"]}}
	}`)

	_, err := menu.Create()
	require.NoError(t, err)
	first, err := item.Create()
	require.NoError(t, err)
	once := f.fs.Snapshot()
	registered := f.registry.entries["ext:.hel"]

	_, err = menu.Create()
	require.NoError(t, err)
	second, err := item.Create()
	require.NoError(t, err)

	assert.Equal(t, []string{
		userStartMenu + "/Hello.lnk",
		"/win/user/Desktop/Hello.lnk",
		helloScript,
		`HKEY_CURRENT_USER\Software\Classes\Hello.AssocFile.hel`,
		`HKEY_CURRENT_USER\Software\Classes\hello`,
	}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, item.Paths())
	assert.Equal(t, once, f.fs.Snapshot())
	assert.Len(t, f.registry.entries, 2)
	assert.Equal(t, registered, f.registry.entries["ext:.hel"])
}

func TestWindows_Placeholders(t *testing.T) {
	f := newFixture(t)
	menu := f.menu(t, types.PlatformWindows, "Demo", types.ModeUser)
	p := menu.Renderer().Placeholders()

	assert.Equal(t, `/opt/envs/demo\Scripts`, p["SCRIPTS_DIR"])
	assert.Equal(t, `/opt/conda\python.exe`, p["BASE_PYTHON"])
	assert.Equal(t, `/opt/envs/demo\Library\bin`, p["BIN_DIR"])
	assert.Equal(t, `/opt/envs/demo\Lib\site-packages`, p["SP_DIR"])
	assert.Equal(t, "ico", p["ICON_EXT"])
	assert.Equal(t, "demo", p["ENV_NAME"])

	assert.Equal(t, `C:\data\demo`, menu.Renderer().Render("C:/data/{{ ENV_NAME }}"))
	assert.Equal(t, "/switch", menu.Renderer().Render("/switch"))
}
