package platforms

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/cmdline"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/platforms/winutil"
	"github.com/arthur-debert/menuinst/pkg/render"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// defaultWorkingDir is expanded by the shell when the shortcut starts
const defaultWorkingDir = "%HOMEPATH%"

type windowsPlatform struct {
	deps Deps
}

func (p *windowsPlatform) ID() types.Platform { return types.PlatformWindows }

// NewMenu implements Platform. The Start Menu folder must resolve.
func (p *windowsPlatform) NewMenu(name string, opts MenuOptions) (Menu, error) {
	base, err := newBaseMenu(p.deps, "platforms.windows", name, opts)
	if err != nil {
		return nil, err
	}
	base.finish(windowsPlaceholders(base), render.WindowsSeparators)

	start, err := p.deps.Folders.Resolve(base.mode, winutil.FolderStart)
	if err != nil {
		return nil, err
	}
	return &windowsMenu{
		baseMenu: base,
		location: filepath.Join(start, fileName(base.name)),
	}, nil
}

// NewMenuItem implements Platform
func (p *windowsPlatform) NewMenuItem(menu Menu, md *schema.Metadata) (MenuItem, error) {
	m, ok := menu.(*windowsMenu)
	if !ok {
		return nil, wrongMenu(types.PlatformWindows, menu)
	}
	name := m.itemName(md)
	return &windowsMenuItem{
		menu: m,
		md:   md,
		name: name,
		slug: m.renderer.RenderSlug(name),
	}, nil
}

func windowsPlaceholders(b *baseMenu) map[string]string {
	p := b.commonPlaceholders()
	p["SCRIPTS_DIR"] = winJoin(b.prefix, "Scripts")
	p["PYTHON"] = winJoin(b.prefix, "python.exe")
	p["PYTHONW"] = winJoin(b.prefix, "pythonw.exe")
	p["BASE_PYTHON"] = winJoin(b.basePrefix, "python.exe")
	p["BASE_PYTHONW"] = winJoin(b.basePrefix, "pythonw.exe")
	p["MENU_DIR"] = winJoin(b.prefix, "Menu")
	p["BIN_DIR"] = winJoin(b.prefix, "Library", "bin")
	p["SP_DIR"] = winJoin(b.prefix, "Lib", "site-packages")
	p["ICON_EXT"] = "ico"
	return p
}

// winJoin joins with backslashes whatever the host OS
func winJoin(root string, parts ...string) string {
	return strings.TrimRight(root, `/\`) + `\` + strings.Join(parts, `\`)
}

// windowsMenu is a folder under the Start Menu
type windowsMenu struct {
	*baseMenu
	location string
}

// Create implements Menu
func (m *windowsMenu) Create() ([]string, error) {
	m.logger.Debug().Str("path", m.location).Msg("Creating Start Menu folder")
	if err := mkdirAll(m.deps.FS, m.location); err != nil {
		return nil, err
	}
	return []string{m.location}, nil
}

// Remove implements Menu. The folder stays while shortcuts remain in it.
func (m *windowsMenu) Remove() ([]string, error) {
	entries, err := m.deps.FS.ReadDir(m.location)
	if err != nil {
		return []string{m.location}, nil
	}
	for _, entry := range entries {
		if strings.EqualFold(filepath.Ext(entry.Name()), ".lnk") {
			m.logger.Info().Str("shortcut", entry.Name()).Msg("Start Menu folder still in use, keeping it")
			return nil, nil
		}
	}
	m.logger.Debug().Str("path", m.location).Msg("Removing Start Menu folder")
	if err := m.deps.FS.RemoveAll(m.location); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRemove, "cannot remove %s", m.location).WithDetail("path", m.location)
	}
	return []string{m.location}, nil
}

func (m *windowsMenu) systemRoot() string {
	if root := m.deps.Getenv("SystemRoot"); root != "" {
		return root
	}
	return `C:\Windows`
}

// windowsMenuItem owns the .lnk files of one item and, when declared,
// its activation script and registry associations
type windowsMenuItem struct {
	menu *windowsMenu
	md   *schema.Metadata
	name string
	slug string
}

func (i *windowsMenuItem) Name() string { return i.name }

// shortcutPaths lists the .lnk files: the Start Menu always, Desktop and
// Quick Launch when requested and resolvable
func (i *windowsMenuItem) shortcutPaths() []string {
	m := i.menu
	filename := fileName(i.name) + ".lnk"
	paths := []string{filepath.Join(m.location, filename)}

	optional := []struct {
		wanted bool
		folder winutil.Folder
	}{
		{i.md.Desktop, winutil.FolderDesktop},
		{i.md.Quicklaunch, winutil.FolderQuickLaunch},
	}
	for _, o := range optional {
		if !o.wanted {
			continue
		}
		dir, err := m.deps.Folders.Resolve(m.mode, o.folder)
		if err != nil {
			m.logger.Warn().Err(err).Str("folder", string(o.folder)).Msg("Skipping shortcut location")
			continue
		}
		paths = append(paths, filepath.Join(dir, filename))
	}
	return paths
}

// scriptPath is the batch file that activates the environment
func (i *windowsMenuItem) scriptPath() string {
	return filepath.Join(i.menu.prefix, "Menu", i.slug+".bat")
}

// Paths implements MenuItem. Registry keys are listed after files.
func (i *windowsMenuItem) Paths() []string {
	paths := i.shortcutPaths()
	if i.md.Activate {
		paths = append(paths, i.scriptPath())
	}
	return append(paths, i.registryKeys()...)
}

// Create implements MenuItem
func (i *windowsMenuItem) Create() ([]string, error) {
	m := i.menu
	logger := m.logger.With().Str("item", i.name).Logger()

	if err := m.runPrecreate(i.md, "cmd", "/D", "/C"); err != nil {
		return nil, err
	}

	if i.md.Activate {
		script := i.scriptPath()
		if err := mkdirAll(m.deps.FS, filepath.Dir(script)); err != nil {
			return nil, err
		}
		if err := writeFile(m.deps.FS, script, []byte(i.script()), 0644); err != nil {
			return nil, err
		}
	}

	target, args := i.launchCommand(false)
	workingDir := m.renderer.Render(i.md.WorkingDir)
	if workingDir == "" {
		workingDir = defaultWorkingDir
	} else if !strings.Contains(workingDir, "%") {
		if err := mkdirAll(m.deps.FS, workingDir); err != nil {
			return nil, err
		}
	}

	for _, path := range i.shortcutPaths() {
		logger.Debug().Str("path", path).Msg("Creating shortcut")
		if err := mkdirAll(m.deps.FS, filepath.Dir(path)); err != nil {
			return nil, err
		}
		err := m.deps.Shortcuts.Create(winutil.Shortcut{
			Path:        path,
			Target:      target,
			Arguments:   args,
			WorkingDir:  workingDir,
			Icon:        m.renderer.Render(i.md.Icon),
			Description: m.renderer.Render(i.md.Description),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := i.registerAssociations(); err != nil {
		return nil, err
	}
	return i.Paths(), nil
}

// Remove implements MenuItem
func (i *windowsMenuItem) Remove() ([]string, error) {
	m := i.menu
	for _, path := range i.shortcutPaths() {
		if err := removeFile(m.deps.FS, path); err != nil {
			return nil, err
		}
	}
	if i.md.Activate {
		if err := removeFile(m.deps.FS, i.scriptPath()); err != nil {
			return nil, err
		}
	}
	if err := i.unregisterAssociations(); err != nil {
		return nil, err
	}
	return i.Paths(), nil
}

// launchCommand returns the shortcut target and its argument string.
// With withArg the command also forwards "%1", for registry handlers.
func (i *windowsMenuItem) launchCommand(withArg bool) (string, string) {
	m := i.menu
	script := i.scriptPath()

	switch {
	case i.md.Activate && i.md.Terminal:
		inner := `"` + script + `"`
		if withArg {
			// cmd strips the outermost quotes of a /K string with more than two
			inner = `"` + inner + ` "%1""`
		}
		return winJoin(m.systemRoot(), "system32", "cmd.exe"), "/D /K " + inner

	case i.md.Activate:
		start := "start '" + script + "'"
		if withArg {
			start += " -ArgumentList '%1'"
		}
		args := cmdline.WinJoinArgs([]string{"-WindowStyle", "hidden", "-Command", start + " -WindowStyle hidden"})
		return winJoin(m.systemRoot(), "System32", "WindowsPowerShell", "v1.0", "powershell.exe"), args

	default:
		command := m.renderer.RenderList(i.md.Command)
		if len(command) == 0 {
			return "", ""
		}
		quoted := cmdline.WinQuoteArgs(command)
		args := quoted[1:]
		if withArg {
			if last := len(args) - 1; cmdline.CollapsesCmdTail(command) {
				args[last] = strings.TrimSuffix(args[last], `"`) + ` "%1""`
			} else {
				args = append(args, `"%1"`)
			}
		}
		return strings.Trim(quoted[0], `"`), strings.Join(args, " ")
	}
}

// registryCommand is the full command line stored under shell\open\command
func (i *windowsMenuItem) registryCommand() string {
	target, args := i.launchCommand(true)
	return `"` + strings.Trim(target, `"`) + `" ` + args
}

// script is the CRLF batch file run by activated shortcuts
func (i *windowsMenuItem) script() string {
	m := i.menu
	lines := []string{
		"@ECHO OFF",
		":: Script generated by menuinst",
	}
	if pre := m.renderer.Render(i.md.Precommand); pre != "" {
		lines = append(lines, pre)
	}

	exe := m.resolveCondaExe(windowsExeCandidates)
	activate := "shell.cmd.exe activate"
	if m.isMicromamba(exe) {
		activate = "shell activate -s cmd.exe"
	}
	activator := `"` + exe + `" ` + activate + ` "` + m.prefix + `"`
	lines = append(lines,
		"@SETLOCAL ENABLEDELAYEDEXPANSION",
		`@FOR /F "usebackq tokens=*" %%i IN (`+"`"+activator+"`"+`) do set "ACTIVATOR=%%i"`,
		"@CALL %ACTIVATOR%",
		":: User command",
		cmdline.WinJoinArgs(m.renderer.RenderList(i.md.Command))+" %*",
	)
	return strings.Join(lines, "\r\n") + "\r\n"
}

func (i *windowsMenuItem) extensionID(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return i.slug + ".AssocFile" + strings.ToLower(ext)
}

func (i *windowsMenuItem) protocolID(protocol string) string {
	return i.slug + ".Protocol" + protocol
}

func hiveName(mode types.Mode) string {
	if mode == types.ModeSystem {
		return "HKEY_LOCAL_MACHINE"
	}
	return "HKEY_CURRENT_USER"
}

// registryKeys lists the keys owned by this item's associations
func (i *windowsMenuItem) registryKeys() []string {
	mode := i.menu.mode
	var keys []string
	for _, ext := range i.md.FileExtensions {
		keys = append(keys, hiveName(mode)+`\`+winutil.ProgidPath(i.extensionID(ext)))
	}
	for _, protocol := range i.md.URLProtocols {
		if mode == types.ModeSystem {
			keys = append(keys, `HKEY_CLASSES_ROOT\`+winutil.ProtocolPath(protocol, mode))
		} else {
			keys = append(keys, hiveName(mode)+`\`+winutil.ProtocolPath(protocol, mode))
		}
	}
	return keys
}

func (i *windowsMenuItem) registerAssociations() error {
	if len(i.md.FileExtensions) == 0 && len(i.md.URLProtocols) == 0 {
		return nil
	}
	m := i.menu
	command := i.registryCommand()
	icon := m.renderer.Render(i.md.Icon)

	for _, ext := range i.md.FileExtensions {
		m.logger.Debug().Str("extension", ext).Str("command", command).Msg("Registering file extension")
		if err := m.deps.Registry.RegisterFileExtension(ext, i.extensionID(ext), command, icon, m.mode); err != nil {
			return err
		}
	}
	for _, protocol := range i.md.URLProtocols {
		if err := m.deps.Registry.RegisterURLProtocol(protocol, command, i.protocolID(protocol), icon, m.mode); err != nil {
			return err
		}
	}
	return nil
}

func (i *windowsMenuItem) unregisterAssociations() error {
	m := i.menu
	for _, ext := range i.md.FileExtensions {
		if err := m.deps.Registry.UnregisterFileExtension(ext, i.extensionID(ext), m.mode); err != nil {
			return err
		}
	}
	for _, protocol := range i.md.URLProtocols {
		if err := m.deps.Registry.UnregisterURLProtocol(protocol, i.protocolID(protocol), m.mode); err != nil {
			return err
		}
	}
	return nil
}
