package platforms

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/cmdline"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/types"
)

type linuxPlatform struct {
	deps Deps
}

func (p *linuxPlatform) ID() types.Platform { return types.PlatformLinux }

// NewMenu implements Platform
func (p *linuxPlatform) NewMenu(name string, opts MenuOptions) (Menu, error) {
	base, err := newBaseMenu(p.deps, "platforms.linux", name, opts)
	if err != nil {
		return nil, err
	}
	base.finish(base.posixPlaceholders(), nil)

	m := &linuxMenu{baseMenu: base}
	if base.mode == types.ModeSystem {
		m.configDir = p.deps.Config.Linux.SystemConfigDir
		m.dataDir = p.deps.Config.Linux.SystemDataDir
	} else {
		m.configDir = p.deps.Paths.ConfigHome()
		m.dataDir = p.deps.Paths.DataHome()
	}
	m.appsDir = filepath.Join(m.dataDir, "applications")
	m.directoriesDir = filepath.Join(m.dataDir, "desktop-directories")
	m.directoryEntry = filepath.Join(m.directoriesDir, m.slug()+".directory")

	m.menuFile = &menuFile{
		fs:   p.deps.FS,
		path: filepath.Join(m.configDir, "menus", "applications.menu"),
	}
	if base.mode == types.ModeUser {
		m.menuFile.parent = filepath.Join(p.deps.Config.Linux.SystemConfigDir, "menus", "applications.menu")
	}
	return m, nil
}

// NewMenuItem implements Platform
func (p *linuxPlatform) NewMenuItem(menu Menu, md *schema.Metadata) (MenuItem, error) {
	m, ok := menu.(*linuxMenu)
	if !ok {
		return nil, wrongMenu(types.PlatformLinux, menu)
	}
	return &linuxMenuItem{menu: m, md: md, name: m.itemName(md)}, nil
}

// linuxMenu is a freedesktop menu: a .directory entry plus a <Menu>
// element in the user's or the system's applications.menu
type linuxMenu struct {
	*baseMenu

	configDir      string
	dataDir        string
	appsDir        string
	directoriesDir string
	directoryEntry string
	menuFile       *menuFile
}

// Create implements Menu
func (m *linuxMenu) Create() ([]string, error) {
	done := logging.LogOperationStart(m.logger, "menu create")
	defer done()

	for _, dir := range []string{filepath.Dir(m.menuFile.path), m.directoriesDir, m.appsDir} {
		if err := mkdirAll(m.deps.FS, dir); err != nil {
			return nil, err
		}
	}
	if err := writeFile(m.deps.FS, m.directoryEntry, []byte(m.directoryContent()), 0644); err != nil {
		return nil, err
	}

	root, err := m.menuFile.ensure()
	if err != nil {
		return nil, err
	}
	if findMenu(root, m.name) == nil {
		m.logger.Debug().Str("file", m.menuFile.path).Msg("Adding menu to menu file")
		addMenu(root, m.name, m.slug()+".directory")
		if err := m.menuFile.write(root, true); err != nil {
			return nil, err
		}
	}
	return []string{m.directoryEntry}, nil
}

// Remove implements Menu. While another entry of this menu is still
// installed both the .directory file and the <Menu> element stay.
func (m *linuxMenu) Remove() ([]string, error) {
	if sibling := m.installedEntry(); sibling != "" {
		m.logger.Info().Str("entry", sibling).Msg("Menu still in use, keeping it")
		return nil, nil
	}

	if err := removeFile(m.deps.FS, m.directoryEntry); err != nil {
		return nil, err
	}

	if root, ok := m.menuFile.load(); ok && removeMenus(root, m.name) {
		m.logger.Debug().Str("file", m.menuFile.path).Msg("Removing menu from menu file")
		if err := m.menuFile.write(root, true); err != nil {
			return nil, err
		}
	}
	return []string{m.directoryEntry}, nil
}

func (m *linuxMenu) directoryContent() string {
	return strings.Join([]string{
		"[Desktop Entry]",
		"Type=Directory",
		"Encoding=UTF-8",
		"Name=" + m.name,
	}, "\n") + "\n"
}

// installedEntry returns the first .desktop file belonging to this menu
func (m *linuxMenu) installedEntry() string {
	entries, err := m.deps.FS.ReadDir(m.appsDir)
	if err != nil {
		return ""
	}
	prefix := m.slug() + "_"
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".desktop") {
			return entry.Name()
		}
	}
	return ""
}

func (m *linuxMenu) mimePackagesDir() string {
	return filepath.Join(m.dataDir, "mime", "packages")
}

// refreshCaches asks the desktop environment to pick up changes
func (m *linuxMenu) refreshCaches() {
	if !m.deps.Config.Linux.RefreshCaches {
		return
	}
	if exe, err := m.deps.Runner.LookPath("update-desktop-database"); err == nil {
		m.runBestEffort(exe, m.appsDir)
	}
	for _, name := range []string{"kbuildsycoca6", "kbuildsycoca5"} {
		if exe, err := m.deps.Runner.LookPath(name); err == nil {
			m.runBestEffort(exe, "--noincremental")
			break
		}
	}
}

func (m *linuxMenu) updateMimeDatabase() {
	if exe, err := m.deps.Runner.LookPath("update-mime-database"); err == nil {
		m.runBestEffort(exe, filepath.Join(m.dataDir, "mime"))
	}
}

// runBestEffort runs a command whose failure only deserves a warning
func (m *baseMenu) runBestEffort(name string, args ...string) {
	logging.LogCommand(name, args)
	if out, err := m.deps.Runner.Run(name, args...); err != nil {
		m.logger.Warn().Err(err).Str("command", name).Str("output", string(out)).Msg("Command failed, continuing")
	}
}

// linuxMenuItem is one .desktop file
type linuxMenuItem struct {
	menu *linuxMenu
	md   *schema.Metadata
	name string
}

func (i *linuxMenuItem) Name() string { return i.name }

// Paths implements MenuItem: the desktop entry, then the MIME fragments
// it owns
func (i *linuxMenuItem) Paths() []string {
	return append([]string{i.location()}, i.mimeFragments()...)
}

func (i *linuxMenuItem) location() string {
	filename := i.menu.slug() + "_" + i.menu.renderer.RenderSlug(i.name) + ".desktop"
	return filepath.Join(i.menu.appsDir, filename)
}

// Create implements MenuItem
func (i *linuxMenuItem) Create() ([]string, error) {
	m := i.menu
	logger := m.logger.With().Str("item", i.name).Logger()
	logger.Debug().Str("path", i.location()).Msg("Creating desktop entry")

	if err := m.runPrecreate(i.md, "bash", "-c"); err != nil {
		return nil, err
	}
	if err := mkdirAll(m.deps.FS, m.appsDir); err != nil {
		return nil, err
	}

	content, err := i.desktopContent()
	if err != nil {
		return nil, err
	}
	if err := writeFile(m.deps.FS, i.location(), []byte(content), 0644); err != nil {
		return nil, err
	}

	paths := append([]string{i.location()}, i.registerMimeTypes()...)
	m.refreshCaches()
	return paths, nil
}

// Remove implements MenuItem. Owned MIME fragments go only once no
// other desktop entry declares their type.
func (i *linuxMenuItem) Remove() ([]string, error) {
	entry := i.location()
	i.menu.logger.Debug().Str("path", entry).Msg("Removing desktop entry")
	if err := removeFile(i.menu.deps.FS, entry); err != nil {
		return nil, err
	}
	paths := append([]string{entry}, i.unregisterMimeTypes()...)
	i.menu.refreshCaches()
	return paths, nil
}

// execLine builds the Exec= value: precommand, activation and the
// quoted command joined with && and handed to bash -c
func (i *linuxMenuItem) execLine() string {
	r := i.menu.renderer
	var parts []string
	if pre := r.Render(i.md.Precommand); pre != "" {
		parts = append(parts, pre)
	}
	if i.md.Activate {
		parts = append(parts, i.menu.bashActivation())
	}
	parts = append(parts, cmdline.JoinArgs(r.RenderList(i.md.Command)))

	script := strings.Join(parts, " && ")
	return "bash -c '" + strings.ReplaceAll(script, "'", `'"'"'`) + "'"
}

func (i *linuxMenuItem) desktopContent() (string, error) {
	r := i.menu.renderer
	lines := []string{
		"[Desktop Entry]",
		"Type=Application",
		"Encoding=UTF-8",
		"Name=" + i.name,
		"Exec=" + i.execLine(),
		"Terminal=" + strconv.FormatBool(i.md.Terminal),
	}

	if icon := r.Render(i.md.Icon); icon != "" {
		lines = append(lines, "Icon="+icon)
	}
	if description := r.Render(i.md.Description); description != "" {
		lines = append(lines, "Comment="+description)
	}
	if workingDir := r.Render(i.md.WorkingDir); workingDir != "" {
		if err := mkdirAll(i.menu.deps.FS, workingDir); err != nil {
			return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create working directory %s", workingDir)
		}
		lines = append(lines, "Path="+workingDir)
	}

	lines = append(lines, i.passthroughLines()...)
	return strings.Join(lines, "\n") + "\n", nil
}

// passthroughLines renders the Desktop Entry keys given in metadata.
// The menu name is added to Categories so the <Include> rule matches.
func (i *linuxMenuItem) passthroughLines() []string {
	r := i.menu.renderer
	f := i.md.LinuxFields
	var lines []string

	list := func(key string, values []string) {
		if len(values) > 0 {
			lines = append(lines, key+"="+strings.Join(r.RenderList(values), ";")+";")
		}
	}
	str := func(key, value string) {
		if value = r.Render(value); value != "" {
			lines = append(lines, key+"="+value)
		}
	}
	flag := func(key string, value *bool) {
		if value != nil {
			lines = append(lines, key+"="+strconv.FormatBool(*value))
		}
	}

	list("Categories", i.categories())
	flag("DBusActivatable", f.DBusActivatable)
	str("GenericName", f.GenericName)
	flag("Hidden", f.Hidden)
	list("Implements", f.Implements)
	list("Keywords", f.Keywords)
	list("MimeType", f.MimeType)
	flag("NoDisplay", f.NoDisplay)
	list("NotShowIn", f.NotShowIn)
	list("OnlyShowIn", f.OnlyShowIn)
	flag("PrefersNonDefaultGPU", f.PrefersNonDefaultGPU)
	flag("SingleMainWindow", f.SingleMainWindow)
	flag("StartupNotify", f.StartupNotify)
	str("StartupWMClass", f.StartupWMClass)
	str("TryExec", f.TryExec)
	return lines
}

func (i *linuxMenuItem) categories() []string {
	categories := append([]string{}, i.md.Categories...)
	for _, c := range categories {
		if c == i.menu.name {
			return categories
		}
	}
	return append(categories, i.menu.name)
}
