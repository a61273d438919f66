package platforms

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/cmdline"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/types"
	"howett.net/plist"
)

// lsregister is called by absolute path so PATH cannot shadow it
const lsregister = "/System/Library/Frameworks/CoreServices.framework/Frameworks/LaunchServices.framework/Support/lsregister"

const codesign = "/usr/bin/codesign"

// terminalPreamble reopens the launcher inside Terminal.app
var terminalPreamble = []string{
	`if [ "${__CFBundleIdentifier:-}" != "com.apple.Terminal" ]; then`,
	`    open -b com.apple.terminal "$0"`,
	`    exit $?`,
	`fi`,
}

type osxPlatform struct {
	deps Deps
}

func (p *osxPlatform) ID() types.Platform { return types.PlatformOSX }

// NewMenu implements Platform
func (p *osxPlatform) NewMenu(name string, opts MenuOptions) (Menu, error) {
	base, err := newBaseMenu(p.deps, "platforms.osx", name, opts)
	if err != nil {
		return nil, err
	}
	placeholders := base.posixPlaceholders()
	placeholders["ICON_EXT"] = "icns"
	placeholders["PYTHONAPP"] = filepath.Join(base.prefix, "python.app", "Contents", "MacOS", "python")
	base.finish(placeholders, nil)

	m := &osxMenu{baseMenu: base}
	if base.mode == types.ModeSystem {
		m.root = p.deps.Config.OSX.SystemRoot
	} else {
		m.root = p.deps.Config.OSX.UserRoot
		if m.root == "" {
			m.root = p.deps.Paths.HomeDir()
		}
	}
	return m, nil
}

// NewMenuItem implements Platform
func (p *osxPlatform) NewMenuItem(menu Menu, md *schema.Metadata) (MenuItem, error) {
	m, ok := menu.(*osxMenu)
	if !ok {
		return nil, wrongMenu(types.PlatformOSX, menu)
	}
	name := m.itemName(md)
	return &osxMenuItem{
		menu:     m,
		md:       md,
		name:     name,
		slug:     m.renderer.RenderSlug(name),
		location: filepath.Join(m.root, "Applications", fileName(name)+".app"),
	}, nil
}

// osxMenu has nothing on disk; every item is a standalone bundle
type osxMenu struct {
	*baseMenu
	root string
}

// Create implements Menu
func (m *osxMenu) Create() ([]string, error) { return nil, nil }

// Remove implements Menu
func (m *osxMenu) Remove() ([]string, error) { return nil, nil }

// osxMenuItem is an .app bundle whose executable is a shell launcher
type osxMenuItem struct {
	menu     *osxMenu
	md       *schema.Metadata
	name     string
	slug     string
	location string
}

func (i *osxMenuItem) Name() string { return i.name }

// Paths implements MenuItem
func (i *osxMenuItem) Paths() []string {
	return []string{i.location}
}

func (i *osxMenuItem) contents(parts ...string) string {
	return filepath.Join(append([]string{i.location, "Contents"}, parts...)...)
}

// Create implements MenuItem. An existing bundle is replaced.
func (i *osxMenuItem) Create() ([]string, error) {
	m := i.menu
	fsys := m.deps.FS
	logger := m.logger.With().Str("item", i.name).Logger()
	logger.Debug().Str("path", i.location).Msg("Creating application bundle")

	if err := m.runPrecreate(i.md, "bash", "-c"); err != nil {
		return nil, err
	}

	if filesystem.Exists(fsys, i.location) {
		logger.Debug().Msg("Replacing existing bundle")
		if err := fsys.RemoveAll(i.location); err != nil {
			return nil, errors.Wrapf(err, errors.ErrRemove, "cannot replace %s", i.location)
		}
	}
	for _, dir := range []string{i.contents("MacOS"), i.contents("Resources")} {
		if err := mkdirAll(fsys, dir); err != nil {
			return nil, err
		}
	}

	if err := writeFile(fsys, i.contents("PkgInfo"), []byte(i.pkgInfo()), 0644); err != nil {
		return nil, err
	}
	i.copyIcon()

	info, err := i.infoPlist()
	if err != nil {
		return nil, err
	}
	if err := writeFile(fsys, i.contents("Info.plist"), info, 0644); err != nil {
		return nil, err
	}

	launcher := i.contents("MacOS", i.slug)
	if err := writeFile(fsys, launcher, []byte(i.launcherScript()), 0755); err != nil {
		return nil, err
	}
	if err := fsys.Chmod(launcher, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot make %s executable", launcher)
	}

	if err := i.linkInBundle(); err != nil {
		return nil, err
	}
	if err := i.signWithEntitlements(); err != nil {
		return nil, err
	}
	i.registerLaunchServices("-f")

	return i.Paths(), nil
}

// Remove implements MenuItem
func (i *osxMenuItem) Remove() ([]string, error) {
	m := i.menu
	m.logger.Debug().Str("path", i.location).Msg("Removing application bundle")

	if filesystem.Exists(m.deps.FS, i.location) {
		i.registerLaunchServices("-u")
	}
	if err := m.deps.FS.RemoveAll(i.location); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrRemove, "cannot remove %s", i.location).WithDetail("path", i.location)
	}
	return i.Paths(), nil
}

// pkgInfo is "APPL" followed by a four character creator code
func (i *osxMenuItem) pkgInfo() string {
	creator := []rune(i.slug)
	if len(creator) > 4 {
		creator = creator[:4]
	}
	return "APPL" + string(creator) + strings.Repeat("?", 4-len(creator))
}

func (i *osxMenuItem) copyIcon() {
	icon := i.menu.renderer.Render(i.md.Icon)
	if icon == "" {
		return
	}
	data, err := i.menu.deps.FS.ReadFile(icon)
	if err != nil {
		i.menu.logger.Warn().Err(err).Str("icon", icon).Msg("Icon not found, bundle will use the default icon")
		return
	}
	dest := i.contents("Resources", filepath.Base(icon))
	if err := writeFile(i.menu.deps.FS, dest, data, 0644); err != nil {
		i.menu.logger.Warn().Err(err).Str("icon", icon).Msg("Could not copy icon")
	}
}

// infoPlist builds Info.plist: generated defaults, then every key the
// metadata sets. A CFBundleVersion also sets the short version and
// the info string.
func (i *osxMenuItem) infoPlist() ([]byte, error) {
	r := i.menu.renderer
	f := i.md.MacOSFields

	pl := map[string]interface{}{
		"CFBundleName":               i.name,
		"CFBundleDisplayName":        i.name,
		"CFBundleExecutable":         i.slug,
		"CFBundleGetInfoString":      i.slug + "-1.0.0",
		"CFBundleIdentifier":         "com." + i.slug,
		"CFBundlePackageType":        "APPL",
		"CFBundleVersion":            "1.0.0",
		"CFBundleShortVersionString": "1.0.0",
	}

	str := func(key, value string) {
		if value = r.Render(value); value != "" {
			pl[key] = value
		}
	}
	flag := func(key string, value *bool) {
		if value != nil {
			pl[key] = *value
		}
	}

	str("CFBundleDisplayName", f.CFBundleDisplayName)
	str("CFBundleIdentifier", f.CFBundleIdentifier)
	str("CFBundleName", f.CFBundleName)
	str("CFBundleSpokenName", f.CFBundleSpokenName)
	if version := r.Render(f.CFBundleVersion); version != "" {
		pl["CFBundleVersion"] = version
		pl["CFBundleShortVersionString"] = version
		pl["CFBundleGetInfoString"] = i.slug + "-" + version
	}
	str("LSApplicationCategoryType", f.LSApplicationCategoryType)
	flag("LSBackgroundOnly", f.LSBackgroundOnly)
	str("LSMinimumSystemVersion", f.LSMinimumSystemVersion)
	flag("LSMultipleInstancesProhibited", f.LSMultipleInstancesProhibited)
	flag("LSRequiresNativeExecution", f.LSRequiresNativeExecution)
	flag("NSSupportsAutomaticGraphicsSwitching", f.NSSupportsAutomaticGraphicsSwitching)

	if len(f.LSEnvironment) > 0 {
		env := make(map[string]string, len(f.LSEnvironment))
		for k, v := range f.LSEnvironment {
			env[k] = r.Render(v)
		}
		pl["LSEnvironment"] = env
	}
	if len(f.CFBundleURLTypes) > 0 {
		pl["CFBundleURLTypes"] = i.urlTypes()
	}
	if len(f.CFBundleDocumentTypes) > 0 {
		pl["CFBundleDocumentTypes"] = i.documentTypes()
	}
	if len(f.UTExportedTypeDeclarations) > 0 {
		pl["UTExportedTypeDeclarations"] = i.typeDeclarations(f.UTExportedTypeDeclarations)
	}
	if len(f.UTImportedTypeDeclarations) > 0 {
		pl["UTImportedTypeDeclarations"] = i.typeDeclarations(f.UTImportedTypeDeclarations)
	}

	if icon := r.Render(i.md.Icon); icon != "" {
		pl["CFBundleIconFile"] = filepath.Base(icon)
	}

	data, err := plist.MarshalIndent(pl, plist.XMLFormat, "\t")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot encode Info.plist")
	}
	return data, nil
}

func (i *osxMenuItem) urlTypes() []schema.URLType {
	r := i.menu.renderer
	out := make([]schema.URLType, len(i.md.CFBundleURLTypes))
	for n, t := range i.md.CFBundleURLTypes {
		out[n] = schema.URLType{
			CFBundleTypeRole:    r.Render(t.CFBundleTypeRole),
			CFBundleURLSchemes:  r.RenderList(t.CFBundleURLSchemes),
			CFBundleURLName:     r.Render(t.CFBundleURLName),
			CFBundleURLIconFile: r.Render(t.CFBundleURLIconFile),
		}
	}
	return out
}

func (i *osxMenuItem) documentTypes() []schema.DocumentType {
	r := i.menu.renderer
	out := make([]schema.DocumentType, len(i.md.CFBundleDocumentTypes))
	for n, t := range i.md.CFBundleDocumentTypes {
		out[n] = schema.DocumentType{
			CFBundleTypeIconFile: r.Render(t.CFBundleTypeIconFile),
			CFBundleTypeName:     r.Render(t.CFBundleTypeName),
			CFBundleTypeRole:     r.Render(t.CFBundleTypeRole),
			LSItemContentTypes:   r.RenderList(t.LSItemContentTypes),
			LSHandlerRank:        r.Render(t.LSHandlerRank),
		}
	}
	return out
}

func (i *osxMenuItem) typeDeclarations(decls []schema.UTTypeDeclaration) []schema.UTTypeDeclaration {
	r := i.menu.renderer
	out := make([]schema.UTTypeDeclaration, len(decls))
	for n, d := range decls {
		var tags map[string][]string
		if d.UTTypeTagSpecification != nil {
			tags = make(map[string][]string, len(d.UTTypeTagSpecification))
			for k, v := range d.UTTypeTagSpecification {
				tags[k] = r.RenderList(v)
			}
		}
		out[n] = schema.UTTypeDeclaration{
			UTTypeConformsTo:       r.RenderList(d.UTTypeConformsTo),
			UTTypeDescription:      r.Render(d.UTTypeDescription),
			UTTypeIconFile:         r.Render(d.UTTypeIconFile),
			UTTypeIdentifier:       r.Render(d.UTTypeIdentifier),
			UTTypeReferenceURL:     r.Render(d.UTTypeReferenceURL),
			UTTypeTagSpecification: tags,
		}
	}
	return out
}

// launcherScript is the bundle executable
func (i *osxMenuItem) launcherScript() string {
	r := i.menu.renderer
	lines := []string{"#!/bin/sh"}

	if i.md.Terminal {
		lines = append(lines, terminalPreamble...)
	}
	if wd := r.Render(i.md.WorkingDir); wd != "" {
		lines = append(lines, `mkdir -p "`+wd+`"`, `cd "`+wd+`"`)
	}
	if pre := r.Render(i.md.Precommand); pre != "" {
		lines = append(lines, pre)
	}
	if i.md.Activate {
		lines = append(lines, i.menu.bashActivation())
	}
	lines = append(lines, "exec "+cmdline.JoinArgs(r.RenderList(i.md.Command)))
	return strings.Join(lines, "\n") + "\n"
}

// linkInBundle creates the symlinks requested by link_in_bundle. The
// destination is relative to the bundle and may not leave it.
func (i *osxMenuItem) linkInBundle() error {
	r := i.menu.renderer
	for source, dest := range i.md.LinkInBundle {
		source = r.Render(source)
		target := filepath.Join(i.location, r.Render(dest))
		rel, err := filepath.Rel(i.location, target)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return errors.Newf(errors.ErrInvalidInput, "link_in_bundle destination %q is outside the bundle", dest).
				WithDetail("bundle", i.location)
		}
		if err := mkdirAll(i.menu.deps.FS, filepath.Dir(target)); err != nil {
			return err
		}
		if err := i.menu.deps.FS.Symlink(source, target); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot link %s into the bundle", source).
				WithDetail("target", target)
		}
	}
	return nil
}

// signWithEntitlements ad-hoc signs the bundle so the entitlements apply
func (i *osxMenuItem) signWithEntitlements() error {
	if len(i.md.Entitlements) == 0 {
		return nil
	}
	m := i.menu

	entitlements := make(map[string]bool, len(i.md.Entitlements))
	for _, key := range i.md.Entitlements {
		entitlements[m.renderer.Render(key)] = true
	}
	data, err := plist.MarshalIndent(entitlements, plist.XMLFormat, "\t")
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot encode entitlements")
	}

	tmp := filepath.Join(os.TempDir(), "menuinst-"+i.slug+"-entitlements.plist")
	if err := mkdirAll(m.deps.FS, filepath.Dir(tmp)); err != nil {
		return err
	}
	if err := writeFile(m.deps.FS, tmp, data, 0600); err != nil {
		return err
	}
	defer func() { _ = m.deps.FS.Remove(tmp) }()

	args := []string{
		"--verbose",
		"--sign", "-",
		"--prefix", "com." + i.slug,
		"--options", "runtime",
		"--force",
		"--deep",
		"--entitlements", tmp,
		i.location,
	}
	logging.LogCommand(codesign, args)
	if out, err := m.deps.Runner.Run(codesign, args...); err != nil {
		return errors.Wrap(err, errors.ErrCommandFailed, "code signing failed").
			WithDetail("bundle", i.location).
			WithDetail("output", string(out))
	}
	return nil
}

// registerLaunchServices tells LaunchServices about URL and document
// types. flag is -f to register and -u to unregister.
func (i *osxMenuItem) registerLaunchServices(flag string) {
	m := i.menu
	if !m.deps.Config.OSX.RegisterLaunchServices {
		return
	}
	if len(i.md.CFBundleURLTypes) == 0 && len(i.md.CFBundleDocumentTypes) == 0 {
		return
	}
	if !filesystem.Exists(m.deps.FS, lsregister) {
		m.logger.Debug().Msg("lsregister not available, skipping LaunchServices registration")
		return
	}
	m.runBestEffort(lsregister, flag, i.location)
}
