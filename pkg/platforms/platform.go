// Package platforms materializes menus and menu items for Linux
// (freedesktop), macOS (.app bundles) and Windows (Start Menu shortcuts).
//
// A Platform is picked explicitly with For; nothing depends on the OS
// the binary runs on except the defaults filled in by DefaultDeps.
// Every Create and Remove returns the paths it touched, recomputed from
// the menu name, item metadata and install mode, so removal needs no
// stored manifest.
package platforms

import (
	"github.com/arthur-debert/menuinst/pkg/config"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/filesystem"
	"github.com/arthur-debert/menuinst/pkg/paths"
	"github.com/arthur-debert/menuinst/pkg/platforms/winutil"
	"github.com/arthur-debert/menuinst/pkg/render"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Menu is the container grouping a package's shortcuts
type Menu interface {
	// Name is the rendered menu name
	Name() string
	Mode() types.Mode
	Prefix() string
	BasePrefix() string
	Renderer() *render.Renderer
	Create() ([]string, error)
	Remove() ([]string, error)
}

// MenuItem is one launchable shortcut
type MenuItem interface {
	// Name is the rendered item name
	Name() string
	// Paths lists every artifact Create writes, without touching disk
	Paths() []string
	Create() ([]string, error)
	Remove() ([]string, error)
}

// Platform builds menus and items for one target OS
type Platform interface {
	ID() types.Platform
	NewMenu(name string, opts MenuOptions) (Menu, error)
	NewMenuItem(menu Menu, md *schema.Metadata) (MenuItem, error)
}

// MenuOptions locate the environment a menu belongs to
type MenuOptions struct {
	Prefix     string
	BasePrefix string
	Mode       types.Mode
}

// Deps are the collaborators platform code talks to
type Deps struct {
	FS        types.FS
	Runner    types.Runner
	Config    *config.Config
	Paths     paths.Paths
	Folders   winutil.FolderResolver
	Shortcuts winutil.ShortcutWriter
	Registry  winutil.Registry
	Getenv    func(string) string
}

// DefaultDeps wires the real OS implementations
func DefaultDeps(cfg *config.Config) Deps {
	runner := filesystem.NewExecRunner()
	return Deps{
		FS:        filesystem.NewOS(),
		Runner:    runner,
		Config:    cfg,
		Paths:     paths.New(),
		Folders:   winutil.NewFolderResolver(),
		Shortcuts: winutil.NewShortcutWriter(runner),
		Registry:  winutil.NewRegistry(),
	}
}

func (d Deps) withDefaults() Deps {
	if d.Config == nil {
		d.Config = config.Default()
	}
	defaults := DefaultDeps(d.Config)
	if d.FS == nil {
		d.FS = defaults.FS
	}
	if d.Runner == nil {
		d.Runner = defaults.Runner
	}
	if d.Paths == nil {
		d.Paths = defaults.Paths
	}
	if d.Folders == nil {
		d.Folders = defaults.Folders
	}
	if d.Shortcuts == nil {
		d.Shortcuts = winutil.NewShortcutWriter(d.Runner)
	}
	if d.Registry == nil {
		d.Registry = defaults.Registry
	}
	if d.Getenv == nil {
		d.Getenv = osGetenv
	}
	return d
}

// For returns the implementation for p
func For(p types.Platform, deps Deps) (Platform, error) {
	deps = deps.withDefaults()
	switch p {
	case types.PlatformLinux:
		return &linuxPlatform{deps: deps}, nil
	case types.PlatformOSX:
		return &osxPlatform{deps: deps}, nil
	case types.PlatformWindows:
		return &windowsPlatform{deps: deps}, nil
	}
	return nil, errors.Newf(errors.ErrUnsupportedPlatform, "unsupported platform %q", p)
}

func wrongMenu(p types.Platform, menu Menu) error {
	return errors.Newf(errors.ErrInvalidInput, "menu %q was not created by the %s platform", menu.Name(), p)
}
