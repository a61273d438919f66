package winutil

import (
	"path/filepath"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Folder names a shell folder the menu managers write into
type Folder string

const (
	FolderStart        Folder = "start"
	FolderDesktop      Folder = "desktop"
	FolderQuickLaunch  Folder = "quicklaunch"
	FolderDocuments    Folder = "documents"
	FolderProfile      Folder = "profile"
	FolderLocalAppData Folder = "localappdata"
)

// FolderResolver maps a folder and install mode to a directory
type FolderResolver interface {
	Resolve(mode types.Mode, folder Folder) (string, error)
}

// LookupFunc performs the raw OS lookup for one folder in one mode
type LookupFunc func(mode types.Mode, folder Folder) (string, error)

// PolicyResolver applies the fallback rules on top of a raw lookup:
// quick launch does not exist for system installs, and an unresolvable
// documents folder falls back to <profile>\Documents. Everything else
// fails closed.
type PolicyResolver struct {
	Lookup LookupFunc
}

// Resolve implements FolderResolver
func (p PolicyResolver) Resolve(mode types.Mode, folder Folder) (string, error) {
	if folder == FolderQuickLaunch && mode == types.ModeSystem {
		return "", errors.New(errors.ErrFolderUnresolved, "quick launch is not available for system installs").
			WithDetail("folder", string(folder))
	}

	dir, err := p.Lookup(mode, folder)
	if err == nil && dir != "" {
		return dir, nil
	}

	if folder == FolderDocuments {
		profile, perr := p.Lookup(types.ModeUser, FolderProfile)
		if perr == nil && profile != "" {
			return filepath.Join(profile, "Documents"), nil
		}
	}

	if err == nil {
		err = errors.New(errors.ErrFolderUnresolved, "empty folder path")
	}
	return "", errors.Wrapf(err, errors.ErrFolderUnresolved, "cannot resolve %s folder for %s mode", folder, mode).
		WithDetail("folder", string(folder)).
		WithDetail("mode", string(mode))
}

// StaticResolver resolves from a fixed table, for tests and for
// callers that already know their folders
type StaticResolver map[types.Mode]map[Folder]string

// Resolve implements FolderResolver through PolicyResolver
func (s StaticResolver) Resolve(mode types.Mode, folder Folder) (string, error) {
	return PolicyResolver{Lookup: func(m types.Mode, f Folder) (string, error) {
		dir, ok := s[m][f]
		if !ok {
			return "", errors.Newf(errors.ErrNotFound, "no %s folder configured", f)
		}
		return dir, nil
	}}.Resolve(mode, folder)
}
