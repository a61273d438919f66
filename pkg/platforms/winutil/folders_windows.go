//go:build windows

package winutil

import (
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
	"golang.org/x/sys/windows"
)

var knownFolders = map[types.Mode]map[Folder]*windows.KNOWNFOLDERID{
	types.ModeUser: {
		FolderStart:        windows.FOLDERID_Programs,
		FolderDesktop:      windows.FOLDERID_Desktop,
		FolderQuickLaunch:  windows.FOLDERID_QuickLaunch,
		FolderDocuments:    windows.FOLDERID_Documents,
		FolderProfile:      windows.FOLDERID_Profile,
		FolderLocalAppData: windows.FOLDERID_LocalAppData,
	},
	types.ModeSystem: {
		FolderStart:        windows.FOLDERID_CommonPrograms,
		FolderDesktop:      windows.FOLDERID_PublicDesktop,
		FolderDocuments:    windows.FOLDERID_PublicDocuments,
		FolderProfile:      windows.FOLDERID_Profile,
		FolderLocalAppData: windows.FOLDERID_LocalAppData,
	},
}

// NewFolderResolver returns the known-folder backed resolver
func NewFolderResolver() FolderResolver {
	return PolicyResolver{Lookup: lookupKnownFolder}
}

func lookupKnownFolder(mode types.Mode, folder Folder) (string, error) {
	id, ok := knownFolders[mode][folder]
	if !ok {
		return "", errors.Newf(errors.ErrFolderUnresolved, "no known folder for %s in %s mode", folder, mode)
	}
	return windows.KnownFolderPath(id, windows.KF_FLAG_DEFAULT)
}
