//go:build !windows

package winutil

import (
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// NewFolderResolver returns a resolver that always fails off Windows
func NewFolderResolver() FolderResolver {
	return PolicyResolver{Lookup: func(mode types.Mode, folder Folder) (string, error) {
		return "", errors.New(errors.ErrNotImplemented, "known folders are only available on Windows")
	}}
}
