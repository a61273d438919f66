//go:build !windows

package winutil

import (
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
)

type unsupportedRegistry struct{}

// NewRegistry returns a registry that refuses every write off Windows
func NewRegistry() Registry {
	return unsupportedRegistry{}
}

func (unsupportedRegistry) RegisterFileExtension(extension, identifier, command, icon string, mode types.Mode) error {
	return errors.New(errors.ErrNotImplemented, "the registry is only available on Windows")
}

func (unsupportedRegistry) UnregisterFileExtension(extension, identifier string, mode types.Mode) error {
	return nil
}

func (unsupportedRegistry) RegisterURLProtocol(protocol, command, identifier, icon string, mode types.Mode) error {
	return errors.New(errors.ErrNotImplemented, "the registry is only available on Windows")
}

func (unsupportedRegistry) UnregisterURLProtocol(protocol, identifier string, mode types.Mode) error {
	return nil
}
