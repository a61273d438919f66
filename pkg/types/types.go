package types

import (
	"runtime"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
)

// Mode selects whether artifacts are installed for the current user or
// for every user of the machine.
type Mode string

const (
	ModeUser   Mode = "user"
	ModeSystem Mode = "system"
)

// ParseMode accepts "user" and "system", case-insensitively
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "":
		return ModeUser, nil
	case "system":
		return ModeSystem, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid install mode %q", s).
		WithDetail("mode", s)
}

// Platform names a target operating system family. The values match the
// keys used under "platforms" in menu metadata.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformOSX     Platform = "osx"
	PlatformWindows Platform = "win"
)

// AllPlatforms lists every platform in a stable order
func AllPlatforms() []Platform {
	return []Platform{PlatformLinux, PlatformOSX, PlatformWindows}
}

// ParsePlatform accepts the metadata keys plus the usual GOOS aliases
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linux":
		return PlatformLinux, nil
	case "osx", "darwin", "macos":
		return PlatformOSX, nil
	case "win", "windows", "win32":
		return PlatformWindows, nil
	}
	return "", errors.Newf(errors.ErrUnsupportedPlatform, "unsupported platform %q", s).
		WithDetail("platform", s)
}

// CurrentPlatform returns the platform the binary is running on
func CurrentPlatform() Platform {
	p, err := ParsePlatform(runtime.GOOS)
	if err != nil {
		// Other unixes follow the freedesktop conventions
		return PlatformLinux
	}
	return p
}
