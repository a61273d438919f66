// pkg/types/types_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test mode and platform parsing

package types

import (
	"testing"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"user", ModeUser, false},
		{"", ModeUser, false},
		{"SYSTEM", ModeSystem, false},
		{" system ", ModeSystem, false},
		{"global", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"linux", PlatformLinux},
		{"darwin", PlatformOSX},
		{"osx", PlatformOSX},
		{"macOS", PlatformOSX},
		{"windows", PlatformWindows},
		{"win", PlatformWindows},
		{"win32", PlatformWindows},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlatform(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePlatform("plan9")
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedPlatform))
}

func TestCurrentPlatform(t *testing.T) {
	assert.Contains(t, AllPlatforms(), CurrentPlatform())
}
