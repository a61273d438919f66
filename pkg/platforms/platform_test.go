// pkg/platforms/platform_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test platform selection and menu construction checks

package platforms

import (
	"testing"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	f := newFixture(t)
	for _, p := range []types.Platform{types.PlatformLinux, types.PlatformOSX, types.PlatformWindows} {
		plat, err := For(p, f.deps())
		require.NoError(t, err)
		assert.Equal(t, p, plat.ID())
	}

	_, err := For(types.Platform("plan9"), f.deps())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedPlatform))
}

func TestNewMenu_Validation(t *testing.T) {
	f := newFixture(t)
	plat := f.platform(t, types.PlatformLinux)

	_, err := plat.NewMenu("", MenuOptions{Prefix: testPrefix})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = plat.NewMenu("Demo", MenuOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNewMenu_Defaults(t *testing.T) {
	f := newFixture(t)
	f.cfg.Install.Mode = types.ModeSystem

	menu, err := f.platform(t, types.PlatformLinux).NewMenu("Demo", MenuOptions{Prefix: testPrefix + "/"})
	require.NoError(t, err)
	assert.Equal(t, types.ModeSystem, menu.Mode())
	assert.Equal(t, testPrefix, menu.Prefix())
	assert.Equal(t, testPrefix, menu.BasePrefix())
	assert.Equal(t, "base", menu.Renderer().Placeholders()["ENV_NAME"])
}

func TestNewMenuItem_RejectsForeignMenu(t *testing.T) {
	f := newFixture(t)
	foreign := f.menu(t, types.PlatformLinux, "Demo", types.ModeUser)

	for _, p := range []types.Platform{types.PlatformOSX, types.PlatformWindows} {
		_, err := f.platform(t, p).NewMenuItem(foreign, metadata(t, p, `{"name": "Hello", "command": ["hello"]}`))
		require.Error(t, err, p)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	}
}
