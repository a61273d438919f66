package platforms

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/menuinst/pkg/config"
	"github.com/arthur-debert/menuinst/pkg/platforms/winutil"
	"github.com/arthur-debert/menuinst/pkg/schema"
	"github.com/arthur-debert/menuinst/pkg/testutil"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/stretchr/testify/require"
)

const (
	testHome   = "/home/user"
	testPrefix = "/opt/envs/demo"
	testBase   = "/opt/conda"
)

// fixture bundles the fakes a platform test needs
type fixture struct {
	fs        *testutil.MemoryFS
	runner    *testutil.Runner
	cfg       *config.Config
	shortcuts *fakeShortcuts
	registry  *fakeRegistry
	env       map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll(testHome, 0755))
	require.NoError(t, fsys.MkdirAll(testPrefix, 0755))

	cfg := config.Default()
	cfg.OSX.UserRoot = ""

	return &fixture{
		fs:        fsys,
		runner:    testutil.NewRunner(),
		cfg:       cfg,
		shortcuts: &fakeShortcuts{fs: fsys},
		registry:  &fakeRegistry{},
		env:       map[string]string{},
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		FS:     f.fs,
		Runner: f.runner,
		Config: f.cfg,
		Paths:  testutil.NewStaticPaths(testHome),
		Folders: winutil.StaticResolver{
			types.ModeUser: {
				winutil.FolderStart:       "/win/user/Start Menu/Programs",
				winutil.FolderDesktop:     "/win/user/Desktop",
				winutil.FolderQuickLaunch: "/win/user/Quick Launch",
				winutil.FolderProfile:     "/win/user",
			},
			types.ModeSystem: {
				winutil.FolderStart:   "/win/all/Start Menu/Programs",
				winutil.FolderDesktop: "/win/all/Desktop",
			},
		},
		Shortcuts: f.shortcuts,
		Registry:  f.registry,
		Getenv:    func(k string) string { return f.env[k] },
	}
}

func (f *fixture) platform(t *testing.T, p types.Platform) Platform {
	t.Helper()
	plat, err := For(p, f.deps())
	require.NoError(t, err)
	return plat
}

func (f *fixture) menu(t *testing.T, p types.Platform, name string, mode types.Mode) Menu {
	t.Helper()
	menu, err := f.platform(t, p).NewMenu(name, MenuOptions{
		Prefix:     testPrefix,
		BasePrefix: testBase,
		Mode:       mode,
	})
	require.NoError(t, err)
	return menu
}

func (f *fixture) item(t *testing.T, p types.Platform, menu Menu, js string) MenuItem {
	t.Helper()
	item, err := f.platform(t, p).NewMenuItem(menu, metadata(t, p, js))
	require.NoError(t, err)
	return item
}

// metadata merges a raw JSON item for p
func metadata(t *testing.T, p types.Platform, js string) *schema.Metadata {
	t.Helper()
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &raw))
	md, err := schema.Merge(raw, p)
	require.NoError(t, err)
	return md
}

// withoutBackups drops timestamped menu file backups from a snapshot
func withoutBackups(snapshot map[string]string) map[string]string {
	out := make(map[string]string, len(snapshot))
	for path, content := range snapshot {
		if strings.Contains(path, "applications.menu.") {
			continue
		}
		out[path] = content
	}
	return out
}

// fakeShortcuts stores each shortcut as a text file so removal and
// directory checks see it
type fakeShortcuts struct {
	fs      *testutil.MemoryFS
	created []winutil.Shortcut
}

func (f *fakeShortcuts) Create(s winutil.Shortcut) error {
	f.created = append(f.created, s)
	return f.fs.WriteFile(s.Path, []byte(s.Target+" "+s.Arguments), 0644)
}

type registration struct {
	kind, key, identifier, command string
}

// fakeRegistry keeps associations in memory
type fakeRegistry struct {
	entries map[string]registration
}

func (f *fakeRegistry) put(r registration) {
	if f.entries == nil {
		f.entries = map[string]registration{}
	}
	f.entries[r.kind+":"+r.key] = r
}

func (f *fakeRegistry) RegisterFileExtension(extension, identifier, command, icon string, mode types.Mode) error {
	f.put(registration{"ext", extension, identifier, command})
	return nil
}

func (f *fakeRegistry) UnregisterFileExtension(extension, identifier string, mode types.Mode) error {
	delete(f.entries, "ext:"+extension)
	return nil
}

func (f *fakeRegistry) RegisterURLProtocol(protocol, command, identifier, icon string, mode types.Mode) error {
	f.put(registration{"protocol", protocol, identifier, command})
	return nil
}

func (f *fakeRegistry) UnregisterURLProtocol(protocol, identifier string, mode types.Mode) error {
	if r, ok := f.entries["protocol:"+protocol]; ok && r.identifier == identifier {
		delete(f.entries, "protocol:"+protocol)
	}
	return nil
}
