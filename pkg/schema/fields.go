package schema

import (
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Name is an item name: either a plain string or a pair of variants
// picked by whether the target environment is the base environment.
type Name struct {
	Value   string `mapstructure:"-"`
	Base    string `mapstructure:"target_environment_is_base"`
	NotBase string `mapstructure:"target_environment_is_not_base"`
}

// Resolve picks the variant for the target environment. A plain name
// wins over both variants; a missing variant falls back to the other.
func (n Name) Resolve(isBase bool) string {
	if n.Value != "" {
		return n.Value
	}
	if isBase {
		if n.Base != "" {
			return n.Base
		}
		return n.NotBase
	}
	if n.NotBase != "" {
		return n.NotBase
	}
	return n.Base
}

// IsZero reports whether no variant is set
func (n Name) IsZero() bool {
	return n.Value == "" && n.Base == "" && n.NotBase == ""
}

// StringList is a freedesktop list value. Metadata may give it as a
// JSON array or as a ";"-separated string.
type StringList []string

// Metadata is one menu item after merging its platform override into
// the global fields. Absent optional strings are empty; absent
// tri-state booleans are nil.
type Metadata struct {
	Name        Name     `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Icon        string   `mapstructure:"icon"`
	Command     []string `mapstructure:"command"`
	WorkingDir  string   `mapstructure:"working_dir"`
	Precommand  string   `mapstructure:"precommand"`
	Precreate   string   `mapstructure:"precreate"`
	Activate    bool     `mapstructure:"activate"`
	Terminal    bool     `mapstructure:"terminal"`

	WindowsFields `mapstructure:",squash"`
	LinuxFields   `mapstructure:",squash"`
	MacOSFields   `mapstructure:",squash"`

	// Extra holds keys this version does not know about
	Extra map[string]interface{} `mapstructure:",remain"`

	// Platform is the platform the override was taken from
	Platform types.Platform `mapstructure:"-"`
	// Platforms lists every platform the item is enabled for
	Platforms []types.Platform `mapstructure:"-"`
}

// WindowsFields are the keys only meaningful under platforms.win
type WindowsFields struct {
	Desktop        bool     `mapstructure:"desktop"`
	Quicklaunch    bool     `mapstructure:"quicklaunch"`
	URLProtocols   []string `mapstructure:"url_protocols"`
	FileExtensions []string `mapstructure:"file_extensions"`
}

// LinuxFields are Desktop Entry keys passed through to the .desktop file
type LinuxFields struct {
	Categories           StringList        `mapstructure:"Categories"`
	DBusActivatable      *bool             `mapstructure:"DBusActivatable"`
	GenericName          string            `mapstructure:"GenericName"`
	Hidden               *bool             `mapstructure:"Hidden"`
	Implements           StringList        `mapstructure:"Implements"`
	Keywords             StringList        `mapstructure:"Keywords"`
	MimeType             StringList        `mapstructure:"MimeType"`
	NoDisplay            *bool             `mapstructure:"NoDisplay"`
	NotShowIn            StringList        `mapstructure:"NotShowIn"`
	OnlyShowIn           StringList        `mapstructure:"OnlyShowIn"`
	PrefersNonDefaultGPU *bool             `mapstructure:"PrefersNonDefaultGPU"`
	SingleMainWindow     *bool             `mapstructure:"SingleMainWindow"`
	StartupNotify        *bool             `mapstructure:"StartupNotify"`
	StartupWMClass       string            `mapstructure:"StartupWMClass"`
	TryExec              string            `mapstructure:"TryExec"`
	GlobPatterns         map[string]string `mapstructure:"glob_patterns"`
}

// MacOSFields are Info.plist keys and bundle options
type MacOSFields struct {
	CFBundleDisplayName                  string              `mapstructure:"CFBundleDisplayName"`
	CFBundleIdentifier                   string              `mapstructure:"CFBundleIdentifier"`
	CFBundleName                         string              `mapstructure:"CFBundleName"`
	CFBundleSpokenName                   string              `mapstructure:"CFBundleSpokenName"`
	CFBundleVersion                      string              `mapstructure:"CFBundleVersion"`
	CFBundleURLTypes                     []URLType           `mapstructure:"CFBundleURLTypes"`
	CFBundleDocumentTypes                []DocumentType      `mapstructure:"CFBundleDocumentTypes"`
	LSApplicationCategoryType            string              `mapstructure:"LSApplicationCategoryType"`
	LSBackgroundOnly                     *bool               `mapstructure:"LSBackgroundOnly"`
	LSEnvironment                        map[string]string   `mapstructure:"LSEnvironment"`
	LSMinimumSystemVersion               string              `mapstructure:"LSMinimumSystemVersion"`
	LSMultipleInstancesProhibited        *bool               `mapstructure:"LSMultipleInstancesProhibited"`
	LSRequiresNativeExecution            *bool               `mapstructure:"LSRequiresNativeExecution"`
	NSSupportsAutomaticGraphicsSwitching *bool               `mapstructure:"NSSupportsAutomaticGraphicsSwitching"`
	UTExportedTypeDeclarations           []UTTypeDeclaration `mapstructure:"UTExportedTypeDeclarations"`
	UTImportedTypeDeclarations           []UTTypeDeclaration `mapstructure:"UTImportedTypeDeclarations"`
	Entitlements                         []string            `mapstructure:"entitlements"`
	LinkInBundle                         map[string]string   `mapstructure:"link_in_bundle"`
}

// URLType is one CFBundleURLTypes entry
type URLType struct {
	CFBundleTypeRole    string   `mapstructure:"CFBundleTypeRole" plist:"CFBundleTypeRole,omitempty"`
	CFBundleURLSchemes  []string `mapstructure:"CFBundleURLSchemes" plist:"CFBundleURLSchemes"`
	CFBundleURLName     string   `mapstructure:"CFBundleURLName" plist:"CFBundleURLName,omitempty"`
	CFBundleURLIconFile string   `mapstructure:"CFBundleURLIconFile" plist:"CFBundleURLIconFile,omitempty"`
}

// DocumentType is one CFBundleDocumentTypes entry
type DocumentType struct {
	CFBundleTypeIconFile string   `mapstructure:"CFBundleTypeIconFile" plist:"CFBundleTypeIconFile,omitempty"`
	CFBundleTypeName     string   `mapstructure:"CFBundleTypeName" plist:"CFBundleTypeName"`
	CFBundleTypeRole     string   `mapstructure:"CFBundleTypeRole" plist:"CFBundleTypeRole,omitempty"`
	LSItemContentTypes   []string `mapstructure:"LSItemContentTypes" plist:"LSItemContentTypes"`
	LSHandlerRank        string   `mapstructure:"LSHandlerRank" plist:"LSHandlerRank"`
}

// UTTypeDeclaration is one exported or imported uniform type
type UTTypeDeclaration struct {
	UTTypeConformsTo       []string            `mapstructure:"UTTypeConformsTo" plist:"UTTypeConformsTo"`
	UTTypeDescription      string              `mapstructure:"UTTypeDescription" plist:"UTTypeDescription,omitempty"`
	UTTypeIconFile         string              `mapstructure:"UTTypeIconFile" plist:"UTTypeIconFile,omitempty"`
	UTTypeIdentifier       string              `mapstructure:"UTTypeIdentifier" plist:"UTTypeIdentifier"`
	UTTypeReferenceURL     string              `mapstructure:"UTTypeReferenceURL" plist:"UTTypeReferenceURL,omitempty"`
	UTTypeTagSpecification map[string][]string `mapstructure:"UTTypeTagSpecification" plist:"UTTypeTagSpecification"`
}

// EnabledOn reports whether the item is enabled for p
func (m *Metadata) EnabledOn(p types.Platform) bool {
	for _, enabled := range m.Platforms {
		if enabled == p {
			return true
		}
	}
	return false
}
