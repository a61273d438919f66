package winutil

import (
	"strings"

	"github.com/arthur-debert/menuinst/pkg/cmdline"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Registry is the association surface used by Windows menu items.
// Every call is idempotent; unregistering something absent succeeds.
type Registry interface {
	RegisterFileExtension(extension, identifier, command, icon string, mode types.Mode) error
	UnregisterFileExtension(extension, identifier string, mode types.Mode) error
	RegisterURLProtocol(protocol, command, identifier, icon string, mode types.Mode) error
	UnregisterURLProtocol(protocol, identifier string, mode types.Mode) error
}

// TraceValueName is written on protocol keys so we only delete keys we own
var TraceValueName = cmdline.EnsurePad("menuinst", "")

// ClassesPath is the key under which classes live for a hive root
const ClassesPath = `Software\Classes`

// ExtensionProgidsPath is where an extension lists its handlers
func ExtensionProgidsPath(extension string) string {
	return ClassesPath + `\` + normalizeExtension(extension) + `\OpenWithProgids`
}

// ProgidPath is the handler class key for identifier
func ProgidPath(identifier string) string {
	return ClassesPath + `\` + identifier
}

// ProtocolPath is the key for a URL scheme. System installs write
// under HKEY_CLASSES_ROOT directly, so the path has no Classes prefix.
func ProtocolPath(protocol string, mode types.Mode) string {
	if mode == types.ModeSystem {
		return protocol
	}
	return ClassesPath + `\` + protocol
}

// ProtocolTitle is the default value of a protocol key
func ProtocolTitle(protocol string) string {
	if protocol == "" {
		return "URL: Protocol"
	}
	return "URL:" + strings.ToUpper(protocol[:1]) + protocol[1:] + " Protocol"
}

func normalizeExtension(extension string) string {
	if strings.HasPrefix(extension, ".") {
		return strings.ToLower(extension)
	}
	return "." + strings.ToLower(extension)
}
