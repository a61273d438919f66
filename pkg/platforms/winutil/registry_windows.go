//go:build windows

package winutil

import (
	stderrors "errors"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/logging"
	"github.com/arthur-debert/menuinst/pkg/types"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

var procSHChangeNotify = windows.NewLazySystemDLL("shell32.dll").NewProc("SHChangeNotify")

type winRegistry struct{}

// NewRegistry returns the registry-backed association surface
func NewRegistry() Registry {
	return &winRegistry{}
}

func hive(mode types.Mode) registry.Key {
	if mode == types.ModeSystem {
		return registry.LOCAL_MACHINE
	}
	return registry.CURRENT_USER
}

func protocolHive(mode types.Mode) registry.Key {
	if mode == types.ModeSystem {
		return registry.CLASSES_ROOT
	}
	return registry.CURRENT_USER
}

func (r *winRegistry) RegisterFileExtension(extension, identifier, command, icon string, mode types.Mode) error {
	root := hive(mode)
	logger := logging.GetLogger("winutil.registry")
	logger.Debug().Str("extension", extension).Str("identifier", identifier).Msg("Registering file extension")

	if err := setString(root, ExtensionProgidsPath(extension), identifier, ""); err != nil {
		return err
	}
	progid := ProgidPath(identifier)
	if err := setString(root, progid, "", extension+" "+identifier+" handler"); err != nil {
		return err
	}
	if err := setString(root, progid+`\shell\open\command`, "", command); err != nil {
		return err
	}
	if icon != "" {
		if err := setString(root, progid+`\DefaultIcon`, "", icon); err != nil {
			return err
		}
	}

	notifyAssociationsChanged()
	return nil
}

func (r *winRegistry) UnregisterFileExtension(extension, identifier string, mode types.Mode) error {
	root := hive(mode)

	if err := deleteTree(root, ProgidPath(identifier)); err != nil {
		return err
	}

	progids, err := registry.OpenKey(root, ExtensionProgidsPath(extension), registry.ALL_ACCESS)
	if err != nil {
		if stderrors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrRegistry, "cannot open %s", ExtensionProgidsPath(extension))
	}

	if err := progids.DeleteValue(identifier); err != nil && !stderrors.Is(err, registry.ErrNotExist) {
		progids.Close()
		return errors.Wrapf(err, errors.ErrRegistry, "cannot delete %s from %s", identifier, ExtensionProgidsPath(extension))
	}

	info, statErr := progids.Stat()
	progids.Close()
	if statErr == nil && info.ValueCount == 0 && info.SubKeyCount == 0 {
		_ = registry.DeleteKey(root, ExtensionProgidsPath(extension))
	}

	notifyAssociationsChanged()
	return nil
}

func (r *winRegistry) RegisterURLProtocol(protocol, command, identifier, icon string, mode types.Mode) error {
	root := protocolHive(mode)
	key := ProtocolPath(protocol, mode)

	if err := setString(root, key, "", ProtocolTitle(protocol)); err != nil {
		return err
	}
	if err := setString(root, key, "URL Protocol", ""); err != nil {
		return err
	}
	if err := setString(root, key+`\shell\open\command`, "", command); err != nil {
		return err
	}
	if icon != "" {
		if err := setString(root, key+`\DefaultIcon`, "", icon); err != nil {
			return err
		}
	}
	if identifier != "" {
		if err := setString(root, key, TraceValueName, identifier); err != nil {
			return err
		}
	}
	return nil
}

func (r *winRegistry) UnregisterURLProtocol(protocol, identifier string, mode types.Mode) error {
	root := protocolHive(mode)
	key := ProtocolPath(protocol, mode)

	k, err := registry.OpenKey(root, key, registry.QUERY_VALUE)
	if err != nil {
		if stderrors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrRegistry, "cannot open %s", key)
	}
	owner, _, ownerErr := k.GetStringValue(TraceValueName)
	k.Close()

	if identifier != "" && (ownerErr != nil || owner != identifier) {
		logging.GetLogger("winutil.registry").Debug().
			Str("protocol", protocol).
			Str("owner", owner).
			Msg("Protocol key belongs to someone else, leaving it")
		return nil
	}
	return deleteTree(root, key)
}

func setString(root registry.Key, path, name, value string) error {
	k, _, err := registry.CreateKey(root, path, registry.SET_VALUE)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRegistry, "cannot create key %s", path).WithDetail("key", path)
	}
	defer k.Close()
	if err := k.SetStringValue(name, value); err != nil {
		return errors.Wrapf(err, errors.ErrRegistry, "cannot set %s\\%s", path, name).WithDetail("key", path)
	}
	return nil
}

// deleteTree removes path and everything below it. registry.DeleteKey
// refuses keys that still have subkeys.
func deleteTree(root registry.Key, path string) error {
	k, err := registry.OpenKey(root, path, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		if stderrors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrRegistry, "cannot open %s", path)
	}
	children, err := k.ReadSubKeyNames(-1)
	k.Close()
	if err != nil {
		return errors.Wrapf(err, errors.ErrRegistry, "cannot list %s", path)
	}
	for _, child := range children {
		if err := deleteTree(root, path+`\`+child); err != nil {
			return err
		}
	}
	if err := registry.DeleteKey(root, path); err != nil && !stderrors.Is(err, registry.ErrNotExist) {
		return errors.Wrapf(err, errors.ErrRegistry, "cannot delete %s", path)
	}
	return nil
}

func notifyAssociationsChanged() {
	_, _, _ = procSHChangeNotify.Call(shcneAssocChanged, shcnfIDList, 0, 0)
}
