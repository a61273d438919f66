package schema

import (
	"reflect"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
	"github.com/go-viper/mapstructure/v2"
)

const platformsKey = "platforms"

// defaults applied to the global layer when a key is absent or null
var defaults = map[string]interface{}{
	"activate": true,
	"terminal": false,
}

// MergeFields returns a copy of global with every non-nil value of
// override written over it. Keys only present in override are added.
// A nil override value never clobbers the global one.
func MergeFields(global, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(global)+len(override))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range override {
		if v == nil {
			continue
		}
		merged[k] = v
	}
	return merged
}

// EnabledPlatforms lists the platforms whose entry under "platforms"
// is present and not null, in a stable order
func EnabledPlatforms(item map[string]interface{}) []types.Platform {
	platforms, _ := item[platformsKey].(map[string]interface{})
	var enabled []types.Platform
	for _, p := range types.AllPlatforms() {
		if v, ok := platforms[string(p)]; ok && v != nil {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// EnabledFor reports whether item has a non-null entry for p
func EnabledFor(item map[string]interface{}, p types.Platform) bool {
	for _, enabled := range EnabledPlatforms(item) {
		if enabled == p {
			return true
		}
	}
	return false
}

// Merge resolves one raw menu item for platform p: the global fields,
// then defaults for unset booleans, then the platform override on top.
// The result is decoded into a typed Metadata record.
func Merge(item map[string]interface{}, p types.Platform) (*Metadata, error) {
	global := make(map[string]interface{}, len(item))
	for k, v := range item {
		if k == platformsKey {
			continue
		}
		global[k] = v
	}
	for k, v := range defaults {
		if global[k] == nil {
			global[k] = v
		}
	}

	var override map[string]interface{}
	if platforms, ok := item[platformsKey].(map[string]interface{}); ok {
		override, _ = platforms[string(p)].(map[string]interface{})
	}

	md, err := Decode(MergeFields(global, override))
	if err != nil {
		return nil, err
	}
	md.Platform = p
	md.Platforms = EnabledPlatforms(item)

	if md.Name.IsZero() {
		return nil, errors.New(errors.ErrMetadataInvalid, "menu item has no name")
	}
	if len(md.Command) == 0 {
		return nil, errors.Newf(errors.ErrMetadataInvalid, "menu item %q has an empty command", md.Name.Resolve(true))
	}

	return md, nil
}

// Decode turns a flat merged field map into Metadata
func Decode(fields map[string]interface{}) (*Metadata, error) {
	var md Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &md,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToNameHookFunc(),
			stringToStringListHookFunc(),
		),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to build metadata decoder")
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, errors.Wrap(err, errors.ErrMetadataInvalid, "invalid menu item metadata")
	}
	return &md, nil
}

func stringToNameHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(Name{}) || from.Kind() != reflect.String {
			return data, nil
		}
		return Name{Value: reflect.ValueOf(data).String()}, nil
	}
}

// stringToStringListHookFunc splits "a;b;" into ["a", "b"]
func stringToStringListHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(StringList{}) || from.Kind() != reflect.String {
			return data, nil
		}
		var out StringList
		for _, part := range strings.Split(reflect.ValueOf(data).String(), ";") {
			if part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}
