package ui

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"gopkg.in/yaml.v3"
)

// encoder is the part of json.Encoder and yaml.Encoder we use
type encoder interface {
	Encode(v interface{}) error
}

// structuredRenderer provides machine-readable output
type structuredRenderer struct {
	encoder encoder
}

func newJSONRenderer(output io.Writer) *structuredRenderer {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return &structuredRenderer{encoder: enc}
}

func newYAMLRenderer(output io.Writer) *structuredRenderer {
	enc := yaml.NewEncoder(output)
	enc.SetIndent(2)
	return &structuredRenderer{encoder: enc}
}

func (r *structuredRenderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

// errorObject is the structured form of an error
type errorObject struct {
	Error   string                 `json:"error" yaml:"error"`
	Code    errors.ErrorCode       `json:"code" yaml:"code"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

func (r *structuredRenderer) RenderError(err error) error {
	obj := errorObject{
		Error: err.Error(),
		Code:  errors.GetErrorCode(err),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		obj.Details = details
	}
	return r.encoder.Encode(obj)
}

func (r *structuredRenderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
