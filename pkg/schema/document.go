// Package schema decodes menu description documents and resolves each
// menu item's global fields and platform override into one record.
package schema

import (
	"bytes"
	"encoding/json"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/arthur-debert/menuinst/pkg/types"
)

// Document is a decoded menu description
type Document struct {
	Schema    string                   `json:"$schema"`
	ID        string                   `json:"$id"`
	MenuName  string                   `json:"menu_name"`
	MenuItems []map[string]interface{} `json:"menu_items"`
}

// Load reads and parses the document at path. Parse errors keep their
// code and gain the path as a detail.
func Load(fsys types.FS, path string) (*Document, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read menu document %s", path).
			WithDetail("path", path)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "invalid menu document %s", path).
			WithDetail("path", path)
	}
	return doc, nil
}

// Parse decodes and structurally checks a JSON document
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrMetadataParse, "malformed JSON")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structure the install engine relies on. Full
// JSON-Schema validation happens upstream.
func (d *Document) Validate() error {
	if d.MenuName == "" {
		return errors.New(errors.ErrMetadataInvalid, "menu_name must be a non-empty string")
	}
	if len(d.MenuItems) == 0 {
		return errors.New(errors.ErrMetadataInvalid, "menu_items must contain at least one item")
	}

	for i, item := range d.MenuItems {
		if _, ok := item["name"]; !ok {
			return errors.Newf(errors.ErrMetadataInvalid, "menu item %d has no name", i).
				WithDetail("index", i)
		}
		command, ok := item["command"].([]interface{})
		if !ok || len(command) == 0 {
			return errors.Newf(errors.ErrMetadataInvalid, "menu item %d needs a non-empty command list", i).
				WithDetail("index", i)
		}
		if _, ok := item[platformsKey].(map[string]interface{}); !ok {
			return errors.Newf(errors.ErrMetadataInvalid, "menu item %d has no platforms object", i).
				WithDetail("index", i)
		}
	}
	return nil
}
