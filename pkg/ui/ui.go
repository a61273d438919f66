// Package ui renders command results in different formats.
// It supports terminal (rich), text (plain), JSON and YAML output.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/menuinst/pkg/errors"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderResult renders a *core.Result, a []*core.Result or any other value
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format. FormatAuto picks terminal
// output for a color-capable TTY and plain text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return &listRenderer{output: output, styles: terminalStyles()}, nil
	case FormatText:
		return &listRenderer{output: output, styles: plainStyles()}, nil
	case FormatJSON:
		return newJSONRenderer(output), nil
	case FormatYAML:
		return newYAMLRenderer(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
