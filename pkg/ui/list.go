package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/menuinst/pkg/core"
	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/pterm/pterm"
)

// styles decorate the pieces of a result listing
type styles struct {
	title   func(string) string
	added   func(string) string
	removed func(string) string
	muted   func(string) string
	err     func(string) string
}

// sprinter is implemented by pterm colors and styles
type sprinter interface {
	Sprint(a ...interface{}) string
}

func styled(p sprinter) func(string) string {
	return func(s string) string { return p.Sprint(s) }
}

func terminalStyles() styles {
	return styles{
		title:   styled(pterm.Bold),
		added:   styled(pterm.NewStyle(pterm.FgGreen)),
		removed: styled(pterm.NewStyle(pterm.FgRed)),
		muted:   styled(pterm.NewStyle(pterm.FgGray)),
		err:     styled(pterm.NewStyle(pterm.FgRed, pterm.Bold)),
	}
}

func plainStyles() styles {
	same := func(s string) string { return s }
	return styles{title: same, added: same, removed: same, muted: same, err: same}
}

// listRenderer prints one block per result: a heading, then every
// path marked + or -, then the skipped items
type listRenderer struct {
	output io.Writer
	styles styles
}

func (r *listRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *core.Result:
		return r.write(r.formatResult(v))
	case []*core.Result:
		if len(v) == 0 {
			return r.write(r.styles.muted("No menu documents found") + "\n")
		}
		blocks := make([]string, 0, len(v))
		for _, res := range v {
			blocks = append(blocks, r.formatResult(res))
		}
		return r.write(strings.Join(blocks, "\n"))
	case string:
		return r.RenderMessage(v)
	default:
		return r.write(fmt.Sprintf("%+v\n", v))
	}
}

func (r *listRenderer) RenderError(err error) error {
	var b strings.Builder
	b.WriteString(r.styles.err("Error:") + " " + err.Error() + "\n")
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		for _, key := range sortedKeys(details) {
			b.WriteString(r.styles.muted(fmt.Sprintf("  %s: %v", key, details[key])) + "\n")
		}
	}
	return r.write(b.String())
}

func (r *listRenderer) RenderMessage(msg string) error {
	return r.write(msg + "\n")
}

func (r *listRenderer) formatResult(res *core.Result) string {
	var b strings.Builder

	verb := "installed"
	mark := r.styles.added("+")
	if res.Operation == core.OperationRemove {
		verb = "removed"
		mark = r.styles.removed("-")
	}
	if res.Delegated {
		verb += " by an elevated process"
	}

	heading := fmt.Sprintf("%s %s", r.styles.title(res.MenuName), verb)
	b.WriteString(heading + " " + r.styles.muted(fmt.Sprintf("(%s, %s)", res.Platform, res.Mode)) + "\n")

	if len(res.Paths) == 0 && !res.Delegated {
		b.WriteString("  " + r.styles.muted("nothing to do") + "\n")
	}
	for _, path := range res.Paths {
		b.WriteString("  " + mark + " " + path + "\n")
	}
	for _, name := range res.Skipped {
		b.WriteString("  " + r.styles.muted("skipped "+name+" (not enabled for "+string(res.Platform)+")") + "\n")
	}
	return b.String()
}

func (r *listRenderer) write(s string) error {
	_, err := io.WriteString(r.output, s)
	return err
}
