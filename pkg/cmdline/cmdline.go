// Package cmdline quotes argument vectors for the shells that launch
// menu items: POSIX sh on Linux and macOS, cmd.exe on Windows.
package cmdline

import (
	"regexp"
	"strings"
)

// DefaultPad wraps names produced by EnsurePad
const DefaultPad = "_"

var posixUnsafe = regexp.MustCompile(`[^\w@%+=:,./-]`)

// QuoteArgs quotes every token for a POSIX shell
func QuoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = QuoteString(a)
	}
	return out
}

// QuoteString quotes s for a POSIX shell. Safe tokens come back as is.
// Double quotes are preferred so the result can be embedded in a
// single-quoted `bash -c '...'` line; single quotes are used when s
// itself contains a single or double quote.
func QuoteString(s string) string {
	if s == "" {
		return "''"
	}
	if !posixUnsafe.MatchString(s) {
		return s
	}
	if !strings.ContainsAny(s, `'"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// JoinArgs quotes args for a POSIX shell and joins them with spaces
func JoinArgs(args []string) string {
	return strings.Join(QuoteArgs(args), " ")
}

// WinQuoteArgs quotes args for cmd.exe. A `cmd /C` or `cmd /K` line
// whose tail contains spaces gets the tail wrapped in an extra pair of
// quotes, which cmd strips before running it.
func WinQuoteArgs(args []string) []string {
	if CollapsesCmdTail(args) {
		tail := make([]string, 0, len(args)-2)
		for _, a := range args[2:] {
			tail = append(tail, WinQuoteString(a))
		}
		return []string{
			WinQuoteString(args[0]),
			args[1],
			`"` + strings.Join(tail, " ") + `"`,
		}
	}

	out := make([]string, len(args))
	for i, a := range args {
		out[i] = WinQuoteString(a)
	}
	return out
}

// WinQuoteString quotes a single cmd.exe token. Existing surrounding
// quotes are dropped first. Tokens starting with "-" or a space are
// flags and stay bare; otherwise a token is quoted when it contains a
// space or a "/" past its first character (a path, not a switch).
func WinQuoteString(s string) string {
	s = strings.Trim(s, `"`)
	if s == "" {
		return `""`
	}
	if s[0] == '-' || s[0] == ' ' {
		return s
	}
	if strings.Contains(s, " ") || strings.Contains(s[1:], "/") {
		return `"` + s + `"`
	}
	return s
}

// WinJoinArgs quotes args for cmd.exe and joins them with spaces
func WinJoinArgs(args []string) string {
	return strings.Join(WinQuoteArgs(args), " ")
}

// EnsurePad wraps name in pad on both sides unless it is empty or
// already wrapped. An empty pad means DefaultPad.
func EnsurePad(name, pad string) string {
	if pad == "" {
		pad = DefaultPad
	}
	if name == "" || (strings.HasPrefix(name, pad) && strings.HasSuffix(name, pad) && len(name) >= 2*len(pad)) {
		return name
	}
	return pad + name + pad
}

// CollapsesCmdTail reports whether WinQuoteArgs wraps the tail of args
// in the extra pair of quotes
func CollapsesCmdTail(args []string) bool {
	return len(args) > 2 && isCmdInvocation(args[0], args[1]) && anyContainsSpace(args[2:])
}

func isCmdInvocation(exe, flag string) bool {
	upper := strings.ToUpper(exe)
	if !strings.Contains(upper, "CMD.EXE") && !strings.Contains(upper, "%COMSPEC%") {
		return false
	}
	switch strings.ToUpper(flag) {
	case "/C", "/K":
		return true
	}
	return false
}

func anyContainsSpace(args []string) bool {
	for _, a := range args {
		if strings.Contains(a, " ") {
			return true
		}
	}
	return false
}
