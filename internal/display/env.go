package display

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultCIEnv lists the variables that mark a CI environment.
var DefaultCIEnv = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"BUILD_NUMBER",
	"BUILD_ID",
	"RUN_ID",
	"CI_NAME",
	"GITHUB_ACTIONS",
}

// IsCI reports whether any of vars is set to a truthy value.
func IsCI(getenv func(string) string, vars []string) bool {
	for _, name := range vars {
		switch strings.ToLower(strings.TrimSpace(getenv(name))) {
		case "", "0", "false":
			continue
		default:
			return true
		}
	}
	return false
}

// colorQuery asks the platform whether the output supports color.
// ok is false when the platform cannot answer.
type colorQuery func() (enabled, ok bool)

// decideColors applies the color precedence: explicit "no color" signals,
// then the platform query, then FORCE_COLOR, then whether output is a TTY.
func decideColors(getenv func(string) string, query colorQuery, tty bool) bool {
	if getenv("NO_COLOR") != "" || getenv("CLICOLOR") == "0" {
		return false
	}
	if query != nil {
		if enabled, ok := query(); ok {
			return enabled
		}
	}
	if force := getenv("FORCE_COLOR"); force != "" {
		return force != "0"
	}
	return tty
}

// termenvQuery answers the color question from the terminal's profile.
// It has no answer for outputs that are not terminals.
func termenvQuery(w io.Writer) colorQuery {
	return func() (bool, bool) {
		if !isTerminal(w) {
			return false, false
		}
		return termenv.NewOutput(w).ColorProfile() != termenv.Ascii, true
	}
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalSize returns the size of w, or zeros when it cannot be queried.
func terminalSize(w io.Writer) (columns, rows int) {
	f, ok := w.(fdWriter)
	if !ok {
		return 0, 0
	}
	columns, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}
	return columns, rows
}
