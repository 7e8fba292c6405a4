package cmd

import (
	"io"
	"os"
	"strings"

	"emperror.dev/errors"
	"golang.org/x/term"

	"github.com/chukul/split-token-publisher/internal/ui"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// readValue returns the first argument, then piped stdin, then a masked prompt.
func readValue(args []string, in *os.File, prompt, placeholder string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	if !isTerminal(in) {
		b, err := io.ReadAll(in)
		if err != nil {
			return "", errors.WrapIf(err, "failed to read stdin")
		}
		return strings.TrimSpace(string(b)), nil
	}

	v, err := ui.GetInput(prompt, placeholder, true)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
