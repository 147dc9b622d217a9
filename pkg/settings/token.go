package settings

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/netops-tools/sasectl/pkg/util"
)

// TokenEnv names the environment variable holding the bearer token.
const TokenEnv = "API_TOKEN"

// PromptFunc reads a secret interactively.
type PromptFunc func(label string) (string, error)

// ResolveToken returns the API token from the environment, falling back to
// prompt when the variable is empty. prompt may be nil.
func ResolveToken(getenv func(string) string, prompt PromptFunc) (string, error) {
	if tok := strings.TrimSpace(getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	if prompt == nil {
		return "", fmt.Errorf("%w: export %s", util.ErrMissingToken, TokenEnv)
	}
	tok, err := prompt("API token: ")
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", util.ErrMissingToken
	}
	return tok, nil
}

// TerminalPrompt reads a secret from in without echo. It returns nil when in
// is not a terminal, so scripted runs fail fast instead of blocking.
func TerminalPrompt(in *os.File, out io.Writer) PromptFunc {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func(label string) (string, error) {
		fmt.Fprint(out, label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
