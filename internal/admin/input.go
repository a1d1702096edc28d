package admin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TokenEnv names the environment variable holding the bearer token.
const TokenEnv = "BUGRADAR_TOKEN"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetToken prints a prompt to w and reads a token from the terminal
// without echo.
func GetToken(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Bearer token: "); err != nil {
		return "", err
	}
	t, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(t)), nil
}

// ResolveToken picks the token from the flag, then the environment, then
// an interactive prompt.
func ResolveToken(flagValue string, lookupEnv func(string) (string, bool), w io.Writer) (string, error) {
	if t := strings.TrimSpace(flagValue); t != "" {
		return t, nil
	}
	if t, ok := lookupEnv(TokenEnv); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t), nil
	}
	t, err := GetToken(w)
	if err != nil {
		return "", err
	}
	if t == "" {
		return "", errors.New("empty token")
	}
	return t, nil
}
