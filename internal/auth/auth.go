package auth

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ErrNoToken is returned by a Provider that has no token to offer.
var ErrNoToken = errors.New("no GitHub token provided")

// Provider supplies a GitHub personal access token.
// Implementations return ErrNoToken when they have nothing to offer.
type Provider interface {
	Token() (string, error)
}

// Resolve returns explicit when it is set, otherwise asks p.
func Resolve(explicit string, p Provider) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p == nil {
		return "", ErrNoToken
	}
	return p.Token()
}

// Static is a fixed token. The empty Static provides nothing.
type Static string

func (s Static) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Env reads the token from a single environment variable.
type Env struct {
	Name string
	// Lookup defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

func (e Env) Token() (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(e.Name); ok && v != "" {
		return v, nil
	}
	return "", ErrNoToken
}

// Prompt asks for the token interactively. When In is a terminal the
// input is not echoed.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompt) Token() (string, error) {
	fmt.Fprint(p.Out, "Input github token: ")

	var line string
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", errors.Wrap(err, "reading token")
		}
		line = string(b)
	} else {
		s, err := bufio.NewReader(p.In).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", errors.Wrap(err, "reading token")
		}
		line = s
	}

	token := strings.TrimSpace(line)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Chain tries each provider in order and returns the first token found.
type Chain []Provider

func (c Chain) Token() (string, error) {
	for _, p := range c {
		tok, err := p.Token()
		if errors.Is(err, ErrNoToken) {
			continue
		}
		return tok, err
	}
	return "", ErrNoToken
}

// SetHeader adds the Authorization header for token. An empty token
// leaves the request anonymous.
func SetHeader(req *http.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "token "+token)
}
