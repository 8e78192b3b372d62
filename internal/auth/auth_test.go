package auth

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestResolve_ExplicitWins(t *testing.T) {
	t.Parallel()

	tok, err := Resolve("explicit", Static("from-provider"))
	if err != nil {
		t.Fatalf("Resolve(): unexpected error: %v", err)
	}
	if tok != "explicit" {
		t.Errorf("Resolve(): got %q, want %q", tok, "explicit")
	}
}

func TestResolve_FallsBackToProvider(t *testing.T) {
	t.Parallel()

	tok, err := Resolve("", Static("from-provider"))
	if err != nil {
		t.Fatalf("Resolve(): unexpected error: %v", err)
	}
	if tok != "from-provider" {
		t.Errorf("Resolve(): got %q, want %q", tok, "from-provider")
	}
}

func TestResolve_NilProvider(t *testing.T) {
	t.Parallel()

	if _, err := Resolve("", nil); !errors.Is(err, ErrNoToken) {
		t.Errorf("Resolve(nil): got %v, want ErrNoToken", err)
	}
}

func TestEnv_GITHUB_TOKEN(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token-123")

	tok, err := Env{Name: "GITHUB_TOKEN"}.Token()
	if err != nil {
		t.Fatalf("Token(): unexpected error: %v", err)
	}
	if tok != "gh-token-123" {
		t.Errorf("Token(): got %q, want %q", tok, "gh-token-123")
	}
}

func TestEnv_Empty(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	if _, err := (Env{Name: "GITHUB_TOKEN"}).Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Token(): got %v, want ErrNoToken", err)
	}
}

func TestEnv_CustomLookup(t *testing.T) {
	t.Parallel()

	env := Env{
		Name: "GHE_TOKEN",
		Lookup: func(name string) (string, bool) {
			if name == "GHE_TOKEN" {
				return "enterprise", true
			}
			return "", false
		},
	}
	tok, err := env.Token()
	if err != nil {
		t.Fatalf("Token(): unexpected error: %v", err)
	}
	if tok != "enterprise" {
		t.Errorf("Token(): got %q, want %q", tok, "enterprise")
	}
}

func TestPrompt_ReadsLine(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := Prompt{In: strings.NewReader("  typed-token \nignored\n"), Out: &out}

	tok, err := p.Token()
	if err != nil {
		t.Fatalf("Token(): unexpected error: %v", err)
	}
	if tok != "typed-token" {
		t.Errorf("Token(): got %q, want %q", tok, "typed-token")
	}
	if !strings.Contains(out.String(), "token") {
		t.Errorf("prompt not written, got %q", out.String())
	}
}

func TestPrompt_NoTrailingNewline(t *testing.T) {
	t.Parallel()

	tok, err := Prompt{In: strings.NewReader("abc"), Out: &bytes.Buffer{}}.Token()
	if err != nil {
		t.Fatalf("Token(): unexpected error: %v", err)
	}
	if tok != "abc" {
		t.Errorf("Token(): got %q, want %q", tok, "abc")
	}
}

func TestPrompt_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Prompt{In: strings.NewReader("\n"), Out: &bytes.Buffer{}}.Token()
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Token(): got %v, want ErrNoToken", err)
	}
}

// countingProvider records how often it was asked.
type countingProvider struct {
	tok   string
	err   error
	calls int
}

func (c *countingProvider) Token() (string, error) {
	c.calls++
	return c.tok, c.err
}

func TestChain_FirstTokenWins(t *testing.T) {
	t.Parallel()

	empty := &countingProvider{err: ErrNoToken}
	first := &countingProvider{tok: "first"}
	second := &countingProvider{tok: "second"}

	tok, err := Chain{empty, first, second}.Token()
	if err != nil {
		t.Fatalf("Token(): unexpected error: %v", err)
	}
	if tok != "first" {
		t.Errorf("Token(): got %q, want %q", tok, "first")
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times, want 0", second.calls)
	}
}

func TestChain_StopsOnRealError(t *testing.T) {
	t.Parallel()

	boom := errors.New("tty closed")
	_, err := Chain{&countingProvider{err: boom}, Static("never")}.Token()
	if !errors.Is(err, boom) {
		t.Errorf("Token(): got %v, want %v", err, boom)
	}
}

func TestChain_Exhausted(t *testing.T) {
	t.Parallel()

	if _, err := (Chain{Static(""), Static("")}).Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("Token(): got %v, want ErrNoToken", err)
	}
}

func TestSetHeader(t *testing.T) {
	t.Parallel()

	req, _ := http.NewRequest(http.MethodGet, "https://api.github.com", nil)
	SetHeader(req, "")
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("anonymous request has Authorization %q", got)
	}

	SetHeader(req, "abc")
	if got := req.Header.Get("Authorization"); got != "token abc" {
		t.Errorf("Authorization header: got %q, want %q", got, "token abc")
	}
}
