package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnrecognizedRemote is returned when a remote URL does not point at github.com.
var ErrUnrecognizedRemote = errors.New("remote URL is not a github.com repository")

// remotePattern matches both SSH (github.com:owner/name) and HTTPS
// (github.com/owner/name) remote forms.
var remotePattern = regexp.MustCompile(`github\.com[:/]([^/\s]+/[^\s]+)`)

// Slug identifies a repository on the host as "owner/name".
type Slug struct {
	Owner string // user or organisation
	Name  string // repository name
}

// ParseSlug parses a raw "owner/name" string.
func ParseSlug(raw string) (Slug, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Slug{}, errors.Errorf("invalid repository %q: must be owner/name", raw)
	}
	return Slug{Owner: parts[0], Name: parts[1]}, nil
}

// ParseRemoteURL extracts the slug from a git remote URL such as
// git@github.com:owner/name.git or https://github.com/owner/name.
// A trailing ".git" and any trailing slash are stripped.
func ParseRemoteURL(remoteURL string) (Slug, error) {
	m := remotePattern.FindStringSubmatch(remoteURL)
	if m == nil {
		return Slug{}, errors.Wrapf(ErrUnrecognizedRemote, "parsing %q", remoteURL)
	}

	raw := strings.TrimSuffix(m[1], "/")
	raw = strings.TrimSuffix(raw, ".git")

	slug, err := ParseSlug(raw)
	if err != nil {
		return Slug{}, errors.Wrapf(ErrUnrecognizedRemote, "parsing %q", remoteURL)
	}
	return slug, nil
}

// String returns "owner/name".
func (s Slug) String() string {
	return fmt.Sprintf("%s/%s", s.Owner, s.Name)
}

// IsZero reports whether the slug is unset.
func (s Slug) IsZero() bool {
	return s.Owner == "" && s.Name == ""
}
