package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	DefaultSettingsFile = ".gh-asset.toml"
	DefaultEndpoint     = "https://api.github.com"
	DefaultRemote       = "origin"
	DefaultTokenEnv     = "GITHUB_TOKEN"
)

// Settings represents the optional .gh-asset.toml file.
// Every field has a usable default, so the file itself is optional.
type Settings struct {
	// Endpoint is the REST API base URL.
	Endpoint string `toml:"endpoint,omitempty"`
	// Repo is the default "owner/name" used when --repo is not given.
	Repo string `toml:"repo,omitempty"`
	// Remote is the git remote inspected to infer the repository.
	Remote string `toml:"remote,omitempty"`
	// TokenEnv names the environment variable holding the access token.
	TokenEnv string `toml:"token_env,omitempty"`
	// Timeout bounds every API call, e.g. "30s". Empty means no timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// NewSettings returns settings populated with defaults.
func NewSettings() *Settings {
	return &Settings{
		Endpoint: DefaultEndpoint,
		Remote:   DefaultRemote,
		TokenEnv: DefaultTokenEnv,
	}
}

// LoadSettings reads and parses a settings file from the given path.
// If the file does not exist it returns the defaults (no error).
func LoadSettings(path string) (*Settings, error) {
	s := NewSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "reading settings")
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}

	// Keys present but empty fall back to the defaults
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.Remote == "" {
		s.Remote = DefaultRemote
	}
	if s.TokenEnv == "" {
		s.TokenEnv = DefaultTokenEnv
	}

	if _, err := s.TimeoutDuration(); err != nil {
		return nil, err
	}

	return s, nil
}

// TimeoutDuration parses Timeout. Zero means no timeout.
func (s *Settings) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid timeout %q", s.Timeout)
	}
	if d < 0 {
		return 0, errors.Errorf("invalid timeout %q: must not be negative", s.Timeout)
	}
	return d, nil
}

// DefaultRepo parses Repo, returning the zero Slug when it is unset.
func (s *Settings) DefaultRepo() (Slug, error) {
	if s.Repo == "" {
		return Slug{}, nil
	}
	return ParseSlug(s.Repo)
}
