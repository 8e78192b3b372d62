// Package gitremote infers the GitHub repository of the working copy from
// its git remote configuration.
package gitremote

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cbout22/gh-asset/internal/config"
)

// ErrNoRemote is returned when the requested remote is not configured.
var ErrNoRemote = errors.New("git remote not found")

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
}

var _ Runner = ExecRunner{}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, errors.Wrapf(err, "%s %s failed; stderr=%s", name, strings.Join(args, " "), strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, errors.Wrapf(err, "%s %s failed", name, strings.Join(args, " "))
	}
	return out, nil
}

// Resolver reads `git remote -v` and turns the selected remote into a slug.
type Resolver struct {
	runner Runner
	remote string
	log    logrus.FieldLogger
}

// New creates a Resolver for the named remote (config.DefaultRemote when empty).
func New(runner Runner, remote string, log logrus.FieldLogger) *Resolver {
	if remote == "" {
		remote = config.DefaultRemote
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{runner: runner, remote: remote, log: log}
}

// Resolve returns the "owner/name" slug of the configured remote.
func (r *Resolver) Resolve(ctx context.Context) (config.Slug, error) {
	out, err := r.runner.Run(ctx, "git", "remote", "-v")
	if err != nil {
		return config.Slug{}, errors.Wrap(err, "listing git remotes")
	}

	url, ok := RemoteURL(out, r.remote)
	if !ok {
		return config.Slug{}, errors.Wrapf(ErrNoRemote, "no %q remote", r.remote)
	}

	r.log.WithFields(logrus.Fields{"remote": r.remote, "url": url}).Debug("resolved git remote")

	return config.ParseRemoteURL(url)
}

// RemoteURL extracts the URL of the named remote from `git remote -v` output.
// Each line looks like "origin\tgit@github.com:owner/name.git (fetch)".
func RemoteURL(output []byte, remote string) (string, bool) {
	var url string
	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == remote {
			url = fields[1]
		}
	}
	return url, url != ""
}
