package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cbout22/gh-asset/internal/auth"
	"github.com/cbout22/gh-asset/internal/config"
	"github.com/cbout22/gh-asset/internal/gitremote"
	"github.com/cbout22/gh-asset/internal/github"
	"github.com/cbout22/gh-asset/internal/transfer"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries the process-level dependencies shared by every command.
// Tests replace stdin, lookupEnv, runner and transport.
type app struct {
	configPath string
	verbose    bool

	settings   *config.Settings
	loadedPath string
	log        *logrus.Logger

	stdin     io.Reader
	lookupEnv func(string) (string, bool)
	runner    gitremote.Runner
	transport http.RoundTripper // nil means http.DefaultTransport
}

func newApp() *app {
	return &app{
		log:       logrus.New(),
		stdin:     os.Stdin,
		lookupEnv: os.LookupEnv,
		runner:    gitremote.ExecRunner{},
	}
}

// NewRootCmd creates the top-level `gh-asset` command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gh-asset",
		Short: "Upload and download GitHub release assets",
		Long: `gh-asset uploads a local file to a GitHub release and downloads release
assets by name. The repository is inferred from the "origin" git remote
unless --repo is given, and the token is read from GITHUB_TOKEN (or asked
for) unless --token is given.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags are not parsed yet for the completion request; the
			// completion handlers run setup themselves.
			if cmd.Name() == cobra.ShellCompRequestCmd {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultSettingsFile, "Path to the settings file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newUpCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newListCmd(a))

	return root
}

// setup configures logging and loads the settings file. It is safe to call
// more than once; the settings are reloaded when --config changed since the
// last load.
func (a *app) setup(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	} else {
		a.log.SetLevel(logrus.InfoLevel)
	}

	if a.settings != nil && a.loadedPath == a.configPath {
		return nil
	}
	s, err := config.LoadSettings(a.configPath)
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	a.settings = s
	a.loadedPath = a.configPath

	a.log.WithFields(logrus.Fields{
		"config":   a.configPath,
		"endpoint": s.Endpoint,
		"remote":   s.Remote,
	}).Debug("settings loaded")
	return nil
}

// repoFlag parses --repo, falling back to the settings file. The zero Slug
// means the repository should be inferred from git.
func (a *app) repoFlag(raw string) (config.Slug, error) {
	if raw != "" {
		return config.ParseSlug(raw)
	}
	return a.settings.DefaultRepo()
}

// service builds a transfer.Service. Non-interactive services never prompt
// for a token.
func (a *app) service(cmd *cobra.Command, timeout time.Duration, interactive bool) *transfer.Service {
	httpClient := &http.Client{Transport: a.transport, Timeout: timeout}
	client := github.New(httpClient, a.settings.Endpoint, a.log)
	repos := gitremote.New(a.runner, a.settings.Remote, a.log)

	creds := auth.Chain{auth.Env{Name: a.settings.TokenEnv, Lookup: a.lookupEnv}}
	if interactive {
		creds = append(creds, auth.Prompt{In: a.stdin, Out: cmd.ErrOrStderr()})
	}

	return transfer.New(client, repos, creds, transfer.OSFileSystem{}, cmd.OutOrStdout(), a.log)
}

// timeout returns the configured API timeout.
func (a *app) timeout() (time.Duration, error) {
	return a.settings.TimeoutDuration()
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
