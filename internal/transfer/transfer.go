// Package transfer composes repository, credential and API lookups into the
// upload, download and listing workflows.
package transfer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cbout22/gh-asset/internal/auth"
	"github.com/cbout22/gh-asset/internal/config"
	"github.com/cbout22/gh-asset/internal/github"
)

// RepoResolver infers the repository when none was given explicitly.
type RepoResolver interface {
	Resolve(ctx context.Context) (config.Slug, error)
}

// Progress reports download progress.
type Progress interface {
	github.Progress
	Finish() error
}

// ProgressFunc builds a Progress for a download of total bytes.
// total is -1 when the size is unknown.
type ProgressFunc func(total int64, description string) Progress

// Service runs the transfer workflows against one API client.
type Service struct {
	client *github.Client
	repos  RepoResolver
	creds  auth.Provider
	fs     FileSystem
	out    io.Writer
	log    logrus.FieldLogger

	// NewProgress is optional; downloads are silent when it is nil.
	NewProgress ProgressFunc
}

// New creates a Service. repos and creds are only consulted when the
// caller does not pass a repository or token explicitly.
func New(client *github.Client, repos RepoResolver, creds auth.Provider, fs FileSystem, out io.Writer, log logrus.FieldLogger) *Service {
	if fs == nil {
		fs = OSFileSystem{}
	}
	if out == nil {
		out = io.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		client: client,
		repos:  repos,
		creds:  creds,
		fs:     fs,
		out:    out,
		log:    log,
	}
}

// UpOptions are the inputs of Up.
type UpOptions struct {
	File  string
	Tag   string
	Repo  config.Slug // zero means infer
	Token string      // empty means ask the credential provider
}

// GetOptions are the inputs of Get.
type GetOptions struct {
	Name  string
	Repo  config.Slug
	Token string
	Dir   string // destination directory; empty means the working directory
}

// GetResult describes a finished download.
type GetResult struct {
	Repo  config.Slug
	Asset github.Asset
	Path  string
	Bytes int64
}

// resolveRepo returns repo, or asks the resolver when repo is zero.
func (s *Service) resolveRepo(ctx context.Context, repo config.Slug) (config.Slug, error) {
	if !repo.IsZero() {
		return repo, nil
	}
	if s.repos == nil {
		return config.Slug{}, errors.New("no repository given and none can be inferred")
	}
	repo, err := s.repos.Resolve(ctx)
	if err != nil {
		return config.Slug{}, errors.Wrap(err, "inferring repository")
	}
	return repo, nil
}

// readToken resolves the token for a read-only call. Without an explicit
// token the repository is probed anonymously, and the credential provider
// is only asked when the probe suggests a private repository.
func (s *Service) readToken(ctx context.Context, repo config.Slug, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	private, err := s.client.RequiresAuth(ctx, repo)
	if err != nil {
		return "", errors.Wrap(err, "probing repository")
	}
	if !private || s.creds == nil {
		return "", nil
	}

	s.log.WithField("repo", repo.String()).Debug("releases not visible anonymously, asking for a token")

	token, err := s.creds.Token()
	if errors.Is(err, auth.ErrNoToken) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Up uploads opts.File as an asset of the release tagged opts.Tag. The API
// response body is printed as-is; a rejected upload is not an error.
func (s *Service) Up(ctx context.Context, opts UpOptions) (*github.UploadResult, error) {
	token, err := auth.Resolve(opts.Token, s.creds)
	if err != nil {
		return nil, errors.Wrap(err, "uploading requires a token")
	}

	repo, err := s.resolveRepo(ctx, opts.Repo)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "repo: %s\n", repo)

	template, err := s.client.UploadURLTemplate(ctx, repo, opts.Tag, token)
	if err != nil {
		return nil, err
	}

	uploadURL := github.UploadURL(template, opts.File)
	fmt.Fprintln(s.out, uploadURL)

	data, err := s.fs.ReadFile(opts.File)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", opts.File)
	}

	s.log.WithFields(logrus.Fields{
		"repo":  repo.String(),
		"tag":   opts.Tag,
		"file":  opts.File,
		"bytes": len(data),
	}).Info("uploading asset")

	res, err := s.client.UploadAsset(ctx, uploadURL, token, data)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out, string(res.Body))
	return res, nil
}

// Get downloads the first asset named opts.Name into opts.Dir, overwriting
// any existing file. Nothing is created locally unless the asset exists.
func (s *Service) Get(ctx context.Context, opts GetOptions) (*GetResult, error) {
	repo, err := s.resolveRepo(ctx, opts.Repo)
	if err != nil {
		return nil, err
	}

	token, err := s.readToken(ctx, repo, opts.Token)
	if err != nil {
		return nil, err
	}

	releases, err := s.client.ListReleases(ctx, repo, token)
	if err != nil {
		return nil, errors.Wrapf(err, "listing releases of %s", repo)
	}

	asset, err := github.FindAsset(releases, opts.Name)
	if err != nil {
		return nil, err
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := s.fs.MkdirAll(dir); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	path := filepath.Join(dir, asset.Name)

	f, err := s.fs.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	s.log.WithFields(logrus.Fields{
		"repo":  repo.String(),
		"asset": asset.Name,
		"size":  asset.Size,
		"path":  path,
	}).Info("downloading asset")

	var progress Progress
	if s.NewProgress != nil {
		total := asset.Size
		if total <= 0 {
			total = -1
		}
		progress = s.NewProgress(total, asset.Name)
	}

	var reporter github.Progress
	if progress != nil {
		reporter = progress
	}
	n, err := s.client.DownloadAsset(ctx, asset, token, f, reporter)
	if progress != nil {
		_ = progress.Finish()
	}
	if err != nil {
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, errors.Wrapf(err, "closing %s", path)
	}

	return &GetResult{Repo: repo, Asset: asset, Path: path, Bytes: n}, nil
}

// List returns the first page of releases for repo, using the same token
// rules as Get.
func (s *Service) List(ctx context.Context, repo config.Slug, token string) (config.Slug, []github.Release, error) {
	repo, err := s.resolveRepo(ctx, repo)
	if err != nil {
		return config.Slug{}, nil, err
	}

	token, err = s.readToken(ctx, repo, token)
	if err != nil {
		return config.Slug{}, nil, err
	}

	releases, err := s.client.ListReleases(ctx, repo, token)
	if err != nil {
		return config.Slug{}, nil, errors.Wrapf(err, "listing releases of %s", repo)
	}
	return repo, releases, nil
}
