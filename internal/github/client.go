// Package github is a small client for the GitHub releases REST API:
// locating a release by tag, listing release assets, uploading an asset
// and streaming an asset's bytes.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cbout22/gh-asset/internal/auth"
	"github.com/cbout22/gh-asset/internal/config"
)

// ChunkSize is the buffer size used when streaming a download to disk.
const ChunkSize = 8192

// Progress receives the byte count of each chunk written during a download.
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add64(n int64) error
}

// Client talks to one GitHub API endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// New creates a Client. An empty baseURL means config.DefaultEndpoint and a
// nil httpClient means http.DefaultClient.
func New(httpClient *http.Client, baseURL string, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = config.DefaultEndpoint
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// ReleasesURL returns the releases listing endpoint for repo.
func (c *Client) ReleasesURL(repo config.Slug) string {
	return c.baseURL + "/repos/" + repo.String() + "/releases"
}

// do sends a request carrying token (if any) and the given extra headers.
func (c *Client) do(ctx context.Context, method, rawURL, token string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	for k, v := range header {
		req.Header[k] = v
	}
	auth.SetHeader(req, token)

	c.log.WithFields(logrus.Fields{
		"method":        method,
		"url":           rawURL,
		"authenticated": token != "",
	}).Debug("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, rawURL)
	}

	c.log.WithFields(logrus.Fields{"url": rawURL, "status": resp.StatusCode}).Debug("received response")
	return resp, nil
}

// newHTTPError drains a bounded part of resp.Body into an HTTPError.
func newHTTPError(resp *http.Response) *HTTPError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &HTTPError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       b,
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// UploadURLTemplate finds the release tagged tag and returns its upload_url
// template. The listing's status code is not inspected; anything that is not
// an array of objects carrying tag_name is an UnexpectedResponseError.
func (c *Client) UploadURLTemplate(ctx context.Context, repo config.Slug, tag, token string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.ReleasesURL(repo), token, nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading releases response")
	}

	unexpected := &UnexpectedResponseError{StatusCode: resp.StatusCode, Body: body}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", unexpected
	}

	for _, entry := range entries {
		var tagName string
		raw, ok := entry["tag_name"]
		if !ok || json.Unmarshal(raw, &tagName) != nil {
			return "", unexpected
		}
		if tagName != tag {
			continue
		}

		var uploadURL string
		if err := json.Unmarshal(entry["upload_url"], &uploadURL); err != nil || uploadURL == "" {
			return "", unexpected
		}
		return uploadURL, nil
	}

	return "", &TagNotFoundError{Tag: tag}
}

// ListReleases returns the first page of releases for repo, in API order.
func (c *Client) ListReleases(ctx context.Context, repo config.Slug, token string) ([]Release, error) {
	resp, err := c.do(ctx, http.MethodGet, c.ReleasesURL(repo), token, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newHTTPError(resp)
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, errors.Wrap(err, "decoding releases")
	}
	return releases, nil
}

// RequiresAuth probes the releases listing anonymously. A 404 means the
// repository may be private.
func (c *Client) RequiresAuth(ctx context.Context, repo config.Slug) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, c.ReleasesURL(repo), "", nil, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusNotFound, nil
}

// FindAsset returns the first asset named name, scanning releases and
// their assets in order.
func FindAsset(releases []Release, name string) (Asset, error) {
	for _, rel := range releases {
		for _, a := range rel.Assets {
			if a.Name == name {
				return a, nil
			}
		}
	}
	return Asset{}, &AssetNotFoundError{Name: name}
}

// UploadURL turns an upload_url template into a concrete URL naming the
// asset after the base name of filePath. Everything from the first "{"
// of the template is dropped.
func UploadURL(template, filePath string) string {
	base := template
	if i := strings.IndexByte(template, '{'); i >= 0 {
		base = template[:i]
	}
	q := url.Values{"name": {filepath.Base(filePath)}}
	return base + "?" + q.Encode()
}

// UploadResult is the raw outcome of an upload.
type UploadResult struct {
	StatusCode int
	Body       json.RawMessage
}

// UploadAsset POSTs data to uploadURL. A non-2xx status is not an error:
// the API's JSON body (e.g. "already_exists") is returned for the caller
// to show.
func (c *Client) UploadAsset(ctx context.Context, uploadURL, token string, data []byte) (*UploadResult, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/octet-stream")

	resp, err := c.do(ctx, http.MethodPost, uploadURL, token, bytes.NewReader(data), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading upload response")
	}

	if resp.StatusCode != http.StatusCreated {
		c.log.WithFields(logrus.Fields{"url": uploadURL, "status": resp.StatusCode}).Warn("upload was not accepted")
	}

	return &UploadResult{StatusCode: resp.StatusCode, Body: body}, nil
}

// DownloadAsset streams the asset's bytes into w in ChunkSize pieces,
// reporting each piece to progress (which may be nil). It returns the
// number of bytes written.
func (c *Client) DownloadAsset(ctx context.Context, asset Asset, token string, w io.Writer, progress Progress) (int64, error) {
	header := http.Header{}
	header.Set("Accept", "application/octet-stream")

	resp, err := c.do(ctx, http.MethodGet, asset.URL, token, nil, header)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return 0, newHTTPError(resp)
	}

	var written int64
	buf := make([]byte, ChunkSize)
	for {
		n, rerr := io.ReadFull(resp.Body, buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, errors.Wrapf(err, "writing %s", asset.Name)
			}
			written += int64(n)
			if progress != nil {
				_ = progress.Add64(int64(n))
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return written, errors.Wrapf(rerr, "streaming %s", asset.Name)
		}
	}

	c.log.WithFields(logrus.Fields{"asset": asset.Name, "bytes": written}).Debug("download complete")
	return written, nil
}
