package github

import (
	"fmt"
	"net/http"
)

// Release is the subset of a GitHub release used here.
type Release struct {
	TagName   string  `json:"tag_name"`
	Name      string  `json:"name"`
	UploadURL string  `json:"upload_url"` // RFC 6570 template, e.g. ".../assets{?name,label}"
	Assets    []Asset `json:"assets"`
}

// Asset is a binary attachment on a release.
type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
	URL                string `json:"url"` // API URL; serves bytes with Accept: application/octet-stream
	BrowserDownloadURL string `json:"browser_download_url"`
}

// TagNotFoundError is returned when no release carries the requested tag.
type TagNotFoundError struct {
	Tag string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %s not found", e.Tag)
}

// AssetNotFoundError is returned when no release has an asset with the requested name.
type AssetNotFoundError struct {
	Name string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %s not found", e.Name)
}

// UnexpectedResponseError is returned when the releases listing is not a
// list of release objects, typically because the API answered with an
// error envelope such as {"message": "Bad credentials"}.
type UnexpectedResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected API response (HTTP %d): %s", e.StatusCode, truncate(e.Body))
}

// HTTPError is returned for a non-2xx status.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), truncate(e.Body))
}

// NotFound reports whether the server answered 404.
func (e *HTTPError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
