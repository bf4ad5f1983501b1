// Package selfupdate replaces the running prepwise binary with the latest
// GitHub release after verifying its checksum.
package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
)

const (
	defaultOwner   = "abhisek"
	defaultRepo    = "prepwise"
	defaultBaseURL = "https://api.github.com"

	// DevVersion is the version string of builds without release ldflags.
	DevVersion = "(devel)"
)

// Checker looks up and installs releases.
type Checker struct {
	client   *http.Client
	owner    string
	repo     string
	baseURL  string
	platform platform
	execPath func() (string, error)
	log      *zap.Logger
}

type Option func(*Checker)

func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

// WithBaseURL points release lookups at a GitHub API compatible server.
func WithBaseURL(url string) Option {
	return func(c *Checker) { c.baseURL = url }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Checker) { c.log = log }
}

func withExecPath(fn func() (string, error)) Option {
	return func(c *Checker) { c.execPath = fn }
}

func withPlatform(goos, goarch string) Option {
	return func(c *Checker) { c.platform = platform{goos: goos, goarch: goarch} }
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:   &http.Client{Timeout: 30 * time.Second},
		owner:    defaultOwner,
		repo:     defaultRepo,
		baseURL:  defaultBaseURL,
		platform: platform{goos: runtime.GOOS, goarch: runtime.GOARCH},
		execPath: os.Executable,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CheckInput struct {
	Version string
}

type CheckResult struct {
	LatestVersion   string
	ReleaseURL      string
	UpdateAvailable bool
}

type release struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
}

// assetURL returns the download URL of the named asset.
func (r *release) assetURL(name string) (string, error) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a.URL, nil
		}
	}
	return "", fmt.Errorf("release %s has no asset %s", r.TagName, name)
}

// Check fetches the latest release and compares it with input.Version.
// Versions that are not valid semver never report an update.
func (c *Checker) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	rel, err := c.fetchRelease(ctx, "latest")
	if err != nil {
		return nil, err
	}

	res := &CheckResult{
		LatestVersion:   rel.TagName,
		ReleaseURL:      rel.HTMLURL,
		UpdateAvailable: newer(rel.TagName, input.Version),
	}
	c.log.Debug("release check",
		zap.String("current", input.Version),
		zap.String("latest", rel.TagName),
		zap.Bool("update", res.UpdateAvailable))
	return res, nil
}

// fetchRelease reads releases/latest or, given a tag, releases/tags/<tag>.
func (c *Checker) fetchRelease(ctx context.Context, tag string) (*release, error) {
	path := "latest"
	if tag != "latest" {
		path = "tags/" + url.PathEscape(tag)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/%s", strings.TrimRight(c.baseURL, "/"), c.owner, c.repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound && tag != "latest":
		return nil, fmt.Errorf("%w: %s", ErrNoSuchRelease, tag)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, endpoint)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &rel, nil
}

// newer reports whether tag is a later semver than current.
func newer(tag, current string) bool {
	t, c := canonical(tag), canonical(current)
	return t != "" && c != "" && semver.Compare(t, c) > 0
}

// canonical returns v with a leading "v" if it is valid semver, else "".
func canonical(v string) string {
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
