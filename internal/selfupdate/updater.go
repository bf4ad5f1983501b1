package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	binaryName    = "prepwise"
	checksumsFile = "checksums.txt"

	// maxDownload caps any single release asset.
	maxDownload = 256 << 20
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
	ErrNoSuchRelease = errors.New("release not found")
)

// Stage names one step of Update.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageApply    Stage = "apply"
	StageDone     Stage = "done"
)

// UpdateInput names the running version and, optionally, the release to
// install. An empty TargetVersion means the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

type UpdateProgress struct {
	Stage   Stage
	Message string
}

// platform is the GOOS/GOARCH pair a release asset is built for.
type platform struct {
	goos, goarch string
}

var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// asset returns the archive name goreleaser publishes for p. Darwin ships a
// single universal archive.
func (p platform) asset() (string, error) {
	if p.goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}
	arch, ok := releaseArch[p.goarch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", p.goarch)
	}
	switch p.goos {
	case "linux":
		return fmt.Sprintf("%s_Linux_%s.tar.gz", binaryName, arch), nil
	case "windows":
		return fmt.Sprintf("%s_Windows_%s.zip", binaryName, arch), nil
	}
	return "", fmt.Errorf("unsupported operating system: %s", p.goos)
}

// executable is the file name of the binary inside the archive.
func (p platform) executable() string {
	if p.goos == "windows" {
		return binaryName + ".exe"
	}
	return binaryName
}

// plan is a resolved release: the tag to install and where its archive and
// checksum manifest live.
type plan struct {
	tag          string
	asset        string
	assetURL     string
	checksumsURL string
}

// Update downloads, verifies and installs a release, reporting each stage
// to progress.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	if input.CurrentVersion == DevVersion {
		return ErrDevBuild
	}
	report := func(s Stage, format string, args ...any) {
		if progress != nil {
			progress(UpdateProgress{Stage: s, Message: fmt.Sprintf(format, args...)})
		}
	}

	report(StageCheck, "Resolving release...")
	p, err := c.resolve(ctx, input)
	if err != nil {
		return err
	}

	report(StageDownload, "Downloading %s (%s)...", p.tag, p.asset)
	archive, err := c.fetch(ctx, p.assetURL)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report(StageVerify, "Verifying checksum...")
	manifest, err := c.fetch(ctx, p.checksumsURL)
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(manifest)[p.asset]
	if !ok {
		return fmt.Errorf("%s lists no checksum for %s", checksumsFile, p.asset)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return err
	}

	report(StageExtract, "Extracting %s...", c.platform.executable())
	bin, err := unpack(archive, p.asset, c.platform.executable())
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report(StageApply, "Installing...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if err := install(bin, target); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	c.log.Info("binary updated",
		zap.String("from", input.CurrentVersion),
		zap.String("to", p.tag),
		zap.String("asset", p.asset),
		zap.String("path", target))
	report(StageDone, "Updated to %s", p.tag)
	return nil
}

// resolve picks the release to install and locates its platform asset.
// Without an explicit target it refuses to reinstall or downgrade.
func (c *Checker) resolve(ctx context.Context, input *UpdateInput) (*plan, error) {
	name, err := c.platform.asset()
	if err != nil {
		return nil, err
	}

	var rel *release
	if input.TargetVersion == "" {
		rel, err = c.fetchRelease(ctx, "latest")
		if err != nil {
			return nil, fmt.Errorf("check for updates: %w", err)
		}
		if !newer(rel.TagName, input.CurrentVersion) {
			return nil, ErrAlreadyLatest
		}
	} else {
		rel, err = c.fetchRelease(ctx, input.TargetVersion)
		if err != nil {
			return nil, err
		}
	}

	p := &plan{tag: rel.TagName, asset: name}
	if p.assetURL, err = rel.assetURL(name); err != nil {
		return nil, err
	}
	if p.checksumsURL, err = rel.assetURL(checksumsFile); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownload {
		return nil, fmt.Errorf("%s exceeds %d bytes", url, maxDownload)
	}
	return data, nil
}

// parseChecksums reads sha256sum output. A leading '*' on the file name
// (binary mode) is ignored.
func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		hash, name, ok := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		if !ok {
			continue
		}
		name = strings.TrimPrefix(strings.TrimSpace(name), "*")
		if name == "" || strings.ContainsAny(name, " \t") {
			continue
		}
		sums[name] = strings.ToLower(hash)
	}
	return sums
}

func verifyChecksum(data []byte, want string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != strings.ToLower(want) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, want, got)
	}
	return nil
}

// unpack returns the regular file called name from a .zip or .tar.gz
// archive, matched by base name at any depth.
func unpack(archive []byte, asset, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(asset, ".zip") {
		data, err = fromZip(archive, name)
	} else {
		data, err = fromTarGz(archive, name)
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s has no %q", asset, name)
	}
	return data, nil
}

func fromTarGz(archive []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil, nil
		case err != nil:
			return nil, fmt.Errorf("read tar: %w", err)
		case hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == name:
			return io.ReadAll(io.LimitReader(tr, maxDownload))
		}
	}
}

func fromZip(archive []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxDownload))
		_ = rc.Close()
		return data, err
	}
	return nil, nil
}

// install swaps bin in for target. The new file is staged next to target
// with target's permissions, synced and re-hashed before the rename, so a
// failure at any step leaves target untouched.
func install(bin []byte, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("stage update: %w", err)
	}
	staged := tmp.Name()
	defer func() { _ = os.Remove(staged) }()

	want := sha256.Sum256(bin)
	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), bytes.NewReader(bin)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write staged binary: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync staged binary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staged binary: %w", err)
	}
	if err := os.Chmod(staged, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod staged binary: %w", err)
	}

	onDisk, err := os.ReadFile(staged)
	if err != nil {
		return fmt.Errorf("re-read staged binary: %w", err)
	}
	if sha256.Sum256(onDisk) != want || !bytes.Equal(h.Sum(nil), want[:]) {
		return fmt.Errorf("%w: staged binary differs from archive", ErrChecksum)
	}

	if err := os.Rename(staged, target); err != nil {
		return fmt.Errorf("replace binary: %w", err)
	}
	return nil
}
