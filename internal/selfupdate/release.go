package selfupdate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

const manifestName = "checksums.txt"

// Release is one installable build of chessdrill for this platform.
type Release struct {
	Tag          string
	Asset        string
	ArchiveURL   string
	ChecksumsURL string
}

// Resolve picks the release to install. An empty target means the newest
// published release, which must be newer than current.
func (c *Checker) Resolve(ctx context.Context, current, target string) (*Release, error) {
	if isDevBuild(current) {
		return nil, ErrDevBuild
	}
	if target == "" {
		res, err := c.Check(ctx, &CheckInput{Version: current})
		if err != nil {
			return nil, fmt.Errorf("check for updates: %w", err)
		}
		if !res.UpdateAvailable {
			return nil, ErrAlreadyLatest
		}
		target = res.LatestVersion
	}

	asset, err := platformAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return nil, err
	}
	dir := fmt.Sprintf("%s/%s/%s/releases/download/%s", strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, target)
	return &Release{
		Tag:          target,
		Asset:        asset,
		ArchiveURL:   dir + "/" + asset,
		ChecksumsURL: dir + "/" + manifestName,
	}, nil
}

// releaseArch maps GOARCH onto the names goreleaser puts in asset names.
var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// platformAsset names the archive published for goos/goarch. macOS ships a
// universal binary.
func platformAsset(goos, goarch string) (string, error) {
	if goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}

	var osName, ext string
	switch goos {
	case "linux":
		osName, ext = "Linux", ".tar.gz"
	case "windows":
		osName, ext = "Windows", ".zip"
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
	return binaryName + "_" + osName + "_" + arch + ext, nil
}

// manifest maps asset names to their hex SHA-256.
type manifest map[string]string

// parseManifest reads sha256sum output. Both text ("hash  name") and binary
// ("hash *name") modes are accepted; anything else is skipped.
func parseManifest(data []byte) manifest {
	m := manifest{}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		m[strings.TrimPrefix(fields[1], "*")] = strings.ToLower(fields[0])
	}
	return m
}

// verify checks data against the manifest entry for asset.
func (m manifest) verify(asset string, data []byte) error {
	want, ok := m[asset]
	if !ok {
		return fmt.Errorf("%w: %s is not listed in %s", ErrChecksum, asset, manifestName)
	}
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != want {
		return fmt.Errorf("%w: %s: expected %s, got %s", ErrChecksum, asset, want, got)
	}
	return nil
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
