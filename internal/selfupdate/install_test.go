package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "dist/" + name, Size: int64(len(content)), Mode: 0o755, Typeflag: tar.TypeReg}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func zipped(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestUnpack(t *testing.T) {
	bin := []byte("#!/bin/sh\necho chessdrill")

	got, err := unpack(tarGz(t, "chessdrill", bin), "chessdrill_Linux_x86_64.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	got, err = unpack(zipped(t, "chessdrill.exe", bin), "chessdrill_Windows_x86_64.zip")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = unpack(tarGz(t, "README.md", bin), "chessdrill_Linux_x86_64.tar.gz")
	assert.ErrorIs(t, err, errNotInArchive)

	_, err = unpack([]byte("not an archive"), "chessdrill_Linux_x86_64.tar.gz")
	assert.Error(t, err)
}

func TestReplaceExecutable(t *testing.T) {
	exe := filepath.Join(t.TempDir(), "chessdrill")
	require.NoError(t, os.WriteFile(exe, []byte("v1"), 0o755))

	require.NoError(t, replaceExecutable(exe, []byte("v2")))

	got, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
	if runtime.GOOS != "windows" {
		info, err := os.Stat(exe)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(exe))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging or backup files left behind")
}

func TestReplaceExecutable_Missing(t *testing.T) {
	assert.Error(t, replaceExecutable(filepath.Join(t.TempDir(), "gone"), []byte("v2")))
}

// releaseServer serves the GitHub API and download endpoints for one
// release of this platform's asset.
func releaseServer(t *testing.T, tag string, archive []byte, sums string) *httptest.Server {
	t.Helper()
	asset, err := platformAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}
	dl := "/abhisek/chessdrill/releases/download/" + tag + "/"
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/abhisek/chessdrill/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","html_url":"https://example.com/` + tag + `"}`))
	})
	if archive != nil {
		mux.HandleFunc(dl+asset, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(archive) })
	}
	mux.HandleFunc(dl+manifestName, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(sums)) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func platformArchive(t *testing.T, bin []byte) (archive []byte, sums string) {
	t.Helper()
	asset, err := platformAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}
	if runtime.GOOS == "windows" {
		archive = zipped(t, "chessdrill.exe", bin)
	} else {
		archive = tarGz(t, "chessdrill", bin)
	}
	sum := sha256.Sum256(archive)
	return archive, hex.EncodeToString(sum[:]) + "  " + asset + "\n"
}

func TestUpdate(t *testing.T) {
	archive, sums := platformArchive(t, []byte("chessdrill v2"))

	t.Run("installs latest", func(t *testing.T) {
		srv := releaseServer(t, "v2.0.0", archive, sums)
		exe := filepath.Join(t.TempDir(), "chessdrill")
		require.NoError(t, os.WriteFile(exe, []byte("chessdrill v1"), 0o755))
		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL),
			withExecPath(func() (string, error) { return exe, nil }))

		var stages []Stage
		rel, err := c.Update(context.Background(), "v1.0.0", "", func(p Progress) { stages = append(stages, p.Stage) })
		require.NoError(t, err)
		assert.Equal(t, "v2.0.0", rel.Tag)

		got, err := os.ReadFile(exe)
		require.NoError(t, err)
		assert.Equal(t, "chessdrill v2", string(got))
		assert.Equal(t, []Stage{StageResolve, StageDownload, StageVerify, StageExtract, StageInstall, StageDone}, stages)
	})

	t.Run("checksum mismatch leaves binary alone", func(t *testing.T) {
		srv := releaseServer(t, "v2.0.0", archive, "0000  "+mustAsset(t)+"\n")
		exe := filepath.Join(t.TempDir(), "chessdrill")
		require.NoError(t, os.WriteFile(exe, []byte("chessdrill v1"), 0o755))
		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL),
			withExecPath(func() (string, error) { return exe, nil }))

		_, err := c.Update(context.Background(), "v1.0.0", "", nil)
		assert.ErrorIs(t, err, ErrChecksum)
		got, _ := os.ReadFile(exe)
		assert.Equal(t, "chessdrill v1", string(got))
	})

	t.Run("missing archive", func(t *testing.T) {
		srv := releaseServer(t, "v2.0.0", nil, sums)
		c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL(srv.URL))
		_, err := c.Update(context.Background(), "v1.0.0", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})

	t.Run("already latest", func(t *testing.T) {
		srv := releaseServer(t, "v1.0.0", archive, sums)
		c := NewChecker(WithBaseURL(srv.URL))
		_, err := c.Update(context.Background(), "v1.0.0", "", nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("dev build", func(t *testing.T) {
		_, err := NewChecker().Update(context.Background(), "(devel)", "", nil)
		assert.ErrorIs(t, err, ErrDevBuild)
	})
}

func mustAsset(t *testing.T) string {
	t.Helper()
	asset, err := platformAsset(runtime.GOOS, runtime.GOARCH)
	require.NoError(t, err)
	return asset
}
