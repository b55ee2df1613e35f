package selfupdate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformAsset(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"darwin", "amd64", "chessdrill_Darwin_all.tar.gz"},
		{"darwin", "arm64", "chessdrill_Darwin_all.tar.gz"},
		{"linux", "amd64", "chessdrill_Linux_x86_64.tar.gz"},
		{"linux", "arm64", "chessdrill_Linux_arm64.tar.gz"},
		{"linux", "386", "chessdrill_Linux_i386.tar.gz"},
		{"windows", "amd64", "chessdrill_Windows_x86_64.zip"},
		{"freebsd", "amd64", ""},
		{"linux", "mips", ""},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := platformAsset(tt.goos, tt.goarch)
			if tt.want == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseManifest(t *testing.T) {
	m := parseManifest([]byte("ABC123  chessdrill_Linux_x86_64.tar.gz\n" +
		"def456 *chessdrill_Windows_x86_64.zip\n" +
		"garbage\n\n" +
		"a b c\n"))
	assert.Equal(t, manifest{
		"chessdrill_Linux_x86_64.tar.gz": "abc123",
		"chessdrill_Windows_x86_64.zip":  "def456",
	}, m)
}

func TestManifest_Verify(t *testing.T) {
	data := []byte("chessdrill build")
	sum := sha256.Sum256(data)
	m := manifest{"chessdrill.tar.gz": hex.EncodeToString(sum[:])}

	assert.NoError(t, m.verify("chessdrill.tar.gz", data))
	assert.ErrorIs(t, m.verify("chessdrill.tar.gz", []byte("tampered")), ErrChecksum)
	assert.ErrorIs(t, m.verify("chessdrill.zip", data), ErrChecksum, "unlisted asset")
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.0","html_url":"https://example.com/v1.4.0"}`))
	}))
	defer srv.Close()
	c := NewChecker(WithBaseURL(srv.URL), WithDownloadBaseURL("https://dl.example/"))

	_, err := c.Resolve(context.Background(), "dev", "")
	assert.ErrorIs(t, err, ErrDevBuild)

	_, err = c.Resolve(context.Background(), "v1.4.0", "")
	assert.ErrorIs(t, err, ErrAlreadyLatest)

	rel, err := c.Resolve(context.Background(), "v1.3.2", "")
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}
	assert.Equal(t, "v1.4.0", rel.Tag)
	assert.Equal(t, "https://dl.example/abhisek/chessdrill/releases/download/v1.4.0/"+rel.Asset, rel.ArchiveURL)
	assert.Equal(t, "https://dl.example/abhisek/chessdrill/releases/download/v1.4.0/checksums.txt", rel.ChecksumsURL)

	rel, err = c.Resolve(context.Background(), "v1.4.0", "v1.2.0")
	require.NoError(t, err, "an explicit target skips the version check")
	assert.Equal(t, "v1.2.0", rel.Tag)
}
