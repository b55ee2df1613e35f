package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Stage is a step of Update, reported through the progress callback.
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageInstall  Stage = "install"
	StageDone     Stage = "done"
)

type Progress struct {
	Stage   Stage
	Message string
}

// Update installs target (or the newest release when target is empty) over
// the running executable. progress may be nil.
func (c *Checker) Update(ctx context.Context, current, target string, progress func(Progress)) (*Release, error) {
	report := func(s Stage, format string, args ...any) {
		if progress != nil {
			progress(Progress{Stage: s, Message: fmt.Sprintf(format, args...)})
		}
	}

	report(StageResolve, "Looking up release...")
	rel, err := c.Resolve(ctx, current, target)
	if err != nil {
		return nil, err
	}

	report(StageDownload, "Downloading %s...", rel.Tag)
	archive, err := c.fetch(ctx, rel.ArchiveURL)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	report(StageVerify, "Verifying %s...", rel.Asset)
	sums, err := c.fetch(ctx, rel.ChecksumsURL)
	if err != nil {
		return nil, fmt.Errorf("download checksums: %w", err)
	}
	if err := parseManifest(sums).verify(rel.Asset, archive); err != nil {
		return nil, err
	}

	report(StageExtract, "Unpacking...")
	bin, err := unpack(archive, rel.Asset)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", rel.Asset, err)
	}

	report(StageInstall, "Installing...")
	exe, err := c.execPath()
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}
	if err := replaceExecutable(exe, bin); err != nil {
		return nil, fmt.Errorf("install: %w", err)
	}

	report(StageDone, "Updated to %s", rel.Tag)
	return rel, nil
}

var errNotInArchive = errors.New("binary not found in archive")

// unpack pulls the chessdrill executable out of a release archive. The
// format follows the asset's extension.
func unpack(archive []byte, asset string) ([]byte, error) {
	if strings.HasSuffix(asset, ".zip") {
		return unzipEntry(archive, binaryName+".exe")
	}
	return untarEntry(archive, binaryName)
}

func untarEntry(archive []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, err
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", errNotInArchive, name)
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == name {
			return io.ReadAll(tr)
		}
	}
}

func unzipEntry(archive []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		return data, err
	}
	return nil, fmt.Errorf("%w: %s", errNotInArchive, name)
}

// replaceExecutable writes bin next to exe, checks what landed on disk,
// then swaps it in. The previous binary is parked as exe+".old" during the
// swap and restored if the final rename fails.
func replaceExecutable(exe string, bin []byte) error {
	info, err := os.Stat(exe)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(exe), "."+binaryName+"-*.new")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(bin); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}

	written, err := os.ReadFile(tmpName)
	if err != nil {
		return err
	}
	if sha256.Sum256(written) != sha256.Sum256(bin) {
		return fmt.Errorf("%w: staged binary differs from download", ErrChecksum)
	}

	backup := exe + ".old"
	_ = os.Remove(backup)
	if err := os.Rename(exe, backup); err != nil {
		return err
	}
	if err := os.Rename(tmpName, exe); err != nil {
		if rerr := os.Rename(backup, exe); rerr != nil {
			return fmt.Errorf("%w (restoring previous binary: %v)", err, rerr)
		}
		return err
	}
	// Windows keeps the running image locked; the backup is cleared on the
	// next update instead.
	_ = os.Remove(backup)
	return nil
}
