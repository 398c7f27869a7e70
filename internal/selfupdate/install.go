package selfupdate

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// Stage names one step of an install.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageInstall  Stage = "install"
	StageDone     Stage = "done"
)

// Progress receives a message as each stage starts.
type Progress func(stage Stage, message string)

const checksumsFile = "checksums.txt"

// Install replaces the running binary with release tag, or with the latest
// release when tag is empty. It returns the installed tag.
func (c *Checker) Install(ctx context.Context, current, tag string, progress Progress) (string, error) {
	report := func(st Stage, format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		c.log.Info("self update", "stage", string(st), "detail", msg)
		if progress != nil {
			progress(st, msg)
		}
	}

	if canonical(current) == "" {
		return "", ErrDevBuild
	}
	if tag == "" {
		report(StageCheck, "Checking for a newer coursely release...")
		n, err := c.Check(ctx, current)
		if err != nil {
			return "", fmt.Errorf("check for updates: %w", err)
		}
		if !n.Available() {
			return "", ErrAlreadyLatest
		}
		tag = n.Latest.Tag
	}

	asset, err := assetFor(c.goos, c.goarch)
	if err != nil {
		return "", err
	}

	report(StageDownload, "Downloading %s (%s)...", tag, asset.name)
	archive, err := c.get(ctx, c.src.assetURL(tag, asset.name), maxAssetBytes, "")
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset.name, err)
	}

	report(StageVerify, "Verifying checksum...")
	sums, err := c.get(ctx, c.src.assetURL(tag, checksumsFile), maxMetadataBytes, "")
	if err != nil {
		return "", fmt.Errorf("download %s: %w", checksumsFile, err)
	}
	want, ok := checksumFor(sums, asset.name)
	if !ok {
		return "", fmt.Errorf("%w: %s lists no entry for %s", ErrChecksum, checksumsFile, asset.name)
	}
	if err := verify(archive, want); err != nil {
		return "", err
	}

	report(StageExtract, "Unpacking %s...", asset.member)
	bin, err := asset.unpack(archive)
	if err != nil {
		return "", fmt.Errorf("unpack %s: %w", asset.name, err)
	}

	target, err := c.execPath()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	report(StageInstall, "Installing to %s...", target)
	if err := replaceBinary(target, bin); err != nil {
		c.log.Error("self update failed", "stage", string(StageInstall), "err", err)
		return "", fmt.Errorf("install: %w", err)
	}

	report(StageDone, "coursely updated to %s", tag)
	return tag, nil
}

// checksumFor finds the sha256 listed for file in a checksums.txt body.
func checksumFor(sums []byte, file string) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(sums))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 && strings.TrimPrefix(fields[1], "*") == file {
			return strings.ToLower(fields[0]), true
		}
	}
	return "", false
}

func verify(data []byte, wantHex string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != wantHex {
		return fmt.Errorf("%w: want %s, got %s", ErrChecksum, wantHex, got)
	}
	return nil
}

// replaceBinary swaps target for data, keeping target's mode. The previous
// binary is restored if the swap fails.
func replaceBinary(target string, data []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".coursely-new-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}

	// A running executable cannot be overwritten on every platform, but it
	// can be renamed.
	backup := target + ".old"
	_ = os.Remove(backup)
	if err := os.Rename(target, backup); err != nil {
		return fmt.Errorf("move current binary aside: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		if rerr := os.Rename(backup, target); rerr != nil {
			return fmt.Errorf("install new binary: %w (restore failed: %v)", err, rerr)
		}
		return fmt.Errorf("install new binary: %w", err)
	}
	_ = os.Remove(backup)
	return nil
}
