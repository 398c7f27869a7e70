package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
)

// releaseArch maps GOARCH to the architecture names used in asset files.
var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// asset is the release archive for one platform and the binary inside it.
type asset struct {
	name   string
	member string
	zip    bool
}

func assetFor(goos, goarch string) (asset, error) {
	if goos == "darwin" {
		return asset{name: "coursely_Darwin_all.tar.gz", member: "coursely"}, nil
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return asset{}, fmt.Errorf("no release build for %s/%s", goos, goarch)
	}
	switch goos {
	case "linux":
		return asset{name: "coursely_Linux_" + arch + ".tar.gz", member: "coursely"}, nil
	case "windows":
		return asset{name: "coursely_Windows_" + arch + ".zip", member: "coursely.exe", zip: true}, nil
	}
	return asset{}, fmt.Errorf("no release build for %s/%s", goos, goarch)
}

var errMemberMissing = errors.New("binary not found in archive")

// unpack returns the binary from a downloaded archive.
func (a asset) unpack(data []byte) ([]byte, error) {
	if a.zip {
		return unzipMember(data, a.member)
	}
	return untarMember(data, a.member)
}

func untarMember(data []byte, member string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", errMemberMissing, member)
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == member {
			return io.ReadAll(io.LimitReader(tr, maxAssetBytes))
		}
	}
}

func unzipMember(data []byte, member string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(io.LimitReader(rc, maxAssetBytes))
	}
	return nil, fmt.Errorf("%w: %s", errMemberMissing, member)
}
