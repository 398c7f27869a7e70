package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save writes the certificate into dir under its backend-supplied file name
// and returns the written path. Directory components in the name are
// discarded.
func (c *Certificate) Save(dir string) (string, error) {
	name := filepath.Base(strings.TrimSpace(c.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "Certificate.pdf"
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, c.Data, 0o644); err != nil {
		return "", fmt.Errorf("write certificate: %w", err)
	}
	return path, nil
}
