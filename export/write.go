// Package export serializes converted meshes.
//
// Encoders are pure functions returning bytes. The Write functions put each
// file in place atomically: a failed write leaves no target file behind.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// ErrIO wraps every filesystem failure.
var ErrIO = errors.New("export I/O error")

// WriteFile puts data at path atomically.
func WriteFile(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return nil
}

// SiblingPath replaces the extension of path with ext (including the dot).
func SiblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func filepathStem(path string) string {
	return filepath.Base(SiblingPath(path, ""))
}
