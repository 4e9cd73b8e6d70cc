// Package persona loads the role-play instructions sent as the leading system
// message of every structured request.
package persona

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Instructions is the persona text, treated as an opaque prefix.
type Instructions string

// NotFoundError reports a missing persona file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", filepath.Base(e.Path))
}

// EmptyError reports a persona file with no usable content.
type EmptyError struct {
	Path string
}

func (e *EmptyError) Error() string {
	return fmt.Sprintf("%s is empty", filepath.Base(e.Path))
}

// Load reads the persona file at path. The content is returned verbatim.
func Load(path string) (Instructions, error) {
	//nolint:gosec // G304: path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: path}
		}
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", &EmptyError{Path: path}
	}

	return Instructions(data), nil
}
