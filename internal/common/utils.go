package common

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// MaxConcurrencyLimit caps the batch worker pool.
	MaxConcurrencyLimit = 8

	// DefaultFilePermissions is used for created directories.
	DefaultFilePermissions = 0755
)

// GenerateUUID generates a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// CopyFile copies src to dst, creating the destination directory if needed.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), DefaultFilePermissions); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}
