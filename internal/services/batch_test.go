package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"slimpdf/internal/compression"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

func TestCompressDirectoryMissing(t *testing.T) {
	batch := NewBatchService(compression.NewCompressor("magick", t.TempDir(), testLogger()), nil, testLogger())

	_, err := batch.CompressDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir(), compression.NewRequest("", ""))
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
}

func TestCompressDirectoryNoPDFs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a pdf"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	batch := NewBatchService(compression.NewCompressor("magick", t.TempDir(), testLogger()), nil, testLogger())

	_, err := batch.CompressDirectory(context.Background(), dir, t.TempDir(), compression.NewRequest("", ""))
	if err == nil || !strings.Contains(err.Error(), "no pdf files") {
		t.Fatalf("Expected no-pdf-files error, got %v", err)
	}
}

func TestListPDFFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.PDF", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	files, err := listPDFFiles(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 pdf files, got %d: %v", len(files), files)
	}
}
