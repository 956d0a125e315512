package compression

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

// writeStubMagick creates a shell script standing in for ImageMagick. It
// copies a fixture JPEG to whatever output path it is asked to produce,
// which is enough to drive the orchestration under test.
func writeStubMagick(t *testing.T, fixturePath string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub tool requires a shell")
	}

	path := filepath.Join(t.TempDir(), "magick")
	script := fmt.Sprintf("#!/bin/sh\nfor arg in \"$@\"; do last=\"$arg\"; done\ncp %q \"$last\"\n", fixturePath)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write stub magick: %v", err)
	}
	return path
}

func writeFixtureJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	img := imaging.New(120, 160, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		t.Fatalf("Failed to write fixture image: %v", err)
	}
	return path
}

// writeFixturePDF builds a real multi page PDF from generated JPEGs.
func writeFixturePDF(t *testing.T, dir string, pages int) string {
	t.Helper()
	var images []string
	for i := 0; i < pages; i++ {
		images = append(images, writeFixtureJPEG(t, dir, fmt.Sprintf("src_%d.jpg", i)))
	}
	path := filepath.Join(dir, "input.pdf")
	if err := api.ImportImagesFile(images, path, nil, nil); err != nil {
		t.Fatalf("Failed to build fixture pdf: %v", err)
	}
	return path
}

func TestCompressMissingInput(t *testing.T) {
	workDir := t.TempDir()
	c := NewCompressor("magick", workDir, testLogger())

	req := NewRequest(filepath.Join(t.TempDir(), "missing.pdf"), "out.pdf")
	_, err := c.Compress(req)

	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("Expected ErrInputNotFound, got %v", err)
	}

	entries, readErr := os.ReadDir(workDir)
	if readErr != nil {
		t.Fatalf("Failed to read working directory: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no temp files after failure, found %d entries", len(entries))
	}
}

func TestCompressNoMagick(t *testing.T) {
	c := NewCompressor("", t.TempDir(), testLogger())

	_, err := c.Compress(NewRequest("in.pdf", "out.pdf"))
	if !errors.Is(err, ErrMagickNotFound) {
		t.Fatalf("Expected ErrMagickNotFound, got %v", err)
	}
}

func TestCompressInvalidParameters(t *testing.T) {
	c := NewCompressor("magick", t.TempDir(), testLogger())

	req := NewRequest("in.pdf", "out.pdf")
	req.RemainingQuality = 0

	_, err := c.Compress(req)
	var paramErr *InvalidParameterError
	if !errors.As(err, &paramErr) {
		t.Fatalf("Expected InvalidParameterError, got %v", err)
	}
}

func TestCompressPipeline(t *testing.T) {
	fixtures := t.TempDir()
	fixtureJPEG := writeFixtureJPEG(t, fixtures, "fixture.jpg")
	input := writeFixturePDF(t, fixtures, 3)
	magick := writeStubMagick(t, fixtureJPEG)

	workDir := t.TempDir()
	output := filepath.Join(t.TempDir(), "out.pdf")

	c := NewCompressor(magick, workDir, testLogger())
	req := NewRequest(input, output)

	result, err := c.Compress(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.PageCount != 3 {
		t.Errorf("Expected 3 pages, got %d", result.PageCount)
	}
	if result.QualityUsed != req.RemainingQuality {
		t.Errorf("Expected quality %d, got %d", req.RemainingQuality, result.QualityUsed)
	}
	if result.CompressedSize <= 0 {
		t.Errorf("Expected a non-empty output, got size %d", result.CompressedSize)
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("Expected output file to exist: %v", err)
	}
	if info.Size() != result.CompressedSize {
		t.Errorf("Expected reported size %d to match file size %d", result.CompressedSize, info.Size())
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("Failed to read working directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected workspace to be cleaned up, found %d entries", len(entries))
	}
}

func TestCompressTargetReached(t *testing.T) {
	fixtures := t.TempDir()
	fixtureJPEG := writeFixtureJPEG(t, fixtures, "fixture.jpg")
	input := writeFixturePDF(t, fixtures, 2)
	magick := writeStubMagick(t, fixtureJPEG)

	output := filepath.Join(t.TempDir(), "out.pdf")
	c := NewCompressor(magick, t.TempDir(), testLogger())

	req := NewRequest(input, output)
	req.TargetSizeMB = 10 // comfortably above the stub output size

	result, err := c.Compress(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.QualityUsed != req.RemainingQuality {
		t.Errorf("Expected no quality reduction, got %d", result.QualityUsed)
	}
	if result.CompressedSize > req.TargetBytes() {
		t.Errorf("Expected output within target, got %d > %d", result.CompressedSize, req.TargetBytes())
	}
}

func TestCompressTargetUnreachable(t *testing.T) {
	fixtures := t.TempDir()
	fixtureJPEG := writeFixtureJPEG(t, fixtures, "fixture.jpg")
	input := writeFixturePDF(t, fixtures, 2)
	magick := writeStubMagick(t, fixtureJPEG)

	workDir := t.TempDir()
	outDir := t.TempDir()
	output := filepath.Join(outDir, "out.pdf")

	c := NewCompressor(magick, workDir, testLogger())
	req := NewRequest(input, output)
	req.TargetSizeMB = 0.000001 // one byte, the stub output can never fit

	_, err := c.Compress(req)
	var targetErr *TargetSizeUnreachableError
	if !errors.As(err, &targetErr) {
		t.Fatalf("Expected TargetSizeUnreachableError, got %v", err)
	}
	if targetErr.BestBytes <= targetErr.TargetBytes {
		t.Errorf("Expected best size above target, got %d <= %d", targetErr.BestBytes, targetErr.TargetBytes)
	}

	// No partial output and no leftover temp files.
	outEntries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	if len(outEntries) != 0 {
		t.Errorf("Expected no output files after failure, found %d entries", len(outEntries))
	}

	workEntries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("Failed to read working directory: %v", err)
	}
	if len(workEntries) != 0 {
		t.Errorf("Expected workspace to be cleaned up, found %d entries", len(workEntries))
	}
}
