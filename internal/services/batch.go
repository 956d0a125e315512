package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"slimpdf/internal/common"
	"slimpdf/internal/compression"
	"slimpdf/internal/concurrency"
)

// BatchService compresses directories of PDFs with shared settings.
type BatchService struct {
	compressor *compression.Compressor
	history    *HistoryService
	logger     *logrus.Logger
}

// NewBatchService creates a new batch service. The history service may be
// nil, in which case results are not recorded.
func NewBatchService(compressor *compression.Compressor, history *HistoryService, logger *logrus.Logger) *BatchService {
	return &BatchService{
		compressor: compressor,
		history:    history,
		logger:     logger,
	}
}

// CompressDirectory compresses every PDF found directly in dir into outDir.
func (s *BatchService) CompressDirectory(ctx context.Context, dir, outDir string, settings compression.Request) (*concurrency.BatchResult, error) {
	files, err := listPDFFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no pdf files found in %s", dir)
	}
	if err := os.MkdirAll(outDir, common.DefaultFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"directory": dir,
		"files":     len(files),
	}).Info("Starting batch compression")

	pool := concurrency.NewWorkerPool(ctx, s.processFile(outDir))
	result := pool.ProcessBatch(concurrency.BatchRequest{
		Files:    files,
		Settings: settings,
	})
	return &result, nil
}

// processFile returns the per-file processor bound to the output directory.
func (s *BatchService) processFile(outDir string) concurrency.ProcessorFunc {
	return func(fileID, inputPath string, settings compression.Request, workerID int) (*concurrency.FileResult, error) {
		filename := filepath.Base(inputPath)
		timestamp := time.Now().UTC().Format("20060102_150405")
		baseName := strings.TrimSuffix(filename, ".pdf")
		outputPath := filepath.Join(outDir, fmt.Sprintf("%s_%s.pdf", baseName, timestamp))

		req := settings
		req.InputPath = inputPath
		req.OutputPath = outputPath

		s.logger.WithFields(logrus.Fields{
			"file":   filename,
			"worker": workerID,
		}).Debug("Compressing file")

		result, err := s.compressor.Compress(req)
		if err != nil {
			return nil, err
		}

		if s.history != nil {
			if err := s.history.Record(result, inputPath); err != nil {
				s.logger.WithError(err).Warn("Failed to record compression history")
			}
		}

		return &concurrency.FileResult{
			FileID:           fileID,
			OriginalFilename: filename,
			OutputPath:       result.OutputPath,
			OriginalSize:     result.OriginalSize,
			CompressedSize:   result.CompressedSize,
			CompressionRatio: result.CompressionRatio,
			QualityUsed:      result.QualityUsed,
		}, nil
	}
}

// listPDFFiles returns the PDF files directly inside dir.
func listPDFFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
