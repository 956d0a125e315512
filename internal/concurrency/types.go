package concurrency

import (
	"context"

	"slimpdf/internal/compression"
)

// WorkItem is a single input PDF queued for batch compression.
type WorkItem struct {
	ID        string
	InputPath string
}

// FileResult represents the result of compressing a single file
type FileResult struct {
	FileID           string  `json:"file_id"`
	OriginalFilename string  `json:"original_filename"`
	OutputPath       string  `json:"output_path"`
	OriginalSize     int64   `json:"original_size"`
	CompressedSize   int64   `json:"compressed_size"`
	CompressionRatio float64 `json:"compression_ratio"`
	QualityUsed      int     `json:"quality_used"`
	Status           string  `json:"status"`
	Error            string  `json:"error,omitempty"`
}

// ProcessorFunc defines the function signature for processing a single file
type ProcessorFunc func(fileID, inputPath string, settings compression.Request, workerID int) (*FileResult, error)

// BatchRequest is a set of files compressed with shared settings.
type BatchRequest struct {
	Files    []string
	Settings compression.Request
}

// BatchResult aggregates the per-file results of a batch run.
type BatchResult struct {
	Results                 []FileResult `json:"results"`
	TotalFiles              int          `json:"total_files"`
	TotalOriginalSize       int64        `json:"total_original_size"`
	TotalCompressedSize     int64        `json:"total_compressed_size"`
	OverallCompressionRatio float64      `json:"overall_compression_ratio"`
	Success                 bool         `json:"success"`
	Error                   string       `json:"error,omitempty"`
}

// WorkerPool represents a pool of workers for concurrent processing
type WorkerPool struct {
	ctx        context.Context
	maxWorkers int
	processor  ProcessorFunc
	workChan   chan WorkItem
	resultChan chan *FileResult
	totalFiles int
}
