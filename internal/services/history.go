package services

import (
	"time"

	"gorm.io/gorm"

	"slimpdf/internal/compression"
	"slimpdf/internal/models"
)

// HistoryService persists finished compressions and aggregates totals.
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record stores the result of a successful compression.
func (s *HistoryService) Record(result *compression.Result, inputPath string) error {
	record := models.CompressionRecord{
		InputPath:        inputPath,
		OutputPath:       result.OutputPath,
		PageCount:        result.PageCount,
		OriginalSize:     result.OriginalSize,
		CompressedSize:   result.CompressedSize,
		CompressionRatio: result.CompressionRatio,
		QualityUsed:      result.QualityUsed,
		CreatedAt:        time.Now().UTC(),
	}
	return s.db.Create(&record).Error
}

// Totals holds accumulated statistics over all recorded compressions.
type Totals struct {
	FilesCompressed int64
	OriginalBytes   int64
	CompressedBytes int64
	BytesSaved      int64
}

// Totals aggregates the full compression history.
func (s *HistoryService) Totals() (*Totals, error) {
	var totals Totals
	err := s.db.Model(&models.CompressionRecord{}).
		Select("COUNT(*) AS files_compressed, COALESCE(SUM(original_size), 0) AS original_bytes, COALESCE(SUM(compressed_size), 0) AS compressed_bytes").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	totals.BytesSaved = totals.OriginalBytes - totals.CompressedBytes
	return &totals, nil
}

// Recent returns the latest records, newest first.
func (s *HistoryService) Recent(limit int) ([]models.CompressionRecord, error) {
	var records []models.CompressionRecord
	err := s.db.Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}
