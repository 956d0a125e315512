package models

import "time"

// CompressionRecord is one finished compression stored in the history
// database.
type CompressionRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	InputPath        string    `json:"input_path"`
	OutputPath       string    `json:"output_path"`
	PageCount        int       `json:"page_count"`
	OriginalSize     int64     `json:"original_size"`
	CompressedSize   int64     `json:"compressed_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	QualityUsed      int       `json:"quality_used"`
	CreatedAt        time.Time `json:"created_at"`
}
