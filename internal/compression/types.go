package compression

// Default compression settings. The leading "important" pages are rendered
// at readable fidelity while the rest get aggressive compression.
const (
	DefaultImportantPages   = 5
	DefaultFirstPageQuality = 85
	DefaultRemainingQuality = 25
	DefaultFirstPageDPI     = 200
	DefaultRemainingDPI     = 35

	// Target-size search tuning.
	QualityStep  = 10
	QualityFloor = 5
)

// Request describes a single PDF compression job.
type Request struct {
	InputPath  string
	OutputPath string

	// TargetSizeMB, when positive, drives an iterative quality reduction
	// until the output fits. Zero disables the search.
	TargetSizeMB float64

	// ImportantPages is the number of leading pages rendered with the
	// first-page settings.
	ImportantPages int

	FirstPageQuality int
	RemainingQuality int
	FirstPageDPI     int
	RemainingDPI     int
}

// NewRequest returns a request for the given paths with default settings.
func NewRequest(inputPath, outputPath string) Request {
	return Request{
		InputPath:        inputPath,
		OutputPath:       outputPath,
		ImportantPages:   DefaultImportantPages,
		FirstPageQuality: DefaultFirstPageQuality,
		RemainingQuality: DefaultRemainingQuality,
		FirstPageDPI:     DefaultFirstPageDPI,
		RemainingDPI:     DefaultRemainingDPI,
	}
}

// Validate checks that all parameters are inside codec-valid ranges.
func (r Request) Validate() error {
	if r.FirstPageQuality < 1 || r.FirstPageQuality > 100 {
		return &InvalidParameterError{Param: "first_page_quality", Value: r.FirstPageQuality}
	}
	if r.RemainingQuality < 1 || r.RemainingQuality > 100 {
		return &InvalidParameterError{Param: "remaining_quality", Value: r.RemainingQuality}
	}
	if r.FirstPageDPI < 1 {
		return &InvalidParameterError{Param: "first_page_dpi", Value: r.FirstPageDPI}
	}
	if r.RemainingDPI < 1 {
		return &InvalidParameterError{Param: "remaining_dpi", Value: r.RemainingDPI}
	}
	if r.ImportantPages < 0 {
		return &InvalidParameterError{Param: "important_pages", Value: r.ImportantPages}
	}
	if r.TargetSizeMB < 0 {
		return &InvalidParameterError{Param: "target_size_mb", Value: r.TargetSizeMB}
	}
	return nil
}

// SpecForPage selects the rasterization settings for a zero-based page index.
func (r Request) SpecForPage(index int) PageSpec {
	if index < r.ImportantPages {
		return PageSpec{DPI: r.FirstPageDPI, Quality: r.FirstPageQuality}
	}
	return PageSpec{DPI: r.RemainingDPI, Quality: r.RemainingQuality}
}

// TargetBytes converts the megabyte target to bytes. Zero means disabled.
func (r Request) TargetBytes() int64 {
	if r.TargetSizeMB <= 0 {
		return 0
	}
	return int64(r.TargetSizeMB * 1024 * 1024)
}

// PageSpec is the rasterization setting pair for a single page.
type PageSpec struct {
	DPI     int
	Quality int
}

// Result reports the outcome of a compression job.
type Result struct {
	OutputPath       string
	PageCount        int
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio float64
	QualityUsed      int
}
