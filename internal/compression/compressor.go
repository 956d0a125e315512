package compression

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"

	"slimpdf/internal/common"
)

// Compressor orchestrates the rasterize, re-encode and assemble pipeline
// on top of the external ImageMagick binary.
type Compressor struct {
	magickPath string
	workingDir string
	logger     *logrus.Logger
}

// NewCompressor creates a compressor using the given ImageMagick binary and
// working directory for temporary page images.
func NewCompressor(magickPath, workingDir string, logger *logrus.Logger) *Compressor {
	return &Compressor{
		magickPath: magickPath,
		workingDir: workingDir,
		logger:     logger,
	}
}

// IsAvailable reports whether an ImageMagick binary was resolved.
func (c *Compressor) IsAvailable() bool {
	return c.magickPath != ""
}

// Compress runs the full pipeline for a single request: rasterize every
// page at its selected DPI/quality, reassemble the images into a PDF and,
// when a target size is set, keep lowering the remaining-page quality until
// the output fits or the quality floor is reached.
func (c *Compressor) Compress(req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if c.magickPath == "" {
		return nil, ErrMagickNotFound
	}

	input, err := os.Open(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.InputPath)
	}
	info, err := input.Stat()
	input.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.InputPath)
	}

	pageCount, err := api.PageCountFile(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count of %s: %w", req.InputPath, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%s contains no pages", req.InputPath)
	}

	ws, err := NewWorkspace(c.workingDir)
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	c.logger.WithFields(logrus.Fields{
		"input": req.InputPath,
		"pages": pageCount,
		"size":  info.Size(),
	}).Info("Starting compression")

	for i := 0; i < pageCount; i++ {
		if err := c.rasterizePage(req.InputPath, ws.PagePath(i), i, req.SpecForPage(i)); err != nil {
			return nil, err
		}
	}

	if err := c.assemble(ws, pageCount); err != nil {
		return nil, err
	}

	quality := req.RemainingQuality
	if target := req.TargetBytes(); target > 0 {
		quality, err = c.shrinkToTarget(ws, req, pageCount, target)
		if err != nil {
			return nil, err
		}
	}

	assembled, err := os.Stat(ws.AssemblyPath())
	if err != nil {
		return nil, fmt.Errorf("assembled output missing: %w", err)
	}

	if err := publish(ws.AssemblyPath(), req.OutputPath); err != nil {
		return nil, err
	}

	result := &Result{
		OutputPath:     req.OutputPath,
		PageCount:      pageCount,
		OriginalSize:   info.Size(),
		CompressedSize: assembled.Size(),
		QualityUsed:    quality,
	}
	if result.OriginalSize > 0 {
		result.CompressionRatio = float64(result.OriginalSize-result.CompressedSize) / float64(result.OriginalSize) * 100
	}

	c.logger.WithFields(logrus.Fields{
		"output":  result.OutputPath,
		"size":    result.CompressedSize,
		"quality": result.QualityUsed,
	}).Info("Compression finished")

	return result, nil
}

// rasterizePage renders one page of the input PDF to a JPEG at the page's
// DPI and quality. ImageMagick selects the page via the [index] suffix.
func (c *Compressor) rasterizePage(inputPath, imagePath string, index int, spec PageSpec) error {
	args := []string{
		"-density", strconv.Itoa(spec.DPI),
		"-quality", strconv.Itoa(spec.Quality),
		"-compress", "JPEG",
		fmt.Sprintf("%s[%d]", inputPath, index),
		"-background", "white",
		"-alpha", "remove",
		"-alpha", "off",
		imagePath,
	}

	cmd := exec.Command(c.magickPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ExternalToolError{
			Tool:   "magick",
			Output: string(output),
			Err:    fmt.Errorf("failed to rasterize page %d: %w", index, err),
		}
	}
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		return &ExternalToolError{
			Tool: "magick",
			Err:  fmt.Errorf("no image was produced for page %d", index),
		}
	}
	return nil
}

// assemble rebuilds a single PDF from the page images, preserving order.
func (c *Compressor) assemble(ws *Workspace, pageCount int) error {
	args := make([]string, 0, pageCount+1)
	for i := 0; i < pageCount; i++ {
		args = append(args, ws.PagePath(i))
	}
	args = append(args, ws.AssemblyPath())

	cmd := exec.Command(c.magickPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ExternalToolError{
			Tool:   "magick",
			Output: string(output),
			Err:    fmt.Errorf("failed to assemble output pdf: %w", err),
		}
	}
	if _, err := os.Stat(ws.AssemblyPath()); os.IsNotExist(err) {
		return &ExternalToolError{
			Tool: "magick",
			Err:  fmt.Errorf("no output pdf was produced"),
		}
	}
	return nil
}

// shrinkToTarget lowers the remaining-page quality step by step and
// reassembles until the output fits the target or the floor is reached.
// Important pages keep their fidelity unless every page is important, in
// which case all pages are squeezed so the search can still make progress.
// Returns the quality the final assembly was encoded with.
func (c *Compressor) shrinkToTarget(ws *Workspace, req Request, pageCount int, target int64) (int, error) {
	quality := req.RemainingQuality

	firstSqueezed := req.ImportantPages
	if firstSqueezed >= pageCount {
		firstSqueezed = 0
	}

	for {
		info, err := os.Stat(ws.AssemblyPath())
		if err != nil {
			return 0, fmt.Errorf("assembled output missing: %w", err)
		}
		if info.Size() <= target {
			return quality, nil
		}
		if quality-QualityStep < QualityFloor {
			return 0, &TargetSizeUnreachableError{
				TargetBytes:  target,
				BestBytes:    info.Size(),
				FloorQuality: quality,
			}
		}
		quality -= QualityStep

		c.logger.WithFields(logrus.Fields{
			"size":    info.Size(),
			"target":  target,
			"quality": quality,
		}).Info("Output above target size, re-encoding pages")

		for i := firstSqueezed; i < pageCount; i++ {
			if err := reencodeJPEG(ws.PagePath(i), quality); err != nil {
				return 0, err
			}
		}
		if err := c.assemble(ws, pageCount); err != nil {
			return 0, err
		}
	}
}

// reencodeJPEG rewrites an image in place at the given JPEG quality.
func reencodeJPEG(path string, quality int) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open page image %s: %w", path, err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to re-encode page image %s: %w", path, err)
	}
	return nil
}

// publish moves the assembled PDF into place. The copy goes to a partial
// file next to the destination first so the final rename is atomic and a
// failed run never leaves a truncated output behind.
func publish(assembledPath, outputPath string) error {
	partial := outputPath + ".partial"
	if err := common.CopyFile(assembledPath, partial); err != nil {
		return fmt.Errorf("failed to stage output file: %w", err)
	}
	if err := os.Rename(partial, outputPath); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to publish output file: %w", err)
	}
	return nil
}
