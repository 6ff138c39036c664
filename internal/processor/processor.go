package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/texture-tool/internal/model"
)

// jpegQuality matches the default quality of common image toolkits.
const jpegQuality = 95

var (
	// ErrEmptyOutputPath is returned when a transform has nowhere to write.
	ErrEmptyOutputPath = errors.New("output path is empty")
	// ErrInvalidTargetSize is returned for a zero downsample target.
	ErrInvalidTargetSize = errors.New("target size must be positive")
)

// fileStorage defines the interface for file storage.
// It allows loading source images and saving results by path.
type fileStorage interface {
	Save(ctx context.Context, path string, src io.Reader) (string, error)
	Load(ctx context.Context, path string) (io.ReadCloser, error)
}

// Processor is responsible for executing the single-file transforms:
// watermark removal and downsampling.
type Processor struct {
	fileStorage fileStorage
}

// New creates a new Processor with the given file storage backend.
func New(fs fileStorage) *Processor {
	return &Processor{fileStorage: fs}
}

// Result describes the outcome of one transform.
type Result struct {
	Operation model.Operation
	Output    string // written path, empty when skipped
	Skipped   bool   // downsample only: the image was already small enough
	Source    image.Point
	Size      image.Point
	Target    uint16
}

// Process calls the transform selected by params for a single work item.
func (p *Processor) Process(ctx context.Context, params model.Params, item model.WorkItem) (Result, error) {
	switch params.Operation {
	case model.RemoveWatermark:
		return p.RemoveWatermark(ctx, item.Input, item.Output, params.Watermark)
	case model.DownSample:
		return p.Downsample(ctx, item.Input, item.Output, params.TargetSize)
	default:
		return Result{}, fmt.Errorf("%w: %d", model.ErrUnknownOperation, int(params.Operation))
	}
}

// load reads and decodes the image at path.
func (p *Processor) load(ctx context.Context, path string) (image.Image, error) {
	// Load the original image from storage.
	srcReader, err := p.fileStorage.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load original image: %w", err)
	}
	defer srcReader.Close()

	// Decode into an image object.
	img, err := imaging.Decode(srcReader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

// save encodes img in the format implied by the extension of path and writes it.
func (p *Processor) save(ctx context.Context, path string, img image.Image) (string, error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect output format of %s: %w", path, err)
	}

	// Encode the result into a buffer for storage.
	buf := bytes.NewBuffer(nil)
	if err := imaging.Encode(buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	dst, err := p.fileStorage.Save(ctx, path, buf)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return dst, nil
}

func size(img image.Image) image.Point {
	return img.Bounds().Size()
}
