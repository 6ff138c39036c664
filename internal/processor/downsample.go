package processor

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/aliskhannn/texture-tool/internal/model"
)

// lanczos4 is a Lanczos filter with four lobes.
var lanczos4 = imaging.ResampleFilter{
	Support: 4.0,
	Kernel: func(x float64) float64 {
		x = math.Abs(x)
		if x < 4.0 {
			return sinc(x) * sinc(x/4.0)
		}
		return 0
	},
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// Downsample shrinks the image at input so that its larger side equals target
// and writes it to output. Images already within target are skipped and
// nothing is written.
func (p *Processor) Downsample(ctx context.Context, input, output string, target uint16) (Result, error) {
	if output == "" {
		return Result{}, ErrEmptyOutputPath
	}
	if target == 0 {
		return Result{}, ErrInvalidTargetSize
	}

	src, err := p.load(ctx, input)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Operation: model.DownSample,
		Source:    size(src),
		Target:    target,
	}

	width, height, ok := TargetDimensions(res.Source.X, res.Source.Y, target)
	if !ok {
		res.Skipped = true
		res.Size = res.Source
		return res, nil
	}

	// Perform resizing.
	resized := imaging.Resize(src, width, height, lanczos4)

	dst, err := p.save(ctx, output, resized)
	if err != nil {
		return Result{}, err
	}

	res.Output = dst
	res.Size = image.Pt(width, height)

	return res, nil
}

// TargetDimensions returns the size a width×height image is resized to so that
// its larger side equals target, rounding the other side up. ok is false when
// the image is already within target.
func TargetDimensions(width, height int, target uint16) (w, h int, ok bool) {
	maxSide := max(width, height)
	t := int(target)

	if maxSide <= t {
		return width, height, false
	}

	return ceilDiv(width*t, maxSide), ceilDiv(height*t, maxSide), true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
