package processor

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/aliskhannn/texture-tool/internal/inpaint"
	"github.com/aliskhannn/texture-tool/internal/model"
)

const (
	inpaintRadius = 1.0
	// blurSigma is the sigma a 21x21 Gaussian kernel implies.
	blurSigma  = 3.5
	blurMargin = 2
)

// RemoveWatermark reconstructs the watermark rectangle of the image at input
// and writes the result to output. rect is given in percent of the image.
func (p *Processor) RemoveWatermark(ctx context.Context, input, output string, rect model.Rect) (Result, error) {
	if output == "" {
		return Result{}, ErrEmptyOutputPath
	}

	src, err := p.load(ctx, input)
	if err != nil {
		return Result{}, err
	}

	bounds := src.Bounds()
	area := PixelRect(rect, bounds.Dx(), bounds.Dy()).Add(bounds.Min).Intersect(bounds)

	// Fill the masked region from its surroundings.
	restored, err := inpaint.Telea(src, drawMask(bounds, area), inpaintRadius)
	if err != nil {
		return Result{}, err
	}

	// Smooth the seam around the reconstructed region.
	result := restored
	if !area.Empty() {
		result = blurRegion(restored, area.Sub(bounds.Min).Inset(-blurMargin))
	}

	dst, err := p.save(ctx, output, result)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Operation: model.RemoveWatermark,
		Output:    dst,
		Source:    size(src),
		Size:      size(result),
	}, nil
}

// PixelRect converts a percent rectangle into pixel coordinates of a
// width×height image. Every coordinate is scaled by the image width and Y is
// measured from the bottom edge; values are computed in single precision and
// truncated toward zero.
func PixelRect(r model.Rect, width, height int) image.Rectangle {
	const percent = float32(0.01)

	x := int(float32(r.X*width) * percent)
	w := int(float32(r.Width*width) * percent)
	h := int(float32(r.Height*width) * percent)

	fromBottom := float32(float32(width) * float32(1-float32(float32(r.Y)*percent)))
	y := int(float32(height) - fromBottom)

	return image.Rect(x, y, x+w, y+h)
}

// drawMask returns a mask covering bounds that is opaque inside area only.
func drawMask(bounds, area image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(bounds)
	if area.Empty() {
		return mask
	}

	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.SetColor(color.White)

	r := area.Sub(bounds.Min)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Fill()

	draw.Draw(mask, bounds, dc.Image(), image.Point{}, draw.Src)

	return mask
}

// blurRegion returns img with area replaced by its Gaussian-blurred pixels.
// The blur samples real neighbours outside area; area is clipped to img.
func blurRegion(img *image.NRGBA, area image.Rectangle) *image.NRGBA {
	area = area.Intersect(img.Bounds())
	if area.Empty() {
		return img
	}

	pad := int(math.Ceil(blurSigma * 3))
	window := area.Inset(-pad).Intersect(img.Bounds())

	blurred := imaging.Blur(imaging.Crop(img, window), blurSigma)
	patch := imaging.Crop(blurred, area.Sub(window.Min))

	return imaging.Paste(img, patch, area.Min)
}
