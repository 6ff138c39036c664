// Package inpaint reconstructs masked image regions with the fast marching
// method of Telea (2004).
//
// Pixels are filled in order of their distance from the mask boundary. Each
// one is estimated from the already known pixels within the given radius,
// weighted by direction, distance and level-set proximity, plus a first-order
// gradient correction.
package inpaint

import (
	"container/heap"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const (
	known uint8 = iota
	band
	inside
)

const unreached = 1e6

// Telea returns a copy of src where every pixel with a non-zero mask value has
// been reconstructed from its surroundings. The mask must have the same size as
// src; its origin may differ.
func Telea(src image.Image, mask *image.Alpha, radius float64) (*image.NRGBA, error) {
	if mask == nil {
		return nil, fmt.Errorf("nil mask provided")
	}
	if radius <= 0 {
		return nil, fmt.Errorf("inpaint radius must be positive, got %v", radius)
	}

	size := src.Bounds().Size()
	if mask.Bounds().Size() != size {
		return nil, fmt.Errorf("mask size %v does not match image size %v", mask.Bounds().Size(), size)
	}

	f := newField(imaging.Clone(src), mask)
	f.rng = int(math.Round(radius))
	if f.rng < 1 {
		f.rng = 1
	}

	f.march()

	return f.img, nil
}

type field struct {
	w, h  int
	rng   int
	flags []uint8
	t     []float32
	img   *image.NRGBA
	band  narrowBand
	seq   uint64
}

func newField(img *image.NRGBA, mask *image.Alpha) *field {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	f := &field{
		w:     w,
		h:     h,
		flags: make([]uint8, w*h),
		t:     make([]float32, w*h),
		img:   img,
	}

	mb := mask.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.AlphaAt(mb.Min.X+x, mb.Min.Y+y).A != 0 {
				f.flags[y*w+x] = inside
				f.t[y*w+x] = unreached
			}
		}
	}

	// Known pixels touching the mask form the initial narrow band.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if f.flags[y*w+x] != inside {
				continue
			}
			for _, n := range neighbours(x, y) {
				if f.in(n.X, n.Y) && f.flags[n.Y*w+n.X] == known {
					f.flags[n.Y*w+n.X] = band
					f.push(n.X, n.Y, 0)
				}
			}
		}
	}

	return f
}

func neighbours(x, y int) [4]image.Point {
	return [4]image.Point{{X: x, Y: y - 1}, {X: x - 1, Y: y}, {X: x, Y: y + 1}, {X: x + 1, Y: y}}
}

func (f *field) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.w && y < f.h
}

// flag treats everything outside the image as unusable.
func (f *field) flag(x, y int) uint8 {
	if !f.in(x, y) {
		return inside
	}
	return f.flags[y*f.w+x]
}

func (f *field) usable(x, y int) bool {
	return f.flag(x, y) != inside
}

func (f *field) time(x, y int) float32 {
	return f.t[y*f.w+x]
}

func (f *field) value(x, y, c int) float32 {
	return float32(f.img.Pix[y*f.img.Stride+x*4+c])
}

func (f *field) push(x, y int, t float32) {
	f.seq++
	heap.Push(&f.band, point{t: t, x: x, y: y, seq: f.seq})
}

func (f *field) march() {
	for f.band.Len() > 0 {
		p := heap.Pop(&f.band).(point)
		f.flags[p.y*f.w+p.x] = known

		for _, n := range neighbours(p.x, p.y) {
			if !f.in(n.X, n.Y) || f.flags[n.Y*f.w+n.X] != inside {
				continue
			}

			dist := min(
				f.solve(n.X, n.Y-1, n.X-1, n.Y),
				f.solve(n.X, n.Y+1, n.X-1, n.Y),
				f.solve(n.X, n.Y-1, n.X+1, n.Y),
				f.solve(n.X, n.Y+1, n.X+1, n.Y),
			)
			f.t[n.Y*f.w+n.X] = dist

			f.fill(n.X, n.Y)

			f.flags[n.Y*f.w+n.X] = band
			f.push(n.X, n.Y, dist)
		}
	}
}

// solve returns the arrival time at the pixel between (x1,y1) and (x2,y2)
// from the eikonal equation |∇T| = 1.
func (f *field) solve(x1, y1, x2, y2 int) float32 {
	k1 := f.flag(x1, y1) == known
	k2 := f.flag(x2, y2) == known

	switch {
	case k1 && k2:
		t1, t2 := f.time(x1, y1), f.time(x2, y2)
		d := 2 - (t1-t2)*(t1-t2)
		if d <= 0 {
			return 1 + min(t1, t2)
		}
		r := float32(math.Sqrt(float64(d)))
		s := (t1 + t2 - r) / 2
		if s >= t1 && s >= t2 {
			return s
		}
		s += r
		if s >= t1 && s >= t2 {
			return s
		}
		return unreached
	case k1:
		return 1 + f.time(x1, y1)
	case k2:
		return 1 + f.time(x2, y2)
	default:
		return unreached
	}
}

// gradient estimates the derivative of v at (x,y) along one axis, using
// central differences where both sides are usable.
func (f *field) gradient(x, y, dx, dy int, v func(x, y int) float32, central float32) float32 {
	next, prev := f.usable(x+dx, y+dy), f.usable(x-dx, y-dy)

	switch {
	case next && prev:
		return (v(x+dx, y+dy) - v(x-dx, y-dy)) * central
	case next:
		return v(x+dx, y+dy) - v(x, y)
	case prev:
		return v(x, y) - v(x-dx, y-dy)
	default:
		return 0
	}
}

// fill estimates every channel of the pixel at (x,y) from usable pixels
// within the inpainting radius.
func (f *field) fill(x, y int) {
	gradTx := f.gradient(x, y, 1, 0, f.time, 0.5)
	gradTy := f.gradient(x, y, 0, 1, f.time, 0.5)
	tc := f.time(x, y)

	off := y*f.img.Stride + x*4

	for c := 0; c < 4; c++ {
		channel := func(x, y int) float32 { return f.value(x, y, c) }

		var ia, jx, jy float32
		s := float32(1e-20)

		for k := y - f.rng; k <= y+f.rng; k++ {
			for l := x - f.rng; l <= x+f.rng; l++ {
				if !f.usable(l, k) {
					continue
				}

				ry, rx := float32(y-k), float32(x-l)
				lenSq := rx*rx + ry*ry
				if lenSq > float32(f.rng*f.rng) {
					continue
				}

				dst := float32(1 / (float64(lenSq) * math.Sqrt(float64(lenSq))))
				lev := 1 / (1 + float32(math.Abs(float64(f.time(l, k)-tc))))
				dir := rx*gradTx + ry*gradTy
				if math.Abs(float64(dir)) <= 0.01 {
					dir = 0.000001
				}
				w := float32(math.Abs(float64(dst * lev * dir)))

				gradIx := f.gradient(l, k, 1, 0, channel, 2)
				gradIy := f.gradient(l, k, 0, 1, channel, 2)

				ia += w * channel(l, k)
				jx -= w * gradIx * rx
				jy -= w * gradIy * ry
				s += w
			}
		}

		v := ia/s + (jx+jy)/(float32(math.Sqrt(float64(jx*jx+jy*jy)))+1e-20)
		f.img.Pix[off+c] = clamp(v)
	}
}

func clamp(v float32) uint8 {
	v = float32(math.Round(float64(v)))
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

type point struct {
	t    float32
	x, y int
	seq  uint64
}

// narrowBand is a min-heap of band pixels ordered by arrival time, then by
// insertion order.
type narrowBand []point

func (b narrowBand) Len() int { return len(b) }

func (b narrowBand) Less(i, j int) bool {
	if b[i].t != b[j].t {
		return b[i].t < b[j].t
	}
	return b[i].seq < b[j].seq
}

func (b narrowBand) Swap(i, j int) { b[i], b[j] = b[j], b[i] }

func (b *narrowBand) Push(x any) { *b = append(*b, x.(point)) }

func (b *narrowBand) Pop() any {
	old := *b
	n := len(old)
	p := old[n-1]
	*b = old[:n-1]
	return p
}
