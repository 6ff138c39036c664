package main

import "github.com/aliskhannn/texture-tool/internal/model"

// unset marks a numeric flag the user did not pass.
const unset = -1

// options holds the parsed command line.
type options struct {
	operation string
	single    string
	folder    string
	output    string
	size      int
	x, y      int
	w, h      int
}

// buildRequest turns the flags that were given into a batch request. If any
// watermark flag is set, the remaining rect fields come from defaults so the
// request always carries a complete rectangle.
func buildRequest(o options, defaults model.Rect) model.BatchRequest {
	var req model.BatchRequest

	if o.operation != "" {
		req.Operation = &o.operation
	}
	if o.single != "" {
		req.SingleFile = &o.single
	}
	if o.folder != "" {
		req.SourceFolder = &o.folder
	}
	if o.output != "" {
		req.OutputFolder = &o.output
	}
	if o.size != unset {
		req.TargetSize = &o.size
	}

	if o.x != unset || o.y != unset || o.w != unset || o.h != unset {
		rect := defaults
		if o.x != unset {
			rect.X = o.x
		}
		if o.y != unset {
			rect.Y = o.y
		}
		if o.w != unset {
			rect.Width = o.w
		}
		if o.h != unset {
			rect.Height = o.h
		}
		req.Watermark = &rect
	}

	return req
}
