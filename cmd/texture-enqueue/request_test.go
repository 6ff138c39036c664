package main

import (
	"testing"

	"github.com/aliskhannn/texture-tool/internal/model"
)

func noFlags() options {
	return options{size: unset, x: unset, y: unset, w: unset, h: unset}
}

func TestBuildRequestWatermarkFlags(t *testing.T) {
	defaults := model.Rect{X: 91, Y: 97, Width: 8, Height: 2}

	tests := []struct {
		name string
		set  func(o *options)
		want *model.Rect
	}{
		{name: "no rect flags", set: func(*options) {}},
		{
			name: "all rect flags",
			set:  func(o *options) { o.x, o.y, o.w, o.h = 1, 2, 3, 4 },
			want: &model.Rect{X: 1, Y: 2, Width: 3, Height: 4},
		},
		{
			name: "partial rect keeps defaults",
			set:  func(o *options) { o.x = 0; o.h = 5 },
			want: &model.Rect{X: 0, Y: 97, Width: 8, Height: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := noFlags()
			o.operation = "remove_watermark"
			tt.set(&o)

			req := buildRequest(o, defaults)

			if req.Operation == nil || *req.Operation != "remove_watermark" {
				t.Fatalf("operation not carried over: %+v", req.Operation)
			}
			if tt.want == nil {
				if req.Watermark != nil {
					t.Fatalf("unexpected watermark %+v", *req.Watermark)
				}
				return
			}
			if req.Watermark == nil || *req.Watermark != *tt.want {
				t.Fatalf("watermark = %+v, want %+v", req.Watermark, *tt.want)
			}
		})
	}
}

func TestBuildRequestOmitsUnsetFields(t *testing.T) {
	req := buildRequest(noFlags(), model.Rect{})

	if req.Operation != nil || req.SingleFile != nil || req.SourceFolder != nil ||
		req.OutputFolder != nil || req.TargetSize != nil || req.Watermark != nil {
		t.Fatalf("expected empty request, got %+v", req)
	}

	o := noFlags()
	o.size = 0
	o.folder = "/in"
	o.output = "/out"
	req = buildRequest(o, model.Rect{})
	if req.TargetSize == nil || *req.TargetSize != 0 || *req.SourceFolder != "/in" || *req.OutputFolder != "/out" {
		t.Fatalf("unexpected request %+v", req)
	}
}
