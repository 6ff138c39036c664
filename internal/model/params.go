package model

import (
	"fmt"
	"math"
)

// Rect is a watermark location in percent of the source image.
// Width and height are scaled by the image width when applied.
type Rect struct {
	X      int `json:"x" mapstructure:"x"`
	Y      int `json:"y" mapstructure:"y"`
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// Validate checks that every field fits in 0..65535.
func (r Rect) Validate() error {
	for _, v := range [...]int{r.X, r.Y, r.Width, r.Height} {
		if v < 0 || v > math.MaxUint16 {
			return fmt.Errorf("watermark rect fields must be within 0..%d: %+v", math.MaxUint16, r)
		}
	}

	return nil
}

// Params is the parameter state of a single batch invocation.
type Params struct {
	Operation    Operation `json:"operation"`
	Watermark    Rect      `json:"watermark"`
	TargetSize   uint16    `json:"target_size"`
	SingleFile   string    `json:"single_file,omitempty"`
	SourceFolder string    `json:"source_folder,omitempty"`
	OutputFolder string    `json:"output_folder,omitempty"`
}

// WorkItem is one resolved source/destination pair.
type WorkItem struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}
