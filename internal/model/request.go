package model

import (
	"fmt"
	"math"
)

// BatchRequest is a batch submission as received from a client. Nil
// fields keep the value from the defaults they are applied to.
type BatchRequest struct {
	Operation    *string `json:"operation,omitempty"`
	Watermark    *Rect   `json:"watermark,omitempty"`
	TargetSize   *int    `json:"target_size,omitempty"`
	SingleFile   *string `json:"single_file,omitempty"`
	SourceFolder *string `json:"source_folder,omitempty"`
	OutputFolder *string `json:"output_folder,omitempty"`
}

// Apply overlays the request on defaults and checks the numeric inputs.
func (r BatchRequest) Apply(defaults Params) (Params, error) {
	p := defaults

	if r.Operation != nil {
		op, err := ParseOperation(*r.Operation)
		if err != nil {
			return Params{}, err
		}
		p.Operation = op
	}

	if r.Watermark != nil {
		if err := r.Watermark.Validate(); err != nil {
			return Params{}, err
		}
		p.Watermark = *r.Watermark
	}

	if r.TargetSize != nil {
		if *r.TargetSize < 0 || *r.TargetSize > math.MaxUint16 {
			return Params{}, fmt.Errorf("target size %d out of range 0..%d", *r.TargetSize, math.MaxUint16)
		}
		p.TargetSize = uint16(*r.TargetSize)
	}

	if r.SingleFile != nil {
		p.SingleFile = *r.SingleFile
	}
	if r.SourceFolder != nil {
		p.SourceFolder = *r.SourceFolder
	}
	if r.OutputFolder != nil {
		p.OutputFolder = *r.OutputFolder
	}

	return p, nil
}
