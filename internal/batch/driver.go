// Package batch runs one operation over every resolved work item and reports
// a log entry per file.
package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aliskhannn/texture-tool/internal/model"
	"github.com/aliskhannn/texture-tool/internal/processor"
	"github.com/aliskhannn/texture-tool/internal/report"
	"github.com/aliskhannn/texture-tool/internal/resolver"
)

// imageProcessor defines the single-file transform dispatch.
type imageProcessor interface {
	Process(ctx context.Context, params model.Params, item model.WorkItem) (processor.Result, error)
}

// mirror defines an optional copy of written outputs to remote storage.
type mirror interface {
	Upload(ctx context.Context, rel, localPath string) (string, error)
}

// Driver executes batches sequentially, one work item at a time.
type Driver struct {
	processor imageProcessor
	mirror    mirror
}

// New creates a Driver. m may be nil to disable mirroring.
func New(p imageProcessor, m mirror) *Driver {
	return &Driver{processor: p, mirror: m}
}

// Validate checks params before any filesystem access.
func Validate(p model.Params) error {
	if p.OutputFolder == "" {
		return resolver.ErrEmptyOutputPath
	}

	switch p.Operation {
	case model.RemoveWatermark:
		return p.Watermark.Validate()
	case model.DownSample:
		if p.TargetSize == 0 {
			return processor.ErrInvalidTargetSize
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", model.ErrUnknownOperation, int(p.Operation))
	}
}

// Run executes params and reports to r. A failing item never stops the
// items after it. Cancellation of ctx is observed between items.
func (d *Driver) Run(ctx context.Context, params model.Params, r report.Reporter) model.Summary {
	var sum model.Summary
	tag := "[" + params.Operation.Label() + "]"

	if err := Validate(params); err != nil {
		r.Report(model.LevelError, fmt.Sprintf("%s %v", tag, err))
		return sum
	}

	if params.SingleFile == "" && params.SourceFolder == "" {
		r.Report(model.LevelWarn, fmt.Sprintf("%s no image or folder selected", tag))
		return sum
	}

	items, err := resolver.Resolve(params)
	if err != nil {
		r.Report(model.LevelError, fmt.Sprintf("%s failed to list source folder: %v", tag, err))
	}

	for i, item := range items {
		if ctx.Err() != nil {
			sum.Canceled = true
			r.Report(model.LevelWarn, fmt.Sprintf("%s canceled, %d file(s) not processed", tag, len(items)-i))
			break
		}

		sum.Total++
		d.runItem(ctx, tag, params, item, r, &sum)
	}

	return sum
}

// runItem processes one work item and reports exactly one entry for it.
func (d *Driver) runItem(ctx context.Context, tag string, params model.Params, item model.WorkItem, r report.Reporter, sum *model.Summary) {
	name := filepath.Base(item.Input)

	res, err := d.process(ctx, params, item)
	if err != nil {
		sum.Failed++
		r.Report(model.LevelError, fmt.Sprintf("%s failed: %s: %v", tag, name, err))
		return
	}

	if res.Skipped {
		sum.Skipped++
		r.Report(model.LevelWarn, fmt.Sprintf("%s %s already within target size: %dx%d -> %d",
			tag, name, res.Source.X, res.Source.Y, res.Target))
		return
	}

	sum.Succeeded++

	msg := fmt.Sprintf("%s done: %s", tag, name)
	if res.Operation == model.DownSample {
		msg = fmt.Sprintf("%s; %dx%d -> %dx%d", msg, res.Source.X, res.Source.Y, res.Size.X, res.Size.Y)
	}

	if d.mirror != nil {
		if err := d.upload(ctx, params.OutputFolder, res.Output); err != nil {
			r.Report(model.LevelWarn, fmt.Sprintf("%s (mirror upload failed: %v)", msg, err))
			return
		}
	}

	r.Report(model.LevelInfo, msg)
}

// process calls the processor, turning a panic into an error.
func (d *Driver) process(ctx context.Context, params model.Params, item model.WorkItem) (res processor.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return d.processor.Process(ctx, params, item)
}

func (d *Driver) upload(ctx context.Context, outputFolder, output string) error {
	rel, err := filepath.Rel(outputFolder, output)
	if err != nil {
		return fmt.Errorf("relative output path: %w", err)
	}

	_, err = d.mirror.Upload(ctx, rel, output)
	return err
}
