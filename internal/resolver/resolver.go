// Package resolver turns a batch's input and output paths into work items.
package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/aliskhannn/texture-tool/internal/model"
)

// ErrEmptyOutputPath is returned when no output folder was configured.
var ErrEmptyOutputPath = errors.New("output folder is empty")

// Extensions lists the file extensions picked up from a source folder.
// The comparison is case-sensitive.
var Extensions = []string{".png", ".jpg"}

// Resolve returns the work items for p: the single file first, then every
// matching file under the source folder in walk order.
//
// If the folder walk fails, the items resolved so far are returned together
// with the error so the caller can still process them.
func Resolve(p model.Params) ([]model.WorkItem, error) {
	if p.OutputFolder == "" {
		return nil, ErrEmptyOutputPath
	}

	var items []model.WorkItem

	if p.SingleFile != "" {
		items = append(items, Single(p.SingleFile, p.OutputFolder))
	}

	if p.SourceFolder != "" {
		folderItems, err := Folder(p.SourceFolder, p.OutputFolder)
		items = append(items, folderItems...)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// Single maps one file into the output folder under its base name.
func Single(file, outputFolder string) model.WorkItem {
	return model.WorkItem{
		Input:  file,
		Output: filepath.Join(outputFolder, filepath.Base(file)),
	}
}

// Folder walks folder recursively and maps every matching file into
// outputFolder, preserving its path relative to folder.
func Folder(folder, outputFolder string) ([]model.WorkItem, error) {
	var items []model.WorkItem

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Matches(path) {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		items = append(items, model.WorkItem{
			Input:  path,
			Output: filepath.Join(outputFolder, rel),
		})

		return nil
	})
	if err != nil {
		return items, fmt.Errorf("walk %s: %w", folder, err)
	}

	return items, nil
}

// Matches reports whether path has one of the accepted extensions.
func Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}

	return false
}
