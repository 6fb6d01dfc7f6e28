package action

import (
	"context"
	"os"

	"github.com/taiko-go/taiko/selector"
)

// Attach uploads the local file at path into the file <input> matched by sel
// (spec.md §6 "attach"). The path is checked on disk before any CDP call so a
// bad path fails with FileNotFoundError rather than an opaque wire error.
func (p *Pipeline) Attach(ctx context.Context, sel selector.Selector, path string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, &FileNotFoundError{Path: path}
	}
	id, err := p.engine.Get(ctx, sel, 0)
	if err != nil {
		return Result{}, err
	}
	if isFile, err := p.exec.IsFileInput(ctx, id); err != nil {
		return Result{}, err
	} else if !isFile {
		return Result{}, &UnsupportedOperationError{Op: "attach"}
	}
	if err := p.exec.SetFileInputFiles(ctx, id, []string{path}); err != nil {
		return Result{}, err
	}
	return Result{Description: "Attached " + path + " to " + sel.Description}, nil
}
