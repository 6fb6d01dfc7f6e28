package action

import (
	"context"
	"fmt"

	"github.com/taiko-go/taiko/selector"
)

// defaultScrollPx is the distance scrollRight/Left/Up/Down moves when the
// caller doesn't specify one (spec.md §6 verb catalogue).
const defaultScrollPx = 250.0

// ScrollTo scrolls sel into view (spec.md §6 "scrollTo").
func (p *Pipeline) ScrollTo(ctx context.Context, sel selector.Selector) (Result, error) {
	id, err := p.engine.Get(ctx, sel, 0)
	if err != nil {
		return Result{}, err
	}
	if err := p.exec.ScrollIntoView(ctx, id); err != nil {
		return Result{}, err
	}
	return Result{Description: "Scrolled to " + sel.Description}, nil
}

// ScrollRight scrolls the page right by px pixels (0 uses the default).
func (p *Pipeline) ScrollRight(ctx context.Context, px float64) (Result, error) {
	return p.scrollBy(ctx, px, 0, "right")
}

// ScrollLeft scrolls the page left by px pixels.
func (p *Pipeline) ScrollLeft(ctx context.Context, px float64) (Result, error) {
	return p.scrollBy(ctx, -px, 0, "left")
}

// ScrollUp scrolls the page up by px pixels.
func (p *Pipeline) ScrollUp(ctx context.Context, px float64) (Result, error) {
	return p.scrollBy(ctx, 0, -px, "up")
}

// ScrollDown scrolls the page down by px pixels.
func (p *Pipeline) ScrollDown(ctx context.Context, px float64) (Result, error) {
	return p.scrollBy(ctx, 0, px, "down")
}

func (p *Pipeline) scrollBy(ctx context.Context, dx, dy float64, dir string) (Result, error) {
	if dx == 0 && dy == 0 {
		if dir == "left" || dir == "right" {
			dx = signedDefault(dir, defaultScrollPx)
		} else {
			dy = signedDefault(dir, defaultScrollPx)
		}
	}
	if err := p.exec.ScrollBy(ctx, dx, dy); err != nil {
		return Result{}, err
	}
	return Result{Description: fmt.Sprintf("Scrolled page %s", dir)}, nil
}

func signedDefault(dir string, px float64) float64 {
	if dir == "left" || dir == "up" {
		return -px
	}
	return px
}
