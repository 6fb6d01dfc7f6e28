package action

import (
	"context"

	"github.com/taiko-go/taiko/selector"
)

// Check sets a checkbox/radio matched by sel to checked (spec.md §3 "Wrapped
// element": check).
func (p *Pipeline) Check(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.setChecked(ctx, sel, true, "Checked")
}

// Uncheck clears a checkbox matched by sel (spec.md §3 "Wrapped element":
// uncheck).
func (p *Pipeline) Uncheck(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.setChecked(ctx, sel, false, "Unchecked")
}

// Deselect is Uncheck's name for a combo box/checkbox option no longer wanted
// (spec.md §3 "Wrapped element": deselect).
func (p *Pipeline) Deselect(ctx context.Context, sel selector.Selector) (Result, error) {
	return p.setChecked(ctx, sel, false, "Deselected")
}

func (p *Pipeline) setChecked(ctx context.Context, sel selector.Selector, checked bool, verb string) (Result, error) {
	id, err := p.engine.Get(ctx, sel, 0)
	if err != nil {
		return Result{}, err
	}
	if err := p.exec.SetChecked(ctx, id, checked); err != nil {
		return Result{}, err
	}
	return Result{Description: verb + " " + sel.Description}, nil
}

// IsChecked reports whether the checkbox/radio matched by sel is checked
// (spec.md §3 "Wrapped element": isChecked).
func (p *Pipeline) IsChecked(ctx context.Context, sel selector.Selector) (bool, error) {
	id, err := p.engine.Get(ctx, sel, 0)
	if err != nil {
		return false, err
	}
	return p.exec.IsChecked(ctx, id)
}

// IsSelected is IsChecked's name for a combo box option (spec.md §3 "Wrapped
// element": isSelected).
func (p *Pipeline) IsSelected(ctx context.Context, sel selector.Selector) (bool, error) {
	return p.IsChecked(ctx, sel)
}

// Select picks value in the combo box matched by sel, or checks it if value
// is empty (spec.md §3 "Wrapped element": select(value)).
func (p *Pipeline) Select(ctx context.Context, sel selector.Selector, value string) (Result, error) {
	id, err := p.engine.Get(ctx, sel, 0)
	if err != nil {
		return Result{}, err
	}
	if value == "" {
		if err := p.exec.SetChecked(ctx, id, true); err != nil {
			return Result{}, err
		}
		return Result{Description: "Selected " + sel.Description}, nil
	}
	if err := p.exec.SelectOption(ctx, id, value); err != nil {
		return Result{}, err
	}
	return Result{Description: "Selected " + value + " in " + sel.Description}, nil
}
