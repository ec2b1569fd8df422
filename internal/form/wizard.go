package form

import (
	"sort"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
)

// Step is one page of a multi-step form.
type Step struct {
	Number       int
	Title        string
	Requirements []Requirement
}

// StepView is everything a renderer needs for the current step.
type StepView struct {
	Number     int      `json:"number"`
	Total      int      `json:"total"`
	Title      string   `json:"title"`
	ShowPrev   bool     `json:"show_prev"`
	ShowNext   bool     `json:"show_next"`
	ShowSubmit bool     `json:"show_submit"`
	Hidden     []string `json:"hidden,omitempty"`
	Invalid    []string `json:"invalid,omitempty"`
}

// Wizard tracks the current step of a multi-step form and validates
// forward navigation. It is not safe for concurrent use.
type Wizard struct {
	steps   []Step
	current int
	invalid map[string]bool
}

// NewWizard starts on step 1. Steps are numbered by position.
func NewWizard(steps ...Step) *Wizard {
	for i := range steps {
		steps[i].Number = i + 1
	}
	return &Wizard{
		steps:   steps,
		current: 1,
		invalid: make(map[string]bool),
	}
}

// Current returns the 1-based current step.
func (w *Wizard) Current() int { return w.current }

// Total returns the number of steps.
func (w *Wizard) Total() int { return len(w.steps) }

// GoToStep moves to target. Targets outside [1, Total] are ignored.
// Moving forward first checks the visible requirements of the current
// step; on failure the offending fields are flagged, the step does not
// change and an *domain.ErrIncompleteStep is returned. Moving backward
// is never checked.
func (w *Wizard) GoToStep(target int, v *Values) error {
	if target < 1 || target > len(w.steps) {
		return nil
	}
	if target > w.current {
		if missing := w.check(w.current, v); len(missing) > 0 {
			return &domain.ErrIncompleteStep{Step: w.current, Fields: missing}
		}
	}
	w.current = target
	return nil
}

// Next is GoToStep(Current()+1).
func (w *Wizard) Next(v *Values) error { return w.GoToStep(w.current+1, v) }

// Prev is GoToStep(Current()-1).
func (w *Wizard) Prev(v *Values) error { return w.GoToStep(w.current-1, v) }

// Reset returns to step 1 and clears error marks.
func (w *Wizard) Reset() {
	w.current = 1
	w.invalid = make(map[string]bool)
}

// ValidateCurrent checks the current step only.
func (w *Wizard) ValidateCurrent(v *Values) error {
	if missing := w.check(w.current, v); len(missing) > 0 {
		return &domain.ErrIncompleteStep{Step: w.current, Fields: missing}
	}
	return nil
}

// check evaluates step n and updates the error marks of its fields.
func (w *Wizard) check(n int, v *Values) []string {
	step := w.steps[n-1]
	for _, r := range step.Requirements {
		delete(w.invalid, r.Field())
	}
	missing := Missing(step.Requirements, v)
	for _, f := range missing {
		w.invalid[f] = true
	}
	return missing
}

// Render describes the current step.
func (w *Wizard) Render(v *Values) StepView {
	step := w.steps[w.current-1]
	view := StepView{
		Number:     w.current,
		Total:      len(w.steps),
		Title:      step.Title,
		ShowPrev:   w.current > 1,
		ShowNext:   w.current < len(w.steps),
		ShowSubmit: w.current == len(w.steps),
	}
	for _, r := range step.Requirements {
		if !r.Visible(v) {
			view.Hidden = append(view.Hidden, r.Field())
		}
	}
	for f := range w.invalid {
		view.Invalid = append(view.Invalid, f)
	}
	sort.Strings(view.Invalid)
	return view
}
