package form_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
	"github.com/boddenberg/influencer-bfa-go/internal/form"
)

func newTestWizard() (*form.Wizard, *form.Values) {
	schema := form.NewSchema(
		form.Field{Name: "name", Kind: form.KindText},
		form.Field{Name: "gender", Kind: form.KindRadio, Options: []string{"M", "F"}},
		form.Field{Name: "consent", Kind: form.KindCheckbox},
		form.Field{Name: "links", Kind: form.KindList},
		form.Field{Name: "has_kit", Kind: form.KindSelect, Options: []string{"true", "false"}},
		form.Field{Name: "kit_link", Kind: form.KindText},
	)
	kitShown := func(v *form.Values) bool { return v.Get("has_kit") == "true" }

	w := form.NewWizard(
		form.Step{Title: "One", Requirements: []form.Requirement{
			form.Text("name"), form.Radio("gender"), form.List("links"),
		}},
		form.Step{Title: "Two", Requirements: []form.Requirement{
			form.Checkbox("consent"),
			form.When(kitShown, form.Text("kit_link")),
		}},
		form.Step{Title: "Three"},
	)
	return w, form.NewValues(schema)
}

func TestGoToStep_RefusesForwardWithEmptyRequired(t *testing.T) {
	w, v := newTestWizard()
	_ = v.SetRows("links", []string{""})

	err := w.GoToStep(2, v)
	var incomplete *domain.ErrIncompleteStep
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected ErrIncompleteStep, got %v", err)
	}
	if w.Current() != 1 {
		t.Errorf("expected to stay on step 1, got %d", w.Current())
	}
	if len(incomplete.Fields) != 3 {
		t.Errorf("expected 3 missing fields, got %v", incomplete.Fields)
	}

	view := w.Render(v)
	if len(view.Invalid) != 3 {
		t.Errorf("expected 3 invalid marks, got %v", view.Invalid)
	}
}

func TestGoToStep_WhitespaceIsEmpty(t *testing.T) {
	w, v := newTestWizard()
	_ = v.Set("name", "   ")
	_ = v.Set("gender", "F")
	_ = v.SetRows("links", []string{"https://a"})

	if err := w.Next(v); err == nil {
		t.Fatal("expected whitespace-only name to be rejected")
	}
}

func TestGoToStep_AdvancesWhenComplete(t *testing.T) {
	w, v := newTestWizard()
	_ = v.Set("name", "Ann")
	_ = v.Set("gender", "F")
	_ = v.SetRows("links", []string{"https://a", "https://b"})

	if err := w.Next(v); err != nil {
		t.Fatalf("expected advance, got %v", err)
	}
	if w.Current() != 2 {
		t.Errorf("expected step 2, got %d", w.Current())
	}
	if view := w.Render(v); len(view.Invalid) != 0 {
		t.Errorf("expected no invalid marks, got %v", view.Invalid)
	}
}

func TestGoToStep_ListWithBlankRowRefused(t *testing.T) {
	w, v := newTestWizard()
	_ = v.Set("name", "Ann")
	_ = v.Set("gender", "M")
	_ = v.SetRows("links", []string{"https://a", " "})

	if err := w.Next(v); err == nil {
		t.Fatal("expected blank row to block navigation")
	}
}

func TestGoToStep_HiddenFieldNotChecked(t *testing.T) {
	w, v := newTestWizard()
	_ = v.Set("name", "Ann")
	_ = v.Set("gender", "M")
	_ = v.SetRows("links", []string{"x"})
	if err := w.Next(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v.SetChecked("consent", true)
	_ = v.Set("has_kit", "false")
	if err := w.Next(v); err != nil {
		t.Fatalf("hidden kit_link must not block: %v", err)
	}

	w.Reset()
	_ = w.GoToStep(2, v)
	_ = v.Set("has_kit", "true")
	if err := w.Next(v); err == nil {
		t.Fatal("visible kit_link must block when empty")
	}
}

func TestGoToStep_BackwardNeverValidated(t *testing.T) {
	w, v := newTestWizard()
	_ = v.Set("name", "Ann")
	_ = v.Set("gender", "M")
	_ = v.SetRows("links", []string{"x"})
	_ = w.Next(v)

	v.Reset()
	if err := w.Prev(v); err != nil {
		t.Fatalf("backward navigation must not validate: %v", err)
	}
	if w.Current() != 1 {
		t.Errorf("expected step 1, got %d", w.Current())
	}
}

func TestGoToStep_OutOfRangeIsNoop(t *testing.T) {
	w, v := newTestWizard()
	if err := w.GoToStep(0, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.GoToStep(4, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Current() != 1 {
		t.Errorf("expected step 1, got %d", w.Current())
	}
}

func TestRender_Chrome(t *testing.T) {
	w, v := newTestWizard()

	view := w.Render(v)
	if view.ShowPrev || !view.ShowNext || view.ShowSubmit {
		t.Errorf("unexpected chrome on first step: %+v", view)
	}
	if view.Title != "One" || view.Total != 3 {
		t.Errorf("unexpected view: %+v", view)
	}

	_ = v.Set("name", "Ann")
	_ = v.Set("gender", "M")
	_ = v.SetRows("links", []string{"x"})
	v.SetChecked("consent", true)
	_ = w.Next(v)
	_ = w.Next(v)

	view = w.Render(v)
	if !view.ShowPrev || view.ShowNext || !view.ShowSubmit {
		t.Errorf("unexpected chrome on last step: %+v", view)
	}
}
