package form_test

import (
	"reflect"
	"testing"

	"github.com/boddenberg/influencer-bfa-go/internal/form"
)

func newTestValues() *form.Values {
	return form.NewValues(form.NewSchema(
		form.Field{Name: "name", Kind: form.KindText},
		form.Field{Name: "gender", Kind: form.KindRadio, Options: []string{"M", "F"}},
		form.Field{Name: "consent", Kind: form.KindCheckbox},
		form.Field{Name: "links", Kind: form.KindList},
	))
}

func TestCollect_TrimsAndDropsEmpty(t *testing.T) {
	v := newTestValues()
	_ = v.SetRows("links", []string{"", "x", "  "})

	got := v.Collect("links")
	if !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("expected [x], got %v", got)
	}
}

func TestSelect_NoMatchLeavesUnselected(t *testing.T) {
	v := newTestValues()
	v.Select("gender", "F")
	v.Select("gender", "X")
	if got := v.Get("gender"); got != "" {
		t.Errorf("expected no selection, got %q", got)
	}
}

func TestSet_RejectsUnknownOption(t *testing.T) {
	v := newTestValues()
	if err := v.Set("gender", "X"); err == nil {
		t.Fatal("expected error for unknown option")
	}
	if err := v.Set("missing", "x"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if err := v.Set("consent", "on"); err != nil || !v.Checked("consent") {
		t.Fatalf("expected consent checked, err=%v", err)
	}
}

func TestRows_AddSetRemove(t *testing.T) {
	v := newTestValues()
	n, err := v.AddRow("links")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 row, got %d (%v)", n, err)
	}
	_, _ = v.AddRow("links")
	_ = v.SetRow("links", 1, "b")

	if err := v.RemoveRow("links", 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.Rows("links"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("expected [b], got %v", got)
	}

	if err := v.RemoveRow("links", 0, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.Rows("links"); !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("expected the last row kept and cleared, got %v", got)
	}

	if err := v.SetRow("links", 5, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestApply_MixedKinds(t *testing.T) {
	v := newTestValues()
	err := v.Apply(map[string]any{
		"name":    "Ann",
		"consent": true,
		"links":   []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Get("name") != "Ann" || !v.Checked("consent") || len(v.Rows("links")) != 2 {
		t.Errorf("unexpected values: %v", v.Snapshot())
	}

	if err := v.Apply(map[string]any{"links": "nope"}); err == nil {
		t.Error("expected type error for list field")
	}
}

func TestApply_AllOrNothing(t *testing.T) {
	v := newTestValues()
	if err := v.Apply(map[string]any{"name": "Ann", "links": []any{"a"}}); err != nil {
		t.Fatal(err)
	}
	before := v.Snapshot()

	err := v.Apply(map[string]any{
		"name":    "Bob",
		"consent": true,
		"links":   []any{"b", "c"},
		"gender":  "X",
	})
	if err == nil {
		t.Fatal("expected error for unknown option")
	}
	if got := v.Snapshot(); !reflect.DeepEqual(got, before) {
		t.Errorf("rejected edit leaked:\n got  %v\n want %v", got, before)
	}
}

func TestApply_EmptyListClearsRows(t *testing.T) {
	v := newTestValues()
	_ = v.SetRows("links", []string{"a"})

	if err := v.Apply(map[string]any{"links": []any{}}); err != nil {
		t.Fatal(err)
	}
	if n := len(v.Rows("links")); n != 0 {
		t.Errorf("links rows = %d, want 0", n)
	}
}
