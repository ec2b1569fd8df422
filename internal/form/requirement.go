package form

import "strings"

// Requirement is a declarative rule attached to a step. The concrete kinds
// are Text, Radio, Checkbox, List and the conditional wrapper built by When.
type Requirement interface {
	// Field is the control the rule is reported against.
	Field() string
	// Visible reports whether the control is currently shown.
	Visible(v *Values) bool
	// Satisfied reports whether the control holds an acceptable value.
	Satisfied(v *Values) bool

	requirement()
}

// Text requires a non-blank text, textarea or select value.
type Text string

func (r Text) Field() string { return string(r) }
func (r Text) Visible(*Values) bool { return true }
func (r Text) requirement() {}
func (r Text) Satisfied(v *Values) bool { return v.Trimmed(string(r)) != "" }

// Radio requires one member of a radio group to be selected.
type Radio string

func (r Radio) Field() string { return string(r) }
func (r Radio) Visible(*Values) bool { return true }
func (r Radio) requirement() {}
func (r Radio) Satisfied(v *Values) bool { return v.Get(string(r)) != "" }

// Checkbox requires a checkbox to be checked.
type Checkbox string

func (r Checkbox) Field() string { return string(r) }
func (r Checkbox) Visible(*Values) bool { return true }
func (r Checkbox) requirement() {}
func (r Checkbox) Satisfied(v *Values) bool { return v.Checked(string(r)) }

// List requires at least one row, and every present row to be non-blank.
type List string

func (r List) Field() string { return string(r) }
func (r List) Visible(*Values) bool { return true }
func (r List) requirement() {}

func (r List) Satisfied(v *Values) bool {
	rows := v.rows[string(r)]
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		if strings.TrimSpace(row) == "" {
			return false
		}
	}
	return true
}

type conditional struct {
	shown func(*Values) bool
	inner Requirement
}

// When makes r apply only while shown reports the control as visible.
func When(shown func(*Values) bool, r Requirement) Requirement {
	return conditional{shown: shown, inner: r}
}

func (c conditional) Field() string { return c.inner.Field() }
func (c conditional) requirement() {}

func (c conditional) Visible(v *Values) bool {
	return c.shown(v) && c.inner.Visible(v)
}

func (c conditional) Satisfied(v *Values) bool {
	return c.inner.Satisfied(v)
}

// Missing evaluates reqs against v and returns the fields of every visible
// requirement that is not satisfied, in declaration order.
func Missing(reqs []Requirement, v *Values) []string {
	var missing []string
	for _, r := range reqs {
		if !r.Visible(v) {
			continue
		}
		if !r.Satisfied(v) {
			missing = append(missing, r.Field())
		}
	}
	return missing
}
