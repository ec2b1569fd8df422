package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/boddenberg/influencer-bfa-go/internal/domain"
)

// Values is the editable state of a form bound to a schema.
// Scalars hold text, select and radio values; list fields hold ordered rows.
type Values struct {
	schema  *Schema
	scalars map[string]string
	checks  map[string]bool
	rows    map[string][]string
}

// NewValues returns empty values for schema.
func NewValues(schema *Schema) *Values {
	v := &Values{schema: schema}
	v.Reset()
	return v
}

// Schema returns the schema the values are bound to.
func (v *Values) Schema() *Schema {
	return v.schema
}

// Reset clears every field. List fields end up with zero rows.
func (v *Values) Reset() {
	v.scalars = make(map[string]string)
	v.checks = make(map[string]bool)
	v.rows = make(map[string][]string)
}

func (v *Values) field(name string, kinds ...Kind) (Field, error) {
	f, ok := v.schema.Field(name)
	if !ok {
		return Field{}, &domain.ErrValidation{Field: name, Message: "unknown field"}
	}
	for _, k := range kinds {
		if f.Kind == k {
			return f, nil
		}
	}
	return Field{}, &domain.ErrValidation{Field: name, Message: fmt.Sprintf("field is a %s control", f.Kind)}
}

// Get returns the raw value of a text, select or radio field.
func (v *Values) Get(name string) string {
	return v.scalars[name]
}

// Trimmed returns Get with surrounding whitespace removed.
func (v *Values) Trimmed(name string) string {
	return strings.TrimSpace(v.scalars[name])
}

// Set assigns a user-entered value. Radio and select values must be one of
// the declared options (or empty); checkbox values accept "on", "true",
// "false" and "".
func (v *Values) Set(name, value string) error {
	f, err := v.field(name, KindText, KindSelect, KindRadio, KindCheckbox)
	if err != nil {
		return err
	}
	switch f.Kind {
	case KindCheckbox:
		checked, err := parseCheckbox(value)
		if err != nil {
			return &domain.ErrValidation{Field: name, Message: err.Error()}
		}
		v.checks[name] = checked
	case KindRadio, KindSelect:
		if value != "" && len(f.Options) > 0 && !f.HasOption(value) {
			return &domain.ErrValidation{Field: name, Message: fmt.Sprintf("%q is not an option", value)}
		}
		v.scalars[name] = value
	default:
		v.scalars[name] = value
	}
	return nil
}

// Select picks the radio/select option matching value. A value with no
// matching option leaves the group unselected.
func (v *Values) Select(name, value string) {
	f, ok := v.schema.Field(name)
	if !ok {
		return
	}
	if len(f.Options) > 0 && !f.HasOption(value) {
		delete(v.scalars, name)
		return
	}
	v.scalars[name] = value
}

// Checked returns a checkbox state.
func (v *Values) Checked(name string) bool {
	return v.checks[name]
}

// SetChecked sets a checkbox state.
func (v *Values) SetChecked(name string, checked bool) {
	v.checks[name] = checked
}

// Rows returns a copy of a list field's rows.
func (v *Values) Rows(name string) []string {
	return append([]string(nil), v.rows[name]...)
}

// SetRows replaces a list field's rows.
func (v *Values) SetRows(name string, rows []string) error {
	if _, err := v.field(name, KindList); err != nil {
		return err
	}
	v.rows[name] = append([]string(nil), rows...)
	return nil
}

// AddRow appends one empty row and returns the new row count.
func (v *Values) AddRow(name string) (int, error) {
	if _, err := v.field(name, KindList); err != nil {
		return 0, err
	}
	v.rows[name] = append(v.rows[name], "")
	return len(v.rows[name]), nil
}

// SetRow edits a single row in place.
func (v *Values) SetRow(name string, i int, value string) error {
	if _, err := v.field(name, KindList); err != nil {
		return err
	}
	if i < 0 || i >= len(v.rows[name]) {
		return &domain.ErrValidation{Field: name, Message: fmt.Sprintf("row %d out of range", i)}
	}
	v.rows[name][i] = value
	return nil
}

// RemoveRow deletes row i. When keepOne is set the last remaining row is
// cleared instead of removed.
func (v *Values) RemoveRow(name string, i int, keepOne bool) error {
	if _, err := v.field(name, KindList); err != nil {
		return err
	}
	rows := v.rows[name]
	if i < 0 || i >= len(rows) {
		return &domain.ErrValidation{Field: name, Message: fmt.Sprintf("row %d out of range", i)}
	}
	if keepOne && len(rows) == 1 {
		rows[0] = ""
		return nil
	}
	v.rows[name] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

// Collect returns the trimmed, non-empty rows of a list field.
func (v *Values) Collect(name string) []string {
	out := []string{}
	for _, r := range v.rows[name] {
		if t := strings.TrimSpace(r); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Snapshot renders every field as JSON-friendly values keyed by name.
func (v *Values) Snapshot() map[string]any {
	out := make(map[string]any, len(v.schema.order))
	for _, f := range v.schema.Fields() {
		switch f.Kind {
		case KindCheckbox:
			out[f.Name] = v.checks[f.Name]
		case KindList:
			out[f.Name] = v.Rows(f.Name)
		default:
			out[f.Name] = v.scalars[f.Name]
		}
	}
	return out
}

// Apply sets several fields at once from decoded JSON: strings for scalar
// fields, booleans for checkboxes and string arrays for list fields.
// Changes are all-or-nothing: on the first invalid entry (in field name
// order) nothing is applied.
func (v *Values) Apply(changes map[string]any) error {
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	next := v.clone()
	for _, name := range names {
		if err := next.apply(name, changes[name]); err != nil {
			return err
		}
	}
	v.scalars, v.checks, v.rows = next.scalars, next.checks, next.rows
	return nil
}

func (v *Values) apply(name string, raw any) error {
	f, ok := v.schema.Field(name)
	if !ok {
		return &domain.ErrValidation{Field: name, Message: "unknown field"}
	}
	switch f.Kind {
	case KindCheckbox:
		switch x := raw.(type) {
		case bool:
			v.checks[name] = x
			return nil
		case string:
			return v.Set(name, x)
		default:
			return &domain.ErrValidation{Field: name, Message: "expected boolean"}
		}
	case KindList:
		items, ok := raw.([]any)
		if !ok {
			return &domain.ErrValidation{Field: name, Message: "expected list of strings"}
		}
		rows := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return &domain.ErrValidation{Field: name, Message: "expected list of strings"}
			}
			rows = append(rows, s)
		}
		v.rows[name] = rows
		return nil
	default:
		s, ok := raw.(string)
		if !ok && raw != nil {
			return &domain.ErrValidation{Field: name, Message: "expected string"}
		}
		return v.Set(name, s)
	}
}

// clone returns an independent copy of the values.
func (v *Values) clone() *Values {
	c := &Values{
		schema:  v.schema,
		scalars: make(map[string]string, len(v.scalars)),
		checks:  make(map[string]bool, len(v.checks)),
		rows:    make(map[string][]string, len(v.rows)),
	}
	for k, x := range v.scalars {
		c.scalars[k] = x
	}
	for k, x := range v.checks {
		c.checks[k] = x
	}
	for k, x := range v.rows {
		c.rows[k] = append([]string(nil), x...)
	}
	return c
}

func parseCheckbox(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on":
		return true, nil
	case "":
		return false, nil
	default:
		return strconv.ParseBool(s)
	}
}
