// Package form models questionnaire state without any rendering surface:
// a field schema, the current values (including repeated rows), declarative
// per-step requirements, and a step controller that validates forward moves.
package form

// Kind is the control type of a field.
type Kind int

const (
	KindText Kind = iota
	KindSelect
	KindRadio
	KindCheckbox
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSelect:
		return "select"
	case KindRadio:
		return "radio"
	case KindCheckbox:
		return "checkbox"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Field describes one named control.
type Field struct {
	Name        string   `json:"name"`
	Kind        Kind     `json:"-"`
	Options     []string `json:"options,omitempty"` // radio/select only
	Placeholder string   `json:"placeholder,omitempty"`
}

// HasOption reports whether value is one of the field's options.
func (f Field) HasOption(value string) bool {
	for _, o := range f.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Schema is an ordered set of fields.
type Schema struct {
	fields map[string]Field
	order  []string
}

// NewSchema builds a schema; later duplicates replace earlier ones.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if _, dup := s.fields[f.Name]; !dup {
			s.order = append(s.order, f.Name)
		}
		s.fields[f.Name] = f
	}
	return s
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns all fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}
