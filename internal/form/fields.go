package form

// FieldKind tells a renderer which input control to draw.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindTextArea FieldKind = "textarea"
	KindFiles    FieldKind = "files"
)

// SelectOption is one choice of a select field. Value is what gets submitted.
type SelectOption struct {
	Value string
	Label string
}

type FieldDescriptor struct {
	Name        string
	Label       string
	Kind        FieldKind
	Placeholder string
	Hint        string
	Options     []SelectOption
	ReadOnly    bool
}

// Empty returns the value a field holds before the applicant touches it.
func (f FieldDescriptor) Empty() interface{} {
	switch f.Kind {
	case KindCheckbox:
		return false
	case KindFiles:
		return []string{}
	default:
		return ""
	}
}

// OptionLabel returns the display label for value, or value itself.
func (f FieldDescriptor) OptionLabel(value string) string {
	for _, o := range f.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
