package domain

// Placeholder is rendered for any metadata field missing from a page.
const Placeholder = "— — —"

// Field is an optionally present metadata value.
type Field struct {
	Value string
	Found bool
}

// Present builds a found field.
func Present(v string) Field { return Field{Value: v, Found: true} }

// Or returns the value when found, fallback otherwise.
func (f Field) Or(fallback string) string {
	if !f.Found {
		return fallback
	}
	return f.Value
}

// Display returns the value or the placeholder.
func (f Field) Display() string { return f.Or(Placeholder) }

// Metadata is the summary extracted from one page.
type Metadata struct {
	URL         string
	Title       Field
	Description Field
	Keywords    Field
	Author      Field
}
