package document

import "sort"

// Document is a normalized tabular record: an immutable field name to text mapping.
type Document struct {
	fields map[string]string
}

// New creates a Document from already normalized fields. The map is copied.
func New(fields map[string]string) Document {
	return Document{fields: cloneStringMap(fields)}
}

// Get returns the text value of a field and whether it is present.
func (d Document) Get(field string) (string, bool) {
	v, ok := d.fields[field]
	return v, ok
}

// Value returns the text value of a field, or "" when absent.
func (d Document) Value(field string) string { return d.fields[field] }

// Fields returns a copy of all fields.
func (d Document) Fields() map[string]string { return cloneStringMap(d.fields) }

// Names returns the field names in sorted order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d.fields))
	for k := range d.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of fields.
func (d Document) Len() int { return len(d.fields) }

func cloneStringMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
