package response

import "strings"

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered set of header fields. Names are kept exactly as given
// and compared case-sensitively; iteration follows insertion order.
type Header struct {
	fields []Field
}

// Set replaces the value of name, or appends it if not present.
// CR and LF are removed from the value so a field can never span lines.
func (h *Header) Set(name, value string) {
	value = strings.NewReplacer("\r", "", "\n", "").Replace(value)
	for i := range h.fields {
		if h.fields[i].Name == name {
			h.fields[i].Value = value
			return
		}
	}
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Get returns the value of name, or "" if absent.
func (h *Header) Get(name string) string {
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Fields returns the fields in insertion order.
func (h *Header) Fields() []Field {
	return h.fields
}
