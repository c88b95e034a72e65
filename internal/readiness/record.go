package readiness

import "sort"

// Record is a survey response keyed by field name. It is built once per
// input and never mutated, so scorers may read it concurrently.
type Record struct {
	values map[string]string
}

// FromAnswers builds a record from self-describing key/value answers.
func FromAnswers(answers map[string]string) Record {
	values := make(map[string]string, len(answers))
	for k, v := range answers {
		values[k] = v
	}
	return Record{values: values}
}

// Get returns the raw value of field or a *MissingFieldError.
func (r Record) Get(field string) (string, error) {
	v, ok := r.values[field]
	if !ok {
		return "", &MissingFieldError{Field: field}
	}
	return v, nil
}

// Lookup returns the raw value of field and whether it is present.
func (r Record) Lookup(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Len returns the number of fields present.
func (r Record) Len() int {
	return len(r.values)
}

// Fields returns the present field names in sorted order.
func (r Record) Fields() []string {
	out := make([]string, 0, len(r.values))
	for k := range r.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Answers returns a copy of the underlying values.
func (r Record) Answers() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
