// Package result holds the per-identifier record produced by the extraction
// engine and the ordered run handed to the output writer.
package result

import "strconv"

// Reserved record keys
const (
	KeyIdentifier     = "identifier"
	KeyName           = "name"
	KeyAggregateScore = "aggregateScore"
	KeyStatusSummary  = "statusSummary"
	KeyPageLength     = "pageContentLength"
	KeyError          = "error"
)

// Leading is the preferred leading column order for tabulated output
var Leading = []string{KeyIdentifier, KeyName, KeyAggregateScore, KeyStatusSummary, KeyError}

// Record maps field names to scalar values and remembers insertion order so
// columns can be laid out in first-seen order.
type Record struct {
	values map[string]string
	keys   []string
}

// New returns an empty record
func New() Record {
	return Record{values: make(map[string]string)}
}

// Failed builds the error entry for an identifier whose fetch did not complete
func Failed(identifier string, err error) Record {
	r := New()
	r.Set(KeyIdentifier, identifier)
	r.Set(KeyError, err.Error())
	return r
}

// Set writes a value. Overwriting keeps the key's original position.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// SetPageLength records the diagnostic markup length
func (r *Record) SetPageLength(n int) {
	r.Set(KeyPageLength, strconv.Itoa(n))
}

// Get returns a value and whether the key is present
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// PageLength returns the diagnostic markup length, or 0 if unset
func (r Record) PageLength() int {
	n, _ := strconv.Atoi(r.values[KeyPageLength])
	return n
}

// Keys returns keys in insertion order
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Map returns a copy of the values
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Run is the ordered sequence of records, one per requested identifier
type Run []Record

// Columns returns the leading columns present in the run followed by every
// other key in first-seen order.
func (run Run) Columns() []string {
	present := make(map[string]bool)
	var rest []string
	lead := make(map[string]bool, len(Leading))
	for _, k := range Leading {
		lead[k] = true
	}
	for _, r := range run {
		for _, k := range r.keys {
			if present[k] {
				continue
			}
			present[k] = true
			if !lead[k] {
				rest = append(rest, k)
			}
		}
	}

	var cols []string
	for _, k := range Leading {
		if present[k] {
			cols = append(cols, k)
		}
	}
	return append(cols, rest...)
}

// Failures counts error entries
func (run Run) Failures() int {
	n := 0
	for _, r := range run {
		if r.Has(KeyError) {
			n++
		}
	}
	return n
}
