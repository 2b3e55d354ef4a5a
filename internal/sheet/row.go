package sheet

// Cell is one header/value pair of a data row.
type Cell struct {
	Header string
	Value  string
}

// Row keeps the sheet's column order; lookups are by exact header text.
type Row []Cell

func (r Row) Get(header string) (string, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

func (r Row) Headers() []string {
	out := make([]string, 0, len(r))
	for _, c := range r {
		out = append(out, c.Header)
	}
	return out
}
