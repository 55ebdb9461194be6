package sweep

import "log"

// A Result holds the values recorded during one gather. Each axis and each
// measurement contributes one ordered column; index i across all columns
// corresponds to the same actuation tuple.
//
// A Result is immutable once returned by a gather.
type Result struct {
	names   []string
	columns map[string][]float64

	// Incomplete reports that the gather stopped early on an actuator or
	// sensor error. Only fully completed points are present.
	Incomplete bool
}

// RestoreResult rebuilds a Result from previously recorded columns, for
// loading saved sweeps back from storage. All columns must share one length.
func RestoreResult(
	names []string,
	columns map[string][]float64,
	incomplete bool,
) *Result {
	r := newResult(names, 0)
	r.Incomplete = incomplete

	length := -1
	for _, n := range names {
		col := columns[n]
		if length >= 0 && len(col) != length {
			log.Panic("sweep: restored columns must share one length")
		}

		length = len(col)
		r.columns[n] = append([]float64(nil), col...)
	}

	return r
}

func newResult(names []string, capacity int) *Result {
	r := &Result{
		names:   names,
		columns: make(map[string][]float64, len(names)),
	}

	for _, n := range names {
		r.columns[n] = make([]float64, 0, capacity)
	}

	return r
}

func (r *Result) appendPoint(values []float64) {
	for i, n := range r.names {
		r.columns[n] = append(r.columns[n], values[i])
	}
}

// Names returns the column names in registration order, axes before
// measurements.
func (r *Result) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}

// Len returns the number of completed sweep points.
func (r *Result) Len() int {
	if len(r.names) == 0 {
		return 0
	}

	return len(r.columns[r.names[0]])
}

// Column returns the recorded values for an axis or measurement name. The
// returned slice is a copy. The second return value is false when the name
// was never registered.
func (r *Result) Column(name string) ([]float64, bool) {
	col, ok := r.columns[name]
	if !ok {
		return nil, false
	}

	out := make([]float64, len(col))
	copy(out, col)

	return out, true
}

// Point returns one row as a name-to-value map.
func (r *Result) Point(i int) map[string]float64 {
	row := make(map[string]float64, len(r.names))
	for _, n := range r.names {
		row[n] = r.columns[n][i]
	}

	return row
}
