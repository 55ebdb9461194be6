package recording

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lightwave-lab/golab/sweep"
)

// Tables used to store sweep results.
const (
	RunTable    = "sweep_runs"
	SampleTable = "sweep_samples"
)

// ErrRunNotFound is returned when loading a run name that was never saved.
var ErrRunNotFound = errors.New("recording: run not found")

// A RunEntry describes one saved sweep run.
type RunEntry struct {
	Run        string
	Points     int
	Columns    string
	Incomplete bool
	RecordedAt string
}

// A SampleEntry is one recorded scalar in long form: one row per run,
// point, and column.
type SampleEntry struct {
	Run    string
	Point  int
	Column string
	Value  float64
}

// WriteResult saves a sweep result under a run name and flushes. The run
// and sample tables are created on first use, so one database can hold many
// runs.
func WriteResult(rec Recorder, runName string, result *sweep.Result) {
	ensureResultTables(rec)

	names := result.Names()

	rec.InsertData(RunTable, RunEntry{
		Run:        runName,
		Points:     result.Len(),
		Columns:    strings.Join(names, ","),
		Incomplete: result.Incomplete,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	})

	for _, name := range names {
		col, _ := result.Column(name)
		for i, v := range col {
			rec.InsertData(SampleTable, SampleEntry{
				Run:    runName,
				Point:  i,
				Column: name,
				Value:  v,
			})
		}
	}

	rec.Flush()
}

func ensureResultTables(rec Recorder) {
	for _, t := range rec.ListTables() {
		if t == RunTable {
			return
		}
	}

	rec.CreateTable(RunTable, RunEntry{})
	rec.CreateTable(SampleTable, SampleEntry{})
}

// LoadResult reads a saved run back into a sweep result.
func LoadResult(
	ctx context.Context,
	r Reader,
	runName string,
) (*sweep.Result, error) {
	r.MapTable(RunTable, RunEntry{})
	r.MapTable(SampleTable, SampleEntry{})

	runs, _, err := r.Query(ctx, RunTable, QueryParams{
		Where: "Run = ?",
		Args:  []any{runName},
	})
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}

	run := runs[0].(*RunEntry)

	samples, _, err := r.Query(ctx, SampleTable, QueryParams{
		Where:   "Run = ?",
		Args:    []any{runName},
		OrderBy: "Point ASC",
	})
	if err != nil {
		return nil, err
	}

	names := strings.Split(run.Columns, ",")
	columns := make(map[string][]float64, len(names))

	for _, s := range samples {
		sample := s.(*SampleEntry)
		columns[sample.Column] = append(columns[sample.Column], sample.Value)
	}

	return sweep.RestoreResult(names, columns, run.Incomplete), nil
}
