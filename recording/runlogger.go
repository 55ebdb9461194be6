package recording

import (
	"sync"
	"time"

	"github.com/lightwave-lab/golab/sweep"
)

// LogTable stores one row per actuation or measurement.
const LogTable = "sweep_log"

// A PointLogEntry records one completed actuation or measurement, with the
// wall-clock time it finished.
type PointLogEntry struct {
	Sweep string
	Point int
	Stage string
	Name  string
	Value float64
	Time  float64
}

// A RunLogger is a sweep hook that timestamps every actuation and
// measurement and writes them through a Recorder. Attach it with
// Sweeper.AcceptHook; it flushes at the end of each gather.
type RunLogger struct {
	mu      sync.Mutex
	backend Recorder
	now     func() time.Time
}

// NewRunLogger creates a RunLogger writing to the given backend.
func NewRunLogger(backend Recorder) *RunLogger {
	backend.CreateTable(LogTable, PointLogEntry{})

	return &RunLogger{
		backend: backend,
		now:     time.Now,
	}
}

// Func implements sweep.Hook.
func (l *RunLogger) Func(ctx sweep.HookCtx) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ctx.Pos {
	case sweep.HookPosAfterActuation:
		sample := ctx.Item.(sweep.ActuationSample)
		l.log(ctx, string(sweep.StageActuate), sample.Name, sample.Value)
	case sweep.HookPosAfterMeasurement:
		sample := ctx.Item.(sweep.MeasurementSample)
		l.log(ctx, string(sweep.StageMeasure), sample.Name, sample.Value)
	case sweep.HookPosGatherEnd:
		l.backend.Flush()
	}
}

func (l *RunLogger) log(
	ctx sweep.HookCtx,
	stage, name string,
	value float64,
) {
	sweepName := ""
	if named, ok := ctx.Domain.(interface{ Name() string }); ok {
		sweepName = named.Name()
	}

	l.backend.InsertData(LogTable, PointLogEntry{
		Sweep: sweepName,
		Point: ctx.Point,
		Stage: stage,
		Name:  name,
		Value: value,
		Time:  float64(l.now().UnixNano()) / 1e9,
	})
}
