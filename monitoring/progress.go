package monitoring

import (
	"sync"
	"time"

	"github.com/lightwave-lab/golab/sweep"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a
// certain amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// A progressHook drives one progress bar per gather of a sweeper.
type progressHook struct {
	monitor *Monitor
	name    string
	bar     *ProgressBar
}

func (h *progressHook) Func(ctx sweep.HookCtx) {
	switch ctx.Pos {
	case sweep.HookPosGatherStart:
		h.bar = h.monitor.CreateProgressBar(h.name, uint64(ctx.Item.(int)))
	case sweep.HookPosBeforePoint:
		h.bar.IncrementInProgress(1)
	case sweep.HookPosAfterPoint:
		h.bar.MoveInProgressToFinished(1)
	case sweep.HookPosGatherEnd:
		if h.bar != nil {
			h.monitor.CompleteProgressBar(h.bar)
			h.bar = nil
		}
	}
}
