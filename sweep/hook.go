package sweep

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// Hook positions triggered during a gather.
var (
	// HookPosGatherStart triggers once before the first point. Item carries
	// the total point count as an int.
	HookPosGatherStart = &HookPos{Name: "GatherStart"}

	// HookPosBeforePoint triggers before the first actuation of a point.
	HookPosBeforePoint = &HookPos{Name: "BeforePoint"}

	// HookPosAfterPoint triggers after a point is fully recorded.
	HookPosAfterPoint = &HookPos{Name: "AfterPoint"}

	// HookPosBeforeActuation triggers before one actuator is applied.
	HookPosBeforeActuation = &HookPos{Name: "BeforeActuation"}

	// HookPosAfterActuation triggers after one actuator has settled.
	HookPosAfterActuation = &HookPos{Name: "AfterActuation"}

	// HookPosBeforeMeasurement triggers before one sensor is read.
	HookPosBeforeMeasurement = &HookPos{Name: "BeforeMeasurement"}

	// HookPosAfterMeasurement triggers after one sensor reading is recorded.
	HookPosAfterMeasurement = &HookPos{Name: "AfterMeasurement"}

	// HookPosGatherEnd triggers once when a gather terminates, complete or
	// not.
	HookPosGatherEnd = &HookPos{Name: "GatherEnd"}
)

// An ActuationSample describes one actuator invocation passed to hooks.
type ActuationSample struct {
	Name  string
	Value float64
}

// A MeasurementSample describes one sensor reading passed to hooks.
type MeasurementSample struct {
	Name  string
	Value float64
}

// HookCtx is the context that holds all the information about the site that
// a hook is triggered.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Point  int
	Item   interface{}
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)
}

// A HookableBase provides some utility function for other type that
// implement the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
