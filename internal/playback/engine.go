package playback

import (
	"math"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/route"
)

const (
	// MaxDeltaMS caps one tick's elapsed time so a backgrounded tab or a
	// stalled frame loop cannot jump the head across the path.
	MaxDeltaMS = 100

	// DefaultSpeedStep is the granularity SetSpeed rounds to.
	DefaultSpeedStep = 5

	// waitTolerance is the progress band (±0.5%) around a pause anchor;
	// without it two fast frames can straddle a waypoint and miss it.
	waitTolerance = 0.005
)

// Hooks are the engine's outbound notifications. Any field may be nil.
// They replace an event bus on purpose: observers register once at
// construction and there is no global dispatcher in the core.
type Hooks struct {
	OnPlay     func()
	OnPause    func()
	OnStop     func()
	OnReset    func()
	OnComplete func()

	OnWaypointWaitStart func(index int, durationMS float64)
	OnWaypointWaitEnd   func(index int)

	OnSpeedChange    func(pxPerSec float64)
	OnDurationChange func(durationMS float64)
	OnSeek           func(progress float64)
}

// Engine is the frame-driven scheduler. One external driver calls Tick once
// per frame; there is no internal goroutine. The engine owns its State and
// the pause bookkeeping; it is not safe for concurrent mutation.
type Engine struct {
	state State
	hooks Hooks

	waypoints  []route.Waypoint
	majors     []route.MajorPosition
	pathLength float64

	visited   map[int]bool
	speedStep float64
	destroyed bool
}

// NewEngine returns an idle engine at the given constant speed.
func NewEngine(speedPxPerSec float64, h Hooks) *Engine {
	return &Engine{
		state:     NewState(speedPxPerSec),
		hooks:     h,
		visited:   map[int]bool{},
		speedStep: DefaultSpeedStep,
	}
}

// State returns a snapshot; mutating it has no effect on the engine.
func (e *Engine) State() State { return e.state }

func (e *Engine) Progress() float64          { return e.state.Progress }
func (e *Engine) EffectiveProgress() float64 { return e.state.EffectiveProgress() }
func (e *Engine) Time() float64              { return e.state.CurrentTimeMS }
func (e *Engine) Duration() float64          { return e.state.DurationMS }
func (e *Engine) Speed() float64             { return e.state.SpeedPxPerSec }
func (e *Engine) IsPlaying() bool            { return e.state.Playing && !e.state.Paused }
func (e *Engine) IsWaiting() bool            { return e.state.Waiting }
func (e *Engine) IsComplete() bool           { return e.state.IsComplete() }
func (e *Engine) PathLength() float64        { return e.pathLength }

// LoadRoute installs a computed path and its pause anchors, rederiving the
// duration from length and speed. Progress is preserved across the reload.
func (e *Engine) LoadRoute(p route.Path, majors []route.MajorPosition, wps []route.Waypoint) {
	e.waypoints = wps
	e.majors = majors
	e.pathLength = p.Length
	e.visited = map[int]bool{}
	e.syncAnchors(e.state.Progress)
	e.recomputeDuration()
}

// syncAnchors consumes every pause anchor behind progress p and re-arms the
// rest, so wait detection only ever fires at or ahead of the head.
func (e *Engine) syncAnchors(p float64) {
	for _, mp := range e.majors {
		if mp.Progress >= p-waitTolerance {
			delete(e.visited, mp.WaypointIndex)
		} else {
			e.visited[mp.WaypointIndex] = true
		}
	}
}

func (e *Engine) recomputeDuration() {
	d := 0.0
	if e.pathLength > 0 && e.state.SpeedPxPerSec > 0 {
		d = e.pathLength / e.state.SpeedPxPerSec * 1000
	}
	e.state.SetDuration(d)
	if e.hooks.OnDurationChange != nil {
		e.hooks.OnDurationChange(d)
	}
}

func (e *Engine) Play() {
	if e.destroyed {
		return
	}
	e.state.Play()
	if e.hooks.OnPlay != nil {
		e.hooks.OnPlay()
	}
}

func (e *Engine) Pause() {
	if e.destroyed {
		return
	}
	e.state.Pause()
	if e.hooks.OnPause != nil {
		e.hooks.OnPause()
	}
}

func (e *Engine) TogglePlayPause() {
	if e.state.Playing && !e.state.Paused {
		e.Pause()
	} else {
		e.Play()
	}
}

// Stop is safe at any time and leaves no pending wait.
func (e *Engine) Stop() {
	e.state.Stop()
	e.visited = map[int]bool{}
	if e.hooks.OnStop != nil {
		e.hooks.OnStop()
	}
}

// Reset rewinds like Stop but is the documented way to start over: speed
// and rate multiplier survive the call.
func (e *Engine) Reset() {
	e.state.Reset()
	e.visited = map[int]bool{}
	if e.hooks.OnReset != nil {
		e.hooks.OnReset()
	}
}

// Seek jumps to progress p. Pause anchors at or past the new position are
// re-armed so a rewind replays its waits; anchors behind it are consumed so
// a forward seek never fires a wait that would pin the head backward.
func (e *Engine) Seek(p float64) {
	if e.destroyed || e.state.DurationMS <= 0 {
		return
	}
	e.state.EndWaypointWait()
	e.state.SetProgress(p)
	e.syncAnchors(e.state.Progress)
	if e.hooks.OnSeek != nil {
		e.hooks.OnSeek(e.state.Progress)
	}
}

// SkipToEnd drives the state to the terminal position.
func (e *Engine) SkipToEnd() {
	if e.state.DurationMS <= 0 {
		return
	}
	e.state.EndWaypointWait()
	e.state.SetProgress(1)
	e.state.Playing = false
	e.state.Paused = false
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete()
	}
}

// SetSpeed rounds to the configured step, stores the speed, and rederives
// the duration so the visual position is preserved.
func (e *Engine) SetSpeed(pxPerSec float64) {
	if pxPerSec <= 0 {
		return
	}
	step := e.speedStep
	if step <= 0 {
		step = DefaultSpeedStep
	}
	rounded := math.Round(pxPerSec/step) * step
	if rounded < step {
		rounded = step
	}
	e.state.SpeedPxPerSec = rounded
	if e.hooks.OnSpeedChange != nil {
		e.hooks.OnSpeedChange(rounded)
	}
	e.recomputeDuration()
}

// SetDuration installs a fixed duration directly, for callers running in
// duration mode instead of constant-speed mode. Progress is preserved.
func (e *Engine) SetDuration(durationMS float64) {
	e.state.SetDuration(durationMS)
	if e.hooks.OnDurationChange != nil {
		e.hooks.OnDurationChange(e.state.DurationMS)
	}
}

// SetSpeedStep overrides the rounding granularity used by SetSpeed.
func (e *Engine) SetSpeedStep(step float64) {
	if step > 0 {
		e.speedStep = step
	}
}

func (e *Engine) SetRate(r float64) {
	e.state.SetRate(r)
}

// Tick advances the engine by deltaMS of wall-clock time; nowMS is the
// current wall clock used for waypoint-wait scheduling. Both come from the
// caller, which keeps the engine deterministic under a simulated clock.
func (e *Engine) Tick(deltaMS, nowMS float64) {
	if e.destroyed || !e.state.Playing || e.state.Paused {
		return
	}
	if deltaMS < 0 {
		deltaMS = 0
	}
	if deltaMS > MaxDeltaMS {
		deltaMS = MaxDeltaMS
	}

	// Waiting: progress stays frozen until the wall clock passes the wait
	// window. Advancing resumes on the next tick.
	if e.state.Waiting {
		if nowMS >= e.state.WaitEndMS {
			idx := e.state.WaitingWaypoint
			e.state.EndWaypointWait()
			if e.hooks.OnWaypointWaitEnd != nil {
				e.hooks.OnWaypointWaitEnd(idx)
			}
		}
		return
	}

	if e.state.DurationMS <= 0 {
		return
	}

	e.state.CurrentTimeMS += deltaMS * e.state.RateMultiplier
	if e.state.CurrentTimeMS >= e.state.DurationMS {
		e.state.CurrentTimeMS = e.state.DurationMS
		e.state.Progress = 1
		e.state.Playing = false
		e.state.Paused = false
		if e.hooks.OnComplete != nil {
			e.hooks.OnComplete()
		}
		return
	}

	raw := e.state.CurrentTimeMS / e.state.DurationMS
	e.state.Progress = raw
	e.checkWaypointWait(raw, nowMS)
}

// checkWaypointWait finds the nearest just-reached pause anchor that has
// not been waited at yet, within the tolerance band, and starts the wait.
// Every reached anchor is consumed, not only the one waited at: when one
// fast tick straddles two anchors, waiting at the earlier one afterwards
// would pin the head backward.
func (e *Engine) checkWaypointWait(rawProgress, nowMS float64) {
	best := -1
	bestAnchor := 0.0
	for _, mp := range e.majors {
		idx := mp.WaypointIndex
		if e.visited[idx] {
			continue
		}
		if idx < 0 || idx >= len(e.waypoints) {
			continue
		}
		w := e.waypoints[idx]
		if !w.Major || w.Pause != route.PauseTimed || w.PauseMS <= 0 {
			continue
		}
		// Reached when rawProgress is at or past the anchor, allowing the
		// tolerance band so a fast frame cannot step over it.
		if rawProgress >= mp.Progress-waitTolerance {
			e.visited[idx] = true
			if best == -1 || mp.Progress > bestAnchor {
				best = idx
				bestAnchor = mp.Progress
			}
		}
	}
	if best == -1 {
		return
	}
	w := e.waypoints[best]
	e.state.StartWaypointWait(best, bestAnchor, nowMS, w.PauseMS)
	if e.hooks.OnWaypointWaitStart != nil {
		e.hooks.OnWaypointWaitStart(best, w.PauseMS)
	}
}

// Destroy stops playback and clears every registered callback so nothing
// fires into a torn-down host. Safe to call more than once.
func (e *Engine) Destroy() {
	e.state.Stop()
	e.hooks = Hooks{}
	e.destroyed = true
}
