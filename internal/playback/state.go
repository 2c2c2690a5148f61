package playback

// State is the pure playback data plus its transition methods. The Engine
// owns exactly one State; everything else reads snapshots.
//
// Progress lives on the waypoint-index axis in [0,1]. While waiting at a
// waypoint it is pinned to FrozenProgress; EffectiveProgress is the value
// renderers must consult.
type State struct {
	Progress      float64
	CurrentTimeMS float64
	DurationMS    float64

	SpeedPxPerSec  float64
	RateMultiplier float64

	Playing bool
	Paused  bool

	Waiting         bool
	WaitingWaypoint int
	WaitStartMS     float64
	WaitEndMS       float64
	FrozenProgress  float64
}

// NewState returns an idle state with the given speed and unit rate.
func NewState(speedPxPerSec float64) State {
	return State{
		SpeedPxPerSec:   speedPxPerSec,
		RateMultiplier:  1,
		WaitingWaypoint: -1,
	}
}

func (s *State) Play() {
	s.Playing = true
	s.Paused = false
}

// Pause suspends playback without clearing Playing, so TogglePlayPause is a
// single flag flip.
func (s *State) Pause() {
	s.Paused = true
}

// Stop halts playback and rewinds to the start. Speed and rate are user
// preferences and survive.
func (s *State) Stop() {
	s.Playing = false
	s.Paused = false
	s.Progress = 0
	s.CurrentTimeMS = 0
	s.EndWaypointWait()
}

// Reset is Stop with the preservation of SpeedPxPerSec and RateMultiplier
// made explicit: both carry across the call by design.
func (s *State) Reset() {
	s.Stop()
}

// SetProgress seeks to p on the progress axis, clamped to [0,1], keeping
// CurrentTimeMS consistent. With zero duration there is nothing to seek in;
// the call is a no-op that leaves progress at 0.
func (s *State) SetProgress(p float64) {
	if s.DurationMS <= 0 {
		return
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	s.Progress = p
	s.CurrentTimeMS = p * s.DurationMS
}

// SetTime seeks to t milliseconds, clamped to [0, DurationMS].
func (s *State) SetTime(t float64) {
	if s.DurationMS <= 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	if t > s.DurationMS {
		t = s.DurationMS
	}
	s.CurrentTimeMS = t
	s.Progress = t / s.DurationMS
}

// SetDuration installs a new duration while preserving current progress by
// recomputing CurrentTimeMS, so a mid-playback speed change does not jump
// the visual position.
func (s *State) SetDuration(d float64) {
	if d < 0 {
		d = 0
	}
	s.DurationMS = d
	s.CurrentTimeMS = s.Progress * d
}

// SetRate clamps the playback-rate multiplier into [0.1, 10].
func (s *State) SetRate(r float64) {
	if r < 0.1 {
		r = 0.1
	}
	if r > 10 {
		r = 10
	}
	s.RateMultiplier = r
}

// StartWaypointWait pins progress to the waypoint's exact index-progress
// anchor (not the raw spline progress) so the head renders on the waypoint,
// and records the wall-clock wait window.
func (s *State) StartWaypointWait(index int, anchor, nowMS, durationMS float64) {
	s.Waiting = true
	s.WaitingWaypoint = index
	s.FrozenProgress = anchor
	s.Progress = anchor
	s.CurrentTimeMS = anchor * s.DurationMS
	s.WaitStartMS = nowMS
	s.WaitEndMS = nowMS + durationMS
}

func (s *State) EndWaypointWait() {
	s.Waiting = false
	s.WaitingWaypoint = -1
	s.WaitStartMS = 0
	s.WaitEndMS = 0
}

// EffectiveProgress is the render-facing progress: frozen while waiting,
// raw otherwise.
func (s *State) EffectiveProgress() float64 {
	if s.Waiting {
		return s.FrozenProgress
	}
	return s.Progress
}

// IsComplete reports the terminal state.
func (s *State) IsComplete() bool {
	return s.Progress >= 1 && !s.Playing
}
