package playback

import (
	"fmt"
	"testing"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/route"
)

// fourWaypointRoute builds a 4-waypoint list whose index-2 waypoint pauses,
// with a synthetic path of known length so durations are exact.
func fourWaypointRoute(pauseMS float64) ([]route.Waypoint, []route.MajorPosition, route.Path) {
	wps := []route.Waypoint{
		{Pos: geom.Pt(0, 0), Major: true},
		{Pos: geom.Pt(100, 0)},
		{Pos: geom.Pt(200, 0), Major: true, Pause: route.PauseTimed, PauseMS: pauseMS},
		{Pos: geom.Pt(300, 0), Major: true},
	}
	majors := route.MajorPositions(wps)
	return wps, majors, route.Path{Length: 1000}
}

func TestDriveToCompletionFiresOneComplete(t *testing.T) {
	completes := 0
	e := NewEngine(100, Hooks{
		OnComplete: func() { completes++ },
	})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	if e.Duration() != 10000 {
		t.Fatalf("duration=%v", e.Duration())
	}

	e.Play()
	now := 0.0
	for i := 0; i < 100; i++ {
		now += 100
		e.Tick(100, now)
	}
	if e.Progress() != 1 {
		t.Fatalf("progress=%v", e.Progress())
	}
	if !e.IsComplete() {
		t.Fatal("not complete")
	}
	if completes != 1 {
		t.Fatalf("complete fired %d times", completes)
	}

	// Extra ticks after completion must not re-fire.
	e.Tick(100, now+100)
	e.Tick(100, now+200)
	if completes != 1 {
		t.Fatalf("complete re-fired: %d", completes)
	}
}

func TestWaypointWaitFreezesEffectiveProgress(t *testing.T) {
	var log []string
	e := NewEngine(100, Hooks{
		OnWaypointWaitStart: func(index int, durationMS float64) {
			log = append(log, fmt.Sprintf("start:%d:%.0f", index, durationMS))
		},
		OnWaypointWaitEnd: func(index int) {
			log = append(log, fmt.Sprintf("end:%d", index))
		},
		OnComplete: func() { log = append(log, "complete") },
	})
	wps, majors, path := fourWaypointRoute(1500)
	e.LoadRoute(path, majors, wps)
	e.Play()

	anchor := 2.0 / 3.0
	var waitStart float64
	now := 0.0
	dt := 10.0
	for now < 15000 && !e.IsComplete() {
		now += dt
		e.Tick(dt, now)

		if e.IsWaiting() {
			if waitStart == 0 {
				waitStart = now
			}
			if got := e.EffectiveProgress(); got != anchor {
				t.Fatalf("t=%v effective=%v want %v", now, got, anchor)
			}
		}
	}

	if waitStart == 0 {
		t.Fatal("wait never started")
	}
	want := []string{"start:2:1500", "end:2", "complete"}
	if len(log) != len(want) {
		t.Fatalf("event log: %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("event log: %v", log)
		}
	}
}

func TestWaitLastsFullDuration(t *testing.T) {
	var startedAt, endedAt float64
	e := NewEngine(100, Hooks{
		OnWaypointWaitEnd: func(int) {},
	})
	wps, majors, path := fourWaypointRoute(1500)
	e.LoadRoute(path, majors, wps)
	e.Play()

	now := 0.0
	dt := 10.0
	for now < 15000 && !e.IsComplete() {
		now += dt
		wasWaiting := e.IsWaiting()
		e.Tick(dt, now)
		if !wasWaiting && e.IsWaiting() {
			startedAt = now
		}
		if wasWaiting && !e.IsWaiting() {
			endedAt = now
		}
	}
	if startedAt == 0 || endedAt == 0 {
		t.Fatalf("wait window not observed: start=%v end=%v", startedAt, endedAt)
	}
	held := endedAt - startedAt
	// Simulated clock steps by 10ms, so the wait holds for 1500ms within
	// one tick of tolerance.
	if held < 1500 || held > 1500+2*dt {
		t.Fatalf("wait held %vms, want ~1500ms", held)
	}
}

func TestSetSpeedRoundsAndPreservesProgress(t *testing.T) {
	var speeds []float64
	e := NewEngine(100, Hooks{
		OnSpeedChange: func(v float64) { speeds = append(speeds, v) },
	})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)

	e.SetSpeed(123) // rounds to 125
	if e.Speed() != 125 {
		t.Fatalf("speed=%v", e.Speed())
	}
	if e.Duration() != 8000 {
		t.Fatalf("duration=%v", e.Duration())
	}

	e.Seek(0.5)
	e.SetSpeed(200)
	if e.Duration() != 5000 {
		t.Fatalf("duration=%v", e.Duration())
	}
	if e.Progress() != 0.5 {
		t.Fatalf("progress jumped on speed change: %v", e.Progress())
	}
	if e.Time() != 2500 {
		t.Fatalf("time not recomputed: %v", e.Time())
	}
	if len(speeds) != 2 || speeds[0] != 125 || speeds[1] != 200 {
		t.Fatalf("speed events: %v", speeds)
	}
}

func TestSetDurationOverridesSpeedDerivedValue(t *testing.T) {
	e := NewEngine(100, Hooks{})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	e.SetDuration(4000)
	if e.Duration() != 4000 {
		t.Fatalf("duration=%v", e.Duration())
	}

	e.Play()
	now := 0.0
	for i := 0; i < 40; i++ {
		now += 100
		e.Tick(100, now)
	}
	if !e.IsComplete() {
		t.Fatalf("progress=%v", e.Progress())
	}
}

func TestZeroDurationIsInert(t *testing.T) {
	completes := 0
	e := NewEngine(100, Hooks{OnComplete: func() { completes++ }})
	e.LoadRoute(route.Path{}, nil, nil)
	if e.Duration() != 0 {
		t.Fatalf("duration=%v", e.Duration())
	}

	e.Play()
	e.Tick(100, 100)
	e.Seek(0.5)
	if e.Progress() != 0 {
		t.Fatalf("progress=%v", e.Progress())
	}
	if completes != 0 {
		t.Fatalf("complete fired on empty route")
	}
}

func TestDeltaClamp(t *testing.T) {
	e := NewEngine(100, Hooks{})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	e.Play()

	// A huge frame gap (tab backgrounded) advances at most MaxDeltaMS.
	e.Tick(5000, 5000)
	if e.Time() != MaxDeltaMS {
		t.Fatalf("time=%v want %v", e.Time(), float64(MaxDeltaMS))
	}
}

func TestRateScalesElapsedTime(t *testing.T) {
	e := NewEngine(100, Hooks{})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	e.SetRate(2)
	e.Play()

	e.Tick(50, 50)
	if e.Time() != 100 {
		t.Fatalf("time=%v", e.Time())
	}
}

func TestPauseBlocksAdvance(t *testing.T) {
	e := NewEngine(100, Hooks{})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	e.Play()
	e.Tick(100, 100)
	at := e.Time()

	e.Pause()
	e.Tick(100, 200)
	if e.Time() != at {
		t.Fatalf("advanced while paused: %v", e.Time())
	}

	e.TogglePlayPause()
	e.Tick(100, 300)
	if e.Time() == at {
		t.Fatal("did not resume")
	}
}

func TestResetRearmsWaits(t *testing.T) {
	starts := 0
	e := NewEngine(100, Hooks{
		OnWaypointWaitStart: func(int, float64) { starts++ },
	})
	wps, majors, path := fourWaypointRoute(100)
	e.LoadRoute(path, majors, wps)

	run := func() {
		e.Play()
		now := 0.0
		for now < 12000 && !e.IsComplete() {
			now += 10
			e.Tick(10, now)
		}
	}
	run()
	if starts != 1 {
		t.Fatalf("starts=%d", starts)
	}

	e.Reset()
	run()
	if starts != 2 {
		t.Fatalf("wait not re-armed after reset: starts=%d", starts)
	}
}

func TestSeekBackwardRearmsAnchor(t *testing.T) {
	starts := 0
	e := NewEngine(100, Hooks{
		OnWaypointWaitStart: func(int, float64) { starts++ },
	})
	wps, majors, path := fourWaypointRoute(100)
	e.LoadRoute(path, majors, wps)
	e.Play()

	now := 0.0
	for now < 12000 && !e.IsComplete() {
		now += 10
		e.Tick(10, now)
	}
	if starts != 1 {
		t.Fatalf("starts=%d", starts)
	}

	// Rewinding before the anchor replays its wait.
	e.Seek(0.5)
	e.Play()
	for i := 0; i < 1200 && !e.IsComplete(); i++ {
		now += 10
		e.Tick(10, now)
	}
	if starts != 2 {
		t.Fatalf("starts=%d after rewind", starts)
	}
}

func TestSeekForwardConsumesSkippedAnchor(t *testing.T) {
	starts := 0
	e := NewEngine(100, Hooks{
		OnWaypointWaitStart: func(int, float64) { starts++ },
	})
	wps, majors, path := fourWaypointRoute(1500)
	e.LoadRoute(path, majors, wps)
	e.Play()

	// Jumping past the anchor at 2/3 must not fire its wait afterwards,
	// which would pin the head back to the anchor.
	e.Seek(0.9)
	now := 0.0
	prev := e.EffectiveProgress()
	for now < 3000 && !e.IsComplete() {
		now += 10
		e.Tick(10, now)
		got := e.EffectiveProgress()
		if got < prev {
			t.Fatalf("t=%v effective progress moved backward %v -> %v", now, prev, got)
		}
		prev = got
	}
	if starts != 0 {
		t.Fatalf("skipped anchor fired a wait: starts=%d", starts)
	}
	if !e.IsComplete() {
		t.Fatal("did not complete")
	}
}

func TestFastTickStraddlingTwoAnchorsWaitsAtLaterOnly(t *testing.T) {
	var log []string
	e := NewEngine(100, Hooks{
		OnWaypointWaitStart: func(index int, _ float64) {
			log = append(log, fmt.Sprintf("start:%d", index))
		},
	})
	wps := make([]route.Waypoint, 11)
	for i := range wps {
		wps[i] = route.Waypoint{Pos: geom.Pt(float64(i)*30, 0)}
	}
	for _, i := range []int{3, 4} {
		wps[i].Major = true
		wps[i].Pause = route.PauseTimed
		wps[i].PauseMS = 200
	}
	e.LoadRoute(route.Path{Length: 1000}, route.MajorPositions(wps), wps)
	// One clamped 100ms tick covers a quarter of the route, crossing the
	// anchors at 0.3 and 0.4 together.
	e.SetDuration(400)
	e.Play()

	now := 0.0
	prev := e.EffectiveProgress()
	for now < 5000 && !e.IsComplete() {
		now += 100
		e.Tick(100, now)
		got := e.EffectiveProgress()
		if got < prev {
			t.Fatalf("t=%v effective progress moved backward %v -> %v", now, prev, got)
		}
		prev = got
	}
	if len(log) != 1 || log[0] != "start:4" {
		t.Fatalf("wait starts %v, want a single wait at the later anchor", log)
	}
	if !e.IsComplete() {
		t.Fatal("did not complete")
	}
}

func TestSeekOnZeroDurationEmitsNoEvent(t *testing.T) {
	seeks := 0
	e := NewEngine(100, Hooks{OnSeek: func(float64) { seeks++ }})
	e.LoadRoute(route.Path{}, nil, nil)

	e.Seek(0.5)
	if seeks != 0 {
		t.Fatalf("seek event fired on inert state: %d", seeks)
	}
	if e.Progress() != 0 {
		t.Fatalf("progress=%v", e.Progress())
	}
}

func TestSkipToEnd(t *testing.T) {
	completes := 0
	e := NewEngine(100, Hooks{OnComplete: func() { completes++ }})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	e.Play()
	e.SkipToEnd()
	if !e.IsComplete() || e.Progress() != 1 {
		t.Fatalf("progress=%v complete=%v", e.Progress(), e.IsComplete())
	}
	if completes != 1 {
		t.Fatalf("completes=%d", completes)
	}
}

func TestDestroyClearsCallbacks(t *testing.T) {
	fired := false
	e := NewEngine(100, Hooks{OnComplete: func() { fired = true }})
	e.LoadRoute(route.Path{Length: 1000}, nil, nil)
	e.Play()
	e.Destroy()

	// Safe to call repeatedly; nothing may fire into the torn-down host.
	e.Destroy()
	e.Play()
	e.Tick(100, 100)
	e.SkipToEnd()
	if fired {
		t.Fatal("callback fired after destroy")
	}
	if e.IsPlaying() {
		t.Fatal("playing after destroy")
	}
}
