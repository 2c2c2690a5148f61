package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/playback"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/project"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/route"
)

// routesim drives a route under a simulated frame clock and prints every
// playback event. No sleeping: the same input always produces the same log.
func main() {
	var (
		routePath = flag.String("route", "", "path to a route project YAML")
		fps       = flag.Int("fps", 60, "simulated frames per second")
		speed     = flag.Float64("speed", 0, "override head speed (px/sec)")
		maxSecs   = flag.Float64("max-secs", 600, "safety cap on simulated time")
	)
	flag.Parse()

	if *routePath == "" {
		log.Fatal("Provide -route path to a project YAML")
	}

	p, err := project.Load(*routePath)
	if err != nil {
		log.Fatalf("load route: %v", err)
	}

	wps := p.ToWaypoints()
	path := route.CalculatePath(wps, route.DefaultOptions())
	if path.Empty() {
		fmt.Println("route has nothing to animate")
		os.Exit(0)
	}
	majors := route.MajorPositions(wps)

	eng := playback.NewEngine(100, playback.Hooks{
		OnComplete: func() { fmt.Println("[Complete]") },
		OnWaypointWaitStart: func(index int, durationMS float64) {
			fmt.Printf("[WaitStart] waypoint=%d duration=%.0fms\n", index, durationMS)
		},
		OnWaypointWaitEnd: func(index int) {
			fmt.Printf("[WaitEnd] waypoint=%d\n", index)
		},
		OnDurationChange: func(d float64) {
			fmt.Printf("[Duration] %.0fms\n", d)
		},
	})
	if p.Playback.SpeedPxPerSec > 0 {
		eng.SetSpeed(p.Playback.SpeedPxPerSec)
	}
	if *speed > 0 {
		eng.SetSpeed(*speed)
	}
	if p.Playback.RateMultiplier > 0 {
		eng.SetRate(p.Playback.RateMultiplier)
	}
	eng.LoadRoute(path, majors, wps)
	if p.Playback.Mode == "duration" && p.Playback.DurationMS > 0 {
		eng.SetDuration(p.Playback.DurationMS)
	}

	fmt.Printf("route: %d waypoints, %d points, length %.1fpx\n",
		len(wps), len(path.Even), path.Length)

	eng.Play()

	dtMS := 1000.0 / float64(*fps)
	nowMS := 0.0
	for !eng.IsComplete() && nowMS < *maxSecs*1000 {
		nowMS += dtMS
		eng.Tick(dtMS, nowMS)
	}

	head := route.PointAtProgress(path.Even, eng.EffectiveProgress())
	fmt.Printf("done at t=%.2fs progress=%.3f head=(%.1f, %.1f)\n",
		nowMS/1000, eng.EffectiveProgress(), head.X, head.Y)
}
