package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/config"
	diag "github.com/djDAOjones/router-plotter-02-sub000/internal/diagnostics"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/geom"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/playback"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/project"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/route"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/viewmap"
)

// State owns the live route and its playback engine and fans frames out to
// websocket clients. All mutation funnels through applyControl under the
// mutex; the engine itself is single-owner per its contract.
type State struct {
	mu  sync.RWMutex
	FPS int

	mapper *viewmap.Mapper
	engine *playback.Engine

	// normalized waypoints are the source of truth; the viewport-space
	// list and path are rebuilt whenever the mapper or the list changes.
	normalized []route.Waypoint
	resolved   []route.Waypoint
	path       route.Path
	majors     []route.MajorPosition
	pathOpts   route.Options

	frameID   uint64
	startTime time.Time

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
}

func NewState(cfg *config.Config) *State {
	mode := viewmap.Fit
	if cfg.Mode == string(viewmap.Fill) {
		mode = viewmap.Fill
	}
	m := viewmap.New(mode)
	m.SetViewport(cfg.Viewport.W, cfg.Viewport.H)
	m.SetContent(cfg.Content.W, cfg.Content.H)

	opts := route.DefaultOptions()
	if cfg.Path.PointsPerSegment > 0 {
		opts.PointsPerSegment = cfg.Path.PointsPerSegment
	}
	if cfg.Path.Tension > 0 {
		opts.Tension = cfg.Path.Tension
	}
	if cfg.Path.TargetSpacing > 0 {
		opts.TargetSpacing = cfg.Path.TargetSpacing
	}
	if cfg.Path.MinCornerSpeed > 0 {
		opts.MinCornerSpeed = cfg.Path.MinCornerSpeed
	}
	if cfg.Path.MaxCurvature > 0 {
		opts.MaxCurvature = cfg.Path.MaxCurvature
	}
	if cfg.Path.Curvature != "" {
		opts.Curvature = route.StrategyByName(cfg.Path.Curvature)
	}

	speed := cfg.SpeedPxPerSec
	if speed <= 0 {
		speed = 100
	}

	s := &State{
		FPS:         cfg.FPS,
		mapper:      m,
		pathOpts:    opts,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
	s.engine = playback.NewEngine(speed, playback.Hooks{
		OnComplete: func() {
			s.pushDiag(diag.Diagnostic{Severity: diag.Info, Code: "PLAYBACK.COMPLETE", Summary: "Playback complete"})
		},
		OnWaypointWaitStart: func(index int, durationMS float64) {
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Info, Code: "PLAYBACK.WAIT", Summary: "Waiting at waypoint",
				Evidence: map[string]any{"index": index, "duration_ms": durationMS},
			})
		},
	})
	if cfg.RateMultiplier > 0 {
		s.engine.SetRate(cfg.RateMultiplier)
	}
	return s
}

// LoadProject replaces the waypoint list from a persisted project.
func (s *State) LoadProject(p *project.Project) {
	s.SetWaypoints(p.ToWaypoints())
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Playback.SpeedPxPerSec > 0 {
		s.engine.SetSpeed(p.Playback.SpeedPxPerSec)
	}
	if p.Playback.RateMultiplier > 0 {
		s.engine.SetRate(p.Playback.RateMultiplier)
	}
	if p.Playback.Mode == "duration" && p.Playback.DurationMS > 0 {
		s.engine.SetDuration(p.Playback.DurationMS)
	}
}

// SetWaypoints installs a new normalized waypoint list, resolves it into
// viewport space through the mapper, and rebuilds the path.
func (s *State) SetWaypoints(wps []route.Waypoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.normalized = wps
	s.rebuildLocked()
}

func (s *State) rebuildLocked() {
	s.resolved = make([]route.Waypoint, len(s.normalized))
	for i, w := range s.normalized {
		x, y := s.mapper.ToViewport(w.Pos.X, w.Pos.Y)
		rw := w
		rw.Pos = geom.Pt(x, y)
		s.resolved[i] = rw
	}
	s.path = route.CalculatePath(s.resolved, s.pathOpts)
	s.majors = route.MajorPositions(s.resolved)
	s.engine.LoadRoute(s.path, s.majors, s.resolved)

	if s.path.Empty() {
		s.pushDiag(diag.Diagnostic{
			Severity: diag.Warn, Code: "ROUTE.EMPTY", Summary: "Route has nothing to animate",
			LikelyCauses: []string{"fewer than two waypoints", "non-finite coordinates"},
		})
		return
	}
	s.pushDiag(diag.Diagnostic{
		Severity: diag.Info, Code: "ROUTE.LOADED", Summary: "Route rebuilt",
		Evidence: map[string]any{
			"waypoints": len(s.resolved),
			"points":    len(s.path.Even),
			"length":    s.path.Length,
		},
	})
}

// RunLoop drives the engine at the configured FPS until ctx is done.
func (s *State) RunLoop(ctx context.Context) error {
	fps := s.FPS
	if fps < 1 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dtMS := float64(now.Sub(last).Microseconds()) / 1000.0
			last = now
			nowMS := float64(now.Sub(s.startTime).Microseconds()) / 1000.0

			s.mu.Lock()
			s.engine.Tick(dtMS, nowMS)
			head := route.PointAtProgress(s.path.Even, s.engine.EffectiveProgress())
			s.frameID++
			frame := headFrame{
				T:        now.UnixNano(),
				FrameID:  s.frameID,
				Progress: s.engine.EffectiveProgress(),
				X:        head.X,
				Y:        head.Y,
				Waiting:  s.engine.IsWaiting(),
				Complete: s.engine.IsComplete(),
			}
			s.mu.Unlock()

			s.broadcastFrame(frame)
		}
	}
}

type headFrame struct {
	T        int64   `json:"t"`
	FrameID  uint64  `json:"frame_id"`
	Progress float64 `json:"progress"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Waiting  bool    `json:"waiting"`
	Complete bool    `json:"complete"`
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.diagClients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.applyControl(msg)
		s.sendTopology(conn)
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frame_id":    s.frameID,
		"uptime_s":    time.Since(s.startTime).Seconds(),
		"fps":         s.FPS,
		"waypoints":   len(s.resolved),
		"path_length": s.path.Length,
		"duration_ms": s.engine.Duration(),
		"progress":    s.engine.EffectiveProgress(),
		"playing":     s.engine.IsPlaying(),
	}
	s.mu.RUnlock()

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		resp["cpu_pct"] = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		resp["mem_used_pct"] = vm.UsedPercent
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *State) applyControl(msg map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := msg["cmd"].(string); ok {
		switch v {
		case "play":
			s.engine.Play()
		case "pause":
			s.engine.Pause()
		case "toggle":
			s.engine.TogglePlayPause()
		case "stop":
			s.engine.Stop()
		case "reset":
			s.engine.Reset()
		case "skip":
			s.engine.SkipToEnd()
		default:
			s.pushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: "CONTROL.UNKNOWN", Summary: "Unknown command",
				Evidence: map[string]any{"cmd": v},
			})
		}
	}
	if v, ok := msg["seek"].(float64); ok {
		s.engine.Seek(v)
	}
	if v, ok := msg["speed"].(float64); ok {
		s.engine.SetSpeed(v)
	}
	if v, ok := msg["rate"].(float64); ok {
		s.engine.SetRate(v)
	}
	if v, ok := msg["duration_ms"].(float64); ok {
		s.engine.SetDuration(v)
	}

	dirty := false
	if v, ok := msg["mode"].(string); ok {
		s.mapper.SetMode(viewmap.Mode(v))
		dirty = true
	}
	if v, ok := msg["viewport"].(map[string]any); ok {
		w, _ := v["w"].(float64)
		h, _ := v["h"].(float64)
		s.mapper.SetViewport(w, h)
		dirty = true
	}
	if v, ok := msg["content"].(map[string]any); ok {
		w, _ := v["w"].(float64)
		h, _ := v["h"].(float64)
		s.mapper.SetContent(w, h)
		dirty = true
	}
	if v, ok := msg["waypoints"].([]any); ok {
		s.normalized = parseWaypoints(v)
		dirty = true
	}
	if dirty {
		s.rebuildLocked()
	}
}

// parseWaypoints decodes the control-message waypoint list. Only the known
// fields are read; anything else in the record is ignored.
func parseWaypoints(in []any) []route.Waypoint {
	out := make([]route.Waypoint, 0, len(in))
	var prev *route.Waypoint
	for _, e := range in {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		x, _ := m["x"].(float64)
		y, _ := m["y"].(float64)
		w := route.NewWaypointFrom(prev, geom.Pt(x, y))
		if major, ok := m["major"].(bool); ok {
			w.Major = major
		}
		if shape, ok := m["shape"].(string); ok {
			w.Shape = route.PathShape(shape)
		}
		if pause, ok := m["pause"].(string); ok {
			w.Pause = route.PauseMode(pause)
		}
		if ms, ok := m["pauseMs"].(float64); ok {
			w.PauseMS = ms
		}
		out = append(out, w)
		prev = &out[len(out)-1]
	}
	return out
}

func (s *State) sendTopology(conn *websocket.Conn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	top := map[string]any{
		"waypoints":   len(s.normalized),
		"path_points": len(s.path.Even),
		"length":      s.path.Length,
		"duration_ms": s.engine.Duration(),
		"speed":       s.engine.Speed(),
		"fps":         s.FPS,
	}
	b, _ := json.Marshal(top)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *State) broadcastFrame(f headFrame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, _ := json.Marshal(f)
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *State) pushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
