package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/djDAOjones/router-plotter-02-sub000/internal/config"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/project"
	"github.com/djDAOjones/router-plotter-02-sub000/internal/ws"
)

func main() {
	// ---- Flags (config.yaml can override most) ----
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		fps        = flag.Int("fps", 60, "playback ticks per second")
		mode       = flag.String("mode", "fit", "viewport mapping: fit | fill")
		viewW      = flag.Float64("view-w", 1280, "viewport width (px)")
		viewH      = flag.Float64("view-h", 720, "viewport height (px)")
		contentW   = flag.Float64("content-w", 1920, "content image width (px)")
		contentH   = flag.Float64("content-h", 1080, "content image height (px)")
		speed      = flag.Float64("speed", 100, "head speed (px/sec)")
		routePath  = flag.String("route", "", "route project YAML to load at start")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg := &config.Config{
		Addr:          *addr,
		FPS:           *fps,
		Mode:          *mode,
		Viewport:      config.Dims{W: *viewW, H: *viewH},
		Content:       config.Dims{W: *contentW, H: *contentH},
		SpeedPxPerSec: *speed,
		RouteFile:     *routePath,
	}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		mergeConfig(cfg, c)
	}

	state := ws.NewState(cfg)

	if cfg.RouteFile != "" {
		p, err := project.Load(cfg.RouteFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.RouteFile).Msg("route load failed; starting empty")
		} else {
			state.LoadProject(p)
			log.Info().Str("path", cfg.RouteFile).Int("waypoints", len(p.Waypoints)).Msg("route loaded")
		}
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", state.HandleFramesWS)
	mux.HandleFunc("/diag", state.HandleDiagWS)
	mux.HandleFunc("/control", state.HandleControlWS)
	mux.HandleFunc("/health", state.HandleHealth)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return state.RunLoop(ctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return srv.Close()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// mergeConfig overlays non-zero fields of c onto dst.
func mergeConfig(dst, c *config.Config) {
	if c.Addr != "" {
		dst.Addr = c.Addr
	}
	if c.FPS > 0 {
		dst.FPS = c.FPS
	}
	if c.Mode != "" {
		dst.Mode = c.Mode
	}
	if c.Viewport.W > 0 && c.Viewport.H > 0 {
		dst.Viewport = c.Viewport
	}
	if c.Content.W > 0 && c.Content.H > 0 {
		dst.Content = c.Content
	}
	if c.SpeedPxPerSec > 0 {
		dst.SpeedPxPerSec = c.SpeedPxPerSec
	}
	if c.RateMultiplier > 0 {
		dst.RateMultiplier = c.RateMultiplier
	}
	if c.RouteFile != "" {
		dst.RouteFile = c.RouteFile
	}
	dst.Path = c.Path
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
