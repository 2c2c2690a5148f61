// Package viewmap converts between normalized content coordinates and
// viewport pixels under a fit or fill policy.
package viewmap

import "math"

// Mode selects how content is placed in the viewport. Fit letterboxes
// (whole content visible, possible borders); Fill crops (content covers the
// viewport, possible clipped edges).
type Mode string

const (
	Fit  Mode = "fit"
	Fill Mode = "fill"
)

// Mapper holds two independent dimension pairs and the affine coefficients
// derived from them. Changing either pair regenerates the coefficients;
// stale coefficients are never interpolated.
type Mapper struct {
	mode Mode

	viewW, viewH       float64
	contentW, contentH float64

	scale      float64
	offX, offY float64
	identity   bool
}

// New returns a mapper with both dimension pairs unset. Conversions before
// both SetViewport and SetContent behave as identity at scale zero, so
// callers are expected to size the mapper first.
func New(mode Mode) *Mapper {
	m := &Mapper{mode: mode}
	m.recompute()
	return m
}

func (m *Mapper) SetMode(mode Mode) {
	m.mode = mode
	m.recompute()
}

func (m *Mapper) SetViewport(w, h float64) {
	m.viewW, m.viewH = w, h
	m.recompute()
}

func (m *Mapper) SetContent(w, h float64) {
	m.contentW, m.contentH = w, h
	m.recompute()
}

func (m *Mapper) recompute() {
	// Exactly matching dimensions take the identity-scale path. This is a
	// behavioral requirement, not just a fast path: at degenerate aspect
	// ratios the general math accumulates rounding the identity path avoids.
	if m.viewW == m.contentW && m.viewH == m.contentH && m.viewW > 0 && m.viewH > 0 {
		m.identity = true
		m.scale = 1
		m.offX, m.offY = 0, 0
		return
	}
	m.identity = false
	if m.contentW <= 0 || m.contentH <= 0 || m.viewW <= 0 || m.viewH <= 0 {
		m.scale = 0
		m.offX, m.offY = 0, 0
		return
	}
	sx := m.viewW / m.contentW
	sy := m.viewH / m.contentH
	if m.mode == Fill {
		m.scale = math.Max(sx, sy)
	} else {
		m.scale = math.Min(sx, sy)
	}
	m.offX = (m.viewW - m.contentW*m.scale) / 2
	m.offY = (m.viewH - m.contentH*m.scale) / 2
}

// ToViewport maps normalized content coordinates (u, v in [0,1]) to
// viewport pixels.
func (m *Mapper) ToViewport(u, v float64) (float64, float64) {
	if m.identity {
		return u * m.contentW, v * m.contentH
	}
	return m.offX + u*m.contentW*m.scale, m.offY + v*m.contentH*m.scale
}

// ToContent maps viewport pixels to normalized content coordinates, clamped
// to [0,1]. Inside the content area it is the exact inverse of ToViewport;
// at the clamped boundary the round-trip collapses onto the edge.
func (m *Mapper) ToContent(x, y float64) (float64, float64) {
	if m.identity {
		return clamp01(x / m.contentW), clamp01(y / m.contentH)
	}
	if m.scale == 0 {
		return 0, 0
	}
	u := (x - m.offX) / (m.contentW * m.scale)
	v := (y - m.offY) / (m.contentH * m.scale)
	return clamp01(u), clamp01(v)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
