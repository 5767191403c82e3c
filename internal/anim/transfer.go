// Package anim coordinates the fly-to-cart transfer animation: a single
// in-flight visual moving from a product row to the cart icon's last known
// position. At most one transfer is live; starting another replaces it.
package anim

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"

	"grocli/internal/logging"
)

// Rect is a screen rectangle in cell (or pixel) coordinates.
type Rect struct {
	X, Y, W, H float64
}

// offscreenTarget is the fallback destination used before the cart icon has
// ever reported its position. The transfer slides out of view instead of
// erroring.
var offscreenTarget = Rect{X: -4, Y: -4, W: 1, H: 1}

// Frame is one sampled animation state for the render loop.
type Frame struct {
	Rect     Rect
	ImageRef string
	Progress float64 // 0..1 over the fixed duration
	Opacity  float64 // fades toward zero as the transfer lands
}

const fps = 60

// transfer is the single in-flight animation slot.
type transfer struct {
	source     Rect
	imageRef   string
	onComplete func()
	startedAt  time.Time

	// spring state per animated component
	x, y, w, h     float64
	vx, vy, vw, vh float64
}

// Coordinator owns the transfer slot and the registered cart-icon target.
type Coordinator struct {
	mu        sync.Mutex
	duration  time.Duration
	threshold float64

	target    Rect
	hasTarget bool

	spring harmonica.Spring
	active *transfer

	now func() time.Time // injectable for tests
}

// NewCoordinator creates an idle coordinator. duration is the fixed transfer
// length (~800ms); threshold is the minimum target movement, in cells, worth
// re-registering.
func NewCoordinator(duration time.Duration, threshold float64) *Coordinator {
	if duration <= 0 {
		duration = 800 * time.Millisecond
	}
	return &Coordinator{
		duration:  duration,
		threshold: threshold,
		spring:    harmonica.NewSpring(harmonica.FPS(fps), 7.0, 0.9),
		now:       time.Now,
	}
}

// RegisterTargetRect records the cart icon's on-screen rectangle. Updates
// are accepted at any time, including while the sticky bar is hidden, so the
// first transfer always has a real destination. Movements below the
// threshold are coalesced away; layout measurement callbacks tend to report
// sub-cell jitter every frame.
func (c *Coordinator) RegisterTargetRect(rect Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasTarget && rectDelta(c.target, rect) < c.threshold {
		return
	}
	c.target = rect
	c.hasTarget = true
	logging.UIDebug("cart icon target now (%.0f,%.0f)", rect.X, rect.Y)
}

// TargetRect returns the registered destination and whether one exists.
func (c *Coordinator) TargetRect() (Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target, c.hasTarget
}

// Start launches a transfer from sourceRect. If one is already in flight it
// is cancelled and replaced: the previous onComplete is never invoked.
func (c *Coordinator) Start(sourceRect Rect, imageRef string, onComplete func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		logging.UIDebug("transfer replaced mid-flight")
	}
	c.active = &transfer{
		source:     sourceRect,
		imageRef:   imageRef,
		onComplete: onComplete,
		startedAt:  c.now(),
		x:          sourceRect.X,
		y:          sourceRect.Y,
		w:          sourceRect.W,
		h:          sourceRect.H,
	}
}

// InFlight reports whether a transfer is live.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Step advances the animation by one frame tick and returns the frame to
// draw. done is true exactly once, when the fixed duration has elapsed: the
// slot is cleared and the transfer's onComplete is invoked (outside the
// lock). ok is false when nothing is in flight.
func (c *Coordinator) Step() (frame Frame, done, ok bool) {
	c.mu.Lock()
	tr := c.active
	if tr == nil {
		c.mu.Unlock()
		return Frame{}, false, false
	}

	target := c.target
	if !c.hasTarget {
		target = offscreenTarget
	}

	tr.x, tr.vx = c.spring.Update(tr.x, tr.vx, target.X)
	tr.y, tr.vy = c.spring.Update(tr.y, tr.vy, target.Y)
	tr.w, tr.vw = c.spring.Update(tr.w, tr.vw, target.W)
	tr.h, tr.vh = c.spring.Update(tr.h, tr.vh, target.H)

	progress := float64(c.now().Sub(tr.startedAt)) / float64(c.duration)
	if progress > 1 {
		progress = 1
	}

	frame = Frame{
		Rect:     Rect{X: tr.x, Y: tr.y, W: tr.w, H: tr.h},
		ImageRef: tr.imageRef,
		Progress: progress,
		Opacity:  1 - progress*progress,
	}

	var onComplete func()
	if progress >= 1 {
		done = true
		onComplete = tr.onComplete
		c.active = nil
	}
	c.mu.Unlock()

	if onComplete != nil {
		onComplete()
	}
	return frame, done, true
}

// Cancel drops any in-flight transfer without invoking its onComplete.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = nil
}

// rectDelta is the largest per-component movement between two rectangles.
func rectDelta(a, b Rect) float64 {
	d := math.Abs(a.X - b.X)
	if v := math.Abs(a.Y - b.Y); v > d {
		d = v
	}
	if v := math.Abs(a.W - b.W); v > d {
		d = v
	}
	if v := math.Abs(a.H - b.H); v > d {
		d = v
	}
	return d
}
