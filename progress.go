package main

import "sync"

// ComputeProgress maps the timeline container's geometry onto [0,1].
//
// containerTop is the container's top edge relative to the viewport top
// (negative once the container has scrolled upward past it). A container
// shorter than the viewport has no scrollable range and reports 1 as soon as
// its top reaches the viewport top.
func ComputeProgress(containerTop, containerScrollHeight, viewportHeight float64) float64 {
	scrollTop := -finiteOr(containerTop, 0)
	scrollableHeight := finiteOr(containerScrollHeight, 0) - finiteOr(viewportHeight, 0)

	switch {
	case scrollTop < 0:
		return 0
	case scrollableHeight <= 0:
		return 1
	case scrollTop > scrollableHeight:
		return 1
	}
	return scrollTop / scrollableHeight
}

// Geometry is what the host page reports on every scroll or resize.
type Geometry struct {
	ContainerTop          float64 `json:"containerTop"`
	ContainerScrollHeight float64 `json:"containerScrollHeight"`
	ViewportHeight        float64 `json:"viewportHeight"`
	ViewportWidth         float64 `json:"viewportWidth,omitempty"`
	CanvasHeight          float64 `json:"canvasHeight,omitempty"` // Set when the host sizes the canvas from the viewport
}

// Progress applies ComputeProgress to the geometry.
func (g Geometry) Progress() float64 {
	return ComputeProgress(g.ContainerTop, g.ContainerScrollHeight, g.ViewportHeight)
}

// ProgressListener is notified synchronously after every recompute.
type ProgressListener func(progress float64, g Geometry)

// ScrollTracker recomputes progress on every scroll or resize event and
// notifies its listeners before returning. It keeps nothing but the last
// progress value; every event is recomputed from scratch.
//
// Events from different goroutines are dispatched one at a time, so the last
// value listeners saw is always the value Progress reports. A listener must
// not send events to its own tracker.
type ScrollTracker struct {
	dispatch  sync.Mutex // Held across recompute and notify
	mu        sync.Mutex
	progress  float64
	geometry  Geometry
	nextID    int
	listeners map[int]ProgressListener
}

// NewScrollTracker returns a tracker with no listeners and progress 0.
func NewScrollTracker() *ScrollTracker {
	return &ScrollTracker{listeners: make(map[int]ProgressListener)}
}

// Subscribe registers fn and returns the func that removes it. Calling the
// returned func more than once is harmless.
func (t *ScrollTracker) Subscribe(fn ProgressListener) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// Scroll handles a scroll event.
func (t *ScrollTracker) Scroll(g Geometry) float64 {
	return t.update(g)
}

// Resize handles a resize event. Container and viewport heights both change
// on resize, so listeners repaint without waiting for the next scroll.
func (t *ScrollTracker) Resize(g Geometry) float64 {
	return t.update(g)
}

// Progress returns the most recently computed progress.
func (t *ScrollTracker) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Geometry returns the geometry of the most recent event.
func (t *ScrollTracker) Geometry() Geometry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.geometry
}

// Listeners reports how many listeners are registered.
func (t *ScrollTracker) Listeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

func (t *ScrollTracker) update(g Geometry) float64 {
	t.dispatch.Lock()
	defer t.dispatch.Unlock()

	progress := g.Progress()
	t.mu.Lock()
	t.progress = progress
	t.geometry = g
	listeners := make([]ProgressListener, 0, len(t.listeners))
	for id := 0; id < t.nextID; id++ {
		if fn, ok := t.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	t.mu.Unlock()

	// Listeners run outside mu so they may unsubscribe themselves.
	for _, fn := range listeners {
		fn(progress, g)
	}
	return progress
}

// Replay calls fn with the current state, in order with any concurrent events.
func (t *ScrollTracker) Replay(fn ProgressListener) {
	t.dispatch.Lock()
	defer t.dispatch.Unlock()
	fn(t.Progress(), t.Geometry())
}
