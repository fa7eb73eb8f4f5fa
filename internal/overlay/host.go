package overlay

import (
	"github.com/charmbracelet/log"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

// Host is the root of an overlay tree and the end point of repaint requests.
// Requests coalesce: after the first one the host stays pending until the
// next Render, so any number of changes in between cost one invalidate.
type Host struct {
	root      *Group
	logger    *log.Logger
	pending   bool
	listeners []func()
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger used for render and binding diagnostics.
func WithLogger(l *log.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHost(opts ...HostOption) *Host {
	h := &Host{logger: discard}
	for _, opt := range opts {
		opt(h)
	}
	h.root = NewGroup()
	h.root.host = h
	return h
}

// Root returns the top-level group.
func (h *Host) Root() *Group { return h.root }

func (h *Host) Logger() *log.Logger { return h.logger }

// Pending reports whether a repaint has been requested since the last Render.
func (h *Host) Pending() bool { return h.pending }

// OnInvalidate registers fn to be called when a repaint becomes necessary.
func (h *Host) OnInvalidate(fn func()) { h.listeners = append(h.listeners, fn) }

func (h *Host) requestRepaint() {
	if h.pending {
		return
	}
	h.pending = true
	for _, fn := range h.listeners {
		fn()
	}
}

// Render draws the tree onto s with t as the world->pixel transform and
// returns the number of elements that were skipped.
func (h *Host) Render(s surface.Surface, t affine.Affine2D) int {
	h.pending = false
	rc := NewRenderContext(s, h.logger)
	renderChild(rc, h.root, t)
	if rc.Errors > 0 {
		h.logger.Debug("render pass finished with skipped elements", "count", rc.Errors)
	}
	return rc.Errors
}
