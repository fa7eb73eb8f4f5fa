// Package overlay is the retained scene graph drawn on top of the viewport.
//
// Nodes form a tree: every node has at most one parent and containers own
// their children. A node hidden with SetVisible(false) is skipped by the
// render pass together with its subtree, and change notifications raised
// below a hidden node never reach the Host.
package overlay

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"gridplot/internal/affine"
	"gridplot/internal/surface"
)

var (
	// ErrNoTemplate means no rule accepted a bound value; the entry stays
	// without a visual.
	ErrNoTemplate = errors.New("overlay: no template matches value")
	// ErrDegenerateGeometry marks an element that cannot be drawn, such as a
	// line with a zero direction vector. The element is skipped.
	ErrDegenerateGeometry = errors.New("overlay: degenerate geometry")
	// ErrStaleReference means a cell's node is no longer a child of its binder.
	ErrStaleReference = errors.New("overlay: stale node reference")
)

var discard = log.New(io.Discard)

// Node is one element of the overlay tree.
type Node interface {
	Visible() bool
	SetVisible(v bool)
	Transform() affine.Affine2D
	SetTransform(t affine.Affine2D)
	Style() surface.Style
	SetStyle(s surface.Style)
	Parent() Node

	// NotifyReRender asks the Host for a repaint unless this node or one of
	// its ancestors is hidden.
	NotifyReRender()

	// Render draws the node with parent as the accumulated transform of its
	// ancestors.
	Render(rc *RenderContext, parent affine.Affine2D)

	base() *nodeBase
}

// nodeBase carries the attributes shared by every node. The zero value is a
// visible, unattached node with an identity transform.
type nodeBase struct {
	parent Node
	host   *Host

	hidden   bool
	local    affine.Affine2D
	hasLocal bool
	style    surface.Style
}

func (b *nodeBase) base() *nodeBase { return b }
func (b *nodeBase) Parent() Node    { return b.parent }
func (b *nodeBase) Visible() bool   { return !b.hidden }

// SetVisible shows or hides the subtree. The change is announced from the
// parent, because the node itself no longer passes the visibility gate once
// hidden.
func (b *nodeBase) SetVisible(v bool) {
	if b.hidden == !v {
		return
	}
	b.hidden = !v
	switch {
	case b.parent != nil:
		b.parent.NotifyReRender()
	case b.host != nil:
		b.host.requestRepaint()
	}
}

func (b *nodeBase) Transform() affine.Affine2D {
	if !b.hasLocal {
		return affine.Identity()
	}
	return b.local
}

func (b *nodeBase) SetTransform(t affine.Affine2D) {
	b.local = t
	b.hasLocal = true
	b.NotifyReRender()
}

func (b *nodeBase) Style() surface.Style { return b.style }

func (b *nodeBase) SetStyle(s surface.Style) {
	b.style = s
	b.NotifyReRender()
}

func (b *nodeBase) NotifyReRender() {
	if b.hidden {
		return
	}
	cur := b
	for cur.parent != nil {
		cur = cur.parent.base()
		if cur.hidden {
			return
		}
	}
	if cur.host != nil {
		cur.host.requestRepaint()
	}
}

// effective returns the node's transform composed with parent, or false when
// the node is hidden.
func (b *nodeBase) effective(parent affine.Affine2D) (affine.Affine2D, bool) {
	if b.hidden {
		return affine.Affine2D{}, false
	}
	return b.Transform().Then(parent), true
}

func (b *nodeBase) logger() *log.Logger {
	cur := b
	for cur.parent != nil {
		cur = cur.parent.base()
	}
	if cur.host != nil {
		return cur.host.logger
	}
	return discard
}

func attach(parent, child Node) {
	cb := child.base()
	if cb.parent != nil || cb.host != nil {
		panic(fmt.Sprintf("overlay: %T already has a parent", child))
	}
	cb.parent = parent
}

func detach(child Node) { child.base().parent = nil }

// RenderContext is threaded through one render pass.
type RenderContext struct {
	Surface surface.Surface
	Bounds  affine.Rect
	Logger  *log.Logger

	// Style is inherited from the enclosing containers.
	Style surface.Style
	// Errors counts the elements skipped during this pass.
	Errors int
}

// NewRenderContext prepares a pass over s.
func NewRenderContext(s surface.Surface, logger *log.Logger) *RenderContext {
	if logger == nil {
		logger = discard
	}
	return &RenderContext{Surface: s, Bounds: s.Bounds(), Logger: logger}
}

// Report records a failed element; rendering carries on with its siblings.
func (rc *RenderContext) Report(n Node, err error) {
	rc.Errors++
	rc.Logger.Warn("render", "node", fmt.Sprintf("%T", n), "err", err)
}

func (rc *RenderContext) resolve(own surface.Style) surface.Style {
	return mergeStyle(rc.Style, own)
}

func mergeStyle(base, over surface.Style) surface.Style {
	if over.Stroke != "" {
		base.Stroke = over.Stroke
	}
	if over.Fill != "" {
		base.Fill = over.Fill
	}
	if over.LineWidth > 0 {
		base.LineWidth = over.LineWidth
	}
	if over.FontSize > 0 {
		base.FontSize = over.FontSize
	}
	return base
}

// renderChild isolates a child so that a panicking node only loses itself.
func renderChild(rc *RenderContext, n Node, t affine.Affine2D) {
	defer func() {
		if r := recover(); r != nil {
			rc.Report(n, fmt.Errorf("panic: %v", r))
		}
	}()
	n.Render(rc, t)
}

// renderChildren draws children under the container's style.
func renderChildren(rc *RenderContext, own surface.Style, t affine.Affine2D, children func(yield func(Node))) {
	saved := rc.Style
	rc.Style = rc.resolve(own)
	children(func(n Node) { renderChild(rc, n, t) })
	rc.Style = saved
}
