package overlay

import (
	"fmt"

	"gridplot/internal/affine"
)

// Group is an ordered list of children drawn back to front.
type Group struct {
	nodeBase
	children []Node
}

func NewGroup(children ...Node) *Group {
	g := &Group{}
	for _, c := range children {
		attach(g, c)
		g.children = append(g.children, c)
	}
	return g
}

func (g *Group) Len() int { return len(g.children) }

// Children returns a copy of the child list.
func (g *Group) Children() []Node { return append([]Node(nil), g.children...) }

// IndexOf returns the position of n, or -1.
func (g *Group) IndexOf(n Node) int {
	for i, c := range g.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Add appends nodes on top of the existing children.
func (g *Group) Add(nodes ...Node) {
	for _, n := range nodes {
		attach(g, n)
		g.children = append(g.children, n)
	}
	g.NotifyReRender()
}

// Insert places n at index i.
func (g *Group) Insert(i int, n Node) {
	attach(g, n)
	g.children = append(g.children, nil)
	copy(g.children[i+1:], g.children[i:])
	g.children[i] = n
	g.NotifyReRender()
}

// Remove detaches n and reports whether it was a child.
func (g *Group) Remove(n Node) bool {
	i := g.IndexOf(n)
	if i < 0 {
		return false
	}
	g.RemoveAt(i)
	return true
}

// RemoveAt detaches and returns the child at i.
func (g *Group) RemoveAt(i int) Node {
	n := g.children[i]
	g.children = append(g.children[:i], g.children[i+1:]...)
	detach(n)
	g.NotifyReRender()
	return n
}

// Move relocates the child at from to index to, keeping its identity.
func (g *Group) Move(from, to int) {
	if from == to {
		return
	}
	n := g.children[from]
	g.children = append(g.children[:from], g.children[from+1:]...)
	g.children = append(g.children, nil)
	copy(g.children[to+1:], g.children[to:])
	g.children[to] = n
	g.NotifyReRender()
}

// Clear detaches every child.
func (g *Group) Clear() {
	if len(g.children) == 0 {
		return
	}
	for _, c := range g.children {
		detach(c)
	}
	g.children = nil
	g.NotifyReRender()
}

func (g *Group) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := g.effective(parent)
	if !ok {
		return
	}
	renderChildren(rc, g.style, t, func(yield func(Node)) {
		for _, c := range g.children {
			yield(c)
		}
	})
}

// Content shows a single child derived from its value: a Node value is used
// directly, anything else is resolved through the templates.
type Content struct {
	nodeBase
	templates Templates
	cell      *Cell
}

func NewContent(rules ...Rule) *Content {
	return &Content{templates: rules}
}

// Value returns the current value, or nil.
func (c *Content) Value() any {
	if c.cell == nil {
		return nil
	}
	return c.cell.Context.Value
}

// Child returns the node currently shown, or nil.
func (c *Content) Child() Node {
	if c.cell == nil {
		return nil
	}
	return c.cell.Node
}

// SetValue changes the value. When the new value is handled by the same rule
// that built the current child and the rule can update, the child is kept.
func (c *Content) SetValue(v any) {
	if c.cell != nil && !c.cell.direct && c.cell.Node != nil && v != nil {
		if _, isNode := v.(Node); !isNode {
			if i := c.templates.Match(v); i == c.cell.rule && c.templates[i].Update != nil {
				c.cell.refresh(c.templates, v)
				c.cell.Node.NotifyReRender()
				return
			}
		}
	}
	c.rebind(v)
}

// SetTemplates replaces the rules and rebuilds the child.
func (c *Content) SetTemplates(rules ...Rule) {
	c.templates = rules
	c.rebind(c.Value())
}

func (c *Content) rebind(v any) {
	if c.cell != nil && c.cell.Node != nil {
		detach(c.cell.Node)
	}
	cell, err := newCell(c.templates, v, nil, true)
	if err != nil {
		c.logger().Warn("content has no visual", "type", fmt.Sprintf("%T", v), "err", err)
	}
	if cell.Node != nil {
		attach(c, cell.Node)
	}
	c.cell = cell
	c.NotifyReRender()
}

func (c *Content) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := c.effective(parent)
	if !ok || c.cell == nil || c.cell.Node == nil {
		return
	}
	renderChildren(rc, c.style, t, func(yield func(Node)) { yield(c.cell.Node) })
}
