package overlay

import (
	"fmt"

	"gridplot/internal/affine"
	"gridplot/internal/collection"
)

// MapBound keeps one child per entry of a keyed source. Adds and removes
// touch only the affected cell; a replaced value is written into the existing
// cell's context and its node is kept.
type MapBound[K comparable] struct {
	nodeBase
	templates Templates
	parentCtx *BoundContext

	src         collection.Observable[K]
	unsubscribe func()

	cells map[K]*Cell
	order []K
}

func NewMapBound[K comparable](rules ...Rule) *MapBound[K] {
	return &MapBound[K]{templates: rules, cells: make(map[K]*Cell)}
}

// SetParentContext sets the context new cells point back to.
func (b *MapBound[K]) SetParentContext(ctx *BoundContext) { b.parentCtx = ctx }

// SetSource binds src, dropping every cell built for the previous source.
func (b *MapBound[K]) SetSource(src collection.Observable[K]) {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.src = src
	if src != nil {
		b.unsubscribe = src.Subscribe(b.Apply)
	}
	b.rebuild()
}

// Close stops following the source.
func (b *MapBound[K]) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// SetTemplates replaces the rules. Every cell is rebuilt because matches may
// change for any entry.
func (b *MapBound[K]) SetTemplates(rules ...Rule) {
	b.templates = rules
	b.rebuild()
}

// Apply folds a source event into the cells.
func (b *MapBound[K]) Apply(e collection.Event[K]) {
	switch e.Kind {
	case collection.Add:
		b.Add(e.Key, e.New)
	case collection.Remove:
		b.Remove(e.Key)
	case collection.Replace:
		b.Replace(e.Key, e.New)
	case collection.Move:
		// keyed entries have no order to follow
	case collection.Reset:
		b.rebuild()
	}
}

// Add creates the cell for k. An existing key is treated as a replace.
func (b *MapBound[K]) Add(k K, v any) {
	if _, ok := b.cells[k]; ok {
		b.Replace(k, v)
		return
	}
	b.cells[k] = b.bind(k, v)
	b.order = append(b.order, k)
	b.NotifyReRender()
}

func (b *MapBound[K]) bind(k K, v any) *Cell {
	cell, err := newCell(b.templates, v, b.parentCtx, false)
	if err != nil {
		b.logger().Warn("bound entry has no visual", "key", k, "type", fmt.Sprintf("%T", v), "err", err)
	}
	if cell.Node != nil {
		attach(b, cell.Node)
	}
	return cell
}

// Remove drops the cell for k and detaches its node.
func (b *MapBound[K]) Remove(k K) {
	cell, ok := b.cells[k]
	if !ok {
		return
	}
	delete(b.cells, k)
	for i, key := range b.order {
		if key == k {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if cell.Node == nil {
		return
	}
	if cell.Node.Parent() != Node(b) {
		b.logger().Error("remove", "key", k, "err", ErrStaleReference)
		return
	}
	detach(cell.Node)
	b.NotifyReRender()
}

// Replace stores v in the cell for k without rebuilding its node.
func (b *MapBound[K]) Replace(k K, v any) {
	cell, ok := b.cells[k]
	if !ok {
		b.Add(k, v)
		return
	}
	if cell.Node == nil {
		// nothing was built yet; the new value may have a template
		if err := cell.build(b.templates, v, false); err != nil {
			b.logger().Warn("bound entry has no visual", "key", k, "type", fmt.Sprintf("%T", v), "err", err)
		}
		if cell.Node != nil {
			attach(b, cell.Node)
		}
		b.NotifyReRender()
		return
	}
	cell.refresh(b.templates, v)
	cell.Node.NotifyReRender()
}

// Cell returns the cell for k.
func (b *MapBound[K]) Cell(k K) (*Cell, bool) {
	c, ok := b.cells[k]
	return c, ok
}

// Keys returns the bound keys in child order.
func (b *MapBound[K]) Keys() []K { return append([]K(nil), b.order...) }

func (b *MapBound[K]) Len() int { return len(b.order) }

// Children returns the built nodes in key order.
func (b *MapBound[K]) Children() []Node {
	var out []Node
	for _, k := range b.order {
		if n := b.cells[k].Node; n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (b *MapBound[K]) teardown() {
	for _, c := range b.cells {
		if c.Node != nil && c.Node.Parent() == Node(b) {
			detach(c.Node)
		}
	}
	b.cells = make(map[K]*Cell)
	b.order = nil
}

func (b *MapBound[K]) rebuild() {
	b.teardown()
	if b.src != nil {
		for _, k := range b.src.Keys() {
			v, _ := b.src.Lookup(k)
			b.cells[k] = b.bind(k, v)
			b.order = append(b.order, k)
		}
	}
	b.NotifyReRender()
}

func (b *MapBound[K]) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := b.effective(parent)
	if !ok {
		return
	}
	renderChildren(rc, b.style, t, func(yield func(Node)) {
		for _, k := range b.order {
			if n := b.cells[k].Node; n != nil {
				yield(n)
			}
		}
	})
}

// ListBound keeps one child per entry of an indexed source, in source order.
// Entries that are nodes themselves are shown as they are; everything else
// goes through the templates.
type ListBound struct {
	nodeBase
	templates Templates
	parentCtx *BoundContext

	src         collection.Observable[int]
	unsubscribe func()

	cells []*Cell
}

func NewListBound(rules ...Rule) *ListBound {
	return &ListBound{templates: rules}
}

// SetParentContext sets the context new cells point back to.
func (b *ListBound) SetParentContext(ctx *BoundContext) { b.parentCtx = ctx }

// SetSource binds src, dropping every cell built for the previous source.
func (b *ListBound) SetSource(src collection.Observable[int]) {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.src = src
	if src != nil {
		b.unsubscribe = src.Subscribe(b.Apply)
	}
	b.rebuild()
}

// Close stops following the source.
func (b *ListBound) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// SetTemplates replaces the rules and rebuilds every cell.
func (b *ListBound) SetTemplates(rules ...Rule) {
	b.templates = rules
	b.rebuild()
}

// Apply folds a source event into the cells.
func (b *ListBound) Apply(e collection.Event[int]) {
	switch e.Kind {
	case collection.Add:
		b.Insert(e.Key, e.New)
	case collection.Remove:
		b.RemoveAt(e.Key)
	case collection.Replace:
		b.Replace(e.Key, e.New)
	case collection.Move:
		b.Move(e.Key, e.To)
	case collection.Reset:
		b.rebuild()
	}
}

func (b *ListBound) Len() int { return len(b.cells) }

// Cell returns the cell at index i.
func (b *ListBound) Cell(i int) *Cell { return b.cells[i] }

// Children returns the built nodes in list order.
func (b *ListBound) Children() []Node {
	var out []Node
	for _, c := range b.cells {
		if c.Node != nil {
			out = append(out, c.Node)
		}
	}
	return out
}

func (b *ListBound) bind(v any) *Cell {
	cell, err := newCell(b.templates, v, b.parentCtx, true)
	if err != nil {
		b.logger().Warn("bound entry has no visual", "type", fmt.Sprintf("%T", v), "err", err)
	}
	if cell.Node != nil {
		attach(b, cell.Node)
	}
	return cell
}

// Insert creates a cell at index i.
func (b *ListBound) Insert(i int, v any) {
	cell := b.bind(v)
	b.cells = append(b.cells, nil)
	copy(b.cells[i+1:], b.cells[i:])
	b.cells[i] = cell
	b.NotifyReRender()
}

// RemoveAt drops the cell at index i.
func (b *ListBound) RemoveAt(i int) {
	cell := b.cells[i]
	b.cells = append(b.cells[:i], b.cells[i+1:]...)
	b.release(cell)
	b.NotifyReRender()
}

func (b *ListBound) release(c *Cell) {
	if c.Node == nil {
		return
	}
	if c.Node.Parent() != Node(b) {
		b.logger().Error("remove", "err", ErrStaleReference)
		return
	}
	detach(c.Node)
}

// Replace updates the value at index i. Template-built nodes are kept; node
// entries are swapped because the entry itself is the visual.
func (b *ListBound) Replace(i int, v any) {
	cell := b.cells[i]
	_, isNode := v.(Node)
	if cell.direct || isNode {
		b.release(cell)
		b.cells[i] = b.bind(v)
		b.NotifyReRender()
		return
	}
	if cell.Node == nil {
		if err := cell.build(b.templates, v, true); err != nil {
			b.logger().Warn("bound entry has no visual", "type", fmt.Sprintf("%T", v), "err", err)
		}
		if cell.Node != nil {
			attach(b, cell.Node)
		}
		b.NotifyReRender()
		return
	}
	cell.refresh(b.templates, v)
	cell.Node.NotifyReRender()
}

// Move relocates the cell at from to index to, keeping its node.
func (b *ListBound) Move(from, to int) {
	if from == to {
		return
	}
	cell := b.cells[from]
	b.cells = append(b.cells[:from], b.cells[from+1:]...)
	b.cells = append(b.cells, nil)
	copy(b.cells[to+1:], b.cells[to:])
	b.cells[to] = cell
	b.NotifyReRender()
}

func (b *ListBound) rebuild() {
	for _, c := range b.cells {
		if c.Node != nil && c.Node.Parent() == Node(b) {
			detach(c.Node)
		}
	}
	b.cells = nil
	if b.src != nil {
		for _, i := range b.src.Keys() {
			v, _ := b.src.Lookup(i)
			b.cells = append(b.cells, b.bind(v))
		}
	}
	b.NotifyReRender()
}

func (b *ListBound) Render(rc *RenderContext, parent affine.Affine2D) {
	t, ok := b.effective(parent)
	if !ok {
		return
	}
	renderChildren(rc, b.style, t, func(yield func(Node)) {
		for _, c := range b.cells {
			if c.Node != nil {
				yield(c.Node)
			}
		}
	})
}
