package overlay

// BoundContext is the mutable slot a bound node reads its value from. The
// binder updates Value in place when the source entry is replaced, so the
// node built for it keeps its identity.
type BoundContext struct {
	Value  any
	Parent *BoundContext
}

// Rule turns values accepted by Match into nodes.
type Rule struct {
	// Match selects the values this rule handles; nil accepts everything.
	Match func(v any) bool
	// Build creates the node for a new entry. It may return nil.
	Build func(ctx *BoundContext) Node
	// Update refreshes a node built by this rule after ctx.Value changed.
	// Optional.
	Update func(ctx *BoundContext, n Node)
}

// WithUpdate returns a copy of r with Update set.
func (r Rule) WithUpdate(fn func(ctx *BoundContext, n Node)) Rule {
	r.Update = fn
	return r
}

func (r Rule) accepts(v any) bool { return r.Match == nil || r.Match(v) }

// For returns a rule matching values of dynamic type T.
func For[T any](build func(ctx *BoundContext, v T) Node) Rule {
	return Rule{
		Match: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		Build: func(ctx *BoundContext) Node { return build(ctx, ctx.Value.(T)) },
	}
}

// Templates is an ordered rule set; the first matching rule wins.
type Templates []Rule

// Match returns the index of the first rule accepting v, or -1.
func (ts Templates) Match(v any) int {
	for i, r := range ts {
		if r.accepts(v) {
			return i
		}
	}
	return -1
}

// Cell is a binder's record for one source entry. Node is nil when no rule
// matched or the value was nil.
type Cell struct {
	Context *BoundContext
	Node    Node

	rule   int
	direct bool
}

// Rule returns the index of the rule that built the node, or -1.
func (c *Cell) Rule() int { return c.rule }

// newCell resolves v through ts. Node values are used as they are.
func newCell(ts Templates, v any, parent *BoundContext, direct bool) (*Cell, error) {
	c := &Cell{Context: &BoundContext{Parent: parent}}
	return c, c.build(ts, v, direct)
}

// build stores v in the cell's context and builds a node for it, keeping
// the context itself.
func (c *Cell) build(ts Templates, v any, direct bool) error {
	c.Context.Value = v
	c.Node, c.rule, c.direct = nil, -1, false
	if v == nil {
		return nil
	}
	if n, ok := v.(Node); ok && direct {
		c.Node = n
		c.direct = true
		return nil
	}
	i := ts.Match(v)
	if i < 0 {
		return ErrNoTemplate
	}
	c.rule = i
	if ts[i].Build != nil {
		c.Node = ts[i].Build(c.Context)
	}
	return nil
}

// refresh applies a new value to an existing cell without rebuilding its node.
func (c *Cell) refresh(ts Templates, v any) {
	c.Context.Value = v
	if c.Node == nil || c.rule < 0 || c.rule >= len(ts) {
		return
	}
	if up := ts[c.rule].Update; up != nil {
		up(c.Context, c.Node)
	}
}
