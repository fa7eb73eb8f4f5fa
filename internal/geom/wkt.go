package geom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gridplot/internal/affine"
)

var ErrWKT = errors.New("geom: invalid wkt")

// wktNode is either a coordinate tuple or a parenthesised list.
type wktNode struct {
	coords []float64
	kids   []*wktNode
}

type wktParser struct {
	s   string
	pos int
}

func (p *wktParser) skip() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n' || p.s[p.pos] == '\r') {
		p.pos++
	}
}

func (p *wktParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", ErrWKT, p.pos, fmt.Sprintf(format, args...))
}

func (p *wktParser) word() string {
	p.skip()
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			break
		}
		p.pos++
	}
	return strings.ToUpper(p.s[start:p.pos])
}

func (p *wktParser) list() (*wktNode, error) {
	p.skip()
	if p.pos >= len(p.s) || p.s[p.pos] != '(' {
		return nil, p.errorf("expected '('")
	}
	p.pos++
	n := &wktNode{}
	for {
		p.skip()
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated list")
		}
		var kid *wktNode
		if p.s[p.pos] == '(' {
			var err error
			if kid, err = p.list(); err != nil {
				return nil, err
			}
		} else {
			end := strings.IndexAny(p.s[p.pos:], ",)")
			if end < 0 {
				return nil, p.errorf("unterminated tuple")
			}
			tuple := p.s[p.pos : p.pos+end]
			kid = &wktNode{}
			for _, f := range strings.Fields(tuple) {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, p.errorf("bad number %q", f)
				}
				kid.coords = append(kid.coords, v)
			}
			if len(kid.coords) < 2 {
				return nil, p.errorf("tuple %q needs two coordinates", strings.TrimSpace(tuple))
			}
			p.pos += end
		}
		n.kids = append(n.kids, kid)

		p.skip()
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated list")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return n, nil
		default:
			return nil, p.errorf("unexpected %q", p.s[p.pos])
		}
	}
}

func (n *wktNode) point() (affine.Point, bool) {
	if n.coords != nil {
		return affine.Pt(n.coords[0], n.coords[1]), true
	}
	if len(n.kids) == 1 && n.kids[0].coords != nil {
		return n.kids[0].point()
	}
	return affine.Point{}, false
}

func (n *wktNode) path() ([]affine.Point, error) {
	pts := make([]affine.Point, 0, len(n.kids))
	for _, k := range n.kids {
		p, ok := k.point()
		if !ok {
			return nil, fmt.Errorf("%w: expected coordinates", ErrWKT)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func (n *wktNode) rings() ([][]affine.Point, error) {
	rings := make([][]affine.Point, 0, len(n.kids))
	for _, k := range n.kids {
		r, err := k.path()
		if err != nil {
			return nil, err
		}
		rings = append(rings, r)
	}
	return rings, nil
}

// ParseWKT parses one geometry: POINT, MULTIPOINT, LINESTRING,
// MULTILINESTRING, POLYGON or MULTIPOLYGON. Z and M ordinates are dropped.
func ParseWKT(s string) (Geometry, error) {
	p := &wktParser{s: strings.TrimSpace(s)}
	if p.s == "" {
		return Geometry{}, fmt.Errorf("%w: empty input", ErrWKT)
	}
	kind := p.word()
	mark := p.pos
	switch p.word() {
	case "Z", "M", "ZM":
	case "EMPTY":
		return Geometry{}, ErrEmpty
	default:
		p.pos = mark
	}
	root, err := p.list()
	if err != nil {
		return Geometry{}, err
	}
	if p.skip(); p.pos != len(p.s) {
		return Geometry{}, p.errorf("trailing input")
	}

	var g Geometry
	switch kind {
	case "POINT":
		pt, ok := root.point()
		if !ok {
			return Geometry{}, fmt.Errorf("%w: point needs one tuple", ErrWKT)
		}
		g.Points = []affine.Point{pt}
	case "MULTIPOINT":
		g.Points, err = root.path()
	case "LINESTRING":
		var l []affine.Point
		if l, err = root.path(); err == nil {
			g.Lines = [][]affine.Point{l}
		}
	case "MULTILINESTRING":
		g.Lines, err = root.rings()
	case "POLYGON":
		var rings [][]affine.Point
		if rings, err = root.rings(); err == nil {
			g.Polygons = [][][]affine.Point{rings}
		}
	case "MULTIPOLYGON":
		for _, k := range root.kids {
			var rings [][]affine.Point
			if rings, err = k.rings(); err != nil {
				break
			}
			g.Polygons = append(g.Polygons, rings)
		}
	default:
		return Geometry{}, fmt.Errorf("%w: wkt type %q", ErrUnsupported, kind)
	}
	if err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// DecodeWKT reads one geometry per line. Blank lines and lines starting with
// '#' are skipped.
func DecodeWKT(r io.Reader, name string) (*Dataset, error) {
	d := NewDataset(name)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		g, err := ParseWKT(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		d.Add(NewFeature("", g))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return finish(d)
}
