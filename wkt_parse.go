package mssqlspatial

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var keywordTypes = map[string]InternalType{
	"POINT":              TypePoint,
	"LINESTRING":         TypeLineString,
	"POLYGON":            TypePolygon,
	"MULTIPOINT":         TypeMultiPoint,
	"MULTILINESTRING":    TypeMultiLineString,
	"MULTIPOLYGON":       TypeMultiPolygon,
	"GEOMETRYCOLLECTION": TypeGeometryCollection,
	"CIRCULARSTRING":     TypeCircularString,
	"COMPOUNDCURVE":      TypeCompoundCurve,
	"CURVEPOLYGON":       TypeCurvePolygon,
	"FULLGLOBE":          TypeFullGlobe,
}

// wktParser is a single-pass recursive-descent parser over a WKT
// string. Lexing is a byte scanner with peek/consume primitives;
// positions are retained so failures point at the offending input.
type wktParser struct {
	src string
	pos int

	g *Geometry

	// dimsSet is latched by the first dimensionality suffix or the
	// first coordinate group; every later group must agree.
	dimsSet bool
}

// parseWKT parses a WKT string into a fully populated model. The text
// and binary caches of the returned value are not yet filled.
func parseWKT(src string, srid int32) (*Geometry, error) {
	p := &wktParser{
		src: src,
		g:   &Geometry{srid: srid, version: serializationV1, isValid: true},
	}
	p.skipSpace()
	if p.eof() {
		return nil, errors.Wrap(ErrIllegalWKT, "empty input")
	}
	if err := p.parseGeometry(-1); err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("trailing input after geometry")
	}
	g := p.g
	for i := range g.shapes {
		if int(g.shapes[i].figureOffset) >= len(g.figures) {
			g.shapes[i].figureOffset = -1
		}
	}
	g.typ = g.shapes[0].typ
	g.deriveCompactFlags()
	return g, nil
}

func (p *wktParser) errorf(format string, args ...interface{}) error {
	err := errors.Newf(format, args...)
	return errors.Wrapf(ErrIllegalWKT, "position %d: %v", p.pos, err)
}

func (p *wktParser) eof() bool { return p.pos >= len(p.src) }

func (p *wktParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *wktParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			p.pos++
		default:
			return
		}
	}
}

func (p *wktParser) tryConsume(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *wktParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q", string(c))
	}
	p.pos++
	return nil
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// word consumes a run of letters and returns it upper-cased.
func (p *wktParser) word() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() && isWordByte(p.src[p.pos]) {
		p.pos++
	}
	return strings.ToUpper(p.src[start:p.pos])
}

func isNumByte(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}

// coordValue reads one numeric literal. In the Z and M positions the
// literal NULL is accepted and stored as NaN.
func (p *wktParser) coordValue(allowNull bool) (float64, error) {
	p.skipSpace()
	if isWordByte(p.peek()) {
		start := p.pos
		if w := p.word(); allowNull && w == "NULL" {
			return math.NaN(), nil
		}
		p.pos = start
		return 0, p.errorf("expected number")
	}
	start := p.pos
	for !p.eof() && isNumByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected number")
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("malformed numeric literal %q", p.src[start:p.pos])
	}
	return f, nil
}

// applyDims latches or validates the instance-level dimensionality.
func (p *wktParser) applyDims(z, m bool) error {
	if p.dimsSet {
		if p.g.hasZ != z || p.g.hasM != m {
			return p.errorf("dimensionality does not match earlier coordinates")
		}
		return nil
	}
	p.dimsSet = true
	p.g.hasZ, p.g.hasM = z, m
	return nil
}

// parseCoordGroup parses one "x y [z] [m]" group and appends it to the
// coordinate arrays. The group's arity must agree with the instance
// dimensionality; the first group with no declared suffix fixes it.
func (p *wktParser) parseCoordGroup() error {
	x, err := p.coordValue(false)
	if err != nil {
		return err
	}
	y, err := p.coordValue(false)
	if err != nil {
		return err
	}
	var extra []float64
	for {
		p.skipSpace()
		if c := p.peek(); c == ',' || c == ')' || c == 0 {
			break
		}
		v, err := p.coordValue(true)
		if err != nil {
			return err
		}
		extra = append(extra, v)
		if len(extra) > 2 {
			return p.errorf("coordinate group has more than 4 values")
		}
	}
	if !p.dimsSet {
		if err := p.applyDims(len(extra) >= 1, len(extra) == 2); err != nil {
			return err
		}
	} else {
		expected := 0
		if p.g.hasZ {
			expected++
		}
		if p.g.hasM {
			expected++
		}
		if len(extra) != expected {
			return p.errorf("coordinate group has %d values, expected %d", 2+len(extra), 2+expected)
		}
	}
	g := p.g
	g.xValues = append(g.xValues, x)
	g.yValues = append(g.yValues, y)
	i := 0
	if g.hasZ {
		g.zValues = append(g.zValues, extra[i])
		i++
	}
	if g.hasM {
		g.mValues = append(g.mValues, extra[i])
	}
	return nil
}

// parseCoordList parses one or more comma-separated coordinate groups.
func (p *wktParser) parseCoordList() error {
	for {
		if err := p.parseCoordGroup(); err != nil {
			return err
		}
		if !p.tryConsume(',') {
			return nil
		}
	}
}

func (p *wktParser) addShape(parent, figureOffset int32, typ InternalType) int32 {
	p.g.shapes = append(p.g.shapes, shape{parentOffset: parent, figureOffset: figureOffset, typ: typ})
	return int32(len(p.g.shapes) - 1)
}

func (p *wktParser) addFigure(attr figureAttr) {
	p.g.figures = append(p.g.figures, figure{attr: attr, pointOffset: int32(len(p.g.xValues))})
}

// upgradeToV2 switches the instance to serialization version 2 and
// rewrites figure attributes already recorded with version 1 meanings
// to the version 2 Line attribute.
func (p *wktParser) upgradeToV2() {
	if p.g.version >= serializationV2 {
		return
	}
	p.g.version = serializationV2
	for i := range p.g.figures {
		p.g.figures[i].attr = figureLine
	}
}

// parseHeaderRest consumes the optional Z/M/ZM suffix and an optional
// EMPTY literal following a type keyword.
func (p *wktParser) parseHeaderRest() (empty bool, err error) {
	p.skipSpace()
	if !isWordByte(p.peek()) {
		return false, nil
	}
	switch w := p.word(); w {
	case "EMPTY":
		return true, nil
	case "Z":
		err = p.applyDims(true, false)
	case "M":
		err = p.applyDims(false, true)
	case "ZM":
		err = p.applyDims(true, true)
	default:
		return false, p.errorf("unexpected token %q", w)
	}
	if err != nil {
		return false, err
	}
	p.skipSpace()
	if isWordByte(p.peek()) {
		if w := p.word(); w == "EMPTY" {
			return true, nil
		}
		return false, p.errorf("expected EMPTY or coordinate list")
	}
	return false, nil
}

// parseGeometry parses one geometry, registering its shape under the
// given parent shape index (-1 for the top level).
func (p *wktParser) parseGeometry(parent int32) error {
	kw := p.word()
	if kw == "" {
		return p.errorf("expected geometry type keyword")
	}
	typ, ok := keywordTypes[kw]
	if !ok {
		return p.errorf("unknown type keyword %q", kw)
	}
	if typ.requiresV2() {
		p.upgradeToV2()
	}

	// FULLGLOBE has neither a body nor a dimensionality suffix, and is
	// not allowed inside a collection.
	if typ == TypeFullGlobe {
		if parent != -1 {
			return p.errorf("FULLGLOBE cannot be nested")
		}
		p.g.largerThanHemisphere = true
		p.addShape(parent, -1, typ)
		return nil
	}

	empty, err := p.parseHeaderRest()
	if err != nil {
		return err
	}
	if empty {
		p.addShape(parent, -1, typ)
		return nil
	}

	shapeIdx := p.addShape(parent, int32(len(p.g.figures)), typ)
	if err := p.expect('('); err != nil {
		return err
	}

	switch typ {
	case TypePoint:
		p.addFigure(figureStroke)
		if err := p.parseCoordGroup(); err != nil {
			return err
		}
	case TypeLineString:
		p.addFigure(figureStroke)
		if err := p.parseCoordList(); err != nil {
			return err
		}
	case TypeCircularString:
		p.addFigure(figureArc)
		if err := p.parseCoordList(); err != nil {
			return err
		}
	case TypePolygon:
		if err := p.parseRings(); err != nil {
			return err
		}
	case TypeMultiPoint:
		for {
			p.addShape(shapeIdx, int32(len(p.g.figures)), TypePoint)
			p.addFigure(figureStroke)
			if p.tryConsume('(') {
				if err := p.parseCoordGroup(); err != nil {
					return err
				}
				if err := p.expect(')'); err != nil {
					return err
				}
			} else if err := p.parseCoordGroup(); err != nil {
				return err
			}
			if !p.tryConsume(',') {
				break
			}
		}
	case TypeMultiLineString:
		for {
			p.addShape(shapeIdx, int32(len(p.g.figures)), TypeLineString)
			p.addFigure(figureStroke)
			if err := p.expect('('); err != nil {
				return err
			}
			if err := p.parseCoordList(); err != nil {
				return err
			}
			if err := p.expect(')'); err != nil {
				return err
			}
			if !p.tryConsume(',') {
				break
			}
		}
	case TypeMultiPolygon:
		for {
			p.addShape(shapeIdx, int32(len(p.g.figures)), TypePolygon)
			if err := p.expect('('); err != nil {
				return err
			}
			if err := p.parseRings(); err != nil {
				return err
			}
			if err := p.expect(')'); err != nil {
				return err
			}
			if !p.tryConsume(',') {
				break
			}
		}
	case TypeGeometryCollection:
		for {
			if err := p.parseGeometry(shapeIdx); err != nil {
				return err
			}
			if !p.tryConsume(',') {
				break
			}
		}
	case TypeCompoundCurve:
		if err := p.parseCompoundBody(); err != nil {
			return err
		}
	case TypeCurvePolygon:
		if err := p.parseCurveRings(); err != nil {
			return err
		}
	}
	return p.expect(')')
}

// parseRings parses the comma-separated parenthesized rings of a
// polygon body. Ring attributes depend on the serialization version in
// effect when the ring is recorded.
func (p *wktParser) parseRings() error {
	first := true
	for {
		attr := figureInteriorRing
		if p.g.version >= serializationV2 {
			attr = figureLine
		} else if first {
			attr = figureExteriorRing
		}
		p.addFigure(attr)
		if err := p.expect('('); err != nil {
			return err
		}
		if err := p.parseCoordList(); err != nil {
			return err
		}
		if err := p.expect(')'); err != nil {
			return err
		}
		first = false
		if !p.tryConsume(',') {
			return nil
		}
	}
}

// parseCompoundBody parses the component list of a COMPOUNDCURVE. The
// whole compound is one composite figure; each component contributes
// segment markers. Components after the first must start on the
// previous component's endpoint, which is stored only once.
func (p *wktParser) parseCompoundBody() error {
	p.addFigure(figureCompositeCurve)
	first := true
	for {
		p.skipSpace()
		isArc := false
		if p.peek() != '(' {
			if kw := p.word(); kw != "CIRCULARSTRING" {
				return p.errorf("expected CIRCULARSTRING or linestring component")
			}
			isArc = true
		}
		if err := p.expect('('); err != nil {
			return err
		}
		n, err := p.parseComponentCoords(first)
		if err != nil {
			return err
		}
		if err := p.expect(')'); err != nil {
			return err
		}
		if isArc {
			if n < 3 || (n-1)%2 != 0 {
				return p.errorf("circular component needs an odd number of points, at least 3")
			}
			p.g.segments = append(p.g.segments, segmentFirstArc)
			for i := (n - 1) / 2; i > 1; i-- {
				p.g.segments = append(p.g.segments, segmentArc)
			}
		} else {
			if n < 2 {
				return p.errorf("line component needs at least 2 points")
			}
			p.g.segments = append(p.g.segments, segmentFirstLine)
			for i := n - 1; i > 1; i-- {
				p.g.segments = append(p.g.segments, segmentLine)
			}
		}
		first = false
		if !p.tryConsume(',') {
			return nil
		}
	}
}

// parseComponentCoords parses the coordinate list of one compound-curve
// component and returns its logical point count, including a junction
// point shared with the previous component.
func (p *wktParser) parseComponentCoords(first bool) (int, error) {
	n := 0
	for {
		if err := p.parseCoordGroup(); err != nil {
			return 0, err
		}
		n++
		if !first && n == 1 {
			last := len(p.g.xValues) - 1
			if !p.samePoint(last-1, last) {
				return 0, p.errorf("compound curve components must be contiguous")
			}
			p.dropLastPoint()
		}
		if !p.tryConsume(',') {
			return n, nil
		}
	}
}

func (p *wktParser) samePoint(i, j int) bool {
	g := p.g
	if g.xValues[i] != g.xValues[j] || g.yValues[i] != g.yValues[j] {
		return false
	}
	if g.hasZ && g.zValues[i] != g.zValues[j] && !(math.IsNaN(g.zValues[i]) && math.IsNaN(g.zValues[j])) {
		return false
	}
	if g.hasM && g.mValues[i] != g.mValues[j] && !(math.IsNaN(g.mValues[i]) && math.IsNaN(g.mValues[j])) {
		return false
	}
	return true
}

func (p *wktParser) dropLastPoint() {
	g := p.g
	g.xValues = g.xValues[:len(g.xValues)-1]
	g.yValues = g.yValues[:len(g.yValues)-1]
	if g.hasZ {
		g.zValues = g.zValues[:len(g.zValues)-1]
	}
	if g.hasM {
		g.mValues = g.mValues[:len(g.mValues)-1]
	}
}

// parseCurveRings parses the ring list of a CURVEPOLYGON: plain rings,
// CIRCULARSTRING rings, or COMPOUNDCURVE rings.
func (p *wktParser) parseCurveRings() error {
	for {
		p.skipSpace()
		if p.peek() == '(' {
			p.addFigure(figureLine)
			p.pos++
			if err := p.parseCoordList(); err != nil {
				return err
			}
			if err := p.expect(')'); err != nil {
				return err
			}
		} else {
			switch kw := p.word(); kw {
			case "CIRCULARSTRING":
				p.addFigure(figureArc)
				if err := p.expect('('); err != nil {
					return err
				}
				if err := p.parseCoordList(); err != nil {
					return err
				}
				if err := p.expect(')'); err != nil {
					return err
				}
			case "COMPOUNDCURVE":
				if err := p.expect('('); err != nil {
					return err
				}
				if err := p.parseCompoundBody(); err != nil {
					return err
				}
				if err := p.expect(')'); err != nil {
					return err
				}
			default:
				return p.errorf("expected ring, CIRCULARSTRING or COMPOUNDCURVE")
			}
		}
		if !p.tryConsume(',') {
			return nil
		}
	}
}
