package mssqlspatial

import (
	"math"
	"strconv"
	"strings"
)

// formatCoord renders a coordinate with the fewest digits that parse
// back to the same float64. NaN renders as the NULL literal.
func formatCoord(f float64) string {
	if math.IsNaN(f) {
		return "NULL"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// wktWriter renders a model as WKT by walking the shape tree in table
// order. A single cursor over the segment table carves composite
// figures back into their components.
type wktWriter struct {
	g      *Geometry
	b      strings.Builder
	zm     bool
	segIdx int
}

// buildWKT renders the value as WKT. With includeZM false the Z and M
// values and the dimensionality suffix are omitted.
func buildWKT(g *Geometry, includeZM bool) string {
	if len(g.shapes) == 0 {
		return ""
	}
	w := &wktWriter{g: g, zm: includeZM}
	w.writeShape(0, true)
	return w.b.String()
}

func (w *wktWriter) writeShape(idx int, top bool) {
	g := w.g
	s := g.shapes[idx]
	w.b.WriteString(strings.ToUpper(s.typ.String()))
	if top && w.zm {
		switch {
		case g.hasZ && g.hasM:
			w.b.WriteString(" ZM")
		case g.hasZ:
			w.b.WriteString(" Z")
		case g.hasM:
			w.b.WriteString(" M")
		}
	}
	if s.typ == TypeFullGlobe {
		return
	}

	start, end, ok := g.figureRange(idx)
	switch s.typ {
	case TypePoint, TypeLineString, TypeCircularString:
		if !ok || start >= end {
			w.b.WriteString(" EMPTY")
			return
		}
		w.b.WriteByte(' ')
		w.writeFigureCoords(start)
	case TypePolygon:
		if !ok || start >= end {
			w.b.WriteString(" EMPTY")
			return
		}
		w.b.WriteString(" (")
		for f := start; f < end; f++ {
			if f > start {
				w.b.WriteString(", ")
			}
			w.writeFigureCoords(f)
		}
		w.b.WriteByte(')')
	case TypeMultiPoint, TypeMultiLineString, TypeMultiPolygon:
		kids := g.children(idx)
		if len(kids) == 0 {
			w.b.WriteString(" EMPTY")
			return
		}
		w.b.WriteString(" (")
		for i, kid := range kids {
			if i > 0 {
				w.b.WriteString(", ")
			}
			w.writeChildBody(kid)
		}
		w.b.WriteByte(')')
	case TypeGeometryCollection:
		kids := g.children(idx)
		if len(kids) == 0 {
			w.b.WriteString(" EMPTY")
			return
		}
		w.b.WriteString(" (")
		for i, kid := range kids {
			if i > 0 {
				w.b.WriteString(", ")
			}
			w.writeShape(kid, false)
		}
		w.b.WriteByte(')')
	case TypeCompoundCurve:
		if !ok || start >= end {
			w.b.WriteString(" EMPTY")
			return
		}
		w.b.WriteString(" (")
		w.writeCompound(start)
		w.b.WriteByte(')')
	case TypeCurvePolygon:
		if !ok || start >= end {
			w.b.WriteString(" EMPTY")
			return
		}
		w.b.WriteString(" (")
		for f := start; f < end; f++ {
			if f > start {
				w.b.WriteString(", ")
			}
			switch g.figures[f].attr {
			case figureArc:
				w.b.WriteString("CIRCULARSTRING ")
				w.writeFigureCoords(f)
			case figureCompositeCurve:
				w.b.WriteString("COMPOUNDCURVE (")
				w.writeCompound(f)
				w.b.WriteByte(')')
			default:
				w.writeFigureCoords(f)
			}
		}
		w.b.WriteByte(')')
	}
}

// writeChildBody renders a multi-geometry member without its keyword.
func (w *wktWriter) writeChildBody(idx int) {
	start, end, ok := w.g.figureRange(idx)
	if !ok || start >= end {
		w.b.WriteString("EMPTY")
		return
	}
	if w.g.shapes[idx].typ == TypePolygon {
		w.b.WriteByte('(')
		for f := start; f < end; f++ {
			if f > start {
				w.b.WriteString(", ")
			}
			w.writeFigureCoords(f)
		}
		w.b.WriteByte(')')
		return
	}
	w.writeFigureCoords(start)
}

// writeFigureCoords renders the parenthesized coordinate list of one
// figure.
func (w *wktWriter) writeFigureCoords(f int) {
	start, end := w.g.pointRange(f)
	w.b.WriteByte('(')
	for i := start; i < end; i++ {
		if i > start {
			w.b.WriteString(", ")
		}
		w.writeCoord(i)
	}
	w.b.WriteByte(')')
}

func (w *wktWriter) writeCoord(i int) {
	g := w.g
	w.b.WriteString(formatCoord(g.xValues[i]))
	w.b.WriteByte(' ')
	w.b.WriteString(formatCoord(g.yValues[i]))
	if w.zm && g.hasZ {
		w.b.WriteByte(' ')
		w.b.WriteString(formatCoord(g.zValues[i]))
	}
	if w.zm && g.hasM {
		w.b.WriteByte(' ')
		w.b.WriteString(formatCoord(g.mValues[i]))
	}
}

// writeCompound renders the components of one composite figure, driven
// by the segment table. Junction points between components are stored
// once but written into both.
func (w *wktWriter) writeCompound(f int) {
	g := w.g
	p, end := g.pointRange(f)
	open := false
	for p < end-1 && w.segIdx < len(g.segments) {
		seg := g.segments[w.segIdx]
		w.segIdx++
		if seg.starting() {
			if open {
				w.b.WriteString("), ")
			}
			if seg == segmentFirstArc {
				w.b.WriteString("CIRCULARSTRING (")
			} else {
				w.b.WriteByte('(')
			}
			open = true
			w.writeCoord(p)
		}
		for k := 0; k < seg.pointsConsumed() && p < end-1; k++ {
			p++
			w.b.WriteString(", ")
			w.writeCoord(p)
		}
	}
	if open {
		w.b.WriteByte(')')
	}
}
