package mssqlspatial

import (
	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

// Orb returns the XY projection of the value as an orb geometry. Z and
// M values are dropped; the curve types and FullGlobe return
// ErrUnsupportedType.
func (g *Geometry) Orb() (orb.Geometry, error) {
	if g.isNull {
		return nil, ErrNilGeometry
	}
	return g.shapeToOrb(0)
}

func (g *Geometry) shapeToOrb(idx int) (orb.Geometry, error) {
	typ := g.shapes[idx].typ
	start, end, ok := g.figureRange(idx)
	empty := !ok || start >= end

	switch typ {
	case TypePoint:
		if empty {
			return orb.Point{}, nil
		}
		return g.orbPoint(int(g.figures[start].pointOffset)), nil
	case TypeLineString:
		if empty {
			return orb.LineString{}, nil
		}
		return orb.LineString(g.orbFigure(start)), nil
	case TypePolygon:
		poly := orb.Polygon{}
		for f := start; f < end; f++ {
			poly = append(poly, orb.Ring(g.orbFigure(f)))
		}
		return poly, nil
	case TypeMultiPoint:
		mp := orb.MultiPoint{}
		for _, kid := range g.children(idx) {
			if fs, fe, ok := g.figureRange(kid); ok && fs < fe {
				mp = append(mp, g.orbPoint(int(g.figures[fs].pointOffset)))
			}
		}
		return mp, nil
	case TypeMultiLineString:
		mls := orb.MultiLineString{}
		for _, kid := range g.children(idx) {
			if fs, fe, ok := g.figureRange(kid); ok && fs < fe {
				mls = append(mls, orb.LineString(g.orbFigure(fs)))
			}
		}
		return mls, nil
	case TypeMultiPolygon:
		mp := orb.MultiPolygon{}
		for _, kid := range g.children(idx) {
			fs, fe, ok := g.figureRange(kid)
			if !ok {
				continue
			}
			poly := orb.Polygon{}
			for f := fs; f < fe; f++ {
				poly = append(poly, orb.Ring(g.orbFigure(f)))
			}
			mp = append(mp, poly)
		}
		return mp, nil
	case TypeGeometryCollection:
		c := orb.Collection{}
		for _, kid := range g.children(idx) {
			sub, err := g.shapeToOrb(kid)
			if err != nil {
				return nil, err
			}
			c = append(c, sub)
		}
		return c, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%s has no orb equivalent", typ)
	}
}

func (g *Geometry) orbPoint(i int) orb.Point {
	return orb.Point{g.xValues[i], g.yValues[i]}
}

func (g *Geometry) orbFigure(figIdx int) []orb.Point {
	start, end := g.pointRange(figIdx)
	pts := make([]orb.Point, 0, end-start)
	for i := start; i < end; i++ {
		pts = append(pts, g.orbPoint(i))
	}
	return pts
}

// FromOrb builds a Geometry from an orb geometry and an SRID. Orb
// geometries are two-dimensional, so the result never carries Z or M.
func FromOrb(geometry orb.Geometry, srid int32) (*Geometry, error) {
	if geometry == nil {
		return nil, ErrNilGeometry
	}
	b := newModelBuilder(srid, false, false)
	if err := b.addOrb(geometry, -1); err != nil {
		return nil, err
	}
	return b.finish()
}

func (b *modelBuilder) addOrb(geometry orb.Geometry, parent int32) error {
	switch t := geometry.(type) {
	case orb.Point:
		b.addShape(parent, TypePoint)
		b.addFigure(figureStroke)
		b.addPoint(t[0], t[1], 0, 0)
	case orb.LineString:
		if len(t) == 0 {
			b.addEmptyShape(parent, TypeLineString)
			return nil
		}
		b.addShape(parent, TypeLineString)
		b.addFigure(figureStroke)
		for _, p := range t {
			b.addPoint(p[0], p[1], 0, 0)
		}
	case orb.Ring:
		return b.addOrb(orb.Polygon{t}, parent)
	case orb.Polygon:
		if len(t) == 0 {
			b.addEmptyShape(parent, TypePolygon)
			return nil
		}
		b.addShape(parent, TypePolygon)
		for i, ring := range t {
			attr := figureInteriorRing
			if i == 0 {
				attr = figureExteriorRing
			}
			b.addFigure(attr)
			for _, p := range ring {
				b.addPoint(p[0], p[1], 0, 0)
			}
		}
	case orb.MultiPoint:
		if len(t) == 0 {
			b.addEmptyShape(parent, TypeMultiPoint)
			return nil
		}
		idx := b.addShape(parent, TypeMultiPoint)
		for _, p := range t {
			b.addShape(idx, TypePoint)
			b.addFigure(figureStroke)
			b.addPoint(p[0], p[1], 0, 0)
		}
	case orb.MultiLineString:
		if len(t) == 0 {
			b.addEmptyShape(parent, TypeMultiLineString)
			return nil
		}
		idx := b.addShape(parent, TypeMultiLineString)
		for _, ls := range t {
			b.addShape(idx, TypeLineString)
			b.addFigure(figureStroke)
			for _, p := range ls {
				b.addPoint(p[0], p[1], 0, 0)
			}
		}
	case orb.MultiPolygon:
		if len(t) == 0 {
			b.addEmptyShape(parent, TypeMultiPolygon)
			return nil
		}
		idx := b.addShape(parent, TypeMultiPolygon)
		for _, poly := range t {
			b.addShape(idx, TypePolygon)
			for i, ring := range poly {
				attr := figureInteriorRing
				if i == 0 {
					attr = figureExteriorRing
				}
				b.addFigure(attr)
				for _, p := range ring {
					b.addPoint(p[0], p[1], 0, 0)
				}
			}
		}
	case orb.Collection:
		if len(t) == 0 {
			b.addEmptyShape(parent, TypeGeometryCollection)
			return nil
		}
		idx := b.addShape(parent, TypeGeometryCollection)
		for _, sub := range t {
			if err := b.addOrb(sub, idx); err != nil {
				return err
			}
		}
	case orb.Bound:
		return b.addOrb(t.ToPolygon(), parent)
	default:
		return errors.Wrapf(ErrUnsupportedType, "%T", geometry)
	}
	return nil
}
