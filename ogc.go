package mssqlspatial

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkbcommon"
)

// layout maps the instance dimensionality onto a go-geom layout.
func (g *Geometry) layout() geom.Layout {
	switch {
	case g.hasZ && g.hasM:
		return geom.XYZM
	case g.hasZ:
		return geom.XYZ
	case g.hasM:
		return geom.XYM
	default:
		return geom.XY
	}
}

// GeomT converts the value to a go-geom geometry. The curve types and
// FullGlobe have no OGC simple-features equivalent and return
// ErrUnsupportedType.
func (g *Geometry) GeomT() (geom.T, error) {
	if g.isNull {
		return nil, ErrNilGeometry
	}
	return g.shapeToGeomT(0, g.layout())
}

func (g *Geometry) shapeToGeomT(idx int, layout geom.Layout) (geom.T, error) {
	srid := int(g.srid)
	typ := g.shapes[idx].typ
	start, end, ok := g.figureRange(idx)
	empty := !ok || start >= end

	switch typ {
	case TypePoint:
		if empty {
			return geom.NewPointEmpty(layout).SetSRID(srid), nil
		}
		return geom.NewPointFlat(layout, g.flatCoords(start)).SetSRID(srid), nil
	case TypeLineString:
		if empty {
			return geom.NewLineString(layout).SetSRID(srid), nil
		}
		return geom.NewLineStringFlat(layout, g.flatCoords(start)).SetSRID(srid), nil
	case TypePolygon:
		if empty {
			return geom.NewPolygon(layout).SetSRID(srid), nil
		}
		flat, ends := g.flatRings(start, end)
		return geom.NewPolygonFlat(layout, flat, ends).SetSRID(srid), nil
	case TypeMultiPoint:
		var flat []float64
		for _, kid := range g.children(idx) {
			if fs, fe, ok := g.figureRange(kid); ok && fs < fe {
				flat = append(flat, g.flatCoords(fs)...)
			}
		}
		return geom.NewMultiPointFlat(layout, flat).SetSRID(srid), nil
	case TypeMultiLineString:
		var flat []float64
		var ends []int
		for _, kid := range g.children(idx) {
			if fs, fe, ok := g.figureRange(kid); ok && fs < fe {
				flat = append(flat, g.flatCoords(fs)...)
				ends = append(ends, len(flat))
			}
		}
		return geom.NewMultiLineStringFlat(layout, flat, ends).SetSRID(srid), nil
	case TypeMultiPolygon:
		var flat []float64
		var endss [][]int
		for _, kid := range g.children(idx) {
			fs, fe, ok := g.figureRange(kid)
			if !ok || fs >= fe {
				continue
			}
			var ends []int
			for f := fs; f < fe; f++ {
				flat = append(flat, g.flatCoords(f)...)
				ends = append(ends, len(flat))
			}
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(layout, flat, endss).SetSRID(srid), nil
	case TypeGeometryCollection:
		gc := geom.NewGeometryCollection().SetSRID(srid)
		for _, kid := range g.children(idx) {
			sub, err := g.shapeToGeomT(kid, layout)
			if err != nil {
				return nil, err
			}
			if err := gc.Push(sub); err != nil {
				return nil, errors.Wrapf(ErrUnsupportedType, "assembling collection: %v", err)
			}
		}
		return gc, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%s has no OGC equivalent", typ)
	}
}

// flatCoords returns one figure's coordinates interleaved in layout
// order.
func (g *Geometry) flatCoords(figIdx int) []float64 {
	start, end := g.pointRange(figIdx)
	stride := 2
	if g.hasZ {
		stride++
	}
	if g.hasM {
		stride++
	}
	flat := make([]float64, 0, (end-start)*stride)
	for i := start; i < end; i++ {
		flat = append(flat, g.xValues[i], g.yValues[i])
		if g.hasZ {
			flat = append(flat, g.zValues[i])
		}
		if g.hasM {
			flat = append(flat, g.mValues[i])
		}
	}
	return flat
}

func (g *Geometry) flatRings(start, end int) (flat []float64, ends []int) {
	for f := start; f < end; f++ {
		flat = append(flat, g.flatCoords(f)...)
		ends = append(ends, len(flat))
	}
	return flat, ends
}

// FromGeomT builds a Geometry from a go-geom geometry, carrying over
// its SRID and layout.
func FromGeomT(t geom.T) (*Geometry, error) {
	if t == nil {
		return nil, ErrNilGeometry
	}
	var hasZ, hasM bool
	switch t.Layout() {
	case geom.XY:
	case geom.XYZ:
		hasZ = true
	case geom.XYM:
		hasM = true
	case geom.XYZM:
		hasZ, hasM = true, true
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "layout %v", t.Layout())
	}
	b := newModelBuilder(int32(t.SRID()), hasZ, hasM)
	if err := b.addGeomT(t, -1); err != nil {
		return nil, err
	}
	return b.finish()
}

func (b *modelBuilder) addGeomT(t geom.T, parent int32) error {
	switch t := t.(type) {
	case *geom.Point:
		fc := t.FlatCoords()
		if len(fc) == 0 {
			b.addEmptyShape(parent, TypePoint)
			return nil
		}
		b.addShape(parent, TypePoint)
		b.addFigure(figureStroke)
		b.addFlatCoord(fc, 0)
	case *geom.LineString:
		fc := t.FlatCoords()
		if len(fc) == 0 {
			b.addEmptyShape(parent, TypeLineString)
			return nil
		}
		b.addShape(parent, TypeLineString)
		b.addFigure(figureStroke)
		b.addFlatCoords(fc, 0, len(fc), t.Stride())
	case *geom.Polygon:
		ends := t.Ends()
		if len(ends) == 0 {
			b.addEmptyShape(parent, TypePolygon)
			return nil
		}
		b.addShape(parent, TypePolygon)
		b.addRings(t.FlatCoords(), ends, t.Stride())
	case *geom.MultiPoint:
		fc := t.FlatCoords()
		if len(fc) == 0 {
			b.addEmptyShape(parent, TypeMultiPoint)
			return nil
		}
		idx := b.addShape(parent, TypeMultiPoint)
		for off := 0; off < len(fc); off += t.Stride() {
			b.addShape(idx, TypePoint)
			b.addFigure(figureStroke)
			b.addFlatCoord(fc, off)
		}
	case *geom.MultiLineString:
		ends := t.Ends()
		if len(ends) == 0 {
			b.addEmptyShape(parent, TypeMultiLineString)
			return nil
		}
		idx := b.addShape(parent, TypeMultiLineString)
		off := 0
		for _, end := range ends {
			b.addShape(idx, TypeLineString)
			b.addFigure(figureStroke)
			b.addFlatCoords(t.FlatCoords(), off, end, t.Stride())
			off = end
		}
	case *geom.MultiPolygon:
		endss := t.Endss()
		if len(endss) == 0 {
			b.addEmptyShape(parent, TypeMultiPolygon)
			return nil
		}
		idx := b.addShape(parent, TypeMultiPolygon)
		off := 0
		for _, ends := range endss {
			b.addShape(idx, TypePolygon)
			b.addRingsFrom(t.FlatCoords(), off, ends, t.Stride())
			if len(ends) > 0 {
				off = ends[len(ends)-1]
			}
		}
	case *geom.GeometryCollection:
		if t.NumGeoms() == 0 {
			b.addEmptyShape(parent, TypeGeometryCollection)
			return nil
		}
		idx := b.addShape(parent, TypeGeometryCollection)
		for _, sub := range t.Geoms() {
			if err := b.addGeomT(sub, idx); err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(ErrUnsupportedType, "%T", t)
	}
	return nil
}

// addFlatCoord appends one coordinate from a flat array, decoding the
// Z/M positions from the builder's dimensionality.
func (b *modelBuilder) addFlatCoord(fc []float64, off int) {
	var z, m float64
	k := off + 2
	if b.g.hasZ {
		z = fc[k]
		k++
	}
	if b.g.hasM {
		m = fc[k]
	}
	b.addPoint(fc[off], fc[off+1], z, m)
}

func (b *modelBuilder) addFlatCoords(fc []float64, start, end, stride int) {
	for off := start; off < end; off += stride {
		b.addFlatCoord(fc, off)
	}
}

func (b *modelBuilder) addRings(fc []float64, ends []int, stride int) {
	b.addRingsFrom(fc, 0, ends, stride)
}

func (b *modelBuilder) addRingsFrom(fc []float64, start int, ends []int, stride int) {
	off := start
	for i, end := range ends {
		attr := figureInteriorRing
		if i == 0 {
			attr = figureExteriorRing
		}
		b.addFigure(attr)
		b.addFlatCoords(fc, off, end, stride)
		off = end
	}
}

// AsOGCWKB returns the OGC WKB encoding of the value, little-endian,
// with empty points encoded as NaN coordinates.
func (g *Geometry) AsOGCWKB() ([]byte, error) {
	t, err := g.GeomT()
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(t, binary.LittleEndian,
		wkbcommon.WKBOptionEmptyPointHandling(wkbcommon.EmptyPointHandlingNaN))
}

// FromOGCWKB builds a Geometry from OGC WKB bytes with the given SRID.
func FromOGCWKB(data []byte, srid int32) (*Geometry, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrIllegalWKB, "empty input")
	}
	t, err := wkb.Unmarshal(data,
		wkbcommon.WKBOptionEmptyPointHandling(wkbcommon.EmptyPointHandlingNaN))
	if err != nil {
		return nil, errors.Wrapf(ErrIllegalWKB, "decoding OGC WKB: %v", err)
	}
	g, err := FromGeomT(t)
	if err != nil {
		return nil, err
	}
	g.srid = srid
	g.wkb = serializeInternal(g, true)
	return g, nil
}

// AsEWKB returns the PostGIS extended WKB encoding, which carries the
// SRID inline.
func (g *Geometry) AsEWKB() ([]byte, error) {
	t, err := g.GeomT()
	if err != nil {
		return nil, err
	}
	return ewkb.Marshal(t, binary.LittleEndian)
}

// FromEWKB builds a Geometry from PostGIS extended WKB bytes, taking
// the SRID from the payload.
func FromEWKB(data []byte) (*Geometry, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrIllegalWKB, "empty input")
	}
	t, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(ErrIllegalWKB, "decoding EWKB: %v", err)
	}
	return FromGeomT(t)
}
