package mssqlspatial

// modelBuilder assembles the flat arena model shape by shape. The
// bridge converters drive it; the WKT parser writes the arena directly.
type modelBuilder struct {
	g *Geometry
}

func newModelBuilder(srid int32, hasZ, hasM bool) *modelBuilder {
	return &modelBuilder{g: &Geometry{
		srid:    srid,
		version: serializationV1,
		isValid: true,
		hasZ:    hasZ,
		hasM:    hasM,
	}}
}

// addShape registers a shape whose first figure is the next one added.
func (b *modelBuilder) addShape(parent int32, typ InternalType) int32 {
	b.g.shapes = append(b.g.shapes, shape{
		parentOffset: parent,
		figureOffset: int32(len(b.g.figures)),
		typ:          typ,
	})
	if typ.requiresV2() {
		b.g.version = serializationV2
	}
	return int32(len(b.g.shapes) - 1)
}

// addEmptyShape registers a shape with no figures.
func (b *modelBuilder) addEmptyShape(parent int32, typ InternalType) int32 {
	b.g.shapes = append(b.g.shapes, shape{parentOffset: parent, figureOffset: -1, typ: typ})
	return int32(len(b.g.shapes) - 1)
}

func (b *modelBuilder) addFigure(attr figureAttr) {
	b.g.figures = append(b.g.figures, figure{attr: attr, pointOffset: int32(len(b.g.xValues))})
}

func (b *modelBuilder) addPoint(x, y, z, m float64) {
	g := b.g
	g.xValues = append(g.xValues, x)
	g.yValues = append(g.yValues, y)
	if g.hasZ {
		g.zValues = append(g.zValues, z)
	}
	if g.hasM {
		g.mValues = append(g.mValues, m)
	}
}

// finish clamps dangling figure offsets left by shapes whose subtree
// produced no figures, derives the top-level type and the compact
// flags, and fills the serialization caches.
func (b *modelBuilder) finish() (*Geometry, error) {
	g := b.g
	if len(g.shapes) == 0 {
		return nil, ErrNilGeometry
	}
	for i := range g.shapes {
		if int(g.shapes[i].figureOffset) >= len(g.figures) {
			g.shapes[i].figureOffset = -1
		}
	}
	g.typ = g.shapes[0].typ
	g.deriveCompactFlags()
	g.wkb = serializeInternal(g, true)
	g.wkt = buildWKT(g, true)
	g.wktNoZM = buildWKT(g, false)
	return g, nil
}
