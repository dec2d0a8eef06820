package mssqlspatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, wkt string, srid int32) *Geometry {
	t.Helper()
	g, err := STGeomFromText(wkt, srid)
	require.NoError(t, err)
	return g
}

func TestPointAccessors(t *testing.T) {
	g := mustParse(t, "POINT (1.5 2.5)", 5)

	x, ok := g.X()
	require.True(t, ok)
	assert.Equal(t, 1.5, x)
	y, ok := g.Y()
	require.True(t, ok)
	assert.Equal(t, 2.5, y)
	_, ok = g.Z()
	assert.False(t, ok)
	_, ok = g.M()
	assert.False(t, ok)

	assert.Equal(t, int32(5), g.SRID())
	assert.Equal(t, "Point", g.STGeometryType())
	assert.Equal(t, TypePoint, g.Type())
	assert.Equal(t, 1, g.STNumPoints())
	assert.False(t, g.HasZ())
	assert.False(t, g.HasM())
	assert.False(t, g.IsNull())
}

func TestNewPoint(t *testing.T) {
	g, err := NewPoint(1.5, 2.5, 5)
	require.NoError(t, err)
	assert.Equal(t, "POINT (1.5 2.5)", g.AsTextZM())
	assert.True(t, g.Equal(mustParse(t, "POINT (1.5 2.5)", 5)))
}

func TestPointZM(t *testing.T) {
	g := mustParse(t, "POINT ZM (1 2 3 4)", 0)
	assert.True(t, g.HasZ())
	assert.True(t, g.HasM())
	z, ok := g.Z()
	require.True(t, ok)
	assert.Equal(t, 3.0, z)
	m, ok := g.M()
	require.True(t, ok)
	assert.Equal(t, 4.0, m)
	assert.Equal(t, "POINT ZM (1 2 3 4)", g.AsTextZM())
	assert.Equal(t, "POINT (1 2)", g.STAsText())
}

func TestPointMOnly(t *testing.T) {
	g := mustParse(t, "POINT M (1 2 7)", 0)
	assert.False(t, g.HasZ())
	assert.True(t, g.HasM())
	_, ok := g.Z()
	assert.False(t, ok)
	m, ok := g.M()
	require.True(t, ok)
	assert.Equal(t, 7.0, m)
}

func TestNullZValue(t *testing.T) {
	g := mustParse(t, "POINT Z (1 2 NULL)", 0)
	z, ok := g.Z()
	require.True(t, ok)
	assert.True(t, math.IsNaN(z))

	back, err := Deserialize(g.Serialize())
	require.NoError(t, err)
	assert.Equal(t, "POINT Z (1 2 NULL)", back.AsTextZM())
}

func TestNonPointAccessors(t *testing.T) {
	g := mustParse(t, "LINESTRING (0 0, 1 1)", 0)
	_, ok := g.X()
	assert.False(t, ok)
	_, ok = g.Y()
	assert.False(t, ok)
}

func TestNullValue(t *testing.T) {
	g := Null()
	assert.True(t, g.IsNull())
	assert.Equal(t, "", g.STAsText())
	assert.Equal(t, "", g.STGeometryType())
	assert.Nil(t, g.Serialize())
	assert.Nil(t, g.STAsBinary())
	assert.True(t, g.Equal(Null()))
	assert.False(t, g.Equal(mustParse(t, "POINT (0 0)", 0)))
}

func TestCollectionNesting(t *testing.T) {
	g := mustParse(t, "GEOMETRYCOLLECTION (POINT (0 0), LINESTRING (0 0, 1 1))", 0)
	assert.Equal(t, 3, g.STNumPoints())
	assert.Equal(t, 2, g.NumFigures())
	assert.Equal(t, 3, g.NumShapes())
	assert.Equal(t, "GeometryCollection", g.STGeometryType())

	back, err := Deserialize(g.Serialize())
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
}

func TestDeepNesting(t *testing.T) {
	g := mustParse(t, "GEOMETRYCOLLECTION (GEOMETRYCOLLECTION (POINT (1 2)), MULTIPOINT ((3 4)))", 0)
	assert.Equal(t, 5, g.NumShapes())
	assert.Equal(t, 2, g.STNumPoints())

	back, err := Deserialize(g.Serialize())
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
	assert.Equal(t,
		"GEOMETRYCOLLECTION (GEOMETRYCOLLECTION (POINT (1 2)), MULTIPOINT ((3 4)))",
		back.AsTextZM())
}

func TestPolygonEmpty(t *testing.T) {
	g := mustParse(t, "POLYGON EMPTY", 0)
	assert.Equal(t, 0, g.STNumPoints())
	assert.Equal(t, 0, g.NumFigures())
	assert.Equal(t, 1, g.NumShapes())
	assert.Equal(t, "POLYGON EMPTY", g.STAsText())

	back, err := Deserialize(g.Serialize())
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
	assert.Equal(t, "POLYGON EMPTY", back.AsTextZM())
}

func TestNoZMIdempotence(t *testing.T) {
	g := mustParse(t, "LINESTRING ZM (0 0 1 2, 3 4 5 6, 7 8 9 10)", 4326)

	stripped, err := Deserialize(g.STAsBinary())
	require.NoError(t, err)
	assert.False(t, stripped.HasZ())
	assert.False(t, stripped.HasM())
	assert.Equal(t, g.STAsText(), stripped.STAsText())
	assert.Equal(t, g.STAsBinary(), stripped.Serialize())
	assert.Equal(t, stripped.Serialize(), stripped.STAsBinary())
}

func TestVerbatimTextKept(t *testing.T) {
	in := "point( 1    2 )"
	g := mustParse(t, in, 0)
	assert.Equal(t, in, g.AsTextZM())
	assert.Equal(t, in, g.String())
	assert.Equal(t, "POINT (1 2)", g.STAsText())
}

func TestEqual(t *testing.T) {
	a := mustParse(t, "POINT Z (1 2 NULL)", 7)
	b := mustParse(t, "point z(1 2 null)", 7)
	assert.True(t, a.Equal(b))

	c := mustParse(t, "POINT Z (1 2 3)", 7)
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(mustParse(t, "POINT Z (1 2 NULL)", 8)))
	assert.False(t, a.Equal(mustParse(t, "POINT M (1 2 4)", 7)))
}

func TestFullGlobe(t *testing.T) {
	g := mustParse(t, "FULLGLOBE", 4326)
	assert.Equal(t, "FullGlobe", g.STGeometryType())
	assert.Equal(t, 0, g.STNumPoints())

	back, err := Deserialize(g.Serialize())
	require.NoError(t, err)
	assert.True(t, g.Equal(back))
	assert.Equal(t, "FULLGLOBE", back.AsTextZM())
}
