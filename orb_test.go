package mssqlspatial

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrbRoundTrip(t *testing.T) {
	cases := []string{
		"POINT (1 2)",
		"LINESTRING (0 0, 1 1, 2 2)",
		"POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (2 2, 2 4, 4 4, 2 2))",
		"MULTIPOINT ((1 2), (3 4))",
		"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))",
		"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))",
		"GEOMETRYCOLLECTION (POINT (0 0), LINESTRING (0 0, 1 1))",
	}
	for _, wkt := range cases {
		t.Run(wkt, func(t *testing.T) {
			g := mustParse(t, wkt, 4326)
			o, err := g.Orb()
			require.NoError(t, err)
			back, err := FromOrb(o, 4326)
			require.NoError(t, err)
			assert.True(t, g.Equal(back), "got %s", back.AsTextZM())
		})
	}
}

func TestOrbDropsZM(t *testing.T) {
	g := mustParse(t, "POINT ZM (1 2 3 4)", 0)
	o, err := g.Orb()
	require.NoError(t, err)
	assert.Equal(t, orb.Point{1, 2}, o)
}

func TestOrbUnsupported(t *testing.T) {
	g := mustParse(t, "CIRCULARSTRING (1 1, 2 0, 3 1)", 0)
	_, err := g.Orb()
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = Null().Orb()
	assert.True(t, errors.Is(err, ErrNilGeometry))
	_, err = FromOrb(nil, 0)
	assert.True(t, errors.Is(err, ErrNilGeometry))
}

func TestFromOrbRing(t *testing.T) {
	ring := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 0}}
	g, err := FromOrb(ring, 0)
	require.NoError(t, err)
	assert.Equal(t, "POLYGON ((0 0, 4 0, 4 4, 0 0))", g.AsTextZM())
}

func TestFromOrbBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 3}}
	g, err := FromOrb(b, 0)
	require.NoError(t, err)
	assert.Equal(t, TypePolygon, g.Type())
	assert.Equal(t, 5, g.STNumPoints())
}
