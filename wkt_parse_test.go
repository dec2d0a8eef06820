package mssqlspatial

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canonical parses wkt, pushes the value through the binary form and
// returns the regenerated full text.
func canonical(t *testing.T, wkt string) string {
	t.Helper()
	g := mustParse(t, wkt, 0)
	back, err := Deserialize(g.Serialize())
	require.NoError(t, err)
	require.True(t, g.Equal(back), "model changed across binary round trip")
	return back.AsTextZM()
}

func TestParseCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"POINT(1 2)", "POINT (1 2)"},
		{"  point  ( 1   2 )  ", "POINT (1 2)"},
		{"POINT (1e2 -2.5E-1)", "POINT (100 -0.25)"},
		{"POINT Z (1 2 3)", "POINT Z (1 2 3)"},
		{"POINT M (1 2 3)", "POINT M (1 2 3)"},
		{"POINT ZM (1 2 3 4)", "POINT ZM (1 2 3 4)"},
		{"POINT (1 2 3)", "POINT Z (1 2 3)"},
		{"POINT (1 2 3 4)", "POINT ZM (1 2 3 4)"},
		{"POINT ZM (1 2 NULL 4)", "POINT ZM (1 2 NULL 4)"},
		{"POINT EMPTY", "POINT EMPTY"},
		{"LINESTRING(0 0,1 1,2 2)", "LINESTRING (0 0, 1 1, 2 2)"},
		{"LINESTRING EMPTY", "LINESTRING EMPTY"},
		{"POLYGON((0 0,10 0,10 10,0 10,0 0),(2 2,2 4,4 4,2 2))",
			"POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (2 2, 2 4, 4 4, 2 2))"},
		{"POLYGON EMPTY", "POLYGON EMPTY"},
		{"MULTIPOINT(1 2,3 4)", "MULTIPOINT ((1 2), (3 4))"},
		{"MULTIPOINT((1 2),(3 4))", "MULTIPOINT ((1 2), (3 4))"},
		{"MULTILINESTRING((0 0,1 1),(2 2,3 3))",
			"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))"},
		{"MULTIPOLYGON(((0 0,1 0,1 1,0 0)),((5 5,6 5,6 6,5 5)))",
			"MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))"},
		{"GEOMETRYCOLLECTION(POINT(0 0),LINESTRING(0 0,1 1))",
			"GEOMETRYCOLLECTION (POINT (0 0), LINESTRING (0 0, 1 1))"},
		{"GEOMETRYCOLLECTION EMPTY", "GEOMETRYCOLLECTION EMPTY"},
		{"GEOMETRYCOLLECTION(POLYGON EMPTY)", "GEOMETRYCOLLECTION (POLYGON EMPTY)"},
		{"CIRCULARSTRING(1 1,2 0,3 1)", "CIRCULARSTRING (1 1, 2 0, 3 1)"},
		{"COMPOUNDCURVE((0 0,1 1),CIRCULARSTRING(1 1,2 0,3 1))",
			"COMPOUNDCURVE ((0 0, 1 1), CIRCULARSTRING (1 1, 2 0, 3 1))"},
		{"COMPOUNDCURVE(CIRCULARSTRING(0 0,1 1,2 0),(2 0,3 0,4 1))",
			"COMPOUNDCURVE (CIRCULARSTRING (0 0, 1 1, 2 0), (2 0, 3 0, 4 1))"},
		{"CURVEPOLYGON(CIRCULARSTRING(0 0,2 2,4 0,2 -2,0 0))",
			"CURVEPOLYGON (CIRCULARSTRING (0 0, 2 2, 4 0, 2 -2, 0 0))"},
		{"CURVEPOLYGON(COMPOUNDCURVE((0 0,4 0),CIRCULARSTRING(4 0,2 2,0 0)))",
			"CURVEPOLYGON (COMPOUNDCURVE ((0 0, 4 0), CIRCULARSTRING (4 0, 2 2, 0 0)))"},
		{"CURVEPOLYGON((0 0,4 0,4 4,0 0))", "CURVEPOLYGON ((0 0, 4 0, 4 4, 0 0))"},
		{"FULLGLOBE", "FULLGLOBE"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, canonical(t, tc.in))
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"unknown keyword", "BANANA (1 2)"},
		{"missing body", "POINT"},
		{"one coordinate", "POINT (1)"},
		{"unbalanced", "POINT (1 2"},
		{"trailing text", "POINT (1 2) x"},
		{"five values", "POINT (1 2 3 4 5)"},
		{"null x", "POINT (NULL 2)"},
		{"arity mismatch", "LINESTRING (0 0, 1 1 2)"},
		{"suffix arity mismatch", "POINT Z (1 2)"},
		{"suffix arity excess", "POINT M (1 2 3 4)"},
		{"bad number", "POINT (1..2 3)"},
		{"empty parens", "POINT ()"},
		{"nested fullglobe", "GEOMETRYCOLLECTION (FULLGLOBE)"},
		{"discontiguous compound", "COMPOUNDCURVE ((0 0, 1 1), (5 5, 6 6))"},
		{"even arc points", "COMPOUNDCURVE (CIRCULARSTRING (0 0, 1 1))"},
		{"short line component", "COMPOUNDCURVE ((0 0))"},
		{"bad curve ring", "CURVEPOLYGON (POINT (1 2))"},
		{"suffix on fullglobe", "FULLGLOBE Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := STGeomFromText(tc.in, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIllegalWKT), "got %v", err)
		})
	}
}

func TestParseSharedJunctionStoredOnce(t *testing.T) {
	g := mustParse(t, "COMPOUNDCURVE ((0 0, 1 1), (1 1, 2 2), (2 2, 3 3))", 0)
	assert.Equal(t, 4, g.STNumPoints())
	assert.Equal(t, 1, g.NumFigures())
	assert.Equal(t, 3, g.NumSegments())
}

func TestParseDimensionalityIsInstanceWide(t *testing.T) {
	g := mustParse(t, "GEOMETRYCOLLECTION (POINT Z (1 2 3), LINESTRING (0 0 1, 1 1 2))", 0)
	assert.True(t, g.HasZ())
	assert.False(t, g.HasM())

	_, err := STGeomFromText("GEOMETRYCOLLECTION (POINT Z (1 2 3), POINT (4 5))", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalWKT))
}

func TestParseVersionFlipRewritesAttributes(t *testing.T) {
	g := mustParse(t, "GEOMETRYCOLLECTION (POLYGON ((0 0, 1 0, 1 1, 0 0)), CIRCULARSTRING (2 0, 3 1, 4 0))", 0)
	assert.Equal(t, serializationV2, g.version)
	assert.Equal(t, figureLine, g.figures[0].attr)
	assert.Equal(t, figureArc, g.figures[1].attr)

	plain := mustParse(t, "POLYGON ((0 0, 1 0, 1 1, 0 0))", 0)
	assert.Equal(t, serializationV1, plain.version)
	assert.Equal(t, figureExteriorRing, plain.figures[0].attr)
}
