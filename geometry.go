package mssqlspatial

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
)

// Geometry is an immutable spatial value. It holds the decoded model —
// flat coordinate arrays plus figure/shape/segment tables — together
// with its textual and binary serializations. Values are built by the
// factory functions and never mutated afterwards; the only writes after
// construction are the lazily computed no-ZM caches, which are
// serialized by sync.Once.
type Geometry struct {
	typ  InternalType
	srid int32

	hasZ                 bool
	hasM                 bool
	isValid              bool
	isSinglePoint        bool
	isSingleLineSegment  bool
	largerThanHemisphere bool

	version byte

	xValues []float64
	yValues []float64
	zValues []float64
	mValues []float64

	figures  []figure
	shapes   []shape
	segments []segmentType

	isNull bool

	wkt string // full form, Z/M included
	wkb []byte // internal serialization, full form

	wktNoZMOnce sync.Once
	wktNoZM     string
	wkbNoZMOnce sync.Once
	wkbNoZM     []byte
}

var nullGeometry = &Geometry{isNull: true}

// Null returns the null spatial value.
func Null() *Geometry { return nullGeometry }

// STGeomFromText builds a Geometry from a WKT representation and an
// SRID. The internal binary form is derived immediately; the text form
// keeps the caller's input verbatim.
func STGeomFromText(wkt string, srid int32) (*Geometry, error) {
	if len(wkt) == 0 {
		return nil, errors.Wrap(ErrIllegalWKT, "empty input")
	}
	g, err := parseWKT(wkt, srid)
	if err != nil {
		return nil, err
	}
	g.wkt = wkt
	g.wkb = serializeInternal(g, true)
	return g, nil
}

// Parse builds a Geometry from WKT with the SRID defaulted to 0.
func Parse(wkt string) (*Geometry, error) {
	return STGeomFromText(wkt, 0)
}

// NewPoint builds a Point geometry from X and Y values and an SRID.
func NewPoint(x, y float64, srid int32) (*Geometry, error) {
	return STGeomFromText("POINT ("+formatCoord(x)+" "+formatCoord(y)+")", srid)
}

// STGeomFromWKB builds a Geometry from the binary serialization format.
// The full WKT form is derived immediately.
func STGeomFromWKB(wkb []byte) (*Geometry, error) {
	if len(wkb) == 0 {
		return nil, errors.Wrap(ErrIllegalWKB, "empty input")
	}
	g, err := deserializeInternal(wkb)
	if err != nil {
		return nil, err
	}
	g.wkb = append([]byte(nil), wkb...)
	g.wkt = buildWKT(g, true)
	g.wktNoZM = buildWKT(g, false)
	return g, nil
}

// Deserialize builds a Geometry from previously serialized bytes. It is
// equivalent to STGeomFromWKB.
func Deserialize(wkb []byte) (*Geometry, error) {
	return STGeomFromWKB(wkb)
}

// AsTextZM returns the WKT representation including any Z and M values.
func (g *Geometry) AsTextZM() string { return g.wkt }

// String returns the WKT representation including any Z and M values.
func (g *Geometry) String() string { return g.wkt }

// STAsText returns the WKT representation without Z and M values. The
// text is computed on first call and cached.
func (g *Geometry) STAsText() string {
	if g.isNull {
		return ""
	}
	g.wktNoZMOnce.Do(func() {
		if g.wktNoZM == "" {
			g.wktNoZM = buildWKT(g, false)
		}
	})
	return g.wktNoZM
}

// Serialize returns the internal binary representation including any Z
// and M values.
func (g *Geometry) Serialize() []byte { return g.wkb }

// STAsBinary returns the internal binary representation without Z and M
// values. The bytes are computed on first call and cached.
func (g *Geometry) STAsBinary() []byte {
	if g.isNull {
		return nil
	}
	g.wkbNoZMOnce.Do(func() {
		if g.wkbNoZM == nil {
			g.wkbNoZM = serializeInternal(g, false)
		}
	})
	return g.wkbNoZM
}

// HasZ reports whether the value carries Z (elevation) coordinates.
func (g *Geometry) HasZ() bool { return g.hasZ }

// HasM reports whether the value carries M (measure) coordinates.
func (g *Geometry) HasM() bool { return g.hasM }

// SRID returns the Spatial Reference Identifier.
func (g *Geometry) SRID() int32 { return g.srid }

// IsNull reports whether this is the null spatial value.
func (g *Geometry) IsNull() bool { return g.isNull }

// X returns the X coordinate. The second return is false unless the
// value is a single Point.
func (g *Geometry) X() (float64, bool) {
	if g.typ == TypePoint && len(g.xValues) == 1 {
		return g.xValues[0], true
	}
	return 0, false
}

// Y returns the Y coordinate. The second return is false unless the
// value is a single Point.
func (g *Geometry) Y() (float64, bool) {
	if g.typ == TypePoint && len(g.yValues) == 1 {
		return g.yValues[0], true
	}
	return 0, false
}

// Z returns the Z (elevation) value. The second return is false unless
// the value is a single Point carrying Z.
func (g *Geometry) Z() (float64, bool) {
	if g.typ == TypePoint && g.hasZ && len(g.zValues) == 1 {
		return g.zValues[0], true
	}
	return 0, false
}

// M returns the M (measure) value. The second return is false unless
// the value is a single Point carrying M.
func (g *Geometry) M() (float64, bool) {
	if g.typ == TypePoint && g.hasM && len(g.mValues) == 1 {
		return g.mValues[0], true
	}
	return 0, false
}

// STNumPoints returns the number of points in the value.
func (g *Geometry) STNumPoints() int { return len(g.xValues) }

// NumFigures returns the number of figures in the value.
func (g *Geometry) NumFigures() int { return len(g.figures) }

// NumShapes returns the number of shapes in the value.
func (g *Geometry) NumShapes() int { return len(g.shapes) }

// NumSegments returns the number of curve segment markers in the value.
func (g *Geometry) NumSegments() int { return len(g.segments) }

// STGeometryType returns the OGC type name, e.g. "Point". It returns ""
// for the null value.
func (g *Geometry) STGeometryType() string {
	if g.isNull {
		return ""
	}
	return g.typ.String()
}

// Type returns the internal geometry type.
func (g *Geometry) Type() InternalType { return g.typ }

// Equal reports value equality of the decoded models: type, SRID,
// dimension flags and all coordinate, figure, shape and segment
// sequences. NaN coordinates compare equal to NaN. The cached text and
// binary forms do not participate.
func (g *Geometry) Equal(o *Geometry) bool {
	if g.isNull || o.isNull {
		return g.isNull == o.isNull
	}
	if g.typ != o.typ || g.srid != o.srid || g.hasZ != o.hasZ || g.hasM != o.hasM {
		return false
	}
	if !floatsEqual(g.xValues, o.xValues) || !floatsEqual(g.yValues, o.yValues) ||
		!floatsEqual(g.zValues, o.zValues) || !floatsEqual(g.mValues, o.mValues) {
		return false
	}
	if len(g.figures) != len(o.figures) || len(g.shapes) != len(o.shapes) || len(g.segments) != len(o.segments) {
		return false
	}
	for i := range g.figures {
		if g.figures[i] != o.figures[i] {
			return false
		}
	}
	for i := range g.shapes {
		if g.shapes[i] != o.shapes[i] {
			return false
		}
	}
	for i := range g.segments {
		if g.segments[i] != o.segments[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}

// figureRange returns the half-open figure index range owned by the
// shape subtree rooted at shapeIdx. ok is false for EMPTY shapes.
func (g *Geometry) figureRange(shapeIdx int) (start, end int, ok bool) {
	fo := g.shapes[shapeIdx].figureOffset
	if fo < 0 {
		return 0, 0, false
	}
	end = len(g.figures)
	for j := shapeIdx + 1; j < len(g.shapes); j++ {
		if next := g.shapes[j].figureOffset; next >= 0 {
			end = int(next)
			break
		}
	}
	return int(fo), end, true
}

// pointRange returns the half-open point index range of a figure.
func (g *Geometry) pointRange(figIdx int) (start, end int) {
	end = len(g.xValues)
	if figIdx+1 < len(g.figures) {
		end = int(g.figures[figIdx+1].pointOffset)
	}
	return int(g.figures[figIdx].pointOffset), end
}

// children returns the shape indexes whose parent is shapeIdx, in shape
// table order.
func (g *Geometry) children(shapeIdx int) []int {
	var kids []int
	for j := shapeIdx + 1; j < len(g.shapes); j++ {
		if int(g.shapes[j].parentOffset) == shapeIdx {
			kids = append(kids, j)
		}
	}
	return kids
}

// deriveCompactFlags marks the single-point and single-line-segment
// space optimizations when the model qualifies.
func (g *Geometry) deriveCompactFlags() {
	g.isSinglePoint = g.typ == TypePoint && len(g.xValues) == 1 && len(g.figures) == 1
	g.isSingleLineSegment = g.typ == TypeLineString && len(g.xValues) == 2 && len(g.figures) == 1
}
