package mssqlspatial

// InternalType identifies the geometry type carried by a serialized
// spatial value. The numeric values are the OpenGIS type codes stored in
// shape records.
type InternalType byte

// Geometry types understood by the codec. CircularString through
// FullGlobe require serialization version 2.
const (
	TypePoint InternalType = iota + 1
	TypeLineString
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeGeometryCollection
	TypeCircularString
	TypeCompoundCurve
	TypeCurvePolygon
	TypeFullGlobe
)

var typeNames = [...]string{
	TypePoint:              "Point",
	TypeLineString:         "LineString",
	TypePolygon:            "Polygon",
	TypeMultiPoint:         "MultiPoint",
	TypeMultiLineString:    "MultiLineString",
	TypeMultiPolygon:       "MultiPolygon",
	TypeGeometryCollection: "GeometryCollection",
	TypeCircularString:     "CircularString",
	TypeCompoundCurve:      "CompoundCurve",
	TypeCurvePolygon:       "CurvePolygon",
	TypeFullGlobe:          "FullGlobe",
}

// String returns the OGC type name, e.g. "MultiPolygon".
func (t InternalType) String() string {
	if int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return "Unknown"
}

func (t InternalType) valid() bool {
	return t >= TypePoint && t <= TypeFullGlobe
}

// requiresV2 reports whether the type can only be expressed in
// serialization version 2.
func (t InternalType) requiresV2() bool {
	return t >= TypeCircularString
}

// figureAttr is the attribute byte of a figure record. The meaning
// depends on the serialization version: version 1 distinguishes interior
// rings, strokes and exterior rings; version 2 distinguishes lines, arcs
// and composite curves.
type figureAttr byte

const (
	figureInteriorRing figureAttr = 0x00 // version 1
	figureStroke       figureAttr = 0x01 // version 1
	figureExteriorRing figureAttr = 0x02 // version 1

	figureLine           figureAttr = 0x01 // version 2
	figureArc            figureAttr = 0x02 // version 2
	figureCompositeCurve figureAttr = 0x03 // version 2
)

// segmentType describes how the next run of figure points combines into
// a straight or circular portion of a compound curve.
type segmentType byte

const (
	segmentLine segmentType = iota
	segmentArc
	segmentFirstLine
	segmentFirstArc
)

// pointsConsumed is the number of points a segment consumes beyond the
// point it starts from.
func (s segmentType) pointsConsumed() int {
	if s == segmentArc || s == segmentFirstArc {
		return 2
	}
	return 1
}

func (s segmentType) valid() bool { return s <= segmentFirstArc }

// starting reports whether the segment opens a new component of a
// compound curve.
func (s segmentType) starting() bool {
	return s == segmentFirstLine || s == segmentFirstArc
}

// figure is one contiguous run of points forming a ring or line.
// pointOffset is the index of the figure's first point.
type figure struct {
	attr        figureAttr
	pointOffset int32
}

// shape is one geometry node of the shape tree. parentOffset is -1 for
// the root; figureOffset is -1 for a shape with no figures (EMPTY).
type shape struct {
	parentOffset int32
	figureOffset int32
	typ          InternalType
}
