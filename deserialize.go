package mssqlspatial

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
)

// binReader reads little-endian fields from a byte slice, keeping the
// current offset for error reporting.
type binReader struct {
	buf []byte
	off int
}

func (r *binReader) remaining() int { return len(r.buf) - r.off }

func (r *binReader) truncated(what string) error {
	return errors.Wrapf(ErrIllegalWKB, "truncated input reading %s at offset %d", what, r.off)
}

func (r *binReader) readByte(what string) (byte, error) {
	if r.remaining() < 1 {
		return 0, r.truncated(what)
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *binReader) readInt32(what string) (int32, error) {
	if r.remaining() < 4 {
		return 0, r.truncated(what)
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v, nil
}

func (r *binReader) readFloat64(what string) (float64, error) {
	if r.remaining() < 8 {
		return 0, r.truncated(what)
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.buf[r.off:]))
	r.off += 8
	return v, nil
}

func (r *binReader) readFloat64s(n int, what string) ([]float64, error) {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.readFloat64(what)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// deserializeInternal decodes the internal binary format into a model.
// Every declared count is checked against the remaining input before
// allocation, and the figure and shape tables are validated for
// structural consistency.
func deserializeInternal(data []byte) (*Geometry, error) {
	r := &binReader{buf: data}
	g := &Geometry{}

	srid, err := r.readInt32("SRID")
	if err != nil {
		return nil, err
	}
	g.srid = srid

	g.version, err = r.readByte("version")
	if err != nil {
		return nil, err
	}
	if g.version != serializationV1 && g.version != serializationV2 {
		return nil, errors.Wrapf(ErrIllegalWKB, "unsupported serialization version %d", g.version)
	}

	flags, err := r.readByte("flags")
	if err != nil {
		return nil, err
	}
	if flags&^(flagHasZ|flagHasM|flagIsValid|flagSinglePoint|flagSingleLineSegment|flagLargerThanHemisphere) != 0 {
		return nil, errors.Wrapf(ErrIllegalWKB, "reserved flag bits set: %#x", flags)
	}
	g.hasZ = flags&flagHasZ != 0
	g.hasM = flags&flagHasM != 0
	g.isValid = flags&flagIsValid != 0
	g.isSinglePoint = flags&flagSinglePoint != 0
	g.isSingleLineSegment = flags&flagSingleLineSegment != 0
	g.largerThanHemisphere = flags&flagLargerThanHemisphere != 0
	if g.isSinglePoint && g.isSingleLineSegment {
		return nil, errors.Wrap(ErrIllegalWKB, "single-point and single-line-segment flags are mutually exclusive")
	}
	if g.largerThanHemisphere && g.version == serializationV1 {
		return nil, errors.Wrap(ErrIllegalWKB, "hemisphere flag requires serialization version 2")
	}

	var numPoints int
	switch {
	case g.isSinglePoint:
		numPoints = 1
	case g.isSingleLineSegment:
		numPoints = 2
	default:
		n, err := r.readInt32("point count")
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, errors.Wrapf(ErrIllegalWKB, "negative point count %d", n)
		}
		numPoints = int(n)
	}
	pointSize := 16
	if g.hasZ {
		pointSize += 8
	}
	if g.hasM {
		pointSize += 8
	}
	if int64(numPoints)*int64(pointSize) > int64(r.remaining()) {
		return nil, errors.Wrapf(ErrIllegalWKB, "declared point count %d exceeds input", numPoints)
	}

	g.xValues = make([]float64, 0, numPoints)
	g.yValues = make([]float64, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		x, err := r.readFloat64("X")
		if err != nil {
			return nil, err
		}
		y, err := r.readFloat64("Y")
		if err != nil {
			return nil, err
		}
		g.xValues = append(g.xValues, x)
		g.yValues = append(g.yValues, y)
	}
	if g.hasZ {
		if g.zValues, err = r.readFloat64s(numPoints, "Z values"); err != nil {
			return nil, err
		}
	}
	if g.hasM {
		if g.mValues, err = r.readFloat64s(numPoints, "M values"); err != nil {
			return nil, err
		}
	}

	// Compact layouts carry no figure or shape sections; the implied
	// single figure and shape are synthesized.
	if g.isSinglePoint || g.isSingleLineSegment {
		typ := TypePoint
		if g.isSingleLineSegment {
			typ = TypeLineString
		}
		g.typ = typ
		g.figures = []figure{{attr: figureStroke, pointOffset: 0}}
		g.shapes = []shape{{parentOffset: -1, figureOffset: 0, typ: typ}}
		if r.remaining() > 0 {
			return nil, errors.Wrapf(ErrIllegalWKB, "%d trailing bytes", r.remaining())
		}
		return g, nil
	}

	numFigures, err := r.readInt32("figure count")
	if err != nil {
		return nil, err
	}
	if numFigures < 0 || int64(numFigures)*5 > int64(r.remaining()) {
		return nil, errors.Wrapf(ErrIllegalWKB, "declared figure count %d exceeds input", numFigures)
	}
	if numPoints > 0 && numFigures == 0 {
		return nil, errors.Wrap(ErrIllegalWKB, "points present but no figures")
	}
	g.figures = make([]figure, 0, numFigures)
	for i := int32(0); i < numFigures; i++ {
		attr, err := r.readByte("figure attribute")
		if err != nil {
			return nil, err
		}
		if figureAttr(attr) > figureCompositeCurve {
			return nil, errors.Wrapf(ErrIllegalWKB, "invalid figure attribute %d", attr)
		}
		off, err := r.readInt32("figure point offset")
		if err != nil {
			return nil, err
		}
		if off < 0 || int(off) >= numPoints {
			return nil, errors.Wrapf(ErrIllegalWKB, "figure %d point offset %d out of range", i, off)
		}
		if i > 0 && off < g.figures[i-1].pointOffset {
			return nil, errors.Wrapf(ErrIllegalWKB, "figure %d point offset %d decreases", i, off)
		}
		g.figures = append(g.figures, figure{attr: figureAttr(attr), pointOffset: off})
	}

	numShapes, err := r.readInt32("shape count")
	if err != nil {
		return nil, err
	}
	if numShapes < 1 {
		return nil, errors.Wrap(ErrIllegalWKB, "no shapes")
	}
	if int64(numShapes)*9 > int64(r.remaining()) {
		return nil, errors.Wrapf(ErrIllegalWKB, "declared shape count %d exceeds input", numShapes)
	}
	g.shapes = make([]shape, 0, numShapes)
	lastFigOff := int32(-1)
	for i := int32(0); i < numShapes; i++ {
		parent, err := r.readInt32("shape parent offset")
		if err != nil {
			return nil, err
		}
		figOff, err := r.readInt32("shape figure offset")
		if err != nil {
			return nil, err
		}
		typByte, err := r.readByte("shape type")
		if err != nil {
			return nil, err
		}
		typ := InternalType(typByte)
		if !typ.valid() {
			return nil, errors.Wrapf(ErrIllegalWKB, "shape %d has invalid type %d", i, typByte)
		}
		if typ.requiresV2() && g.version < serializationV2 {
			return nil, errors.Wrapf(ErrIllegalWKB, "type %s requires serialization version 2", typ)
		}
		if i == 0 {
			if parent != -1 {
				return nil, errors.Wrapf(ErrIllegalWKB, "root shape has parent %d", parent)
			}
		} else if parent < 0 || parent >= i {
			return nil, errors.Wrapf(ErrIllegalWKB, "shape %d has parent %d out of range", i, parent)
		}
		if figOff != -1 {
			if figOff < 0 || figOff >= numFigures {
				return nil, errors.Wrapf(ErrIllegalWKB, "shape %d figure offset %d out of range", i, figOff)
			}
			if figOff < lastFigOff {
				return nil, errors.Wrapf(ErrIllegalWKB, "shape %d figure offset %d decreases", i, figOff)
			}
			lastFigOff = figOff
		}
		g.shapes = append(g.shapes, shape{parentOffset: parent, figureOffset: figOff, typ: typ})
	}
	g.typ = g.shapes[0].typ

	// Segment records exist only in version 2; the section is present
	// when the value contains composite curves, signalled by bytes
	// remaining after the shape section.
	if g.version == serializationV2 && r.remaining() > 0 {
		numSegments, err := r.readInt32("segment count")
		if err != nil {
			return nil, err
		}
		if numSegments < 0 || int64(numSegments) > int64(r.remaining()) {
			return nil, errors.Wrapf(ErrIllegalWKB, "declared segment count %d exceeds input", numSegments)
		}
		g.segments = make([]segmentType, 0, numSegments)
		for i := int32(0); i < numSegments; i++ {
			b, err := r.readByte("segment type")
			if err != nil {
				return nil, err
			}
			if !segmentType(b).valid() {
				return nil, errors.Wrapf(ErrIllegalWKB, "invalid segment type %d", b)
			}
			g.segments = append(g.segments, segmentType(b))
		}
		if len(g.segments) > 0 && !g.segments[0].starting() {
			return nil, errors.Wrap(ErrIllegalWKB, "segment list does not start a component")
		}
	}
	if r.remaining() > 0 {
		return nil, errors.Wrapf(ErrIllegalWKB, "%d trailing bytes", r.remaining())
	}
	return g, nil
}
