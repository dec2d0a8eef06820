package mssqlspatial

import (
	"bytes"
	"encoding/binary"
)

// serializeInternal renders the model in the little-endian internal
// format: SRID, version, property flags, then the point, figure, shape
// and segment sections. Single-point and single-line-segment values use
// the compact layout that elides the counted sections. With includeZM
// false the Z and M arrays and their flag bits are stripped.
func serializeInternal(g *Geometry, includeZM bool) []byte {
	hasZ := g.hasZ && includeZM
	hasM := g.hasM && includeZM

	var flags byte
	if hasZ {
		flags |= flagHasZ
	}
	if hasM {
		flags |= flagHasM
	}
	if g.isValid {
		flags |= flagIsValid
	}
	if g.isSinglePoint {
		flags |= flagSinglePoint
	}
	if g.isSingleLineSegment {
		flags |= flagSingleLineSegment
	}
	if g.largerThanHemisphere {
		flags |= flagLargerThanHemisphere
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, g.srid)
	buf.WriteByte(g.version)
	buf.WriteByte(flags)

	compact := g.isSinglePoint || g.isSingleLineSegment
	if !compact {
		binary.Write(buf, binary.LittleEndian, uint32(len(g.xValues)))
	}
	for i := range g.xValues {
		binary.Write(buf, binary.LittleEndian, g.xValues[i])
		binary.Write(buf, binary.LittleEndian, g.yValues[i])
	}
	if hasZ {
		binary.Write(buf, binary.LittleEndian, g.zValues)
	}
	if hasM {
		binary.Write(buf, binary.LittleEndian, g.mValues)
	}
	if compact {
		return buf.Bytes()
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(g.figures)))
	for _, f := range g.figures {
		buf.WriteByte(byte(f.attr))
		binary.Write(buf, binary.LittleEndian, f.pointOffset)
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(g.shapes)))
	for _, s := range g.shapes {
		binary.Write(buf, binary.LittleEndian, s.parentOffset)
		binary.Write(buf, binary.LittleEndian, s.figureOffset)
		buf.WriteByte(byte(s.typ))
	}
	if len(g.segments) > 0 {
		binary.Write(buf, binary.LittleEndian, uint32(len(g.segments)))
		for _, s := range g.segments {
			buf.WriteByte(byte(s))
		}
	}
	return buf.Bytes()
}
