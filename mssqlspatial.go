// Package mssqlspatial implements the value-level codec for SQL Server
// spatial data. It converts among Well-Known Text (WKT), the compact
// binary serialization SQL Server uses for stored spatial values, and,
// through bridge converters, OGC Well-Known Binary and the orb and
// go-geom geometry ecosystems.
//
// The codec is purely in-memory: it never touches the network and never
// logs. All failures are reported as errors wrapping one of the
// sentinels below, so callers can classify them with errors.Is.
package mssqlspatial

import (
	"github.com/cockroachdb/errors"
)

// Common errors returned by this package.
var (
	ErrIllegalWKT      = errors.New("mssqlspatial: illegal WKT")
	ErrIllegalWKB      = errors.New("mssqlspatial: illegal WKB")
	ErrUnsupportedType = errors.New("mssqlspatial: unsupported geometry type")
	ErrNilGeometry     = errors.New("mssqlspatial: nil geometry")
)

// Serialization property bits of the flags byte in the binary form.
const (
	flagHasZ                 byte = 1 << 0
	flagHasM                 byte = 1 << 1
	flagIsValid              byte = 1 << 2
	flagSinglePoint          byte = 1 << 3
	flagSingleLineSegment    byte = 1 << 4
	flagLargerThanHemisphere byte = 1 << 5
)

// Serialization format versions. Version 2 adds segment records and the
// curve and full-globe types.
const (
	serializationV1 byte = 1
	serializationV2 byte = 2
)
