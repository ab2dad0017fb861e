// Package dtype provides ICS pixel format handling and Go type conversion.
//
// This package bridges the ICS "representation" keys and Go's type system,
// providing functionality to:
//
//   - Parse a pixel format from the format, sign and bit width header fields
//   - Determine the Go type corresponding to a pixel format
//   - Convert raw pixel bytes to Go values
//   - Encode Go values to raw pixel bytes
//
// # Type Mapping Strategy
//
// Pixel formats are mapped to Go types as follows:
//
//	ICS format         | bits    | Go Type
//	-------------------|---------|------------------------------
//	integer unsigned   | 8..64   | uint8, uint16, uint32, uint64
//	integer signed     | 8..64   | int8, int16, int32, int64
//	real               | 32, 64  | float32, float64
//	complex            | 64, 128 | complex64, complex128
//
// Complex pixels are stored as an interleaved (real, imaginary) pair of
// floats. The byte order of a [Format] applies to each component, so a
// complex64 pixel is two independently ordered 4-byte values.
//
// # Reading Data
//
// Use [Convert] or [ConvertToSlice] to convert raw bytes to Go values:
//
//	values, err := dtype.ConvertToSlice[float64](format, raw, n)
//
// Any numeric destination type is accepted; integer and real pixels are
// converted the way a Go conversion would. Complex pixels only convert to
// complex destinations.
//
// # Writing Data
//
// Use [Encode] to convert Go values to raw bytes and [FromGoType] to
// derive a pixel format from a Go type:
//
//	f, err := dtype.FromGoType(reflect.TypeOf(uint16(0)), binary.LittleEndian)
//	raw, err := dtype.Encode(f, []uint16{1, 2, 3})
package dtype
