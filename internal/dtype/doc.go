// Package dtype defines the closed set of element types a stream buffer can
// carry and the per-type encode/decode pair used to pack sampled values into
// buffer bytes.
//
// The set is fixed:
//
//	int8  int16  int32
//	uint8 uint16 uint32
//	float32
//
// Every variant knows its byte width, its numeric category and its default
// value range. Values travel through the generator as float64, which holds
// every member of every variant exactly, so the value recorded in a golden
// result is always the value a consumer decodes from the buffer.
//
// Elements are little-endian.
package dtype
