// Package bytesutil defines helper methods for converting integers to byte slices.
package bytesutil

import "encoding/binary"

// Bytes8 returns integer x to bytes in little-endian format, x.to_bytes(8, 'little').
func Bytes8(x uint64) []byte {
	bytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(bytes, x)
	return bytes
}

// FromBytes8 returns an integer which is stored in the little-endian format(8, 'little')
// from a byte array. Short input is zero padded.
func FromBytes8(x []byte) uint64 {
	if len(x) < 8 {
		padded := make([]byte, 8)
		copy(padded, x)
		x = padded
	}
	return binary.LittleEndian.Uint64(x)
}

// Uint64ToBytesBigEndian conversion. Big-endian keys keep bolt cursors in numeric order.
func Uint64ToBytesBigEndian(i uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, i)
	return buf
}
