package util

import "encoding/binary"

func Uint64Bytes(val uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, val)
	return buf
}

func BytesUint64(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}
