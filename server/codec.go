package server

import "encoding/binary"

// EchoSize is the datagram payload length: one little-endian uint64
// timestamp, echoed back to the sender verbatim.
const EchoSize = 8

// PutEcho writes ts into buf in wire order. buf must hold EchoSize
// bytes.
func PutEcho(buf []byte, ts uint64) {
	binary.LittleEndian.PutUint64(buf, ts)
}

// Echo reads the wire timestamp from buf.
func Echo(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}
