package fountain

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of a packet header.
const HeaderSize = 16

// Header is the 16-byte, big-endian prefix of every encoded packet.
type Header struct {
	RunID       uint32
	K           uint32
	OriginalLen uint32
	SeqNum      uint32
}

// Marshal encodes h into its 16-byte wire representation.
func (h Header) Marshal() [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint32(b[0:4], h.RunID)
	binary.BigEndian.PutUint32(b[4:8], h.K)
	binary.BigEndian.PutUint32(b[8:12], h.OriginalLen)
	binary.BigEndian.PutUint32(b[12:16], h.SeqNum)
	return b
}

// decodeHeader reads a Header from the first HeaderSize bytes of b.
// Callers must ensure len(b) >= HeaderSize.
func decodeHeader(b []byte) Header {
	return Header{
		RunID:       binary.BigEndian.Uint32(b[0:4]),
		K:           binary.BigEndian.Uint32(b[4:8]),
		OriginalLen: binary.BigEndian.Uint32(b[8:12]),
		SeqNum:      binary.BigEndian.Uint32(b[12:16]),
	}
}

// DecodeHeader reads a Header from pkt, for external collaborators (a
// transport or barcode layer) that need to inspect a captured packet
// out of band, e.g. to derive the block size from len(pkt)-HeaderSize.
// It reports false if pkt is shorter than HeaderSize.
func DecodeHeader(pkt []byte) (Header, bool) {
	if len(pkt) < HeaderSize {
		return Header{}, false
	}
	return decodeHeader(pkt), true
}
