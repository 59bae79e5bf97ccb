package fountain

import "github.com/templexxx/xorsimd"

// Encoder fragments a payload into fixed-size source blocks and emits
// an unbounded stream of header-prefixed XOR packets. It is a
// single-threaded, stateful value; callers serialize their own access.
type Encoder struct {
	runID       uint32
	blockSize   int
	originalLen int
	blocks      [][]byte
	seq         uint32

	// scratch reused across NextPacket calls to avoid per-packet
	// allocation of the source list backing array.
	srcBuf [][]byte
}

// NewEncoder fragments data into ceil(len(data)/blockSize) blocks of
// blockSize bytes, zero-padding the final block. blockSize < 1 is
// raised to 1; the resulting block count is always at least 1, even
// for an empty payload.
func NewEncoder(data []byte, blockSize int, runID uint32) *Encoder {
	if blockSize < 1 {
		blockSize = 1
	}

	k := (len(data) + blockSize - 1) / blockSize
	if k < 1 {
		k = 1
	}

	padded := make([]byte, k*blockSize)
	copy(padded, data)

	blocks := make([][]byte, k)
	for i := 0; i < k; i++ {
		blocks[i] = padded[i*blockSize : (i+1)*blockSize]
	}

	return &Encoder{
		runID:       runID,
		blockSize:   blockSize,
		originalLen: len(data),
		blocks:      blocks,
	}
}

// BlockCount returns k, the number of source blocks.
func (e *Encoder) BlockCount() int { return len(e.blocks) }

// BlockSize returns B, the fixed size of every source block.
func (e *Encoder) BlockSize() int { return e.blockSize }

// OriginalLen returns the unpadded length of the original payload.
func (e *Encoder) OriginalLen() int { return e.originalLen }

// NextPacket produces the next packet in the stream: a HeaderSize-byte
// header followed by the XOR of the source blocks selected by
// packet_sources(runID, seq, k). It may be called an unbounded number
// of times; seq wraps silently at 2^32 without panicking.
func (e *Encoder) NextPacket() []byte {
	k := len(e.blocks)
	seq := e.seq
	e.seq++

	sources := PacketSources(e.runID, seq, k)

	if cap(e.srcBuf) < len(sources) {
		e.srcBuf = make([][]byte, len(sources))
	}
	srcs := e.srcBuf[:len(sources)]
	for i, s := range sources {
		srcs[i] = e.blocks[s]
	}

	pkt := make([]byte, HeaderSize+e.blockSize)
	xorsimd.Encode(pkt[HeaderSize:], srcs)

	h := Header{
		RunID:       e.runID,
		K:           uint32(k),
		OriginalLen: uint32(e.originalLen),
		SeqNum:      seq,
	}
	hb := h.Marshal()
	copy(pkt[:HeaderSize], hb[:])

	return pkt
}
