package fountain

import "github.com/templexxx/xorsimd"

// equationSlot is one pending equation in the decoder's compact arena.
// id is a stable logical identifier independent of the slot's position
// in Decoder.eqs; unknown holds the remaining unresolved block indices;
// residual is the running XOR of those indices' true values.
type equationSlot struct {
	id       int
	unknown  map[int]struct{}
	residual []byte
}

// Decoder maintains the partial-knowledge graph for one transfer
// session and peels every newly solvable equation as packets arrive,
// in any order, with any duplicates. It is single-threaded and
// stateful; callers serialize their own access.
type Decoder struct {
	k         int
	blockSize int
	runID     uint32

	blocks [][]byte
	known  []bool

	decodedCount int
	done         bool

	seen map[uint32]struct{}

	eqs   []equationSlot
	posOf map[int]int
	nextID int

	// blockRefs[i] is the set of equation ids whose unknown set
	// currently contains i.
	blockRefs []map[int]struct{}
}

// NewDecoder constructs a decoder for a session with the given k
// (source block count), blockSize B, and runID. All three must match
// the encoder's construction arguments. k and blockSize below 1 are
// raised to 1, the same floor the encoder applies.
func NewDecoder(k, blockSize int, runID uint32) *Decoder {
	if k < 1 {
		k = 1
	}
	if blockSize < 1 {
		blockSize = 1
	}

	return &Decoder{
		k:         k,
		blockSize: blockSize,
		runID:     runID,
		blocks:    make([][]byte, k),
		known:     make([]bool, k),
		seen:      make(map[uint32]struct{}),
		posOf:     make(map[int]int),
		blockRefs: make([]map[int]struct{}, k),
	}
}

// BlockCount returns k.
func (d *Decoder) BlockCount() int { return d.k }

// PendingEquations returns the number of outstanding equations in the
// decoder's arena. It is exposed for operational monitoring (session
// stats logging) only; nothing in the core decoding path depends on
// callers observing it.
func (d *Decoder) PendingEquations() int { return len(d.eqs) }

// DecodedCount returns the number of recovered blocks so far.
func (d *Decoder) DecodedCount() int { return d.decodedCount }

// SeenCount returns the number of distinct packets PushPacket has
// actually accepted into the equation graph, i.e. ones that passed the
// header/run_id/duplicate checks. It is exposed for operational
// monitoring only, mirroring PendingEquations.
func (d *Decoder) SeenCount() int { return len(d.seen) }

// IsDone reports whether every block has been recovered.
func (d *Decoder) IsDone() bool { return d.done }

// PushPacket ingests one packet and returns true iff the session is
// now complete. Malformed or redundant packets (too short, run_id
// mismatch, duplicate seq_num, already complete) are silently dropped
// and the current completion state is returned unchanged.
func (d *Decoder) PushPacket(pkt []byte) bool {
	if d.done {
		return true
	}
	if len(pkt) < HeaderSize {
		return d.done
	}

	h := decodeHeader(pkt)
	if h.RunID != d.runID {
		return d.done
	}
	if _, dup := d.seen[h.SeqNum]; dup {
		return d.done
	}
	d.seen[h.SeqNum] = struct{}{}

	sources := PacketSources(d.runID, h.SeqNum, d.k)

	residual := make([]byte, d.blockSize)
	copy(residual, pkt[HeaderSize:])

	unknown := make(map[int]struct{}, len(sources))
	for _, s := range sources {
		if d.known[s] {
			xorsimd.Bytes(residual, residual, d.blocks[s])
		} else {
			unknown[s] = struct{}{}
		}
	}

	switch len(unknown) {
	case 0:
		// Redundant equation; every source was already known.
	case 1:
		var i int
		for idx := range unknown {
			i = idx
		}
		d.recover(i, residual)
	default:
		d.addEquation(unknown, residual)
	}

	if d.decodedCount == d.k {
		d.done = true
	}
	return d.done
}

// addEquation stores a new pending equation and registers it in
// block_refs for every member of its unknown set.
func (d *Decoder) addEquation(unknown map[int]struct{}, residual []byte) {
	id := d.nextID
	d.nextID++

	pos := len(d.eqs)
	d.eqs = append(d.eqs, equationSlot{id: id, unknown: unknown, residual: residual})
	d.posOf[id] = pos

	for j := range unknown {
		d.registerRef(j, id)
	}
}

func (d *Decoder) registerRef(block, id int) {
	if d.blockRefs[block] == nil {
		d.blockRefs[block] = make(map[int]struct{})
	}
	d.blockRefs[block][id] = struct{}{}
}

// recover installs value as blocks[i] (if not already known), bumps
// decoded_count, and peels it through every pending equation that
// references it.
func (d *Decoder) recover(i int, value []byte) {
	if d.known[i] {
		return
	}
	d.blocks[i] = value
	d.known[i] = true
	d.decodedCount++
	d.propagate([]int{i})
}

// propagate drains the peeling work queue: for each newly recovered
// index it substitutes the known value into every referencing
// equation, deleting equations that become fully solved or redundant,
// and recursing on any index that this substitution newly resolves.
func (d *Decoder) propagate(queue []int) {
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		refs := d.blockRefs[b]
		d.blockRefs[b] = nil

		for id := range refs {
			pos, ok := d.posOf[id]
			if !ok {
				// Already resolved/deleted via another member.
				continue
			}
			e := &d.eqs[pos]

			xorsimd.Bytes(e.residual, e.residual, d.blocks[b])
			delete(e.unknown, b)

			switch len(e.unknown) {
			case 0:
				d.deleteEquation(pos)
			case 1:
				var i int
				for idx := range e.unknown {
					i = idx
				}
				residual := e.residual
				d.deleteEquation(pos)
				if !d.known[i] {
					d.blocks[i] = residual
					d.known[i] = true
					d.decodedCount++
					queue = append(queue, i)
				}
			default:
				for j := range e.unknown {
					d.registerRef(j, id)
				}
			}
		}
	}
}

// deleteEquation removes the equation at pos using swap-with-last,
// keeping the active-equation array dense and each deletion O(1).
func (d *Decoder) deleteEquation(pos int) {
	last := len(d.eqs) - 1
	delete(d.posOf, d.eqs[pos].id)

	if pos != last {
		d.eqs[pos] = d.eqs[last]
		d.posOf[d.eqs[pos].id] = pos
	}
	d.eqs = d.eqs[:last]
}

// GetResult concatenates the recovered blocks and truncates to
// originalLen. It returns an empty slice if the session is not yet
// complete.
func (d *Decoder) GetResult(originalLen int) []byte {
	if !d.done {
		return []byte{}
	}

	buf := make([]byte, 0, d.k*d.blockSize)
	for i := 0; i < d.k; i++ {
		buf = append(buf, d.blocks[i]...)
	}

	if originalLen < 0 {
		originalLen = 0
	}
	if originalLen > len(buf) {
		originalLen = len(buf)
	}
	return buf[:originalLen]
}
