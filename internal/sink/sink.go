// Package sink provides the minimal external collaborator this
// protocol needs: a way to hand whole, self-contained packets across a
// process boundary that stands in for "a sequence of visually scanned
// 2D barcodes". It does no framing, ordering, or integrity checking of
// its own — one file per packet, any subset of which may be missing.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// WritePacket writes pkt to dir as its own flat file named after its
// sequence number, so that an arbitrary subset of a directory listing
// is exactly the "any sufficiently large received subset" spec.md
// describes.
func WritePacket(dir string, seqNum uint32, pkt []byte) error {
	name := filepath.Join(dir, fmt.Sprintf("pkt-%010d.bin", seqNum))
	if err := os.WriteFile(name, pkt, 0o644); err != nil {
		return errors.Wrapf(err, "write packet file %s", name)
	}
	return nil
}

// ReadPackets reads every packet file in dir, in lexical (i.e.
// sequence) order. Order does not affect decoding correctness — it is
// chosen only to make runs reproducible for debugging.
func ReadPackets(dir string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read packet directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)

	pkts := make([][]byte, 0, len(names))
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read packet file %s", name)
		}
		pkts = append(pkts, b)
	}
	return pkts, nil
}
