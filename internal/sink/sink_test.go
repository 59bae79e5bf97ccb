package sink

import (
	"bytes"
	"os"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	want := map[uint32][]byte{
		0: {0x01, 0x02},
		1: {0x03, 0x04},
		5: {0x05},
	}
	for seq, pkt := range want {
		if err := WritePacket(dir, seq, pkt); err != nil {
			t.Fatalf("WritePacket(%d): %v", seq, err)
		}
	}

	got, err := ReadPackets(dir)
	if err != nil {
		t.Fatalf("ReadPackets: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadPackets returned %d packets, want %d", len(got), len(want))
	}

	found := make(map[string]bool)
	for _, pkt := range got {
		found[string(pkt)] = true
	}
	for _, pkt := range want {
		if !found[string(pkt)] {
			t.Fatalf("missing packet %x in ReadPackets result", pkt)
		}
	}
}

func TestReadPacketsSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if err := WritePacket(dir, 0, []byte{0xAA}); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if err := os.Mkdir(dir+"/nested", 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := ReadPackets(dir)
	if err != nil {
		t.Fatalf("ReadPackets: %v", err)
	}
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0xAA}) {
		t.Fatalf("ReadPackets = %v, want [[0xAA]]", got)
	}
}
