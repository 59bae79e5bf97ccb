package statlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.csv")

	calls := 0
	provider := func() Snapshot {
		calls++
		return Snapshot{DecodedCount: calls, BlockCount: 10, PendingEquations: 2, PacketsAccepted: calls * 3}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		Run(path, 1, provider, stop)
		close(done)
	}()

	time.Sleep(1200 * time.Millisecond)
	close(stop)
	<-done

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a header row plus at least one data row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Unix,DecodedCount,BlockCount,PendingEquations,PacketsAccepted") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
}

func TestRunNoopOnEmptyPath(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Run("", 1, func() Snapshot { return Snapshot{} }, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return immediately for an empty path")
	}
}
