// Package statlog periodically appends a CSV row of session counters
// to a log file, the same shape as the teacher's kcp.DefaultSnmp dump:
// one row per interval, a header written once into an empty file, and
// the timestamped path formatted with time.Format so rotated logs sort
// naturally.
package statlog

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is one row of session counters.
type Snapshot struct {
	DecodedCount     int
	BlockCount       int
	PendingEquations int
	PacketsAccepted  int
}

func (s Snapshot) header() []string {
	return []string{"Unix", "DecodedCount", "BlockCount", "PendingEquations", "PacketsAccepted"}
}

func (s Snapshot) row() []string {
	return []string{
		fmt.Sprint(time.Now().Unix()),
		fmt.Sprint(s.DecodedCount),
		fmt.Sprint(s.BlockCount),
		fmt.Sprint(s.PendingEquations),
		fmt.Sprint(s.PacketsAccepted),
	}
}

// Run polls provider every interval seconds and appends a row to path
// until stop is closed. A zero path or interval disables logging
// entirely, matching the teacher's SnmpLogger no-op guard.
func Run(path string, interval int, provider func() Snapshot, stop <-chan struct{}) {
	if path == "" || interval == 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			appendRow(path, provider())
		case <-stop:
			return
		}
	}
}

func appendRow(path string, s Snapshot) {
	logdir, logfile := filepath.Split(path)
	name := logdir + time.Now().Format(logfile)

	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		log.Println(err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if stat, err := f.Stat(); err == nil && stat.Size() == 0 {
		if err := w.Write(s.header()); err != nil {
			log.Println(err)
		}
	}
	if err := w.Write(s.row()); err != nil {
		log.Println(err)
	}
	w.Flush()
}
