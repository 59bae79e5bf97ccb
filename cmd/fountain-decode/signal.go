//go:build linux || darwin || freebsd

package main

import (
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

func init() {
	go sigHandler()
}

// sigHandler reads liveStats (declared in main.go) rather than the
// decoder itself, which is single-threaded and owned by the decode loop.
func sigHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	signal.Ignore(syscall.SIGPIPE)

	for range ch {
		log.Printf("fountain-decode: decoded %d/%d blocks, %d pending equations, %d packets accepted",
			atomic.LoadInt64(&liveStats.decoded),
			atomic.LoadInt32(&liveStats.blockCount),
			atomic.LoadInt64(&liveStats.pending),
			atomic.LoadInt64(&liveStats.accepted))
	}
}
