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

// sigHandler reads packetsEmitted (declared in main.go) rather than
// the encoder itself, which is single-threaded and owned by the
// encode loop.
func sigHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	signal.Ignore(syscall.SIGPIPE)

	for range ch {
		log.Printf("fountain-encode: packets emitted so far: %d", atomic.LoadInt64(&packetsEmitted))
	}
}
