// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"crypto/rand"
	"encoding/binary"
	"log"
	"math"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/fountain"
	"github.com/xtaci/fountain/internal/sink"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

// packetsEmitted is updated by the encode loop below and read from the
// signal-handling goroutine in signal.go on platforms that build it;
// atomic access avoids requiring the single-threaded encoder itself to
// become thread-safe.
var packetsEmitted int64

func main() {
	if VERSION == "SELFBUILD" {
		// add more log flags for debugging
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "fountain-encode"
	myApp.Usage = "rateless fountain-code encoder for barcode-style transports"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "input,i",
			Usage: "payload file to fragment and encode",
		},
		cli.StringFlag{
			Name:  "output,o",
			Value: "packets",
			Usage: "directory to receive one file per emitted packet",
		},
		cli.IntFlag{
			Name:  "blocksize,b",
			Value: 1024,
			Usage: "source block size B, in bytes",
		},
		cli.IntFlag{
			Name:  "runid,r",
			Usage: "session run_id shared out-of-band with the decoder; 0 picks a random one",
		},
		cli.IntFlag{
			Name:  "count,n",
			Usage: "number of packets to emit; 0 derives ceil(1.15*k)+16",
		},
		cli.BoolTFlag{
			Name:  "compress",
			Usage: "snappy-compress the payload before fragmentation (default on)",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "optional JSON file overlaying these flags",
		},
	}
	myApp.Action = run

	if err := myApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := Config{
		Input:     c.String("input"),
		Output:    c.String("output"),
		BlockSize: c.Int("blocksize"),
		RunID:     uint32(c.Int("runid")),
		Count:     c.Int("count"),
		Compress:  c.BoolT("compress"),
	}
	if path := c.String("config"); path != "" {
		if err := parseJSONConfig(&cfg, path); err != nil {
			return errors.Wrap(err, "load config")
		}
	}
	if cfg.Input == "" {
		return errors.New("--input is required")
	}

	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return errors.Wrap(err, "read input")
	}

	if cfg.Compress {
		data = snappy.Encode(nil, data)
	}

	if cfg.RunID == 0 {
		cfg.RunID = randomRunID()
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	enc := fountain.NewEncoder(data, cfg.BlockSize, cfg.RunID)

	count := cfg.Count
	if count <= 0 {
		count = int(math.Ceil(1.15*float64(enc.BlockCount()))) + 16
	}

	for i := 0; i < count; i++ {
		pkt := enc.NextPacket()
		h, _ := fountain.DecodeHeader(pkt)
		if err := sink.WritePacket(cfg.Output, h.SeqNum, pkt); err != nil {
			return errors.Wrap(err, "write packet")
		}
		atomic.StoreInt64(&packetsEmitted, int64(i+1))
	}

	color.Green("encoded %d packets (k=%d, B=%d, run_id=%#x, original_len=%d) into %s",
		count, enc.BlockCount(), enc.BlockSize(), cfg.RunID, enc.OriginalLen(), cfg.Output)
	return nil
}

// randomRunID picks a session identifier when the caller has not
// agreed on one out-of-band with the decoder. This is a convenience
// default, not a security property: run_id carries no authentication.
func randomRunID() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 1
	}
	v := binary.BigEndian.Uint32(b[:])
	if v == 0 {
		return 1
	}
	return v
}
