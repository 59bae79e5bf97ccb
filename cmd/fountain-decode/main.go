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
	"log"
	"os"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/fountain"
	"github.com/xtaci/fountain/internal/sink"
	"github.com/xtaci/fountain/internal/statlog"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

// liveStats mirrors the decoder's counters for readers that must not
// touch the (single-threaded) Decoder directly: the stat logger
// goroutine and, on platforms that build signal.go, the SIGUSR1
// handler.
var liveStats struct {
	decoded    int64
	pending    int64
	accepted   int64
	blockCount int32
}

func main() {
	if VERSION == "SELFBUILD" {
		// add more log flags for debugging
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "fountain-decode"
	myApp.Usage = "rateless fountain-code decoder for barcode-style transports"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "packets,p",
			Value: "packets",
			Usage: "directory containing one file per captured packet",
		},
		cli.StringFlag{
			Name:  "output,o",
			Value: "decoded.bin",
			Usage: "file to receive the reconstructed payload",
		},
		cli.IntFlag{
			Name:  "blocksize,b",
			Value: 1024,
			Usage: "source block size B, in bytes; must match the encoder",
		},
		cli.IntFlag{
			Name:  "blockcount,k",
			Usage: "source block count k; must match the encoder",
		},
		cli.IntFlag{
			Name:  "runid,r",
			Usage: "session run_id; must match the encoder",
		},
		cli.IntFlag{
			Name:  "originallen,l",
			Usage: "unpadded payload length reported by the encoder",
		},
		cli.BoolTFlag{
			Name:  "decompress",
			Usage: "snappy-decompress the reconstructed payload (default on)",
		},
		cli.StringFlag{
			Name:  "statlog",
			Usage: "optional CSV path for periodic decode-progress rows",
		},
		cli.IntFlag{
			Name:  "statperiod",
			Value: 5,
			Usage: "statlog sampling interval, in seconds",
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
		Packets:     c.String("packets"),
		Output:      c.String("output"),
		BlockSize:   c.Int("blocksize"),
		BlockCount:  c.Int("blockcount"),
		RunID:       uint32(c.Int("runid")),
		OriginalLen: c.Int("originallen"),
		Decompress:  c.BoolT("decompress"),
		StatLog:     c.String("statlog"),
		StatPeriod:  c.Int("statperiod"),
	}
	if path := c.String("config"); path != "" {
		if err := parseJSONConfig(&cfg, path); err != nil {
			return errors.Wrap(err, "load config")
		}
	}
	if cfg.BlockCount <= 0 {
		return errors.New("--blockcount is required and must match the encoder")
	}

	pkts, err := sink.ReadPackets(cfg.Packets)
	if err != nil {
		return errors.Wrap(err, "read packets")
	}

	dec := fountain.NewDecoder(cfg.BlockCount, cfg.BlockSize, cfg.RunID)
	atomic.StoreInt32(&liveStats.blockCount, int32(dec.BlockCount()))

	stop := make(chan struct{})
	go statlog.Run(cfg.StatLog, cfg.StatPeriod, func() statlog.Snapshot {
		return statlog.Snapshot{
			DecodedCount:     int(atomic.LoadInt64(&liveStats.decoded)),
			BlockCount:       int(atomic.LoadInt32(&liveStats.blockCount)),
			PendingEquations: int(atomic.LoadInt64(&liveStats.pending)),
			PacketsAccepted:  int(atomic.LoadInt64(&liveStats.accepted)),
		}
	}, stop)
	defer close(stop)

	for _, pkt := range pkts {
		dec.PushPacket(pkt)
		atomic.StoreInt64(&liveStats.accepted, int64(dec.SeenCount()))
		atomic.StoreInt64(&liveStats.decoded, int64(dec.DecodedCount()))
		atomic.StoreInt64(&liveStats.pending, int64(dec.PendingEquations()))
		if dec.IsDone() {
			break
		}
	}

	if !dec.IsDone() {
		color.Red("decode incomplete: %d/%d blocks recovered from %d packets", dec.DecodedCount(), dec.BlockCount(), len(pkts))
		return errors.New("insufficient packets to reconstruct payload")
	}

	result := dec.GetResult(cfg.OriginalLen)
	if cfg.Decompress {
		decoded, err := snappy.Decode(nil, result)
		if err != nil {
			return errors.Wrap(err, "decompress payload")
		}
		result = decoded
	}

	if err := os.WriteFile(cfg.Output, result, 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}

	color.Green("decoded %d bytes (k=%d, B=%d, run_id=%#x) from %d/%d packets into %s",
		len(result), dec.BlockCount(), cfg.BlockSize, cfg.RunID, dec.SeenCount(), len(pkts), cfg.Output)
	return nil
}
