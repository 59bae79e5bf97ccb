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

// Package fountain implements a rateless, erasure-tolerant fountain code:
// a deterministic degree/source-selection oracle, a streaming encoder that
// emits an unbounded sequence of XOR-combined packets, and an on-line
// belief-propagation decoder that peels recovered blocks out of a pending
// equation graph as packets arrive in any order, with any duplicates or
// drops.
package fountain

import "math"

// PRNG seed constants for the xorshift64 generator. Both endpoints must
// derive the identical seed from (runID, seqNum) for packet_sources to
// agree.
const (
	seedMulRunID  uint64 = 0x9E3779B97F4A7C15
	seedMulSeqNum uint64 = 0x6C62272E07BB0142
	seedFallback  uint64 = 0xCAFEF00DDEADBEEF
)

// Robust Soliton tuning constants. c biases toward a tighter spike at
// degree M; delta bounds the failure probability of the decoding process.
const (
	solitonC     = 0.03
	solitonDelta = 0.5
)

// seedFor derives the xorshift64 starting state for a given run and
// sequence number. A zero result would leave xorshift stuck at zero
// forever, so it is replaced by a fixed non-zero constant.
func seedFor(runID, seqNum uint32) uint64 {
	s := (uint64(runID) * seedMulRunID) ^ (uint64(seqNum) * seedMulSeqNum)
	if s == 0 {
		return seedFallback
	}
	return s
}

// nextState advances the xorshift64 generator (shifts 13, 7, 17) and
// returns the post-update value, which is the sample.
func nextState(state uint64) uint64 {
	state ^= state << 13
	state ^= state >> 7
	state ^= state << 17
	return state
}

// degreeWeights computes the unnormalised Robust Soliton weight vector
// w(1..k) = rho(i) + tau(i), returning it alongside beta = sum(w).
// Summation is ascending in i throughout, per the reproducibility
// requirement on IEEE-754 double arithmetic.
func degreeWeights(k int) (weights []float64, beta float64) {
	kf := float64(k)
	r := solitonC * math.Sqrt(kf) * math.Log(kf/solitonDelta)
	if r < 1 {
		r = 1
	}
	m := int(math.Floor(kf / r))
	if m < 1 {
		m = 1
	}
	if m > k {
		m = k
	}

	weights = make([]float64, k+1) // 1-indexed; weights[0] unused
	for i := 1; i <= k; i++ {
		var rho float64
		if i == 1 {
			rho = 1.0 / kf
		} else {
			rho = 1.0 / (float64(i) * float64(i-1))
		}

		var tau float64
		switch {
		case i < m:
			tau = r / (float64(i) * kf)
		case i == m:
			tau = r * math.Log(r/solitonDelta) / kf
		default:
			tau = 0
		}

		w := rho + tau
		weights[i] = w
		beta += w
	}
	return weights, beta
}

// sampleDegree draws a degree in [1, k] from the Robust Soliton
// distribution, consuming exactly one PRNG sample. k == 1 is handled by
// the caller and never reaches here.
func sampleDegree(state *uint64, k int) int {
	weights, beta := degreeWeights(k)

	*state = nextState(*state)
	u := float64(*state) / (1 << 64)

	cdf := 0.0
	for i := 1; i <= k; i++ {
		cdf += weights[i] / beta
		if cdf >= u {
			return i
		}
	}
	// Floating point rounding may leave the CDF just short of u.
	return k
}

// selectSources performs a partial Fisher-Yates shuffle over [0,k) and
// returns the first degree entries, consuming exactly degree PRNG
// samples.
func selectSources(state *uint64, k, degree int) []int {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for t := 0; t < degree; t++ {
		*state = nextState(*state)
		j := t + int(*state%uint64(k-t))
		idx[t], idx[j] = idx[j], idx[t]
	}
	return idx[:degree]
}

// PacketSources is the deterministic source-selection oracle: given
// (runID, seqNum, k) it returns the same ordered list of distinct block
// indices in [0,k) on any endpoint that calls it with the same
// arguments.
func PacketSources(runID, seqNum uint32, k int) []int {
	if k < 1 {
		k = 1
	}

	state := seedFor(runID, seqNum)

	var degree int
	if k == 1 {
		degree = 1
	} else {
		degree = sampleDegree(&state, k)
		if degree < 1 {
			degree = 1
		}
		if degree > k {
			degree = k
		}
	}

	return selectSources(&state, k, degree)
}
