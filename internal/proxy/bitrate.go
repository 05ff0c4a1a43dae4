package proxy

import "math"

// MaxBitrates caps the number of bitrates this proxy remembers from a
// manifest, per MAX_BITRATES_NUM in original_source/src/proxy/bitrate.h.
const MaxBitrates = 32

// lowestBitrate returns the smallest entry in bitrates, per lowest_bitrate
// in original_source/src/proxy/bitrate.c. Callers must not pass an empty
// slice; the bitrate ladder is always primed by the manifest bootstrap
// before any fragment request can occur (spec.md §4.6).
func lowestBitrate(bitrates []int) int {
	lowest := bitrates[0]
	for _, b := range bitrates {
		if b < lowest {
			lowest = b
		}
	}
	return lowest
}

// highestBitrateUnder returns the highest advertised bitrate <= target.
// It starts its candidate at the lowest advertised bitrate and only raises
// it for a bitrate that is both <= target and greater than the current
// candidate — the same loop shape as highest_bitrate_under in
// original_source/src/proxy/bitrate.c, so a target below every advertised
// bitrate falls back to the lowest one by construction, not a separate
// branch, and an unsorted bitrates slice is handled identically.
func highestBitrateUnder(bitrates []int, target int) int {
	highest := lowestBitrate(bitrates)
	for _, b := range bitrates {
		if b <= target && b > highest {
			highest = b
		}
	}
	return highest
}

// chooseBitrate implements choose_bitrate in
// original_source/src/proxy/bitrate.c: target 2/3 of the current EWMA
// throughput (bits/sec), converted to the manifest's Kbps units, per
// spec.md §4.9.
func (svc *Service) chooseBitrate() int {
	target := 2 * (svc.throughputT / 3)
	targetKbps := int(target / 1000)
	return highestBitrateUnder(svc.bitrates, targetKbps)
}

// instantaneousThroughput computes bits/sec from a fragment's body size and
// elapsed microseconds, per calculate_throughput in
// original_source/src/proxy/bitrate.c. dtMicros is clamped to 1 to avoid
// division by zero, matching the C source's "if (time_spent == 0)" guard.
func instantaneousThroughput(fragSize int, dtMicros int64) int64 {
	if dtMicros <= 0 {
		dtMicros = 1
	}
	return int64(math.Floor(float64(fragSize*8) / float64(dtMicros) * 1_000_000))
}

// ewma implements calculate_moving_average in
// original_source/src/proxy/bitrate.c: T_new = floor(alpha*inst + (1-alpha)*T_prev).
func ewma(alpha float64, inst, prev int64) int64 {
	return int64(math.Floor(alpha*float64(inst) + (1-alpha)*float64(prev)))
}
