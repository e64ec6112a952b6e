//go:build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
)

// countInstructions runs f and returns the CPU instructions it retired
func countInstructions(f func() error) (n uint64, err error) {
	var pv *perf.ProfileValue
	if pv, err = perf.CPUInstructions(f); err != nil {
		return
	}
	return pv.Value, nil
}
