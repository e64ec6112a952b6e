package utils

import (
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
)

func GetMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

// IsNan reports a NaN in a coordinate, a point or a point list
func IsNan(A any) bool {
	switch v := A.(type) {
	case float64:
		return math.IsNaN(v)
	case []float64:
		for _, f := range v {
			if math.IsNaN(f) {
				return true
			}
		}
	case r3.Vec:
		return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
	case []r3.Vec:
		for _, p := range v {
			if IsNan(p) {
				return true
			}
		}
	}
	return false
}
