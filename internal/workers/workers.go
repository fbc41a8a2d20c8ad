// Package workers sizes worker pools for background tasks, respecting
// container CPU limits via GOMAXPROCS.
package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count scaled from the available CPUs. The
// multiplier adjusts for task characteristics (1.0 CPU-bound, 2.0
// I/O-bound); limit caps the result, 0 meaning no cap. The
// THUMBNAIL_WORKERS environment variable overrides the computation.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("THUMBNAIL_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns a worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns a worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}
