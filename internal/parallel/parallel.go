// Package parallel provides chunked goroutine fan-out for data-parallel
// loops in backend kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how loops are split across goroutines.
type Config struct {
	Enabled      bool // Whether to fan out at all.
	Workers      int  // Number of goroutines to use.
	MinPerWorker int  // Minimum iterations per goroutine; below this, run sequentially.
}

// DefaultConfig sizes the worker pool from the CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		Workers:      n,
		MinPerWorker: 64,
	}
}

// For runs f(i) for i in [0, n), possibly across goroutines.
// Iterations must be independent.
func For(n int, cfg Config, f func(i int)) {
	Ranges(n, cfg, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	})
}

// Ranges splits [0, n) into contiguous chunks and runs f on each chunk,
// possibly across goroutines. Useful when per-chunk setup matters
// (e.g. row blocks in a matmul).
func Ranges(n int, cfg Config, f func(start, end int)) {
	if !cfg.Enabled || n < 2*cfg.MinPerWorker || cfg.Workers <= 1 {
		f(0, n)
		return
	}

	chunk := (n + cfg.Workers - 1) / cfg.Workers
	if chunk < cfg.MinPerWorker {
		chunk = cfg.MinPerWorker
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}
