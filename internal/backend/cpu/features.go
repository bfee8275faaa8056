package cpu

import "github.com/klauspost/cpuid/v2"

// matmulBlockDim picks the cache-blocking dimension for matmul from the
// host CPU profile. Wider vector units amortize larger blocks; the
// fallback suits the 32 KiB L1d found on most targets.
func matmulBlockDim() int {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return 128
	case cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.ASIMD):
		return 64
	default:
		return 32
	}
}
