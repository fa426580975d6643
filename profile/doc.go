// Package profile provides optional runtime profiling for docxform.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Start] returns a no-op [Stopper] and [Modes] is empty,
// so callers never need to guard their use of this package.
//
// # Modes
//
// With the tag, the following modes are available through [WithMode]:
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Command-Line Usage
//
//	# Profile a large transformation
//	docxform --pprof-mode cpu transform -c nameplate.json -i plant.xml
//
//	# Inspect the result
//	go tool pprof -http=: ~/.cache/docxform/pprof/cpu.pprof
//
// Importing this package with the tag also registers the [net/http/pprof]
// handlers on the default mux.
package profile
