// Package profile provides optional runtime profiling for cmf.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Profiler.Start] returns a no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs, heap, mem: memory allocation profiles
//   - block, mutex: synchronization contention
//   - clock, cpu: wall-clock and CPU time
//   - goroutine, thread: goroutine and OS thread creation
//   - trace: execution trace
//
// # Command line
//
//	cmf --pprof-mode cpu merge --dest jhu.cmf ...
//	cmf --pprof-mode heap --pprof-dir ./profiles compile jhu.cmf
//
// Profiles land in <cache-dir>/cmf/pprof by default, named after the mode
// (cpu.pprof, mem.pprof, ...). Inspect them with:
//
//	go tool pprof -http=: ./cmf cpu.pprof
//
// Tagged builds also import [net/http/pprof], registering its handlers on
// [net/http.DefaultServeMux].
package profile
