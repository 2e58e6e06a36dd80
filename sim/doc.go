// Package sim provides the core engine of the preemptive OS scheduling and
// resource-management simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - pcb.go: Process lifecycle (START -> READY -> RUNNING -> WAITING -> EXIT) and the process table
//   - event.go: Metadata event types that become per-process work
//   - simulator.go: The dispatch loop, the job loader, and the quantum pulse
//
// # Architecture
//
// A Simulation is wired from a configuration file and a program metadata
// file. Configuration resolves into a SimulationConfig (config.go), metadata
// parses into Applications (metadata.go), and the loader instantiates those
// applications into processes in timed ingress waves. The dispatch loop pops
// processes from a priority job queue (queue.go, priority.go) and runs their
// events against the memory allocator (memory.go) and the device inventory
// (resource.go).
//
// # Concurrency
//
// Three kinds of goroutines coordinate through the simulation mutex and a
// lock-free interrupt word (clock.go): the dispatch loop, the job loader,
// and, under round-robin scheduling, the quantum pulse. Device I/O runs on
// fire-and-forget workers that move the owning process WAITING -> READY when
// the device time has elapsed.
//
// All simulation output goes through the serialized LogSink (logsink.go)
// as timestamped lines; run-level counters aggregate in Metrics
// (metrics.go).
package sim
