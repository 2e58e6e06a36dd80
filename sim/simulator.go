// sim/simulator.go
//
// The Simulation object owns the whole run: the process table, the job
// queue, the device inventory, the memory allocator, and the three kinds of
// concurrent executors (dispatch loop, job loader, quantum pulse). They
// coordinate through simMu and the interrupt word.

package sim

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	loaderWaves     = 10
	loaderWaveGapMS = 100
)

// Simulation drives a parsed set of applications through the simulated OS.
type Simulation struct {
	cfg   *SimulationConfig
	clock Clock
	sink  *LogSink

	applications []Application
	processes    *ProcessTable
	jobs         JobQueue
	memory       *MemoryAllocator
	// resources is keyed by metadata event descriptor.
	resources map[string]*ResourceIO

	Metrics *Metrics

	// simMu guards the job queue, the process table and the pid counter.
	// The dispatch thread holds it across a burst of job pops; the loader
	// holds it for a whole ingress wave.
	simMu          sync.Mutex
	interrupt      interruptWord
	processCounter uint32
	loaderFinished atomic.Bool
	loaderWG       sync.WaitGroup

	quantumStop atomic.Bool
	quantumWG   sync.WaitGroup
}

// NewSimulation initializes a simulation from a configuration file: loads
// and validates the config, opens the log sink, parses the program
// metadata, and builds the device inventory.
func NewSimulation(configPath string) (*Simulation, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	sink, err := NewLogSink(cfg)
	if err != nil {
		return nil, err
	}
	apps, err := ParseMetadata(cfg.MetadataPath)
	if err != nil {
		sink.Close()
		return nil, err
	}
	s, err := newSimulation(cfg, apps, sink)
	if err != nil {
		sink.Close()
		return nil, err
	}
	return s, nil
}

// newSimulation wires a simulation from already-resolved parts.
func newSimulation(cfg *SimulationConfig, apps []Application, sink *LogSink) (*Simulation, error) {
	s := &Simulation{
		cfg:          cfg,
		sink:         sink,
		applications: apps,
		processes:    NewProcessTable(),
		jobs:         make(JobQueue, 0),
		memory:       NewMemoryAllocator(cfg.SystemMemoryKB, cfg.BlockSizeKB),
		Metrics:      NewMetrics(),
	}

	hdd, err := NewCountedResource(s, DeviceHardDrive, cfg.HardDriveCount, cfg.HardDriveCycleMS)
	if err != nil {
		return nil, err
	}
	printer, err := NewCountedResource(s, DevicePrinter, cfg.PrinterCount, cfg.PrinterCycleMS)
	if err != nil {
		return nil, err
	}
	speaker, err := NewCountedResource(s, DeviceSpeaker, cfg.SpeakerCount, cfg.SpeakerCycleMS)
	if err != nil {
		return nil, err
	}
	s.resources = map[string]*ResourceIO{
		"hard drive": hdd,
		"printer":    printer,
		"speaker":    speaker,
		"monitor":    NewExclusiveResource(s, DeviceMonitor, cfg.MonitorCycleMS),
		"keyboard":   NewExclusiveResource(s, DeviceKeyboard, cfg.KeyboardCycleMS),
		"mouse":      NewExclusiveResource(s, DeviceMouse, cfg.MouseCycleMS),
	}
	return s, nil
}

// Logf writes one timestamped line to the log sink. The timestamp is
// seconds since simulation start with a 6-decimal fraction.
func (s *Simulation) Logf(format string, args ...any) {
	t := s.clock.Seconds()
	s.sink.Printf("%f - %s\n", t, fmt.Sprintf(format, args...))
}

// Process returns the PCB for a pid. Callers outside the dispatch path must
// hold simMu or a pointer captured while holding it.
func (s *Simulation) Process(pid uint32) *PCB {
	return s.processes.Get(pid)
}

// Close releases the log sink.
func (s *Simulation) Close() error {
	return s.sink.Close()
}

// Run executes the simulation: it starts the loader (and, under RR, the
// quantum pulse), then drives the dispatch loop until the loader has
// finished and the job queue has drained.
func (s *Simulation) Run() {
	s.clock.Reset()
	s.Logf("Simulator program starting")

	s.processCounter = 0
	s.loaderFinished.Store(false)
	s.interrupt.bits.Store(0)

	s.loaderWG.Add(1)
	go s.jobLoader()

	if s.cfg.Scheduling == SchedRR {
		s.quantumStop.Store(false)
		s.quantumWG.Add(1)
		go s.quantumPulse()
	}

	for {
		s.simMu.Lock()
		for len(s.jobs) > 0 && !s.interrupt.has(interruptLoader) {
			job := heap.Pop(&s.jobs).(Job)
			process := s.processes.Get(job.PID)

			if process.State() == StateStart {
				process.SetState(StateReady)
			}
			if process.State() == StateReady {
				s.runProcess(job.PID)
			}

			// The process has already observed its preemption; a stale
			// quantum bit would cut the next slice short.
			s.interrupt.clear(interruptQuantum)

			if process.State() != StateExit {
				heap.Push(&s.jobs, Job{PID: job.PID, Priority: s.requeuePriority(job.PID)})
			}
		}
		drained := s.loaderFinished.Load() && len(s.jobs) == 0
		s.simMu.Unlock()
		if drained {
			break
		}
		// Stay off the mutex while the loader runs an ingress wave.
		for s.interrupt.has(interruptLoader) {
		}
	}

	s.loaderWG.Wait()
	s.quantumStop.Store(true)
	s.quantumWG.Wait()

	s.Logf("Simulator program ending")
	s.Metrics.WallTimeSeconds = s.clock.Seconds()
}

// runProcess executes one scheduling slice of a process: events run head
// first until an interrupt bit is raised, the process parks in WAITING on
// granted I/O, or the event queue drains.
func (s *Simulation) runProcess(pid uint32) {
	s.Logf("OS: starting process %d", pid)

	process := s.processes.Get(pid)
	process.SetState(StateRunning)

	for len(process.EventQueue) > 0 {
		event := process.EventQueue[0]
		switch event.Code {
		case CodeProcessor:
			s.handleProc(pid, event)
		case CodeMemory:
			s.handleMem(pid, event)
		case CodeInput, CodeOutput:
			s.handleIO(pid, event)
		}
		if s.interrupt.any() || process.State() == StateWaiting {
			break
		}
	}

	if len(process.EventQueue) == 0 {
		s.Logf("Process %d completed", pid)
		process.SetState(StateExit)
		s.Metrics.ProcessesCompleted++
	}
}

// handleProc runs one slice of a compute event. The busy wait polls the
// interrupt word every iteration; a raised bit stores the unspent budget
// back on the PCB and leaves the event at the head of the queue.
func (s *Simulation) handleProc(pid uint32, event SimEvent) {
	process := s.processes.Get(pid)

	var sliceMS int64
	if process.EventInProgress {
		sliceMS = process.EventTimeRemaining
	} else {
		sliceMS = event.Cycles * s.cfg.ProcessorCycleMS
		s.Logf("Process %d: start processing action", pid)
	}

	remaining := workForInterruptible(sliceMS, &s.interrupt)

	if s.interrupt.any() {
		process.EventInProgress = true
		process.EventTimeRemaining = remaining
		s.Logf("Process %d: interrupt processing action", pid)
		s.Metrics.ComputePreemptions++
	} else {
		s.Logf("Process %d: end processing action", pid)
		process.EventInProgress = false
		process.PopEvent()
	}
	process.SetState(StateReady)
}

// handleMem runs one slice of a memory event. Unlike compute, the wait is
// atomic within the slice: the spin polls only elapsed time, and preemption
// is observed on the slice boundary.
func (s *Simulation) handleMem(pid uint32, event SimEvent) {
	process := s.processes.Get(pid)

	var sliceMS int64
	if process.EventInProgress {
		sliceMS = process.EventTimeRemaining
	} else {
		sliceMS = event.Cycles * s.cfg.MemoryCycleMS
	}

	switch event.Descriptor {
	case "allocate":
		if !process.EventInProgress {
			s.Logf("Process %d: allocating memory", pid)
		}
		workFor(sliceMS)
		if !s.interrupt.any() {
			address := s.memory.Allocate(1)
			s.Logf("Process %d: memory allocated at 0x%08x", pid, address)
			s.Metrics.MemoryAllocations++
		}
	case "block":
		if !process.EventInProgress {
			s.Logf("Process %d: start memory blocking", pid)
		}
		workFor(sliceMS)
		if !s.interrupt.any() {
			s.Logf("Process %d: end memory blocking", pid)
		}
	}

	if s.interrupt.any() {
		s.Logf("Process %d: interrupt processing action", pid)
		process.EventInProgress = true
		process.EventTimeRemaining = 0
	} else {
		process.EventInProgress = false
		process.PopEvent()
	}
	process.SetState(StateReady)
}

// handleIO acquires a device for the head I/O event and parks the process
// in WAITING while the device worker runs. A process whose I/O completed is
// recognized by the in-progress flag: the event is popped and the process
// continues.
func (s *Simulation) handleIO(pid uint32, event SimEvent) {
	process := s.processes.Get(pid)

	if process.EventInProgress {
		// The device worker already moved the process back to READY.
		process.EventInProgress = false
		process.PopEvent()
		process.SetState(StateReady)
		return
	}

	resource := s.resources[event.Descriptor]
	direction := Output
	if event.Code == CodeInput {
		direction = Input
	}

	acquired := false
	for !acquired && !s.interrupt.any() {
		acquired = resource.TryRun(event.Cycles, direction, pid)
	}

	if acquired {
		process.EventInProgress = true
		process.SetState(StateWaiting)
		s.Metrics.IODispatches[event.Descriptor]++
		return
	}
	// Interrupted before a device was granted; the event stays at the head
	// for the next slice.
	process.SetState(StateReady)
}

// jobLoader runs ten ingress waves 100 ms apart, instantiating one process
// per parsed application per wave. The LOADER bit keeps the dispatch loop
// off the mutex while a wave is in flight.
func (s *Simulation) jobLoader() {
	defer s.loaderWG.Done()

	for wave := 0; wave < loaderWaves; wave++ {
		if wave != 0 {
			workFor(loaderWaveGapMS)
		}

		s.interrupt.set(interruptLoader)
		s.simMu.Lock()

		for _, app := range s.applications {
			pid := s.processCounter
			s.processCounter++

			s.Logf("OS: preparing process %d", pid)

			process := NewPCB(pid, app)
			s.processes.Put(pid, process)

			heap.Push(&s.jobs, Job{PID: pid, Priority: s.loadPriority(pid)})
			s.Metrics.ProcessesCreated++
		}
		logrus.Debugf("loader wave %d complete, %d processes total", wave, s.processCounter)

		s.interrupt.clear(interruptLoader)
		s.simMu.Unlock()
	}

	s.loaderFinished.Store(true)
}

// quantumPulse raises the QUANTUM bit every quantum interval until told to
// stop. It only runs under RR scheduling.
func (s *Simulation) quantumPulse() {
	defer s.quantumWG.Done()

	interval := time.Duration(s.cfg.QuantumMS) * time.Millisecond
	for {
		deadline := time.Now().Add(interval)
		for time.Now().Before(deadline) {
			if s.quantumStop.Load() {
				return
			}
		}
		if s.quantumStop.Load() {
			return
		}
		s.interrupt.set(interruptQuantum)
	}
}
