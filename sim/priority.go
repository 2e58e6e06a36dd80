package sim

// Priority scoring for the job queue. The queue is a max-heap, so larger
// scores dispatch first.
//
// RR keeps every job at zero: the heap degenerates to its internal order
// and the quantum interrupt produces the round-robin slicing. SRTF scores
// by the remaining-event estimate, negated on re-enqueue so that shorter
// queues rise. On initial load the estimate is used unnegated; freshly
// loaded processes therefore dominate the heap for one dispatch cycle.
// That asymmetry is long-standing observable behavior and is kept as is.

// remainingEvents estimates remaining work as the number of events still
// queued on the process. One event counts as one time unit regardless of
// its cycle count.
func (s *Simulation) remainingEvents(pid uint32) int {
	process := s.processes.Get(pid)
	return len(process.EventQueue)
}

// loadPriority scores a process at loader ingress.
func (s *Simulation) loadPriority(pid uint32) int {
	if s.cfg.Scheduling == SchedSRTF {
		return s.remainingEvents(pid)
	}
	return 0
}

// requeuePriority scores a process when the dispatch loop re-enqueues it.
func (s *Simulation) requeuePriority(pid uint32) int {
	if s.cfg.Scheduling == SchedSRTF {
		return -s.remainingEvents(pid)
	}
	return 0
}
