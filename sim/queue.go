// Implements the JobQueue, the scheduling structure the dispatch loop pops
// runnable processes from.

package sim

// Job is a scheduling tuple. Priority meaning depends on the policy: RR
// keeps every job at 0, SRTF uses the remaining-event estimate (positive on
// initial load, negated on re-enqueue).
type Job struct {
	PID      uint32
	Priority int
}

// JobQueue implements heap.Interface as a max-heap on Job.Priority.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type JobQueue []Job

func (jq JobQueue) Len() int           { return len(jq) }
func (jq JobQueue) Less(i, j int) bool { return jq[i].Priority > jq[j].Priority }
func (jq JobQueue) Swap(i, j int)      { jq[i], jq[j] = jq[j], jq[i] }

func (jq *JobQueue) Push(x any) {
	*jq = append(*jq, x.(Job))
}

func (jq *JobQueue) Pop() any {
	old := *jq
	n := len(old)
	item := old[n-1]
	*jq = old[0 : n-1]
	return item
}
