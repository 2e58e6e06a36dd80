// Tracks simulation-wide counters for final reporting.

package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Metrics aggregates statistics about a simulation run. Useful for
// evaluating scheduling behavior and debugging without reading the full
// event log. Counters are updated by the dispatch thread and the loader
// under the simulation mutex.
type Metrics struct {
	ProcessesCreated   int `yaml:"processes_created"`
	ProcessesCompleted int `yaml:"processes_completed"`

	ComputePreemptions int `yaml:"compute_preemptions"`
	MemoryAllocations  int `yaml:"memory_allocations"`

	// IODispatches counts granted device acquisitions per device class.
	IODispatches map[string]int `yaml:"io_dispatches"`

	WallTimeSeconds float64 `yaml:"wall_time_seconds"`
}

func NewMetrics() *Metrics {
	return &Metrics{IODispatches: make(map[string]int)}
}

// WriteYAML marshals the metrics to a summary file.
func (m *Metrics) WriteYAML(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metrics summary: %w", err)
	}
	return nil
}
