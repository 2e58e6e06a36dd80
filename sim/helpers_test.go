package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// requireSimError asserts that err is a *SimError of the given kind.
func requireSimError(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	var simErr *SimError
	require.ErrorAs(t, err, &simErr)
	require.Equal(t, kind, simErr.Kind, "error kind: got %s, want %s", simErr.Kind, kind)
}

// testConfig returns a small, fast configuration: every cycle is 1 ms, one
// device per class, 1 kbyte blocks over 8 kbytes of memory, RR with a 50 ms
// quantum, and no log destinations.
func testConfig() *SimulationConfig {
	return &SimulationConfig{
		Version:          2.0,
		MetadataPath:     "programs.mdf",
		ProcessorCycleMS: 1,
		MonitorCycleMS:   1,
		HardDriveCycleMS: 1,
		PrinterCycleMS:   1,
		KeyboardCycleMS:  1,
		MouseCycleMS:     1,
		SpeakerCycleMS:   1,
		MemoryCycleMS:    1,
		PrinterCount:     1,
		HardDriveCount:   1,
		SpeakerCount:     1,
		QuantumMS:        50,
		BlockSizeKB:      1,
		SystemMemoryKB:   8,
		Scheduling:       SchedRR,
	}
}

// newTestSimulation wires a simulation around the given applications with
// its log sink captured in the returned buffer.
func newTestSimulation(t *testing.T, cfg *SimulationConfig, apps []Application) (*Simulation, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	s, err := newSimulation(cfg, apps, newSinkWriter(buf))
	require.NoError(t, err)
	return s, buf
}

// mustParseApps parses a metadata stream that the test expects to be valid.
func mustParseApps(t *testing.T, stream string) []Application {
	t.Helper()
	apps, err := ParseMetadataStream(stream)
	require.NoError(t, err)
	return apps
}
