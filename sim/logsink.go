package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogSink is the serialized destination for simulation output. Depending on
// configuration it writes to the monitor, a log file, or both. Every line
// goes through one mutex so lines from the dispatch thread, the loader and
// I/O workers never interleave.
type LogSink struct {
	mu      sync.Mutex
	writers []io.Writer
	file    *os.File
}

// NewLogSink opens the sink described by the configuration.
func NewLogSink(cfg *SimulationConfig) (*LogSink, error) {
	s := &LogSink{}
	if cfg.LogToMonitor {
		s.writers = append(s.writers, os.Stdout)
	}
	if cfg.LogToFile {
		f, err := os.Create(cfg.LogFilePath)
		if err != nil {
			return nil, simErrorf(ErrConfigIO, "unable to open log file: %s", cfg.LogFilePath)
		}
		s.file = f
		s.writers = append(s.writers, f)
	}
	return s, nil
}

// newSinkWriter wraps arbitrary writers, used by tests to capture output.
func newSinkWriter(writers ...io.Writer) *LogSink {
	return &LogSink{writers: writers}
}

// Printf writes one formatted message to every destination.
func (s *LogSink) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	for _, w := range s.writers {
		io.WriteString(w, msg)
	}
}

// Close releases the file destination if one is open.
func (s *LogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}
