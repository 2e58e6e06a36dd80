// Program metadata parser.
//
// The metadata file describes the programs the simulation will run as a
// stream of events bracketed by header/footer lines. Events are
// semicolon-separated and the stream ends with a period. Structural S/A
// events delimit the OS span and individual applications; P/I/O/M events
// become process work.

package sim

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	metadataHeader = "Start Program Meta-Data Code:"
	metadataFooter = "End Program Meta-Data Code."
)

var metadataEventRe = regexp.MustCompile(`^\s*([A-Z])\s*\(\s*([a-z\s]*)\s*\)\s*(\d+)\s*$`)

// validDescriptors whitelists the descriptor set for each event code.
var validDescriptors = map[byte][]string{
	CodeOS:          {"start", "end"},
	CodeApplication: {"start", "end"},
	CodeProcessor:   {"run"},
	CodeInput:       {"hard drive", "keyboard", "mouse"},
	CodeOutput:      {"hard drive", "monitor", "speaker", "printer"},
	CodeMemory:      {"block", "allocate"},
}

// metadataBuilder is the semantic state machine that turns a validated
// event stream into applications. Exactly one OS span may be open, A spans
// may not nest, and work events are only legal inside an A span.
type metadataBuilder struct {
	osRunning    bool
	currentApp   Application
	inApp        bool
	applications []Application
}

func (b *metadataBuilder) add(ev SimEvent) error {
	descriptors, ok := validDescriptors[ev.Code]
	if !ok {
		return simErrorf(ErrMetadataSemantic, "%s unknown event code for meta-data event", ev)
	}
	valid := false
	for _, d := range descriptors {
		if d == ev.Descriptor {
			valid = true
			break
		}
	}
	if !valid {
		return simErrorf(ErrMetadataSemantic, "%s invalid descriptor for meta-data event", ev)
	}
	if ev.Cycles < 0 {
		return simErrorf(ErrMetadataSemantic, "%s invalid cycles for meta-data event", ev)
	}

	switch ev.Code {
	case CodeOS:
		if ev.Descriptor == "start" && b.osRunning {
			return simErrorf(ErrMetadataSemantic, "%s attempt to start OS while OS is already running", ev)
		}
		if ev.Descriptor == "end" && !b.osRunning {
			return simErrorf(ErrMetadataSemantic, "%s attempt to stop OS while OS is already stopped", ev)
		}
		b.osRunning = ev.Descriptor == "start"
	case CodeApplication:
		if !b.osRunning {
			return simErrorf(ErrMetadataSemantic, "%s attempt to %s application without OS", ev, ev.Descriptor)
		}
		if ev.Descriptor == "start" {
			if b.inApp {
				return simErrorf(ErrMetadataSemantic, "%s attempt to start new application within running application", ev)
			}
			b.inApp = true
			b.currentApp = nil
		} else {
			if !b.inApp {
				return simErrorf(ErrMetadataSemantic, "%s attempt to stop non-existing application", ev)
			}
			b.applications = append(b.applications, b.currentApp)
			b.inApp = false
			b.currentApp = nil
		}
	default:
		if !b.inApp {
			return simErrorf(ErrMetadataSemantic, "%s attempt to execute outside of application", ev)
		}
		b.currentApp = append(b.currentApp, ev)
	}
	return nil
}

func (b *metadataBuilder) finish() ([]Application, error) {
	if b.inApp {
		return nil, simErrorf(ErrMetadataSemantic, "missing meta-data to end last process")
	}
	if b.osRunning {
		return nil, simErrorf(ErrMetadataSemantic, "missing meta-data to end OS")
	}
	return b.applications, nil
}

// ParseMetadata reads a program metadata file and returns its applications
// in stream order.
func ParseMetadata(path string) ([]Application, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simErrorf(ErrConfigIO, "unable to open meta-data file: %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	foundHeader := false
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == metadataHeader {
			foundHeader = true
			break
		}
	}
	if !foundHeader {
		return nil, simErrorf(ErrMetadataSyntax, "meta-data header is missing")
	}

	var body strings.Builder
	foundFooter := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == metadataFooter {
			foundFooter = true
			break
		}
		body.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, simErrorf(ErrConfigIO, "unable to read meta-data file: %v", err)
	}
	if !foundFooter {
		return nil, simErrorf(ErrMetadataSyntax, "meta-data footer is missing")
	}

	return ParseMetadataStream(body.String())
}

// ParseMetadataStream parses the body of a metadata file (the text between
// header and footer, with newlines already stripped).
func ParseMetadataStream(stream string) ([]Application, error) {
	if !strings.HasSuffix(stream, ".") {
		return nil, simErrorf(ErrMetadataSyntax, "meta-data is missing period at the end of events")
	}
	stream = strings.TrimSuffix(stream, ".")

	builder := &metadataBuilder{}
	for _, token := range strings.Split(stream, ";") {
		m := metadataEventRe.FindStringSubmatch(token)
		if m == nil {
			return nil, simErrorf(ErrMetadataSyntax, "unable to parse following event: %s", token)
		}
		cycles, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return nil, simErrorf(ErrMetadataSyntax, "unable to parse cycles of event: %s", token)
		}
		ev := SimEvent{Code: m[1][0], Descriptor: m[2], Cycles: cycles}
		if err := builder.add(ev); err != nil {
			return nil, err
		}
	}
	return builder.finish()
}
