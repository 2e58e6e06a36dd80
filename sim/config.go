// Typed option registry and simulator configuration loader.
//
// The registry stores options by their literal config-file label so the
// loader can set values directly from parsed "key : value" lines. Resolved,
// validated values are copied into a SimulationConfig before the simulation
// starts; nothing reads the registry after that.

package sim

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// OptionType is the value kind of a registered config option.
type OptionType int

const (
	OptionInt OptionType = iota
	OptionDouble
	OptionString
)

type configOption struct {
	typ         OptionType
	initialized bool

	valInt    int64
	valDouble float64
	valString string
}

// ConfigStore is a typed option registry keyed by config-file label.
// Labels keep their inner whitespace ("Processor cycle time (msec)").
type ConfigStore struct {
	options map[string]*configOption
	labels  []string // registration order, for deterministic reporting
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{options: make(map[string]*configOption)}
}

// AddOption registers a new option. It reports false if the label is
// already registered.
func (c *ConfigStore) AddOption(label string, typ OptionType) bool {
	if _, ok := c.options[label]; ok {
		return false
	}
	c.options[label] = &configOption{typ: typ}
	c.labels = append(c.labels, label)
	return true
}

// Labels returns all registered labels in registration order.
func (c *ConfigStore) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Initialized reports whether a value has been set for the option.
// Unknown labels are a programmer error.
func (c *ConfigStore) Initialized(label string) bool {
	return c.mustOption(label).initialized
}

// SetFromString sets an option from its raw config-file value, converting
// to the option's registered type.
func (c *ConfigStore) SetFromString(label, raw string) error {
	opt, ok := c.options[label]
	if !ok {
		return simErrorf(ErrConfigFormat, "unrecognized config option %q", label)
	}
	switch opt.typ {
	case OptionInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return simErrorf(ErrConfigFormat, "invalid integer %q for config option %q", raw, label)
		}
		opt.valInt = v
	case OptionDouble:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return simErrorf(ErrConfigFormat, "invalid number %q for config option %q", raw, label)
		}
		opt.valDouble = v
	}
	opt.valString = raw
	opt.initialized = true
	return nil
}

// SetInt sets an integer option directly (defaults and derived values).
func (c *ConfigStore) SetInt(label string, v int64) {
	opt := c.mustOption(label)
	if opt.typ != OptionInt {
		panic(fmt.Sprintf("ConfigStore.SetInt: option %q is not an int", label))
	}
	opt.valInt = v
	opt.valString = strconv.FormatInt(v, 10)
	opt.initialized = true
}

// SetString sets a string option directly.
func (c *ConfigStore) SetString(label, v string) {
	opt := c.mustOption(label)
	if opt.typ != OptionString {
		panic(fmt.Sprintf("ConfigStore.SetString: option %q is not a string", label))
	}
	opt.valString = v
	opt.initialized = true
}

// Int returns the value of an initialized integer option.
func (c *ConfigStore) Int(label string) int64 {
	opt := c.mustInitialized(label)
	if opt.typ != OptionInt {
		panic(fmt.Sprintf("ConfigStore.Int: option %q is not an int", label))
	}
	return opt.valInt
}

// Double returns the value of an initialized double option.
func (c *ConfigStore) Double(label string) float64 {
	opt := c.mustInitialized(label)
	if opt.typ != OptionDouble {
		panic(fmt.Sprintf("ConfigStore.Double: option %q is not a double", label))
	}
	return opt.valDouble
}

// String returns the raw string value of an initialized option of any type.
func (c *ConfigStore) String(label string) string {
	return c.mustInitialized(label).valString
}

func (c *ConfigStore) mustOption(label string) *configOption {
	opt, ok := c.options[label]
	if !ok {
		panic(fmt.Sprintf("ConfigStore: unknown config option %q", label))
	}
	return opt
}

func (c *ConfigStore) mustInitialized(label string) *configOption {
	opt := c.mustOption(label)
	if !opt.initialized {
		panic(fmt.Sprintf("ConfigStore: config option %q read before being set", label))
	}
	return opt
}

// Config-file labels. Kept as constants so the registry, the loader and the
// resolver all agree on spelling.
const (
	keyVersion           = "Version/Phase"
	keyFilePath          = "File Path"
	keyProcessorCycle    = "Processor cycle time (msec)"
	keyMonitorCycle      = "Monitor display time (msec)"
	keyHardDriveCycle    = "Hard drive cycle time (msec)"
	keyPrinterCycle      = "Printer cycle time (msec)"
	keyKeyboardCycle     = "Keyboard cycle time (msec)"
	keyMouseCycle        = "Mouse cycle time (msec)"
	keySpeakerCycle      = "Speaker cycle time (msec)"
	keyMemoryCycle       = "Memory cycle time (msec)"
	keyLog               = "Log"
	keyLogFilePath       = "Log File Path"
	keyPrinterQuantity   = "Printer quantity"
	keyHardDriveQuantity = "Hard drive quantity"
	keySpeakerQuantity   = "Speaker quantity"
	keyQuantum           = "Quantum Number (msec)"
	keyMemoryBlockSize   = "Memory block size (kbytes)"
	keySystemMemoryKB    = "System memory (kbytes)"
	keySystemMemoryMB    = "System memory (Mbytes)"
	keySystemMemoryGB    = "System memory (Gbytes)"
	keySchedulingCode    = "CPU Scheduling Code"
)

// newSimulationOptions builds the registry of every recognized simulator
// option, with the same defaults the simulator has always shipped.
func newSimulationOptions() *ConfigStore {
	c := NewConfigStore()

	c.AddOption(keyVersion, OptionDouble)
	c.AddOption(keyFilePath, OptionString)
	c.AddOption(keyProcessorCycle, OptionInt)
	c.AddOption(keyMonitorCycle, OptionInt)
	c.AddOption(keyHardDriveCycle, OptionInt)
	c.AddOption(keyPrinterCycle, OptionInt)
	c.AddOption(keyKeyboardCycle, OptionInt)
	c.AddOption(keyMouseCycle, OptionInt)
	c.AddOption(keySpeakerCycle, OptionInt)
	c.AddOption(keyMemoryCycle, OptionInt)
	c.AddOption(keyLog, OptionString)
	c.AddOption(keyLogFilePath, OptionString)
	c.AddOption(keyPrinterQuantity, OptionInt)
	c.AddOption(keyHardDriveQuantity, OptionInt)
	c.AddOption(keySpeakerQuantity, OptionInt)
	c.AddOption(keyQuantum, OptionInt)
	c.AddOption(keyMemoryBlockSize, OptionInt)
	c.AddOption(keySystemMemoryKB, OptionInt)
	c.AddOption(keySystemMemoryMB, OptionInt)
	c.AddOption(keySystemMemoryGB, OptionInt)
	c.AddOption(keySchedulingCode, OptionString)

	c.SetInt(keyMouseCycle, 1)
	c.SetInt(keySpeakerCycle, 1)
	c.SetInt(keySystemMemoryMB, 0)
	c.SetInt(keySystemMemoryGB, 0)
	c.SetInt(keySpeakerQuantity, 1)
	c.SetInt(keyHardDriveQuantity, 1)

	return c
}

const (
	configHeader = "Start Simulator Configuration File"
	configFooter = "End Simulator Configuration File"
)

var configLineRe = regexp.MustCompile(`^\s*([\S\t ]*?)\s*:\s*([\S\t ]+?)\s*$`)

// loadConfigFile parses the simulator configuration file into the registry.
// Lines outside the header/footer bracket are ignored; blank lines inside it
// are allowed.
func loadConfigFile(c *ConfigStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return simErrorf(ErrConfigIO, "unable to open config file: %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	foundHeader := false
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == configHeader {
			foundHeader = true
			break
		}
	}
	if !foundHeader {
		return simErrorf(ErrConfigFormat, "config header is missing")
	}

	foundFooter := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == configFooter {
			foundFooter = true
			break
		}
		if line == "" {
			continue
		}
		m := configLineRe.FindStringSubmatch(line)
		if m == nil {
			return simErrorf(ErrConfigFormat, "unable to parse config line: %s", line)
		}
		key, val := m[1], m[2]
		if err := c.SetFromString(key, val); err != nil {
			return err
		}

		// Larger memory units promote into the kbytes option. The historical
		// multipliers are 10e3 and 10e6, not powers of 1000.
		switch key {
		case keySystemMemoryMB:
			c.SetInt(keySystemMemoryKB, c.Int(keySystemMemoryMB)*10_000)
		case keySystemMemoryGB:
			c.SetInt(keySystemMemoryKB, c.Int(keySystemMemoryGB)*10_000_000)
		}
	}
	if err := scanner.Err(); err != nil {
		return simErrorf(ErrConfigIO, "unable to read config file: %v", err)
	}
	if !foundFooter {
		return simErrorf(ErrConfigFormat, "config footer is missing")
	}
	return nil
}

// SchedulingCode selects the dispatch priority policy.
type SchedulingCode int

const (
	SchedRR SchedulingCode = iota
	SchedSRTF
)

func (s SchedulingCode) String() string {
	if s == SchedRR {
		return "RR"
	}
	return "SRTF"
}

// SimulationConfig holds the resolved, validated configuration the
// simulation runs with.
type SimulationConfig struct {
	Version      float64
	MetadataPath string

	ProcessorCycleMS int64
	MonitorCycleMS   int64
	HardDriveCycleMS int64
	PrinterCycleMS   int64
	KeyboardCycleMS  int64
	MouseCycleMS     int64
	SpeakerCycleMS   int64
	MemoryCycleMS    int64

	LogToMonitor bool
	LogToFile    bool
	LogFilePath  string

	PrinterCount   int
	HardDriveCount int
	SpeakerCount   int

	QuantumMS      int64
	BlockSizeKB    int64
	SystemMemoryKB int64

	Scheduling SchedulingCode
}

// resolveConfig validates the registry contents and produces the typed
// configuration. Every registered option must have been initialized, either
// from the file or from a default.
func resolveConfig(c *ConfigStore) (*SimulationConfig, error) {
	for _, label := range c.Labels() {
		if !c.Initialized(label) {
			return nil, simErrorf(ErrConfigMissing, "%q config option is not initialized", label)
		}
	}

	for _, label := range []string{
		keyProcessorCycle, keyMonitorCycle, keyHardDriveCycle, keyPrinterCycle,
		keyKeyboardCycle, keyMouseCycle, keySpeakerCycle, keyMemoryCycle,
	} {
		if c.Int(label) < 1 {
			return nil, simErrorf(ErrConfigValueRange, "%s must be at least 1", label)
		}
	}
	if c.Int(keySystemMemoryKB) < 1 {
		return nil, simErrorf(ErrConfigValueRange, "system memory must be at least 1 kbytes")
	}
	if c.Int(keyMemoryBlockSize) < 1 {
		return nil, simErrorf(ErrConfigValueRange, "memory block size must be at least 1 kbytes")
	}

	var scheduling SchedulingCode
	switch code := c.String(keySchedulingCode); code {
	case "RR":
		scheduling = SchedRR
	case "STR", "SRT", "SRTF":
		scheduling = SchedSRTF
	default:
		return nil, simErrorf(ErrConfigValueRange,
			"%q is an invalid scheduling code, possible scheduling codes are RR and SRTF", code)
	}

	cfg := &SimulationConfig{
		Version:          c.Double(keyVersion),
		MetadataPath:     c.String(keyFilePath),
		ProcessorCycleMS: c.Int(keyProcessorCycle),
		MonitorCycleMS:   c.Int(keyMonitorCycle),
		HardDriveCycleMS: c.Int(keyHardDriveCycle),
		PrinterCycleMS:   c.Int(keyPrinterCycle),
		KeyboardCycleMS:  c.Int(keyKeyboardCycle),
		MouseCycleMS:     c.Int(keyMouseCycle),
		SpeakerCycleMS:   c.Int(keySpeakerCycle),
		MemoryCycleMS:    c.Int(keyMemoryCycle),
		LogFilePath:      c.String(keyLogFilePath),
		PrinterCount:     int(c.Int(keyPrinterQuantity)),
		HardDriveCount:   int(c.Int(keyHardDriveQuantity)),
		SpeakerCount:     int(c.Int(keySpeakerQuantity)),
		QuantumMS:        c.Int(keyQuantum),
		BlockSizeKB:      c.Int(keyMemoryBlockSize),
		SystemMemoryKB:   c.Int(keySystemMemoryKB),
		Scheduling:       scheduling,
	}

	switch strings.ToLower(c.String(keyLog)) {
	case "log to both":
		cfg.LogToMonitor = true
		cfg.LogToFile = true
	case "log to file":
		cfg.LogToFile = true
	case "log to monitor":
		cfg.LogToMonitor = true
	default:
		return nil, simErrorf(ErrConfigValueRange, "log config option is invalid: %s", c.String(keyLog))
	}

	return cfg, nil
}

// LoadConfig reads and resolves a simulator configuration file.
func LoadConfig(path string) (*SimulationConfig, error) {
	store := newSimulationOptions()
	if err := loadConfigFile(store, path); err != nil {
		return nil, err
	}
	return resolveConfig(store)
}
