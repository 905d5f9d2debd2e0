package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// suite workers emit concurrently.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory for the fatal dump
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

func (m StorageMode) streams() bool { return m == ModeStream || m == ModeBoth }
func (m StorageMode) rings() bool { return m == ModeRing || m == ModeBoth }

// ParseMode converts a flag value to a StorageMode.
func ParseMode(s string) (StorageMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range modeNames {
		if name == want {
			return mode, nil
		}
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes a tracer. Zero Mode means ModeStream.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto: NDJSON for *.ndjson / *.jsonl, text otherwise
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "" or "-" is stderr
	RingSize   int       // <= 0 means DefaultRingSize
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = ModeStream
	}
	if !mode.streams() && !mode.rings() {
		return nil, fmt.Errorf("unknown storage mode: %v", mode)
	}

	var sinks []Tracer
	if mode.streams() {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, cfg.resolveFormat()))
	}
	if mode.rings() {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

func (cfg Config) resolveFormat() Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// RingOf returns the in-memory ring behind t, or nil if t keeps none.
func RingOf(t Tracer) *RingTracer {
	switch tt := t.(type) {
	case *RingTracer:
		return tt
	case *MultiTracer:
		return tt.Ring()
	default:
		return nil
	}
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
