package rt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current log schema version - increment when the record layout changes.
const logSchemaVersion = 1

// LogHeader is the first record of every call log.
type LogHeader struct {
	V        int    `msgpack:"v" json:"v"`
	Kind     string `msgpack:"kind" json:"kind"`
	Tool     string `msgpack:"tool" json:"tool"`
	MaxToken int    `msgpack:"max_token" json:"max_token"`
}

// NewLogHeader returns a header for the current schema.
func NewLogHeader(tool string, maxToken int) LogHeader {
	return LogHeader{V: logSchemaVersion, Kind: "header", Tool: tool, MaxToken: maxToken}
}

// LogValue is one typed argument or return value.
type LogValue struct {
	Type string `msgpack:"t" json:"type"`
	Int  int64  `msgpack:"i,omitempty" json:"int,omitempty"`
	Str  string `msgpack:"s,omitempty" json:"string,omitempty"`
	Bool bool   `msgpack:"b,omitempty" json:"bool,omitempty"`
}

// LogInt wraps an integer value.
func LogInt(v int64) LogValue { return LogValue{Type: "int", Int: v} }

// LogString copies b into a string value.
func LogString(b []byte) LogValue { return LogValue{Type: "string", Str: string(b)} }

// LogBool wraps a boolean value.
func LogBool(v bool) LogValue { return LogValue{Type: "boolean", Bool: v} }

// String renders the value the way Latte source would spell it.
func (v LogValue) String() string {
	switch v.Type {
	case "int":
		return strconv.FormatInt(v.Int, 10)
	case "string":
		return strconv.Quote(v.Str)
	case "boolean":
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// LogEvent records one runtime call. Fatal holds the fatal code when the call
// terminated the program.
type LogEvent struct {
	Op    string     `msgpack:"op" json:"op"`
	Args  []LogValue `msgpack:"args,omitempty" json:"args,omitempty"`
	Ret   *LogValue  `msgpack:"ret,omitempty" json:"ret,omitempty"`
	Fatal string     `msgpack:"fatal,omitempty" json:"fatal,omitempty"`
}

// Summary renders "op(args) -> ret" for traces and log listings.
func (e LogEvent) Summary() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteByte('(')
	for i, a := range e.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	if e.Ret != nil {
		sb.WriteString(" -> ")
		sb.WriteString(e.Ret.String())
	}
	if e.Fatal != "" {
		sb.WriteString(" !! ")
		sb.WriteString(e.Fatal)
	}
	return sb.String()
}

// Recorder appends runtime calls to a msgpack stream. The first write error
// is kept and reported by Err; later records are dropped.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	enc    *msgpack.Encoder
	err    error
	closed bool
}

// NewRecorder writes hdr to w and returns a recorder appending to it.
func NewRecorder(w io.Writer, hdr LogHeader) (*Recorder, error) {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&hdr); err != nil {
		return nil, fmt.Errorf("write log header: %w", err)
	}
	return &Recorder{w: w, enc: enc}, nil
}

// Record appends ev to the log.
func (r *Recorder) Record(ev LogEvent) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.closed {
		return
	}
	if err := r.enc.Encode(&ev); err != nil {
		r.err = fmt.Errorf("write log event %q: %w", ev.Op, err)
	}
}

// Err returns the first write error.
func (r *Recorder) Err() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close stops recording and closes the underlying writer if it is a Closer.
// Closing twice is a no-op.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}
	r.closed = true
	if c, ok := r.w.(io.Closer); ok {
		if err := c.Close(); err != nil && r.err == nil {
			r.err = err
		}
	}
	return r.err
}

// ReadLog decodes a call log written by a Recorder.
func ReadLog(rd io.Reader) (LogHeader, []LogEvent, error) {
	dec := msgpack.NewDecoder(rd)
	var hdr LogHeader
	if err := dec.Decode(&hdr); err != nil {
		return LogHeader{}, nil, fmt.Errorf("read log header: %w", err)
	}
	if hdr.Kind != "header" {
		return hdr, nil, fmt.Errorf("missing log header")
	}
	if hdr.V != logSchemaVersion {
		return hdr, nil, fmt.Errorf("unsupported log version %d", hdr.V)
	}
	var events []LogEvent
	for {
		var ev LogEvent
		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return hdr, events, nil
		}
		if err != nil {
			return hdr, events, fmt.Errorf("read log event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}
