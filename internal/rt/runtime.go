package rt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"latrt/internal/trace"
)

// DefaultMaxToken is the longest token ReadString returns; longer input is
// split across calls.
const DefaultMaxToken = 1023

// Unlimited disables the ReadString token cap when used as Config.MaxToken.
const Unlimited = -1

// Config wires a Runtime to its streams and hooks. Zero fields take the
// process defaults.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)

	// Alloc produces result buffers for ReadString and ConcatStrings.
	Alloc Allocator

	// MaxToken caps ReadString tokens: 0 means DefaultMaxToken, Unlimited grows
	// the staging buffer as needed.
	MaxToken int

	// Program prefixes the fatal diagnostic. Defaults to the executable name.
	Program string

	Tracer   trace.Tracer
	Recorder *Recorder
}

// Runtime implements the Latte primitives over one set of standard streams.
// It is not safe for concurrent use.
type Runtime struct {
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	exit    func(int)
	alloc   Allocator
	limit   int
	program string
	tracer  trace.Tracer
	rec     *Recorder

	stage   []byte
	scratch []byte
}

// New creates a runtime from cfg.
func New(cfg Config) *Runtime {
	r := &Runtime{
		out:     cfg.Stdout,
		errOut:  cfg.Stderr,
		exit:    cfg.Exit,
		alloc:   cfg.Alloc,
		limit:   cfg.MaxToken,
		program: cfg.Program,
		tracer:  cfg.Tracer,
		rec:     cfg.Recorder,
	}
	in := cfg.Stdin
	if in == nil {
		in = os.Stdin
	}
	if br, ok := in.(*bufio.Reader); ok {
		r.in = br
	} else {
		r.in = bufio.NewReader(in)
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.errOut == nil {
		r.errOut = os.Stderr
	}
	if r.exit == nil {
		r.exit = os.Exit
	}
	if r.alloc == nil {
		r.alloc = HeapAlloc
	}
	if r.limit == 0 {
		r.limit = DefaultMaxToken
	}
	if r.program == "" {
		r.program = filepath.Base(os.Args[0])
	}
	if r.tracer == nil {
		r.tracer = trace.Nop
	}
	capacity := r.limit + 1
	if r.limit < 0 {
		capacity = DefaultMaxToken + 1
	}
	r.stage = make([]byte, 0, capacity)
	r.scratch = make([]byte, 0, 16)
	return r
}

var (
	defaultOnce sync.Once
	defaultRT   *Runtime
)

// Default returns the process-wide runtime over os.Stdin, os.Stdout and os.Stderr.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRT = New(Config{})
	})
	return defaultRT
}

// SetAllocator replaces the allocator used for result buffers.
func (r *Runtime) SetAllocator(alloc Allocator) {
	if alloc == nil {
		alloc = HeapAlloc
	}
	r.alloc = alloc
}

// SetTracer replaces the tracer that receives call and fatal events.
func (r *Runtime) SetTracer(t trace.Tracer) {
	if t == nil {
		t = trace.Nop
	}
	r.tracer = t
}

// PrintInt writes v in decimal followed by a newline.
func (r *Runtime) PrintInt(v int32) {
	r.scratch = strconv.AppendInt(r.scratch[:0], int64(v), 10)
	r.scratch = append(r.scratch, '\n')
	_, _ = r.out.Write(r.scratch) //nolint:errcheck // stream errors are not surfaced
	if r.traced() {
		r.note("printInt", LogValue{}, LogInt(int64(v)))
	}
}

// PrintString writes the content of t followed by a newline.
func (r *Runtime) PrintString(t Text) {
	content := t.Content()
	r.scratch = append(r.scratch[:0], content...)
	r.scratch = append(r.scratch, '\n')
	_, _ = r.out.Write(r.scratch) //nolint:errcheck // stream errors are not surfaced
	if r.traced() {
		r.note("printString", LogValue{}, LogString(content))
	}
}

// ReadInt reads one signed decimal integer from standard input. It does not
// return if no integer is available.
func (r *Runtime) ReadInt() int32 {
	v, code, ok := scanInt(r.in)
	if !ok {
		r.fail("readInt", code)
	}
	if r.traced() {
		r.note("readInt", LogInt(int64(v)))
	}
	return v
}

// ReadString reads one whitespace-delimited token from standard input into a
// fresh, exactly-sized Text. It does not return at end of input.
func (r *Runtime) ReadString() Text {
	var ok bool
	r.stage, ok = scanToken(r.in, r.stage[:0], r.limit)
	if !ok {
		r.fail("readString", FatalMissingToken)
	}
	trace.Point(r.tracer, trace.ScopeScan, "stage", strconv.Itoa(len(r.stage))+" bytes")
	t := NewText(r.alloc, r.stage)
	if r.traced() {
		r.note("readString", LogString(r.stage))
	}
	return t
}

// ConcatStrings returns a new Text holding a followed by b.
func (r *Runtime) ConcatStrings(a, b Text) Text {
	t := Concat(r.alloc, a, b)
	if r.traced() {
		r.note("concatStrings", LogString(t.Content()), LogString(a.Content()), LogString(b.Content()))
	}
	return t
}

// CompareStringsEqual reports whether a and b have identical content.
func (r *Runtime) CompareStringsEqual(a, b Text) bool {
	eq := Equal(a, b)
	if r.traced() {
		r.note("compareStringsEqual", LogBool(eq), LogString(a.Content()), LogString(b.Content()))
	}
	return eq
}

// Fatal reports a runtime error and terminates the process. It never returns.
func (r *Runtime) Fatal(code FatalCode) {
	r.fail("error", code)
}

func (r *Runtime) fail(op string, code FatalCode) {
	if r.rec != nil {
		r.rec.Record(LogEvent{Op: op, Fatal: code.String()})
		_ = r.rec.Close() //nolint:errcheck // the process is going down
	}
	trace.Fatal(r.tracer, trace.ScopeCall, op, code.String())
	if ring := trace.RingOf(r.tracer); ring != nil {
		fmt.Fprintf(r.errOut, "trace: last events before %s\n", code)
		_ = ring.Dump(r.errOut, trace.FormatText) //nolint:errcheck
	}
	_ = r.tracer.Flush() //nolint:errcheck

	fmt.Fprintf(r.errOut, "%s: %s\n", r.program, Diagnostic)
	r.exit(ExitStatus)
	panic(&FatalError{Code: code, Op: op})
}

func (r *Runtime) traced() bool {
	return r.rec != nil || r.tracer.Enabled()
}

// note records a completed call; an empty ret means the call returns nothing.
func (r *Runtime) note(op string, ret LogValue, args ...LogValue) {
	ev := LogEvent{Op: op, Args: args}
	if ret.Type != "" {
		ev.Ret = &ret
	}
	if r.rec != nil {
		r.rec.Record(ev)
	}
	trace.Point(r.tracer, trace.ScopeCall, op, ev.Summary())
}
