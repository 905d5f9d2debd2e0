package suite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"latrt/internal/observ"
	"latrt/internal/trace"
)

// Outcome classifies a finished case.
type Outcome string

const (
	OutcomePass         Outcome = "ok"
	OutcomeWrongOutput  Outcome = "wrong-output"
	OutcomeCompileError Outcome = "compile-error"
	OutcomeAccepted     Outcome = "accepted" // compile-error case that compiled
	OutcomeExitCode     Outcome = "exit-code"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeHarness      Outcome = "harness-error"
)

// Passed reports whether the outcome counts as a pass.
func (o Outcome) Passed() bool { return o == OutcomePass }

// Result is the verdict for one case.
type Result struct {
	Case     Case
	Outcome  Outcome
	Detail   string
	ExitCode int
	Timing   observ.Report
}

// Options tunes a suite run.
type Options struct {
	// Jobs limits concurrent cases; <= 0 uses [suite].jobs, then GOMAXPROCS.
	Jobs int
	Sink ProgressSink
}

// Run executes cases and returns one result per case, in input order. The
// error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, cfg *Config, cases []Case, opts Options) ([]Result, error) {
	results := make([]Result, len(cases))
	if len(cases) == 0 {
		return results, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = cfg.Suite.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	for _, tc := range cases {
		sink.OnEvent(Event{Case: tc.Name, Stage: StageCompile, Status: StatusQueued})
	}

	tracer := trace.FromContext(ctx)
	parent := trace.ParentSpan(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(cases)))

	for i, tc := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeCase, "case:"+tc.Name, parent)
			res := runCase(gctx, cfg, tc, sink)
			span.WithExtra("outcome", string(res.Outcome)).End(res.Detail)
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func runCase(ctx context.Context, cfg *Config, tc Case, sink ProgressSink) Result {
	res := Result{Case: tc}
	timer := observ.NewTimer()

	fail := func(stage Stage, outcome Outcome, detail string, started time.Time) Result {
		res.Outcome = outcome
		res.Detail = detail
		res.Timing = timer.Report()
		sink.OnEvent(Event{Case: tc.Name, Stage: stage, Status: StatusError, Err: errors.New(detail), Elapsed: time.Since(started)})
		return res
	}
	started := time.Now()

	// compile
	sink.OnEvent(Event{Case: tc.Name, Stage: StageCompile, Status: StatusWorking})
	idx := timer.Begin(string(StageCompile))
	compileTimeout, _ := cfg.Compiler.timeout() //nolint:errcheck // validated by LoadConfig
	cr := execStep(ctx, cfg.Root, cfg.Compiler.expand(cfg.Root, tc), nil, compileTimeout)
	timer.End(idx, cr.note())
	switch {
	case cr.err != nil:
		return fail(StageCompile, OutcomeHarness, cr.err.Error(), started)
	case cr.timedOut:
		return fail(StageCompile, OutcomeTimeout, "compiler timed out after "+compileTimeout.String(), started)
	case tc.Expect == ExpectCompileError:
		if cr.code == 0 {
			return fail(StageCompile, OutcomeAccepted, "compiler accepted a program it should reject", started)
		}
		res.Outcome = OutcomePass
		res.ExitCode = cr.code
		res.Timing = timer.Report()
		sink.OnEvent(Event{Case: tc.Name, Stage: StageCompile, Status: StatusDone, Elapsed: time.Since(started)})
		return res
	case cr.code != 0:
		return fail(StageCompile, OutcomeCompileError, firstLine(cr.stderr, "compiler exited with status "+strconv.Itoa(cr.code)), started)
	}

	// run
	sink.OnEvent(Event{Case: tc.Name, Stage: StageRun, Status: StatusWorking})
	var stdin io.Reader
	if tc.Input != "" {
		f, err := os.Open(tc.Input)
		if err != nil {
			return fail(StageRun, OutcomeHarness, fmt.Sprintf("open input: %v", err), started)
		}
		defer f.Close()
		stdin = f
	}
	idx = timer.Begin(string(StageRun))
	runTimeout, _ := cfg.Run.timeout() //nolint:errcheck // validated by LoadConfig
	rr := execStep(ctx, cfg.Root, cfg.Run.expand(cfg.Root, tc), stdin, runTimeout)
	timer.End(idx, rr.note())
	res.ExitCode = rr.code
	switch {
	case rr.err != nil:
		return fail(StageRun, OutcomeHarness, rr.err.Error(), started)
	case rr.timedOut:
		return fail(StageRun, OutcomeTimeout, "program timed out after "+runTimeout.String(), started)
	case tc.Expect == ExpectPass && rr.code != 0:
		return fail(StageRun, OutcomeExitCode, fmt.Sprintf("program exited with status %d: %s", rr.code, firstLine(rr.stderr, "")), started)
	case tc.Expect == ExpectRuntimeError && rr.code == 0:
		return fail(StageRun, OutcomeExitCode, "program exited with status 0, want a runtime error", started)
	}

	// compare
	if tc.Output != "" {
		sink.OnEvent(Event{Case: tc.Name, Stage: StageCompare, Status: StatusWorking})
		idx = timer.Begin(string(StageCompare))
		want, err := os.ReadFile(tc.Output)
		if err != nil {
			timer.End(idx, "unreadable")
			return fail(StageCompare, OutcomeHarness, fmt.Sprintf("read expected output: %v", err), started)
		}
		diff := Compare(want, rr.stdout, cfg.Suite.Normalize)
		timer.End(idx, "")
		if diff != "" {
			return fail(StageCompare, OutcomeWrongOutput, diff, started)
		}
	}

	res.Outcome = OutcomePass
	res.Timing = timer.Report()
	sink.OnEvent(Event{Case: tc.Name, Stage: StageCompare, Status: StatusDone, Elapsed: time.Since(started)})
	return res
}

type stepResult struct {
	stdout   []byte
	stderr   []byte
	code     int
	timedOut bool
	err      error // the step could not be started at all
}

func (s stepResult) note() string {
	switch {
	case s.err != nil:
		return "not started"
	case s.timedOut:
		return "timeout"
	default:
		return "exit " + strconv.Itoa(s.code)
	}
}

func execStep(ctx context.Context, dir string, argv []string, stdin io.Reader, timeout time.Duration) stepResult {
	if len(argv) == 0 {
		return stepResult{err: errors.New("empty command")}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren may hold the pipes open after the kill.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := stepResult{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.timedOut = true
		return res
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.code = exitErr.ExitCode()
	default:
		res.err = fmt.Errorf("%s: %w", argv[0], err)
	}
	return res
}

func firstLine(b []byte, fallback string) string {
	line, _, _ := bytes.Cut(bytes.TrimSpace(b), []byte("\n"))
	if len(line) == 0 {
		return fallback
	}
	return string(line)
}
