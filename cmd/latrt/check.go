package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"latrt/internal/suite"
	"latrt/internal/trace"
)

var (
	checkConfig  string
	checkJobs    int
	checkUI      string
	checkVerbose bool
	checkTimings bool
)

func init() {
	checkCmd.Flags().StringVar(&checkConfig, "config", "", "path to "+suite.ConfigFileName+" (default: search upward from the working directory)")
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0, "cases run in parallel (0 uses [suite].jobs, then GOMAXPROCS)")
	checkCmd.Flags().StringVar(&checkUI, "ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "list passing cases too")
	checkCmd.Flags().BoolVar(&checkTimings, "timings", false, "show per-stage timings")
}

var checkCmd = &cobra.Command{
	Use:   "check [dirs...]",
	Short: "Compile and run a conformance suite of Latte programs",
	Long: `Compile every *.lat case of the configured groups, run the result with the
sibling .input on stdin, and compare stdout with the sibling .output.
Directory arguments restrict the run to cases below them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := readUIMode(checkUI)
		if err != nil {
			return err
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}

		cfg, err := loadSuiteConfig(checkConfig)
		if err != nil {
			return err
		}
		cases, err := suite.Discover(cfg)
		if err != nil {
			return err
		}
		cases, err = filterCases(cases, args)
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			return errors.New("no test cases found")
		}

		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		defer stopProfiling()

		var finished atomic.Int64
		cleanup, err := setupTracing(cmd, func() string {
			return fmt.Sprintf("%d/%d case(s) finished", finished.Load(), len(cases))
		})
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "check", 0).
			WithExtra("cases", fmt.Sprint(len(cases)))
		ctx = trace.WithParent(ctx, span.ID())

		opts := suite.Options{Jobs: checkJobs, Sink: countingSink{n: &finished}}
		var results []suite.Result
		if !quiet && shouldUseTUI(mode) {
			title := fmt.Sprintf("checking %s", filepath.Base(cfg.Root))
			results, err = runSuiteWithUI(ctx, title, cfg, cases, opts)
		} else {
			results, err = suite.Run(ctx, cfg, cases, opts)
		}
		sum := suite.Summarize(results)
		span.End(fmt.Sprintf("%d/%d passed", sum.Passed, sum.Total))
		if err != nil {
			return err
		}

		renderErr := suite.Render(cmd.OutOrStdout(), results, suite.ReportOptions{
			Color:   useColor(),
			Width:   terminalWidth(),
			Verbose: checkVerbose && !quiet,
			Timings: checkTimings,
		})
		if renderErr != nil {
			return renderErr
		}
		if !sum.OK() {
			return errSuiteFailed
		}
		return nil
	},
}

func loadSuiteConfig(path string) (*suite.Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		found, ok, err := suite.FindConfig(wd)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s not found in %s or any parent directory", suite.ConfigFileName, wd)
		}
		path = found
	}
	return suite.LoadConfig(path)
}

// filterCases keeps the cases below one of dirs; no dirs keeps everything.
func filterCases(cases []suite.Case, dirs []string) ([]suite.Case, error) {
	if len(dirs) == 0 {
		return cases, nil
	}
	roots := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", d, err)
		}
		roots = append(roots, abs)
	}
	var out []suite.Case
	for _, tc := range cases {
		for _, root := range roots {
			rel, err := filepath.Rel(root, tc.Path)
			if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				out = append(out, tc)
				break
			}
		}
	}
	return out, nil
}

// countingSink counts finished cases for heartbeat details.
type countingSink struct {
	n *atomic.Int64
}

func (s countingSink) OnEvent(ev suite.Event) {
	if ev.Status == suite.StatusDone || ev.Status == suite.StatusError {
		s.n.Add(1)
	}
}
