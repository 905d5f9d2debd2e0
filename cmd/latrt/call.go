package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"latrt/internal/abi"
	"latrt/internal/rt"
	"latrt/internal/trace"
	"latrt/internal/version"
)

var (
	callRecord   string
	callMaxToken int
	callRepeat   int
)

func init() {
	callCmd.Flags().StringVar(&callRecord, "record", "", "append every runtime call to a msgpack log")
	callCmd.Flags().IntVar(&callMaxToken, "max-token", rt.DefaultMaxToken, "longest token readString returns (-1 for unlimited)")
	callCmd.Flags().IntVar(&callRepeat, "repeat", 1, "invoke the operation this many times")
}

var callCmd = &cobra.Command{
	Use:   "call <op> [args...]",
	Short: "Invoke one runtime operation against the process streams",
	Long: `Invoke a runtime operation the way a compiled Latte program would.

Operations: printInt N, printString S, readInt, readString,
concatStrings A B, compareStringsEqual A B, error.
Results of value-returning operations are printed on stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if callMaxToken == 0 || callMaxToken < rt.Unlimited {
			return fmt.Errorf("invalid --max-token %d", callMaxToken)
		}
		stopProfiling, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		defer stopProfiling()

		cleanup, err := setupTracing(cmd, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		cfg := rt.Config{
			Stdin:    cmd.InOrStdin(),
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
			MaxToken: callMaxToken,
			Program:  "latrt",
			Tracer:   trace.FromContext(cmd.Context()),
		}
		if callRecord != "" {
			f, err := os.Create(callRecord)
			if err != nil {
				return fmt.Errorf("failed to create recording: %w", err)
			}
			rec, err := rt.NewRecorder(f, rt.NewLogHeader("latrt "+version.Version, callMaxToken))
			if err != nil {
				_ = f.Close()
				return err
			}
			cfg.Recorder = rec
			defer func() {
				if err := rec.Close(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "record: %v\n", err)
				}
			}()
		}

		r := rt.New(cfg)
		for range max(callRepeat, 1) {
			if err := invoke(r, cmd.OutOrStdout(), args[0], args[1:]); err != nil {
				return err
			}
		}
		return nil
	},
}

// callAliases maps the library names of the compiler helpers to their
// linker symbols.
var callAliases = map[string]string{
	"concatStrings":       "__latc_concat_str",
	"compareStringsEqual": "__latc_compare_str",
	"fatalError":          "error",
}

// resolveOp finds the runtime symbol for name and checks the argument count.
func resolveOp(name string, args []string) (abi.Symbol, error) {
	if alias, ok := callAliases[name]; ok {
		name = alias
	}
	sym, ok := abi.Lookup(name)
	if !ok {
		return abi.Symbol{}, fmt.Errorf("unknown operation %q", name)
	}
	if len(args) != len(sym.Params) {
		return abi.Symbol{}, fmt.Errorf("%s takes %d argument(s), got %d", sym.Signature(), len(sym.Params), len(args))
	}
	return sym, nil
}

// invoke runs one operation on r and prints its result, if any, to out.
func invoke(r *rt.Runtime, out io.Writer, name string, args []string) error {
	sym, err := resolveOp(name, args)
	if err != nil {
		return err
	}
	switch sym.Name {
	case "printInt":
		v, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 32)
		if err != nil {
			return fmt.Errorf("printInt: %w", err)
		}
		r.PrintInt(int32(v))
	case "printString":
		if strings.IndexByte(args[0], 0) >= 0 {
			return fmt.Errorf("printString: argument contains a NUL byte")
		}
		r.PrintString(rt.TextOf(args[0]))
	case "readInt":
		fmt.Fprintln(out, r.ReadInt())
	case "readString":
		fmt.Fprintln(out, r.ReadString().String())
	case "__latc_concat_str":
		fmt.Fprintln(out, r.ConcatStrings(rt.TextOf(args[0]), rt.TextOf(args[1])).String())
	case "__latc_compare_str":
		fmt.Fprintln(out, r.CompareStringsEqual(rt.TextOf(args[0]), rt.TextOf(args[1])))
	case "error":
		r.Fatal(rt.FatalUserError)
	default:
		return fmt.Errorf("operation %q has no command binding", sym.Name)
	}
	return nil
}
