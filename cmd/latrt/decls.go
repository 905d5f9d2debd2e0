package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"latrt/internal/abi"
	runtimeembed "latrt/runtime"
)

var (
	declsLang string
	declsList bool
)

func init() {
	declsCmd.Flags().StringVar(&declsLang, "lang", "ll", "declaration language (ll|h)")
	declsCmd.Flags().BoolVar(&declsList, "list", false, "list entry points with their Latte signatures")
}

var declsCmd = &cobra.Command{
	Use:   "decls",
	Short: "Print the runtime declarations a compiler links against",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if declsList {
			listSymbols(out)
			return nil
		}
		switch strings.ToLower(declsLang) {
		case "ll", "llvm":
			_, err := io.WriteString(out, runtimeembed.LLVMDecls())
			return err
		case "h", "c":
			_, err := io.WriteString(out, runtimeembed.CHeader())
			return err
		default:
			return fmt.Errorf("unsupported --lang %q (expected ll|h)", declsLang)
		}
	},
}

func listSymbols(out io.Writer) {
	for _, s := range abi.Symbols() {
		kind := "helper"
		if s.Builtin != "" {
			kind = "builtin"
		}
		fmt.Fprintf(out, "%-20s %-8s %s\n", s.Name, kind, s.Signature())
	}
}
