package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latrt/internal/rt"
)

var logFormat string

func init() {
	logCmd.Flags().StringVar(&logFormat, "format", "pretty", "output format (pretty|json)")
}

var logCmd = &cobra.Command{
	Use:   "log <file>",
	Short: "Print a call log written by `latrt call --record`",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(logFormat)
		if format != "pretty" && format != "json" {
			return fmt.Errorf("unsupported format %q (must be pretty or json)", logFormat)
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer f.Close()

		hdr, events, err := rt.ReadLog(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if format == "json" {
			return renderLogJSON(cmd.OutOrStdout(), hdr, events)
		}
		renderLogPretty(cmd.OutOrStdout(), hdr, events)
		return nil
	},
}

type logPayload struct {
	Tool     string        `json:"tool"`
	Version  int           `json:"version"`
	MaxToken int           `json:"max_token"`
	Events   []rt.LogEvent `json:"events"`
}

func renderLogJSON(out io.Writer, hdr rt.LogHeader, events []rt.LogEvent) error {
	if events == nil {
		events = []rt.LogEvent{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(logPayload{Tool: hdr.Tool, Version: hdr.V, MaxToken: hdr.MaxToken, Events: events})
}

func renderLogPretty(out io.Writer, hdr rt.LogHeader, events []rt.LogEvent) {
	dim := color.New(color.Faint)
	fatal := color.New(color.FgRed, color.Bold)

	dim.Fprintf(out, "# %s, max token %s, %d call(s)\n", hdr.Tool, maxTokenLabel(hdr.MaxToken), len(events))
	for i, ev := range events {
		line := fmt.Sprintf("%4d  %s", i+1, ev.Summary())
		if ev.Fatal != "" {
			fatal.Fprintln(out, line)
			continue
		}
		fmt.Fprintln(out, line)
	}
}

func maxTokenLabel(n int) string {
	if n < 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
