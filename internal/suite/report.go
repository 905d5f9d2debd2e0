package suite

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Summary counts outcomes of a run.
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	Outcomes map[Outcome]int
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Outcomes: make(map[Outcome]int)}
	for _, r := range results {
		s.Outcomes[r.Outcome]++
		if r.Outcome.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// OK reports whether every case passed.
func (s Summary) OK() bool { return s.Failed == 0 }

// ReportOptions controls Render.
type ReportOptions struct {
	Color   bool
	Width   int  // terminal width used to truncate case names; <= 0 means 80
	Verbose bool // also list passing cases
	Timings bool
}

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headStyle   = lipgloss.NewStyle().Bold(true)
)

// Render writes one line per failing case (and passing ones when verbose),
// followed by the summary, in the "name OK" / "name ERR" shape of the classic
// latte test scripts.
func Render(w io.Writer, results []Result, opts ReportOptions) error {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	style := func(st lipgloss.Style, s string) string {
		if !opts.Color {
			return s
		}
		return st.Render(s)
	}

	nameWidth := width - 20
	if nameWidth < 20 {
		nameWidth = 20
	}
	for _, r := range results {
		if r.Outcome.Passed() && !opts.Verbose {
			continue
		}
		name := runewidth.FillRight(truncate(r.Case.Name, nameWidth), nameWidth)
		verdict := style(passStyle, "OK")
		if !r.Outcome.Passed() {
			verdict = style(failStyle, "ERR") + " " + string(r.Outcome)
		}
		line := name + " " + verdict
		if opts.Timings && len(r.Timing.Phases) > 0 {
			line += " " + style(detailStyle, "("+r.Timing.Summary()+")")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if r.Detail != "" && !r.Outcome.Passed() {
			if _, err := fmt.Fprintln(w, "    "+style(detailStyle, r.Detail)); err != nil {
				return err
			}
		}
	}

	sum := Summarize(results)
	head := fmt.Sprintf("%d/%d passed", sum.Passed, sum.Total)
	if sum.OK() {
		head = style(headStyle.Inherit(passStyle), head)
	} else {
		head = style(headStyle.Inherit(failStyle), head)
	}
	var parts []string
	for outcome, n := range sum.Outcomes {
		if outcome.Passed() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d", outcome, n))
	}
	sort.Strings(parts)
	if len(parts) > 0 {
		head += " (" + strings.Join(parts, ", ") + ")"
	}
	_, err := fmt.Fprintln(w, head)
	return err
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
