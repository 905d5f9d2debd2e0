package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"latrt/internal/rt"
	"latrt/internal/suite"
)

func newTestRuntime(stdin string, out, errOut *bytes.Buffer, exits *[]int) *rt.Runtime {
	return rt.New(rt.Config{
		Stdin:   strings.NewReader(stdin),
		Stdout:  out,
		Stderr:  errOut,
		Exit:    func(code int) { *exits = append(*exits, code) },
		Program: "latrt",
	})
}

func TestInvoke(t *testing.T) {
	cases := []struct {
		name  string
		op    string
		args  []string
		stdin string
		want  string
	}{
		{"printInt", "printInt", []string{"-7"}, "", "-7\n"},
		{"printString", "printString", []string{"hello"}, "", "hello\n"},
		{"readInt", "readInt", nil, "  42 rest", "42\n"},
		{"readString", "readString", nil, "\n\tword next", "word\n"},
		{"concat alias", "concatStrings", []string{"foo", "bar"}, "", "foobar\n"},
		{"concat symbol", "__latc_concat_str", []string{"", "x"}, "", "x\n"},
		{"compare equal", "compareStringsEqual", []string{"a", "a"}, "", "true\n"},
		{"compare differ", "__latc_compare_str", []string{"a", "ab"}, "", "false\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			var exits []int
			r := newTestRuntime(tc.stdin, &out, &errOut, &exits)
			if err := invoke(r, &out, tc.op, tc.args); err != nil {
				t.Fatalf("invoke(%s) error: %v", tc.op, err)
			}
			if got := out.String(); got != tc.want {
				t.Fatalf("stdout = %q, want %q", got, tc.want)
			}
			if len(exits) != 0 || errOut.Len() != 0 {
				t.Fatalf("unexpected exit %v / stderr %q", exits, errOut.String())
			}
		})
	}
}

func TestInvokeRejectsBadArguments(t *testing.T) {
	cases := []struct {
		op   string
		args []string
		want string
	}{
		{"nope", nil, "unknown operation"},
		{"printInt", nil, "takes 1 argument"},
		{"printInt", []string{"x"}, "printInt"},
		{"printInt", []string{"2147483648"}, "printInt"},
		{"concatStrings", []string{"a"}, "takes 2 argument"},
		{"readInt", []string{"1"}, "takes 0 argument"},
	}
	for _, tc := range cases {
		var out, errOut bytes.Buffer
		var exits []int
		r := newTestRuntime("", &out, &errOut, &exits)
		err := invoke(r, &out, tc.op, tc.args)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("invoke(%s, %v) error = %v, want containing %q", tc.op, tc.args, err, tc.want)
		}
	}
}

func TestInvokeError(t *testing.T) {
	var out, errOut bytes.Buffer
	var exits []int
	r := newTestRuntime("", &out, &errOut, &exits)

	var fatal *rt.FatalError
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok || !errors.As(err, &fatal) {
					panic(rec)
				}
			}
		}()
		_ = invoke(r, &out, "error", nil)
	}()
	if fatal == nil || fatal.Code != rt.FatalUserError {
		t.Fatalf("fatal = %+v, want code %s", fatal, rt.FatalUserError)
	}
	if len(exits) != 1 || exits[0] != 1 {
		t.Fatalf("exits = %v, want [1]", exits)
	}
	if got := errOut.String(); got != "latrt: runtime error\n" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestFilterCases(t *testing.T) {
	root := t.TempDir()
	cases := []suite.Case{
		{Path: filepath.Join(root, "good", "a.lat"), Name: "good/a.lat"},
		{Path: filepath.Join(root, "good", "b.lat"), Name: "good/b.lat"},
		{Path: filepath.Join(root, "bad", "c.lat"), Name: "bad/c.lat"},
		{Path: filepath.Join(root, "goodies", "d.lat"), Name: "goodies/d.lat"},
	}

	got, err := filterCases(cases, nil)
	if err != nil || len(got) != len(cases) {
		t.Fatalf("no dirs: got %d cases, err %v", len(got), err)
	}

	got, err = filterCases(cases, []string{filepath.Join(root, "good")})
	if err != nil {
		t.Fatalf("filterCases error: %v", err)
	}
	var names []string
	for _, tc := range got {
		names = append(names, tc.Name)
	}
	if strings.Join(names, ",") != "good/a.lat,good/b.lat" {
		t.Fatalf("filtered = %v", names)
	}
}

func TestLogRendering(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	path := filepath.Join(t.TempDir(), "calls.msgpack")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := rt.NewRecorder(f, rt.NewLogHeader("latrt test", rt.DefaultMaxToken))
	if err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	r := rt.New(rt.Config{
		Stdin:    strings.NewReader("7"),
		Stdout:   &out,
		Stderr:   &errOut,
		Exit:     func(int) {},
		Recorder: rec,
	})
	r.PrintInt(r.ReadInt())
	r.ConcatStrings(rt.TextOf("word"), rt.TextOf("!"))
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer data.Close()
	hdr, events, err := rt.ReadLog(data)
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}

	var pretty bytes.Buffer
	renderLogPretty(&pretty, hdr, events)
	want := "# latrt test, max token 1023, 3 call(s)\n" +
		"   1  readInt() -> 7\n" +
		"   2  printInt(7)\n" +
		"   3  concatStrings(\"word\", \"!\") -> \"word!\"\n"
	if pretty.String() != want {
		t.Fatalf("pretty =\n%s\nwant\n%s", pretty.String(), want)
	}

	var js bytes.Buffer
	if err := renderLogJSON(&js, hdr, events); err != nil {
		t.Fatal(err)
	}
	var payload logPayload
	if err := json.Unmarshal(js.Bytes(), &payload); err != nil {
		t.Fatalf("json: %v", err)
	}
	if payload.Tool != "latrt test" || len(payload.Events) != 3 || payload.Events[2].Op != "concatStrings" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestListSymbols(t *testing.T) {
	var out bytes.Buffer
	listSymbols(&out)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d symbols, want 7:\n%s", len(lines), out.String())
	}
	if !strings.Contains(out.String(), "__latc_compare_str") || !strings.Contains(out.String(), "int readInt()") {
		t.Fatalf("missing entries:\n%s", out.String())
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("readUIMode(sometimes) should fail")
	}
}
