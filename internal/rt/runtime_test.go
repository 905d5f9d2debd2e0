package rt

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
)

type harness struct {
	rt     *Runtime
	out    *bytes.Buffer
	errOut *bytes.Buffer
	exits  []int
}

func newHarness(stdin string, cfg Config) *harness {
	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	cfg.Stdin = strings.NewReader(stdin)
	cfg.Stdout = h.out
	cfg.Stderr = h.errOut
	cfg.Exit = func(code int) { h.exits = append(h.exits, code) }
	if cfg.Program == "" {
		cfg.Program = "prog"
	}
	h.rt = New(cfg)
	return h
}

// expectFatal runs fn and returns the fatal error it raised.
func expectFatal(t *testing.T, h *harness, fn func()) *FatalError {
	t.Helper()
	var fe *FatalError
	func() {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok || !errors.As(err, &fe) {
				panic(rec)
			}
		}()
		fn()
	}()
	if fe == nil {
		t.Fatal("expected a fatal runtime error")
	}
	if len(h.exits) != 1 || h.exits[0] != ExitStatus {
		t.Fatalf("exit calls = %v, want [%d]", h.exits, ExitStatus)
	}
	if got := h.errOut.String(); got != "prog: runtime error\n" {
		t.Fatalf("stderr = %q", got)
	}
	return fe
}

func TestPrintInt(t *testing.T) {
	h := newHarness("", Config{})
	for _, v := range []int32{0, 7, -7, 42, 2147483647, -2147483648} {
		h.rt.PrintInt(v)
	}
	want := "0\n7\n-7\n42\n2147483647\n-2147483648\n"
	if h.out.String() != want {
		t.Fatalf("stdout = %q, want %q", h.out.String(), want)
	}
}

func TestPrintIntRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 1000000, -99999, 2147483647, -2147483648} {
		h := newHarness("", Config{})
		h.rt.PrintInt(v)
		got, err := strconv.ParseInt(strings.TrimSuffix(h.out.String(), "\n"), 10, 32)
		if err != nil || int32(got) != v {
			t.Fatalf("round trip of %d gave %q", v, h.out.String())
		}
		back := newHarness(h.out.String(), Config{})
		if r := back.rt.ReadInt(); r != v {
			t.Fatalf("ReadInt of printed %d = %d", v, r)
		}
	}
}

func TestPrintString(t *testing.T) {
	h := newHarness("", Config{})
	h.rt.PrintString(TextOf("hello"))
	h.rt.PrintString(TextOf(""))
	h.rt.PrintString(Text("cut\x00here\x00"))
	if want := "hello\n\ncut\n"; h.out.String() != want {
		t.Fatalf("stdout = %q, want %q", h.out.String(), want)
	}
}

func TestReadIntThenString(t *testing.T) {
	h := newHarness("42 hello", Config{})
	if v := h.rt.ReadInt(); v != 42 {
		t.Fatalf("ReadInt = %d, want 42", v)
	}
	s := h.rt.ReadString()
	if !Equal(s, TextOf("hello")) {
		t.Fatalf("ReadString = %q, want hello", s.String())
	}
	if len(s) != 6 || cap(s) != 6 {
		t.Fatalf("ReadString buffer len=%d cap=%d, want 6", len(s), cap(s))
	}
}

func TestReadIntForms(t *testing.T) {
	cases := []struct {
		in   string
		want []int32
	}{
		{"1 2 3", []int32{1, 2, 3}},
		{"  \n\t-17\n", []int32{-17}},
		{"+5", []int32{5}},
		{"007", []int32{7}},
		{"12\n-12", []int32{12, -12}},
		{"2147483647 -2147483648", []int32{2147483647, -2147483648}},
	}
	for _, c := range cases {
		h := newHarness(c.in, Config{})
		for i, want := range c.want {
			if got := h.rt.ReadInt(); got != want {
				t.Fatalf("%q: read #%d = %d, want %d", c.in, i, got, want)
			}
		}
	}
}

func TestReadIntLeavesTrailingBytes(t *testing.T) {
	h := newHarness("12abc", Config{})
	if v := h.rt.ReadInt(); v != 12 {
		t.Fatalf("ReadInt = %d, want 12", v)
	}
	if s := h.rt.ReadString(); s.String() != "abc" {
		t.Fatalf("ReadString = %q, want abc", s.String())
	}
}

func TestReadIntFatal(t *testing.T) {
	cases := []struct {
		in   string
		code FatalCode
	}{
		{"", FatalMissingToken},
		{"   \n", FatalMissingToken},
		{"abc", FatalMalformedInt},
		{"-", FatalMalformedInt},
		{"+x", FatalMalformedInt},
		{"2147483648", FatalIntRange},
		{"-2147483649", FatalIntRange},
		{"99999999999999999999999", FatalIntRange},
	}
	for _, c := range cases {
		h := newHarness(c.in, Config{})
		fe := expectFatal(t, h, func() { h.rt.ReadInt() })
		if fe.Code != c.code || fe.Op != "readInt" {
			t.Errorf("%q: fatal %v in %s, want %v", c.in, fe.Code, fe.Op, c.code)
		}
	}
}

func TestReadStringAtEOF(t *testing.T) {
	h := newHarness(" \t\n", Config{})
	fe := expectFatal(t, h, func() { h.rt.ReadString() })
	if fe.Code != FatalMissingToken {
		t.Fatalf("code = %v, want %v", fe.Code, FatalMissingToken)
	}
}

func TestReadStringTruncatesAtCap(t *testing.T) {
	long := strings.Repeat("x", DefaultMaxToken) + "yz"
	h := newHarness(long+" tail", Config{})
	first := h.rt.ReadString()
	if first.Len() != DefaultMaxToken {
		t.Fatalf("first token len = %d, want %d", first.Len(), DefaultMaxToken)
	}
	if second := h.rt.ReadString(); second.String() != "yz" {
		t.Fatalf("second token = %q, want yz", second.String())
	}
	if third := h.rt.ReadString(); third.String() != "tail" {
		t.Fatalf("third token = %q, want tail", third.String())
	}
}

func TestReadStringUnlimited(t *testing.T) {
	long := strings.Repeat("q", 5000)
	h := newHarness(long, Config{MaxToken: Unlimited})
	if got := h.rt.ReadString(); got.String() != long {
		t.Fatalf("token len = %d, want %d", got.Len(), len(long))
	}
}

func TestReadStringUsesAllocator(t *testing.T) {
	var sizes []int
	alloc := func(n int) []byte {
		sizes = append(sizes, n)
		return make([]byte, n)
	}
	h := newHarness("abc de", Config{Alloc: alloc})
	h.rt.ReadString()
	h.rt.ReadString()
	if len(sizes) != 2 || sizes[0] != 4 || sizes[1] != 3 {
		t.Fatalf("allocations = %v, want [4 3]", sizes)
	}
}

func TestReadStringDoesNotAliasStaging(t *testing.T) {
	h := newHarness("first second", Config{})
	a := h.rt.ReadString()
	b := h.rt.ReadString()
	if a.String() != "first" || b.String() != "second" {
		t.Fatalf("tokens = %q, %q", a.String(), b.String())
	}
}

func TestFatalUserError(t *testing.T) {
	h := newHarness("", Config{})
	h.rt.PrintInt(1)
	fe := expectFatal(t, h, func() { h.rt.Fatal(FatalUserError) })
	if fe.Code != FatalUserError || fe.Code.String() != "RT1004" {
		t.Fatalf("code = %v", fe.Code)
	}
	if h.out.String() != "1\n" {
		t.Fatalf("stdout = %q", h.out.String())
	}
}

func TestRuntimeOpsMatchPureCores(t *testing.T) {
	h := newHarness("", Config{})
	a, b := TextOf("lat"), TextOf("te")
	if got := h.rt.ConcatStrings(a, b); got.String() != "latte" {
		t.Fatalf("ConcatStrings = %q", got.String())
	}
	if !h.rt.CompareStringsEqual(TextOf("x"), TextOf("x")) || h.rt.CompareStringsEqual(a, b) {
		t.Fatal("CompareStringsEqual disagrees with Equal")
	}
}
