package abi_test

import (
	"testing"

	"latrt/internal/abi"
	runtimeembed "latrt/runtime"
)

func TestEmbeddedDeclsAreCurrent(t *testing.T) {
	if got, want := runtimeembed.LLVMDecls(), abi.RenderLLVM(); got != want {
		t.Fatalf("runtime/latte_runtime.ll is stale\n--- embedded\n%s\n--- rendered\n%s", got, want)
	}
	if got, want := runtimeembed.CHeader(), abi.RenderCHeader(); got != want {
		t.Fatalf("runtime/latte_runtime.h is stale\n--- embedded\n%s\n--- rendered\n%s", got, want)
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		name string
		sig  string
	}{
		{"printInt", "void printInt(int)"},
		{"readString", "string readString()"},
		{"__latc_concat_str", "string __latc_concat_str(string, string)"},
		{"__latc_compare_str", "boolean __latc_compare_str(string, string)"},
	}
	for _, c := range cases {
		s, ok := abi.Lookup(c.name)
		if !ok {
			t.Fatalf("Lookup(%q) failed", c.name)
		}
		if got := s.Signature(); got != c.sig {
			t.Errorf("Signature(%q) = %q, want %q", c.name, got, c.sig)
		}
	}
	if _, ok := abi.Lookup("printDouble"); ok {
		t.Fatal("Lookup found a symbol the runtime does not export")
	}
}

func TestOnlyErrorIsNoReturn(t *testing.T) {
	for _, s := range abi.Symbols() {
		if s.NoReturn != (s.Name == "error") {
			t.Errorf("%s: NoReturn = %v", s.Name, s.NoReturn)
		}
	}
}
