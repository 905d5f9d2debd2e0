package suite

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)
	writeFile(t, path, `
[compiler]
command = ["./latc_llvm", "{src}"]

[run]
command = ["lli", "{dir}/{stem}.bc"]

[[suite.group]]
dir = "mrjp-tests/good/basic"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Root != root {
		t.Fatalf("Root = %q, want %q", cfg.Root, root)
	}
	if cfg.Suite.Groups[0].Expect != ExpectPass {
		t.Fatalf("default expect = %q", cfg.Suite.Groups[0].Expect)
	}
	if d, err := cfg.Run.timeout(); err != nil || d != DefaultTimeout {
		t.Fatalf("default timeout = %v, %v", d, err)
	}
	tc := Case{Path: "/t/core001.lat", Stem: "core001"}
	if got := strings.Join(cfg.Run.expand(root, tc), " "); got != "lli /t/core001.bc" {
		t.Fatalf("expanded run command = %q", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"no compiler", "[run]\ncommand = [\"x\"]\n", "missing [compiler].command"},
		{"no run", "[compiler]\ncommand = [\"x\"]\n", "missing [run].command"},
		{"bad timeout", "[compiler]\ncommand = [\"x\"]\ntimeout = \"soon\"\n[run]\ncommand = [\"y\"]\n", "[compiler].timeout"},
		{"bad expect", "[compiler]\ncommand = [\"x\"]\n[run]\ncommand = [\"y\"]\n[[suite.group]]\ndir = \"d\"\nexpect = \"maybe\"\n", "invalid expect"},
		{"unknown key", "[compiler]\ncommand = [\"x\"]\nflags = 1\n[run]\ncommand = [\"y\"]\n", "unknown key"},
		{"not toml", "[compiler\n", "failed to parse TOML"},
	}
	for _, c := range cases {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		writeFile(t, path, c.body)
		_, err := LoadConfig(path)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: err = %v, want substring %q", c.name, err, c.want)
		}
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "")
	nested := filepath.Join(root, "a", "b")
	writeFile(t, filepath.Join(nested, "x.lat"), "")
	got, ok, err := FindConfig(nested)
	if err != nil || !ok || got != filepath.Join(root, ConfigFileName) {
		t.Fatalf("FindConfig = %q, %v, %v", got, ok, err)
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		want, got string
		norm      bool
		diff      string
	}{
		{"a\nb\n", "a\nb\n", false, ""},
		{"a\nb\n", "a\nc\n", false, `line 2: want "b", got "c"`},
		{"a\nb\n", "a\n", false, `line 2: output ends early, want "b"`},
		{"a\n", "a\nb\n", false, `line 2: unexpected extra output "b"`},
		{"a\n", "a", false, "trailing newline differs"},
		{"caf\u00e9\n", "cafe\u0301\n", true, ""},
	}
	for _, c := range cases {
		if got := Compare([]byte(c.want), []byte(c.got), c.norm); got != c.diff {
			t.Errorf("Compare(%q, %q, %v) = %q, want %q", c.want, c.got, c.norm, got, c.diff)
		}
	}
	if Compare([]byte("caf\u00e9\n"), []byte("cafe\u0301\n"), false) == "" {
		t.Error("composed and decomposed forms must differ without normalization")
	}
}
