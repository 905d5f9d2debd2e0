package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the conformance suite manifest looked up from the working directory.
const ConfigFileName = "latrt.toml"

// DefaultTimeout bounds each compile and run step when the manifest sets none.
const DefaultTimeout = 10 * time.Second

// Expect is what a group of cases must do to pass.
type Expect string

const (
	// ExpectPass: compiles, exits 0, stdout matches .output when present.
	ExpectPass Expect = "pass"
	// ExpectCompileError: the compiler rejects the program.
	ExpectCompileError Expect = "compile-error"
	// ExpectRuntimeError: compiles, exits non-zero, stdout matches .output when present.
	ExpectRuntimeError Expect = "runtime-error"
)

func (e Expect) valid() bool {
	switch e {
	case ExpectPass, ExpectCompileError, ExpectRuntimeError:
		return true
	}
	return false
}

// Config is the decoded latrt.toml.
type Config struct {
	Compiler CommandConfig `toml:"compiler"`
	Run      CommandConfig `toml:"run"`
	Suite    SuiteConfig   `toml:"suite"`

	// Path and Root locate the manifest; commands run in Root.
	Path string `toml:"-"`
	Root string `toml:"-"`
}

// CommandConfig is an argv template. Arguments may use {src}, {dir}, {stem}
// and {root}.
type CommandConfig struct {
	Command []string `toml:"command"`
	Timeout string   `toml:"timeout"`
}

// SuiteConfig controls discovery and comparison.
type SuiteConfig struct {
	Jobs      int     `toml:"jobs"`
	Normalize bool    `toml:"normalize"`
	Groups    []Group `toml:"group"`
}

// Group is one directory of *.lat cases sharing an expectation.
type Group struct {
	Dir    string `toml:"dir"`
	Expect Expect `toml:"expect"`
}

// FindConfig walks up from startDir looking for latrt.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadConfig decodes and validates the manifest at path.
func LoadConfig(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	path = abs
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("compiler", "command") || len(cfg.Compiler.Command) == 0 {
		return nil, fmt.Errorf("%s: missing [compiler].command", path)
	}
	if !meta.IsDefined("run", "command") || len(cfg.Run.Command) == 0 {
		return nil, fmt.Errorf("%s: missing [run].command", path)
	}
	for _, c := range []struct {
		section string
		cmd     CommandConfig
	}{{"compiler", cfg.Compiler}, {"run", cfg.Run}} {
		if _, err := c.cmd.timeout(); err != nil {
			return nil, fmt.Errorf("%s: [%s].timeout: %w", path, c.section, err)
		}
	}
	for i := range cfg.Suite.Groups {
		g := &cfg.Suite.Groups[i]
		if strings.TrimSpace(g.Dir) == "" {
			return nil, fmt.Errorf("%s: [[suite.group]] #%d: missing dir", path, i+1)
		}
		if g.Expect == "" {
			g.Expect = ExpectPass
		}
		if !g.Expect.valid() {
			return nil, fmt.Errorf("%s: [[suite.group]] %s: invalid expect %q (expected pass|compile-error|runtime-error)", path, g.Dir, g.Expect)
		}
	}
	if cfg.Suite.Jobs < 0 {
		return nil, fmt.Errorf("%s: [suite].jobs must not be negative", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return &cfg, nil
}

func (c CommandConfig) timeout() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", c.Timeout)
	}
	return d, nil
}

// expand substitutes case placeholders into the argv template.
func (c CommandConfig) expand(root string, tc Case) []string {
	r := strings.NewReplacer(
		"{src}", tc.Path,
		"{dir}", filepath.Dir(tc.Path),
		"{stem}", tc.Stem,
		"{root}", root,
	)
	out := make([]string, len(c.Command))
	for i, arg := range c.Command {
		out[i] = r.Replace(arg)
	}
	return out
}
