package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt marks a Latte test program.
const SourceExt = ".lat"

// Case is one Latte program with its optional stdin and expected stdout.
type Case struct {
	Path   string // absolute path of the .lat file
	Name   string // path relative to the suite root, for display
	Stem   string // file name without extension
	Input  string // sibling .input file, empty if absent
	Output string // sibling .output file, empty if absent
	Expect Expect
}

// Discover lists the cases of every group, sorted by path within a group.
func Discover(cfg *Config) ([]Case, error) {
	var cases []Case
	for _, g := range cfg.Suite.Groups {
		dir := g.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Root, dir)
		}
		found, err := discoverDir(dir, g.Expect)
		if err != nil {
			return nil, err
		}
		for i := range found {
			if rel, err := filepath.Rel(cfg.Root, found[i].Path); err == nil {
				found[i].Name = rel
			}
		}
		cases = append(cases, found...)
	}
	return cases, nil
}

func discoverDir(dir string, expect Expect) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read suite directory: %w", err)
	}
	var cases []Case
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != SourceExt {
			continue
		}
		path := filepath.Join(dir, e.Name())
		stem := strings.TrimSuffix(e.Name(), SourceExt)
		tc := Case{
			Path:   path,
			Name:   e.Name(),
			Stem:   stem,
			Expect: expect,
		}
		if tc.Input, err = sibling(dir, stem, ".input"); err != nil {
			return nil, err
		}
		if tc.Output, err = sibling(dir, stem, ".output"); err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].Path < cases[j].Path })
	return cases, nil
}

func sibling(dir, stem, ext string) (string, error) {
	p := filepath.Join(dir, stem+ext)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat %q: %w", p, err)
	}
	return p, nil
}
