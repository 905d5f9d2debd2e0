package main

import (
	"errors"
	"fmt"
)

// errSuiteFailed signals failing cases; the report has already been printed.
var errSuiteFailed = errors.New("conformance suite failed")

func errInvalidColor(mode string) error {
	return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
}
