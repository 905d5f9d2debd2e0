package rt

import "fmt"

// FatalCode identifies why the runtime terminated the program.
type FatalCode int

// Stable fatal codes - do not change values.
const (
	FatalMalformedInt FatalCode = 1001 // RT1001: readInt found no decimal digits
	FatalMissingToken FatalCode = 1002 // RT1002: end of input before a token
	FatalIntRange     FatalCode = 1003 // RT1003: integer does not fit in 32 bits
	FatalUserError    FatalCode = 1004 // RT1004: program called error()
)

// ExitStatus is the process exit status of every fatal error.
const ExitStatus = 1

// Diagnostic is the fixed message printed to standard error on a fatal error.
const Diagnostic = "runtime error"

// String returns the code as "RT1001" format.
func (c FatalCode) String() string {
	return fmt.Sprintf("RT%d", c)
}

// FatalError is the panic value that unwinds a fatal call when the installed
// exit hook returns instead of terminating the process.
type FatalError struct {
	Code FatalCode
	Op   string
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s in %s", e.Code, Diagnostic, e.Op)
}
