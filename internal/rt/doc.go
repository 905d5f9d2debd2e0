// Package rt is the runtime support library linked against programs emitted by
// the Latte compiler.
//
// It provides the primitives generated code cannot inline: integer and string
// I/O on the standard streams, string concatenation and string equality. Strings
// cross the library boundary as Text values: NUL-terminated byte buffers sized
// to exactly their content plus the terminator.
//
// Malformed or missing input is not an error value. ReadInt and ReadString fail
// fast: they print a fixed diagnostic to standard error and terminate the
// process with exit status 1.
//
// A Runtime wraps process-wide standard streams and performs no locking.
// Concurrent callers must serialise access themselves.
package rt
