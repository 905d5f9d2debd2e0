//go:build cgo

// Command latrt-abi builds the Latte runtime as a C archive:
//
//	go build -buildmode=c-archive -o liblatrt.a ./cmd/latrt-abi
//
// Compiled Latte programs link against the archive and call the exported
// symbols declared in runtime/latte_runtime.h.
package main

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"latrt/internal/rt"
	"latrt/internal/trace"
)

func init() {
	r := rt.Default()
	r.SetAllocator(mallocBytes)
	if t := tracerFromEnv(); t != nil {
		r.SetTracer(t)
	}
}

// tracerFromEnv honours LATRT_TRACE (output path, "-" for stderr) and
// LATRT_TRACE_LEVEL. A program linked against the archive has no flags, and
// an invalid setting must not change its behaviour, so errors only warn.
func tracerFromEnv() trace.Tracer {
	path := os.Getenv("LATRT_TRACE")
	levelStr := os.Getenv("LATRT_TRACE_LEVEL")
	if path == "" && levelStr == "" {
		return nil
	}
	level := trace.LevelCall
	if levelStr != "" {
		l, err := trace.ParseLevel(levelStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "latrt: %v\n", err)
			return nil
		}
		level = l
	}
	mode := trace.ModeStream
	if path == "" {
		// no output: keep a ring for the dump on fatal errors
		mode = trace.ModeRing
	}
	t, err := trace.New(trace.Config{Level: level, Mode: mode, OutputPath: path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "latrt: %v\n", err)
		return nil
	}
	return t
}

// mallocBytes hands out C memory so buffers returned to generated code can
// outlive any Go reference and be released with free.
func mallocBytes(n int) []byte {
	p := C.malloc(C.size_t(n))
	if p == nil {
		panic("latrt: out of memory")
	}
	return unsafe.Slice((*byte)(p), n)
}

// textAt views a NUL-terminated C string, terminator included, without copying.
func textAt(p *C.char) rt.Text {
	n := int(C.strlen(p))
	return rt.Text(unsafe.Slice((*byte)(unsafe.Pointer(p)), n+1))
}

func cString(t rt.Text) *C.char {
	return (*C.char)(unsafe.Pointer(unsafe.SliceData(t)))
}

//export printInt
func printInt(v C.int32_t) {
	rt.Default().PrintInt(int32(v))
}

//export printString
func printString(s *C.char) {
	rt.Default().PrintString(textAt(s))
}

//export readInt
func readInt() C.int32_t {
	return C.int32_t(rt.Default().ReadInt())
}

//export readString
func readString() *C.char {
	return cString(rt.Default().ReadString())
}

//export __latc_concat_str
func __latc_concat_str(a, b *C.char) *C.char {
	return cString(rt.Default().ConcatStrings(textAt(a), textAt(b)))
}

//export __latc_compare_str
func __latc_compare_str(a, b *C.char) C.bool {
	return C.bool(rt.Default().CompareStringsEqual(textAt(a), textAt(b)))
}

// latrtFatal backs the C-level error() defined in error.c.
//
//export latrtFatal
func latrtFatal() {
	rt.Default().Fatal(rt.FatalUserError)
}

func main() {}
