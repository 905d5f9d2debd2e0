// Package runtimeembed provides the checked-in runtime declarations that Latte
// compilers emit or include when targeting latrt.
package runtimeembed

import (
	"embed"
	"io/fs"
)

//go:embed latte_runtime.ll latte_runtime.h
var declFS embed.FS

// DeclFS exposes the embedded declaration files.
func DeclFS() fs.FS {
	return declFS
}

// LLVMDecls returns the LLVM IR declarations.
func LLVMDecls() string {
	return mustRead("latte_runtime.ll")
}

// CHeader returns the C header.
func CHeader() string {
	return mustRead("latte_runtime.h")
}

func mustRead(name string) string {
	data, err := declFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}
