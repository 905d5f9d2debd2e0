// Package abi describes the symbols the Latte runtime exports to compiled
// programs and renders them as LLVM and C declarations.
package abi

import (
	"fmt"
	"strings"
)

// Type is a Latte value type as seen across the runtime boundary.
type Type uint8

const (
	TypeVoid Type = iota
	TypeInt
	TypeString
	TypeBool
)

// String returns the Latte spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeBool:
		return "boolean"
	default:
		return fmt.Sprintf("type#%d", uint8(t))
	}
}

// LLVM returns the LLVM IR type used by generated code.
func (t Type) LLVM() string {
	switch t {
	case TypeInt:
		return "i32"
	case TypeString:
		return "i8*"
	case TypeBool:
		return "i1"
	default:
		return "void"
	}
}

// C returns the C type of the runtime implementation.
func (t Type) C() string {
	switch t {
	case TypeInt:
		return "int32_t"
	case TypeString:
		return "char *"
	case TypeBool:
		return "bool"
	default:
		return "void"
	}
}

// Symbol is one runtime entry point.
type Symbol struct {
	// Name is the linker-visible symbol.
	Name string
	// Builtin is the Latte function bound to the symbol, empty for helpers the
	// compiler calls on its own (string + and ==).
	Builtin  string
	Params   []Type
	Result   Type
	NoReturn bool
}

var symbols = []Symbol{
	{Name: "printInt", Builtin: "printInt", Params: []Type{TypeInt}, Result: TypeVoid},
	{Name: "printString", Builtin: "printString", Params: []Type{TypeString}, Result: TypeVoid},
	{Name: "readInt", Builtin: "readInt", Result: TypeInt},
	{Name: "readString", Builtin: "readString", Result: TypeString},
	{Name: "error", Builtin: "error", Result: TypeVoid, NoReturn: true},
	{Name: "__latc_concat_str", Params: []Type{TypeString, TypeString}, Result: TypeString},
	{Name: "__latc_compare_str", Params: []Type{TypeString, TypeString}, Result: TypeBool},
}

// Symbols returns the runtime entry points in declaration order.
func Symbols() []Symbol {
	out := make([]Symbol, len(symbols))
	copy(out, symbols)
	return out
}

// Lookup finds a symbol by linker name or Latte builtin name.
func Lookup(name string) (Symbol, bool) {
	for _, s := range symbols {
		if s.Name == name || (s.Builtin != "" && s.Builtin == name) {
			return s, true
		}
	}
	return Symbol{}, false
}

// Signature renders the symbol in Latte syntax, e.g. "int readInt()".
func (s Symbol) Signature() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s %s(%s)", s.Result, s.Name, strings.Join(params, ", "))
}

// RenderLLVM returns the declarations a compiled module needs to call the runtime.
func RenderLLVM() string {
	var sb strings.Builder
	sb.WriteString("; latrt runtime interface for Latte programs.\n")
	sb.WriteString("; Generated by `latrt decls --lang ll`; do not edit.\n\n")
	for _, s := range symbols {
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.LLVM()
		}
		fmt.Fprintf(&sb, "declare %s @%s(%s)", s.Result.LLVM(), s.Name, strings.Join(params, ", "))
		if s.NoReturn {
			sb.WriteString(" noreturn")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderCHeader returns a C header declaring the runtime.
func RenderCHeader() string {
	var sb strings.Builder
	sb.WriteString("/* latrt runtime interface for Latte programs.\n")
	sb.WriteString(" * Generated by `latrt decls --lang h`; do not edit. */\n")
	sb.WriteString("#ifndef LATRT_RUNTIME_H\n#define LATRT_RUNTIME_H\n\n")
	sb.WriteString("#include <stdbool.h>\n#include <stdint.h>\n\n")
	for _, s := range symbols {
		params := "void"
		if len(s.Params) > 0 {
			cs := make([]string, len(s.Params))
			for i, p := range s.Params {
				cs[i] = p.C()
			}
			params = strings.Join(cs, ", ")
		}
		sb.WriteString(cDecl(s.Result.C(), s.Name))
		sb.WriteString("(" + params + ")")
		if s.NoReturn {
			sb.WriteString(" __attribute__((noreturn))")
		}
		sb.WriteString(";\n")
	}
	sb.WriteString("\n#endif /* LATRT_RUNTIME_H */\n")
	return sb.String()
}

func cDecl(typ, name string) string {
	if strings.HasSuffix(typ, "*") {
		return typ + name
	}
	return typ + " " + name
}
