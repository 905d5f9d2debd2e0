package rt

import "bytes"

// Text is a NUL-terminated byte buffer. A well-formed Text has exactly one
// terminator, in its final byte, and no spare capacity.
type Text []byte

// Allocator returns a buffer of exactly n bytes owned by the caller. Its
// contents need not be zeroed.
type Allocator func(n int) []byte

// HeapAlloc allocates on the Go heap.
func HeapAlloc(n int) []byte {
	return make([]byte, n)
}

// NewText copies content into a single fresh allocation of len(content)+1 bytes.
func NewText(alloc Allocator, content []byte) Text {
	if alloc == nil {
		alloc = HeapAlloc
	}
	n := len(content) + 1
	buf := alloc(n)[:n:n]
	copy(buf, content)
	buf[n-1] = 0
	return Text(buf)
}

// TextOf returns s as a heap-allocated Text.
func TextOf(s string) Text {
	return NewText(HeapAlloc, []byte(s))
}

// Len returns the number of bytes before the first terminator.
func (t Text) Len() int {
	if i := bytes.IndexByte(t, 0); i >= 0 {
		return i
	}
	return len(t)
}

// Content returns the bytes before the terminator. The result aliases t.
func (t Text) Content() []byte {
	return t[:t.Len()]
}

// String returns the content as a Go string.
func (t Text) String() string {
	return string(t.Content())
}

// Terminated reports whether t ends with its one and only terminator.
func (t Text) Terminated() bool {
	return len(t) > 0 && t.Len() == len(t)-1
}

// Concat joins a and b into one allocation of Len(a)+Len(b)+1 bytes.
// Neither input is modified.
func Concat(alloc Allocator, a, b Text) Text {
	if alloc == nil {
		alloc = HeapAlloc
	}
	la, lb := a.Len(), b.Len()
	n := la + lb + 1
	buf := alloc(n)[:n:n]
	copy(buf, a[:la])
	copy(buf[la:], b[:lb])
	buf[n-1] = 0
	return Text(buf)
}

// Equal reports whether a and b hold the same bytes before their terminators.
func Equal(a, b Text) bool {
	return bytes.Equal(a.Content(), b.Content())
}
