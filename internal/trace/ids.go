package trace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh span ID; 0 is reserved for "no parent".
func NextSpanID() uint64 { return spanCounter.Add(1) }

// getGoroutineID parses the "goroutine N [running]:" header of runtime.Stack.
// Suite workers run cases on separate goroutines; the ID groups their events.
func getGoroutineID() uint64 {
	var buf [64]byte
	header := buf[:runtime.Stack(buf[:], false)]
	header, ok := bytes.CutPrefix(header, []byte("goroutine "))
	if !ok {
		return 0
	}
	digits, _, ok := bytes.Cut(header, []byte(" "))
	if !ok {
		return 0
	}
	gid, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}
