package rt

import (
	"bufio"
	"math"

	"fortio.org/safecast"
)

// isSpace matches the C locale isspace set.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// skipSpace consumes leading whitespace. It returns false at end of input.
func skipSpace(in *bufio.Reader) bool {
	for {
		c, err := in.ReadByte()
		if err != nil {
			return false
		}
		if !isSpace(c) {
			_ = in.UnreadByte() //nolint:errcheck // always valid right after ReadByte
			return true
		}
	}
}

// scanInt reads an optionally signed decimal integer after leading whitespace,
// stopping before the first byte that is not a digit. The stopping byte stays
// in the stream.
func scanInt(in *bufio.Reader) (int32, FatalCode, bool) {
	if !skipSpace(in) {
		return 0, FatalMissingToken, false
	}

	neg := false
	c, _ := in.ReadByte() //nolint:errcheck // skipSpace left a byte to read
	switch c {
	case '-':
		neg = true
	case '+':
	default:
		_ = in.UnreadByte() //nolint:errcheck
	}

	var acc int64
	digits := 0
	overflow := false
	for {
		c, err := in.ReadByte()
		if err != nil {
			break
		}
		if c < '0' || c > '9' {
			_ = in.UnreadByte() //nolint:errcheck
			break
		}
		digits++
		if !overflow {
			acc = acc*10 + int64(c-'0')
			if acc > math.MaxInt32+1 {
				overflow = true
			}
		}
	}

	if digits == 0 {
		return 0, FatalMalformedInt, false
	}
	if neg {
		acc = -acc
	}
	v, err := safecast.Conv[int32](acc)
	if overflow || err != nil {
		return 0, FatalIntRange, false
	}
	return v, 0, true
}

// scanToken appends the next whitespace-delimited token to stage, reading at
// most limit bytes (no limit when limit < 0). Bytes past the limit stay in the
// stream and begin the next token.
func scanToken(in *bufio.Reader, stage []byte, limit int) ([]byte, bool) {
	if !skipSpace(in) {
		return stage, false
	}
	for limit < 0 || len(stage) < limit {
		c, err := in.ReadByte()
		if err != nil {
			break
		}
		if isSpace(c) {
			_ = in.UnreadByte() //nolint:errcheck
			break
		}
		stage = append(stage, c)
	}
	return stage, true
}
