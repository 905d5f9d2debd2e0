package suite

import (
	"bytes"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Compare returns "" when got matches want, otherwise a one-line description
// of the first differing line. With normalize set both sides are compared in
// Unicode NFC.
func Compare(want, got []byte, normalize bool) string {
	if normalize {
		want = norm.NFC.Bytes(want)
		got = norm.NFC.Bytes(got)
	}
	if bytes.Equal(want, got) {
		return ""
	}
	if bytes.Equal(bytes.TrimSuffix(want, []byte("\n")), bytes.TrimSuffix(got, []byte("\n"))) {
		return "trailing newline differs"
	}
	wl := bytes.Split(bytes.TrimSuffix(want, []byte("\n")), []byte("\n"))
	gl := bytes.Split(bytes.TrimSuffix(got, []byte("\n")), []byte("\n"))
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g []byte
		wOK, gOK := i < len(wl), i < len(gl)
		if wOK {
			w = wl[i]
		}
		if gOK {
			g = gl[i]
		}
		switch {
		case !gOK:
			return fmt.Sprintf("line %d: output ends early, want %q", i+1, w)
		case !wOK:
			return fmt.Sprintf("line %d: unexpected extra output %q", i+1, g)
		case !bytes.Equal(w, g):
			return fmt.Sprintf("line %d: want %q, got %q", i+1, w, g)
		}
	}
	return "output differs"
}
