package btcspv

import "bytes"

// View is a read-only window into a caller-owned buffer. Every extractor
// returns sub-views of its input without copying. A nil View is the null
// view returned alongside an error; a zero-length view over real memory is
// non-nil and valid.
//
// Any []byte can be passed where a View is expected.
type View []byte

// NullView is the view returned with every extraction error.
var NullView View

// NewView wraps b. A nil b becomes a valid empty view.
func NewView(b []byte) View {
	if b == nil {
		return View{}
	}
	return View(b)
}

// IsNull reports whether v is the null view.
func (v View) IsNull() bool {
	return v == nil
}

// Len returns the number of bytes in the view.
func (v View) Len() int {
	return len(v)
}

// Slice returns the sub-view [off, off+n). The result's capacity is capped so
// appends can never write into the parent buffer.
func (v View) Slice(off, n int) (View, error) {
	if off < 0 || n < 0 || off > len(v) || n > len(v)-off {
		return NullView, shortErr("view.Slice", off+n, len(v))
	}
	return v[off : off+n : off+n], nil
}

// Tail returns everything from off to the end.
func (v View) Tail(off int) (View, error) {
	if off < 0 || off > len(v) {
		return NullView, shortErr("view.Tail", off, len(v))
	}
	return v[off:len(v):len(v)], nil
}

// Equal compares contents. Two null views are equal; a null view never equals
// a valid one.
func (v View) Equal(o View) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull()
	}
	return bytes.Equal(v, o)
}

// EqualBytes compares the view's contents against b.
func (v View) EqualBytes(b []byte) bool {
	return !v.IsNull() && bytes.Equal(v, b)
}

// ReverseInto writes the view's bytes in reverse order into dst and returns
// the number of bytes written. dst must be at least Len() bytes.
func (v View) ReverseInto(dst []byte) int {
	n := len(v)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = v[len(v)-1-i]
	}
	return n
}

// Reversed returns a reversed copy.
func (v View) Reversed() []byte {
	out := make([]byte, len(v))
	v.ReverseInto(out)
	return out
}

// TruncatedEqual reports whether every bit set in trun is also set in full at
// the same position. It is not symmetric. Views of different lengths never
// match.
func TruncatedEqual(trun, full View) bool {
	if trun.IsNull() || full.IsNull() || len(trun) != len(full) {
		return false
	}
	for i := range trun {
		if trun[i]&full[i] != trun[i] {
			return false
		}
	}
	return true
}
