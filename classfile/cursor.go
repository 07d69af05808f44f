package classfile

import "encoding/binary"

// Cursor is a sequential big-endian reader over a bounded window of a shared
// byte slice. Offsets are absolute positions in the shared slice. The first
// short read sets a sticky TruncatedInput error; later reads return zero.
type Cursor struct {
	data []byte
	pos  int
	end  int
	err  error
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data, end: len(data)}
}

func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) End() int       { return c.end }
func (c *Cursor) Remaining() int { return c.end - c.pos }
func (c *Cursor) Err() error     { return c.err }

func (c *Cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.end-c.pos < n {
		c.err = &Error{Diagnostic: newDiagnostic(ErrTruncatedInput, c.pos, n, c.end-c.pos)}
		c.pos = c.end
		return nil
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *Cursor) U1() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *Cursor) S1() int8 {
	return int8(c.U1())
}

func (c *Cursor) U2() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (c *Cursor) S2() int16 {
	return int16(c.U2())
}

func (c *Cursor) U4() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (c *Cursor) S4() int32 {
	return int32(c.U4())
}

func (c *Cursor) U8() uint64 {
	b := c.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Bytes returns the next n bytes without copying.
func (c *Cursor) Bytes(n int) []byte {
	return c.take(n)
}

func (c *Cursor) Skip(n int) {
	c.take(n)
}

// Slice carves the next n bytes into an independent cursor sharing storage
// and advances past them.
func (c *Cursor) Slice(n int) *Cursor {
	start := c.pos
	if c.take(n) == nil && n != 0 {
		return &Cursor{data: c.data, pos: start, end: start, err: c.err}
	}
	return &Cursor{data: c.data, pos: start, end: start + n}
}

// LengthPrefixed reads a four-byte length and slices that many bytes. A
// length overrunning the window is reported and clamped to what remains.
func (c *Cursor) LengthPrefixed(r Reporter) *Cursor {
	at := c.pos
	n := c.U4()
	if c.err != nil {
		return c.Slice(0)
	}
	if rem := c.Remaining(); uint64(n) > uint64(rem) {
		report(r, ErrSizeOverflow, at, n, rem)
		n = uint32(rem)
	}
	return c.Slice(int(n))
}
