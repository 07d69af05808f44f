package classfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{0x01, 0xff, 0xfe, 0x00, 0x00, 0x00, 0x2a, 0x80})
	require.Equal(t, uint8(1), c.U1())
	require.Equal(t, int16(-2), c.S2())
	require.Equal(t, uint32(42), c.U4())
	require.Equal(t, int8(-128), c.S1())
	require.Zero(t, c.Remaining())
	require.NoError(t, c.Err())
}

func TestCursorTruncation(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03})
	c.U2()
	if got := c.U4(); got != 0 {
		t.Errorf("U4() = %d, want 0 after truncation", got)
	}
	require.True(t, errors.Is(c.Err(), ErrTruncatedInput))
	if got := c.U1(); got != 0 {
		t.Errorf("U1() = %d, want 0 once the cursor has failed", got)
	}

	var e *Error
	require.True(t, errors.As(c.Err(), &e))
	require.Equal(t, 2, e.Offset)
}

func TestCursorSlice(t *testing.T) {
	c := NewCursor([]byte{0xaa, 0x01, 0x02, 0x03, 0xbb})
	c.U1()
	sub := c.Slice(3)
	require.Equal(t, 1, sub.Pos())
	require.Equal(t, 4, sub.End())
	require.Equal(t, uint8(0xbb), c.U1())

	sub.U2()
	sub.U2()
	require.True(t, errors.Is(sub.Err(), ErrTruncatedInput))
	require.NoError(t, c.Err())
}

func TestCursorLengthPrefixed(t *testing.T) {
	t.Run("fits", func(t *testing.T) {
		diags := &Diagnostics{}
		c := NewCursor([]byte{0, 0, 0, 2, 7, 8, 9})
		body := c.LengthPrefixed(diags)
		require.Equal(t, 2, body.Remaining())
		require.Equal(t, 1, c.Remaining())
		require.Zero(t, diags.Len())
	})
	t.Run("clamped", func(t *testing.T) {
		diags := &Diagnostics{}
		c := NewCursor([]byte{0, 0, 1, 0, 7, 8})
		body := c.LengthPrefixed(diags)
		require.Equal(t, 2, body.Remaining())
		require.Zero(t, c.Remaining())
		require.Equal(t, 1, diags.Count(ErrSizeOverflow))
		require.Equal(t, 0, diags.Items()[0].Offset)
	})
}

func TestModifiedUTF8(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		encoded []byte
	}{
		{"ascii", "abc", []byte("abc")},
		{"nul", "a\x00b", []byte{'a', 0xc0, 0x80, 'b'}},
		{"two byte", "é", []byte{0xc3, 0xa9}},
		{"three byte", "€", []byte{0xe2, 0x82, 0xac}},
		{"supplementary", "😀", []byte{0xed, 0xa0, 0xbd, 0xed, 0xb8, 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeModifiedUTF8(tt.text); string(got) != string(tt.encoded) {
				t.Errorf("EncodeModifiedUTF8() = % x, want % x", got, tt.encoded)
			}
			got := DecodeModifiedUTF8(tt.encoded, func(at int, seq []byte) {
				t.Errorf("unexpected bad sequence % x at %d", seq, at)
			})
			if got != tt.text {
				t.Errorf("DecodeModifiedUTF8() = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestModifiedUTF8Malformed(t *testing.T) {
	var bad []int
	got := DecodeModifiedUTF8([]byte{'a', 0x00, 0xc3, 'b', 0xff}, func(at int, seq []byte) {
		bad = append(bad, at)
	})
	if want := "a??"; got[:3] != want {
		t.Errorf("DecodeModifiedUTF8() = %q, want prefix %q", got, want)
	}
	require.Equal(t, []int{1, 2, 4}, bad)
}
