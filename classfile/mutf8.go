package classfile

import "unicode/utf16"

const badChar = '?'

// DecodeModifiedUTF8 decodes the class-file variant of UTF-8. Malformed
// sequences decode to '?' and are passed to bad with their position in b.
// Surrogate pairs encoded as two three-byte sequences are joined.
func DecodeModifiedUTF8(b []byte, bad func(at int, seq []byte)) string {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		x := b[i]
		switch {
		case x > 0 && x < 0x80:
			units = append(units, uint16(x))
			i++
		case x&0xe0 == 0xc0 && i+1 < len(b):
			y := b[i+1]
			if y&0xc0 != 0x80 {
				units = append(units, badChar)
				if bad != nil {
					bad(i, b[i:i+2])
				}
			} else {
				units = append(units, uint16(x&0x1f)<<6|uint16(y&0x3f))
			}
			i += 2
		case x&0xf0 == 0xe0 && i+2 < len(b):
			y, z := b[i+1], b[i+2]
			if y&0xc0 != 0x80 || z&0xc0 != 0x80 {
				units = append(units, badChar)
				if bad != nil {
					bad(i, b[i:i+3])
				}
			} else {
				units = append(units, uint16(x&0x0f)<<12|uint16(y&0x3f)<<6|uint16(z&0x3f))
			}
			i += 3
		default:
			units = append(units, badChar)
			if bad != nil {
				bad(i, b[i:i+1])
			}
			i++
		}
	}
	return string(utf16.Decode(units))
}

// EncodeModifiedUTF8 encodes s the way class files store strings: NUL as two
// bytes and supplementary characters as surrogate pairs.
func EncodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = appendUnit(out, uint16(hi))
			out = appendUnit(out, uint16(lo))
			continue
		}
		out = appendUnit(out, uint16(r))
	}
	return out
}

func appendUnit(out []byte, u uint16) []byte {
	switch {
	case u > 0 && u < 0x80:
		return append(out, byte(u))
	case u < 0x800:
		return append(out, 0xc0|byte(u>>6), 0x80|byte(u&0x3f))
	default:
		return append(out, 0xe0|byte(u>>12), 0x80|byte(u>>6&0x3f), 0x80|byte(u&0x3f))
	}
}
