package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// writer appends big-endian values.
type writer struct {
	bytes.Buffer
}

func (w *writer) u1(vs ...byte) *writer {
	w.Write(vs)
	return w
}

func (w *writer) u2(vs ...uint16) *writer {
	for _, v := range vs {
		w.Write(binary.BigEndian.AppendUint16(nil, v))
	}
	return w
}

func (w *writer) u4(v uint32) *writer {
	w.Write(binary.BigEndian.AppendUint32(nil, v))
	return w
}

func (w *writer) u8(v uint64) *writer {
	w.Write(binary.BigEndian.AppendUint64(nil, v))
	return w
}

// attr writes an attribute header followed by body.
func (w *writer) attr(name uint16, body []byte) *writer {
	w.u2(name).u4(uint32(len(body)))
	w.Write(body)
	return w
}

// poolBuilder hands out constant pool indices in order.
type poolBuilder struct {
	writer
	next  uint16
	utf8s map[string]uint16
}

func newPool() *poolBuilder {
	return &poolBuilder{next: 1, utf8s: map[string]uint16{}}
}

func (p *poolBuilder) raw(tag byte, body ...byte) uint16 {
	i := p.next
	p.u1(tag).u1(body...)
	p.next++
	return i
}

func (p *poolBuilder) utf8(s string) uint16 {
	if i, ok := p.utf8s[s]; ok {
		return i
	}
	b := EncodeModifiedUTF8(s)
	i := p.next
	p.u1(1).u2(uint16(len(b))).u1(b...)
	p.next++
	p.utf8s[s] = i
	return i
}

func (p *poolBuilder) class(name string) uint16 {
	n := p.utf8(name)
	i := p.next
	p.u1(7).u2(n)
	p.next++
	return i
}

func (p *poolBuilder) nameAndType(name, desc string) uint16 {
	n, d := p.utf8(name), p.utf8(desc)
	i := p.next
	p.u1(12).u2(n, d)
	p.next++
	return i
}

func (p *poolBuilder) ref(tag byte, class, nat uint16) uint16 {
	i := p.next
	p.u1(tag).u2(class, nat)
	p.next++
	return i
}

func (p *poolBuilder) long(v int64) uint16 {
	i := p.next
	p.u1(5).u8(uint64(v))
	p.next += 2
	return i
}

// classBuilder assembles a class file around a pool and a body written after
// the pool.
type classBuilder struct {
	major, minor uint16
	pool         *poolBuilder
	body         writer
}

func newClass(major uint16) *classBuilder {
	return &classBuilder{major: major, pool: newPool()}
}

func (cb *classBuilder) bytes() []byte {
	var w writer
	w.u4(Magic).u2(cb.minor, cb.major, cb.pool.next)
	w.Write(cb.pool.Bytes())
	w.Write(cb.body.Bytes())
	return w.Bytes()
}

// codeBody builds the payload of a Code attribute with no exception table.
func codeBody(maxStack, maxLocals uint16, code []byte, attrs ...func(*writer)) []byte {
	var w writer
	w.u2(maxStack, maxLocals).u4(uint32(len(code))).u1(code...)
	w.u2(0)
	w.u2(uint16(len(attrs)))
	for _, a := range attrs {
		a(&w)
	}
	return w.Bytes()
}

// methodClass builds class A with one public method m()V whose Code
// attribute carries code.
func methodClass(major uint16, maxLocals uint16, code []byte, attrs ...func(*classBuilder) func(*writer)) []byte {
	cb := newClass(major)
	this := cb.pool.class("A")
	name := cb.pool.utf8("m")
	desc := cb.pool.utf8("()V")
	codeName := cb.pool.utf8("Code")
	var codeAttrs []func(*writer)
	for _, a := range attrs {
		codeAttrs = append(codeAttrs, a(cb))
	}
	cb.body.u2(0x0021, this, 0, 0, 0)
	cb.body.u2(1)
	cb.body.u2(0x0001, name, desc, 1)
	cb.body.attr(codeName, codeBody(2, maxLocals, code, codeAttrs...))
	cb.body.u2(0)
	return cb.bytes()
}

// codeClass is methodClass for code that refers to the pool. body is called
// once the fixed entries exist and returns the whole Code attribute payload.
func codeClass(major uint16, body func(p *poolBuilder) []byte) []byte {
	cb := newClass(major)
	this := cb.pool.class("A")
	name := cb.pool.utf8("m")
	desc := cb.pool.utf8("()V")
	codeName := cb.pool.utf8("Code")
	code := body(cb.pool)
	cb.body.u2(0x0021, this, 0, 0, 0)
	cb.body.u2(1)
	cb.body.u2(0x0001, name, desc, 1)
	cb.body.attr(codeName, code)
	cb.body.u2(0)
	return cb.bytes()
}

// lines records the trace with two spaces per level.
type lines struct {
	out    *[]string
	indent string
}

func newLines() lines {
	return lines{out: new([]string)}
}

func (l lines) Linef(format string, args ...any) {
	*l.out = append(*l.out, l.indent+fmt.Sprintf(format, args...))
}

func (l lines) Shift() Printer {
	return lines{out: l.out, indent: l.indent + "  "}
}

func (l lines) String() string {
	return strings.Join(*l.out, "\n")
}

// contains reports whether some trimmed line equals want.
func (l lines) contains(want string) bool {
	for _, line := range *l.out {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}
