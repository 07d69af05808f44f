package classfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/classcheck/jvm"
)

var log = commonlog.GetLogger("classcheck.classfile")

// Options configures one Check run. Zero values select jvm.Standard(), a
// discarding reporter and a discarding printer.
type Options struct {
	Registry Registry
	Reporter Reporter
	Printer  Printer
	// Detail lists every pool entry and every bootstrap method.
	Detail bool
	// Name frames the trace with START and END lines when set.
	Name string
}

type checker struct {
	reg     Registry
	rep     Reporter
	out     Printer
	detail  bool
	version jvm.Version
	pool    *ConstantPool
}

// Check decodes and validates one class file, writing the trace to
// opts.Printer and every violation to opts.Reporter. A fatal violation stops
// the walk and is returned as *Error; the trace written so far is kept.
func Check(data []byte, opts Options) (cf *ClassFile, err error) {
	ck := &checker{
		reg:    opts.Registry,
		rep:    opts.Reporter,
		out:    opts.Printer,
		detail: opts.Detail,
	}
	if ck.reg == nil {
		ck.reg = jvm.Standard()
	}
	if ck.rep == nil {
		ck.rep = discardReporter{}
	}
	if ck.out == nil {
		ck.out = discardPrinter{}
	}
	if opts.Name != "" {
		ck.out.Linef("START %s", opts.Name)
		defer ck.out.Linef("END %s", opts.Name)
	}
	defer func() {
		var e *Error
		if errors.As(err, &e) && !e.reported {
			e.reported = true
			ck.rep.Report(e.Diagnostic)
		}
		if err != nil {
			log.Debugf("%s: %s", opts.Name, err)
		}
	}()
	return ck.classFile(NewCursor(data))
}

func (ck *checker) classFile(c *Cursor) (*ClassFile, error) {
	magic := c.U4()
	minor := c.U2()
	major := c.U2()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, report(ck.rep, ErrBadMagic, 0, magic)
	}
	ck.version = jvm.Version{Major: major, Minor: minor}
	if problem := ck.version.Problem(); problem != "" {
		return nil, report(ck.rep, ErrUnsupportedVersion, 4, ck.version, problem)
	}
	ck.out.Linef("VERSION %s ; %s", ck.version, ck.version.Release())

	pool, err := ReadConstantPool(c, ck.version, ck.reg, ck.rep)
	if err != nil {
		return nil, err
	}
	ck.pool = pool
	ck.out.Linef("CONSTANT POOL  entries = [1,%d] ; start = %#x length = %#x", pool.Count()-1, pool.Start, pool.Length)
	if err := pool.Validate(); err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.reported = true
			ck.rep.Report(e.Diagnostic)
		}
		return nil, err
	}
	if ck.detail {
		pool.Print(ck.out.Shift())
	}

	cf := &ClassFile{Version: ck.version, ConstantPool: pool}
	at := c.Pos()
	cf.AccessFlags = c.U2()
	this, err := ck.ref(c, jvm.Tags(jvm.TagClass), true)
	if err != nil {
		return cf, err
	}
	super, err := ck.ref(c, jvm.Tags(jvm.TagClass), true)
	if err != nil {
		return cf, err
	}
	cf.ThisClass = pool.GetClassName(this)
	cf.SuperClass = pool.GetClassName(super)
	n := int(c.U2())
	for i := 0; i < n; i++ {
		iface, err := ck.ref(c, jvm.Tags(jvm.TagClass), false)
		if err != nil {
			return cf, err
		}
		cf.Interfaces = append(cf.Interfaces, pool.GetClassName(iface))
	}
	if err := c.Err(); err != nil {
		return cf, err
	}
	cf.Flags = ck.accessFlags(jvm.ContextClass, cf.AccessFlags, at)
	ck.out.Linef("CLASS %s %s ; start = %#x length = %#x", cf.ThisClass, strings.Join(cf.Flags, " "), at, c.Pos()-at)
	if cf.SuperClass != "" {
		ck.out.Shift().Linef("SUPER %s", cf.SuperClass)
	}
	for _, iface := range cf.Interfaces {
		ck.out.Shift().Linef("INTERFACE %s", iface)
	}

	ctx := jvm.ContextClass
	if cf.IsModule() {
		ctx = jvm.ContextModule
	}

	if cf.Fields, err = ck.members(c, jvm.ContextField); err != nil {
		return cf, err
	}
	if cf.Methods, err = ck.members(c, jvm.ContextMethod); err != nil {
		return cf, err
	}
	if cf.Attributes, err = ck.attributes(c, ctx, ck.out, nil); err != nil {
		return cf, err
	}
	if rem := c.Remaining(); rem > 0 {
		report(ck.rep, ErrTrailingBytes, c.Pos(), rem, "class file")
	}

	if !pool.CheckBootstraps(ck.rep) {
		ck.out.Linef("BOOTSTRAP USERS")
		pool.PrintBootstrapUsers(ck.out.Shift())
	}
	return cf, nil
}

func (ck *checker) members(c *Cursor, ctx jvm.Context) ([]*Member, error) {
	n := int(c.U2())
	if err := c.Err(); err != nil {
		return nil, err
	}
	members := make([]*Member, 0, n)
	for i := 0; i < n; i++ {
		m, err := ck.member(c, ctx)
		if m != nil {
			members = append(members, m)
		}
		if err != nil {
			return members, err
		}
	}
	return members, nil
}

func (ck *checker) member(c *Cursor, ctx jvm.Context) (*Member, error) {
	m := &Member{Offset: c.Pos()}
	m.AccessFlags = c.U2()
	name, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
	if err != nil {
		return nil, err
	}
	desc, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
	if err != nil {
		return nil, err
	}
	m.Name = ck.pool.GetUtf8(name)
	m.Descriptor = ck.pool.GetUtf8(desc)
	m.Type = ck.descriptor(ctx, m.Descriptor, m.Offset+4)
	m.Flags = ck.accessFlags(ctx, m.AccessFlags, m.Offset)
	ck.out.Linef("%s %s %s %s ; start = %#x", ctx, m.Name, m.Descriptor, strings.Join(m.Flags, " "), m.Offset)
	m.Attributes, err = ck.attributes(c, ctx, ck.out.Shift(), nil)
	return m, err
}

// descriptor checks a member descriptor and renders it in source form.
func (ck *checker) descriptor(ctx jvm.Context, desc string, at int) string {
	if ctx == jvm.ContextMethod {
		if md, ok := ParseMethodDescriptor(desc); ok {
			return md.String()
		}
		report(ck.rep, ErrInvalidDescriptor, at, desc, "method")
		return ""
	}
	if ft, ok := ParseFieldDescriptor(desc); ok {
		return ft.String()
	}
	report(ck.rep, ErrInvalidDescriptor, at, desc, "field")
	return ""
}

// ref reads a two-byte pool index and resolves it against tags. An optional
// reference may be zero.
func (ck *checker) ref(c *Cursor, tags jvm.TagSet, optional bool) (uint16, error) {
	at := c.Pos()
	index := c.U2()
	if err := c.Err(); err != nil {
		return 0, err
	}
	return index, ck.resolve(at, index, tags, optional)
}

func (ck *checker) resolve(at int, index uint16, tags jvm.TagSet, optional bool) error {
	if index == 0 {
		if optional {
			return nil
		}
		return report(ck.rep, ErrMissingPoolEntry, at, tags)
	}
	_, err := ck.pool.Lookup(index, tags)
	return ck.fail(at, err)
}

// fail places a lookup error at offset at, reports it, and returns it only
// when it is fatal.
func (ck *checker) fail(at int, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	e.Offset = at
	e.reported = true
	ck.rep.Report(e.Diagnostic)
	if e.Severity == Fatal {
		return e
	}
	return nil
}

func (ck *checker) accessFlags(ctx jvm.Context, flags uint16, at int) []string {
	names, rest := ck.reg.AccessFlags(ctx, flags, ck.version)
	if rest != 0 {
		report(ck.rep, ErrUnknownAccessFlags, at, rest, ctx)
		names = append(names, fmt.Sprintf("%#04x", rest))
	}
	return names
}

// label resolves a code offset, or returns it unchanged outside code.
func (ck *checker) label(labels *CodeLabels, base, delta int) int {
	if labels == nil {
		return base + delta
	}
	return labels.ResolveLabel(base, delta)
}

func (ck *checker) text(c *Cursor, n int) string {
	at := c.Pos()
	return DecodeModifiedUTF8(c.Bytes(n), func(i int, seq []byte) {
		report(ck.rep, ErrMalformedText, at+i, seq)
	})
}
