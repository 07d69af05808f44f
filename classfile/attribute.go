package classfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/classcheck/jvm"
)

// attributes reads a counted attribute list in ctx. labels is nil outside a
// Code attribute.
func (ck *checker) attributes(c *Cursor, ctx jvm.Context, out Printer, labels *CodeLabels) ([]*Attribute, error) {
	n := int(c.U2())
	if err := c.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	attrs := make([]*Attribute, 0, n)
	for i := 0; i < n; i++ {
		a, err := ck.attribute(c, ctx, out, labels, seen)
		if a != nil {
			attrs = append(attrs, a)
		}
		if err != nil {
			return attrs, err
		}
	}
	return attrs, nil
}

func (ck *checker) attribute(c *Cursor, ctx jvm.Context, out Printer, labels *CodeLabels, seen map[string]bool) (*Attribute, error) {
	at := c.Pos()
	nameIndex, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
	if err != nil {
		return nil, err
	}
	body := c.LengthPrefixed(ck.rep)
	if err := c.Err(); err != nil {
		return nil, err
	}
	a := &Attribute{
		Name:    ck.pool.GetUtf8(nameIndex),
		Context: ctx,
		Offset:  at,
		Length:  body.Remaining(),
	}
	desc, known := ck.reg.Attribute(a.Name)
	a.Known = known
	a.InContext = known && desc.InContext(ctx)

	marker := ""
	switch {
	case !known:
		marker = " (unknown)"
	case !a.InContext:
		marker = " (out of context)"
		report(ck.rep, ErrAttributeOutOfContext, at, a.Name, ctx)
	case !desc.SupportedBy(ck.version):
		marker = fmt.Sprintf(" (not supported in %s)", ck.version)
		report(ck.rep, ErrAttributeNotSupported, at, a.Name, ck.version)
	}
	out.Linef("ATTRIBUTE %s%s ; start = %#x length = %#x", a.Name, marker, at, a.Length)
	if !a.InContext {
		return a, nil
	}
	if desc.Unique {
		if seen[a.Name] {
			report(ck.rep, ErrDuplicateAttribute, at, a.Name, ctx)
		}
		seen[a.Name] = true
	}

	if err := ck.payload(body, desc, a, out.Shift(), labels); err != nil {
		return a, err
	}
	if err := body.Err(); err != nil {
		return a, err
	}
	if rem := body.Remaining(); rem > 0 {
		report(ck.rep, ErrTrailingBytes, body.Pos(), rem, a.Name)
	}
	return a, nil
}

func (ck *checker) payload(c *Cursor, desc *jvm.Attribute, a *Attribute, out Printer, labels *CodeLabels) error {
	var n int
	switch desc.Arity {
	case jvm.ArityCode:
		return ck.code(c, a, out)
	case jvm.ArityModule:
		return ck.module(c, out)
	case jvm.ArityRecord:
		return ck.record(c, a, out)
	case jvm.ArityFixed:
		n = 1
	case jvm.ArityArray1:
		n = int(c.U1())
	case jvm.ArityArray:
		n = int(c.U2())
	}
	if err := c.Err(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := ck.item(c, desc, a, i, out, labels); err != nil {
			return err
		}
	}
	return nil
}

// item decodes one record of an attribute, field by field. Simple fields are
// collected onto one line; structured fields print their own lines.
func (ck *checker) item(c *Cursor, desc *jvm.Attribute, a *Attribute, i int, out Printer, labels *CodeLabels) error {
	var parts []string
	start := 0
	for _, kind := range desc.Fields {
		at := c.Pos()
		if tags := kind.PoolTags(); tags != 0 {
			index, err := ck.ref(c, tags, kind.Optional())
			if err != nil {
				return err
			}
			if index == 0 {
				parts = append(parts, "0")
			} else {
				parts = append(parts, ck.pool.StringValue(index))
			}
			continue
		}
		if actx, ok := kind.AccessContext(); ok {
			flags := ck.accessFlags(actx, c.U2(), at)
			parts = append(parts, "["+strings.Join(flags, " ")+"]")
			continue
		}
		switch kind {
		case jvm.FieldU2:
			parts = append(parts, strconv.Itoa(int(c.U2())))
		case jvm.FieldLabel:
			start = ck.label(labels, 0, int(c.U2()))
			parts = append(parts, "@"+strconv.Itoa(start))
		case jvm.FieldLabelLength:
			length := int(c.U2())
			if err := c.Err(); err != nil {
				return err
			}
			end := ck.label(labels, start, length)
			if end < start {
				report(ck.rep, ErrOrderingViolation, at, end, start)
			}
			parts = append(parts, "@"+strconv.Itoa(end))
		case jvm.FieldLocalIndex:
			index := int(c.U2())
			if err := c.Err(); err != nil {
				return err
			}
			if labels != nil {
				labels.CheckLocal(index)
			}
			parts = append(parts, strconv.Itoa(index))
		case jvm.FieldInlineText:
			parts = append(parts, strconv.Quote(ck.text(c, c.Remaining())))
		case jvm.FieldFrame:
			if err := ck.frame(c, labels, out); err != nil {
				return err
			}
			a.Frames++
		case jvm.FieldBootstrap:
			b, err := ck.bootstrap(c, out)
			if err != nil {
				return err
			}
			a.Bootstraps = append(a.Bootstraps, b)
		case jvm.FieldAnnotation:
			ann, err := ck.annotation(c, out)
			if err != nil {
				return err
			}
			a.Annotations = append(a.Annotations, ann)
		case jvm.FieldParameterAnnotations:
			anns, err := ck.parameterAnnotations(c, i, out)
			if err != nil {
				return err
			}
			a.ParameterAnnotations = append(a.ParameterAnnotations, anns)
		case jvm.FieldTypeAnnotation:
			ta, err := ck.typeAnnotation(c, a.Context, labels, out)
			if err != nil {
				return err
			}
			a.TypeAnnotations = append(a.TypeAnnotations, ta)
		case jvm.FieldElementValue:
			ev, err := ck.elementValue(c, out)
			if err != nil {
				return err
			}
			a.Default = ev
		}
		if err := c.Err(); err != nil {
			return err
		}
	}
	if len(parts) > 0 {
		out.Linef("%s", strings.Join(parts, " "))
	}
	return nil
}

// bootstrap decodes one BootstrapMethods entry and registers it with the
// pool. Every static argument must be loadable in the class version.
func (ck *checker) bootstrap(c *Cursor, out Printer) (Bootstrap, error) {
	var b Bootstrap
	handle, err := ck.ref(c, jvm.Tags(jvm.TagMethodHandle), false)
	if err != nil {
		return b, err
	}
	b.Handle = handle
	n := int(c.U2())
	for j := 0; j < n; j++ {
		at := c.Pos()
		index := c.U2()
		if err := c.Err(); err != nil {
			return b, err
		}
		e, err := ck.pool.Lookup(index, jvm.AnyTag)
		if err := ck.fail(at, err); err != nil {
			return b, err
		}
		if e != nil && !e.Tag().LoadableBy(ck.version) {
			report(ck.rep, ErrBootstrapNotLoadable, at, index, e.Tag(), ck.version)
		}
		b.Args = append(b.Args, index)
	}
	if err := c.Err(); err != nil {
		return b, err
	}
	n = ck.pool.BootstrapCount()
	ck.pool.RegisterBootstrap(b)
	if ck.detail {
		ck.pool.printBootstrap(out, n)
	}
	return b, nil
}

// module decodes the Module attribute: the module itself, then its requires,
// exports, opens, uses and provides tables.
func (ck *checker) module(c *Cursor, out Printer) error {
	var err error
	name := ck.poolText(c, jvm.Tags(jvm.TagModule), false, &err)
	flags := ck.accessFlags(jvm.ContextModule, c.U2(), c.Pos()-2)
	version := ck.poolText(c, jvm.Tags(jvm.TagUtf8), true, &err)
	if err != nil {
		return err
	}
	out.Linef("module %s [%s] %s", name, strings.Join(flags, " "), version)

	n := int(c.U2())
	for i := 0; i < n && err == nil; i++ {
		req := ck.poolText(c, jvm.Tags(jvm.TagModule), false, &err)
		flags := ck.accessFlags(jvm.ContextRequires, c.U2(), c.Pos()-2)
		version := ck.poolText(c, jvm.Tags(jvm.TagUtf8), true, &err)
		out.Linef("requires %s [%s] %s", req, strings.Join(flags, " "), version)
	}
	for _, kw := range []string{"exports", "opens"} {
		ctx := jvm.ContextExports
		if kw == "opens" {
			ctx = jvm.ContextOpens
		}
		n = int(c.U2())
		for i := 0; i < n && err == nil; i++ {
			pkg := ck.poolText(c, jvm.Tags(jvm.TagPackage), false, &err)
			flags := ck.accessFlags(ctx, c.U2(), c.Pos()-2)
			to := ck.poolList(c, jvm.Tags(jvm.TagModule), &err)
			out.Linef("%s %s [%s] to %s", kw, pkg, strings.Join(flags, " "), strings.Join(to, " "))
		}
	}
	n = int(c.U2())
	for i := 0; i < n && err == nil; i++ {
		out.Linef("uses %s", ck.poolText(c, jvm.Tags(jvm.TagClass), false, &err))
	}
	n = int(c.U2())
	for i := 0; i < n && err == nil; i++ {
		service := ck.poolText(c, jvm.Tags(jvm.TagClass), false, &err)
		with := ck.poolList(c, jvm.Tags(jvm.TagClass), &err)
		out.Linef("provides %s with %s", service, strings.Join(with, " "))
	}
	if err != nil {
		return err
	}
	return c.Err()
}

// poolText reads a reference and renders it. It does nothing once *err is
// set, and sets *err on a fatal violation.
func (ck *checker) poolText(c *Cursor, tags jvm.TagSet, optional bool, err *error) string {
	if *err != nil {
		return ""
	}
	index, e := ck.ref(c, tags, optional)
	if e != nil {
		*err = e
		return ""
	}
	if index == 0 {
		return ""
	}
	return ck.pool.StringValue(index)
}

func (ck *checker) poolList(c *Cursor, tags jvm.TagSet, err *error) []string {
	n := int(c.U2())
	var out []string
	for i := 0; i < n && *err == nil; i++ {
		out = append(out, ck.poolText(c, tags, false, err))
	}
	return out
}

// record decodes the Record attribute: each component is a name, a
// descriptor and its own attribute list.
func (ck *checker) record(c *Cursor, a *Attribute, out Printer) error {
	n := int(c.U2())
	if err := c.Err(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		m := &Member{Offset: c.Pos()}
		name, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
		if err != nil {
			return err
		}
		desc, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
		if err != nil {
			return err
		}
		m.Name = ck.pool.GetUtf8(name)
		m.Descriptor = ck.pool.GetUtf8(desc)
		m.Type = ck.descriptor(jvm.ContextComponent, m.Descriptor, m.Offset+2)
		out.Linef("COMPONENT %s %s ; start = %#x", m.Name, m.Descriptor, m.Offset)
		a.Components = append(a.Components, m)
		m.Attributes, err = ck.attributes(c, jvm.ContextComponent, out.Shift(), nil)
		if err != nil {
			return err
		}
	}
	return nil
}
