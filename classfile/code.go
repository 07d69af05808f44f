package classfile

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classcheck/jvm"
)

// code decodes a Code attribute. Instructions are scanned first so that the
// exception table and the nested attributes see the finished label state.
func (ck *checker) code(c *Cursor, a *Attribute, out Printer) error {
	maxStack := int(c.U2())
	maxLocals := int(c.U2())
	body := c.LengthPrefixed(ck.rep)
	if err := c.Err(); err != nil {
		return err
	}
	code := &CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Length: body.Remaining()}
	a.Code = code
	out.Linef("max_stack = %d max_locals = %d code_length = %d ; start = %#x", maxStack, maxLocals, code.Length, body.Pos())

	labels := NewCodeLabels(maxLocals, code.Length, body.Pos(), ck.rep)
	if err := ck.instructions(body, labels, code, out); err != nil {
		return err
	}
	labels.FinalizeAndCheck()

	n := int(c.U2())
	for i := 0; i < n; i++ {
		at := c.Pos()
		start := labels.ResolveLabel(0, int(c.U2()))
		end := labels.ResolveLabel(0, int(c.U2()))
		handler := labels.ResolveLabel(0, int(c.U2()))
		catch, err := ck.ref(c, jvm.Tags(jvm.TagClass), true)
		if err != nil {
			return err
		}
		if end < start {
			report(ck.rep, ErrOrderingViolation, at, end, start)
		}
		h := Handler{Start: start, End: end, Handler: handler, CatchType: ck.pool.GetClassName(catch)}
		code.Handlers = append(code.Handlers, h)
		catchType := h.CatchType
		if catchType == "" {
			catchType = "all"
		}
		out.Linef(".catch %s @%d @%d @%d", catchType, start, end, handler)
	}
	if err := c.Err(); err != nil {
		return err
	}

	attrs, err := ck.attributes(c, jvm.ContextCode, out, labels)
	code.Attributes = attrs
	return err
}

// instructions scans the code array once, marking every instruction start.
func (ck *checker) instructions(c *Cursor, labels *CodeLabels, code *CodeAttribute, out Printer) error {
	origin := c.Pos()
	for c.Remaining() > 0 {
		at := c.Pos()
		off := at - origin
		labels.MarkInstructionStart(off)
		b := c.U1()
		op, ok := ck.reg.Opcode(b)
		if !ok {
			return report(ck.rep, ErrUnknownOpcode, at, b)
		}
		if op.Shape == jvm.ShapeWide {
			b = c.U1()
			if err := c.Err(); err != nil {
				return err
			}
			if op, ok = ck.reg.WideOpcode(b); !ok {
				return report(ck.rep, ErrUnknownOpcode, at+1, b)
			}
		}

		var operands string
		var err error
		switch op.Shape {
		case jvm.ShapeTableSwitch:
			err = ck.tableSwitch(c, off, labels, out)
		case jvm.ShapeLookupSwitch:
			err = ck.lookupSwitch(c, off, labels, out)
		default:
			if op.Implied >= 0 {
				labels.CheckLocal(op.Implied)
			}
			operands, err = ck.operands(c, op, off, labels)
			if err == nil {
				err = c.Err()
			}
			if err == nil {
				out.Linef("%5d:  %s%s", off, op.Name, operands)
			}
		}
		if err != nil {
			return err
		}
		code.Instructions = append(code.Instructions, Instruction{Offset: off, Mnemonic: op.Name, Operands: strings.TrimSpace(operands)})
	}
	return c.Err()
}

// operands decodes the fixed operand parts of op and renders them.
func (ck *checker) operands(c *Cursor, op *jvm.Opcode, off int, labels *CodeLabels) (string, error) {
	var sb strings.Builder
	for _, part := range op.Parts {
		at := c.Pos()
		switch part {
		case jvm.PartCP:
			var index uint16
			if op.ShortIndex {
				index = uint16(c.U1())
			} else {
				index = c.U2()
			}
			if err := c.Err(); err != nil {
				return "", err
			}
			if err := ck.resolve(at, index, op.Pool, false); err != nil {
				return "", err
			}
			if e := ck.pool.Entry(index); op.Shape == jvm.ShapeConstant && e != nil && !e.Tag().LoadableBy(ck.version) {
				report(ck.rep, ErrNotLoadable, at, index, e.Tag(), ck.version)
			}
			fmt.Fprintf(&sb, " %s", ck.pool.StringValue(index))
		case jvm.PartLabel:
			var delta int
			if op.Wide {
				delta = int(c.S4())
			} else {
				delta = int(c.S2())
			}
			if err := c.Err(); err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, " @%d", labels.ResolveLabel(off, delta))
		case jvm.PartVar:
			var index int
			if op.Wide {
				index = int(c.U2())
			} else {
				index = int(c.U1())
			}
			if err := c.Err(); err != nil {
				return "", err
			}
			labels.CheckLocal(index)
			fmt.Fprintf(&sb, " %d", index)
		case jvm.PartIncr:
			if op.Wide {
				fmt.Fprintf(&sb, " %d", c.S2())
			} else {
				fmt.Fprintf(&sb, " %d", c.S1())
			}
		case jvm.PartByte:
			fmt.Fprintf(&sb, " %d", c.S1())
		case jvm.PartShort:
			fmt.Fprintf(&sb, " %d", c.S2())
		case jvm.PartType:
			t := c.U1()
			name, ok := ck.reg.ArrayType(t)
			if !ok && c.Err() == nil {
				report(ck.rep, ErrInvalidArrayType, at, t)
				name = fmt.Sprint(t)
			}
			fmt.Fprintf(&sb, " %s", name)
		case jvm.PartUByte:
			fmt.Fprintf(&sb, " %d", c.U1())
		case jvm.PartZero:
			if z := c.U1(); z != 0 {
				report(ck.rep, ErrNonZeroOperand, at, op.Name, z)
			}
		}
	}
	return sb.String(), nil
}

// switchPadding skips to the next four-byte boundary of the code array.
func switchPadding(c *Cursor, off int) {
	c.Skip((4 - ((off + 1) & 3)) & 3)
}

func (ck *checker) tableSwitch(c *Cursor, off int, labels *CodeLabels, out Printer) error {
	switchPadding(c, off)
	deflt := int(c.S4())
	low := c.S4()
	high := c.S4()
	if err := c.Err(); err != nil {
		return err
	}
	out.Linef("%5d:  %s default @%d .array", off, "tableswitch", labels.ResolveLabel(off, deflt))
	if low > high {
		report(ck.rep, ErrRangeViolation, c.Pos()-8, low, high)
		out.Linef("        .end_array")
		return nil
	}
	n := int64(high) - int64(low) + 1
	if n*4 > int64(c.Remaining()) {
		return report(ck.rep, ErrOffsetOverflow, c.Pos(), n, c.Remaining())
	}
	for i := int64(0); i < n; i++ {
		target := labels.ResolveLabel(off, int(c.S4()))
		out.Linef("             %d -> @%d", int64(low)+i, target)
	}
	out.Linef("        .end_array")
	return c.Err()
}

func (ck *checker) lookupSwitch(c *Cursor, off int, labels *CodeLabels, out Printer) error {
	switchPadding(c, off)
	deflt := int(c.S4())
	n := int64(c.S4())
	if err := c.Err(); err != nil {
		return err
	}
	out.Linef("%5d:  %s default @%d .array", off, "lookupswitch", labels.ResolveLabel(off, deflt))
	if n < 0 || n*8 > int64(c.Remaining()) {
		return report(ck.rep, ErrOffsetOverflow, c.Pos(), n, c.Remaining())
	}
	for i := int64(0); i < n; i++ {
		key := c.S4()
		target := labels.ResolveLabel(off, int(c.S4()))
		out.Linef("             %d -> @%d", key, target)
	}
	out.Linef("        .end_array")
	return c.Err()
}
