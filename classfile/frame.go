package classfile

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classcheck/jvm"
)

// frame decodes one stack map frame and advances the frame offset.
func (ck *checker) frame(c *Cursor, labels *CodeLabels, out Printer) error {
	at := c.Pos()
	tag := c.U1()
	if err := c.Err(); err != nil {
		return err
	}
	ft, ok := ck.reg.FrameType(tag)
	if !ok {
		return report(ck.rep, ErrInvalidFrameTag, at, tag)
	}
	delta := int(tag)
	if tag >= 64 && tag < 128 {
		delta = int(tag) - 64
	}
	if ft.ExplicitDelta {
		delta = int(c.U2())
	}
	if err := c.Err(); err != nil {
		return err
	}
	offset := delta
	if labels != nil {
		offset = labels.AddFrameDelta(delta)
	}

	var types []string
	read := func(n int) error {
		for i := 0; i < n; i++ {
			t, err := ck.verificationType(c, labels)
			if err != nil {
				return err
			}
			types = append(types, t)
		}
		return nil
	}
	if ft.Full {
		if err := read(int(c.U2())); err != nil {
			return err
		}
		types = append(types, "|")
		if err := read(int(c.U2())); err != nil {
			return err
		}
	} else if err := read(ft.Locals + ft.Stack); err != nil {
		return err
	}
	if len(types) == 0 {
		out.Linef("@%d %s", offset, ft.Name)
	} else {
		out.Linef("@%d %s %s", offset, ft.Name, strings.Join(types, " "))
	}
	return c.Err()
}

func (ck *checker) verificationType(c *Cursor, labels *CodeLabels) (string, error) {
	at := c.Pos()
	tag := c.U1()
	if err := c.Err(); err != nil {
		return "", err
	}
	vt, ok := ck.reg.VerificationType(tag)
	if !ok {
		return "", report(ck.rep, ErrInvalidVerificationType, at, tag)
	}
	switch vt.Extra {
	case jvm.ExtraClass:
		index, err := ck.ref(c, jvm.Tags(jvm.TagClass), false)
		if err != nil {
			return "", err
		}
		return vt.Name + " " + ck.pool.GetClassName(index), nil
	case jvm.ExtraOffset:
		off := int(c.U2())
		if err := c.Err(); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s @%d", vt.Name, ck.label(labels, 0, off)), nil
	}
	return vt.Name, nil
}
