package classfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/classcheck/jvm"
)

type Annotation struct {
	Type     string             `json:"type"`
	Elements []ElementValuePair `json:"elements,omitempty"`
}

type ElementValuePair struct {
	Name  string        `json:"name"`
	Value *ElementValue `json:"value"`
}

// ElementValue is one annotation element value. Tag selects which of the
// other fields is set: Value for constants, strings and class literals,
// EnumType and EnumName for 'e', Annotation for '@' and Values for '['.
type ElementValue struct {
	Tag        string          `json:"tag"`
	Value      string          `json:"value,omitempty"`
	EnumType   string          `json:"enum_type,omitempty"`
	EnumName   string          `json:"enum_name,omitempty"`
	Annotation *Annotation     `json:"annotation,omitempty"`
	Values     []*ElementValue `json:"values,omitempty"`
}

func (ev *ElementValue) String() string {
	switch ev.Tag {
	case "e":
		return ev.EnumType + "." + ev.EnumName
	case "@":
		return ev.Annotation.String()
	case "[":
		parts := make([]string, len(ev.Values))
		for i, v := range ev.Values {
			parts[i] = v.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case "s":
		return strconv.Quote(ev.Value)
	case "c":
		return ev.Value + ".class"
	}
	return ev.Value
}

func (a *Annotation) String() string {
	parts := make([]string, len(a.Elements))
	for i, p := range a.Elements {
		parts[i] = p.Name + " = " + p.Value.String()
	}
	return "@" + a.Type + "(" + strings.Join(parts, ", ") + ")"
}

type TypeAnnotation struct {
	Target     byte            `json:"target"`
	TargetName string          `json:"target_name"`
	Info       TargetInfo      `json:"info"`
	Path       []TypePathEntry `json:"path,omitempty"`
	Annotation *Annotation     `json:"annotation"`
}

// TargetInfo holds the payload of a type annotation target. Which fields are
// meaningful depends on the target kind.
type TargetInfo struct {
	Index     int             `json:"index,omitempty"`
	Bound     int             `json:"bound,omitempty"`
	Offset    int             `json:"offset,omitempty"`
	LocalVars []LocalVarRange `json:"local_vars,omitempty"`
}

type LocalVarRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Index int `json:"index"`
}

type TypePathEntry struct {
	Kind          uint8 `json:"kind"`
	ArgumentIndex uint8 `json:"argument_index"`
}

func (ck *checker) annotation(c *Cursor, out Printer) (*Annotation, error) {
	ann, err := ck.decodeAnnotation(c)
	if err != nil {
		return nil, err
	}
	out.Linef("%s", ann)
	return ann, nil
}

func (ck *checker) decodeAnnotation(c *Cursor) (*Annotation, error) {
	typ, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
	if err != nil {
		return nil, err
	}
	ann := &Annotation{Type: ck.pool.GetUtf8(typ)}
	n := int(c.U2())
	for i := 0; i < n; i++ {
		name, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
		if err != nil {
			return nil, err
		}
		value, err := ck.decodeElementValue(c)
		if err != nil {
			return nil, err
		}
		ann.Elements = append(ann.Elements, ElementValuePair{Name: ck.pool.GetUtf8(name), Value: value})
	}
	return ann, c.Err()
}

func (ck *checker) elementValue(c *Cursor, out Printer) (*ElementValue, error) {
	ev, err := ck.decodeElementValue(c)
	if err != nil {
		return nil, err
	}
	out.Linef("%s", ev)
	return ev, nil
}

func (ck *checker) decodeElementValue(c *Cursor) (*ElementValue, error) {
	at := c.Pos()
	tag := c.U1()
	if err := c.Err(); err != nil {
		return nil, err
	}
	ev := &ElementValue{Tag: string(rune(tag))}
	var tags jvm.TagSet
	switch tag {
	case 'B', 'C', 'I', 'S', 'Z':
		tags = jvm.Tags(jvm.TagInteger)
	case 'J':
		tags = jvm.Tags(jvm.TagLong)
	case 'F':
		tags = jvm.Tags(jvm.TagFloat)
	case 'D':
		tags = jvm.Tags(jvm.TagDouble)
	case 's', 'c':
		tags = jvm.Tags(jvm.TagUtf8)
	case 'e':
		typ, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
		if err != nil {
			return nil, err
		}
		name, err := ck.ref(c, jvm.Tags(jvm.TagUtf8), false)
		if err != nil {
			return nil, err
		}
		ev.EnumType = ck.pool.GetUtf8(typ)
		ev.EnumName = ck.pool.GetUtf8(name)
		return ev, nil
	case '@':
		ann, err := ck.decodeAnnotation(c)
		if err != nil {
			return nil, err
		}
		ev.Annotation = ann
		return ev, nil
	case '[':
		n := int(c.U2())
		for i := 0; i < n; i++ {
			v, err := ck.decodeElementValue(c)
			if err != nil {
				return nil, err
			}
			ev.Values = append(ev.Values, v)
		}
		return ev, c.Err()
	default:
		return nil, report(ck.rep, ErrUnknownElementTag, at, rune(tag))
	}
	index, err := ck.ref(c, tags, false)
	if err != nil {
		return nil, err
	}
	ev.Value = ck.pool.StringValue(index)
	return ev, nil
}

// parameterAnnotations decodes the annotations of parameter i.
func (ck *checker) parameterAnnotations(c *Cursor, i int, out Printer) ([]*Annotation, error) {
	n := int(c.U2())
	if err := c.Err(); err != nil {
		return nil, err
	}
	out.Linef("parameter %d", i)
	anns := make([]*Annotation, 0, n)
	for j := 0; j < n; j++ {
		ann, err := ck.annotation(c, out.Shift())
		if err != nil {
			return nil, err
		}
		anns = append(anns, ann)
	}
	return anns, nil
}

// typeAnnotation decodes a type annotation found in ctx. An exception
// parameter target belongs in code. Targets are accepted anywhere inside a
// record component, and field targets are accepted in any context.
func (ck *checker) typeAnnotation(c *Cursor, ctx jvm.Context, labels *CodeLabels, out Printer) (*TypeAnnotation, error) {
	at := c.Pos()
	kind := c.U1()
	if err := c.Err(); err != nil {
		return nil, err
	}
	tg, ok := ck.reg.Target(kind)
	if !ok {
		return nil, report(ck.rep, ErrUnknownTargetKind, at, kind)
	}
	expected := tg.Context
	if expected == jvm.ContextCatch {
		expected = jvm.ContextCode
	}
	if expected != ctx && ctx != jvm.ContextComponent && expected != jvm.ContextField {
		return nil, report(ck.rep, ErrTargetContextMismatch, at, tg.Name, expected, ctx)
	}

	ta := &TypeAnnotation{Target: kind, TargetName: tg.Name}
	info := &ta.Info
	switch tg.Shape {
	case jvm.TargetTypeParameter, jvm.TargetFormalParameter:
		info.Index = int(c.U1())
	case jvm.TargetSupertype, jvm.TargetThrows, jvm.TargetCatch:
		info.Index = int(c.U2())
	case jvm.TargetTypeParameterBound:
		info.Index = int(c.U1())
		info.Bound = int(c.U1())
	case jvm.TargetOffset:
		info.Offset = ck.label(labels, 0, int(c.U2()))
	case jvm.TargetTypeArgument:
		info.Offset = ck.label(labels, 0, int(c.U2()))
		info.Index = int(c.U1())
	case jvm.TargetLocalVar:
		n := int(c.U2())
		for i := 0; i < n && c.Err() == nil; i++ {
			start := ck.label(labels, 0, int(c.U2()))
			end := ck.label(labels, start, int(c.U2()))
			index := int(c.U2())
			if labels != nil && c.Err() == nil {
				labels.CheckLocal(index)
			}
			info.LocalVars = append(info.LocalVars, LocalVarRange{Start: start, End: end, Index: index})
		}
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	n := int(c.U1())
	for i := 0; i < n; i++ {
		at := c.Pos()
		step := TypePathEntry{Kind: c.U1(), ArgumentIndex: c.U1()}
		if err := c.Err(); err != nil {
			return nil, err
		}
		if step.Kind > jvm.PathTypeArg {
			report(ck.rep, ErrPathKindOutOfRange, at, step.Kind)
		}
		if step.ArgumentIndex != 0 && step.Kind != jvm.PathTypeArg {
			report(ck.rep, ErrPathArgIndexInvalid, at+1, step.ArgumentIndex, step.Kind)
		}
		ta.Path = append(ta.Path, step)
	}

	ann, err := ck.decodeAnnotation(c)
	if err != nil {
		return nil, err
	}
	ta.Annotation = ann
	out.Linef("%s %s%s %s", tg.Name, targetText(tg.Shape, ta.Info), pathText(ta.Path), ann)
	return ta, nil
}

func targetText(shape jvm.TargetShape, info TargetInfo) string {
	switch shape {
	case jvm.TargetEmpty:
		return ""
	case jvm.TargetTypeParameterBound:
		return fmt.Sprintf("%d %d", info.Index, info.Bound)
	case jvm.TargetOffset:
		return fmt.Sprintf("@%d", info.Offset)
	case jvm.TargetTypeArgument:
		return fmt.Sprintf("@%d %d", info.Offset, info.Index)
	case jvm.TargetLocalVar:
		parts := make([]string, len(info.LocalVars))
		for i, lv := range info.LocalVars {
			parts[i] = fmt.Sprintf("[@%d @%d %d]", lv.Start, lv.End, lv.Index)
		}
		return strings.Join(parts, " ")
	}
	return strconv.Itoa(info.Index)
}

func pathText(path []TypePathEntry) string {
	if len(path) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" path")
	for _, p := range path {
		fmt.Fprintf(&sb, " %d:%d", p.Kind, p.ArgumentIndex)
	}
	return sb.String()
}
