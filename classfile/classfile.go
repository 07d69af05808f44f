package classfile

import "github.com/dhamidi/classcheck/jvm"

const Magic = 0xCAFEBABE

// Registry is the read-only lookup service over the format tables.
// jvm.Standard() implements it.
type Registry interface {
	Attribute(name string) (*jvm.Attribute, bool)
	Opcode(code byte) (*jvm.Opcode, bool)
	WideOpcode(code byte) (*jvm.Opcode, bool)
	AccessFlags(ctx jvm.Context, flags uint16, v jvm.Version) ([]string, uint16)
	Target(kind byte) (*jvm.Target, bool)
	HandleTargets(kind byte, v jvm.Version) (jvm.TagSet, bool)
	VerificationType(tag byte) (*jvm.VerificationType, bool)
	FrameType(tag byte) (jvm.FrameType, bool)
	ArrayType(code byte) (string, bool)
}

// Printer receives the trace one line at a time. Shift returns a printer
// one level further indented.
type Printer interface {
	Linef(format string, args ...any)
	Shift() Printer
}

type discardPrinter struct{}

func (discardPrinter) Linef(string, ...any) {}
func (p discardPrinter) Shift() Printer     { return p }

// ClassFile summarises a checked class file.
type ClassFile struct {
	Version      jvm.Version   `json:"version"`
	ConstantPool *ConstantPool `json:"-"`
	AccessFlags  uint16        `json:"access_flags"`
	Flags        []string      `json:"flags,omitempty"`
	ThisClass    string        `json:"this_class"`
	SuperClass   string        `json:"super_class,omitempty"`
	Interfaces   []string      `json:"interfaces,omitempty"`
	Fields       []*Member     `json:"fields,omitempty"`
	Methods      []*Member     `json:"methods,omitempty"`
	Attributes   []*Attribute  `json:"attributes,omitempty"`
}

func (cf *ClassFile) IsModule() bool {
	return jvm.AccessFlags(cf.AccessFlags).Has(jvm.AccModule)
}

func (cf *ClassFile) IsInterface() bool {
	return jvm.AccessFlags(cf.AccessFlags).Has(jvm.AccInterface)
}

func (cf *ClassFile) GetField(name string) *Member {
	for _, f := range cf.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (cf *ClassFile) GetMethod(name, descriptor string) *Member {
	for _, m := range cf.Methods {
		if m.Name == name && (descriptor == "" || m.Descriptor == descriptor) {
			return m
		}
	}
	return nil
}

func (cf *ClassFile) GetAttribute(name string) *Attribute {
	return findAttribute(cf.Attributes, name)
}

// Member is a field, method or record component.
type Member struct {
	Name        string       `json:"name"`
	Descriptor  string       `json:"descriptor"`
	Type        string       `json:"type,omitempty"`
	AccessFlags uint16       `json:"access_flags"`
	Flags       []string     `json:"flags,omitempty"`
	Offset      int          `json:"offset"`
	Attributes  []*Attribute `json:"attributes,omitempty"`
}

func (m *Member) GetAttribute(name string) *Attribute {
	return findAttribute(m.Attributes, name)
}

func (m *Member) GetCode() *CodeAttribute {
	if a := m.GetAttribute("Code"); a != nil {
		return a.Code
	}
	return nil
}

// Attribute records where an attribute was found and what was decoded from
// it. Unknown and out of context attributes carry no payload.
type Attribute struct {
	Name      string      `json:"name"`
	Context   jvm.Context `json:"-"`
	Offset    int         `json:"offset"`
	Length    int         `json:"length"`
	Known     bool        `json:"known"`
	InContext bool        `json:"in_context"`

	Code                 *CodeAttribute    `json:"code,omitempty"`
	Annotations          []*Annotation     `json:"annotations,omitempty"`
	ParameterAnnotations [][]*Annotation   `json:"parameter_annotations,omitempty"`
	TypeAnnotations      []*TypeAnnotation `json:"type_annotations,omitempty"`
	Default              *ElementValue     `json:"default,omitempty"`
	Bootstraps           []Bootstrap       `json:"bootstraps,omitempty"`
	Components           []*Member         `json:"components,omitempty"`
	Frames               int               `json:"frames,omitempty"`
}

func findAttribute(attrs []*Attribute, name string) *Attribute {
	for _, a := range attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// CodeAttribute is the decoded body of a Code attribute. Offsets are relative
// to the first instruction.
type CodeAttribute struct {
	MaxStack     int           `json:"max_stack"`
	MaxLocals    int           `json:"max_locals"`
	Length       int           `json:"length"`
	Instructions []Instruction `json:"instructions,omitempty"`
	Handlers     []Handler     `json:"handlers,omitempty"`
	Attributes   []*Attribute  `json:"attributes,omitempty"`
}

type Instruction struct {
	Offset   int    `json:"offset"`
	Mnemonic string `json:"mnemonic"`
	Operands string `json:"operands,omitempty"`
}

type Handler struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Handler   int    `json:"handler"`
	CatchType string `json:"catch_type,omitempty"`
}
