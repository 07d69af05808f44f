package classfile

import "strings"

// FieldType is a parsed field descriptor.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(strings.ReplaceAll(ft.ClassName, "/", "."))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// MethodDescriptor is a parsed method descriptor. ReturnType is nil for void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	if md.ReturnType != nil {
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString("void")
	}
	sb.WriteString(" (")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// ParseFieldDescriptor parses desc, which must hold exactly one field type.
func ParseFieldDescriptor(desc string) (*FieldType, bool) {
	ft, n := parseFieldType(desc, 0)
	if ft == nil || n != len(desc) {
		return nil, false
	}
	return ft, true
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, bool) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, false
	}
	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, n := parseFieldType(desc, i)
		if ft == nil {
			return nil, false
		}
		md.Parameters = append(md.Parameters, *ft)
		i += n
	}
	if i >= len(desc) {
		return nil, false
	}
	i++
	if desc[i:] == "V" {
		return md, true
	}
	ft, n := parseFieldType(desc, i)
	if ft == nil || i+n != len(desc) {
		return nil, false
	}
	md.ReturnType = ft
	return md, true
}

var baseTypes = map[byte]string{
	'B': "byte", 'C': "char", 'D': "double", 'F': "float",
	'I': "int", 'J': "long", 'S': "short", 'Z': "boolean",
}

func parseFieldType(desc string, start int) (*FieldType, int) {
	ft := &FieldType{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) || ft.ArrayDepth > 255 {
		return nil, 0
	}
	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i - start + 1
	}
	if desc[i] != 'L' {
		return nil, 0
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon <= 1 {
		return nil, 0
	}
	ft.ClassName = desc[i+1 : i+semicolon]
	return ft, i - start + semicolon + 1
}
