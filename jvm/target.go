package jvm

// TargetShape is the payload layout of a type annotation target.
type TargetShape uint8

const (
	TargetTypeParameter TargetShape = iota + 1
	TargetSupertype
	TargetTypeParameterBound
	TargetEmpty
	TargetFormalParameter
	TargetThrows
	TargetLocalVar
	TargetCatch
	TargetOffset
	TargetTypeArgument
)

// Target describes a type annotation target kind.
type Target struct {
	Kind    byte
	Name    string
	Context Context
	Shape   TargetShape
}

var targets = map[byte]*Target{
	0x00: {Kind: 0x00, Name: "class_type_parameter", Context: ContextClass, Shape: TargetTypeParameter},
	0x01: {Kind: 0x01, Name: "method_type_parameter", Context: ContextMethod, Shape: TargetTypeParameter},
	0x10: {Kind: 0x10, Name: "class_extends", Context: ContextClass, Shape: TargetSupertype},
	0x11: {Kind: 0x11, Name: "class_type_parameter_bound", Context: ContextClass, Shape: TargetTypeParameterBound},
	0x12: {Kind: 0x12, Name: "method_type_parameter_bound", Context: ContextMethod, Shape: TargetTypeParameterBound},
	0x13: {Kind: 0x13, Name: "field", Context: ContextField, Shape: TargetEmpty},
	0x14: {Kind: 0x14, Name: "method_return", Context: ContextMethod, Shape: TargetEmpty},
	0x15: {Kind: 0x15, Name: "method_receiver", Context: ContextMethod, Shape: TargetEmpty},
	0x16: {Kind: 0x16, Name: "method_formal_parameter", Context: ContextMethod, Shape: TargetFormalParameter},
	0x17: {Kind: 0x17, Name: "throws", Context: ContextMethod, Shape: TargetThrows},
	0x40: {Kind: 0x40, Name: "local_variable", Context: ContextCode, Shape: TargetLocalVar},
	0x41: {Kind: 0x41, Name: "resource_variable", Context: ContextCode, Shape: TargetLocalVar},
	0x42: {Kind: 0x42, Name: "exception_parameter", Context: ContextCatch, Shape: TargetCatch},
	0x43: {Kind: 0x43, Name: "instanceof", Context: ContextCode, Shape: TargetOffset},
	0x44: {Kind: 0x44, Name: "new", Context: ContextCode, Shape: TargetOffset},
	0x45: {Kind: 0x45, Name: "constructor_reference", Context: ContextCode, Shape: TargetOffset},
	0x46: {Kind: 0x46, Name: "method_reference", Context: ContextCode, Shape: TargetOffset},
	0x47: {Kind: 0x47, Name: "cast", Context: ContextCode, Shape: TargetTypeArgument},
	0x48: {Kind: 0x48, Name: "constructor_invocation_type_argument", Context: ContextCode, Shape: TargetTypeArgument},
	0x49: {Kind: 0x49, Name: "method_invocation_type_argument", Context: ContextCode, Shape: TargetTypeArgument},
	0x4a: {Kind: 0x4a, Name: "constructor_reference_type_argument", Context: ContextCode, Shape: TargetTypeArgument},
	0x4b: {Kind: 0x4b, Name: "method_reference_type_argument", Context: ContextCode, Shape: TargetTypeArgument},
}

// Type path step kinds.
const (
	PathArray    byte = 0
	PathNested   byte = 1
	PathWildcard byte = 2
	PathTypeArg  byte = 3
)

// VerificationExtra is the operand carried by a verification type.
type VerificationExtra uint8

const (
	ExtraNone VerificationExtra = iota
	ExtraClass
	ExtraOffset
)

type VerificationType struct {
	Tag   byte
	Name  string
	Extra VerificationExtra
}

var verificationTypes = [...]VerificationType{
	{Tag: 0, Name: "top"},
	{Tag: 1, Name: "int"},
	{Tag: 2, Name: "float"},
	{Tag: 3, Name: "double"},
	{Tag: 4, Name: "long"},
	{Tag: 5, Name: "null"},
	{Tag: 6, Name: "uninitialized_this"},
	{Tag: 7, Name: "object", Extra: ExtraClass},
	{Tag: 8, Name: "uninitialized", Extra: ExtraOffset},
}

// FrameType is the layout selected by a stack map frame tag.
type FrameType struct {
	Name string
	// ExplicitDelta frames carry a two-byte offset delta after the tag.
	ExplicitDelta bool
	// Stack is the number of stack verification types that follow.
	Stack int
	// Locals is the number of appended local verification types.
	Locals int
	// Full frames carry counted locals and stack lists.
	Full bool
}

func frameType(tag byte) (FrameType, bool) {
	switch {
	case tag < 64:
		return FrameType{Name: "same"}, true
	case tag < 128:
		return FrameType{Name: "same_locals_1_stack_item", Stack: 1}, true
	case tag == 247:
		return FrameType{Name: "same_locals_1_stack_item_extended", ExplicitDelta: true, Stack: 1}, true
	case tag >= 248 && tag <= 250:
		return FrameType{Name: "chop", ExplicitDelta: true}, true
	case tag == 251:
		return FrameType{Name: "same_frame_extended", ExplicitDelta: true}, true
	case tag >= 252 && tag <= 254:
		return FrameType{Name: "append", ExplicitDelta: true, Locals: int(tag) - 251}, true
	case tag == 255:
		return FrameType{Name: "full_frame", ExplicitDelta: true, Full: true}, true
	}
	return FrameType{}, false
}
