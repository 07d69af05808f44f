package jvm

// Arity describes how many items an attribute payload holds.
type Arity uint8

const (
	// ArityFixed payloads hold exactly one item.
	ArityFixed Arity = iota
	// ArityArray1 payloads start with a one-byte item count.
	ArityArray1
	// ArityArray payloads start with a two-byte item count.
	ArityArray
	ArityModule
	ArityCode
	ArityRecord
)

// FieldKind is one element of an attribute item layout.
type FieldKind uint8

const (
	FieldConstant FieldKind = iota + 1
	FieldClass
	FieldOptClass
	FieldUtf8
	FieldOptUtf8
	FieldOptNameAndType
	FieldPackage
	FieldU2
	FieldLabel
	FieldLabelLength
	FieldLocalIndex
	FieldInnerClassAccess
	FieldParameterAccess
	FieldInlineText
	FieldFrame
	FieldBootstrap
	FieldAnnotation
	FieldParameterAnnotations
	FieldTypeAnnotation
	FieldElementValue
)

var fieldKindNames = [...]string{
	FieldConstant:             "constant",
	FieldClass:                "class",
	FieldOptClass:             "class?",
	FieldUtf8:                 "utf8",
	FieldOptUtf8:              "utf8?",
	FieldOptNameAndType:       "name_and_type?",
	FieldPackage:              "package",
	FieldU2:                   "u2",
	FieldLabel:                "label",
	FieldLabelLength:          "label_length",
	FieldLocalIndex:           "local",
	FieldInnerClassAccess:     "inner_class_access",
	FieldParameterAccess:      "parameter_access",
	FieldInlineText:           "text",
	FieldFrame:                "frame",
	FieldBootstrap:            "bootstrap",
	FieldAnnotation:           "annotation",
	FieldParameterAnnotations: "parameter_annotations",
	FieldTypeAnnotation:       "type_annotation",
	FieldElementValue:         "element_value",
}

func (k FieldKind) String() string {
	if int(k) < len(fieldKindNames) && fieldKindNames[k] != "" {
		return fieldKindNames[k]
	}
	return "invalid"
}

// PoolTags returns the tags a pool reference field accepts, or 0 when the
// field is not a pool reference.
func (k FieldKind) PoolTags() TagSet {
	switch k {
	case FieldConstant:
		return Tags(TagInteger, TagFloat, TagLong, TagDouble, TagString)
	case FieldClass, FieldOptClass:
		return Tags(TagClass)
	case FieldUtf8, FieldOptUtf8:
		return Tags(TagUtf8)
	case FieldOptNameAndType:
		return Tags(TagNameAndType)
	case FieldPackage:
		return Tags(TagPackage)
	}
	return 0
}

func (k FieldKind) Optional() bool {
	return k == FieldOptClass || k == FieldOptUtf8 || k == FieldOptNameAndType
}

// AccessContext returns the context whose flag table an access field uses.
func (k FieldKind) AccessContext() (Context, bool) {
	switch k {
	case FieldInnerClassAccess:
		return ContextInnerClass, true
	case FieldParameterAccess:
		return ContextParameter, true
	}
	return 0, false
}

// Attribute describes the layout of a named attribute.
type Attribute struct {
	Name     string
	Arity    Arity
	Fields   []FieldKind
	Contexts ContextSet
	// Unique attributes may appear at most once per context.
	Unique bool
	Since  uint16
}

func (a *Attribute) InContext(c Context) bool {
	return a.Contexts.Has(c)
}

func (a *Attribute) SupportedBy(v Version) bool {
	return v.Major >= a.Since
}

var (
	declContexts = Contexts(ContextClass, ContextField, ContextMethod)
	annoContexts = Contexts(ContextClass, ContextModule, ContextField, ContextMethod, ContextComponent)
	typeContexts = Contexts(ContextClass, ContextField, ContextMethod, ContextCode, ContextComponent)
)

var standardAttributes = []*Attribute{
	{Name: "ConstantValue", Arity: ArityFixed, Fields: []FieldKind{FieldConstant}, Contexts: Contexts(ContextField), Unique: true, Since: MinMajor},
	{Name: "Code", Arity: ArityCode, Contexts: Contexts(ContextMethod), Unique: true, Since: MinMajor},
	{Name: "StackMapTable", Arity: ArityArray, Fields: []FieldKind{FieldFrame}, Contexts: Contexts(ContextCode), Unique: true, Since: Java6},
	{Name: "Exceptions", Arity: ArityArray, Fields: []FieldKind{FieldClass}, Contexts: Contexts(ContextMethod), Unique: true, Since: MinMajor},
	{Name: "InnerClasses", Arity: ArityArray, Fields: []FieldKind{FieldClass, FieldOptClass, FieldOptUtf8, FieldInnerClassAccess}, Contexts: Contexts(ContextClass), Unique: true, Since: MinMajor},
	{Name: "EnclosingMethod", Arity: ArityFixed, Fields: []FieldKind{FieldClass, FieldOptNameAndType}, Contexts: Contexts(ContextClass), Unique: true, Since: Java5},
	{Name: "Synthetic", Arity: ArityFixed, Contexts: declContexts, Unique: true, Since: MinMajor},
	{Name: "Signature", Arity: ArityFixed, Fields: []FieldKind{FieldUtf8}, Contexts: Contexts(ContextClass, ContextField, ContextMethod, ContextComponent), Unique: true, Since: Java5},
	{Name: "SourceFile", Arity: ArityFixed, Fields: []FieldKind{FieldUtf8}, Contexts: Contexts(ContextClass, ContextModule), Unique: true, Since: MinMajor},
	{Name: "SourceDebugExtension", Arity: ArityFixed, Fields: []FieldKind{FieldInlineText}, Contexts: Contexts(ContextClass), Unique: true, Since: Java5},
	{Name: "LineNumberTable", Arity: ArityArray, Fields: []FieldKind{FieldLabel, FieldU2}, Contexts: Contexts(ContextCode), Since: MinMajor},
	{Name: "LocalVariableTable", Arity: ArityArray, Fields: []FieldKind{FieldLabel, FieldLabelLength, FieldUtf8, FieldUtf8, FieldLocalIndex}, Contexts: Contexts(ContextCode), Since: MinMajor},
	{Name: "LocalVariableTypeTable", Arity: ArityArray, Fields: []FieldKind{FieldLabel, FieldLabelLength, FieldUtf8, FieldUtf8, FieldLocalIndex}, Contexts: Contexts(ContextCode), Since: Java5},
	{Name: "Deprecated", Arity: ArityFixed, Contexts: Contexts(ContextClass, ContextModule, ContextField, ContextMethod), Unique: true, Since: MinMajor},
	{Name: "RuntimeVisibleAnnotations", Arity: ArityArray, Fields: []FieldKind{FieldAnnotation}, Contexts: annoContexts, Unique: true, Since: Java5},
	{Name: "RuntimeInvisibleAnnotations", Arity: ArityArray, Fields: []FieldKind{FieldAnnotation}, Contexts: annoContexts, Unique: true, Since: Java5},
	{Name: "RuntimeVisibleParameterAnnotations", Arity: ArityArray1, Fields: []FieldKind{FieldParameterAnnotations}, Contexts: Contexts(ContextMethod), Unique: true, Since: Java5},
	{Name: "RuntimeInvisibleParameterAnnotations", Arity: ArityArray1, Fields: []FieldKind{FieldParameterAnnotations}, Contexts: Contexts(ContextMethod), Unique: true, Since: Java5},
	{Name: "RuntimeVisibleTypeAnnotations", Arity: ArityArray, Fields: []FieldKind{FieldTypeAnnotation}, Contexts: typeContexts, Unique: true, Since: Java8},
	{Name: "RuntimeInvisibleTypeAnnotations", Arity: ArityArray, Fields: []FieldKind{FieldTypeAnnotation}, Contexts: typeContexts, Unique: true, Since: Java8},
	{Name: "AnnotationDefault", Arity: ArityFixed, Fields: []FieldKind{FieldElementValue}, Contexts: Contexts(ContextMethod), Unique: true, Since: Java5},
	{Name: "BootstrapMethods", Arity: ArityArray, Fields: []FieldKind{FieldBootstrap}, Contexts: Contexts(ContextClass), Unique: true, Since: Java7},
	{Name: "MethodParameters", Arity: ArityArray1, Fields: []FieldKind{FieldOptUtf8, FieldParameterAccess}, Contexts: Contexts(ContextMethod), Unique: true, Since: Java8},
	{Name: "Module", Arity: ArityModule, Contexts: Contexts(ContextModule), Unique: true, Since: Java9},
	{Name: "ModulePackages", Arity: ArityArray, Fields: []FieldKind{FieldPackage}, Contexts: Contexts(ContextModule), Unique: true, Since: Java9},
	{Name: "ModuleMainClass", Arity: ArityFixed, Fields: []FieldKind{FieldClass}, Contexts: Contexts(ContextModule), Unique: true, Since: Java9},
	{Name: "NestHost", Arity: ArityFixed, Fields: []FieldKind{FieldClass}, Contexts: Contexts(ContextClass), Unique: true, Since: Java11},
	{Name: "NestMembers", Arity: ArityArray, Fields: []FieldKind{FieldClass}, Contexts: Contexts(ContextClass), Unique: true, Since: Java11},
	{Name: "Record", Arity: ArityRecord, Contexts: Contexts(ContextClass), Unique: true, Since: Java16},
	{Name: "PermittedSubclasses", Arity: ArityArray, Fields: []FieldKind{FieldClass}, Contexts: Contexts(ContextClass), Unique: true, Since: Java17},
}
