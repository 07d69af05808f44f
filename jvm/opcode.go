package jvm

// Shape is the operand layout of an opcode.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeByte
	ShapeShort
	ShapeConstant
	ShapeVar
	ShapeIncr
	ShapeLabel
	ShapeMember
	ShapeInterface
	ShapeCallSite
	ShapeClass
	ShapeArrayType
	ShapeMultiArray
	ShapeTableSwitch
	ShapeLookupSwitch
	ShapeWide
)

// Part is one operand of an instruction.
type Part uint8

const (
	PartCP Part = iota + 1
	PartLabel
	PartVar
	PartIncr
	PartByte
	PartShort
	PartType
	PartUByte
	PartZero
)

var shapeParts = [...][]Part{
	ShapeByte:       {PartByte},
	ShapeShort:      {PartShort},
	ShapeConstant:   {PartCP},
	ShapeVar:        {PartVar},
	ShapeIncr:       {PartVar, PartIncr},
	ShapeLabel:      {PartLabel},
	ShapeMember:     {PartCP},
	ShapeInterface:  {PartCP, PartUByte, PartZero},
	ShapeCallSite:   {PartCP, PartZero, PartZero},
	ShapeClass:      {PartCP},
	ShapeArrayType:  {PartType},
	ShapeMultiArray: {PartCP, PartUByte},
	ShapeWide:       nil,
}

type Opcode struct {
	Code  byte
	Name  string
	Shape Shape
	Parts []Part
	// Pool is the tag set accepted by a PartCP operand.
	Pool TagSet
	// Wide opcodes read four-byte labels, or two-byte locals and increments
	// when reached through the wide prefix.
	Wide bool
	// ShortIndex opcodes read a one-byte pool index.
	ShortIndex bool
	// Implied is the local slot named by the mnemonic, or -1.
	Implied int
}

const OpWide byte = 0xc4

var opcodeNames = [...]string{
	"nop", "aconst_null", "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4",
	"iconst_5", "lconst_0", "lconst_1", "fconst_0", "fconst_1", "fconst_2", "dconst_0", "dconst_1",
	"bipush", "sipush", "ldc", "ldc_w", "ldc2_w", "iload", "lload", "fload",
	"dload", "aload", "iload_0", "iload_1", "iload_2", "iload_3", "lload_0", "lload_1",
	"lload_2", "lload_3", "fload_0", "fload_1", "fload_2", "fload_3", "dload_0", "dload_1",
	"dload_2", "dload_3", "aload_0", "aload_1", "aload_2", "aload_3", "iaload", "laload",
	"faload", "daload", "aaload", "baload", "caload", "saload", "istore", "lstore",
	"fstore", "dstore", "astore", "istore_0", "istore_1", "istore_2", "istore_3", "lstore_0",
	"lstore_1", "lstore_2", "lstore_3", "fstore_0", "fstore_1", "fstore_2", "fstore_3", "dstore_0",
	"dstore_1", "dstore_2", "dstore_3", "astore_0", "astore_1", "astore_2", "astore_3", "iastore",
	"lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore", "pop",
	"pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
	"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
	"imul", "lmul", "fmul", "dmul", "idiv", "ldiv", "fdiv", "ddiv",
	"irem", "lrem", "frem", "drem", "ineg", "lneg", "fneg", "dneg",
	"ishl", "lshl", "ishr", "lshr", "iushr", "lushr", "iand", "land",
	"ior", "lor", "ixor", "lxor", "iinc", "i2l", "i2f", "i2d",
	"l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l",
	"d2f", "i2b", "i2c", "i2s", "lcmp", "fcmpl", "fcmpg", "dcmpl",
	"dcmpg", "ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle", "if_icmpeq",
	"if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple", "if_acmpeq", "if_acmpne", "goto",
	"jsr", "ret", "tableswitch", "lookupswitch", "ireturn", "lreturn", "freturn", "dreturn",
	"areturn", "return", "getstatic", "putstatic", "getfield", "putfield", "invokevirtual", "invokespecial",
	"invokestatic", "invokeinterface", "invokedynamic", "new", "newarray", "anewarray", "arraylength", "athrow",
	"checkcast", "instanceof", "monitorenter", "monitorexit", "wide", "multianewarray", "ifnull", "ifnonnull",
	"goto_w", "jsr_w",
}

var (
	opcodes     [len(opcodeNames)]Opcode
	wideOpcodes = map[byte]*Opcode{}
)

func init() {
	ldcTags := Tags(TagInteger, TagFloat, TagString, TagClass, TagMethodHandle, TagMethodType, TagDynamic)
	for i, name := range opcodeNames {
		op := Opcode{Code: byte(i), Name: name, Implied: -1}
		switch code := byte(i); {
		case code == 0x10:
			op.Shape = ShapeByte
		case code == 0x11:
			op.Shape = ShapeShort
		case code == 0x12:
			op.Shape, op.Pool, op.ShortIndex = ShapeConstant, ldcTags, true
		case code == 0x13:
			op.Shape, op.Pool = ShapeConstant, ldcTags
		case code == 0x14:
			op.Shape, op.Pool = ShapeConstant, Tags(TagLong, TagDouble, TagDynamic)
		case code >= 0x15 && code <= 0x19, code >= 0x36 && code <= 0x3a, code == 0xa9:
			op.Shape = ShapeVar
		case code >= 0x1a && code <= 0x2d:
			op.Implied = int(code-0x1a) % 4
		case code >= 0x3b && code <= 0x4e:
			op.Implied = int(code-0x3b) % 4
		case code == 0x84:
			op.Shape = ShapeIncr
		case code >= 0x99 && code <= 0xa8, code == 0xc6, code == 0xc7:
			op.Shape = ShapeLabel
		case code == 0xc8, code == 0xc9:
			op.Shape, op.Wide = ShapeLabel, true
		case code == 0xaa:
			op.Shape = ShapeTableSwitch
		case code == 0xab:
			op.Shape = ShapeLookupSwitch
		case code >= 0xb2 && code <= 0xb5:
			op.Shape, op.Pool = ShapeMember, Tags(TagFieldref)
		case code == 0xb6:
			op.Shape, op.Pool = ShapeMember, Tags(TagMethodref)
		case code == 0xb7, code == 0xb8:
			op.Shape, op.Pool = ShapeMember, Tags(TagMethodref, TagInterfaceMethodref)
		case code == 0xb9:
			op.Shape, op.Pool = ShapeInterface, Tags(TagInterfaceMethodref)
		case code == 0xba:
			op.Shape, op.Pool = ShapeCallSite, Tags(TagInvokeDynamic)
		case code == 0xbb, code == 0xbd, code == 0xc0, code == 0xc1:
			op.Shape, op.Pool = ShapeClass, Tags(TagClass)
		case code == 0xbc:
			op.Shape = ShapeArrayType
		case code == 0xc4:
			op.Shape = ShapeWide
		case code == 0xc5:
			op.Shape, op.Pool = ShapeMultiArray, Tags(TagClass)
		}
		op.Parts = shapeParts[op.Shape]
		opcodes[i] = op
	}
	for _, code := range []byte{0x15, 0x16, 0x17, 0x18, 0x19, 0x36, 0x37, 0x38, 0x39, 0x3a, 0x84, 0xa9} {
		op := opcodes[code]
		op.Name += "_w"
		op.Wide = true
		wideOpcodes[code] = &op
	}
}

func (o *Opcode) IsSwitch() bool {
	return o.Shape == ShapeTableSwitch || o.Shape == ShapeLookupSwitch
}

// IsBranch reports whether the opcode carries a label operand.
func (o *Opcode) IsBranch() bool {
	return o.Shape == ShapeLabel || o.IsSwitch()
}

var arrayTypes = map[byte]string{
	4: "boolean", 5: "char", 6: "float", 7: "double",
	8: "byte", 9: "short", 10: "int", 11: "long",
}
