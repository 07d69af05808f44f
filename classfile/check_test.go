package classfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func check(t *testing.T, data []byte, detail bool) (*ClassFile, *Diagnostics, lines, error) {
	t.Helper()
	diags := &Diagnostics{}
	out := newLines()
	cf, err := Check(data, Options{Reporter: diags, Printer: out, Detail: detail, Name: "A.class"})
	return cf, diags, out, err
}

func TestCheckEmptyClass(t *testing.T) {
	cb := newClass(55)
	cb.body.u2(0, 0, 0, 0, 0, 0, 0)

	cf, diags, out, err := check(t, cb.bytes(), false)
	require.NoError(t, err)
	require.Zero(t, diags.Len(), out.String())
	require.Equal(t, "55.0", cf.Version.String())
	require.Equal(t, 1, cf.ConstantPool.Count())

	want := []string{
		"START A.class",
		"VERSION 55.0 ; Java 11",
		"CONSTANT POOL  entries = [1,0] ; start = 0xa length = 0x0",
	}
	require.Equal(t, want, (*out.out)[:3])
	require.Equal(t, "END A.class", (*out.out)[len(*out.out)-1])
}

func TestCheckHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code Code
	}{
		{"bad magic", []byte{0xca, 0xfe, 0xba, 0xbf, 0, 0, 0, 52}, ErrBadMagic},
		{"truncated", []byte{0xca, 0xfe, 0xba, 0xbe, 0}, ErrTruncatedInput},
		{"major too new", (&classBuilder{major: 70, pool: newPool()}).bytes(), ErrUnsupportedVersion},
		{"major too old", (&classBuilder{major: 44, pool: newPool()}).bytes(), ErrUnsupportedVersion},
		{"preview minor", (&classBuilder{major: 56, minor: 3, pool: newPool()}).bytes(), ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags, _, err := check(t, tt.data, false)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.code), "Check() error = %v, want %v", err, tt.code)
			require.Equal(t, 1, diags.Count(tt.code))

			var e *Error
			require.True(t, errors.As(err, &e))
			require.Equal(t, Fatal, e.Severity)
		})
	}
}

func TestCheckBootstrapCount(t *testing.T) {
	cb := newClass(52)
	this := cb.pool.class("A")
	nat := cb.pool.nameAndType("m", "()V")
	mref := cb.pool.ref(10, this, nat)
	handle := cb.pool.raw(15, 6, byte(mref>>8), byte(mref))
	cb.pool.raw(18, 0, 5, byte(nat>>8), byte(nat))
	bsm := cb.pool.utf8("BootstrapMethods")

	var body writer
	body.u2(3)
	for i := 0; i < 3; i++ {
		body.u2(handle, 0)
	}
	cb.body.u2(0x0021, this, 0, 0, 0, 0, 1)
	cb.body.attr(bsm, body.Bytes())

	cf, diags, out, err := check(t, cb.bytes(), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrBootstrapCount), out.String())
	require.Equal(t, 1, diags.Len(), out.String())
	require.Equal(t, 5, cf.ConstantPool.MaxBootstrapIndexUsed())
	require.Equal(t, 3, cf.ConstantPool.BootstrapCount())
	require.True(t, out.contains("BOOTSTRAP USERS"), out.String())
	require.Len(t, cf.GetAttribute("BootstrapMethods").Bootstraps, 3)
}

func TestCheckBranchOutOfRange(t *testing.T) {
	data := methodClass(52, 0, []byte{0x00, 0xa7, 0xff, 0xfe})

	cf, diags, out, err := check(t, data, false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrLabelOutOfRange), out.String())
	require.Equal(t, 1, diags.Len(), out.String())

	code := cf.GetMethod("m", "()V").GetCode()
	require.NotNil(t, code)
	require.Equal(t, []Instruction{
		{Offset: 0, Mnemonic: "nop"},
		{Offset: 1, Mnemonic: "goto", Operands: "@0"},
	}, code.Instructions)
	require.True(t, out.contains("0:  nop"), out.String())
	require.True(t, out.contains("1:  goto @0"), out.String())
}

func TestCheckTableSwitchRange(t *testing.T) {
	code := []byte{
		0xaa, 0, 0, 0,
		0, 0, 0, 16,
		0, 0, 0, 5,
		0, 0, 0, 3,
		0xb1,
	}
	_, diags, out, err := check(t, methodClass(52, 0, code), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrRangeViolation), out.String())
	require.Equal(t, 1, diags.Len(), out.String())
	require.True(t, out.contains("0:  tableswitch default @16 .array"), out.String())
	require.True(t, out.contains("16:  return"), out.String())
}

func TestCheckTableSwitchOverflow(t *testing.T) {
	code := []byte{
		0xaa, 0, 0, 0,
		0, 0, 0, 16,
		0, 0, 0, 0,
		0x7f, 0xff, 0xff, 0xff,
		0xb1,
	}
	_, diags, _, err := check(t, methodClass(52, 0, code), false)
	require.True(t, errors.Is(err, ErrOffsetOverflow), "Check() error = %v", err)
	require.Equal(t, 1, diags.Count(ErrOffsetOverflow))
}

func TestCheckBranchIntoWide(t *testing.T) {
	code := []byte{
		0xa7, 0x00, 0x05,
		0xc4, 0x15, 0x00, 0x00,
		0xb1,
	}
	cf, diags, out, err := check(t, methodClass(52, 1, code), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrDanglingBranchTargets), out.String())
	require.Equal(t, 1, diags.Len(), out.String())
	require.Contains(t, diags.Items()[0].Message, "[5]")
	require.True(t, out.contains("3:  iload_w 0"), out.String())
	require.Len(t, cf.Methods[0].GetCode().Instructions, 3)
}

func TestCheckLocals(t *testing.T) {
	// iload_1, iload 2, return with max_locals 1.
	code := []byte{0x1b, 0x15, 0x02, 0xb1}
	_, diags, out, err := check(t, methodClass(52, 1, code), false)
	require.NoError(t, err)
	require.Equal(t, 2, diags.Count(ErrLocalIndexOutOfRange), out.String())
}

func TestCheckUnknownOpcode(t *testing.T) {
	_, diags, _, err := check(t, methodClass(52, 0, []byte{0xfe}), false)
	require.True(t, errors.Is(err, ErrUnknownOpcode), "Check() error = %v", err)
	require.Equal(t, 1, diags.Count(ErrUnknownOpcode))
}

func TestCheckTypeAnnotationContext(t *testing.T) {
	var name, typ uint16
	data := methodClass(52, 0, []byte{0xb1}, func(cb *classBuilder) func(*writer) {
		name = cb.pool.utf8("RuntimeVisibleTypeAnnotations")
		typ = cb.pool.utf8("LFoo;")
		return func(w *writer) {
			var body writer
			body.u2(1).u1(0x16, 0, 0).u2(typ, 0)
			w.attr(name, body.Bytes())
		}
	})
	_, diags, _, err := check(t, data, false)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTargetContextMismatch), "Check() error = %v", err)
	require.Equal(t, 1, diags.Count(ErrTargetContextMismatch))
}

func TestCheckStackMapFrames(t *testing.T) {
	var name, obj uint16
	data := methodClass(52, 1, []byte{0x00, 0x00, 0xb1}, func(cb *classBuilder) func(*writer) {
		name = cb.pool.utf8("StackMapTable")
		obj = cb.pool.class("java/lang/Object")
		return func(w *writer) {
			var body writer
			body.u2(2)
			body.u1(1)
			body.u1(255).u2(0, 1).u1(7).u2(obj).u2(0)
			w.attr(name, body.Bytes())
		}
	})
	cf, diags, out, err := check(t, data, false)
	require.NoError(t, err)
	require.Zero(t, diags.Len(), out.String())
	require.True(t, out.contains("@1 same"), out.String())
	require.True(t, out.contains("@2 full_frame object java/lang/Object |"), out.String())
	require.Equal(t, 2, cf.Methods[0].GetCode().Attributes[0].Frames)
}

func TestCheckBadFrameTag(t *testing.T) {
	data := methodClass(52, 1, []byte{0xb1}, func(cb *classBuilder) func(*writer) {
		name := cb.pool.utf8("StackMapTable")
		return func(w *writer) {
			w.attr(name, []byte{0, 1, 200})
		}
	})
	_, diags, _, err := check(t, data, false)
	require.True(t, errors.Is(err, ErrInvalidFrameTag), "Check() error = %v", err)
	require.Equal(t, 1, diags.Count(ErrInvalidFrameTag))
}

func TestCheckClassAttributes(t *testing.T) {
	cb := newClass(52)
	this := cb.pool.class("A")
	source := cb.pool.utf8("SourceFile")
	file := cb.pool.utf8("A.java")
	code := cb.pool.utf8("Code")
	custom := cb.pool.utf8("Custom")

	cb.body.u2(0x0021, this, 0, 0, 0, 0, 4)
	cb.body.attr(source, []byte{byte(file >> 8), byte(file)})
	cb.body.attr(source, []byte{byte(file >> 8), byte(file)})
	cb.body.attr(code, []byte{1, 2, 3})
	cb.body.attr(custom, []byte{9})
	cb.body.u1(0xff)

	cf, diags, out, err := check(t, cb.bytes(), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrDuplicateAttribute), out.String())
	require.Equal(t, 1, diags.Count(ErrAttributeOutOfContext), out.String())
	require.Equal(t, 1, diags.Count(ErrTrailingBytes), out.String())
	require.Equal(t, 3, diags.Len(), out.String())
	require.Len(t, cf.Attributes, 4)
	require.False(t, cf.Attributes[3].Known)
	require.True(t, out.contains("A.java"), out.String())
	require.True(t, out.contains("ATTRIBUTE Code (out of context) ; start = 0x55 length = 0x3"), out.String())
	require.True(t, out.contains("ATTRIBUTE Custom (unknown) ; start = 0x5e length = 0x1"), out.String())
}

func TestCheckAttributeNotSupported(t *testing.T) {
	cb := newClass(50)
	this := cb.pool.class("A")
	host := cb.pool.utf8("NestHost")

	cb.body.u2(0x0021, this, 0, 0, 0, 0, 1)
	cb.body.attr(host, []byte{byte(this >> 8), byte(this)})

	_, diags, out, err := check(t, cb.bytes(), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrAttributeNotSupported), out.String())
	require.True(t, out.contains("ATTRIBUTE NestHost (not supported in 50.0) ; start = 0x2a length = 0x2"), out.String())
}

func TestCheckDescriptorsAndFlags(t *testing.T) {
	cb := newClass(52)
	this := cb.pool.class("A")
	good := cb.pool.utf8("good")
	bad := cb.pool.utf8("bad")
	intDesc := cb.pool.utf8("I")
	badDesc := cb.pool.utf8("Q")

	cb.body.u2(0x0021, this, 0, 0)
	cb.body.u2(2)
	cb.body.u2(0x0002, good, intDesc, 0)
	cb.body.u2(0x8000, bad, badDesc, 0)
	cb.body.u2(0, 0)

	cf, diags, out, err := check(t, cb.bytes(), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrInvalidDescriptor), out.String())
	require.Equal(t, 1, diags.Count(ErrUnknownAccessFlags), out.String())
	require.Equal(t, "int", cf.GetField("good").Type)
	require.Equal(t, []string{"private"}, cf.GetField("good").Flags)
	require.Equal(t, "", cf.GetField("bad").Type)
}

func TestCheckPoolErrors(t *testing.T) {
	t.Run("mid entry", func(t *testing.T) {
		cb := newClass(52)
		cb.pool.long(7)
		cb.pool.raw(7, 0, 2)
		cb.body.u2(0, 0, 0, 0, 0, 0, 0)

		_, diags, _, err := check(t, cb.bytes(), false)
		require.True(t, errors.Is(err, ErrInvalidPool), "Check() error = %v", err)
		require.True(t, errors.Is(err, ErrMidEntryIndex), "Check() error = %v", err)
		require.Equal(t, 1, diags.Count(ErrInvalidPool))
	})
	t.Run("bad tag", func(t *testing.T) {
		cb := newClass(52)
		cb.pool.raw(2)
		_, _, _, err := check(t, cb.bytes(), false)
		require.True(t, errors.Is(err, ErrBadPoolTag), "Check() error = %v", err)
	})
	t.Run("tag not supported", func(t *testing.T) {
		cb := newClass(52)
		name := cb.pool.utf8("m")
		cb.pool.raw(19, byte(name>>8), byte(name))
		cb.body.u2(0, 0, 0, 0, 0, 0, 0)
		_, diags, _, err := check(t, cb.bytes(), false)
		require.NoError(t, err)
		require.Equal(t, 1, diags.Count(ErrTagNotSupported))
	})
	t.Run("bad reference", func(t *testing.T) {
		cb := newClass(52)
		cb.body.u2(0, 9, 0, 0, 0, 0, 0)
		_, _, _, err := check(t, cb.bytes(), false)
		require.True(t, errors.Is(err, ErrBadPoolIndex), "Check() error = %v", err)
	})
}

func TestCheckDetail(t *testing.T) {
	cb := newClass(52)
	this := cb.pool.class("A")
	cb.body.u2(0x0021, this, 0, 0, 0, 0, 0)

	_, _, out, err := check(t, cb.bytes(), true)
	require.NoError(t, err)
	require.True(t, out.contains("1:  CONSTANT_Utf8 A ; start = 0xa"), out.String())
	require.True(t, out.contains("2:  CONSTANT_Class A ; start = 0xe"), out.String())
	require.True(t, out.contains("CLASS A public super ; start = 0x11 length = 0x8"), out.String())
}

func TestCheckLookupSwitch(t *testing.T) {
	code := []byte{
		0xab, 0, 0, 0,
		0, 0, 0, 28,
		0, 0, 0, 2,
		0, 0, 0, 1, 0, 0, 0, 28,
		0, 0, 0, 5, 0, 0, 0, 28,
		0xb1,
	}
	cf, diags, out, err := check(t, methodClass(52, 0, code), false)
	require.NoError(t, err)
	require.Zero(t, diags.Len(), out.String())
	for _, want := range []string{
		"0:  lookupswitch default @28 .array",
		"1 -> @28",
		"5 -> @28",
		".end_array",
		"28:  return",
	} {
		require.True(t, out.contains(want), "missing %q in\n%s", want, out.String())
	}
	require.Len(t, cf.Methods[0].GetCode().Instructions, 2)
}

func TestCheckInstructionOperands(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		code  Code
		fatal bool
	}{
		{
			name: "lookupswitch negative count",
			data: methodClass(52, 0, []byte{0xab, 0, 0, 0, 0, 0, 0, 12, 0xff, 0xff, 0xff, 0xff, 0xb1}),
			code: ErrOffsetOverflow, fatal: true,
		},
		{
			name: "ldc class before Java 5",
			data: codeClass(48, func(p *poolBuilder) []byte {
				return codeBody(1, 0, []byte{0x12, 2, 0xb1})
			}),
			code: ErrNotLoadable,
		},
		{
			name: "invokeinterface reserved byte",
			data: codeClass(52, func(p *poolBuilder) []byte {
				ref := p.ref(11, p.class("I"), p.nameAndType("n", "()V"))
				return codeBody(1, 1, []byte{0xb9, byte(ref >> 8), byte(ref), 1, 5, 0xb1})
			}),
			code: ErrNonZeroOperand,
		},
		{
			name: "handler range reversed",
			data: codeClass(52, func(p *poolBuilder) []byte {
				var w writer
				w.u2(0, 0).u4(3).u1(0x00, 0x00, 0xb1)
				w.u2(1).u2(2, 1, 0, 0)
				w.u2(0)
				return w.Bytes()
			}),
			code: ErrOrderingViolation,
		},
		{
			name: "verification type tag",
			data: methodClass(52, 1, []byte{0xb1}, func(cb *classBuilder) func(*writer) {
				name := cb.pool.utf8("StackMapTable")
				return func(w *writer) {
					w.attr(name, []byte{0, 1, 64, 9})
				}
			}),
			code: ErrInvalidVerificationType, fatal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags, out, err := check(t, tt.data, false)
			if tt.fatal {
				require.True(t, errors.Is(err, tt.code), "Check() error = %v, want %v", err, tt.code)
			} else {
				require.NoError(t, err, out.String())
			}
			require.Equal(t, 1, diags.Count(tt.code), out.String())
		})
	}
}

func TestCheckBootstrapNotLoadable(t *testing.T) {
	cb := newClass(52)
	this := cb.pool.class("A")
	nat := cb.pool.nameAndType("m", "()V")
	mref := cb.pool.ref(10, this, nat)
	handle := cb.pool.raw(15, 6, byte(mref>>8), byte(mref))
	cb.pool.raw(18, 0, 0, byte(nat>>8), byte(nat))
	bsm := cb.pool.utf8("BootstrapMethods")

	var body writer
	body.u2(1).u2(handle, 1, nat)
	cb.body.u2(0x0021, this, 0, 0, 0, 0, 1)
	cb.body.attr(bsm, body.Bytes())

	cf, diags, out, err := check(t, cb.bytes(), false)
	require.NoError(t, err)
	require.Equal(t, 1, diags.Count(ErrBootstrapNotLoadable), out.String())
	require.Equal(t, 1, diags.Len(), out.String())
	require.Equal(t, []uint16{nat}, cf.GetAttribute("BootstrapMethods").Bootstraps[0].Args)
}
