package jvm

// Tables is the read-only lookup service over the class-file format tables.
type Tables struct {
	attributes map[string]*Attribute
}

var standard = newTables(standardAttributes)

// Standard returns the tables defined by the Java Virtual Machine
// Specification.
func Standard() *Tables {
	return standard
}

func newTables(attrs []*Attribute) *Tables {
	t := &Tables{attributes: make(map[string]*Attribute, len(attrs))}
	for _, a := range attrs {
		t.attributes[a.Name] = a
	}
	return t
}

func (t *Tables) Attribute(name string) (*Attribute, bool) {
	a, ok := t.attributes[name]
	return a, ok
}

func (t *Tables) Opcode(code byte) (*Opcode, bool) {
	if int(code) >= len(opcodes) {
		return nil, false
	}
	return &opcodes[code], true
}

// WideOpcode returns the wide form of code, valid only after the wide prefix.
func (t *Tables) WideOpcode(code byte) (*Opcode, bool) {
	op, ok := wideOpcodes[code]
	return op, ok
}

// AccessFlags names the flags set in flags that are valid in ctx for v and
// returns the remaining unknown bits.
func (t *Tables) AccessFlags(ctx Context, flags uint16, v Version) ([]string, uint16) {
	names, rest := accessFlagNames(ctx, AccessFlags(flags), v)
	return names, uint16(rest)
}

func (t *Tables) Target(kind byte) (*Target, bool) {
	tg, ok := targets[kind]
	return tg, ok
}

func (t *Tables) HandleTargets(kind byte, v Version) (TagSet, bool) {
	k := HandleKind(kind)
	if !k.Valid() {
		return 0, false
	}
	return k.Targets(v), true
}

func (t *Tables) VerificationType(tag byte) (*VerificationType, bool) {
	if int(tag) >= len(verificationTypes) {
		return nil, false
	}
	return &verificationTypes[tag], true
}

func (t *Tables) FrameType(tag byte) (FrameType, bool) {
	return frameType(tag)
}

// ArrayType names a newarray element type code.
func (t *Tables) ArrayType(code byte) (string, bool) {
	name, ok := arrayTypes[code]
	return name, ok
}
