package jvm

type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccOpen         AccessFlags = 0x0020
	AccTransitive   AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccStaticPhase  AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
	AccMandated     AccessFlags = 0x8000
)

func (f AccessFlags) Has(flag AccessFlags) bool { return f&flag != 0 }

type accessFlag struct {
	flag  AccessFlags
	name  string
	since uint16
	until uint16
}

var accessTables = map[Context][]accessFlag{
	ContextClass: {
		{flag: AccPublic, name: "public"},
		{flag: AccFinal, name: "final"},
		{flag: AccSuper, name: "super"},
		{flag: AccInterface, name: "interface"},
		{flag: AccAbstract, name: "abstract"},
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccAnnotation, name: "annotation", since: Java5},
		{flag: AccEnum, name: "enum", since: Java5},
		{flag: AccModule, name: "module", since: Java9},
	},
	ContextInnerClass: {
		{flag: AccPublic, name: "public"},
		{flag: AccPrivate, name: "private"},
		{flag: AccProtected, name: "protected"},
		{flag: AccStatic, name: "static"},
		{flag: AccFinal, name: "final"},
		{flag: AccInterface, name: "interface"},
		{flag: AccAbstract, name: "abstract"},
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccAnnotation, name: "annotation", since: Java5},
		{flag: AccEnum, name: "enum", since: Java5},
	},
	ContextField: {
		{flag: AccPublic, name: "public"},
		{flag: AccPrivate, name: "private"},
		{flag: AccProtected, name: "protected"},
		{flag: AccStatic, name: "static"},
		{flag: AccFinal, name: "final"},
		{flag: AccVolatile, name: "volatile"},
		{flag: AccTransient, name: "transient"},
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccEnum, name: "enum", since: Java5},
	},
	ContextMethod: {
		{flag: AccPublic, name: "public"},
		{flag: AccPrivate, name: "private"},
		{flag: AccProtected, name: "protected"},
		{flag: AccStatic, name: "static"},
		{flag: AccFinal, name: "final"},
		{flag: AccSynchronized, name: "synchronized"},
		{flag: AccBridge, name: "bridge", since: Java5},
		{flag: AccVarargs, name: "varargs", since: Java5},
		{flag: AccNative, name: "native"},
		{flag: AccAbstract, name: "abstract"},
		{flag: AccStrict, name: "strict", since: 46, until: Java17},
		{flag: AccSynthetic, name: "synthetic"},
	},
	ContextParameter: {
		{flag: AccFinal, name: "final"},
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccMandated, name: "mandated"},
	},
	ContextModule: {
		{flag: AccOpen, name: "open"},
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccMandated, name: "mandated"},
	},
	ContextRequires: {
		{flag: AccTransitive, name: "transitive"},
		{flag: AccStaticPhase, name: "static_phase"},
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccMandated, name: "mandated"},
	},
	ContextExports: {
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccMandated, name: "mandated"},
	},
	ContextOpens: {
		{flag: AccSynthetic, name: "synthetic"},
		{flag: AccMandated, name: "mandated"},
	},
}

// accessFlagNames resolves flags against the flags valid in ctx for v, in
// ascending bit order. It returns the recognised names and the bits left over.
func accessFlagNames(ctx Context, flags AccessFlags, v Version) ([]string, AccessFlags) {
	var names []string
	rest := flags
	for _, af := range accessTables[ctx] {
		if rest&af.flag == 0 {
			continue
		}
		if af.since != 0 && v.Major < af.since {
			continue
		}
		if af.until != 0 && v.Major >= af.until {
			continue
		}
		names = append(names, af.name)
		rest &^= af.flag
	}
	return names, rest
}
