package jvm

// Context identifies the syntactic position an attribute, access-flag word or
// type annotation appears in.
type Context uint8

const (
	ContextClass Context = iota
	ContextModule
	ContextField
	ContextMethod
	ContextCode
	ContextComponent
	ContextInnerClass
	ContextParameter
	ContextRequires
	ContextExports
	ContextOpens
	ContextCatch
)

var contextNames = [...]string{
	ContextClass:      "CLASS",
	ContextModule:     "MODULE",
	ContextField:      "FIELD",
	ContextMethod:     "METHOD",
	ContextCode:       "CODE",
	ContextComponent:  "COMPONENT",
	ContextInnerClass: "INNER_CLASS",
	ContextParameter:  "PARAMETER",
	ContextRequires:   "REQUIRES",
	ContextExports:    "EXPORTS",
	ContextOpens:      "OPENS",
	ContextCatch:      "CATCH",
}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "UNKNOWN"
}

type ContextSet uint16

func Contexts(cs ...Context) ContextSet {
	var s ContextSet
	for _, c := range cs {
		s |= 1 << c
	}
	return s
}

func (s ContextSet) Has(c Context) bool {
	return s&(1<<c) != 0
}
