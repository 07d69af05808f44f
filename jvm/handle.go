package jvm

import "fmt"

type HandleKind uint8

const (
	RefGetField         HandleKind = 1
	RefGetStatic        HandleKind = 2
	RefPutField         HandleKind = 3
	RefPutStatic        HandleKind = 4
	RefInvokeVirtual    HandleKind = 5
	RefInvokeStatic     HandleKind = 6
	RefInvokeSpecial    HandleKind = 7
	RefNewInvokeSpecial HandleKind = 8
	RefInvokeInterface  HandleKind = 9
)

var handleNames = [...]string{
	RefGetField:         "REF_getField",
	RefGetStatic:        "REF_getStatic",
	RefPutField:         "REF_putField",
	RefPutStatic:        "REF_putStatic",
	RefInvokeVirtual:    "REF_invokeVirtual",
	RefInvokeStatic:     "REF_invokeStatic",
	RefInvokeSpecial:    "REF_invokeSpecial",
	RefNewInvokeSpecial: "REF_newInvokeSpecial",
	RefInvokeInterface:  "REF_invokeInterface",
}

func (k HandleKind) Valid() bool {
	return k >= RefGetField && k <= RefInvokeInterface
}

func (k HandleKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("REF_%d", uint8(k))
	}
	return handleNames[k]
}

// Targets returns the tags a handle of kind k may reference in a class of
// version v. Static and special invocation of interface methods arrived in
// Java 8.
func (k HandleKind) Targets(v Version) TagSet {
	switch k {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		return Tags(TagFieldref)
	case RefInvokeVirtual, RefNewInvokeSpecial:
		return Tags(TagMethodref)
	case RefInvokeStatic, RefInvokeSpecial:
		if v.AtLeast(Java8) {
			return Tags(TagMethodref, TagInterfaceMethodref)
		}
		return Tags(TagMethodref)
	case RefInvokeInterface:
		return Tags(TagInterfaceMethodref)
	}
	return 0
}
