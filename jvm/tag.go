package jvm

import (
	"fmt"
	"math/bits"
	"strings"
)

type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// EntryKind groups tags by payload shape.
type EntryKind uint8

const (
	EntryUtf8 EntryKind = iota + 1
	EntryInteger
	EntryFloat
	EntryLong
	EntryDouble
	EntryIndirect
	EntryHandle
	EntryBootstrap
)

type tagInfo struct {
	name  string
	kind  EntryKind
	refs  []TagSet
	since uint16
}

var tagInfos = [...]tagInfo{
	TagUtf8:               {name: "CONSTANT_Utf8", kind: EntryUtf8, since: MinMajor},
	TagInteger:            {name: "CONSTANT_Integer", kind: EntryInteger, since: MinMajor},
	TagFloat:              {name: "CONSTANT_Float", kind: EntryFloat, since: MinMajor},
	TagLong:               {name: "CONSTANT_Long", kind: EntryLong, since: MinMajor},
	TagDouble:             {name: "CONSTANT_Double", kind: EntryDouble, since: MinMajor},
	TagClass:              {name: "CONSTANT_Class", kind: EntryIndirect, refs: []TagSet{Tags(TagUtf8)}, since: MinMajor},
	TagString:             {name: "CONSTANT_String", kind: EntryIndirect, refs: []TagSet{Tags(TagUtf8)}, since: MinMajor},
	TagFieldref:           {name: "CONSTANT_Fieldref", kind: EntryIndirect, refs: []TagSet{Tags(TagClass), Tags(TagNameAndType)}, since: MinMajor},
	TagMethodref:          {name: "CONSTANT_Methodref", kind: EntryIndirect, refs: []TagSet{Tags(TagClass), Tags(TagNameAndType)}, since: MinMajor},
	TagInterfaceMethodref: {name: "CONSTANT_InterfaceMethodref", kind: EntryIndirect, refs: []TagSet{Tags(TagClass), Tags(TagNameAndType)}, since: MinMajor},
	TagNameAndType:        {name: "CONSTANT_NameAndType", kind: EntryIndirect, refs: []TagSet{Tags(TagUtf8), Tags(TagUtf8)}, since: MinMajor},
	TagMethodHandle:       {name: "CONSTANT_MethodHandle", kind: EntryHandle, since: Java7},
	TagMethodType:         {name: "CONSTANT_MethodType", kind: EntryIndirect, refs: []TagSet{Tags(TagUtf8)}, since: Java7},
	TagDynamic:            {name: "CONSTANT_Dynamic", kind: EntryBootstrap, refs: []TagSet{Tags(TagNameAndType)}, since: Java11},
	TagInvokeDynamic:      {name: "CONSTANT_InvokeDynamic", kind: EntryBootstrap, refs: []TagSet{Tags(TagNameAndType)}, since: Java7},
	TagModule:             {name: "CONSTANT_Module", kind: EntryIndirect, refs: []TagSet{Tags(TagUtf8)}, since: Java9},
	TagPackage:            {name: "CONSTANT_Package", kind: EntryIndirect, refs: []TagSet{Tags(TagUtf8)}, since: Java9},
}

func (t Tag) Valid() bool {
	return int(t) < len(tagInfos) && tagInfos[t].kind != 0
}

func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("CONSTANT_%d", uint8(t))
	}
	return tagInfos[t].name
}

func (t Tag) Kind() EntryKind {
	if !t.Valid() {
		return 0
	}
	return tagInfos[t].kind
}

// Refs returns the expected tag set for each pool index stored in an entry
// of this tag. Bootstrap entries list only the name-and-type slot.
func (t Tag) Refs() []TagSet {
	if !t.Valid() {
		return nil
	}
	return tagInfos[t].refs
}

func (t Tag) TwoSlots() bool {
	return t == TagLong || t == TagDouble
}

func (t Tag) Since() uint16 {
	if !t.Valid() {
		return 0
	}
	return tagInfos[t].since
}

// LoadableBy reports whether ldc or a bootstrap argument may reference the tag.
func (t Tag) LoadableBy(v Version) bool {
	switch t {
	case TagInteger, TagFloat, TagLong, TagDouble, TagString:
		return true
	case TagClass:
		return v.AtLeast(Java5)
	case TagMethodHandle, TagMethodType:
		return v.AtLeast(Java7)
	case TagDynamic:
		return v.AtLeast(Java11)
	}
	return false
}

// TagSet is a bit set of tags.
type TagSet uint32

var AnyTag = Tags(TagUtf8, TagInteger, TagFloat, TagLong, TagDouble, TagClass,
	TagString, TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
	TagMethodHandle, TagMethodType, TagDynamic, TagInvokeDynamic, TagModule, TagPackage)

func Tags(tags ...Tag) TagSet {
	var s TagSet
	for _, t := range tags {
		s |= 1 << t
	}
	return s
}

func (s TagSet) Has(t Tag) bool {
	return t < 32 && s&(1<<t) != 0
}

func (s TagSet) Union(o TagSet) TagSet {
	return s | o
}

func (s TagSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

func (s TagSet) String() string {
	var names []string
	for t := Tag(0); t < 32; t++ {
		if s.Has(t) {
			names = append(names, t.String())
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// LoadableTags returns every tag loadable by v.
func LoadableTags(v Version) TagSet {
	var s TagSet
	for t := Tag(0); int(t) < len(tagInfos); t++ {
		if t.Valid() && t.LoadableBy(v) {
			s |= 1 << t
		}
	}
	return s
}
