package classfile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dhamidi/classcheck/jvm"
)

type ConstantPoolEntry interface {
	Tag() jvm.Tag
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() jvm.Tag { return jvm.TagUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() jvm.Tag { return jvm.TagInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() jvm.Tag { return jvm.TagFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() jvm.Tag { return jvm.TagLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() jvm.Tag { return jvm.TagDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() jvm.Tag { return jvm.TagClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() jvm.Tag { return jvm.TagString }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() jvm.Tag { return jvm.TagFieldref }

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() jvm.Tag { return jvm.TagMethodref }

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() jvm.Tag { return jvm.TagInterfaceMethodref }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() jvm.Tag { return jvm.TagNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  jvm.HandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() jvm.Tag { return jvm.TagMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() jvm.Tag { return jvm.TagMethodType }

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() jvm.Tag { return jvm.TagDynamic }

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() jvm.Tag { return jvm.TagInvokeDynamic }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() jvm.Tag { return jvm.TagModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() jvm.Tag { return jvm.TagPackage }

// entryRefs returns the pool indices an entry stores, in the order of
// jvm.Tag.Refs. Bootstrap entries return only their name-and-type index.
func entryRefs(e ConstantPoolEntry) []uint16 {
	switch e := e.(type) {
	case *ConstantClassInfo:
		return []uint16{e.NameIndex}
	case *ConstantStringInfo:
		return []uint16{e.StringIndex}
	case *ConstantFieldrefInfo:
		return []uint16{e.ClassIndex, e.NameAndTypeIndex}
	case *ConstantMethodrefInfo:
		return []uint16{e.ClassIndex, e.NameAndTypeIndex}
	case *ConstantInterfaceMethodrefInfo:
		return []uint16{e.ClassIndex, e.NameAndTypeIndex}
	case *ConstantNameAndTypeInfo:
		return []uint16{e.NameIndex, e.DescriptorIndex}
	case *ConstantMethodTypeInfo:
		return []uint16{e.DescriptorIndex}
	case *ConstantModuleInfo:
		return []uint16{e.NameIndex}
	case *ConstantPackageInfo:
		return []uint16{e.NameIndex}
	case *ConstantDynamicInfo:
		return []uint16{e.NameAndTypeIndex}
	case *ConstantInvokeDynamicInfo:
		return []uint16{e.NameAndTypeIndex}
	}
	return nil
}

func bootstrapIndex(e ConstantPoolEntry) (uint16, bool) {
	switch e := e.(type) {
	case *ConstantDynamicInfo:
		return e.BootstrapMethodAttrIndex, true
	case *ConstantInvokeDynamicInfo:
		return e.BootstrapMethodAttrIndex, true
	}
	return 0, false
}

// Bootstrap is one entry of the BootstrapMethods attribute.
type Bootstrap struct {
	Handle uint16   `json:"handle"`
	Args   []uint16 `json:"args"`
}

// ConstantPool is the decoded pool of one class file. Index 0 and the slot
// after each long or double are nil.
type ConstantPool struct {
	entries []ConstantPoolEntry
	offsets []int
	version jvm.Version
	reg     Registry

	// Start and Length locate the pool entries in the class file.
	Start  int
	Length int

	maxBoot    int
	bootstraps []Bootstrap
}

// ReadConstantPool reads the entry count and every entry. An unknown tag is
// fatal; malformed text and tags newer than v are reported and kept.
func ReadConstantPool(c *Cursor, v jvm.Version, reg Registry, r Reporter) (*ConstantPool, error) {
	count := int(c.U2())
	if err := c.Err(); err != nil {
		return nil, err
	}
	if count == 0 {
		count = 1
	}
	p := &ConstantPool{
		entries: make([]ConstantPoolEntry, count),
		offsets: make([]int, count),
		version: v,
		reg:     reg,
		Start:   c.Pos(),
		maxBoot: -1,
	}
	for i := 1; i < count; i++ {
		at := c.Pos()
		tag := jvm.Tag(c.U1())
		if err := c.Err(); err != nil {
			return nil, err
		}
		if !tag.Valid() {
			return nil, report(r, ErrBadPoolTag, at, i, uint8(tag))
		}
		if since := tag.Since(); v.Major < since {
			report(r, ErrTagNotSupported, at, i, tag, since, v)
		}
		e := readEntry(c, tag, r)
		if err := c.Err(); err != nil {
			return nil, err
		}
		p.entries[i] = e
		p.offsets[i] = at
		if boot, ok := bootstrapIndex(e); ok && int(boot) > p.maxBoot {
			p.maxBoot = int(boot)
		}
		if tag.TwoSlots() {
			i++
		}
	}
	p.Length = c.Pos() - p.Start
	return p, nil
}

func readEntry(c *Cursor, tag jvm.Tag, r Reporter) ConstantPoolEntry {
	switch tag {
	case jvm.TagUtf8:
		n := int(c.U2())
		at := c.Pos()
		raw := c.Bytes(n)
		value := DecodeModifiedUTF8(raw, func(i int, seq []byte) {
			report(r, ErrMalformedText, at+i, seq)
		})
		return &ConstantUtf8Info{Value: value}
	case jvm.TagInteger:
		return &ConstantIntegerInfo{Value: c.S4()}
	case jvm.TagFloat:
		return &ConstantFloatInfo{Value: math.Float32frombits(c.U4())}
	case jvm.TagLong:
		return &ConstantLongInfo{Value: int64(c.U8())}
	case jvm.TagDouble:
		return &ConstantDoubleInfo{Value: math.Float64frombits(c.U8())}
	case jvm.TagClass:
		return &ConstantClassInfo{NameIndex: c.U2()}
	case jvm.TagString:
		return &ConstantStringInfo{StringIndex: c.U2()}
	case jvm.TagFieldref:
		return &ConstantFieldrefInfo{ClassIndex: c.U2(), NameAndTypeIndex: c.U2()}
	case jvm.TagMethodref:
		return &ConstantMethodrefInfo{ClassIndex: c.U2(), NameAndTypeIndex: c.U2()}
	case jvm.TagInterfaceMethodref:
		return &ConstantInterfaceMethodrefInfo{ClassIndex: c.U2(), NameAndTypeIndex: c.U2()}
	case jvm.TagNameAndType:
		return &ConstantNameAndTypeInfo{NameIndex: c.U2(), DescriptorIndex: c.U2()}
	case jvm.TagMethodHandle:
		return &ConstantMethodHandleInfo{ReferenceKind: jvm.HandleKind(c.U1()), ReferenceIndex: c.U2()}
	case jvm.TagMethodType:
		return &ConstantMethodTypeInfo{DescriptorIndex: c.U2()}
	case jvm.TagDynamic:
		return &ConstantDynamicInfo{BootstrapMethodAttrIndex: c.U2(), NameAndTypeIndex: c.U2()}
	case jvm.TagInvokeDynamic:
		return &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: c.U2(), NameAndTypeIndex: c.U2()}
	case jvm.TagModule:
		return &ConstantModuleInfo{NameIndex: c.U2()}
	case jvm.TagPackage:
		return &ConstantPackageInfo{NameIndex: c.U2()}
	}
	return nil
}

// Count is the constant_pool_count field: one more than the last index.
func (p *ConstantPool) Count() int {
	return len(p.entries)
}

func (p *ConstantPool) Version() jvm.Version {
	return p.version
}

// Entry returns the entry at index without checking its tag, or nil.
func (p *ConstantPool) Entry(index uint16) ConstantPoolEntry {
	if int(index) >= len(p.entries) {
		return nil
	}
	return p.entries[index]
}

// Offset returns the file offset of the entry at index.
func (p *ConstantPool) Offset(index uint16) int {
	if int(index) >= len(p.offsets) {
		return 0
	}
	return p.offsets[index]
}

// Lookup resolves index and checks its tag against tags. The returned
// *Error carries no offset; callers place it at the reference site.
func (p *ConstantPool) Lookup(index uint16, tags jvm.TagSet) (ConstantPoolEntry, error) {
	if index == 0 || int(index) >= len(p.entries) {
		return nil, &Error{Diagnostic: newDiagnostic(ErrBadPoolIndex, 0, index, len(p.entries)-1)}
	}
	e := p.entries[index]
	if e == nil {
		return nil, &Error{Diagnostic: newDiagnostic(ErrMidEntryIndex, 0, index)}
	}
	if !tags.Has(e.Tag()) {
		return e, &Error{Diagnostic: newDiagnostic(ErrPoolTypeMismatch, 0, index, e.Tag(), tags)}
	}
	return e, nil
}

// Validate checks every index stored inside the pool against the tags its
// position allows, and every method handle against its kind. All violations
// are collected into a single ErrInvalidPool error.
func (p *ConstantPool) Validate() error {
	var errs []error
	var msgs []string
	fail := func(i int, err error) {
		var e *Error
		if errors.As(err, &e) {
			e.Offset = p.offsets[i]
		}
		errs = append(errs, err)
		msgs = append(msgs, fmt.Sprintf("#%d %s", i, errMessage(err)))
	}
	for i, e := range p.entries {
		if e == nil {
			continue
		}
		tag := e.Tag()
		switch tag.Kind() {
		case jvm.EntryIndirect, jvm.EntryBootstrap:
			refs := entryRefs(e)
			for j, tags := range tag.Refs() {
				if _, err := p.Lookup(refs[j], tags); err != nil {
					fail(i, err)
				}
			}
		case jvm.EntryHandle:
			h := e.(*ConstantMethodHandleInfo)
			tags, ok := p.reg.HandleTargets(byte(h.ReferenceKind), p.version)
			if !ok {
				fail(i, &Error{Diagnostic: newDiagnostic(ErrInvalidHandleKind, 0, i, uint8(h.ReferenceKind))})
				continue
			}
			if _, err := p.Lookup(h.ReferenceIndex, tags); err != nil {
				fail(i, err)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &Error{
		Diagnostic: newDiagnostic(ErrInvalidPool, p.Start, strings.Join(msgs, "; ")),
		Cause:      errors.Join(errs...),
	}
}

func errMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RegisterBootstrap records one entry of the BootstrapMethods attribute.
func (p *ConstantPool) RegisterBootstrap(b Bootstrap) {
	p.bootstraps = append(p.bootstraps, b)
}

func (p *ConstantPool) Bootstraps() []Bootstrap {
	return p.bootstraps
}

func (p *ConstantPool) BootstrapCount() int {
	return len(p.bootstraps)
}

// MaxBootstrapIndexUsed returns the largest bootstrap index referenced by a
// Dynamic or InvokeDynamic entry, or -1 when there are none.
func (p *ConstantPool) MaxBootstrapIndexUsed() int {
	return p.maxBoot
}

// CheckBootstraps reports ErrBootstrapCount when the pool references a
// bootstrap method that was never registered.
func (p *ConstantPool) CheckBootstraps(r Reporter) bool {
	if p.maxBoot >= 0 && len(p.bootstraps) <= p.maxBoot {
		report(r, ErrBootstrapCount, p.Start, p.maxBoot, len(p.bootstraps))
		return false
	}
	return true
}

func (p *ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := p.Entry(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (p *ConstantPool) GetClassName(index uint16) string {
	if entry, ok := p.Entry(index).(*ConstantClassInfo); ok {
		return p.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (p *ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := p.Entry(index).(*ConstantNameAndTypeInfo); ok {
		return p.GetUtf8(entry.NameIndex), p.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

// StringValue renders the entry at index for the trace, resolving the
// indices it stores.
func (p *ConstantPool) StringValue(index uint16) string {
	return p.render(index, 0)
}

func (p *ConstantPool) render(index uint16, depth int) string {
	e := p.Entry(index)
	if e == nil || depth > 3 {
		return "#" + strconv.Itoa(int(index))
	}
	switch e := e.(type) {
	case *ConstantUtf8Info:
		return e.Value
	case *ConstantIntegerInfo:
		return strconv.FormatInt(int64(e.Value), 10)
	case *ConstantFloatInfo:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32) + "F"
	case *ConstantLongInfo:
		return strconv.FormatInt(e.Value, 10) + "L"
	case *ConstantDoubleInfo:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *ConstantClassInfo:
		return p.render(e.NameIndex, depth+1)
	case *ConstantStringInfo:
		return strconv.Quote(p.render(e.StringIndex, depth+1))
	case *ConstantFieldrefInfo:
		return p.render(e.ClassIndex, depth+1) + "." + p.render(e.NameAndTypeIndex, depth+1)
	case *ConstantMethodrefInfo:
		return p.render(e.ClassIndex, depth+1) + "." + p.render(e.NameAndTypeIndex, depth+1)
	case *ConstantInterfaceMethodrefInfo:
		return p.render(e.ClassIndex, depth+1) + "." + p.render(e.NameAndTypeIndex, depth+1)
	case *ConstantNameAndTypeInfo:
		return p.render(e.NameIndex, depth+1) + ":" + p.render(e.DescriptorIndex, depth+1)
	case *ConstantMethodHandleInfo:
		return e.ReferenceKind.String() + " " + p.render(e.ReferenceIndex, depth+1)
	case *ConstantMethodTypeInfo:
		return p.render(e.DescriptorIndex, depth+1)
	case *ConstantDynamicInfo:
		return fmt.Sprintf("%s bootstrap %d", p.render(e.NameAndTypeIndex, depth+1), e.BootstrapMethodAttrIndex)
	case *ConstantInvokeDynamicInfo:
		return fmt.Sprintf("%s bootstrap %d", p.render(e.NameAndTypeIndex, depth+1), e.BootstrapMethodAttrIndex)
	case *ConstantModuleInfo:
		return p.render(e.NameIndex, depth+1)
	case *ConstantPackageInfo:
		return p.render(e.NameIndex, depth+1)
	}
	return "#" + strconv.Itoa(int(index))
}

// Print lists every entry.
func (p *ConstantPool) Print(pr Printer) {
	for i, e := range p.entries {
		if e == nil {
			continue
		}
		pr.Linef("%5d:  %s %s ; start = %#x", i, e.Tag(), p.StringValue(uint16(i)), p.offsets[i])
	}
}

// PrintBootstrapUsers lists the entries that reference bootstrap methods,
// each followed by the bootstrap entry it uses when one was registered.
func (p *ConstantPool) PrintBootstrapUsers(pr Printer) {
	for i, e := range p.entries {
		boot, ok := bootstrapIndex(e)
		if !ok {
			continue
		}
		pr.Linef("%5d:  %s %s", i, e.Tag(), p.StringValue(uint16(i)))
		if int(boot) < len(p.bootstraps) {
			p.printBootstrap(pr.Shift(), int(boot))
		} else {
			pr.Shift().Linef("bootstrap %d missing", boot)
		}
	}
}

func (p *ConstantPool) printBootstrap(pr Printer, n int) {
	b := p.bootstraps[n]
	pr.Linef("bootstrap %d: %s", n, p.StringValue(b.Handle))
	for _, arg := range b.Args {
		pr.Shift().Linef("%s", p.StringValue(arg))
	}
}
