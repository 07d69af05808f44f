package classfile

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// Code identifies a class of structural violation.
type Code string

const (
	// ErrTruncatedInput indicates a read past the end of the current record.
	ErrTruncatedInput Code = "truncated-input"
	// ErrSizeOverflow indicates a length field larger than the bytes remaining.
	ErrSizeOverflow Code = "size-overflow"
	// ErrBadMagic indicates the file does not start with 0xCAFEBABE.
	ErrBadMagic Code = "bad-magic"
	// ErrUnsupportedVersion indicates a major/minor pair outside the known range.
	ErrUnsupportedVersion Code = "unsupported-version"

	// ErrBadPoolTag indicates an unknown constant pool tag byte.
	ErrBadPoolTag Code = "bad-pool-tag"
	// ErrTagNotSupported indicates a pool tag newer than the class version.
	ErrTagNotSupported Code = "tag-not-supported"
	// ErrBadPoolIndex indicates a pool index outside [1,count-1].
	ErrBadPoolIndex Code = "bad-pool-index"
	// ErrMidEntryIndex indicates a reference to the second slot of a long or double.
	ErrMidEntryIndex Code = "mid-entry-index"
	// ErrMissingPoolEntry indicates a zero index where a reference is required.
	ErrMissingPoolEntry Code = "missing-pool-entry"
	// ErrPoolTypeMismatch indicates a reference resolving to an unexpected tag.
	ErrPoolTypeMismatch Code = "pool-type-mismatch"
	// ErrInvalidHandleKind indicates a method handle kind outside 1..9.
	ErrInvalidHandleKind Code = "invalid-handle-kind"
	// ErrInvalidPool aggregates the violations found while validating the pool.
	ErrInvalidPool Code = "invalid-pool"
	// ErrMalformedText indicates an invalid modified UTF-8 sequence.
	ErrMalformedText Code = "malformed-text"

	// ErrBootstrapCount indicates the pool references more bootstrap methods
	// than the BootstrapMethods attribute supplies.
	ErrBootstrapCount Code = "bootstrap-count"
	// ErrBootstrapNotLoadable indicates a static argument that is not loadable.
	ErrBootstrapNotLoadable Code = "bootstrap-not-loadable"
	// ErrNotLoadable indicates an ldc operand that is not loadable.
	ErrNotLoadable Code = "not-loadable"

	// ErrDuplicateAttribute indicates a second unique attribute in one context.
	ErrDuplicateAttribute Code = "duplicate-attribute"
	// ErrAttributeOutOfContext indicates a known attribute in the wrong place.
	ErrAttributeOutOfContext Code = "attribute-out-of-context"
	// ErrAttributeNotSupported indicates an attribute newer than the class version.
	ErrAttributeNotSupported Code = "attribute-not-supported"
	// ErrTrailingBytes indicates bytes left over after a record was decoded.
	ErrTrailingBytes Code = "trailing-bytes"
	// ErrOrderingViolation indicates an end offset before its start offset.
	ErrOrderingViolation Code = "ordering-violation"
	// ErrInvalidDescriptor indicates a malformed field or method descriptor.
	ErrInvalidDescriptor Code = "invalid-descriptor"
	// ErrUnknownAccessFlags indicates access bits not valid in the context.
	ErrUnknownAccessFlags Code = "unknown-access-flags"

	// ErrInvalidFrameTag indicates an undefined stack map frame tag.
	ErrInvalidFrameTag Code = "invalid-frame-tag"
	// ErrInvalidVerificationType indicates an undefined verification type tag.
	ErrInvalidVerificationType Code = "invalid-verification-type"

	// ErrLabelOutOfRange indicates a branch target outside the code.
	ErrLabelOutOfRange Code = "label-out-of-range"
	// ErrNotInstruction indicates a known target that is not an instruction start.
	ErrNotInstruction Code = "not-instruction"
	// ErrDanglingBranchTargets lists targets that never became instruction starts.
	ErrDanglingBranchTargets Code = "dangling-branch-targets"
	// ErrLocalIndexOutOfRange indicates a local slot at or beyond max_locals.
	ErrLocalIndexOutOfRange Code = "local-index-out-of-range"
	// ErrRangeViolation indicates a tableswitch with low greater than high.
	ErrRangeViolation Code = "range-violation"
	// ErrOffsetOverflow indicates a switch table that cannot fit in the code.
	ErrOffsetOverflow Code = "offset-overflow"
	// ErrUnknownOpcode indicates an undefined opcode or wide target.
	ErrUnknownOpcode Code = "unknown-opcode"
	// ErrNonZeroOperand indicates a reserved operand byte that is not zero.
	ErrNonZeroOperand Code = "non-zero-operand"
	// ErrInvalidArrayType indicates an undefined newarray element type.
	ErrInvalidArrayType Code = "invalid-array-type"

	// ErrUnknownElementTag indicates an undefined element value tag.
	ErrUnknownElementTag Code = "unknown-element-tag"
	// ErrUnknownTargetKind indicates an undefined type annotation target.
	ErrUnknownTargetKind Code = "unknown-target-kind"
	// ErrTargetContextMismatch indicates a type annotation target in the wrong place.
	ErrTargetContextMismatch Code = "target-context-mismatch"
	// ErrPathKindOutOfRange indicates a type path step kind outside [0,3].
	ErrPathKindOutOfRange Code = "path-kind-out-of-range"
	// ErrPathArgIndexInvalid indicates a type argument index on a non type-argument step.
	ErrPathArgIndexInvalid Code = "path-arg-index-invalid"
)

// Error makes a Code usable as an errors.Is target.
func (c Code) Error() string { return string(c) }

type Severity uint8

const (
	Recoverable Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "recoverable"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type codeInfo struct {
	severity Severity
	template string
}

var codes = map[Code]codeInfo{
	ErrTruncatedInput:     {Fatal, "need %d bytes but only %d remain"},
	ErrSizeOverflow:       {Recoverable, "length %d exceeds the %d bytes remaining; clamped"},
	ErrBadMagic:           {Fatal, "magic number is %#x, expected 0xcafebabe"},
	ErrUnsupportedVersion: {Fatal, "version %s is not supported: %s"},

	ErrBadPoolTag:        {Fatal, "constant pool entry %d has unknown tag %d"},
	ErrTagNotSupported:   {Recoverable, "constant pool entry %d: %v requires major version %d but class is %s"},
	ErrBadPoolIndex:      {Fatal, "constant pool index %d is not in [1,%d]"},
	ErrMidEntryIndex:     {Fatal, "constant pool index %d is the second slot of a two-slot entry"},
	ErrMissingPoolEntry:  {Fatal, "constant pool index is zero but an entry of %v is required"},
	ErrPoolTypeMismatch:  {Recoverable, "constant pool entry %d is %v, expected one of %v"},
	ErrInvalidHandleKind: {Recoverable, "constant pool entry %d has invalid handle kind %d"},
	ErrInvalidPool:       {Fatal, "constant pool is invalid: %v"},
	ErrMalformedText:     {Recoverable, "bad modified UTF-8 sequence % x"},

	ErrBootstrapCount:       {Recoverable, "constant pool uses bootstrap method %d but only %d are supplied"},
	ErrBootstrapNotLoadable: {Recoverable, "bootstrap argument %d is %v which is not loadable in %s"},
	ErrNotLoadable:          {Recoverable, "ldc operand %d is %v which is not loadable in %s"},

	ErrDuplicateAttribute:    {Recoverable, "attribute %s occurs more than once in %v context"},
	ErrAttributeOutOfContext: {Recoverable, "attribute %s is not valid in %v context"},
	ErrAttributeNotSupported: {Recoverable, "attribute %s is not supported in version %s"},
	ErrTrailingBytes:         {Recoverable, "%d bytes left over after %s"},
	ErrOrderingViolation:     {Recoverable, "end offset %d is before start offset %d"},
	ErrInvalidDescriptor:     {Recoverable, "%q is not a valid %s descriptor"},
	ErrUnknownAccessFlags:    {Recoverable, "access flags %#04x are not valid in %v context"},

	ErrInvalidFrameTag:         {Fatal, "stack map frame tag %d is not defined"},
	ErrInvalidVerificationType: {Fatal, "verification type tag %d is not defined"},

	ErrLabelOutOfRange:       {Recoverable, "label %d (from %d%+d) is not in [0,%d]; using 0"},
	ErrNotInstruction:        {Recoverable, "label %d is not the start of an instruction"},
	ErrDanglingBranchTargets: {Recoverable, "branch targets %v are not instruction starts"},
	ErrLocalIndexOutOfRange:  {Recoverable, "local variable %d is not less than max_locals %d"},
	ErrRangeViolation:        {Recoverable, "tableswitch low %d is greater than high %d"},
	ErrOffsetOverflow:        {Fatal, "switch table of %d entries does not fit in %d remaining bytes"},
	ErrUnknownOpcode:         {Fatal, "opcode %#02x is not defined"},
	ErrNonZeroOperand:        {Recoverable, "reserved operand byte of %s is %d, expected 0"},
	ErrInvalidArrayType:      {Recoverable, "newarray type %d is not defined"},

	ErrUnknownElementTag:     {Fatal, "element value tag %q is not defined"},
	ErrUnknownTargetKind:     {Fatal, "type annotation target kind %#02x is not defined"},
	ErrTargetContextMismatch: {Fatal, "type annotation target %s belongs in %v context, not %v"},
	ErrPathKindOutOfRange:    {Recoverable, "type path kind %d is not in [0,3]"},
	ErrPathArgIndexInvalid:   {Recoverable, "type path argument index %d is only valid for kind 3, not %d"},
}

// Diagnostic is one reported violation.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Offset   int      `json:"offset"`
	Message  string   `json:"message"`
}

func newDiagnostic(code Code, offset int, args ...any) Diagnostic {
	info := codes[code]
	return Diagnostic{
		Code:     code,
		Severity: info.severity,
		Offset:   offset,
		Message:  fmt.Sprintf(info.template, args...),
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %#x: %s", d.Code, d.Offset, d.Message)
}

// Error is returned for a fatal violation. It matches its Code under
// errors.Is.
type Error struct {
	Diagnostic
	Cause    error
	reported bool
}

func (e *Error) Error() string {
	return e.Diagnostic.String()
}

func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Reporter receives every diagnostic as it is found.
type Reporter interface {
	Report(Diagnostic)
}

// Diagnostics collects reported diagnostics in order.
type Diagnostics struct {
	items []Diagnostic
}

func (d *Diagnostics) Report(diag Diagnostic) {
	d.items = append(d.items, diag)
}

func (d *Diagnostics) Items() []Diagnostic { return d.items }
func (d *Diagnostics) Len() int            { return len(d.items) }

// Count returns how many diagnostics carry code.
func (d *Diagnostics) Count(code Code) int {
	n := 0
	for _, diag := range d.items {
		if diag.Code == code {
			n++
		}
	}
	return n
}

func (d *Diagnostics) Has(code Code) bool {
	return d.Count(code) > 0
}

// LogReporter forwards diagnostics to a commonlog logger.
type LogReporter struct {
	Log commonlog.Logger
}

func (l LogReporter) Report(d Diagnostic) {
	if d.Severity == Fatal {
		l.Log.Error(d.Message, "code", string(d.Code), "offset", d.Offset)
		return
	}
	l.Log.Warning(d.Message, "code", string(d.Code), "offset", d.Offset)
}

// MultiReporter fans a diagnostic out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		r.Report(d)
	}
}

type discardReporter struct{}

func (discardReporter) Report(Diagnostic) {}

// report emits a diagnostic and returns it as an error when it is fatal.
func report(r Reporter, code Code, offset int, args ...any) error {
	d := newDiagnostic(code, offset, args...)
	r.Report(d)
	if d.Severity == Fatal {
		return &Error{Diagnostic: d, reported: true}
	}
	return nil
}
