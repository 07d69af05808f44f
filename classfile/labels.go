package classfile

// CodeLabels tracks which code offsets start instructions and which are used
// as branch, handler, table or frame targets. Offsets are relative to the
// first instruction; origin is the file offset of that instruction and is
// used only to place diagnostics.
type CodeLabels struct {
	starts    *bitSet
	refs      *bitSet
	maxLocals int
	length    int
	finalized bool
	frame     int
	site      int
	origin    int
	rep       Reporter
}

func NewCodeLabels(maxLocals, codeLength, origin int, r Reporter) *CodeLabels {
	return &CodeLabels{
		starts:    newBitSet(codeLength),
		refs:      newBitSet(codeLength),
		maxLocals: maxLocals,
		length:    codeLength,
		frame:     -1,
		origin:    origin,
		rep:       r,
	}
}

func (l *CodeLabels) Length() int { return l.length }

// MarkInstructionStart records offset as the start of the instruction
// currently being decoded.
func (l *CodeLabels) MarkInstructionStart(offset int) {
	l.starts.set(offset)
	l.site = offset
}

func (l *CodeLabels) IsInstructionStart(offset int) bool {
	return l.starts.has(offset)
}

// ResolveLabel returns base+delta. A target outside [0,length] is reported
// and replaced by 0. Backward targets, and any target once the scan is
// finished, must already be instruction starts.
func (l *CodeLabels) ResolveLabel(base, delta int) int {
	offset := base + delta
	switch {
	case offset < 0 || offset > l.length:
		report(l.rep, ErrLabelOutOfRange, l.origin+base, offset, base, delta, l.length)
		offset = 0
	case (delta < 0 || l.finalized) && !l.starts.has(offset):
		report(l.rep, ErrNotInstruction, l.origin+offset, offset)
	}
	l.refs.set(offset)
	return offset
}

// CheckLocal reports a local variable index at or beyond max_locals.
func (l *CodeLabels) CheckLocal(index int) bool {
	if index >= l.maxLocals {
		report(l.rep, ErrLocalIndexOutOfRange, l.origin+l.site, index, l.maxLocals)
		return false
	}
	return true
}

// FinalizeAndCheck ends the instruction scan. The code length becomes a valid
// target and every target recorded so far must be an instruction start.
func (l *CodeLabels) FinalizeAndCheck() bool {
	l.finalized = true
	l.starts.set(l.length)
	bad := l.refs.andNot(l.starts)
	if bad.count() > 0 {
		report(l.rep, ErrDanglingBranchTargets, l.origin, bad.slice())
		return false
	}
	return true
}

// AddFrameDelta advances the stack map offset by one frame. The first frame
// lands on delta and each later one on previous+delta+1.
func (l *CodeLabels) AddFrameDelta(delta int) int {
	l.frame = l.ResolveLabel(l.frame, delta+1)
	return l.frame
}
