package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLabel(t *testing.T) {
	diags := &Diagnostics{}
	l := NewCodeLabels(2, 10, 100, diags)
	l.MarkInstructionStart(0)
	l.MarkInstructionStart(3)

	if got := l.ResolveLabel(3, 4); got != 7 {
		t.Errorf("ResolveLabel(3, 4) = %d, want 7", got)
	}
	require.Zero(t, diags.Len(), "forward targets are checked at the end")

	if got := l.ResolveLabel(3, -2); got != 1 {
		t.Errorf("ResolveLabel(3, -2) = %d, want 1", got)
	}
	require.Equal(t, 1, diags.Count(ErrNotInstruction))

	if got := l.ResolveLabel(3, 20); got != 0 {
		t.Errorf("ResolveLabel(3, 20) = %d, want 0", got)
	}
	require.Equal(t, 1, diags.Count(ErrLabelOutOfRange))
	require.Equal(t, 103, diags.Items()[1].Offset)

	if got := l.ResolveLabel(0, 10); got != 10 {
		t.Errorf("ResolveLabel(0, 10) = %d, want 10", got)
	}
}

func TestFinalizeAndCheck(t *testing.T) {
	diags := &Diagnostics{}
	l := NewCodeLabels(0, 6, 0, diags)
	for _, off := range []int{0, 1, 4} {
		l.MarkInstructionStart(off)
	}
	l.ResolveLabel(1, 3)
	l.ResolveLabel(1, 5)
	l.ResolveLabel(0, 2)
	l.ResolveLabel(1, 4)

	require.False(t, l.FinalizeAndCheck())
	require.Equal(t, 1, diags.Count(ErrDanglingBranchTargets))
	require.Contains(t, diags.Items()[0].Message, "[2 5]")

	l.ResolveLabel(0, 5)
	require.Equal(t, 1, diags.Count(ErrNotInstruction), "finalized targets are checked at once")
	l.ResolveLabel(0, 6)
	require.Equal(t, 1, diags.Count(ErrNotInstruction), "code length is a valid target")
}

func TestAddFrameDelta(t *testing.T) {
	diags := &Diagnostics{}
	l := NewCodeLabels(0, 8, 0, diags)
	for _, off := range []int{0, 2, 5} {
		l.MarkInstructionStart(off)
	}
	l.FinalizeAndCheck()

	for _, tt := range []struct{ delta, want int }{{2, 2}, {2, 5}} {
		if got := l.AddFrameDelta(tt.delta); got != tt.want {
			t.Errorf("AddFrameDelta(%d) = %d, want %d", tt.delta, got, tt.want)
		}
	}
	require.Zero(t, diags.Len())

	l.AddFrameDelta(0)
	require.Equal(t, 1, diags.Count(ErrNotInstruction))
}

func TestCheckLocal(t *testing.T) {
	diags := &Diagnostics{}
	l := NewCodeLabels(2, 4, 50, diags)
	l.MarkInstructionStart(3)
	require.True(t, l.CheckLocal(1))
	require.False(t, l.CheckLocal(2))
	require.Equal(t, 53, diags.Items()[0].Offset)
}

func TestBitSet(t *testing.T) {
	a := newBitSet(10)
	a.set(1)
	a.set(70)
	a.set(9)
	b := newBitSet(10)
	b.set(9)

	require.True(t, a.has(70))
	require.False(t, a.has(-1))
	require.Equal(t, 3, a.count())
	require.Equal(t, []int{1, 70}, a.andNot(b).slice())
}
