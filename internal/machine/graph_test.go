package machine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Accessors(t *testing.T) {
	g := doorGraph()

	assert.True(t, g.HasNode("Locked"))
	assert.False(t, g.HasNode("Ajar"))

	out := g.Out("Closed")
	require.Len(t, out, 2)
	assert.Equal(t, "lock", out[0].Event)
	assert.Equal(t, "open", out[1].Event)

	in := g.In("Closed")
	require.Len(t, in, 2)
	assert.Equal(t, "close", in[0].Event)
	assert.Equal(t, "unlock", in[1].Event)

	counts := g.EventCounts()
	assert.Equal(t, 1, counts["open"])
	assert.Len(t, counts, 4)
}

func TestDiff_EmptyAndString(t *testing.T) {
	var nilDiff *Diff
	assert.True(t, nilDiff.Empty())

	d := &Diff{
		Missing: []TransitionEdge{{Source: "Closed", Event: "open", Target: "Open"}},
	}
	assert.False(t, d.Empty())
	assert.Contains(t, d.String(), "missing: Closed --open--> Open")
}

func TestVerifyError_ErrorFormat(t *testing.T) {
	err := &VerifyError{
		Kind:    KindNondeterminism,
		Message: "replicas disagree",
		State:   "Closed",
		Event:   "open",
	}
	assert.Equal(t, "NONDETERMINISM: replicas disagree (state=Closed, event=open)", err.Error())
}

func TestKindOf_UnwrapsWrappedErrors(t *testing.T) {
	inner := NewError(KindOverflow, "too many states")
	wrapped := fmt.Errorf("exploring candidate: %w", inner)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindOverflow, kind)
	assert.True(t, IsKind(wrapped, KindOverflow))
	assert.False(t, IsKind(wrapped, KindTimeout))
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)
}
