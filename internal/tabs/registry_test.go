package tabs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/tabstorm/internal/doc/node"
)

func TestMemoryRegistry(t *testing.T) {
	r := NewMemoryRegistry()
	a, b := node.New(KindContainer, nil), node.New(KindContainer, nil)

	require.NoError(t, r.Register("tabs-a", a))
	require.NoError(t, r.Register("tabs-a", a), "same binding twice is a no-op")
	assert.ErrorIs(t, r.Register("tabs-a", b), ErrIDInUse)
	assert.ErrorIs(t, r.Register("tabs-other", a), ErrNodeAlreadyRegistered)
	assert.ErrorIs(t, r.Register("", b), ErrInvalidID)
	assert.ErrorIs(t, r.Register("tabs-b", nil), node.ErrNilNode)
	require.NoError(t, r.Register("tabs-b", b))

	n, ok := r.Resolve("tabs-a")
	assert.True(t, ok)
	assert.Same(t, a, n)
	id, ok := r.Lookup(b)
	assert.True(t, ok)
	assert.Equal(t, "tabs-b", id)
	_, ok = r.Resolve("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"tabs-a", "tabs-b"}, r.IDs())
	assert.Equal(t, 2, r.Len())

	assert.True(t, r.Unregister("tabs-a"))
	assert.False(t, r.Unregister("tabs-a"))
	assert.True(t, r.Retired("tabs-a"))
	_, ok = r.Lookup(a)
	assert.False(t, ok)

	// A container restored by undo keeps its id.
	require.NoError(t, r.Register("tabs-a", a))
	assert.False(t, r.Retired("tabs-a"))

	r.Clear()
	assert.Zero(t, r.Len())
	assert.True(t, r.Retired("tabs-b"))
}

func TestMintSkipsUsedIDs(t *testing.T) {
	r := NewMemoryRegistry()
	require.NoError(t, r.Register("tabs-1", node.New(KindContainer, nil)))
	require.NoError(t, r.Register("tabs-2", node.New(KindContainer, nil)))
	r.Unregister("tabs-2")

	id, err := mintID(NewSequenceGenerator(1), r, func(s string) bool { return s == "tabs-3" })
	require.NoError(t, err)
	assert.Equal(t, "tabs-4", id)

	_, err = mintID(constGen("tabs-1"), r, nil)
	assert.ErrorIs(t, err, ErrIDExhausted)

	id = UUIDGenerator{}.NewID()
	assert.True(t, strings.HasPrefix(id, IDPrefix))
	assert.Len(t, id, len(IDPrefix)+36)
}

type constGen string

func (g constGen) NewID() string { return string(g) }
