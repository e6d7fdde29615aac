package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/values"
)

func TestDefineAndLookup(t *testing.T) {
	ns := New("global", "", nil, "_")
	require.NoError(t, ns.Define("x", &Declaration{ID: "x", Kind: DeclVariable, Value: values.NewInt(42)}, false))
	d, err := ns.Lookup("x", "global", true)
	require.NoError(t, err)
	assert.Equal(t, int64(42), d.Value.Int())
}

func TestDefineWithoutOverride(t *testing.T) {
	ns := New("global", "", nil, "_")
	require.NoError(t, ns.Define("x", &Declaration{ID: "x", Value: values.NewInt(1)}, false))
	err := ns.Define("x", &Declaration{ID: "x", Value: values.NewInt(2)}, false)
	assert.ErrorIs(t, err, ErrDefined)
}

func TestPrivateVisibility(t *testing.T) {
	root := New("mod", "", nil, "_")
	require.NoError(t, root.Define("_hidden", &Declaration{ID: "_hidden", Value: values.NewInt(1)}, false))

	child := New("inner", "", root, "_")

	// From inside the module's own subtree, visible.
	_, err := root.Lookup("_hidden", child.FullName(), true)
	require.NoError(t, err)

	// From an unrelated namespace, not visible.
	other := New("other", "", nil, "_")
	_, err = root.Lookup("_hidden", other.FullName(), true)
	assert.ErrorIs(t, err, ErrPrivateMember)
}

func TestRecursiveLookupWalksClosure(t *testing.T) {
	parent := New("outer", "", nil, "_")
	require.NoError(t, parent.Define("y", &Declaration{ID: "y", Value: values.NewInt(7)}, false))
	child := New("inner", "", parent, "_")

	d, err := child.Lookup("y", "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.Value.Int())

	_, err = child.Lookup("y", "", false)
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestUndefinedLookup(t *testing.T) {
	ns := New("global", "", nil, "_")
	_, err := ns.Lookup("missing", "", true)
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestImportShowList(t *testing.T) {
	a := New("a", "", nil, "_")
	require.NoError(t, a.Define("hidden", &Declaration{ID: "hidden", Value: values.NewInt(1)}, false))
	require.NoError(t, a.Define("shown", &Declaration{ID: "shown", Value: values.NewInt(2)}, false))

	b := New("b", "", nil, "_")
	b.Import(a, false, []string{"shown"})

	d, err := b.Lookup("shown", "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Value.Int())

	_, err = b.Lookup("hidden", "", true)
	assert.ErrorIs(t, err, ErrUndefined)
}
