package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/bytecode"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

func buildModuleBytes(t *testing.T, compiler bytecode.Version) []byte {
	t.Helper()
	w := bytecode.NewWriter()
	w.WriteHeader(bytecode.Header{
		CompilerVersion: compiler,
		CompiledAtUtc:   "2026-07-30T00:00:00Z",
		CurrentFilename: "a.ht",
		SourceType:      bytecode.SourceModule,
	})
	w.WriteConstantPools(bytecode.ConstantPool{})
	return w.Bytes()
}

func TestLoadBytecodeCachesByID(t *testing.T) {
	c := NewCache()
	raw := buildModuleBytes(t, bytecode.Version{Major: 1})
	m1, err := c.LoadBytecode("a.ht", raw, bytecode.Version{Major: 1})
	require.NoError(t, err)
	m2, err := c.LoadBytecode("a.ht", raw, bytecode.Version{Major: 1})
	require.NoError(t, err)
	assert.Same(t, m1, m2)
}

func TestLoadBytecodeVersionMismatch(t *testing.T) {
	c := NewCache()
	raw := buildModuleBytes(t, bytecode.Version{Major: 2})
	_, err := c.LoadBytecode("b.ht", raw, bytecode.Version{Major: 1})
	assert.ErrorIs(t, err, ErrVersion)
}

type fakeLoader struct {
	modules map[string]*namespace.Namespace
}

func (f *fakeLoader) LoadModule(path string) (*namespace.Namespace, error) {
	if ns, ok := f.modules[path]; ok {
		return ns, nil
	}
	return nil, assert.AnError
}

func (f *fakeLoader) LoadJSON(path string) (*values.Value, error) {
	return values.NewInt(7), nil
}

func TestResolveImportsShowList(t *testing.T) {
	aNS := namespace.New("a", "", nil, "_")
	require.NoError(t, aNS.Define("hidden", &namespace.Declaration{ID: "hidden", Value: values.NewInt(1)}, false))
	require.NoError(t, aNS.Define("shown", &namespace.Declaration{ID: "shown", Value: values.NewInt(2)}, false))

	bNS := namespace.New("b", "", nil, "_")
	bNS.DeclareImport(&namespace.UnresolvedImport{FromPath: "a.ht", ShowList: []string{"shown"}})

	c := NewCache()
	loader := &fakeLoader{modules: map[string]*namespace.Namespace{"a.ht": aNS}}
	require.NoError(t, c.ResolveImports(bNS, loader))

	d, err := bNS.Lookup("shown", "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Value.Int())

	_, err = bNS.Lookup("hidden", "", true)
	assert.ErrorIs(t, err, namespace.ErrUndefined)
}
