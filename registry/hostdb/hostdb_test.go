package hostdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetu-lang/hetu/registry"
	"github.com/hetu-lang/hetu/values"
)

func TestDatabaseQueryAndExec(t *testing.T) {
	r := registry.Init(registry.DefaultOptions())
	require.NoError(t, Register(r))

	inst, err := r.New("Database", "", []*values.Value{
		values.NewString("sqlite"),
		values.NewString(":memory:"),
	}, nil)
	require.NoError(t, err)

	accessor, ok := inst.Accessor()
	require.True(t, ok)

	execMethod, err := accessor.MemberGet("exec", "", inst)
	require.NoError(t, err)
	execFn, ok := execMethod.Data.(interface {
		Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error)
	})
	require.True(t, ok)

	_, err = execFn.Call([]*values.Value{values.NewString("CREATE TABLE t (id INTEGER, name TEXT)")}, nil, inst)
	require.NoError(t, err)

	n, err := execFn.Call([]*values.Value{
		values.NewString("INSERT INTO t (id, name) VALUES (?, ?)"),
		values.NewInt(1),
		values.NewString("hetu"),
	}, nil, inst)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.Int())

	queryMethod, err := accessor.MemberGet("query", "", inst)
	require.NoError(t, err)
	queryFn := queryMethod.Data.(interface {
		Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error)
	})

	rows, err := queryFn.Call([]*values.Value{values.NewString("SELECT id, name FROM t")}, nil, inst)
	require.NoError(t, err)
	require.True(t, rows.IsList())
	items := *rows.ListItems()
	require.Len(t, items, 1)
	row := items[0].MapData()
	assert.Equal(t, int64(1), row["id"].Int())
	assert.Equal(t, "hetu", row["name"].Str())

	closeMethod, err := accessor.MemberGet("close", "", inst)
	require.NoError(t, err)
	closeFn := closeMethod.Data.(interface {
		Call(positional []*values.Value, named map[string]*values.Value, caller *values.Value) (*values.Value, error)
	})
	_, err = closeFn.Call(nil, nil, inst)
	require.NoError(t, err)
}
