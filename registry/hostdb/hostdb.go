// Package hostdb is a registry.BindExternalClass demo binding a `Database`
// external class over Go's database/sql, grounded on the teacher's
// pkg/pdo driver set (mysql_driver.go, pgsql_driver.go, sqlite_driver.go):
// the same three backing drivers, reached here through database/sql's
// generic interface instead of a bespoke PDO-style Conn/Stmt abstraction.
// This is the concrete stand-in for the "preincluded stdlib bindings"
// §1 scopes out of the VM core while §6 still requires the core to expose
// a registration surface (bindExternalClass) one of these can be built on.
package hostdb

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hetu-lang/hetu/registry"
	"github.com/hetu-lang/hetu/values"
)

// driverNames maps the handle name script code passes to `new
// Database(driver, dsn)` onto the database/sql driver name each import
// above registers itself under.
var driverNames = map[string]string{
	"mysql":    "mysql",
	"postgres": "postgres",
	"sqlite":   "sqlite",
}

// database wraps one open *sql.DB as the Go payload behind an external
// `Database` instance's `$conn` field.
type database struct {
	db *sql.DB
}

// Register installs the `Database` external class on r (§6
// `bindExternalClass`): `new Database(driver, dsn)`, `.query(sql, args...)`
// returning a list of row maps, `.exec(sql, args...)` returning the
// affected-row count, and `.close()`.
func Register(r *registry.Registry) error {
	return r.BindExternalClass(registry.ExternalClassHandle{
		ID: "Database",
		Constructors: map[string]registry.HostFunc{
			"": construct,
		},
		Methods: map[string]registry.HostFunc{
			"query": query,
			"exec":  exec,
			"close": closeDB,
		},
	})
}

func construct(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
	if len(positional) < 2 || !positional[0].IsString() || !positional[1].IsString() {
		return nil, fmt.Errorf("argument: Database(driver, dsn) expects two strings")
	}
	driverName, ok := driverNames[positional[0].Str()]
	if !ok {
		return nil, fmt.Errorf("argument: unknown database driver %q", positional[0].Str())
	}
	db, err := sql.Open(driverName, positional[1].Str())
	if err != nil {
		return nil, fmt.Errorf("typeError: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("typeError: %v", err)
	}
	if err := setConn(this, &database{db: db}); err != nil {
		return nil, err
	}
	return this, nil
}

// setConn/getConn store the Go *database payload on the instance's
// `$conn` field; instances otherwise only carry *values.Value fields, so the
// driver handle rides along wrapped as an external-instance-tagged Value
// (§3 "Value" — external handles carry host-owned Go data).
func setConn(this *values.Value, d *database) error {
	accessor, ok := this.Accessor()
	if !ok {
		return fmt.Errorf("typeError: Database constructor called without a receiver")
	}
	return accessor.MemberSet("$conn", values.NewAccessor(values.TypeExternalInstance, d), "", this)
}

func getConn(this *values.Value) (*database, error) {
	accessor, ok := this.Accessor()
	if !ok {
		return nil, fmt.Errorf("typeError: Database method called without a receiver")
	}
	v, err := accessor.MemberGet("$conn", "", this)
	if err != nil {
		return nil, err
	}
	d, ok := v.Data.(*database)
	if !ok {
		return nil, fmt.Errorf("typeError: Database instance has no open connection")
	}
	return d, nil
}

func argsOf(positional []*values.Value) []interface{} {
	out := make([]interface{}, len(positional))
	for i, v := range positional {
		out[i] = scalarOf(v)
	}
	return out
}

func scalarOf(v *values.Value) interface{} {
	switch {
	case v.IsNull():
		return nil
	case v.IsBool():
		return v.Bool()
	case v.IsInt():
		return v.Int()
	case v.IsFloat():
		return v.Float()
	default:
		return v.Str()
	}
}

func query(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
	d, err := getConn(this)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 || !positional[0].IsString() {
		return nil, fmt.Errorf("argument: query(sql, args...) expects a string query")
	}
	rows, err := d.db.Query(positional[0].Str(), argsOf(positional[1:])...)
	if err != nil {
		return nil, fmt.Errorf("typeError: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("typeError: %v", err)
	}

	var results []*values.Value
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("typeError: %v", err)
		}
		row := make(map[string]*values.Value, len(cols))
		for i, col := range cols {
			row[col] = sqlToValue(raw[i])
		}
		results = append(results, values.NewMap(row))
	}
	return values.NewList(results), rows.Err()
}

func exec(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
	d, err := getConn(this)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 || !positional[0].IsString() {
		return nil, fmt.Errorf("argument: exec(sql, args...) expects a string statement")
	}
	res, err := d.db.Exec(positional[0].Str(), argsOf(positional[1:])...)
	if err != nil {
		return nil, fmt.Errorf("typeError: %v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("typeError: %v", err)
	}
	return values.NewInt(n), nil
}

func closeDB(positional []*values.Value, named map[string]*values.Value, this *values.Value) (*values.Value, error) {
	d, err := getConn(this)
	if err != nil {
		return nil, err
	}
	return values.NewNull(), d.db.Close()
}

func sqlToValue(raw interface{}) *values.Value {
	switch v := raw.(type) {
	case nil:
		return values.NewNull()
	case bool:
		return values.NewBool(v)
	case int64:
		return values.NewInt(v)
	case float64:
		return values.NewFloat(v)
	case []byte:
		return values.NewString(string(v))
	case string:
		return values.NewString(v)
	default:
		return values.NewString(fmt.Sprintf("%v", v))
	}
}
