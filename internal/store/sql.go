package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver
	_ "github.com/go-sql-driver/mysql"
	"github.com/heysubinoy/kvrest/pkg/kv"
	"github.com/huandu/go-sqlbuilder"
)

// DefaultTable is the table SQLStore uses when none is given.
const DefaultTable = "kv"

// SQLStore keeps key-value pairs in a single two-column SQL table.
type SQLStore struct {
	DB     *sql.DB
	Table  string
	Flavor sqlbuilder.Flavor
}

// Compile-time check to ensure SQLStore implements kv.Store.
var _ kv.Store[[]byte] = (*SQLStore)(nil)

// flavors maps supported database/sql driver names to their sql dialect and blob type.
var flavors = map[string]struct {
	flavor sqlbuilder.Flavor
	blob   string
}{
	"sqlite": {sqlbuilder.SQLite, "BLOB"},
	"mysql":  {sqlbuilder.MySQL, "LONGBLOB"},
}

// NewSQLStore opens dsn with the named driver ("sqlite" or "mysql")
// and creates the table if it does not exist.
func NewSQLStore(ctx context.Context, driver, dsn, table string) (*SQLStore, error) {
	dialect, ok := flavors[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctb := dialect.flavor.NewCreateTableBuilder()
	ctb.CreateTable(table).IfNotExists()
	ctb.Define("name", "VARCHAR(255)", "NOT NULL", "PRIMARY KEY")
	ctb.Define("data", dialect.blob, "NOT NULL")

	query, args := ctb.Build()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLStore{DB: db, Table: table, Flavor: dialect.flavor}, nil
}

func (s *SQLStore) Insert(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	ib := s.Flavor.NewInsertBuilder()
	ib.ReplaceInto(s.Table).Cols("name", "data").Values(key, value)

	query, args := ib.Build()
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return kv.DBError(err).WithKey(key)
	}
	return nil
}

func (s *SQLStore) Read(ctx context.Context, key string) ([]byte, error) {
	sb := s.Flavor.NewSelectBuilder()
	sb.Select("data").From(s.Table).Where(sb.Equal("name", key))

	query, args := sb.Build()

	var value []byte
	err := s.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.NotFound(key)
	}
	if err != nil {
		return nil, kv.DBError(err).WithKey(key)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *SQLStore) Has(ctx context.Context, key string) (bool, error) {
	sb := s.Flavor.NewSelectBuilder()
	sb.Select("COUNT(*)").From(s.Table).Where(sb.Equal("name", key))

	query, args := sb.Build()

	var count int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, kv.DBError(err).WithKey(key)
	}
	return count > 0, nil
}

// Keys returns all keys ordered by name.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	sb := s.Flavor.NewSelectBuilder()
	sb.Select("name").From(s.Table).OrderBy("name")

	query, args := sb.Build()
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, kv.DBError(err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, kv.DBError(err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, kv.DBError(err)
	}
	return keys, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	db := s.Flavor.NewDeleteBuilder()
	db.DeleteFrom(s.Table).Where(db.Equal("name", key))

	query, args := db.Build()
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return kv.DBError(err).WithKey(key)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return kv.DBError(err).WithKey(key)
	}
	if n == 0 {
		return kv.NotFound(key)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	db := s.Flavor.NewDeleteBuilder()
	db.DeleteFrom(s.Table)

	query, args := db.Build()
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return kv.DBError(err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.DB.Close()
}
