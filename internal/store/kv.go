package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// KVRepo is a string-valued key/value table. It backs the persisted half of
// the session store.
type KVRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

// Get returns the value for key and whether it exists.
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	q, args := r.b.Select("value").
		From(r.b.Table("kv")).
		Where(entsql.EQ("name", key)).
		Query()

	var v string
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Set upserts key.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	q, args := r.b.Insert("kv").
		Columns("name", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (r *KVRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	vals := make([]any, len(keys))
	for i, k := range keys {
		vals[i] = k
	}
	q, args := r.b.Delete("kv").Where(entsql.In("name", vals...)).Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// Keys returns all stored keys in lexical order.
func (r *KVRepo) Keys(ctx context.Context) ([]string, error) {
	q, args := r.b.Select("name").
		From(r.b.Table("kv")).
		OrderBy("name").
		Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Clear removes every key.
func (r *KVRepo) Clear(ctx context.Context) error {
	q, args := r.b.Delete("kv").Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("clear kv: %w", err)
	}
	return nil
}
