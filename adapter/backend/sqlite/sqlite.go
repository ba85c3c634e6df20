// Package sqlite contains a [domain.Backend] persisted in a SQLite file.
//
// Tables:
//
//	buckets(seq, name)                           name UNIQUE
//	documents(seq, bucket, id_key, data)         UNIQUE (bucket, id_key)
//
// Documents are stored as JSON text. Both tables are listed by seq, so buckets
// and documents come back in creation order, and an upsert keeps the seq of
// the row it replaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	// registers the "sqlite3" driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS buckets (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS documents (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	bucket TEXT NOT NULL,
	id_key TEXT NOT NULL,
	data TEXT NOT NULL,
	UNIQUE (bucket, id_key)
);`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Backend implements [domain.Backend].
type Backend struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path.
func Open(path string, opts ...Option) (*Backend, error) {
	o := options{journalMode: "WAL"}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=" + o.journalMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return &Backend{db: db}, nil
}

// Get implements [domain.Backend].
func (b *Backend) Get(ctx context.Context, bucket string, id any) (domain.Document, error) {
	key, err := data.IDKey(id)
	if err != nil {
		return nil, err
	}
	var raw string
	err = b.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE bucket = ? AND id_key = ?",
		bucket, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeDoc(raw)
}

// Put implements [domain.Backend].
func (b *Backend) Put(ctx context.Context, bucket string, doc domain.Document) (domain.Document, error) {
	if err := put(ctx, b.db, bucket, doc); err != nil {
		return nil, err
	}
	return data.Clone(doc), nil
}

// Delete implements [domain.Backend].
func (b *Backend) Delete(ctx context.Context, bucket string, id any) (bool, error) {
	return remove(ctx, b.db, bucket, id)
}

// ListAll implements [domain.Backend].
func (b *Backend) ListAll(ctx context.Context, bucket string) ([]domain.Document, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT data FROM documents WHERE bucket = ? ORDER BY seq",
		bucket,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ListBuckets implements [domain.Backend]. Buckets are listed in creation
// order.
func (b *Backend) ListBuckets(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT name FROM buckets ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateBucket implements [domain.Backend].
func (b *Backend) CreateBucket(ctx context.Context, name string) error {
	_, err := b.db.ExecContext(ctx,
		"INSERT INTO buckets (name) VALUES (?) ON CONFLICT(name) DO NOTHING",
		name,
	)
	return err
}

// DeleteBucket implements [domain.Backend].
func (b *Backend) DeleteBucket(ctx context.Context, name string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE bucket = ?", name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM buckets WHERE name = ?", name); err != nil {
		return err
	}
	return tx.Commit()
}

// CommitBatch implements [domain.Backend]. The whole batch runs in a single
// SQL transaction.
func (b *Backend) CommitBatch(ctx context.Context, buckets []string, ops []domain.Operation) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, name := range buckets {
		ok, err := bucketExists(ctx, tx, name)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrBucketNotFound{Bucket: name}
		}
	}
	for n, op := range ops {
		if !slices.Contains(buckets, op.Bucket) {
			return domain.ErrBucketNotFound{Bucket: op.Bucket}
		}
		switch op.Type {
		case domain.OpPut:
			err = put(ctx, tx, op.Bucket, op.Doc)
		case domain.OpDelete:
			_, err = remove(ctx, tx, op.Bucket, op.ID)
		default:
			err = fmt.Errorf("unknown operation type %d", op.Type)
		}
		if err != nil {
			return fmt.Errorf("operation %d: %w", n, err)
		}
	}
	return tx.Commit()
}

// Close implements [domain.Backend].
func (b *Backend) Close() error {
	return b.db.Close()
}

func bucketExists(ctx context.Context, q querier, name string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM buckets WHERE name = ?", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func put(ctx context.Context, q querier, bucket string, doc domain.Document) error {
	ok, err := bucketExists(ctx, q, bucket)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBucketNotFound{Bucket: bucket}
	}
	if doc == nil {
		return domain.ErrMissingID
	}
	key, err := data.IDKey(doc.ID())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data.Plain(doc))
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO documents (bucket, id_key, data) VALUES (?, ?, ?)
		 ON CONFLICT(bucket, id_key) DO UPDATE SET data = excluded.data`,
		bucket, key, string(raw),
	)
	return err
}

func remove(ctx context.Context, q querier, bucket string, id any) (bool, error) {
	key, err := data.IDKey(id)
	if err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx,
		"DELETE FROM documents WHERE bucket = ? AND id_key = ?",
		bucket, key,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func decodeDoc(raw string) (domain.Document, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	doc, err := data.Normalize(m)
	if err != nil {
		return nil, err
	}
	return doc.(domain.Document), nil
}
