package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ar90n/eiforest"
	"github.com/ar90n/eiforest/linalg"
	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

const DefaultTable = "eif_model"

var (
	ErrNotFound     = errors.New("model not found")
	ErrTypeMismatch = errors.New("model element type mismatch")
)

// ModelInfo describes a stored forest without decoding it.
type ModelInfo struct {
	Name      string
	DType     string
	Dim       uint
	Trees     uint
	Size      int
	CreatedAt time.Time
}

// SQLiteStore keeps named forests in a SQLite table as gob blobs.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// Open opens (or creates) the SQLite database at dsn and ensures the model table exists.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dsn)
	}

	s, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an already opened database.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("store: db is nil")
	}

	s := &SQLiteStore{db: db, table: DefaultTable}
	if _, err := db.ExecContext(ctx, s.schemaDDL()); err != nil {
		return nil, errors.Wrap(err, "create model table")
	}
	return s, nil
}

func (s *SQLiteStore) schemaDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
    name       TEXT PRIMARY KEY,
    dtype      TEXT NOT NULL,
    dim        INTEGER NOT NULL,
    trees      INTEGER NOT NULL,
    model      BLOB NOT NULL,
    created_at INTEGER NOT NULL
);`
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func dtypeOf[T linalg.Float]() string {
	return fmt.Sprintf("%T", T(0))
}

// Put stores forest under name, replacing any forest stored under the same name.
func Put[T linalg.Float](ctx context.Context, s *SQLiteStore, name string, forest *eiforest.Forest[T]) error {
	if name == "" {
		return errors.New("store: empty model name")
	}

	var buf bytes.Buffer
	if err := forest.Save(&buf); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO `+s.table+`(name, dtype, dim, trees, model, created_at) VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET dtype = excluded.dtype, dim = excluded.dim, trees = excluded.trees, model = excluded.model, created_at = excluded.created_at`,
		name, dtypeOf[T](), int64(forest.Dim), int64(len(forest.Trees)), buf.Bytes(), time.Now().UnixNano())
	if err != nil {
		return errors.Wrapf(err, "put model %s", name)
	}
	return nil
}

// Get loads the forest stored under name.
func Get[T linalg.Float](ctx context.Context, s *SQLiteStore, name string) (*eiforest.Forest[T], error) {
	var dtype string
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT dtype, model FROM `+s.table+` WHERE name = ?`, name).Scan(&dtype, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get model %s", name)
	}

	if want := dtypeOf[T](); dtype != want {
		return nil, errors.Wrapf(ErrTypeMismatch, "model %s holds %s, requested %s", name, dtype, want)
	}

	return eiforest.Load[T](bytes.NewReader(blob))
}

// List returns the stored models ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]ModelInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, dtype, dim, trees, length(model), created_at FROM `+s.table+` ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}
	defer rows.Close()

	var out []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var dim, trees, createdAt int64
		if err := rows.Scan(&info.Name, &info.DType, &dim, &trees, &info.Size, &createdAt); err != nil {
			return nil, err
		}
		info.CreatedAt = time.Unix(0, createdAt).UTC()
		info.Dim = uint(dim)
		info.Trees = uint(trees)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the model stored under name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "delete model %s", name)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "%s", name)
	}
	return nil
}
