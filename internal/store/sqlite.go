package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id),
	data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS valuations (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id),
	data        TEXT NOT NULL,
	valued_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_property_id ON documents(property_id);
CREATE INDEX IF NOT EXISTS idx_valuations_property_id ON valuations(property_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM properties WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: property %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get property %s", id)
	}
	var p model.Property
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal property %s", id)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProperties(ctx context.Context) ([]*model.Property, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM properties ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list properties")
	}
	defer rows.Close() //nolint:errcheck

	var out []*model.Property
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan property")
		}
		var p model.Property
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal property")
		}
		out = append(out, &p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate properties")
}

func (s *SQLiteStore) SaveProperty(ctx context.Context, p *model.Property) error {
	_, err := s.SaveProperties(ctx, []*model.Property{p})
	return err
}

func (s *SQLiteStore) SaveProperties(ctx context.Context, props []*model.Property) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	var n int64
	for _, p := range props {
		if p == nil {
			continue
		}
		stamp(p, now)
		data, err := json.Marshal(p)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal property %s", p.ID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO properties (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
			p.ID, string(data), p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert property %s", p.ID)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit properties")
	}
	return n, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, propertyID string) ([]model.ForensicDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM documents WHERE property_id = ? ORDER BY id`, propertyID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list documents %s", propertyID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ForensicDocument
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		var d model.ForensicDocument
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal document")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate documents")
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, d *model.ForensicDocument) error {
	stampDocument(d)
	data, err := json.Marshal(d)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal document %s", d.ID)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, property_id, data) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET property_id = excluded.property_id, data = excluded.data`,
		d.ID, d.PropertyID, string(data),
	)
	return eris.Wrapf(err, "sqlite: upsert document %s", d.ID)
}

func (s *SQLiteStore) SaveDocuments(ctx context.Context, docs []model.ForensicDocument) (int64, error) {
	var n int64
	for i := range docs {
		if err := s.SaveDocument(ctx, &docs[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// SaveValuation records the snapshot and copies it onto the property.
func (s *SQLiteStore) SaveValuation(ctx context.Context, propertyID string, snap model.ValuationSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM properties WHERE id = ?`, propertyID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return eris.Wrapf(ErrNotFound, "sqlite: property %s", propertyID)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: get property %s", propertyID)
	}

	var p model.Property
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return eris.Wrapf(err, "sqlite: unmarshal property %s", propertyID)
	}
	snap.Apply(&p)
	propJSON, err := json.Marshal(&p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal property")
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal snapshot")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE properties SET data = ?, updated_at = ? WHERE id = ?`,
		string(propJSON), p.UpdatedAt, propertyID,
	); err != nil {
		return eris.Wrapf(err, "sqlite: update property %s", propertyID)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO valuations (id, property_id, data, valued_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), propertyID, string(snapJSON), snap.ValuedAt,
	); err != nil {
		return eris.Wrapf(err, "sqlite: insert valuation %s", propertyID)
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit valuation")
}
