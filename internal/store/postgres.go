package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/db"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var (
	propertyUpsert = db.UpsertConfig{
		Table:        "properties",
		Columns:      []string{"id", "data", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"data", "updated_at"},
	}
	documentUpsert = db.UpsertConfig{
		Table:        "documents",
		Columns:      []string{"id", "property_id", "data"},
		ConflictKeys: []string{"id"},
	}
)

// NewPostgres creates a PostgresStore with a connection pool. The initial
// ping is retried since the database often starts alongside the service.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = func(error) bool { return true }
	retry.OnRetry = resilience.LogRetry("postgres_ping", pgxCfg.ConnConfig.Host)
	if err := resilience.Do(ctx, retry, pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	property_id TEXT NOT NULL REFERENCES properties(id),
	data        JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS valuations (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	property_id TEXT NOT NULL REFERENCES properties(id),
	data        JSONB NOT NULL,
	valued_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_property_id ON documents(property_id);
CREATE INDEX IF NOT EXISTS idx_valuations_property_id ON valuations(property_id, valued_at DESC);
CREATE INDEX IF NOT EXISTS idx_properties_asset_type ON properties((data->>'asset_type'));
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM properties WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: property %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get property %s", id)
	}
	var p model.Property
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal property %s", id)
	}
	return &p, nil
}

func (s *PostgresStore) ListProperties(ctx context.Context) ([]*model.Property, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM properties ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list properties")
	}
	defer rows.Close()

	var out []*model.Property
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan property")
		}
		var p model.Property
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal property")
		}
		out = append(out, &p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate properties")
}

func (s *PostgresStore) SaveProperty(ctx context.Context, p *model.Property) error {
	stamp(p, time.Now().UTC())
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal property %s", p.ID)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO properties (id, data, created_at, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		p.ID, data, p.CreatedAt, p.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: upsert property %s", p.ID)
}

// SaveProperties upserts a batch through a COPY-loaded temp table.
func (s *PostgresStore) SaveProperties(ctx context.Context, props []*model.Property) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(props))
	for _, p := range props {
		if p == nil {
			continue
		}
		stamp(p, now)
		data, err := json.Marshal(p)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal property %s", p.ID)
		}
		rows = append(rows, []any{p.ID, data, p.CreatedAt, p.UpdatedAt})
	}
	n, err := db.BulkUpsert(ctx, s.pool, propertyUpsert, lastByID(rows))
	return n, eris.Wrap(err, "postgres: save properties")
}

func (s *PostgresStore) ListDocuments(ctx context.Context, propertyID string) ([]model.ForensicDocument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM documents WHERE property_id = $1 ORDER BY id`, propertyID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list documents %s", propertyID)
	}
	defer rows.Close()

	var out []model.ForensicDocument
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		var d model.ForensicDocument
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal document")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate documents")
}

func (s *PostgresStore) SaveDocument(ctx context.Context, d *model.ForensicDocument) error {
	stampDocument(d)
	data, err := json.Marshal(d)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal document %s", d.ID)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, property_id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET property_id = EXCLUDED.property_id, data = EXCLUDED.data`,
		d.ID, d.PropertyID, data,
	)
	return eris.Wrapf(err, "postgres: upsert document %s", d.ID)
}

// SaveDocuments upserts a batch through a COPY-loaded temp table, so
// re-importing documents that already carry an ID replaces them.
func (s *PostgresStore) SaveDocuments(ctx context.Context, docs []model.ForensicDocument) (int64, error) {
	rows := make([][]any, 0, len(docs))
	for i := range docs {
		stampDocument(&docs[i])
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal document %s", docs[i].ID)
		}
		rows = append(rows, []any{docs[i].ID, docs[i].PropertyID, data})
	}
	n, err := db.BulkUpsert(ctx, s.pool, documentUpsert, lastByID(rows))
	return n, eris.Wrap(err, "postgres: save documents")
}

// lastByID keeps the last row for each ID (the first column). ON CONFLICT
// cannot touch the same row twice in one statement.
func lastByID(rows [][]any) [][]any {
	last := make(map[any]int, len(rows))
	for i, r := range rows {
		last[r[0]] = i
	}
	if len(last) == len(rows) {
		return rows
	}
	out := make([][]any, 0, len(last))
	for i, r := range rows {
		if last[r[0]] == i {
			out = append(out, r)
		}
	}
	return out
}

// SaveValuation records the snapshot and copies it onto the property
// under a row lock.
func (s *PostgresStore) SaveValuation(ctx context.Context, propertyID string, snap model.ValuationSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var data []byte
	err = tx.QueryRow(ctx, `SELECT data FROM properties WHERE id = $1 FOR UPDATE`, propertyID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return eris.Wrapf(ErrNotFound, "postgres: property %s", propertyID)
	}
	if err != nil {
		return eris.Wrapf(err, "postgres: get property %s", propertyID)
	}

	var p model.Property
	if err := json.Unmarshal(data, &p); err != nil {
		return eris.Wrapf(err, "postgres: unmarshal property %s", propertyID)
	}
	snap.Apply(&p)
	propJSON, err := json.Marshal(&p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal property")
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal snapshot")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE properties SET data = $1, updated_at = $2 WHERE id = $3`,
		propJSON, p.UpdatedAt, propertyID,
	); err != nil {
		return eris.Wrapf(err, "postgres: update property %s", propertyID)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO valuations (id, property_id, data, valued_at) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), propertyID, snapJSON, snap.ValuedAt,
	); err != nil {
		return eris.Wrapf(err, "postgres: insert valuation %s", propertyID)
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit valuation")
}
