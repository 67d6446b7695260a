package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FranksOps/leadscout/internal/lead"
	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, dsn string) (storage.Backend, error) {
		return New(ctx, dsn)
	})
}

type postgresBackend struct {
	pool *pgxpool.Pool
}

// The company record is kept as JSONB; name and email are duplicated into
// columns for the import lookups.
const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	company JSONB NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS leads_email_idx ON leads (lower(email));
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, l *lead.Lead) error {
	companyJSON, err := json.Marshal(l.Company)
	if err != nil {
		return fmt.Errorf("postgres: encode company: %w", err)
	}

	query := `
	INSERT INTO leads (
		id, category, name, email, company, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = b.pool.Exec(ctx, query,
		l.ID,
		l.Category,
		l.Company.Name,
		l.Company.Email,
		companyJSON,
		string(l.Status),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: save: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*lead.Lead, error) {
	query := `SELECT id, category, company, status, created_at, updated_at FROM leads WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.ID != "" {
		query += fmt.Sprintf(` AND id = $%d`, paramCount)
		args = append(args, filter.ID)
		paramCount++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, paramCount)
		args = append(args, filter.Category)
		paramCount++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, paramCount)
		args = append(args, string(filter.Status))
		paramCount++
	}
	if filter.Email != "" {
		query += fmt.Sprintf(` AND lower(email) = lower($%d)`, paramCount)
		args = append(args, filter.Email)
		paramCount++
	}
	if filter.Name != "" {
		query += fmt.Sprintf(` AND name = $%d`, paramCount)
		args = append(args, filter.Name)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC, id`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	results := []*lead.Lead{}
	for rows.Next() {
		var l lead.Lead
		var companyJSON []byte
		var status string

		err := rows.Scan(&l.ID, &l.Category, &companyJSON, &status, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}

		l.Status = lead.Status(status)
		if err := json.Unmarshal(companyJSON, &l.Company); err != nil {
			return nil, fmt.Errorf("postgres: decode company: %w", err)
		}

		results = append(results, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) UpdateStatus(ctx context.Context, id string, status lead.Status) error {
	tag, err := b.pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("postgres: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
