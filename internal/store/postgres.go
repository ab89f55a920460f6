package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"log/slog"
)

// ErrNotFound is returned when a room id has no row.
var ErrNotFound = errors.New("not found")

type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to postgres and returns a pool wrapper
func NewPostgres(ctx context.Context, pgURL string, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() { p.pool.Close() }
