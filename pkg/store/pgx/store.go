package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the base store interfaces against Postgres. The
// aggregate relations are materialized views; everything else is live data.
type Store struct {
	conn *pgxpool.Pool
}

func New(conn *pgxpool.Pool) *Store {
	return &Store{conn: conn}
}
