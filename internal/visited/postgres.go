package visited

import (
	"context"

	"github.com/jonathan/recipe-alpaca/internal/db"
)

// PostgresStore keeps the set in the visited_urls table so that several
// runs share it.
type PostgresStore struct {
	db *db.DB
}

// OpenPostgres connects to databaseURL and creates the table if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	conn, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := conn.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return NewPostgresStore(conn), nil
}

// NewPostgresStore wraps an existing connection.
func NewPostgresStore(conn *db.DB) *PostgresStore {
	return &PostgresStore{db: conn}
}

func (s *PostgresStore) Has(ctx context.Context, url string) (bool, error) {
	return s.db.HasVisited(ctx, url)
}

func (s *PostgresStore) Add(ctx context.Context, url string) error {
	return s.db.MarkVisited(ctx, url)
}

// DB exposes the connection for run bookkeeping.
func (s *PostgresStore) DB() *db.DB {
	return s.db
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
