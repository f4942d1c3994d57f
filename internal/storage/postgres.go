package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/san-kum/corrlab/internal/market"
)

const schema = `
CREATE TABLE IF NOT EXISTS prices (
	asset_id TEXT NOT NULL,
	date     DATE NOT NULL,
	close    DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (asset_id, date)
)`

// PostgresStore reads closes from a prices(asset_id, date, close) table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ PriceSource = (*PostgresStore)(nil)

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) Prices(ctx context.Context, assetID string) ([]market.PricePoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, close FROM prices WHERE asset_id = $1 ORDER BY date`, assetID)
	if err != nil {
		return nil, &market.AssetError{AssetID: assetID, Wrapped: err}
	}

	prices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (market.PricePoint, error) {
		var p market.PricePoint
		err := row.Scan(&p.Date, &p.Close)
		return p, err
	})
	if err != nil {
		return nil, &market.AssetError{AssetID: assetID, Wrapped: err}
	}
	if len(prices) == 0 {
		return nil, market.NotFound(assetID)
	}
	return prices, nil
}

// Import upserts prices for assetID in one batch and returns the row count.
func (s *PostgresStore) Import(ctx context.Context, assetID string, prices []market.PricePoint) (int, error) {
	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(`INSERT INTO prices (asset_id, date, close) VALUES ($1, $2, $3)
			ON CONFLICT (asset_id, date) DO UPDATE SET close = EXCLUDED.close`,
			assetID, p.Date, p.Close)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("import %s row %d: %w", assetID, i, err)
		}
	}
	return batch.Len(), nil
}
