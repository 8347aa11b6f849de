// Package sqldb runs survey queries against the project database and
// materializes the result as a dataset table.
package sqldb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/majindogo/farm-survey-etl/internal/dataset"
)

// DB wraps an sqlx connection to the survey database.
type DB struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to the database at the given DSN and verifies the
// connection with a ping. A connection failure surfaces here, not at
// query time.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection established")
	return &DB{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Query executes the given SQL and returns the full result set as a table.
// Column order follows the result set; []byte cells are converted to
// strings so downstream comparisons behave uniformly across drivers.
func (d *DB) Query(ctx context.Context, query string) (*dataset.Table, error) {
	start := time.Now()

	rows, err := d.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	var data [][]any
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(data)+1, err)
		}
		for i, cell := range row {
			if b, ok := cell.([]byte); ok {
				row[i] = string(b)
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result: %w", err)
	}

	table, err := dataset.New(cols, data)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("query executed",
		"rows", table.NumRows(),
		"columns", len(cols),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}
