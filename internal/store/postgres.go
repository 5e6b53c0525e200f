package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements RecordStore on a single jsonb-backed table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed record store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Compile-time check that PostgresStore implements RecordStore.
var _ RecordStore = (*PostgresStore)(nil)

// CreateRecord inserts a document and returns the generated id.
func (s *PostgresStore) CreateRecord(ctx context.Context, collection string, data map[string]any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: marshal %s: %v", ErrWrite, collection, err)
	}

	query := `
		INSERT INTO records (collection, data)
		VALUES ($1, $2)
		RETURNING id`

	var id string
	if err := s.pool.QueryRow(ctx, query, collection, payload).Scan(&id); err != nil {
		return "", fmt.Errorf("%w: insert into %s: %v", ErrWrite, collection, err)
	}

	return id, nil
}

// ListRecords returns the collection newest-first.
func (s *PostgresStore) ListRecords(ctx context.Context, collection string) ([]Record, error) {
	query := `
		SELECT id, data, created_at
		FROM records
		WHERE collection = $1
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrRead, collection, err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rec       Record
			payload   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&rec.ID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrRead, collection, err)
		}
		if err := json.Unmarshal(payload, &rec.Data); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", ErrRead, collection, err)
		}
		rec.Collection = collection
		rec.CreatedAt = createdAt
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrRead, collection, err)
	}

	return records, nil
}

// DeleteRecord removes a record by id. A nonexistent id completes without error.
func (s *PostgresStore) DeleteRecord(ctx context.Context, collection, id string) error {
	query := `DELETE FROM records WHERE collection = $1 AND id = $2`

	if _, err := s.pool.Exec(ctx, query, collection, id); err != nil {
		return fmt.Errorf("%w: delete from %s: %v", ErrDelete, collection, err)
	}

	return nil
}
