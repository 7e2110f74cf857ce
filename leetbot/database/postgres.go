package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// postgresPageSize bounds one page of a query; queries drain pages with
// keyset pagination until the backend returns a short page.
const postgresPageSize = 500

// StoreRecord is the bun model behind PostgresStore.
type StoreRecord struct {
	bun.BaseModel `bun:"table:records,alias:r"`

	PartitionKey string `bun:"partition_key,pk"`
	SortKey      string `bun:"sort_key,pk"`
	Payload      []byte `bun:"payload,type:jsonb"`
	ExpiresAt    int64  `bun:"expires_at,nullzero"`
}

// PostgresStore implements Store on a single bun-managed table with a
// composite (partition_key, sort_key) primary key.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, record Record) error {
	rec := toStoreRecord(record)
	_, err := s.db.NewInsert().
		Model(&rec).
		On("CONFLICT (partition_key, sort_key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w", record.PartitionKey, record.SortKey, err)
	}
	return nil
}

func (s *PostgresStore) PutIfAbsent(ctx context.Context, record Record) error {
	rec := toStoreRecord(record)
	res, err := s.db.NewInsert().
		Model(&rec).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w", record.PartitionKey, record.SortKey, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return ErrRecordExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, partitionKey, sortKey string) (Record, error) {
	var rec StoreRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("partition_key = ?", partitionKey).
		Where("sort_key = ?", sortKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("failed to get record %s/%s: %w", partitionKey, sortKey, err)
	}
	return fromStoreRecord(rec), nil
}

func (s *PostgresStore) Delete(ctx context.Context, partitionKey, sortKey string) error {
	_, err := s.db.NewDelete().
		Model((*StoreRecord)(nil)).
		Where("partition_key = ?", partitionKey).
		Where("sort_key = ?", sortKey).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", partitionKey, sortKey, err)
	}
	return nil
}

func (s *PostgresStore) QueryByPrefix(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Record, error) {
	return s.queryPages(ctx, partitionKey, prefixFilter(sortKeyPrefix))
}

func (s *PostgresStore) QueryByRange(ctx context.Context, partitionKey, sortKeyFrom, sortKeyTo string) ([]Record, error) {
	return s.queryPages(ctx, partitionKey, rangeFilter(sortKeyFrom, sortKeyTo))
}

// LIKE matches the pattern literally regardless of collation, so the prefix
// filter needs no COLLATE clause.
func prefixFilter(sortKeyPrefix string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("sort_key LIKE ?", escapeLikePattern(sortKeyPrefix)+"%")
	}
}

func rangeFilter(sortKeyFrom, sortKeyTo string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(`sort_key COLLATE "C" >= ?`, sortKeyFrom).Where(`sort_key COLLATE "C" < ?`, sortKeyTo)
	}
}

// pageQuery builds one page of a partition scan. Sort-key comparisons and
// ordering run under COLLATE "C": the key scheme relies on byte-wise order
// of its #-delimited segments, which a libc or ICU database collation does
// not preserve.
func (s *PostgresStore) pageQuery(page *[]StoreRecord, partitionKey string, filter func(*bun.SelectQuery) *bun.SelectQuery, lastSortKey string) *bun.SelectQuery {
	q := s.db.NewSelect().
		Model(page).
		Where("partition_key = ?", partitionKey).
		OrderExpr(`sort_key COLLATE "C" ASC`).
		Limit(postgresPageSize)
	q = filter(q)
	if lastSortKey != "" {
		q = q.Where(`sort_key COLLATE "C" > ?`, lastSortKey)
	}
	return q
}

// queryPages drains the query with keyset pagination so callers always see
// the full result set.
func (s *PostgresStore) queryPages(ctx context.Context, partitionKey string, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]Record, error) {
	start := time.Now()
	var records []Record
	lastSortKey := ""

	for {
		var page []StoreRecord
		q := s.pageQuery(&page, partitionKey, filter, lastSortKey)

		if err := q.Scan(ctx); err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		for _, rec := range page {
			records = append(records, fromStoreRecord(rec))
		}
		if len(page) < postgresPageSize {
			break
		}
		lastSortKey = page[len(page)-1].SortKey
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("backend", "postgres"),
		slog.Int("records", len(records)),
		slog.Duration("took", time.Since(start)),
	)
	return records, nil
}

// escapeLikePattern neutralizes LIKE metacharacters in a literal prefix.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func toStoreRecord(record Record) StoreRecord {
	return StoreRecord{
		PartitionKey: record.PartitionKey,
		SortKey:      record.SortKey,
		Payload:      record.Payload,
		ExpiresAt:    record.ExpiresAt,
	}
}

func fromStoreRecord(rec StoreRecord) Record {
	return Record{
		PartitionKey: rec.PartitionKey,
		SortKey:      rec.SortKey,
		Payload:      rec.Payload,
		ExpiresAt:    rec.ExpiresAt,
	}
}
