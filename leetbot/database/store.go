package database

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
)

// Record is one row of the key-sorted record store. Payload is the JSON
// encoding of whatever model lives under the key; ExpiresAt (epoch seconds,
// zero means never) only matters for cache records.
type Record struct {
	PartitionKey string `json:"pk" dynamodbav:"pk"`
	SortKey      string `json:"sk" dynamodbav:"sk"`
	Payload      []byte `json:"payload" dynamodbav:"payload"`
	ExpiresAt    int64  `json:"expires_at,omitempty" dynamodbav:"expires_at,omitempty"`
}

// Store is the key-sorted record store the whole bot persists through. Both
// query methods return fully materialized result sets: implementations page
// through the backend internally and never hand a partial page to a caller.
type Store interface {
	// Put writes the record, overwriting any record under the same key.
	Put(ctx context.Context, record Record) error
	// PutIfAbsent writes the record only if the key is vacant and returns
	// ErrRecordExists otherwise.
	PutIfAbsent(ctx context.Context, record Record) error
	// Get returns the record under the key or ErrRecordNotFound.
	Get(ctx context.Context, partitionKey, sortKey string) (Record, error)
	// Delete removes the record under the key. Deleting a vacant key is not
	// an error.
	Delete(ctx context.Context, partitionKey, sortKey string) error
	// QueryByPrefix returns every record in the partition whose sort key
	// starts with the prefix, ordered by sort key ascending.
	QueryByPrefix(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Record, error)
	// QueryByRange returns every record in the partition with
	// from <= sort key < to, ordered by sort key ascending.
	QueryByRange(ctx context.Context, partitionKey, sortKeyFrom, sortKeyTo string) ([]Record, error)
}
