// Package backend builds the configured record store and event publisher.
package backend

import (
	"context"

	"salesboard/internal/amqp"
	"salesboard/internal/store"
)

type CleanupFunc func() error

// BackendResult is an opened store, plus the seed event publisher when AMQP
// is configured and reachable.
type BackendResult struct {
	Store     store.Store
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite
	SQLiteDBPath string

	// MongoDB
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Memory, optional JSON snapshot to start from
	MemoryDataFile string

	// AMQP, optional
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MongoBackend  BackendType = "mongo"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MongoBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
