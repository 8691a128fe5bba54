package db

import "context"

type DBType string

const (
	Postgres DBType = "postgres"
	Mongo    DBType = "mongo"
)

// DB is the common shape of a backing-store connection.
type DB interface {
	Connect() error
	Disconnect() error
	GetContext() context.Context
}
