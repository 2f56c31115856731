package store

import (
	"context"
	"database/sql"
)

// Stores declare the narrowest slice of database behavior they need so
// tests can stub a single method and services can pass either a pool or
// an open transaction.

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is the surface stores use when a service hands them an open
// transaction. Bulk listing stays on DB.
type Tx interface {
	Execer
	Getter
}
